// Package dhcp decodes BOOTP-compatible DHCP messages (RFC 2131/2132): the
// fixed 236-byte header followed by a magic-cookie-guarded options list.
package dhcp

import (
	"encoding/binary"
	"errors"

	"github.com/insomniacslk/dhcp/dhcpv4"
)

const (
	headerLength       = 236
	maxHWLen           = 16
	magicCookie        = 0x63825363
	initialOptionCount = 20
)

// Opcode is the BOOTP message opcode.
type Opcode uint8

const (
	BootRequest Opcode = 1
	BootReply   Opcode = 2
)

// OptionCode aliases dhcpv4's option code type. The option codes this
// parser acts on (PAD, message-type, END) are declared below as untyped
// constants with their RFC 2132 values.
type OptionCode = dhcpv4.OptionCode

const (
	OptPad         = 0
	OptMessageType = 53
	OptEnd         = 255
)

// MessageType is the DHCP message type carried in option 53.
type MessageType uint8

const (
	Discover MessageType = 1
	Offer    MessageType = 2
	Request  MessageType = 3
	Decline  MessageType = 4
	Ack      MessageType = 5
	Nak      MessageType = 6
	Release  MessageType = 7
	Inform   MessageType = 8
)

// ErrTruncated is returned when data is shorter than a required field.
var ErrTruncated = errors.New("dhcp: truncated message")

// Option is a single parsed DHCP option.
type Option struct {
	Code   uint8
	Length uint8
	Value  []byte
}

// Options is the insertion-ordered list of options parsed from a message,
// with the message-type option (code 53) denormalized onto MessageType for
// convenience.
type Options struct {
	MessageType MessageType
	Items       []Option
}

// Message is a fully decoded DHCP message: fixed header plus options.
// The four address fields are kept as opaque 4-byte network-order values,
// exactly as observed on the wire, since the original implementation never
// converts them to host order.
type Message struct {
	Op     Opcode
	HType  uint8
	HLen   uint8
	Hops   uint8
	XID    uint32
	Secs   uint16
	Flags  uint16
	CIAddr [4]byte
	YIAddr [4]byte
	SIAddr [4]byte
	GIAddr [4]byte
	CHAddr [maxHWLen]byte
	SName  [64]byte
	File   [128]byte
	Options Options
}

// ParseHeader decodes the fixed 236-byte DHCP header. Options are left
// unset; call ParseOptions separately or use ParseMessage.
func ParseHeader(data []byte) (Message, error) {
	if len(data) < headerLength {
		return Message{}, ErrTruncated
	}
	var msg Message
	msg.Op = Opcode(data[0])
	msg.HType = data[1]
	msg.HLen = data[2]
	msg.Hops = data[3]
	msg.XID = binary.BigEndian.Uint32(data[4:8])
	msg.Secs = binary.BigEndian.Uint16(data[8:10])
	msg.Flags = binary.BigEndian.Uint16(data[10:12])
	copy(msg.CIAddr[:], data[12:16])
	copy(msg.YIAddr[:], data[16:20])
	copy(msg.SIAddr[:], data[20:24])
	copy(msg.GIAddr[:], data[24:28])
	copy(msg.CHAddr[:], data[28:44])
	copy(msg.SName[:], data[44:108])
	copy(msg.File[:], data[108:236])
	return msg, nil
}

// ParseOption decodes a single option at data[offset] and returns it along
// with the offset advanced past it. PAD (0) and END (255) options carry no
// length or value byte and advance the offset by 1; every other option code
// is followed by a one-byte length and that many value bytes.
func ParseOption(data []byte, offset int) (Option, int, error) {
	if offset >= len(data) {
		return Option{}, offset, ErrTruncated
	}
	code := data[offset]
	if code == OptPad || code == OptEnd {
		return Option{Code: code}, offset + 1, nil
	}
	if offset+1 >= len(data) {
		return Option{}, offset, ErrTruncated
	}
	length := data[offset+1]
	if offset+2+int(length) > len(data) {
		return Option{}, offset, ErrTruncated
	}
	value := make([]byte, length)
	copy(value, data[offset+2:offset+2+int(length)])
	return Option{Code: code, Length: length, Value: value}, offset + 2 + int(length), nil
}

// ParseOptions walks the options area starting at data[0], first verifying
// the magic cookie. A mismatched cookie yields an empty, non-fatal option
// list rather than an error, matching the original's logged-and-continue
// behavior.
func ParseOptions(data []byte) Options {
	var opts Options
	if len(data) < 4 {
		return opts
	}
	if binary.BigEndian.Uint32(data[0:4]) != magicCookie {
		return opts
	}

	opts.Items = make([]Option, 0, initialOptionCount)
	offset := 4
	for offset < len(data) {
		opt, next, err := ParseOption(data, offset)
		if err != nil {
			break
		}
		offset = next
		if opt.Code == OptMessageType && len(opt.Value) == 1 {
			opts.MessageType = MessageType(opt.Value[0])
		}
		opts.Items = append(opts.Items, opt)
		if opt.Code == OptEnd {
			break
		}
	}
	return opts
}

// ParseMessage decodes the fixed header followed by the options area.
func ParseMessage(data []byte) (Message, error) {
	msg, err := ParseHeader(data)
	if err != nil {
		return msg, err
	}
	msg.Options = ParseOptions(data[headerLength:])
	return msg, nil
}
