// Package ssdp classifies SSDP messages (HTTP-like, carried over UDP
// multicast 239.255.255.250:1900).
package ssdp

import "grimm.is/glacic/internal/netutil"

// Method is an SSDP request method.
type Method int

const (
	MSearch Method = iota
	Notify
	Unknown
)

func (m Method) String() string {
	switch m {
	case MSearch:
		return "M-SEARCH"
	case Notify:
		return "NOTIFY"
	default:
		return "UNKNOWN"
	}
}

// MulticastAddr is the SSDP multicast group address.
const MulticastAddr = "239.255.255.250"

// ParseMethod classifies the leading byte of an SSDP message: 'M' for
// M-SEARCH, 'N' for NOTIFY, anything else is Unknown.
func ParseMethod(data []byte) Method {
	if len(data) == 0 {
		return Unknown
	}
	switch data[0] {
	case 'M':
		return MSearch
	case 'N':
		return Notify
	default:
		return Unknown
	}
}

// Message is a classified SSDP message.
type Message struct {
	IsRequest bool
	Method    Method
}

// ParseMessage classifies data as a request iff dstAddr equals the SSDP
// multicast group address.
func ParseMessage(data []byte, dstAddr netutil.IPAddress) Message {
	multicast, _ := netutil.IPv4StrToNet(MulticastAddr)
	isRequest := dstAddr.Equal(netutil.IPv4FromNet(multicast))
	return Message{IsRequest: isRequest, Method: ParseMethod(data)}
}
