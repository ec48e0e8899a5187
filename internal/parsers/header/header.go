// Package header extracts layer-3 (IPv4/IPv6) and layer-4 (TCP/UDP) field
// and length information from raw packet bytes, without allocating or
// copying beyond the fixed-size address arrays callers ask for.
package header

import "encoding/binary"

// IPProtocol is an IP protocol number (IANA assigned).
type IPProtocol uint8

const (
	ProtoICMP IPProtocol = 1
	ProtoIGMP IPProtocol = 2
	ProtoTCP  IPProtocol = 6
	ProtoUDP  IPProtocol = 17
)

const ipv6HeaderLength = 40
const udpHeaderLength = 8

// IPv4HeaderLength returns the IPv4 header length in bytes from the IHL
// nibble at byte 0.
func IPv4HeaderLength(data []byte) int {
	return int(data[0]&0x0f) * 4
}

// IPv6HeaderLength returns the fixed IPv6 main-header length in bytes.
// Extension header chains are out of scope; callers see only the fixed
// 40-byte header.
func IPv6HeaderLength(data []byte) int {
	return ipv6HeaderLength
}

// UDPHeaderLength returns the fixed UDP header length in bytes.
func UDPHeaderLength(data []byte) int {
	return udpHeaderLength
}

// TCPHeaderLength returns the TCP header length in bytes from the data
// offset nibble at byte 12 of the TCP header.
func TCPHeaderLength(data []byte) int {
	return int(data[12]>>4) * 4
}

// L3HeaderLength dispatches on the IP version nibble at the start of data
// and returns the corresponding layer-3 header length, or 0 for an unknown
// version.
func L3HeaderLength(data []byte) int {
	switch data[0] >> 4 {
	case 4:
		return IPv4HeaderLength(data)
	case 6:
		return IPv6HeaderLength(data)
	default:
		return 0
	}
}

// HeadersLength returns the combined layer-3 + layer-4 header length.
// The layer-4 contribution is added only for TCP or UDP; any other
// transport protocol contributes zero, so callers must check the protocol
// themselves before trusting the layer-4 portion of the result.
func HeadersLength(data []byte) int {
	version := data[0] >> 4
	l3Len := L3HeaderLength(data)

	var proto IPProtocol
	switch version {
	case 4:
		proto = IPProtocol(data[9])
	case 6:
		proto = IPProtocol(data[6])
	default:
		return l3Len
	}

	l4 := data[l3Len:]
	switch proto {
	case ProtoTCP:
		return l3Len + TCPHeaderLength(l4)
	case ProtoUDP:
		return l3Len + UDPHeaderLength(l4)
	default:
		return l3Len
	}
}

// UDPPayloadLength returns the UDP payload length (datagram length minus the
// 8-byte UDP header), reading the length field at offset 4 of the UDP header.
func UDPPayloadLength(data []byte) uint16 {
	return binary.BigEndian.Uint16(data[4:6]) - udpHeaderLength
}

// DstPort returns the destination port from offset 2 of a layer-4 header.
func DstPort(data []byte) uint16 {
	return binary.BigEndian.Uint16(data[2:4])
}

// IPv4SrcAddr returns the 4-byte network-order source address at offset 12
// of an IPv4 header.
func IPv4SrcAddr(data []byte) [4]byte {
	var out [4]byte
	copy(out[:], data[12:16])
	return out
}

// IPv4DstAddr returns the 4-byte network-order destination address at
// offset 16 of an IPv4 header.
func IPv4DstAddr(data []byte) [4]byte {
	var out [4]byte
	copy(out[:], data[16:20])
	return out
}

// IPv6SrcAddr returns the 16-byte network-order source address at offset 8
// of an IPv6 header.
func IPv6SrcAddr(data []byte) [16]byte {
	var out [16]byte
	copy(out[:], data[8:24])
	return out
}

// IPv6DstAddr returns the 16-byte network-order destination address at
// offset 24 of an IPv6 header.
func IPv6DstAddr(data []byte) [16]byte {
	var out [16]byte
	copy(out[:], data[24:40])
	return out
}
