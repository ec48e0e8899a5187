// Package igmp decodes IGMPv2 (RFC 2236) messages and IGMPv3 (RFC 3376)
// membership reports. IGMPv3 membership queries are not decoded: the
// original parser never implemented them and neither does this one.
package igmp

import "encoding/binary"

// MessageType is the IGMP message type byte.
type MessageType uint8

const (
	MembershipQuery    MessageType = 0x11
	V1MembershipReport MessageType = 0x12
	V2MembershipReport MessageType = 0x16
	LeaveGroup         MessageType = 0x17
	V3MembershipReport MessageType = 0x22
)

// V2Message is an IGMPv1/v2-shaped message body (query, v1/v2 report, or
// leave-group all share this layout).
type V2Message struct {
	MaxRespTime uint8
	Checksum    uint16
	GroupAddr   [4]byte
}

// GroupRecord is one IGMPv3 group record.
type GroupRecord struct {
	Type        uint8
	AuxDataLen  uint8
	GroupAddr   [4]byte
	Sources     [][4]byte
}

// V3Report is a decoded IGMPv3 membership report.
type V3Report struct {
	Checksum uint16
	Groups   []GroupRecord
}

// Message is a generic decoded IGMP message: version + type + the body
// variant appropriate to that version. A membership query (0x11) is always
// decoded as version 2 with the v2 body, whether it was sent as an IGMPv2 or
// an IGMPv3 query; the IGMPv3 query fields are not decoded. An unrecognized
// type byte leaves Version at 0.
type Message struct {
	Version  int
	Type     MessageType
	V2       V2Message
	V3Report V3Report
}

func parseV2Message(data []byte) V2Message {
	return V2Message{
		MaxRespTime: data[1],
		Checksum:    binary.BigEndian.Uint16(data[2:4]),
		GroupAddr:   [4]byte{data[4], data[5], data[6], data[7]},
	}
}

// parseV3Groups decodes consecutive IGMPv3 group records starting at data.
func parseV3Groups(data []byte, numGroups uint16) []GroupRecord {
	groups := make([]GroupRecord, 0, numGroups)
	offset := 0
	for i := uint16(0); i < numGroups; i++ {
		rec := GroupRecord{
			Type:       data[offset],
			AuxDataLen: data[offset+1],
			GroupAddr:  [4]byte{data[offset+4], data[offset+5], data[offset+6], data[offset+7]},
		}
		numSources := binary.BigEndian.Uint16(data[offset+2 : offset+4])
		srcStart := offset + 8
		for s := uint16(0); s < numSources; s++ {
			o := srcStart + int(s)*4
			rec.Sources = append(rec.Sources, [4]byte{data[o], data[o+1], data[o+2], data[o+3]})
		}
		groups = append(groups, rec)
		offset += 8 + int(numSources)*4
	}
	return groups
}

func parseV3MembershipReport(data []byte) V3Report {
	numGroups := binary.BigEndian.Uint16(data[6:8])
	return V3Report{
		Checksum: binary.BigEndian.Uint16(data[2:4]),
		Groups:   parseV3Groups(data[8:], numGroups),
	}
}

// ParseMessage dispatches on the leading type byte.
func ParseMessage(data []byte) Message {
	msgType := MessageType(data[0])
	switch msgType {
	case MembershipQuery, V1MembershipReport, V2MembershipReport, LeaveGroup:
		return Message{Version: 2, Type: msgType, V2: parseV2Message(data)}
	case V3MembershipReport:
		return Message{Version: 3, Type: msgType, V3Report: parseV3MembershipReport(data)}
	default:
		return Message{Type: msgType}
	}
}
