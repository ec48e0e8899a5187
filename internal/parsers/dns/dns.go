// Package dns decodes DNS messages (RFC 1035 wire format) byte-exactly,
// including label compression, and exposes the question/answer lookups the
// interaction engine uses to bind symbolic policy destinations to observed
// addresses.
//
// Only the header, question, and answer sections are decoded; authority and
// additional records are skipped by cursor advancement, matching the
// original parser's scope cut ("parsing other sections is not necessary").
package dns

import (
	"encoding/binary"
	"errors"
	"strings"

	"github.com/miekg/dns"

	"grimm.is/glacic/internal/netutil"
)

// RRType mirrors the DNS resource record types this parser distinguishes.
type RRType uint16

const (
	TypeA     RRType = dns.TypeA
	TypeNS    RRType = dns.TypeNS
	TypeMD    RRType = dns.TypeMD
	TypeMF    RRType = dns.TypeMF
	TypeCNAME RRType = dns.TypeCNAME
	TypeSOA   RRType = dns.TypeSOA
	TypeMB    RRType = dns.TypeMB
	TypeMG    RRType = dns.TypeMG
	TypeMR    RRType = dns.TypeMR
	TypeNULL  RRType = dns.TypeNULL
	TypeWKS   RRType = dns.TypeWKS
	TypePTR   RRType = dns.TypePTR
	TypeHINFO RRType = dns.TypeHINFO
	TypeMINFO RRType = dns.TypeMINFO
	TypeMX    RRType = dns.TypeMX
	TypeTXT   RRType = dns.TypeTXT
	TypeAAAA  RRType = dns.TypeAAAA
	TypeOPT   RRType = dns.TypeOPT
	TypeANY   RRType = dns.TypeANY
)

const (
	headerSize          = 12
	maxDomainNameLength  = 100
	qrFlagMask           = 0x8000
	classMask            = 0x7fff
	compressionPtrMask   = 0x3fff
)

var (
	// ErrTruncated is returned when the buffer ends before a field or
	// label the parser expected to read.
	ErrTruncated = errors.New("dns: truncated message")
	// ErrCompressionLoop is returned when a chain of compression pointers
	// revisits more positions than the message could possibly contain,
	// guarding against pointer cycles.
	ErrCompressionLoop = errors.New("dns: compression pointer loop")
)

// Header is the fixed 12-byte DNS message header.
type Header struct {
	ID      uint16
	Flags   uint16
	QR      bool
	QDCount uint16
	ANCount uint16
	NSCount uint16
	ARCount uint16
}

// Question is one entry of the question section.
type Question struct {
	Name  string
	QType RRType
	Class uint16
}

// RData is the tagged variant over a resource record's data: an IP address
// for A/AAAA, a decoded domain name for NS/CNAME/PTR, or opaque bytes for
// anything else.
type RData struct {
	IP     netutil.IPAddress
	Name   string
	Opaque []byte
}

// ResourceRecord is one entry of the answer (or, in principle, authority or
// additional) section.
type ResourceRecord struct {
	Name     string
	RType    RRType
	Class    uint16
	TTL      uint32
	RDLength uint16
	RData    RData
}

// Message is a decoded DNS message: header, questions, and answers.
// Authority and additional sections are never populated.
type Message struct {
	Header    Header
	Questions []Question
	Answers   []ResourceRecord
}

// ParseHeader decodes the 12-byte DNS header starting at data[offset] and
// returns the header plus the offset advanced past it.
func ParseHeader(data []byte, offset int) (Header, int, error) {
	if len(data) < offset+headerSize {
		return Header{}, offset, ErrTruncated
	}
	flags := binary.BigEndian.Uint16(data[offset+2 : offset+4])
	h := Header{
		ID:      binary.BigEndian.Uint16(data[offset : offset+2]),
		Flags:   flags,
		QR:      flags&qrFlagMask != 0,
		QDCount: binary.BigEndian.Uint16(data[offset+4 : offset+6]),
		ANCount: binary.BigEndian.Uint16(data[offset+6 : offset+8]),
		NSCount: binary.BigEndian.Uint16(data[offset+8 : offset+10]),
		ARCount: binary.BigEndian.Uint16(data[offset+10 : offset+12]),
	}
	return h, offset + headerSize, nil
}

// parseDomainName decodes a (possibly compressed) domain name starting at
// data[offset]. It returns the decoded name, and the offset the caller
// should resume parsing from.
//
// Once a compression pointer is followed, the caller's resume offset is
// fixed at two bytes past that first pointer; a separate cursor continues
// following the label chain (and further pointers) to build the full name.
// This matches the original's cursor-vs-decoding-position split exactly.
func parseDomainName(data []byte, offset int) (string, int, error) {
	if offset >= len(data) {
		return "", offset, ErrTruncated
	}
	if data[offset] == 0 {
		return "", offset + 1, nil
	}

	var sb strings.Builder
	pos := offset
	compressed := false
	resumeOffset := offset
	maxSteps := len(data) + 1

	for steps := 0; ; steps++ {
		if steps > maxSteps {
			return "", 0, ErrCompressionLoop
		}
		if pos >= len(data) {
			return "", 0, ErrTruncated
		}
		lengthByte := data[pos]
		if lengthByte == 0 {
			break
		}
		if lengthByte>>6 == 3 {
			if pos+2 > len(data) {
				return "", 0, ErrTruncated
			}
			if !compressed {
				resumeOffset = pos + 2
				compressed = true
			}
			pos = int(binary.BigEndian.Uint16(data[pos:pos+2])) & compressionPtrMask
			continue
		}
		labelLen := int(lengthByte)
		pos++
		if pos+labelLen > len(data) {
			return "", 0, ErrTruncated
		}
		sb.Write(data[pos : pos+labelLen])
		sb.WriteByte('.')
		pos += labelLen
		if !compressed {
			resumeOffset = pos
		}
	}

	if !compressed {
		resumeOffset = pos + 1
	}
	return strings.TrimSuffix(sb.String(), "."), resumeOffset, nil
}

// ParseQuestions decodes qdcount question-section entries starting at
// data[offset], returning the decoded questions and the advanced offset.
func ParseQuestions(qdcount uint16, data []byte, offset int) ([]Question, int, error) {
	questions := make([]Question, 0, qdcount)
	for i := uint16(0); i < qdcount; i++ {
		name, next, err := parseDomainName(data, offset)
		if err != nil {
			return questions, offset, err
		}
		offset = next
		if len(data) < offset+4 {
			return questions, offset, ErrTruncated
		}
		q := Question{
			Name:  name,
			QType: RRType(binary.BigEndian.Uint16(data[offset : offset+2])),
			Class: binary.BigEndian.Uint16(data[offset+2:offset+4]) & classMask,
		}
		offset += 4
		questions = append(questions, q)
	}
	return questions, offset, nil
}

func parseRData(rtype RRType, rdlength uint16, data []byte, offset int) (RData, int, error) {
	if rdlength == 0 {
		return RData{}, offset, nil
	}
	if len(data) < offset+int(rdlength) {
		return RData{}, offset, ErrTruncated
	}
	switch rtype {
	case TypeA:
		var v4 [4]byte
		copy(v4[:], data[offset:offset+4])
		return RData{IP: netutil.IPv4FromNet(v4)}, offset + int(rdlength), nil
	case TypeAAAA:
		var v6 [16]byte
		copy(v6[:], data[offset:offset+16])
		return RData{IP: netutil.IPv6FromNet(v6)}, offset + int(rdlength), nil
	case TypeNS, TypeCNAME, TypePTR:
		name, next, err := parseDomainName(data, offset)
		if err != nil {
			return RData{}, offset, err
		}
		return RData{Name: name}, next, nil
	default:
		opaque := make([]byte, rdlength)
		copy(opaque, data[offset:offset+int(rdlength)])
		return RData{Opaque: opaque}, offset + int(rdlength), nil
	}
}

// ParseResourceRecords decodes count resource records starting at
// data[offset], returning the decoded records and the advanced offset.
func ParseResourceRecords(count uint16, data []byte, offset int) ([]ResourceRecord, int, error) {
	rrs := make([]ResourceRecord, 0, count)
	for i := uint16(0); i < count; i++ {
		name, next, err := parseDomainName(data, offset)
		if err != nil {
			return rrs, offset, err
		}
		offset = next
		if len(data) < offset+10 {
			return rrs, offset, ErrTruncated
		}
		rtype := RRType(binary.BigEndian.Uint16(data[offset : offset+2]))
		rr := ResourceRecord{
			Name:     name,
			RType:    rtype,
			Class:    binary.BigEndian.Uint16(data[offset+2:offset+4]) & classMask,
			TTL:      binary.BigEndian.Uint32(data[offset+4 : offset+8]),
			RDLength: binary.BigEndian.Uint16(data[offset+8 : offset+10]),
		}
		offset += 10
		rdata, next, err := parseRData(rtype, rr.RDLength, data, offset)
		if err != nil {
			return rrs, offset, err
		}
		rr.RData = rdata
		offset = next
		rrs = append(rrs, rr)
	}
	return rrs, offset, nil
}

// ParseMessage decodes a full DNS message: header, question section, and
// (for responses) the answer section. Authority and additional sections are
// never decoded.
func ParseMessage(data []byte) (Message, error) {
	var msg Message
	header, offset, err := ParseHeader(data, 0)
	if err != nil {
		return msg, err
	}
	msg.Header = header

	if header.QDCount > 0 {
		questions, next, err := ParseQuestions(header.QDCount, data, offset)
		msg.Questions = questions
		offset = next
		if err != nil {
			return msg, err
		}
	}
	if header.QR && header.ANCount > 0 {
		answers, next, err := ParseResourceRecords(header.ANCount, data, offset)
		msg.Answers = answers
		offset = next
		if err != nil {
			return msg, err
		}
	}
	return msg, nil
}

// ContainsSuffixDomainName reports whether any question's name ends with
// suffix.
func ContainsSuffixDomainName(questions []Question, suffix string) bool {
	for _, q := range questions {
		if strings.HasSuffix(q.Name, suffix) {
			return true
		}
	}
	return false
}

// ContainsFullDomainName reports whether any question's name exactly equals
// name.
func ContainsFullDomainName(questions []Question, name string) bool {
	for _, q := range questions {
		if q.Name == name {
			return true
		}
	}
	return false
}

// GetQuestion returns the first question whose name exactly equals name, or
// nil if none match.
func GetQuestion(questions []Question, name string) *Question {
	for i := range questions {
		if questions[i].Name == name {
			return &questions[i]
		}
	}
	return nil
}

// AddressesForName follows CNAME chains within answers, starting from name,
// and collects every A/AAAA address reachable along the chain, in the order
// encountered. Returns an empty, non-nil slice if name is not present.
func AddressesForName(answers []ResourceRecord, name string) []netutil.IPAddress {
	addresses := make([]netutil.IPAddress, 0)
	cname := name
	for _, rr := range answers {
		if rr.Name != cname {
			continue
		}
		switch rr.RType {
		case TypeA, TypeAAAA:
			addresses = append(addresses, rr.RData.IP)
		case TypeCNAME:
			cname = rr.RData.Name
		}
	}
	return addresses
}
