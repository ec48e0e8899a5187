// Package netutil provides conversions between textual, hexadecimal, and
// network-order representations of MAC and IP addresses, plus a SHA-256
// packet hashing helper.
package netutil

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
)

// ErrMalformed is returned when an input cannot be parsed into the
// requested representation.
var ErrMalformed = errors.New("netutil: malformed input")

// IPVersion discriminates the two address families carried by IPAddress.
type IPVersion uint8

const (
	// VersionUnset marks an IPAddress with no value.
	VersionUnset IPVersion = 0
	VersionV4    IPVersion = 4
	VersionV6    IPVersion = 6
)

// IPAddress is a tagged variant over a 4-byte IPv4 or 16-byte IPv6 value,
// both kept in network byte order. Equality is version-sensitive: comparing
// a v4 value to a v6 value is always false, even if the bytes coincide.
type IPAddress struct {
	Version IPVersion
	V4      [4]byte
	V6      [16]byte
}

// Equal reports whether two addresses carry the same version and bytes.
func (a IPAddress) Equal(b IPAddress) bool {
	if a.Version != b.Version {
		return false
	}
	switch a.Version {
	case VersionV4:
		return a.V4 == b.V4
	case VersionV6:
		return a.V6 == b.V6
	default:
		return false
	}
}

// String renders the address in its canonical dotted-quad or colon-hex form.
// An unset address renders as the empty string.
func (a IPAddress) String() string {
	switch a.Version {
	case VersionV4:
		return net.IP(a.V4[:]).String()
	case VersionV6:
		return net.IP(a.V6[:]).String()
	default:
		return ""
	}
}

// IPv4FromNet builds an IPAddress from a 4-byte network-order buffer.
func IPv4FromNet(b [4]byte) IPAddress {
	return IPAddress{Version: VersionV4, V4: b}
}

// IPv6FromNet builds an IPAddress from a 16-byte network-order buffer.
func IPv6FromNet(b [16]byte) IPAddress {
	return IPAddress{Version: VersionV6, V6: b}
}

// IPv4StrToNet parses a dotted-quad string into its 4-byte network-order form.
func IPv4StrToNet(s string) ([4]byte, error) {
	ip := net.ParseIP(s)
	if ip == nil {
		return [4]byte{}, fmt.Errorf("netutil: parse ipv4 %q: %w", s, ErrMalformed)
	}
	v4 := ip.To4()
	if v4 == nil {
		return [4]byte{}, fmt.Errorf("netutil: %q is not an ipv4 address: %w", s, ErrMalformed)
	}
	var out [4]byte
	copy(out[:], v4)
	return out, nil
}

// IPv6StrToNet parses a colon-hex string into its 16-byte network-order form.
func IPv6StrToNet(s string) ([16]byte, error) {
	ip := net.ParseIP(s)
	if ip == nil {
		return [16]byte{}, fmt.Errorf("netutil: parse ipv6 %q: %w", s, ErrMalformed)
	}
	v6 := ip.To16()
	if v6 == nil || ip.To4() != nil {
		return [16]byte{}, fmt.Errorf("netutil: %q is not an ipv6 address: %w", s, ErrMalformed)
	}
	var out [16]byte
	copy(out[:], v6)
	return out, nil
}

// IPStrToNet parses a textual address of the given version into an IPAddress.
func IPStrToNet(s string, version IPVersion) (IPAddress, error) {
	switch version {
	case VersionV4:
		b, err := IPv4StrToNet(s)
		if err != nil {
			return IPAddress{}, err
		}
		return IPv4FromNet(b), nil
	case VersionV6:
		b, err := IPv6StrToNet(s)
		if err != nil {
			return IPAddress{}, err
		}
		return IPv6FromNet(b), nil
	default:
		return IPAddress{}, fmt.Errorf("netutil: unknown IP version %d: %w", version, ErrMalformed)
	}
}

const macAddrLength = 6

// MACHexToStr renders a 6-byte MAC address as "xx:xx:xx:xx:xx:xx".
func MACHexToStr(mac [macAddrLength]byte) string {
	return net.HardwareAddr(mac[:]).String()
}

// MACStrToHex parses a colon-separated MAC address string into 6 bytes.
func MACStrToHex(s string) ([macAddrLength]byte, error) {
	hw, err := net.ParseMAC(s)
	if err != nil || len(hw) != macAddrLength {
		return [macAddrLength]byte{}, fmt.Errorf("netutil: parse mac %q: %w", s, ErrMalformed)
	}
	var out [macAddrLength]byte
	copy(out[:], hw)
	return out, nil
}

// HexStrToPayload decodes a hex string (two characters per byte, no
// whitespace) into a byte buffer. An odd-length string or a non-hex
// character yields an error (wrapping ErrMalformed for odd length).
func HexStrToPayload(hexstring string) ([]byte, error) {
	if len(hexstring)%2 != 0 {
		return nil, fmt.Errorf("netutil: odd-length hex string: %w", ErrMalformed)
	}
	return hex.DecodeString(hexstring)
}

// ComputeHash returns the SHA-256 digest of payload.
func ComputeHash(payload []byte) [sha256.Size]byte {
	return sha256.Sum256(payload)
}

// HashString renders a SHA-256 digest as lowercase hex, matching print_hash.
func HashString(hash [sha256.Size]byte) string {
	return hex.EncodeToString(hash[:])
}
