package netutil

import "testing"

func TestIPv4RoundTrip(t *testing.T) {
	b, err := IPv4StrToNet("192.168.1.42")
	if err != nil {
		t.Fatalf("IPv4StrToNet: %v", err)
	}
	addr := IPv4FromNet(b)
	if got := addr.String(); got != "192.168.1.42" {
		t.Fatalf("round trip: got %q", got)
	}
}

func TestIPv6RoundTrip(t *testing.T) {
	b, err := IPv6StrToNet("2001:db8::1")
	if err != nil {
		t.Fatalf("IPv6StrToNet: %v", err)
	}
	addr := IPv6FromNet(b)
	if got := addr.String(); got != "2001:db8::1" {
		t.Fatalf("round trip: got %q", got)
	}
}

func TestIPAddressEqualityIsVersionSensitive(t *testing.T) {
	v4b, _ := IPv4StrToNet("0.0.0.1")
	v4 := IPv4FromNet(v4b)
	var v6b [16]byte
	v6b[15] = 1
	v6 := IPv6FromNet(v6b)
	if v4.Equal(v6) {
		t.Fatal("cross-version addresses must never be equal")
	}
}

func TestMACRoundTrip(t *testing.T) {
	mac, err := MACStrToHex("78:8b:2a:b2:20:ea")
	if err != nil {
		t.Fatalf("MACStrToHex: %v", err)
	}
	if got := MACHexToStr(mac); got != "78:8b:2a:b2:20:ea" {
		t.Fatalf("round trip: got %q", got)
	}
}

func TestHexStrToPayload(t *testing.T) {
	payload, err := HexStrToPayload("deadbeef")
	if err != nil {
		t.Fatalf("HexStrToPayload: %v", err)
	}
	if len(payload) != 4 {
		t.Fatalf("expected length 4, got %d", len(payload))
	}
	want := []byte{0xde, 0xad, 0xbe, 0xef}
	for i := range want {
		if payload[i] != want[i] {
			t.Fatalf("byte %d: got %#x want %#x", i, payload[i], want[i])
		}
	}
}

func TestComputeHash(t *testing.T) {
	h := ComputeHash([]byte("hello"))
	if HashString(h) != "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824" {
		t.Fatalf("unexpected hash: %s", HashString(h))
	}
}
