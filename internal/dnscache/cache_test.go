package dnscache

import (
	"testing"

	"grimm.is/glacic/internal/netutil"
)

func addr(s string) netutil.IPAddress {
	b, _ := netutil.IPv4StrToNet(s)
	return netutil.IPv4FromNet(b)
}

func TestAddAppendsPreservingOrder(t *testing.T) {
	c := New()
	c.Add("example.com", []netutil.IPAddress{addr("1.1.1.1")})
	c.Add("example.com", []netutil.IPAddress{addr("2.2.2.2"), addr("3.3.3.3")})

	got, ok := c.Get("example.com")
	if !ok {
		t.Fatal("expected entry")
	}
	want := []string{"1.1.1.1", "2.2.2.2", "3.3.3.3"}
	if len(got) != len(want) {
		t.Fatalf("got %d addresses, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].String() != w {
			t.Fatalf("address %d = %s want %s", i, got[i].String(), w)
		}
	}
}

func TestPopDetachesEntry(t *testing.T) {
	c := New()
	c.Add("example.com", []netutil.IPAddress{addr("1.1.1.1")})
	addrs, ok := c.Pop("example.com")
	if !ok || len(addrs) != 1 {
		t.Fatalf("pop failed: %v %v", addrs, ok)
	}
	if _, ok := c.Get("example.com"); ok {
		t.Fatal("expected entry to be removed after pop")
	}
}

func TestContains(t *testing.T) {
	c := New()
	c.Add("example.com", []netutil.IPAddress{addr("1.1.1.1")})
	if !c.Contains("example.com", addr("1.1.1.1")) {
		t.Fatal("expected contains to find address")
	}
	if c.Contains("example.com", addr("9.9.9.9")) {
		t.Fatal("unexpected contains match")
	}
	if c.Contains("missing.example.com", addr("1.1.1.1")) {
		t.Fatal("unexpected contains match for missing name")
	}
}

func TestGetAbsentName(t *testing.T) {
	c := New()
	if _, ok := c.Get("missing.example.com"); ok {
		t.Fatal("expected absent entry")
	}
}
