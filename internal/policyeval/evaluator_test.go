package policyeval

import (
	"encoding/binary"
	"testing"

	"grimm.is/glacic/internal/config"
	"grimm.is/glacic/internal/dnscache"
	"grimm.is/glacic/internal/interaction"
	"grimm.is/glacic/internal/netutil"
	"grimm.is/glacic/internal/queueengine"
)

// buildDNSQuery assembles a minimal IPv4/UDP/DNS query packet for "example.com".
func buildDNSQuery(t *testing.T) []byte {
	t.Helper()

	name := []byte{7, 'e', 'x', 'a', 'm', 'p', 'l', 'e', 3, 'c', 'o', 'm', 0}
	dns := make([]byte, 0, 12+len(name)+4)
	dns = append(dns, 0x12, 0x34) // id
	dns = append(dns, 0x00, 0x00) // flags: query
	dns = append(dns, 0x00, 0x01) // qdcount=1
	dns = append(dns, 0x00, 0x00) // ancount=0
	dns = append(dns, 0x00, 0x00) // nscount=0
	dns = append(dns, 0x00, 0x00) // arcount=0
	dns = append(dns, name...)
	dns = append(dns, 0x00, 0x01) // QTYPE A
	dns = append(dns, 0x00, 0x01) // QCLASS IN

	udp := make([]byte, 8)
	binary.BigEndian.PutUint16(udp[0:2], 33333)
	binary.BigEndian.PutUint16(udp[2:4], 53)
	binary.BigEndian.PutUint16(udp[4:6], uint16(8+len(dns)))

	ip := make([]byte, 20)
	ip[0] = 0x45
	binary.BigEndian.PutUint16(ip[2:4], uint16(20+8+len(dns)))
	ip[8] = 64
	ip[9] = 17 // UDP
	copy(ip[12:16], []byte{10, 0, 0, 1})
	copy(ip[16:20], []byte{10, 0, 0, 2})

	pkt := append(ip, udp...)
	pkt = append(pkt, dns...)
	return pkt
}

// buildDNSResponse assembles a minimal IPv4/UDP/DNS response packet answering
// "example.com" with a single A record resolving to addr, as if replying to
// the query built by buildDNSQuery.
func buildDNSResponse(t *testing.T, addr [4]byte) []byte {
	t.Helper()

	name := []byte{7, 'e', 'x', 'a', 'm', 'p', 'l', 'e', 3, 'c', 'o', 'm', 0}
	dns := make([]byte, 0, 128)
	dns = append(dns, 0x12, 0x34) // id
	dns = append(dns, 0x81, 0x80) // flags: response, recursion available
	dns = append(dns, 0x00, 0x01) // qdcount=1
	dns = append(dns, 0x00, 0x01) // ancount=1
	dns = append(dns, 0x00, 0x00) // nscount=0
	dns = append(dns, 0x00, 0x00) // arcount=0
	dns = append(dns, name...)
	dns = append(dns, 0x00, 0x01) // QTYPE A
	dns = append(dns, 0x00, 0x01) // QCLASS IN
	dns = append(dns, name...)
	dns = append(dns, 0x00, 0x01) // TYPE A
	dns = append(dns, 0x00, 0x01) // CLASS IN
	dns = append(dns, 0x00, 0x00, 0x00, 0x3c) // TTL
	dns = append(dns, 0x00, 0x04) // RDLENGTH
	dns = append(dns, addr[:]...)

	udp := make([]byte, 8)
	binary.BigEndian.PutUint16(udp[0:2], 53)
	binary.BigEndian.PutUint16(udp[2:4], 33333)
	binary.BigEndian.PutUint16(udp[4:6], uint16(8+len(dns)))

	ip := make([]byte, 20)
	ip[0] = 0x45
	binary.BigEndian.PutUint16(ip[2:4], uint16(20+8+len(dns)))
	ip[8] = 64
	ip[9] = 17 // UDP
	copy(ip[12:16], []byte{10, 0, 0, 2})
	copy(ip[16:20], []byte{10, 0, 0, 1})

	pkt := append(ip, udp...)
	pkt = append(pkt, dns...)
	return pkt
}

func testProfile() config.Profile {
	next := 1
	return config.Profile{
		Name: "test",
		States: []config.State{
			{
				Index: "0",
				Policies: []config.Policy{
					{Name: "dns", Protocol: "dns", NextState: &next},
				},
			},
			{
				Index:    "1",
				Policies: []config.Policy{},
			},
		},
	}
}

func TestEvaluateAcceptsMatchingProtocolAndAdvancesState(t *testing.T) {
	profile := testProfile()
	ev := New(profile, dnscache.New())
	data := interaction.New(0, 1, uint8(len(profile.States)), 0, nil)

	verdict := ev.Policy()(queueengine.Packet{Payload: buildDNSQuery(t)}, data)
	if verdict != queueengine.Accept {
		t.Fatalf("expected Accept, got %v", verdict)
	}
	if data.State() != 1 {
		t.Fatalf("expected transition to state 1, got %d", data.State())
	}
}

func TestEvaluateDropsWhenNoPolicyMatchesAndNoDefault(t *testing.T) {
	profile := testProfile()
	ev := New(profile, dnscache.New())
	data := interaction.New(0, 1, uint8(len(profile.States)), 0, nil)

	// State 1 has no policies at all, so nothing can match.
	data.SetState(1)
	verdict := ev.Policy()(queueengine.Packet{Payload: buildDNSQuery(t)}, data)
	if verdict != queueengine.Drop {
		t.Fatalf("expected Drop, got %v", verdict)
	}
}

func TestEvaluateFallsBackToDefaultPolicy(t *testing.T) {
	next := 0
	def := true
	profile := config.Profile{
		Name: "test",
		States: []config.State{
			{
				Index: "0",
				Policies: []config.Policy{
					{Name: "http", Protocol: "http", NextState: &next},
					{Name: "default", Default: &def, NextState: &next},
				},
			},
		},
	}
	ev := New(profile, dnscache.New())
	data := interaction.New(0, 2, uint8(len(profile.States)), 0, nil)

	verdict := ev.Policy()(queueengine.Packet{Payload: buildDNSQuery(t)}, data)
	if verdict != queueengine.Accept {
		t.Fatalf("expected Accept via default policy, got %v", verdict)
	}
}

func TestEvaluateDNSQueryWithoutAnswersLeavesCacheEmpty(t *testing.T) {
	profile := testProfile()
	cache := dnscache.New()
	ev := New(profile, cache)
	data := interaction.New(0, 1, uint8(len(profile.States)), 0, nil)

	ev.Policy()(queueengine.Packet{Payload: buildDNSQuery(t)}, data)

	// The query itself has no answers, so nothing should be cached yet.
	if _, ok := cache.Get("example.com"); ok {
		t.Fatal("expected no cache entry from a query with no answers")
	}
}

func TestEvaluateObservesDNSResponseIntoCachedIP(t *testing.T) {
	next := 1
	profile := config.Profile{
		Name: "test",
		States: []config.State{
			{
				Index: "0",
				Policies: []config.Policy{
					{Name: "dns", Protocol: "dns", NextState: &next},
				},
			},
			{Index: "1", Policies: []config.Policy{}},
		},
	}
	cache := dnscache.New()
	ev := New(profile, cache)
	data := interaction.New(0, 1, uint8(len(profile.States)), 0, nil)

	addr := [4]byte{93, 184, 216, 34}
	verdict := ev.Policy()(queueengine.Packet{Payload: buildDNSResponse(t, addr)}, data)
	if verdict != queueengine.Accept {
		t.Fatalf("expected Accept, got %v", verdict)
	}

	cached, ok := data.CachedIP()
	if !ok {
		t.Fatal("expected cached IP to be set from DNS response")
	}
	if cached != netutil.IPv4FromNet(addr) {
		t.Errorf("expected cached IP %v, got %v", netutil.IPv4FromNet(addr), cached)
	}

	if addrs, ok := cache.Get("example.com"); !ok || len(addrs) != 1 || addrs[0] != netutil.IPv4FromNet(addr) {
		t.Error("expected domain cache to also observe the resolved address")
	}
}

func TestEvaluateMatchesCachedHost(t *testing.T) {
	matchHost := true
	next := 0
	profile := config.Profile{
		Name: "test",
		States: []config.State{
			{
				Index: "0",
				Policies: []config.Policy{
					{Name: "to-resolved-host", MatchCachedHost: &matchHost, NextState: &next},
				},
			},
		},
	}
	ev := New(profile, dnscache.New())
	data := interaction.New(0, 1, uint8(len(profile.States)), 0, nil)

	addr := [4]byte{10, 0, 0, 2}
	if ev.Policy()(queueengine.Packet{Payload: buildDNSQuery(t)}, data) != queueengine.Drop {
		t.Fatal("expected Drop before any address has been cached")
	}

	data.SetCachedIP(netutil.IPv4FromNet(addr))
	if ev.Policy()(queueengine.Packet{Payload: buildDNSQuery(t)}, data) != queueengine.Accept {
		t.Fatal("expected Accept once the packet's destination matches the cached host")
	}
}
