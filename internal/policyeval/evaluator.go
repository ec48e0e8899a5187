// Package policyeval implements a generic per-device verdict callback:
// given a device's compiled profile it walks the policies of the
// interaction's current state, matches each candidate against the queued
// packet with the protocol parsers, and drives the interaction's counters,
// cached IP, and state transitions accordingly.
//
// A real deployment generates this callback per device from the compiled
// profile; this evaluator is the reference implementation of that contract,
// generic enough to run any profile without code generation.
package policyeval

import (
	"strings"
	"time"

	"grimm.is/glacic/internal/clock"
	"grimm.is/glacic/internal/config"
	"grimm.is/glacic/internal/dnscache"
	"grimm.is/glacic/internal/interaction"
	"grimm.is/glacic/internal/logging"
	"grimm.is/glacic/internal/netutil"
	"grimm.is/glacic/internal/parsers/coap"
	"grimm.is/glacic/internal/parsers/dhcp"
	"grimm.is/glacic/internal/parsers/dns"
	"grimm.is/glacic/internal/parsers/header"
	"grimm.is/glacic/internal/parsers/http"
	"grimm.is/glacic/internal/parsers/igmp"
	"grimm.is/glacic/internal/parsers/ssdp"
	"grimm.is/glacic/internal/queueengine"
)

// Evaluator binds one device's profile and the shared DNS cache to produce
// a queueengine.PolicyFunc.
type Evaluator struct {
	profile config.Profile
	cache   *dnscache.Cache
}

// New returns an Evaluator for profile, observing and resolving DNS
// responses through cache.
func New(profile config.Profile, cache *dnscache.Cache) *Evaluator {
	return &Evaluator{profile: profile, cache: cache}
}

// Policy returns the queueengine.PolicyFunc this evaluator implements.
func (e *Evaluator) Policy() queueengine.PolicyFunc {
	return e.evaluate
}

func (e *Evaluator) evaluate(pkt queueengine.Packet, data *interaction.Data) queueengine.Verdict {
	now := clock.Now()

	if data.IsTimedOut(now) {
		return queueengine.Drop
	}
	if !data.IsInActivityPeriod(now) {
		return queueengine.Drop
	}

	state := int(data.State())
	if state < 0 || state >= len(e.profile.States) {
		logging.Warn("policyeval: current state out of range", "state", state, "profile", e.profile.Name)
		return queueengine.Drop
	}
	policies := e.profile.States[state].Policies

	var fallback *config.Policy
	for i := range policies {
		p := &policies[i]
		if p.Default != nil && *p.Default {
			fallback = p
			continue
		}
		if e.matches(pkt.Payload, p, data) {
			if !policyActive(p, now) {
				continue
			}
			if policyExpired(p, data.Counter(uint8(i)), now) {
				continue
			}
			data.RecordMatch(uint8(i), now)
			data.Touch(now)
			e.observe(pkt.Payload, p, data)
			e.advance(data, p)
			return queueengine.Accept
		}
	}

	if fallback != nil {
		data.Touch(now)
		e.advance(data, fallback)
		return queueengine.Accept
	}
	return queueengine.Drop
}

// policyActive reports whether p's own activity window, if it declares one,
// currently holds. Policies without an activity window are always active;
// the interaction-wide window is checked separately by the caller.
func policyActive(p *config.Policy, now time.Time) bool {
	if p.ActivityStart == nil || p.ActivityDuration == nil {
		return true
	}
	ap := &interaction.ActivityPeriod{Start: *p.ActivityStart, Duration: *p.ActivityDuration}
	return interaction.IsInActivityPeriod(ap, now)
}

// policyExpired reports whether p declares its own timeout and the
// duration since its first match already exceeds it. This lets a single
// state policy bound how long a predicate may keep matching (a DHCP lease
// renewal window, say) independent of the interaction-wide idle timeout.
func policyExpired(p *config.Policy, counters interaction.Counters, now time.Time) bool {
	if p.Timeout == nil || !counters.Duration.Initialized {
		return false
	}
	return now.Sub(counters.Duration.Since).Seconds() > *p.Timeout
}

func (e *Evaluator) advance(data *interaction.Data, p *config.Policy) {
	if p.NextState != nil {
		data.SetState(uint8(*p.NextState))
	}
}

// matches classifies the packet by protocol and, when the policy names a
// method, checks it against the parsed message. A policy that sets
// MatchCachedHost additionally requires the packet's source or destination
// to equal the interaction's cached resolved IP.
func (e *Evaluator) matches(payload []byte, p *config.Policy, data *interaction.Data) bool {
	if p.MatchCachedHost != nil && *p.MatchCachedHost && !matchesCachedHost(payload, data) {
		return false
	}
	if p.Protocol == "" {
		return true
	}
	if len(payload) < 1 {
		return false
	}
	hlen := header.HeadersLength(payload)
	if hlen <= 0 || hlen > len(payload) {
		return false
	}
	app := payload[hlen:]

	switch strings.ToLower(p.Protocol) {
	case "dns":
		_, err := dns.ParseMessage(app)
		return err == nil
	case "dhcp":
		_, err := dhcp.ParseMessage(app)
		return err == nil
	case "http":
		if !protocolIs(payload, header.ProtoTCP) {
			return false
		}
		msg := http.ParseMessage(app, dstPort(payload))
		if p.Method == "" {
			return true
		}
		return strings.EqualFold(msg.Method.String(), p.Method)
	case "ssdp":
		msg := ssdp.ParseMessage(app, dstAddr(payload))
		if p.Method == "" {
			return true
		}
		return strings.EqualFold(msg.Method.String(), p.Method)
	case "coap":
		msg := coap.ParseMessage(app, len(app))
		if p.Method == "" {
			return true
		}
		return strings.EqualFold(msg.Method.String(), p.Method)
	case "igmp":
		igmp.ParseMessage(app)
		return true
	case "tcp":
		return protocolIs(payload, header.ProtoTCP)
	case "udp":
		return protocolIs(payload, header.ProtoUDP)
	default:
		return false
	}
}

// matchesCachedHost reports whether payload's source or destination address
// equals data's cached resolved IP. It returns false if no address has been
// cached yet.
func matchesCachedHost(payload []byte, data *interaction.Data) bool {
	cached, ok := data.CachedIP()
	if !ok {
		return false
	}
	return srcAddr(payload).Equal(cached) || dstAddr(payload).Equal(cached)
}

// observe feeds DNS responses into the shared domain-name cache and into the
// interaction's own cached-IP slot, so a later cached-host policy can match
// traffic to the resolved address without repeating the protocol's name
// lookup. Every question that resolves within the answers is added to the
// cache and its first address becomes the cached IP; when several questions
// resolve, the last one's address is kept.
func (e *Evaluator) observe(payload []byte, p *config.Policy, data *interaction.Data) {
	if strings.ToLower(p.Protocol) != "dns" {
		return
	}
	hlen := header.HeadersLength(payload)
	if hlen <= 0 || hlen > len(payload) {
		return
	}
	msg, err := dns.ParseMessage(payload[hlen:])
	if err != nil || !msg.Header.QR {
		return
	}
	for _, q := range msg.Questions {
		addrs := dns.AddressesForName(msg.Answers, q.Name)
		if len(addrs) == 0 {
			continue
		}
		if e.cache != nil {
			e.cache.Add(q.Name, addrs)
		}
		data.SetCachedIP(addrs[0])
	}
}

func protocolIs(payload []byte, want header.IPProtocol) bool {
	l3len := header.L3HeaderLength(payload)
	if l3len <= 0 || l3len >= len(payload) {
		return false
	}
	switch payload[0] >> 4 {
	case 4:
		return header.IPProtocol(payload[9]) == want
	case 6:
		return header.IPProtocol(payload[6]) == want
	default:
		return false
	}
}

func dstPort(payload []byte) uint16 {
	l3len := header.L3HeaderLength(payload)
	if l3len <= 0 || l3len+4 > len(payload) {
		return 0
	}
	return header.DstPort(payload[l3len:])
}

func dstAddr(payload []byte) netutil.IPAddress {
	if len(payload) < 1 {
		return netutil.IPAddress{}
	}
	switch payload[0] >> 4 {
	case 4:
		return netutil.IPv4FromNet(header.IPv4DstAddr(payload))
	case 6:
		return netutil.IPv6FromNet(header.IPv6DstAddr(payload))
	default:
		return netutil.IPAddress{}
	}
}

func srcAddr(payload []byte) netutil.IPAddress {
	if len(payload) < 1 {
		return netutil.IPAddress{}
	}
	switch payload[0] >> 4 {
	case 4:
		return netutil.IPv4FromNet(header.IPv4SrcAddr(payload))
	case 6:
		return netutil.IPv6FromNet(header.IPv6SrcAddr(payload))
	default:
		return netutil.IPAddress{}
	}
}
