// Package interaction implements the per-interaction verdict state machine:
// state index, per-policy counters, a cached resolved IP, activity-period
// gating, and timeout gating. One Data exists per queued
// interaction and is owned by exactly one queue worker; its mutable fields
// are protected by its own mutex so a caller on any goroutine can safely
// read or update them.
package interaction

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"grimm.is/glacic/internal/netutil"
)

// DefaultTimeoutSeconds is substituted when an interaction's configured
// timeout (Data.Timeout) is exactly 0.
const DefaultTimeoutSeconds = 3600

// PacketCount is a per-policy match counter.
type PacketCount struct {
	Initialized bool
	Value       uint16
}

// Duration tracks how long a policy has been active in the current state,
// measured from the first matching packet.
type Duration struct {
	Initialized bool
	Since       time.Time
}

// Counters bundles the packet-count and duration tracked for one policy.
type Counters struct {
	PacketCount PacketCount
	Duration    Duration
}

// Data is the shared mutable state for one queued interaction: current
// state index, per-policy counters, a cached resolved address, and the
// gating parameters (timeout, activity period) that the generated policy
// predicates consult before issuing a verdict.
//
// All fields below the mutex are protected by it; callers must not read or
// write them directly.
type Data struct {
	// ID is a random identifier for this interaction; it has no bearing on
	// verdict logic.
	ID          string
	QueueIDBase uint16
	NumPolicies uint8
	NumStates   uint8
	Timeout     float64
	Activity    *ActivityPeriod

	mu           sync.Mutex
	currentState uint8
	counters     []Counters
	cachedIP     netutil.IPAddress
	hasCachedIP  bool
	lastRequest  time.Time
	inLoop       bool
}

// New creates interaction state for numStates states and numPolicies
// per-state policies, with state 0 as the initial state.
func New(queueIDBase uint16, numPolicies, numStates uint8, timeout float64, activity *ActivityPeriod) *Data {
	return &Data{
		ID:          uuid.New().String(),
		QueueIDBase: queueIDBase,
		NumPolicies: numPolicies,
		NumStates:   numStates,
		Timeout:     timeout,
		Activity:    activity,
		counters:    make([]Counters, numPolicies),
	}
}

// State returns the current state index.
func (d *Data) State() uint8 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.currentState
}

// SetState transitions to state, which must be within [0, NumStates).
func (d *Data) SetState(state uint8) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if state >= d.NumStates {
		return
	}
	d.currentState = state
}

// RecordMatch increments the match counter for policyIndex and, if this is
// the first match recorded since the counters were last reset, initializes
// its duration anchor to now.
func (d *Data) RecordMatch(policyIndex uint8, now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if int(policyIndex) >= len(d.counters) {
		return
	}
	c := &d.counters[policyIndex]
	c.PacketCount.Initialized = true
	c.PacketCount.Value++
	if !c.Duration.Initialized {
		c.Duration.Initialized = true
		c.Duration.Since = now
	}
}

// Counter returns a copy of the counters recorded for policyIndex.
func (d *Data) Counter(policyIndex uint8) Counters {
	d.mu.Lock()
	defer d.mu.Unlock()
	if int(policyIndex) >= len(d.counters) {
		return Counters{}
	}
	return d.counters[policyIndex]
}

// ResetCounters clears every policy's packet-count and duration, as happens
// on a state transition.
func (d *Data) ResetCounters() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.counters {
		d.counters[i] = Counters{}
	}
}

// SetCachedIP records the address a DNS response resolved a tracked
// symbolic destination to.
func (d *Data) SetCachedIP(addr netutil.IPAddress) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cachedIP = addr
	d.hasCachedIP = true
}

// CachedIP returns the cached resolved address, if any has been set.
func (d *Data) CachedIP() (netutil.IPAddress, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cachedIP, d.hasCachedIP
}

// Touch records now as the time of the most recent accepted request, for
// timeout gating.
func (d *Data) Touch(now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastRequest = now
}

// SetInLoop marks whether this interaction is currently cycling within a
// repeating state group (used by generated policy code to distinguish a
// fresh entry into a state loop from a repeat visit).
func (d *Data) SetInLoop(inLoop bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.inLoop = inLoop
}

// InLoop reports the current in-loop flag.
func (d *Data) InLoop() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.inLoop
}

// IsTimedOut reports whether now is far enough past the last recorded
// request to be considered timed out, per the interaction's configured
// threshold: 0 substitutes DefaultTimeoutSeconds, a negative threshold
// disables the gate, and an interaction that has never been touched is
// never timed out.
func (d *Data) IsTimedOut(now time.Time) bool {
	d.mu.Lock()
	last := d.lastRequest
	threshold := d.Timeout
	d.mu.Unlock()

	if threshold < 0 {
		return false
	}
	if last.IsZero() {
		return false
	}
	if threshold == 0 {
		threshold = DefaultTimeoutSeconds
	}
	return now.Sub(last).Seconds() > threshold
}

// IsInActivityPeriod reports whether now falls within the interaction's
// configured activity window, or true if no activity period is configured.
func (d *Data) IsInActivityPeriod(now time.Time) bool {
	return IsInActivityPeriod(d.Activity, now)
}
