// Package rulebridge provides a thin command interface over nft, the
// kernel packet filter's userspace control tool. Bridge shells out to nft
// and parses its line-oriented list output, since the counters and rules it
// manages are declared by an operator-facing profile compiler, not by this
// process. On Linux, NativeReader (native.go) reads rule-embedded counters
// over netlink instead.
package rulebridge

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// CommandRunner abstracts external process execution so the bridge can be
// exercised without a real nft binary.
type CommandRunner interface {
	Run(name string, args ...string) error
	Output(name string, args ...string) ([]byte, error)
}

// Bridge issues nft commands and reads back rules and counters.
type Bridge struct {
	runner CommandRunner
}

// New creates a Bridge that issues commands through runner.
func New(runner CommandRunner) *Bridge {
	return &Bridge{runner: runner}
}

// Run executes an nft command line, discarding its output.
func (b *Bridge) Run(cmd string) bool {
	if err := b.runner.Run("nft", strings.Fields(cmd)...); err != nil {
		return false
	}
	return true
}

// RunVerbose executes an nft command line and returns its combined output.
// ok is false if the command could not be executed.
func (b *Bridge) RunVerbose(cmd string) (output string, ok bool) {
	out, err := b.runner.Output("nft", strings.Fields(cmd)...)
	if err != nil {
		return "", false
	}
	return string(out), true
}

var handlePattern = regexp.MustCompile(`handle\s+(\d+)`)

// ParseHandle extracts the rule handle from a chunk of nft list output. It
// returns -1 if no handle is present.
func ParseHandle(output string) int64 {
	m := handlePattern.FindStringSubmatch(output)
	if m == nil {
		return -1
	}
	handle, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return -1
	}
	return handle
}

// DeleteRuleByHandle removes a single rule identified by table, chain, and
// handle.
func (b *Bridge) DeleteRuleByHandle(table, chain string, handle int64) bool {
	cmd := fmt.Sprintf("delete rule %s %s handle %d", table, chain, handle)
	return b.Run(cmd)
}

// DeleteRule locates rule within table/chain by listing the chain, finding
// the line containing rule's literal text, extracting its handle, and
// deleting by handle. It returns false if the rule cannot be found or the
// delete fails.
func (b *Bridge) DeleteRule(table, chain, rule string) bool {
	listing, ok := b.RunVerbose(fmt.Sprintf("list chain %s %s", table, chain))
	if !ok {
		return false
	}

	var ruleLine string
	for _, line := range strings.Split(listing, "\n") {
		if strings.Contains(line, rule) {
			ruleLine = line
			break
		}
	}
	if ruleLine == "" {
		return false
	}

	handle := ParseHandle(ruleLine)
	if handle == -1 {
		return false
	}
	return b.DeleteRuleByHandle(table, chain, handle)
}

// CounterKind selects which field of an nft named counter to read.
type CounterKind int

const (
	CounterPackets CounterKind = iota
	CounterBytes
)

var (
	packetsPattern = regexp.MustCompile(`packets\s+(\d+)`)
	bytesPattern   = regexp.MustCompile(`bytes\s+(\d+)`)
)

// ReadCounter reads the packet or byte value of a named nft counter. It
// returns -1 if the counter cannot be read or parsed.
func (b *Bridge) ReadCounter(table, counter string, kind CounterKind) int64 {
	output, ok := b.RunVerbose(fmt.Sprintf("list counter %s %s", table, counter))
	if !ok {
		return -1
	}

	pattern := packetsPattern
	if kind == CounterBytes {
		pattern = bytesPattern
	}
	m := pattern.FindStringSubmatch(output)
	if m == nil {
		return -1
	}
	v, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return -1
	}
	return v
}

// ReadPackets reads the packet count of a named nft counter.
func (b *Bridge) ReadPackets(table, counter string) int64 {
	return b.ReadCounter(table, counter, CounterPackets)
}

// ReadBytes reads the byte count of a named nft counter.
func (b *Bridge) ReadBytes(table, counter string) int64 {
	return b.ReadCounter(table, counter, CounterBytes)
}

// NowMicroseconds returns a monotonic-ish wall-clock reading expressed as
// seconds*1e6 + microseconds, matching the granularity the original
// duration counters were stamped with.
func NowMicroseconds() uint64 {
	now := time.Now()
	return uint64(now.Unix())*1_000_000 + uint64(now.Nanosecond()/1000)
}
