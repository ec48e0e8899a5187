//go:build linux

package rulebridge

import (
	"fmt"

	"github.com/google/nftables"
	"github.com/google/nftables/expr"
)

// NFTablesConn abstracts the subset of *nftables.Conn this package needs,
// mirroring the teacher's NFTablesConn seam (see internal/firewall's native
// nftables wrapper) so native-mode counter reads can be exercised without a
// real netlink socket in tests.
type NFTablesConn interface {
	GetRules(t *nftables.Table, c *nftables.Chain) ([]*nftables.Rule, error)
}

// NativeReader reads rule-embedded nftables counters directly over netlink
// instead of shelling out to nft and parsing its text output. It locates
// rules by their UserData tag, not by handle or rule text as Bridge does.
type NativeReader struct {
	conn NFTablesConn
}

// NewNativeReader wraps conn for native-mode counter reads.
func NewNativeReader(conn NFTablesConn) *NativeReader {
	return &NativeReader{conn: conn}
}

// ReadCounter sums the packets and bytes of every counter expression found
// on rules in chain whose UserData equals tag exactly.
func (n *NativeReader) ReadCounter(table *nftables.Table, chain *nftables.Chain, tag string) (packets, bytes uint64, err error) {
	rules, err := n.conn.GetRules(table, chain)
	if err != nil {
		return 0, 0, fmt.Errorf("rulebridge: list rules in %s/%s: %w", table.Name, chain.Name, err)
	}

	for _, rule := range rules {
		if string(rule.UserData) != tag {
			continue
		}
		if c, ok := counterExpr(rule.Exprs); ok {
			packets += c.Packets
			bytes += c.Bytes
		}
	}
	return packets, bytes, nil
}

// counterExpr extracts a rule's embedded counter expression, if present.
func counterExpr(exprs []expr.Any) (*expr.Counter, bool) {
	for _, e := range exprs {
		if c, ok := e.(*expr.Counter); ok {
			return c, true
		}
	}
	return nil, false
}
