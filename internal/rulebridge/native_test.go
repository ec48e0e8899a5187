//go:build linux

package rulebridge

import (
	"testing"

	"github.com/google/nftables"
	"github.com/google/nftables/expr"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	rules []*nftables.Rule
	err   error
}

func (f *fakeConn) GetRules(t *nftables.Table, c *nftables.Chain) ([]*nftables.Rule, error) {
	return f.rules, f.err
}

func TestNativeReaderSumsMatchingTag(t *testing.T) {
	table := &nftables.Table{Name: "filter"}
	chain := &nftables.Chain{Name: "input", Table: table}
	conn := &fakeConn{rules: []*nftables.Rule{
		{UserData: []byte("iface:eth0:true"), Exprs: []expr.Any{&expr.Counter{Packets: 10, Bytes: 100}}},
		{UserData: []byte("iface:eth0:true"), Exprs: []expr.Any{&expr.Counter{Packets: 5, Bytes: 50}}},
		{UserData: []byte("iface:eth1:true"), Exprs: []expr.Any{&expr.Counter{Packets: 99, Bytes: 999}}},
	}}

	r := NewNativeReader(conn)
	packets, bytes, err := r.ReadCounter(table, chain, "iface:eth0:true")
	require.NoError(t, err)
	require.EqualValues(t, 15, packets)
	require.EqualValues(t, 150, bytes)
}

func TestNativeReaderNoMatch(t *testing.T) {
	table := &nftables.Table{Name: "filter"}
	chain := &nftables.Chain{Name: "input", Table: table}
	conn := &fakeConn{}

	r := NewNativeReader(conn)
	packets, bytes, err := r.ReadCounter(table, chain, "missing")
	require.NoError(t, err)
	require.Zero(t, packets)
	require.Zero(t, bytes)
}
