//go:build linux

package cmd

import (
	"fmt"
	"io"

	"github.com/google/nftables"

	"grimm.is/glacic/internal/rulebridge"
)

// RunCounters prints the packet and byte counts summed over the counters
// embedded in every rule tagged with tag, in the given table and chain. The
// rules themselves are installed by a profile compiler outside this
// module's scope; this only reads back what it already wrote.
func RunCounters(out io.Writer, tableName, chainName, tag string) error {
	conn, err := nftables.New()
	if err != nil {
		return fmt.Errorf("cmd: open nftables connection: %w", err)
	}

	table := &nftables.Table{Name: tableName, Family: nftables.TableFamilyINet}
	chain := &nftables.Chain{Name: chainName, Table: table}

	reader := rulebridge.NewNativeReader(conn)
	packets, bytes, err := reader.ReadCounter(table, chain, tag)
	if err != nil {
		return fmt.Errorf("cmd: read counter: %w", err)
	}

	fmt.Fprintf(out, "table=%s chain=%s tag=%s packets=%d bytes=%d\n", tableName, chainName, tag, packets, bytes)
	return nil
}
