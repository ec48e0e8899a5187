//go:build !linux

package cmd

import (
	"errors"
	"io"
)

// RunCounters is unsupported outside Linux, since nftables rule reads
// require netlink.
func RunCounters(out io.Writer, tableName, chainName, tag string) error {
	return errors.New("cmd: counters requires linux")
}
