package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"grimm.is/glacic/internal/netlinkinfo"
)

// RunIfaces lists the interfaces visible in the current network namespace,
// so operators can confirm which link a device's traffic actually arrives
// on before binding it to a queue.
func RunIfaces(out io.Writer) error {
	ifaces, err := netlinkinfo.List()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tNAME\tMAC\tUP")
	for _, iface := range ifaces {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%t\n", iface.Index, iface.Name, iface.MAC, iface.Up)
	}
	return tw.Flush()
}
