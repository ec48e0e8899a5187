package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"grimm.is/glacic/internal/config"
)

// RunShow prints a human-readable summary of every declared profile and
// device binding.
func RunShow(out io.Writer, configFile string) error {
	cfg, err := config.LoadFile(configFile)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PROFILE\tSTATES\tPOLICIES")
	for _, p := range cfg.Profiles {
		policies := 0
		for _, s := range p.States {
			policies += len(s.Policies)
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\n", p.Name, len(p.States), policies)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out)

	tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DEVICE\tPROFILE")
	for _, d := range cfg.Devices {
		fmt.Fprintf(tw, "%s\t%s\n", d.ID, d.Profile)
	}
	return tw.Flush()
}
