package cmd

import (
	"fmt"
	"io"

	"grimm.is/glacic/internal/config"
)

// RunCheck loads and validates the profile/device configuration at
// configFile without starting any queue workers.
func RunCheck(out io.Writer, configFile string) error {
	cfg, err := config.LoadFile(configFile)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "ok: %d profile(s), %d device(s)\n", len(cfg.Profiles), len(cfg.Devices))
	return nil
}
