package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// LoadFile reads, decodes, and validates the HCL configuration at path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return LoadBytes(path, data)
}

// LoadBytes decodes and validates HCL source already read into memory,
// filename is used only for diagnostic messages.
func LoadBytes(filename string, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("config: parse %s: %w", filename, diags)
	}

	var cfg Config
	if diags := gohcl.DecodeBody(file.Body, nil, &cfg); diags.HasErrors() {
		return nil, fmt.Errorf("config: decode %s: %w", filename, diags)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config: validate %s: %w", filename, err)
	}

	return &cfg, nil
}

// validate performs the semantic pass a successful HCL decode does not
// cover on its own: state indices must parse to contiguous 0..N-1 per
// profile, policies must not target an out-of-range next state, and every
// device's profile reference must resolve.
func validate(cfg *Config) error {
	if cfg.Logging != nil && cfg.Logging.Level != "" {
		switch cfg.Logging.Level {
		case "debug", "info", "warn", "error":
		default:
			return fmt.Errorf("logging: unknown level %q", cfg.Logging.Level)
		}
	}

	for _, p := range cfg.Profiles {
		if (p.InteractionActivityStart == nil) != (p.InteractionActivityDuration == nil) {
			return fmt.Errorf("profile %q: must set both interaction_activity_start and interaction_activity_duration, or neither", p.Name)
		}

		seen := make(map[int]bool, len(p.States))
		for _, s := range p.States {
			idx, err := strconv.Atoi(s.Index)
			if err != nil {
				return fmt.Errorf("profile %q: state label %q is not an integer", p.Name, s.Index)
			}
			if idx < 0 || idx >= len(p.States) {
				return fmt.Errorf("profile %q: state %d is out of range [0,%d)", p.Name, idx, len(p.States))
			}
			if seen[idx] {
				return fmt.Errorf("profile %q: state %d declared more than once", p.Name, idx)
			}
			seen[idx] = true

			for _, pol := range s.Policies {
				if pol.NextState != nil && (*pol.NextState < 0 || *pol.NextState >= len(p.States)) {
					return fmt.Errorf("profile %q: policy %q targets out-of-range next_state %d", p.Name, pol.Name, *pol.NextState)
				}
				if (pol.ActivityStart == nil) != (pol.ActivityDuration == nil) {
					return fmt.Errorf("profile %q: policy %q must set both activity_start and activity_duration, or neither", p.Name, pol.Name)
				}
			}
		}
		for i := 0; i < len(p.States); i++ {
			if !seen[i] {
				return fmt.Errorf("profile %q: missing state %d", p.Name, i)
			}
		}
	}

	names := make(map[string]bool, len(cfg.Profiles))
	for _, p := range cfg.Profiles {
		names[p.Name] = true
	}
	queueIDs := make(map[int]string, len(cfg.Devices))
	for _, d := range cfg.Devices {
		if !names[d.Profile] {
			return fmt.Errorf("device %q references undeclared profile %q", d.ID, d.Profile)
		}
		if d.QueueID != nil {
			if owner, ok := queueIDs[*d.QueueID]; ok {
				return fmt.Errorf("device %q and device %q both bind queue_id %d", owner, d.ID, *d.QueueID)
			}
			queueIDs[*d.QueueID] = d.ID
		}
	}

	return nil
}
