package cmd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"grimm.is/glacic/internal/config"
)

// exportedProfile is a flattened, YAML-friendly projection of config.Profile
// used only for the export CLI verb; the HCL schema remains the source of
// truth, and nothing reads the YAML back.
type exportedProfile struct {
	Name   string          `yaml:"name"`
	States []exportedState `yaml:"states"`
}

type exportedState struct {
	Index    int              `yaml:"index"`
	Policies []exportedPolicy `yaml:"policies"`
}

type exportedPolicy struct {
	Name             string   `yaml:"name"`
	Protocol         string   `yaml:"protocol,omitempty"`
	Method           string   `yaml:"method,omitempty"`
	Timeout          *float64 `yaml:"timeout,omitempty"`
	ActivityStart    *string  `yaml:"activity_start,omitempty"`
	ActivityDuration *string  `yaml:"activity_duration,omitempty"`
	NextState        *int     `yaml:"next_state,omitempty"`
}

// RunExport loads configFile and writes a flat YAML snapshot of its
// profiles to outFile, for operators who want to inspect or diff profile
// definitions outside of HCL.
func RunExport(configFile, outFile string) error {
	cfg, err := config.LoadFile(configFile)
	if err != nil {
		return err
	}

	exported := make([]exportedProfile, 0, len(cfg.Profiles))
	for _, p := range cfg.Profiles {
		ep := exportedProfile{Name: p.Name}
		for _, s := range p.States {
			idx := 0
			fmt.Sscanf(s.Index, "%d", &idx)
			es := exportedState{Index: idx}
			for _, pol := range s.Policies {
				es.Policies = append(es.Policies, exportedPolicy{
					Name:             pol.Name,
					Protocol:         pol.Protocol,
					Method:           pol.Method,
					Timeout:          pol.Timeout,
					ActivityStart:    pol.ActivityStart,
					ActivityDuration: pol.ActivityDuration,
					NextState:        pol.NextState,
				})
			}
			ep.States = append(ep.States, es)
		}
		exported = append(exported, ep)
	}

	data, err := yaml.Marshal(exported)
	if err != nil {
		return fmt.Errorf("cmd: marshal export: %w", err)
	}
	return os.WriteFile(outFile, data, 0644)
}
