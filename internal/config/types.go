// Package config declares and loads the HCL schema for interaction
// profiles, their per-state policies, and the devices bound to them. It
// follows the teacher's loader shape (parse, decode into Go structs,
// validate, return a ready *Config or a diagnostics-wrapped error) even
// though the schema itself — profile/state/policy/device, not
// zone/NAT/DNS-rule — is entirely new.
package config

// Policy is one named predicate within a state: it gates acceptance on an
// optional protocol/method match, an optional timeout, and an optional
// activity period, and names the state to transition to on a match.
//
// MatchCachedHost, when true, additionally requires the packet's source or
// destination address to equal the interaction's cached resolved IP (the
// address a prior DNS policy observed for the tracked symbolic host); a
// policy can combine this with Protocol to mean "this protocol, to the
// host we already resolved" or leave Protocol empty to match any protocol
// against the cached host alone.
type Policy struct {
	Name             string   `hcl:"name,label"`
	Protocol         string   `hcl:"protocol,optional"`
	Method           string   `hcl:"method,optional"`
	MatchCachedHost  *bool    `hcl:"match_cached_host,optional"`
	Timeout          *float64 `hcl:"timeout,optional"`
	ActivityStart    *string  `hcl:"activity_start,optional"`
	ActivityDuration *string  `hcl:"activity_duration,optional"`
	NextState        *int     `hcl:"next_state,optional"`
	Default          *bool    `hcl:"default,optional"`
}

// State is one numbered state of a profile's interaction state machine,
// holding the policies evaluated while the interaction is in that state.
// Index is declared as the block label (HCL labels are always strings) and
// parsed to an integer during validation.
type State struct {
	Index    string   `hcl:"index,label"`
	Policies []Policy `hcl:"policy,block"`
}

// Profile is a named, reusable interaction definition: an ordered set of
// states, state 0 being initial, plus the interaction-wide gates applied
// before any per-state policy is consulted. InteractionTimeout defaults to
// interaction.DefaultTimeoutSeconds when zero; InteractionActivityStart and
// InteractionActivityDuration must both be set to enable the gate, and
// follow the same cron-like four-field format as a policy's own
// ActivityStart/ActivityDuration.
type Profile struct {
	Name                        string  `hcl:"name,label"`
	InteractionTimeout          float64 `hcl:"interaction_timeout,optional"`
	InteractionActivityStart    *string `hcl:"interaction_activity_start,optional"`
	InteractionActivityDuration *string `hcl:"interaction_activity_duration,optional"`
	States                      []State `hcl:"state,block"`
}

// Device binds a MAC address or stable device id to a named profile and,
// optionally, the kernel queue it should be bound to. When QueueID is nil
// the caller assigns queue ids sequentially in declaration order.
type Device struct {
	ID      string `hcl:"id,label"`
	Profile string `hcl:"profile"`
	QueueID *int   `hcl:"queue_id,optional"`
}

// Syslog configures forwarding of process logs to a remote syslog server,
// in addition to the normal console output. Host is the only required
// field; Port/Protocol/Tag/Facility fall back to their usual syslog
// defaults (514, udp, "glacic", LOG_USER) when unset.
type Syslog struct {
	Host     string `hcl:"host"`
	Port     *int   `hcl:"port,optional"`
	Protocol string `hcl:"protocol,optional"`
	Tag      string `hcl:"tag,optional"`
	Facility *int   `hcl:"facility,optional"`
}

// Logging configures the process-wide logger. A nil Logging uses the
// console-only, info-level default.
type Logging struct {
	Level  string  `hcl:"level,optional"`
	JSON   bool    `hcl:"json,optional"`
	Syslog *Syslog `hcl:"syslog,block"`
}

// Config is the fully decoded and validated root of one configuration
// file: every declared profile and every device binding.
type Config struct {
	Logging  *Logging  `hcl:"logging,block"`
	Profiles []Profile `hcl:"profile,block"`
	Devices  []Device  `hcl:"device,block"`
}

// ProfileByName returns the named profile, or false if no profile by that
// name was declared.
func (c *Config) ProfileByName(name string) (Profile, bool) {
	for _, p := range c.Profiles {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}

// DeviceProfile resolves the profile bound to a device id, or false if the
// device is not bound or its profile does not exist.
func (c *Config) DeviceProfile(deviceID string) (Profile, bool) {
	for _, d := range c.Devices {
		if d.ID == deviceID {
			return c.ProfileByName(d.Profile)
		}
	}
	return Profile{}, false
}
