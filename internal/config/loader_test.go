package config

import "testing"

const validHCL = `
profile "smart-bulb" {
  state "0" {
    policy "dhcp" {
      protocol    = "dhcp"
      next_state  = 1
    }
  }
  state "1" {
    policy "dns-then-tls" {
      protocol         = "dns"
      timeout          = 30
      activity_start   = "0 9 * *"
      activity_duration = "0 1 * *"
      next_state       = 1
    }
  }
}

device "aa:bb:cc:dd:ee:ff" {
  profile = "smart-bulb"
}
`

func TestLoadBytesValid(t *testing.T) {
	cfg, err := LoadBytes("test.hcl", []byte(validHCL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Profiles) != 1 {
		t.Fatalf("expected 1 profile, got %d", len(cfg.Profiles))
	}
	prof, ok := cfg.DeviceProfile("aa:bb:cc:dd:ee:ff")
	if !ok {
		t.Fatal("expected device to resolve to its profile")
	}
	if prof.Name != "smart-bulb" {
		t.Fatalf("resolved profile = %q", prof.Name)
	}
	if len(prof.States) != 2 {
		t.Fatalf("expected 2 states, got %d", len(prof.States))
	}
}

func TestLoadBytesRejectsMissingState(t *testing.T) {
	src := `
profile "broken" {
  state "0" {
  }
  state "2" {
  }
}
`
	if _, err := LoadBytes("broken.hcl", []byte(src)); err == nil {
		t.Fatal("expected validation error for non-contiguous state indices")
	}
}

func TestLoadBytesRejectsUnboundDeviceProfile(t *testing.T) {
	src := `
profile "p" {
  state "0" {
  }
}

device "x" {
  profile = "missing"
}
`
	if _, err := LoadBytes("unbound.hcl", []byte(src)); err == nil {
		t.Fatal("expected validation error for unresolved device profile")
	}
}

func TestLoadBytesRejectsLoneActivityField(t *testing.T) {
	src := `
profile "p" {
  state "0" {
    policy "x" {
      activity_start = "0 9 * *"
    }
  }
}
`
	if _, err := LoadBytes("lone.hcl", []byte(src)); err == nil {
		t.Fatal("expected validation error for activity_start without activity_duration")
	}
}

func TestLoadBytesRejectsLoneInteractionActivityField(t *testing.T) {
	src := `
profile "p" {
  interaction_activity_start = "0 9 * *"
  state "0" {
  }
}
`
	if _, err := LoadBytes("lone-interaction.hcl", []byte(src)); err == nil {
		t.Fatal("expected validation error for interaction_activity_start without interaction_activity_duration")
	}
}

func TestLoadBytesAcceptsInteractionTimeoutAndActivity(t *testing.T) {
	src := `
profile "p" {
  interaction_timeout         = 120
  interaction_activity_start  = "0 9 * *"
  interaction_activity_duration = "0 1 * *"
  state "0" {
  }
}
`
	cfg, err := LoadBytes("interaction.hcl", []byte(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p, ok := cfg.ProfileByName("p")
	if !ok {
		t.Fatal("profile p not found")
	}
	if p.InteractionTimeout != 120 {
		t.Errorf("expected interaction_timeout 120, got %v", p.InteractionTimeout)
	}
	if p.InteractionActivityStart == nil || *p.InteractionActivityStart != "0 9 * *" {
		t.Error("interaction_activity_start not decoded")
	}
	if p.InteractionActivityDuration == nil || *p.InteractionActivityDuration != "0 1 * *" {
		t.Error("interaction_activity_duration not decoded")
	}
}

func TestLoadBytesRejectsUnknownLoggingLevel(t *testing.T) {
	src := `
logging {
  level = "verbose"
}

profile "p" {
  state "0" {
  }
}
`
	if _, err := LoadBytes("bad-level.hcl", []byte(src)); err == nil {
		t.Fatal("expected validation error for unknown logging level")
	}
}

func TestLoadBytesAcceptsSyslogBlock(t *testing.T) {
	src := `
logging {
  level = "debug"
  json  = true

  syslog {
    host = "syslog.example.com"
    tag  = "glacic-dpi"
  }
}

profile "p" {
  state "0" {
  }
}
`
	cfg, err := LoadBytes("syslog.hcl", []byte(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Logging == nil || cfg.Logging.Syslog == nil {
		t.Fatal("expected logging.syslog to decode")
	}
	if cfg.Logging.Syslog.Host != "syslog.example.com" {
		t.Errorf("expected host syslog.example.com, got %q", cfg.Logging.Syslog.Host)
	}
}

func TestLoadBytesRejectsDuplicateQueueID(t *testing.T) {
	src := `
profile "p" {
  state "0" {
  }
}

device "a" {
  profile  = "p"
  queue_id = 10
}

device "b" {
  profile  = "p"
  queue_id = 10
}
`
	if _, err := LoadBytes("dup-queue.hcl", []byte(src)); err == nil {
		t.Fatal("expected validation error for duplicate queue_id")
	}
}

func TestLoadBytesRejectsOutOfRangeNextState(t *testing.T) {
	src := `
profile "p" {
  state "0" {
    policy "x" {
      next_state = 5
    }
  }
}
`
	if _, err := LoadBytes("oob.hcl", []byte(src)); err == nil {
		t.Fatal("expected validation error for out-of-range next_state")
	}
}
