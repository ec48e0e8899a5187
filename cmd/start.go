package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"grimm.is/glacic/internal/clock"
	"grimm.is/glacic/internal/config"
	"grimm.is/glacic/internal/dnscache"
	"grimm.is/glacic/internal/interaction"
	"grimm.is/glacic/internal/logging"
	"grimm.is/glacic/internal/policyeval"
	"grimm.is/glacic/internal/queueengine"
)

// RunStart loads configFile, binds one kernel-queue worker per declared
// device, and blocks until SIGINT/SIGTERM or ctx is canceled. If a worker
// fails to register its queue, the other workers are stopped and that
// error is returned.
func RunStart(ctx context.Context, configFile string) error {
	cfg, err := config.LoadFile(configFile)
	if err != nil {
		return fmt.Errorf("cmd: load config: %w", err)
	}

	if err := configureLogging(cfg.Logging); err != nil {
		logging.Warn("cmd: syslog forwarding disabled", "error", err)
	}

	if err := clock.EnsureSaneTime(); err != nil {
		logging.Warn("cmd: clock sanity check failed", "error", err)
	}

	cache := dnscache.New()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logging.Info("cmd: shutdown signal received")
		cancel()
	}()

	workers, err := bindWorkers(cfg, cache)
	if err != nil {
		return err
	}
	if len(workers) == 0 {
		return fmt.Errorf("cmd: no devices declared in %s", configFile)
	}

	var wg sync.WaitGroup
	var runErr error
	var errOnce sync.Once
	for _, w := range workers {
		wg.Add(1)
		go func(w *queueengine.Worker) {
			defer wg.Done()
			defer w.Close()
			if err := w.Run(ctx); err != nil && ctx.Err() == nil {
				logging.Error("cmd: worker exited", "error", err)
				errOnce.Do(func() {
					runErr = err
					cancel()
				})
			}
		}(w)
	}

	wg.Wait()
	return runErr
}

// bindWorkers constructs one interaction.Data and one queueengine.Worker per
// declared device, assigning queue ids sequentially to devices that did not
// pin one explicitly.
func bindWorkers(cfg *config.Config, cache *dnscache.Cache) ([]*queueengine.Worker, error) {
	workers := make([]*queueengine.Worker, 0, len(cfg.Devices))
	nextQueueID := uint16(0)

	for _, dev := range cfg.Devices {
		profile, ok := cfg.ProfileByName(dev.Profile)
		if !ok {
			return nil, fmt.Errorf("cmd: device %q references undeclared profile %q", dev.ID, dev.Profile)
		}

		queueID := nextQueueID
		if dev.QueueID != nil {
			queueID = uint16(*dev.QueueID)
		} else {
			nextQueueID++
		}

		data := interaction.New(queueID, maxPolicies(profile), uint8(len(profile.States)), profile.InteractionTimeout, profileActivity(profile))
		evaluator := policyeval.New(profile, cache)

		worker, err := queueengine.NewWorker(queueengine.DefaultConfig(queueID, evaluator.Policy(), data))
		if err != nil {
			return nil, fmt.Errorf("cmd: bind queue %d for device %q: %w", queueID, dev.ID, err)
		}
		logging.Info("cmd: bound device to queue", "device", dev.ID, "profile", profile.Name, "queue_id", queueID)
		workers = append(workers, worker)
	}
	return workers, nil
}

// configureLogging builds the process-wide logger from decl, defaulting to
// console-only info level when decl is nil, and installs it as the default
// logger. If decl declares a syslog forwarder, log output is duplicated to
// it in addition to stderr; a syslog dial failure is reported to the
// caller but never blocks startup.
func configureLogging(decl *config.Logging) error {
	cfg := logging.DefaultConfig()
	if decl == nil {
		logging.SetDefault(logging.New(cfg))
		return nil
	}

	switch decl.Level {
	case "debug":
		cfg.Level = logging.LevelDebug
	case "warn":
		cfg.Level = logging.LevelWarn
	case "error":
		cfg.Level = logging.LevelError
	default:
		cfg.Level = logging.LevelInfo
	}
	cfg.JSON = decl.JSON

	var syslogErr error
	if decl.Syslog != nil {
		syscfg := logging.DefaultSyslogConfig()
		syscfg.Host = decl.Syslog.Host
		if decl.Syslog.Port != nil {
			syscfg.Port = *decl.Syslog.Port
		}
		if decl.Syslog.Protocol != "" {
			syscfg.Protocol = decl.Syslog.Protocol
		}
		if decl.Syslog.Tag != "" {
			syscfg.Tag = decl.Syslog.Tag
		}
		if decl.Syslog.Facility != nil {
			syscfg.Facility = *decl.Syslog.Facility
		}

		writer, err := logging.NewSyslogWriter(syscfg)
		if err != nil {
			syslogErr = fmt.Errorf("cmd: dial syslog: %w", err)
		} else {
			cfg.Output = logging.MultiWriter(os.Stderr, writer)
		}
	}

	logging.SetDefault(logging.New(cfg))
	return syslogErr
}

// profileActivity builds the interaction-wide activity window declared by
// profile, or nil if it declares none. Both fields must be set together;
// a profile that sets only one is treated as not declaring a window.
func profileActivity(profile config.Profile) *interaction.ActivityPeriod {
	if profile.InteractionActivityStart == nil || profile.InteractionActivityDuration == nil {
		return nil
	}
	return &interaction.ActivityPeriod{
		Start:    *profile.InteractionActivityStart,
		Duration: *profile.InteractionActivityDuration,
	}
}

// maxPolicies returns the largest per-state policy count in profile, the
// capacity the interaction's counters array must be sized to.
func maxPolicies(profile config.Profile) uint8 {
	var max int
	for _, s := range profile.States {
		if len(s.Policies) > max {
			max = len(s.Policies)
		}
	}
	return uint8(max)
}
