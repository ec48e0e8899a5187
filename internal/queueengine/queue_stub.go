//go:build !linux

package queueengine

import (
	"context"
	"fmt"
)

// Worker is a stub for non-Linux systems, where no kernel queue subsystem
// is available to bind.
type Worker struct {
	cfg Config
}

// NewWorker always fails on non-Linux systems.
func NewWorker(cfg Config) (*Worker, error) {
	return nil, fmt.Errorf("queueengine: kernel packet queues are only supported on Linux")
}

// Run never runs on non-Linux systems.
func (w *Worker) Run(ctx context.Context) error {
	return fmt.Errorf("queueengine: kernel packet queues are only supported on Linux")
}

// Close is a no-op on non-Linux systems.
func (w *Worker) Close() error {
	return nil
}
