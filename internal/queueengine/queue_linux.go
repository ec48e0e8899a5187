//go:build linux

package queueengine

import (
	"context"
	"fmt"

	"github.com/florianl/go-nfqueue/v2"

	"grimm.is/glacic/internal/clock"
	"grimm.is/glacic/internal/logging"
)

// Worker owns one kernel queue binding and the interaction state its
// policy callback consults.
type Worker struct {
	cfg    Config
	queue  *nfqueue.Nfqueue
	cancel context.CancelFunc
}

// NewWorker opens and binds the kernel queue identified by cfg.QueueID.
// Open/bind/create failures are fatal to the caller: per the engine's
// failure semantics, a worker that cannot acquire its queue cannot run.
func NewWorker(cfg Config) (*Worker, error) {
	qcfg := nfqueue.Config{
		NfQueue:      cfg.QueueID,
		MaxPacketLen: cfg.SnapLen,
		MaxQueueLen:  cfg.MaxQueueLen,
		Copymode:     nfqueue.NfQnlCopyPacket,
	}

	nf, err := nfqueue.Open(&qcfg)
	if err != nil {
		return nil, fmt.Errorf("queueengine: open queue %d: %w", cfg.QueueID, err)
	}
	return &Worker{cfg: cfg, queue: nf}, nil
}

// Run enters the blocking receive loop until ctx is cancelled. Each packet
// is dispatched to the configured policy and a verdict is always returned
// to the kernel, even when the policy panics.
func (w *Worker) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	err := w.queue.RegisterWithErrorFunc(runCtx,
		func(attrs nfqueue.Attribute) int {
			w.handle(attrs)
			return 0
		},
		func(err error) int {
			// ENOBUFS and similar transient errors are logged and the loop
			// continues; packets may be dropped by the kernel, which is
			// accepted rather than treated as fatal.
			logging.Warn("queueengine: receive error", "queue_id", w.cfg.QueueID, "error", err)
			observeReceiveError(w.cfg.QueueID)
			return 0
		},
	)
	if err != nil {
		return fmt.Errorf("queueengine: register queue %d: %w", w.cfg.QueueID, err)
	}

	<-runCtx.Done()
	return nil
}

func (w *Worker) handle(attrs nfqueue.Attribute) {
	verdict := w.cfg.DefaultVerdict
	defer func() {
		if r := recover(); r != nil {
			verdict = classify(w.cfg, r)
		}
		w.reply(attrs, verdict)
	}()

	if attrs.PacketID == nil {
		return
	}

	pkt := Packet{ID: *attrs.PacketID, Timestamp: clock.Now()}
	if attrs.Payload != nil {
		pkt.Payload = *attrs.Payload
	}
	if w.cfg.CapturePayload && len(pkt.Payload) > 0 {
		pkt.Digest = digestPayload(pkt.Payload)
		pkt.HasDigest = true
	}

	if w.cfg.Policy != nil {
		verdict = w.cfg.Policy(pkt, w.cfg.Interaction)
	}
}

func (w *Worker) reply(attrs nfqueue.Attribute, verdict Verdict) {
	if attrs.PacketID == nil {
		return
	}
	nfVerdict := nfqueue.NfDrop
	if verdict == Accept {
		nfVerdict = nfqueue.NfAccept
	}
	if err := w.queue.SetVerdict(*attrs.PacketID, nfVerdict); err != nil {
		logging.Error("queueengine: set verdict failed", "queue_id", w.cfg.QueueID, "packet_id", *attrs.PacketID, "error", err)
		return
	}
	observeVerdict(w.cfg.QueueID, verdict)
}

// Close releases the queue handle.
func (w *Worker) Close() error {
	if w.cancel != nil {
		w.cancel()
	}
	if w.queue != nil {
		return w.queue.Close()
	}
	return nil
}
