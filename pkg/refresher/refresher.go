package refresher

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/hyperlane-ops/network-exporter/pkg/store"
)

// CheckpointReader reads the latest checkpoint index from the contract.
// *contract.Reader satisfies it.
type CheckpointReader interface {
	ReadLatestCheckpoint(ctx context.Context) (uint64, error)
}

// Refresher periodically reads the latest checkpoint and writes it into the
// store. The loop runs in a single goroutine, so at most one contract read
// is in flight; a read that overruns the interval defers the next tick
// instead of overlapping it.
type Refresher struct {
	log         *zap.SugaredLogger
	reader      CheckpointReader
	store       *store.Store
	interval    time.Duration
	callTimeout time.Duration
}

func New(
	log *zap.SugaredLogger,
	reader CheckpointReader,
	st *store.Store,
	interval time.Duration,
	callTimeout time.Duration,
) (*Refresher, error) {
	if log == nil {
		return nil, errors.New("logger must not be nil")
	}
	if reader == nil {
		return nil, errors.New("reader must not be nil")
	}
	if st == nil {
		return nil, errors.New("store must not be nil")
	}
	if interval <= 0 {
		return nil, errors.New("interval must be positive")
	}
	if callTimeout <= 0 {
		return nil, errors.New("call timeout must be positive")
	}

	return &Refresher{
		log:         log,
		reader:      reader,
		store:       st,
		interval:    interval,
		callTimeout: callTimeout,
	}, nil
}

// Run polls until ctx is cancelled, then returns nil. The first read happens
// immediately; afterwards one read per interval. A failed read is logged and
// leaves the store untouched, so the last known value stays visible through
// RPC outages. Failures never terminate the loop.
func (r *Refresher) Run(ctx context.Context) error {
	r.tick(ctx)

	t := time.NewTicker(r.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			r.tick(ctx)
		}
	}
}

func (r *Refresher) tick(ctx context.Context) {
	ctxCall, cancel := context.WithTimeout(ctx, r.callTimeout)
	defer cancel()

	value, err := r.reader.ReadLatestCheckpoint(ctxCall)
	if err != nil {
		if ctx.Err() != nil {
			// Shutting down, not a real failure.
			return
		}
		r.log.Warnw("failed to fetch checkpoint from contract", "error", err)
		return
	}

	r.log.Infow("fetched checkpoint index from contract", "value", value)
	r.store.Write(value)
}
