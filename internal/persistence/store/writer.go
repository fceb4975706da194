package store

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/konrad-jamrozik/game-ts-sub002/internal/persistence/snapshot"
)

// Putter is the part of a store the writer needs.
type Putter interface {
	Put(ctx context.Context, snap snapshot.Snapshot) error
}

// Writer persists snapshots off the caller's goroutine. Save never blocks:
// it overwrites a single pending slot and the writer goroutine flushes the
// latest value once the debounce interval has passed without a newer one.
type Writer struct {
	dst      Putter
	debounce time.Duration
	log      *slog.Logger

	mu      sync.Mutex
	pending *snapshot.Snapshot
	kick    chan struct{}
	stop    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
	closed  atomic.Bool

	written atomic.Uint64
	failed  atomic.Uint64
}

func NewWriter(dst Putter, debounce time.Duration, log *slog.Logger) *Writer {
	if log == nil {
		log = slog.Default()
	}
	w := &Writer{
		dst:      dst,
		debounce: debounce,
		log:      log,
		kick:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.loop()
	}()
	return w
}

// Save queues snap, replacing anything not yet written.
func (w *Writer) Save(snap snapshot.Snapshot) {
	if w == nil || w.closed.Load() {
		return
	}
	w.mu.Lock()
	w.pending = &snap
	w.mu.Unlock()
	select {
	case w.kick <- struct{}{}:
	default:
	}
}

// Close flushes the pending snapshot and stops the writer.
func (w *Writer) Close() error {
	w.once.Do(func() {
		w.closed.Store(true)
		close(w.stop)
		w.wg.Wait()
	})
	return nil
}

// Stats reports how many snapshots were written and how many writes failed.
func (w *Writer) Stats() (written, failed uint64) {
	return w.written.Load(), w.failed.Load()
}

func (w *Writer) loop() {
	for {
		select {
		case <-w.stop:
			w.flush()
			return
		case <-w.kick:
		}
		if w.debounce > 0 {
			timer := time.NewTimer(w.debounce)
		wait:
			for {
				select {
				case <-w.stop:
					timer.Stop()
					w.flush()
					return
				case <-w.kick:
					timer.Reset(w.debounce)
				case <-timer.C:
					break wait
				}
			}
		}
		w.flush()
	}
}

func (w *Writer) flush() {
	w.mu.Lock()
	snap := w.pending
	w.pending = nil
	w.mu.Unlock()
	if snap == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := w.dst.Put(ctx, *snap); err != nil {
		w.failed.Add(1)
		w.log.Error("snapshot write failed", "turn", snap.Header.Turn, "err", err)
		return
	}
	w.written.Add(1)
	w.log.Debug("snapshot written", "turn", snap.Header.Turn, "digest", snap.Header.Digest)
}
