package store

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wricardo/loot-road-game/internal/model"
)

const (
	maxInsertAttempts = 3
	insertRetryDelay  = 20 * time.Millisecond
	insertTimeout     = 5 * time.Second
)

// syncInserter is the synchronous sink an AsyncSink drains into. *Store
// satisfies it.
type syncInserter interface {
	Insert(ctx context.Context, rec model.RetiredRecord) error
}

// AsyncSink lifts retired-record writes off the caller (the game's serial
// executor) onto a bounded pool of worker goroutines draining a buffered
// channel, per SPEC_FULL.md §5's "MAY lift this write off the serial
// executor" option. Each insert is attempted up to maxInsertAttempts times;
// a record that fails every attempt is logged and dropped, so delivery is
// not guaranteed while the database stays unreachable. Close drains every
// record already queued rather than abandoning it.
type AsyncSink struct {
	sink  syncInserter
	queue chan model.RetiredRecord
	group *errgroup.Group
}

// NewAsyncSink starts workers workers, each draining queue and inserting
// into sink. queueSize bounds how many records may be in flight before
// Insert blocks the caller.
func NewAsyncSink(sink syncInserter, workers, queueSize int) *AsyncSink {
	a := &AsyncSink{
		sink:  sink,
		queue: make(chan model.RetiredRecord, queueSize),
		group: &errgroup.Group{},
	}

	for i := 0; i < workers; i++ {
		a.group.Go(func() error {
			a.drain()
			return nil
		})
	}

	return a
}

// drain runs until queue is closed and empty, so Close can guarantee every
// enqueued record was at least attempted before returning.
func (a *AsyncSink) drain() {
	for rec := range a.queue {
		a.insertWithRetry(rec)
	}
}

// insertWithRetry tries rec up to maxInsertAttempts times, pausing
// insertRetryDelay between attempts, before logging and dropping it.
func (a *AsyncSink) insertWithRetry(rec model.RetiredRecord) {
	var err error
	for attempt := 1; attempt <= maxInsertAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), insertTimeout)
		err = a.sink.Insert(ctx, rec)
		cancel()
		if err == nil {
			return
		}
		if attempt < maxInsertAttempts {
			time.Sleep(insertRetryDelay)
		}
	}
	log.Printf("store: async insert failed after %d attempts, record dropped: %v", maxInsertAttempts, err)
}

// Insert enqueues rec for asynchronous insertion. It blocks only if the
// queue is full, never on the database round trip itself. Satisfies
// session.RecordSink.
func (a *AsyncSink) Insert(ctx context.Context, rec model.RetiredRecord) error {
	select {
	case a.queue <- rec:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting new work by closing queue, waits for every worker to
// drain and attempt every record already queued, then returns. Callers must
// not call Insert concurrently with or after Close.
func (a *AsyncSink) Close() {
	close(a.queue)
	a.group.Wait()
}
