package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/loot-road-game/internal/model"
)

type fakeInserter struct {
	mu      sync.Mutex
	records []model.RetiredRecord
}

func (f *fakeInserter) Insert(ctx context.Context, rec model.RetiredRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeInserter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

func TestAsyncSinkDeliversQueuedRecords(t *testing.T) {
	fake := &fakeInserter{}
	a := NewAsyncSink(fake, 2, 8)
	defer a.Close()

	for i := 0; i < 5; i++ {
		if err := a.Insert(context.Background(), model.RetiredRecord{Name: "dog"}); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	deadline := time.Now().Add(time.Second)
	for fake.count() < 5 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	if got := fake.count(); got != 5 {
		t.Fatalf("delivered %d records, want 5", got)
	}
}

func TestAsyncSinkInsertRespectsContextCancellation(t *testing.T) {
	fake := &fakeInserter{}
	a := NewAsyncSink(fake, 0, 0) // no workers draining, queue unbuffered
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := a.Insert(ctx, model.RetiredRecord{Name: "dog"}); err == nil {
		t.Fatal("expected error from cancelled context when queue cannot accept")
	}
}

func TestAsyncSinkCloseDrainsQueuedRecordsBeforeReturning(t *testing.T) {
	fake := &fakeInserter{}
	a := NewAsyncSink(fake, 2, 8)

	for i := 0; i < 5; i++ {
		if err := a.Insert(context.Background(), model.RetiredRecord{Name: "dog"}); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	a.Close()

	if got := fake.count(); got != 5 {
		t.Fatalf("delivered %d records by the time Close returned, want 5", got)
	}
}

type flakyInserter struct {
	mu       sync.Mutex
	failures int
	records  []model.RetiredRecord
}

func (f *flakyInserter) Insert(ctx context.Context, rec model.RetiredRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return errors.New("transient failure")
	}
	f.records = append(f.records, rec)
	return nil
}

func (f *flakyInserter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

func TestAsyncSinkRetriesBeforeDroppingAFlakyInsert(t *testing.T) {
	flaky := &flakyInserter{failures: maxInsertAttempts - 1}
	a := NewAsyncSink(flaky, 1, 1)

	if err := a.Insert(context.Background(), model.RetiredRecord{Name: "dog"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	a.Close()

	if got := flaky.count(); got != 1 {
		t.Fatalf("delivered %d records, want 1 (the last of %d attempts to succeed)", got, maxInsertAttempts)
	}
}

func TestAsyncSinkDropsAnInsertThatFailsEveryAttempt(t *testing.T) {
	flaky := &flakyInserter{failures: maxInsertAttempts}
	a := NewAsyncSink(flaky, 1, 1)

	if err := a.Insert(context.Background(), model.RetiredRecord{Name: "dog"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	a.Close()

	if got := flaky.count(); got != 0 {
		t.Fatalf("delivered %d records, want 0 (every attempt failed)", got)
	}
}
