package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/grading"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/model"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/repository"
	pkgerrors "github.com/gustav0-ri0s/sistema-de-calificaciones-VC/pkg/errors"
)

// DraftKey identifies one appreciation.
type DraftKey struct {
	StudentID string
	PeriodID  int64
}

// SyncState of a buffered appreciation.
type SyncState string

const (
	SyncSynced  SyncState = "synced"
	SyncPending SyncState = "pending"
	SyncFailed  SyncState = "failed"
)

// DraftWriter persists one appreciation.
type DraftWriter func(ctx context.Context, key DraftKey, a grading.Appreciation, editor Caller) error

// DraftStatus is a snapshot of one buffered entry.
type DraftStatus struct {
	Key          DraftKey
	Appreciation grading.Appreciation
	State        SyncState
	Err          string
	EditorID     string
	UpdatedAt    time.Time
}

type draftEntry struct {
	value   grading.Appreciation
	editor  Caller
	version uint64
	state   SyncState
	err     error
	timer   *time.Timer
	updated time.Time
}

// keyLock serializes the store writes of one key. refs counts the
// holders and waiters so the lock can be dropped once idle.
type keyLock struct {
	mu   sync.Mutex
	refs int
}

// DraftBuffer debounces appreciation writes. Saves for the same key within
// the quiet interval collapse into one write of the latest value. An entry
// stays in the buffer until its latest version reaches the store, so a
// failed write keeps the edit around (state failed) for RetryFailed.
// Writes of one key never overlap: a Flush waits for a debounced write
// already in flight and then writes the latest value.
type DraftBuffer struct {
	mu           sync.Mutex
	entries      map[DraftKey]*draftEntry
	writing      map[DraftKey]*keyLock
	delay        time.Duration
	writeTimeout time.Duration
	write        DraftWriter
	logger       *zap.Logger
}

// NewDraftBuffer creates a buffer that writes through write after delay
// of inactivity per key.
func NewDraftBuffer(delay time.Duration, write DraftWriter, logger *zap.Logger) *DraftBuffer {
	return &DraftBuffer{
		entries:      make(map[DraftKey]*draftEntry),
		writing:      make(map[DraftKey]*keyLock),
		delay:        delay,
		writeTimeout: 10 * time.Second,
		write:        write,
		logger:       logger,
	}
}

// Put records the latest value for key and restarts its quiet interval.
func (b *DraftBuffer) Put(key DraftKey, value grading.Appreciation, editor Caller) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.entries[key]
	if !ok {
		e = &draftEntry{}
		b.entries[key] = e
	}
	if e.timer != nil {
		e.timer.Stop()
	}
	e.version++
	e.value = value
	e.editor = editor
	e.state = SyncPending
	e.err = nil
	e.updated = time.Now()

	version := e.version
	e.timer = time.AfterFunc(b.delay, func() { b.fire(key, version) })
}

// Get returns the buffered value of key, if any.
func (b *DraftBuffer) Get(key DraftKey) (grading.Appreciation, SyncState, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.entries[key]
	if !ok {
		return grading.Appreciation{}, SyncSynced, false
	}
	return e.value, e.state, true
}

// Flush writes the buffered value of key now. Without an entry it does
// nothing.
func (b *DraftBuffer) Flush(ctx context.Context, key DraftKey) error {
	unlock := b.lockKey(key)
	defer unlock()

	b.mu.Lock()
	e, ok := b.entries[key]
	if !ok {
		b.mu.Unlock()
		return nil
	}
	if e.timer != nil {
		e.timer.Stop()
	}
	version, value, editor := e.version, e.value, e.editor
	b.mu.Unlock()

	err := b.write(ctx, key, value, editor)
	b.complete(key, version, err)
	return err
}

// Status lists the entries of periodID that have not reached the store.
// A zero periodID lists every entry.
func (b *DraftBuffer) Status(periodID int64) []DraftStatus {
	b.mu.Lock()
	out := make([]DraftStatus, 0, len(b.entries))
	for k, e := range b.entries {
		if periodID != 0 && k.PeriodID != periodID {
			continue
		}
		st := DraftStatus{
			Key:          k,
			Appreciation: e.value,
			State:        e.state,
			EditorID:     e.editor.ProfileID,
			UpdatedAt:    e.updated,
		}
		if e.err != nil {
			st.Err = e.err.Error()
		}
		out = append(out, st)
	}
	b.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Key.PeriodID != out[j].Key.PeriodID {
			return out[i].Key.PeriodID < out[j].Key.PeriodID
		}
		return out[i].Key.StudentID < out[j].Key.StudentID
	})
	return out
}

// RetryFailed flushes every failed entry and returns how many reached the
// store.
func (b *DraftBuffer) RetryFailed(ctx context.Context) int {
	b.mu.Lock()
	var keys []DraftKey
	for k, e := range b.entries {
		if e.state == SyncFailed {
			keys = append(keys, k)
		}
	}
	b.mu.Unlock()

	ok := 0
	for _, k := range keys {
		if ctx.Err() != nil {
			break
		}
		if err := b.Flush(ctx, k); err == nil {
			ok++
		}
	}
	return ok
}

// FlushAll writes every buffered entry, used on shutdown.
func (b *DraftBuffer) FlushAll(ctx context.Context) error {
	b.mu.Lock()
	keys := make([]DraftKey, 0, len(b.entries))
	for k := range b.entries {
		keys = append(keys, k)
	}
	b.mu.Unlock()

	var errs []error
	for _, k := range keys {
		if err := b.Flush(ctx, k); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (b *DraftBuffer) fire(key DraftKey, version uint64) {
	unlock := b.lockKey(key)
	defer unlock()

	b.mu.Lock()
	e, ok := b.entries[key]
	if !ok || e.version != version || e.state != SyncPending {
		b.mu.Unlock()
		return
	}
	value, editor := e.value, e.editor
	b.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), b.writeTimeout)
	defer cancel()
	b.complete(key, version, b.write(ctx, key, value, editor))
}

// lockKey blocks until no other write of key is running and returns the
// release func.
func (b *DraftBuffer) lockKey(key DraftKey) func() {
	b.mu.Lock()
	l, ok := b.writing[key]
	if !ok {
		l = &keyLock{}
		b.writing[key] = l
	}
	l.refs++
	b.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		b.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(b.writing, key)
		}
		b.mu.Unlock()
	}
}

// complete records the outcome of writing version. A newer Put in the
// meantime keeps its own pending state.
func (b *DraftBuffer) complete(key DraftKey, version uint64, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.entries[key]
	if !ok || e.version != version {
		return
	}
	if err != nil {
		e.state = SyncFailed
		e.err = err
		b.logger.Error("appreciation write failed",
			zap.String("student_id", key.StudentID),
			zap.Int64("period_id", key.PeriodID),
			zap.Error(err),
		)
		return
	}
	delete(b.entries, key)
}

// AppreciationWriter stores a buffered appreciation as one upsert so the
// text and the approval it implies land together.
func AppreciationWriter(repo *repository.Repository) DraftWriter {
	return func(ctx context.Context, key DraftKey, a grading.Appreciation, editor Caller) error {
		comment := a.Comment
		row := &model.StudentAppreciation{
			StudentID:  key.StudentID,
			BimestreID: key.PeriodID,
			Comment:    &comment,
			IsApproved: a.Approval,
		}
		if strings.TrimSpace(comment) == "" {
			row.Comment = nil
		}
		if editor.Role == grading.RoleDocente {
			row.TutorID = &editor.ProfileID
		}
		if a.IsApproved() {
			row.ApprovedBy = &editor.ProfileID
		}
		return pkgerrors.NewWriteError("upsert_appreciation", repo.Appreciation.Upsert(ctx, row))
	}
}
