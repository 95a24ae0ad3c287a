package client

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	domainsvcs "github.com/ghuser/bizdir/services/menu/domain/services"
)

// State is a DragSession phase.
type State int

const (
	StateIdle State = iota
	StateDragging
	StateDropped
	StateCommitting
	StateCommitted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDragging:
		return "dragging"
	case StateDropped:
		return "dropped"
	case StateCommitting:
		return "committing"
	case StateCommitted:
		return "committed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ErrInvalidTransition is returned when an event is not allowed in the
// session's current state.
var ErrInvalidTransition = errors.New("invalid drag transition")

// Reorderer persists a bucket order. *Client implements it.
type Reorderer interface {
	Reorder(ctx context.Context, bucket string, orderedIDs []uuid.UUID) error
}

// CommitRequest is the order a drop produced, ready to send.
type CommitRequest struct {
	Bucket     string
	OrderedIDs []uuid.UUID
}

// DragSession tracks one drag gesture within a bucket. Moves only touch the
// local working copy and the OptimisticCache; the only network call is the
// single Reorder made by Commit.
type DragSession struct {
	cache *OptimisticCache
	api   Reorderer

	mu      sync.Mutex
	state   State
	bucket  string
	active  uuid.UUID
	working []uuid.UUID
	version uint64
}

// NewDragSession returns an idle session patching cache and committing
// through api.
func NewDragSession(cache *OptimisticCache, api Reorderer) *DragSession {
	return &DragSession{cache: cache, api: api}
}

// State returns the current phase.
func (s *DragSession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// WorkingCopy returns the in-progress id order.
func (s *DragSession) WorkingCopy() []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.working)
}

// PickUp starts dragging id within bucket. The working copy is the bucket's
// current view in the cache, fetched if needed.
func (s *DragSession) PickUp(ctx context.Context, bucket string, id uuid.UUID) error {
	s.mu.Lock()
	switch s.state {
	case StateIdle, StateCommitted, StateFailed:
	default:
		st := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: pick up while %s", ErrInvalidTransition, st)
	}
	s.mu.Unlock()

	snap, err := s.cache.Get(ctx, bucket)
	if err != nil {
		return fmt.Errorf("load bucket %s: %w", bucket, err)
	}
	ids := snap.IDs()
	if !slices.Contains(ids, id) {
		return fmt.Errorf("item %s is not in bucket %s", id, bucket)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateDragging
	s.bucket = bucket
	s.active = id
	s.working = ids
	s.version = 0
	return nil
}

// MoveTo moves the dragged item to index, shifting the items in between.
// Out-of-range indexes are clamped.
func (s *DragSession) MoveTo(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateDragging {
		return fmt.Errorf("%w: move while %s", ErrInvalidTransition, s.state)
	}
	return s.moveLocked(index)
}

// MoveOver moves the dragged item to the position currently held by over.
func (s *DragSession) MoveOver(over uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateDragging {
		return fmt.Errorf("%w: move while %s", ErrInvalidTransition, s.state)
	}
	idx := slices.Index(s.working, over)
	if idx < 0 {
		return fmt.Errorf("item %s is not in bucket %s", over, s.bucket)
	}
	return s.moveLocked(idx)
}

func (s *DragSession) moveLocked(index int) error {
	next, err := domainsvcs.MoveID(s.working, s.active, index)
	if err != nil {
		return err
	}
	if slices.Equal(next, s.working) {
		return nil
	}
	version, err := s.cache.Patch(s.bucket, next)
	if err != nil {
		return fmt.Errorf("patch bucket %s: %w", s.bucket, err)
	}
	s.working = next
	s.version = version
	return nil
}

// Drop ends the gesture and returns the candidate order.
func (s *DragSession) Drop() (CommitRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateDragging {
		return CommitRequest{}, fmt.Errorf("%w: drop while %s", ErrInvalidTransition, s.state)
	}
	s.state = StateDropped
	return CommitRequest{Bucket: s.bucket, OrderedIDs: slices.Clone(s.working)}, nil
}

// Cancel aborts a drag before commit. The cache's pending patch is dropped,
// so nothing observable remains of the gesture.
func (s *DragSession) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateDragging && s.state != StateDropped {
		return fmt.Errorf("%w: cancel while %s", ErrInvalidTransition, s.state)
	}
	s.cache.Discard(s.bucket)
	s.reset()
	return nil
}

// Commit sends the dropped order with exactly one Reorder call. On success
// the cache's pending snapshot becomes confirmed. On failure the bucket is
// invalidated and refetched so the view reverts to the server's order, and
// the Reorder error is returned.
func (s *DragSession) Commit(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateDropped {
		st := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: commit while %s", ErrInvalidTransition, st)
	}
	s.state = StateCommitting
	bucket, ids, version := s.bucket, slices.Clone(s.working), s.version
	s.mu.Unlock()

	err := s.api.Reorder(ctx, bucket, ids)

	if err == nil {
		if version != 0 {
			s.cache.Confirm(bucket, version)
		}
		s.finish(StateCommitted)
		return nil
	}

	s.cache.Invalidate(bucket)
	s.finish(StateFailed)
	if _, refreshErr := s.cache.Refresh(ctx, bucket); refreshErr != nil {
		return fmt.Errorf("reorder %s: %w", bucket, errors.Join(err, fmt.Errorf("refetch: %w", refreshErr)))
	}
	return fmt.Errorf("reorder %s: %w", bucket, err)
}

func (s *DragSession) finish(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
	s.active = uuid.Nil
	s.working = nil
	s.version = 0
}

func (s *DragSession) reset() {
	s.state = StateIdle
	s.bucket = ""
	s.active = uuid.Nil
	s.working = nil
	s.version = 0
}
