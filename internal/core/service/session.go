package service

import (
	"errors"

	"github.com/berfenger/descview/internal/core/domain"
)

var errMissingResult = errors.New("no result in fetch batch")

// Session is the comparison state machine of one viewer:
// Idle, Fetching(snapshot) and Ready(snapshot). Every selection change
// starts a new snapshot; a batch result is applied only while it belongs to
// the current one.
type Session struct {
	cache     *DetailCache
	selection *SelectionManager
	state     domain.SessionState
	snapshot  domain.Snapshot
}

func NewSession() *Session {
	cache := NewDetailCache()
	return &Session{
		cache:     cache,
		selection: NewSelectionManager(cache),
		state:     domain.SESSION_IDLE,
	}
}

func (s *Session) State() domain.SessionState {
	return s.state
}

func (s *Session) Snapshot() domain.Snapshot {
	return s.snapshot
}

func (s *Session) Selection() []domain.DeviceRef {
	return s.selection.Refs()
}

// Add selects ref and returns the fetch plan for the new snapshot, or nil
// when nothing has to be fetched. Rejected adds leave the session untouched.
func (s *Session) Add(ref domain.DeviceRef) (*domain.FetchPlan, error) {
	if err := s.selection.Add(ref); err != nil {
		return nil, err
	}
	return s.replan(), nil
}

// Remove deselects ref. Removing an unselected device changes nothing.
func (s *Session) Remove(ref domain.DeviceRef) *domain.FetchPlan {
	if !s.selection.Remove(ref) {
		return nil
	}
	return s.replan()
}

func (s *Session) Clear() {
	s.selection.Clear()
	s.snapshot++
	s.state = domain.SESSION_IDLE
}

// Refresh drops every cached descriptor of the selection and plans a full
// refetch.
func (s *Session) Refresh() *domain.FetchPlan {
	for _, ref := range s.selection.Refs() {
		s.cache.MarkPending(ref)
	}
	return s.replan()
}

func (s *Session) replan() *domain.FetchPlan {
	s.snapshot++
	var missing []domain.DeviceRef
	for _, ref := range s.selection.Refs() {
		switch s.cache.State(ref) {
		case CACHE_ABSENT, CACHE_PENDING:
			s.cache.MarkPending(ref)
			missing = append(missing, ref)
		}
	}
	if len(missing) == 0 {
		s.settle()
		return nil
	}
	s.state = domain.SESSION_FETCHING
	return &domain.FetchPlan{
		Snapshot: s.snapshot,
		Refs:     missing,
	}
}

func (s *Session) settle() {
	if s.selection.Len() == 0 {
		s.state = domain.SESSION_IDLE
	} else {
		s.state = domain.SESSION_READY
	}
}

// Apply stores a settled batch. It returns false, changing nothing, when
// the batch belongs to a superseded snapshot.
func (s *Session) Apply(snapshot domain.Snapshot, results []domain.FetchResult) bool {
	if s.state != domain.SESSION_FETCHING || snapshot != s.snapshot {
		return false
	}
	for _, r := range results {
		if s.cache.State(r.Ref) != CACHE_PENDING {
			continue
		}
		switch {
		case r.Err != nil:
			s.cache.Fail(r.Ref, r.Err)
		case r.Descriptor == nil:
			s.cache.Fail(r.Ref, domain.ErrDeviceNotFound)
		default:
			s.cache.Put(r.Ref, r.Descriptor)
		}
	}
	for _, ref := range s.selection.Refs() {
		if s.cache.State(ref) == CACHE_PENDING {
			s.cache.Fail(ref, errMissingResult)
		}
	}
	s.settle()
	return true
}

// Descriptors returns the ready descriptors aligned with the selection.
func (s *Session) Descriptors() []*domain.DeviceDescriptor {
	refs := s.selection.Refs()
	descriptors := make([]*domain.DeviceDescriptor, len(refs))
	for i, ref := range refs {
		descriptors[i] = s.cache.Descriptor(ref)
	}
	return descriptors
}

func (s *Session) Failures() []*domain.FetchFailure {
	var failures []*domain.FetchFailure
	for _, ref := range s.selection.Refs() {
		if err := s.cache.Failure(ref); err != nil {
			failures = append(failures, &domain.FetchFailure{Ref: ref, Err: err})
		}
	}
	return failures
}

func (s *Session) Comparison() domain.ComparisonMatrix {
	return BuildComparisonMatrix(s.selection.Refs(), s.Descriptors())
}

func (s *Session) Specs() domain.SpecsMatrix {
	return BuildSpecsMatrix(s.selection.Refs(), s.Descriptors())
}

// Cached exposes the detail cache for inspection.
func (s *Session) Cached(ref domain.DeviceRef) CacheState {
	return s.cache.State(ref)
}
