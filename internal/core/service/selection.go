package service

import (
	"slices"

	"github.com/berfenger/descview/internal/core/domain"
)

const MAX_SELECTION = 4

// SelectionManager owns the ordered set of devices being compared.
// Selection order fixes column order and display naming in the matrix.
type SelectionManager struct {
	refs  []domain.DeviceRef
	cache *DetailCache
}

func NewSelectionManager(cache *DetailCache) *SelectionManager {
	return &SelectionManager{
		cache: cache,
	}
}

func (s *SelectionManager) Add(ref domain.DeviceRef) error {
	if len(s.refs) >= MAX_SELECTION {
		return domain.ErrMaxSelectionExceeded
	}
	if s.Contains(ref) {
		return domain.ErrDuplicateSelection
	}
	if format, ok := s.Format(); ok && format != ref.Format {
		return domain.ErrTypeMismatch
	}
	s.refs = append(s.refs, ref)
	s.cache.MarkPending(ref)
	return nil
}

// Remove drops ref from the selection and evicts its descriptor. It reports
// whether ref was selected.
func (s *SelectionManager) Remove(ref domain.DeviceRef) bool {
	idx := slices.Index(s.refs, ref)
	if idx < 0 {
		return false
	}
	s.refs = slices.Delete(s.refs, idx, idx+1)
	s.cache.Evict(ref)
	return true
}

func (s *SelectionManager) Clear() {
	s.refs = nil
	s.cache.Clear()
}

func (s *SelectionManager) Contains(ref domain.DeviceRef) bool {
	return slices.Contains(s.refs, ref)
}

// Format returns the format shared by the selection, if any.
func (s *SelectionManager) Format() (domain.Format, bool) {
	if len(s.refs) == 0 {
		return "", false
	}
	return s.refs[0].Format, true
}

func (s *SelectionManager) Refs() []domain.DeviceRef {
	return slices.Clone(s.refs)
}

func (s *SelectionManager) Len() int {
	return len(s.refs)
}
