package core

import (
	"sort"
	"sync"
)

// DaySelection is the set of calendar days toggled on by one form session.
// It is safe for concurrent use; each session owns its own instance.
type DaySelection struct {
	mu   sync.Mutex
	days map[int]struct{}
}

func NewDaySelection() *DaySelection {
	return &DaySelection{days: make(map[int]struct{})}
}

// Toggle flips day and reports whether it is now selected.
func (s *DaySelection) Toggle(day int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.days[day]; ok {
		delete(s.days, day)
		return false
	}
	s.days[day] = struct{}{}
	return true
}

func (s *DaySelection) Has(day int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.days[day]
	return ok
}

// Days returns the selected days sorted ascending.
func (s *DaySelection) Days() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, 0, len(s.days))
	for d := range s.days {
		out = append(out, d)
	}
	sort.Ints(out)
	return out
}

// Reset clears the selection, e.g. after a successful submission.
func (s *DaySelection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.days = make(map[int]struct{})
}

// Input converts the selection to a DayInput for a Block.
func (s *DaySelection) Input() DayInput {
	return PickedDays(s.Days()...)
}
