// Package triage implements the generic oversight collection: an enriched
// in-memory record set with filter, search, sort, multi-select and fetch
// ordering semantics shared by the notification and session consoles.
package triage

import (
	"sort"
	"strings"
	"sync"
	"time"
)

type SortDirection string

const (
	SortAscending  SortDirection = "asc"
	SortDescending SortDirection = "desc"
)

// Well-known sort fields. Record kinds may support a subset.
const (
	SortByTime     = "time"
	SortBySeverity = "severity"
	SortByType     = "type"
)

// FilterAll disables an enumerated or date-range filter.
const FilterAll = "all"

// View is the active filter/search/sort configuration. All active predicates
// are ANDed.
type View struct {
	// Search is matched case-insensitively as a substring against the
	// configured text fields. Empty matches everything.
	Search string
	// Status is one of the record kind's enumerated filter values, FilterAll
	// (or empty) is a no-op.
	Status string
	// Window restricts records to a timestamp within [now-Window, now].
	// Zero is a no-op.
	Window time.Duration

	SortBy  string
	SortDir SortDirection
}

// Descriptor adapts a record kind to the generic collection.
type Descriptor[T any] struct {
	// ID returns the unique record id.
	ID func(T) string
	// SearchText returns the text fields the search predicate runs against.
	SearchText func(T) []string
	// Timestamp returns the timestamp the date-range filter and time sort use.
	Timestamp func(T) time.Time
	// MatchesStatus reports whether the record matches an enumerated filter value.
	MatchesStatus func(T, string) bool
	// SeverityRank returns the numeric severity for severity sorting,
	// higher values are more severe.
	SeverityRank func(T) int
	// Category returns the value used for categorical (lexicographic) sorting.
	Category func(T) string
}

// Collection owns the enriched record set of one console. The zero value is
// not usable, use NewCollection.
//
// The records slice is kept in fetch order (server-side newest first), which
// is the tie-break order for all sorting. Fetches are tagged with a
// monotonically increasing sequence number: a fetch result is discarded if a
// newer fetch was issued or a local mutation was applied in the meantime, so
// an in-flight fetch can never clobber newer state.
type Collection[T any] struct {
	mu   sync.Mutex
	desc Descriptor[T]

	records  []T
	view     View
	selected map[string]struct{}
	openId   string

	seq uint64 // highest issued fetch sequence / mutation stamp

	now func() time.Time
}

func NewCollection[T any](desc Descriptor[T]) *Collection[T] {
	return &Collection[T]{
		desc:     desc,
		selected: make(map[string]struct{}),
		now:      time.Now,
	}
}

// BeginFetch reserves a sequence number for a fetch that is about to start.
func (c *Collection[T]) BeginFetch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	return c.seq
}

// CompleteFetch installs a fetch result. It returns false and leaves the
// collection untouched if the result is stale, last issued wins.
func (c *Collection[T]) CompleteFetch(seq uint64, records []T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seq < c.seq {
		return false // a newer fetch or mutation happened, discard
	}

	c.records = records
	c.pruneSelectionLocked()
	return true
}

// Replace installs a record set directly after a confirmed mutation. Any
// in-flight fetch issued earlier becomes stale.
func (c *Collection[T]) Replace(records []T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	c.records = records
	c.pruneSelectionLocked()
}

// Patch mutates the record with the given id in place, preserving order.
// In-flight fetches become stale.
func (c *Collection[T]) Patch(id string, fn func(*T)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	for i := range c.records {
		if c.desc.ID(c.records[i]) == id {
			fn(&c.records[i])
			break
		}
	}
}

// Remove drops the given ids from the record set, the selection and the open
// detail. In-flight fetches become stale.
func (c *Collection[T]) Remove(ids ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++

	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	kept := c.records[:0]
	for _, record := range c.records {
		if _, ok := drop[c.desc.ID(record)]; !ok {
			kept = append(kept, record)
		}
	}
	c.records = kept

	if _, ok := drop[c.openId]; ok {
		c.openId = ""
	}
	c.pruneSelectionLocked()
}

// Records returns a copy of the raw record set in fetch order.
func (c *Collection[T]) Records() []T {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]T, len(c.records))
	copy(out, c.records)
	return out
}

// UpdateView replaces the filter/search/sort configuration. Selected ids that
// fall out of the visible set are pruned.
func (c *Collection[T]) UpdateView(view View) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.view = view
	c.pruneSelectionLocked()
}

func (c *Collection[T]) CurrentView() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.view
}

// Visible returns the filtered, sorted view of the record set.
func (c *Collection[T]) Visible() []T {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.visibleLocked()
}

func (c *Collection[T]) visibleLocked() []T {
	now := c.now()

	visible := make([]T, 0, len(c.records))
	for _, record := range c.records {
		if !c.matchesLocked(record, now) {
			continue
		}
		visible = append(visible, record)
	}

	c.sortLocked(visible)
	return visible
}

func (c *Collection[T]) matchesLocked(record T, now time.Time) bool {
	if c.view.Search != "" {
		needle := strings.ToLower(c.view.Search)
		found := false
		for _, field := range c.desc.SearchText(record) {
			if strings.Contains(strings.ToLower(field), needle) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if c.view.Status != "" && c.view.Status != FilterAll {
		if !c.desc.MatchesStatus(record, c.view.Status) {
			return false
		}
	}

	if c.view.Window > 0 {
		ts := c.desc.Timestamp(record)
		if ts.Before(now.Add(-c.view.Window)) || ts.After(now) {
			return false
		}
	}

	return true
}

// sortLocked sorts the visible slice. Sorting is stable, equal keys keep the
// original fetch order.
func (c *Collection[T]) sortLocked(records []T) {
	if c.view.SortBy == "" {
		return
	}

	desc := c.view.SortDir == SortDescending

	var less func(a, b T) bool
	switch c.view.SortBy {
	case SortByTime:
		less = func(a, b T) bool {
			am, bm := c.desc.Timestamp(a).UnixMilli(), c.desc.Timestamp(b).UnixMilli()
			if desc {
				return am > bm
			}
			return am < bm
		}
	case SortBySeverity:
		// descending means most severe first
		less = func(a, b T) bool {
			ar, br := c.desc.SeverityRank(a), c.desc.SeverityRank(b)
			if desc {
				return ar > br
			}
			return ar < br
		}
	case SortByType:
		less = func(a, b T) bool {
			ac, bc := c.desc.Category(a), c.desc.Category(b)
			if desc {
				return ac > bc
			}
			return ac < bc
		}
	default:
		return
	}

	sort.SliceStable(records, func(i, j int) bool { return less(records[i], records[j]) })
}

// ToggleSelect adds or removes an id from the selection. Ids that are not
// part of the visible set are ignored. It returns true if the id is selected
// afterwards.
func (c *Collection[T]) ToggleSelect(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.selected[id]; ok {
		delete(c.selected, id)
		return false
	}

	for _, record := range c.visibleLocked() {
		if c.desc.ID(record) == id {
			c.selected[id] = struct{}{}
			return true
		}
	}

	return false
}

// SelectAll selects exactly the currently visible ids. If they are all
// selected already, the selection is cleared instead (toggle semantics).
func (c *Collection[T]) SelectAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	visible := c.visibleLocked()

	allSelected := len(visible) > 0 && len(c.selected) == len(visible)
	if allSelected {
		for _, record := range visible {
			if _, ok := c.selected[c.desc.ID(record)]; !ok {
				allSelected = false
				break
			}
		}
	}

	c.selected = make(map[string]struct{}, len(visible))
	if allSelected {
		return // toggled off
	}
	for _, record := range visible {
		c.selected[c.desc.ID(record)] = struct{}{}
	}
}

// Selected returns the selected ids in visible order.
func (c *Collection[T]) Selected() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]string, 0, len(c.selected))
	for _, record := range c.visibleLocked() {
		id := c.desc.ID(record)
		if _, ok := c.selected[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func (c *Collection[T]) IsSelected(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.selected[id]
	return ok
}

// Deselect removes the given ids from the selection set, other selected ids
// stay untouched.
func (c *Collection[T]) Deselect(ids ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, id := range ids {
		delete(c.selected, id)
	}
}

// ClearSelection empties the selection set.
func (c *Collection[T]) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.selected = make(map[string]struct{})
}

// Open marks a record as the active detail record and returns a copy of it.
// It reports false if the id is not part of the visible set.
func (c *Collection[T]) Open(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, record := range c.visibleLocked() {
		if c.desc.ID(record) == id {
			c.openId = id
			return record, true
		}
	}
	var zero T
	return zero, false
}

// OpenId returns the id of the active detail record, empty if none is open.
func (c *Collection[T]) OpenId() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.openId
}

// Close clears the active detail record without side effects.
func (c *Collection[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.openId = ""
}

// pruneSelectionLocked drops selected ids that are no longer visible, so the
// selection never references hidden or removed records.
func (c *Collection[T]) pruneSelectionLocked() {
	if len(c.selected) == 0 {
		return
	}

	visible := make(map[string]struct{}, len(c.records))
	for _, record := range c.visibleLocked() {
		visible[c.desc.ID(record)] = struct{}{}
	}

	for id := range c.selected {
		if _, ok := visible[id]; !ok {
			delete(c.selected, id)
		}
	}
}
