package triage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRecord struct {
	id       string
	title    string
	kind     string
	severity int
	ts       time.Time
	read     bool
}

func testDescriptor() Descriptor[testRecord] {
	return Descriptor[testRecord]{
		ID:         func(r testRecord) string { return r.id },
		SearchText: func(r testRecord) []string { return []string{r.title, r.kind} },
		Timestamp:  func(r testRecord) time.Time { return r.ts },
		MatchesStatus: func(r testRecord, status string) bool {
			switch status {
			case "unread":
				return !r.read
			case "read":
				return r.read
			}
			return r.kind == status
		},
		SeverityRank: func(r testRecord) int { return r.severity },
		Category:     func(r testRecord) string { return r.kind },
	}
}

func testCollection(now time.Time) *Collection[testRecord] {
	c := NewCollection(testDescriptor())
	c.now = func() time.Time { return now }

	// fetch order: newest first, the tie-break order for all sorting
	c.Replace([]testRecord{
		{id: "a", title: "Database outage", kind: "error", severity: 4, ts: now.Add(-1 * time.Minute)},
		{id: "b", title: "Backup done", kind: "success", severity: 1, ts: now.Add(-1 * time.Hour), read: true},
		{id: "c", title: "Exam schedule", kind: "info", severity: 2, ts: now.Add(-2 * time.Hour)},
		{id: "d", title: "Security warning", kind: "warning", severity: 3, ts: now.Add(-30 * time.Hour)},
		{id: "e", title: "Another outage", kind: "error", severity: 4, ts: now.Add(-3 * time.Hour)},
	})
	return c
}

func visibleIds(c *Collection[testRecord]) []string {
	var ids []string
	for _, r := range c.Visible() {
		ids = append(ids, r.id)
	}
	return ids
}

func TestCollection_SearchIsCaseInsensitiveSubstring(t *testing.T) {
	now := time.Now()
	c := testCollection(now)

	c.UpdateView(View{Search: "OUTAGE"})
	assert.Equal(t, []string{"a", "e"}, visibleIds(c))

	c.UpdateView(View{Search: ""})
	assert.Len(t, c.Visible(), 5)
}

func TestCollection_FiltersAreAnded(t *testing.T) {
	now := time.Now()
	c := testCollection(now)

	c.UpdateView(View{Search: "outage", Status: "error", Window: 2 * time.Hour})
	assert.Equal(t, []string{"a"}, visibleIds(c))

	// "all" disables the enumerated filter
	c.UpdateView(View{Status: FilterAll})
	assert.Len(t, c.Visible(), 5)
}

func TestCollection_DateWindowFilter(t *testing.T) {
	now := time.Now()
	c := testCollection(now)

	c.UpdateView(View{Window: 24 * time.Hour})
	assert.Equal(t, []string{"a", "b", "c", "e"}, visibleIds(c))
}

func TestCollection_SortBySeverityDescendingMeansMostSevereFirst(t *testing.T) {
	now := time.Now()
	c := testCollection(now)

	c.UpdateView(View{SortBy: SortBySeverity, SortDir: SortDescending})

	// severity groups in order critical..low, ties keep fetch order: a before e
	assert.Equal(t, []string{"a", "e", "d", "c", "b"}, visibleIds(c))

	c.UpdateView(View{SortBy: SortBySeverity, SortDir: SortAscending})
	assert.Equal(t, []string{"b", "c", "d", "a", "e"}, visibleIds(c))
}

func TestCollection_SortByTimeAndType(t *testing.T) {
	now := time.Now()
	c := testCollection(now)

	c.UpdateView(View{SortBy: SortByTime, SortDir: SortAscending})
	assert.Equal(t, []string{"d", "e", "c", "b", "a"}, visibleIds(c))

	c.UpdateView(View{SortBy: SortByType, SortDir: SortAscending})
	// lexicographic: error, error, info, success, warning; ties keep fetch order
	assert.Equal(t, []string{"a", "e", "c", "b", "d"}, visibleIds(c))
}

func TestCollection_ToggleSelectOnlyVisibleIds(t *testing.T) {
	now := time.Now()
	c := testCollection(now)

	c.UpdateView(View{Status: "error"})

	assert.True(t, c.ToggleSelect("a"))
	assert.False(t, c.ToggleSelect("b")) // hidden, ignored
	assert.Equal(t, []string{"a"}, c.Selected())

	assert.False(t, c.ToggleSelect("a")) // toggled off
	assert.Empty(t, c.Selected())
}

func TestCollection_SelectAllToggles(t *testing.T) {
	now := time.Now()
	c := testCollection(now)

	c.UpdateView(View{Status: "error"})

	c.SelectAll()
	assert.Equal(t, []string{"a", "e"}, c.Selected())

	// select-all over an already fully selected set clears the selection
	c.SelectAll()
	assert.Empty(t, c.Selected())
}

func TestCollection_FilterPrunesHiddenSelection(t *testing.T) {
	now := time.Now()
	c := testCollection(now)

	c.SelectAll()
	require.Len(t, c.Selected(), 5)

	c.UpdateView(View{Status: "error"})
	assert.Equal(t, []string{"a", "e"}, c.Selected())
}

func TestCollection_RemovePrunesSelectionAndOpenDetail(t *testing.T) {
	now := time.Now()
	c := testCollection(now)

	_, ok := c.Open("a")
	require.True(t, ok)
	c.SelectAll()

	c.Remove("a", "b")

	assert.Equal(t, "", c.OpenId())
	assert.Equal(t, []string{"c", "d", "e"}, c.Selected())
	assert.Len(t, c.Records(), 3)
}

func TestCollection_DeselectPrunesOnlyGivenIds(t *testing.T) {
	now := time.Now()
	c := testCollection(now)

	c.SelectAll()
	c.Deselect("a", "c")
	assert.Equal(t, []string{"b", "d", "e"}, c.Selected())
}

func TestCollection_OpenRequiresVisibleRecord(t *testing.T) {
	now := time.Now()
	c := testCollection(now)

	c.UpdateView(View{Status: "error"})
	_, ok := c.Open("b")
	assert.False(t, ok)

	opened, ok := c.Open("e")
	require.True(t, ok)
	assert.Equal(t, "e", opened.id)
	assert.Equal(t, "e", c.OpenId())

	c.Close()
	assert.Equal(t, "", c.OpenId())
}

func TestCollection_StaleFetchIsDiscarded(t *testing.T) {
	c := NewCollection(testDescriptor())

	first := c.BeginFetch()
	second := c.BeginFetch()

	// the newer fetch completes first
	assert.True(t, c.CompleteFetch(second, []testRecord{{id: "new"}}))

	// the older fetch completes afterwards and must not clobber the newer result
	assert.False(t, c.CompleteFetch(first, []testRecord{{id: "old"}}))

	records := c.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "new", records[0].id)
}

func TestCollection_MutationInvalidatesInFlightFetch(t *testing.T) {
	c := NewCollection(testDescriptor())
	c.Replace([]testRecord{{id: "a"}, {id: "b"}})

	fetch := c.BeginFetch()

	// a delete completes while the fetch is in flight
	c.Remove("a")

	assert.False(t, c.CompleteFetch(fetch, []testRecord{{id: "a"}, {id: "b"}}))

	records := c.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "b", records[0].id)
}

func TestCollection_PatchRewritesRecordInPlace(t *testing.T) {
	now := time.Now()
	c := testCollection(now)

	c.Patch("c", func(r *testRecord) {
		r.read = true
	})

	c.UpdateView(View{Status: "read"})
	assert.Equal(t, []string{"b", "c"}, visibleIds(c))
}
