package model

type Error struct {
	Code    int    `json:"Code"`
	Message string `json:"Message"`
}

// TriageView carries the filter/search/sort configuration of a console view.
type TriageView struct {
	Search string `json:"Search"`
	Status string `json:"Status"`
	// WindowHours restricts records to the last N hours, 0 disables the filter.
	WindowHours int    `json:"WindowHours"`
	SortBy      string `json:"SortBy"`
	SortDir     string `json:"SortDir"`
}
