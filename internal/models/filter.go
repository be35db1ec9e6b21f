package models

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// TimeWindow restricts list views to recently created recipes.
type TimeWindow string

const (
	WindowNone  TimeWindow = ""
	WindowWeek  TimeWindow = "week"
	WindowMonth TimeWindow = "month"
	WindowYear  TimeWindow = "year"
)

// ParseTimeWindow returns WindowNone for anything it does not recognize.
func ParseTimeWindow(s string) TimeWindow {
	switch w := TimeWindow(strings.ToLower(strings.TrimSpace(s))); w {
	case WindowWeek, WindowMonth, WindowYear:
		return w
	}
	return WindowNone
}

// Start returns the inclusive lower bound of the window relative to now.
func (w TimeWindow) Start(now time.Time) (time.Time, bool) {
	switch w {
	case WindowWeek:
		return now.AddDate(0, 0, -7), true
	case WindowMonth:
		return now.AddDate(0, -1, 0), true
	case WindowYear:
		return now.AddDate(-1, 0, 0), true
	}
	return time.Time{}, false
}

// RecipeFilter narrows a recipe list. Zero values mean "no constraint".
// Kinds combine with AND; CategoryIDs match when any one applies.
type RecipeFilter struct {
	Query       string
	Window      TimeWindow
	Difficulty  Difficulty
	CategoryIDs []uint
	AuthorID    uint
	// Since is resolved from Window by the caller that owns the clock.
	Since  time.Time
	Limit  int
	Offset int
}

// ParseRecipeFilter builds a filter from raw query values. Malformed values
// are dropped rather than rejected.
func ParseRecipeFilter(q, window, difficulty, categories string) RecipeFilter {
	f := RecipeFilter{
		Query:  strings.TrimSpace(q),
		Window: ParseTimeWindow(window),
	}
	if d, ok := ParseDifficulty(difficulty); ok {
		f.Difficulty = d
	}
	f.CategoryIDs = ParseIDList(categories)
	return f
}

// ParseIDList parses a comma separated id list, skipping invalid entries and
// duplicates. The result is sorted.
func ParseIDList(raw string) []uint {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	seen := make(map[uint]struct{})
	var ids []uint
	for _, part := range strings.Split(raw, ",") {
		n, err := strconv.ParseUint(strings.TrimSpace(part), 10, 32)
		if err != nil || n == 0 {
			continue
		}
		id := uint(n)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
