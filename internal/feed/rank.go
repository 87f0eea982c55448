package feed

import (
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortMode selects one of the feed's total orders.
type SortMode string

const (
	SortRecent       SortMode = "recent"
	SortOldest       SortMode = "oldest"
	SortRecords      SortMode = "records"
	SortAlphabetical SortMode = "alphabetical"
)

// ParseSortMode maps a query-string value to a SortMode, accepting the
// documented aliases. Unknown or empty values fall back to recent.
func ParseSortMode(s string) SortMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "oldest":
		return SortOldest
	case "records", "popularity":
		return SortRecords
	case "alphabetical", "name":
		return SortAlphabetical
	default:
		return SortRecent
	}
}

// collator is locale-aware and case-insensitive; collate.Collator is not
// safe for concurrent use, so compareNames serializes access to it.
var (
	namesMu       sync.Mutex
	namesCollator = collate.New(language.English, collate.Loose)
)

func compareNames(a, b string) int {
	namesMu.Lock()
	defer namesMu.Unlock()
	return namesCollator.CompareString(a, b)
}

// Filter returns the entries whose name, description or author name contains
// query, case-insensitively. An empty query returns the input unchanged.
func Filter(entries []Entry, query string) []Entry {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return entries
	}

	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Name), q) ||
			strings.Contains(strings.ToLower(e.Description), q) ||
			strings.Contains(strings.ToLower(e.AuthorName), q) {
			out = append(out, e)
		}
	}
	return out
}

// Sort orders entries in place under the given mode. Every mode is a total
// order: stable sorting breaks remaining ties by insertion order.
func Sort(entries []Entry, mode SortMode) {
	switch mode {
	case SortOldest:
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].LastActivityAt.Before(entries[j].LastActivityAt)
		})
	case SortRecords:
		sort.SliceStable(entries, func(i, j int) bool {
			if entries[i].RecordCount != entries[j].RecordCount {
				return entries[i].RecordCount > entries[j].RecordCount
			}
			return entries[i].LastActivityAt.After(entries[j].LastActivityAt)
		})
	case SortAlphabetical:
		sort.SliceStable(entries, func(i, j int) bool {
			return compareNames(entries[i].Name, entries[j].Name) < 0
		})
	default:
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].LastActivityAt.After(entries[j].LastActivityAt)
		})
	}
}

// SortAndFilter applies Filter then Sort and returns the result.
func SortAndFilter(entries []Entry, query string, mode SortMode) []Entry {
	filtered := Filter(entries, query)
	Sort(filtered, mode)
	return filtered
}

// Paginate slices entries into the requested 1-based page. Out-of-range page
// numbers clamp to the nearest valid page instead of erroring; an empty list
// yields page 1 of 1 with no entries.
func Paginate(entries []Entry, page, pageSize int) (pageEntries []Entry, currentPage, totalPages int) {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	totalPages = (len(entries) + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(entries) {
		start = len(entries)
	}
	if end > len(entries) {
		end = len(entries)
	}
	return entries[start:end], page, totalPages
}

// DefaultPageSize matches the feed list view; callers may pass their own.
const DefaultPageSize = 20
