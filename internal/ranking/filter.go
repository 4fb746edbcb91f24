package ranking

import (
	"sort"
	"strings"

	"sgb-go/internal/model"
)

// SortOrder selects the explore view ordering.
type SortOrder string

const (
	SortRecent  SortOrder = "recent"
	SortPopular SortOrder = "popular"
)

// Tab selects which records the explore view starts from.
type Tab string

const (
	TabAll   Tab = "all"
	TabSaved Tab = "saved"
)

// FilterOptions controls Filter. Zero values mean all records, no search,
// most liked first.
type FilterOptions struct {
	Query string
	Sort  SortOrder
	Tab   Tab
	Saved model.IDSet
}

// Filter applies tab, search and sort to records and returns a new slice.
// Visibility is not checked here; callers pass the records the user may see.
func Filter(records []model.AnalysisRecord, opts FilterOptions) []model.AnalysisRecord {
	q := strings.ToLower(strings.TrimSpace(opts.Query))

	out := make([]model.AnalysisRecord, 0, len(records))
	for _, r := range records {
		if opts.Tab == TabSaved && !opts.Saved.Has(r.ID) {
			continue
		}
		if q != "" && !matches(r, q) {
			continue
		}
		out = append(out, r)
	}

	switch opts.Sort {
	case SortRecent:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].UploadDate.After(out[j].UploadDate)
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Likes > out[j].Likes
		})
	}
	return out
}

func matches(r model.AnalysisRecord, q string) bool {
	fields := []string{
		r.StudentID + r.StudentName,
		r.StudentName,
		r.StudentID,
		strings.Join(r.Strengths, " "),
		strings.Join(r.Improvements, " "),
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
