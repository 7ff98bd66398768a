package runlog

// Filter selects runs for processing. An empty Category matches every
// category.
type Filter struct {
	Good     string
	RunMin   int
	RunMax   int
	Category string
}

// Match applies the predicates in order: quality, run validity, run range,
// category.
func (f Filter) Match(e Entry) bool {
	if e.Quality != f.Good {
		return false
	}
	if !e.RunValid {
		return false
	}
	if e.Run < f.RunMin || e.Run > f.RunMax {
		return false
	}
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	return true
}

// Select returns the matching entries in run log order.
func (l *Log) Select(f Filter) []Entry {
	var out []Entry
	for _, e := range l.Entries {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	return out
}

// RunNumbers extracts the run numbers of entries, preserving order.
func RunNumbers(entries []Entry) []int {
	runs := make([]int, len(entries))
	for i, e := range entries {
		runs[i] = e.Run
	}
	return runs
}
