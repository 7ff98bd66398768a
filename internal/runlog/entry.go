package runlog

import (
	"math"
	"strconv"
	"strings"
)

// Columns names the header cells the selection logic reads.
type Columns struct {
	Run      string
	Quality  string
	Category string
}

// Entry is one row of the run log.
type Entry struct {
	Line     int    // 1-based data row index (header excluded).
	RawRun   string // Run cell as written.
	Run      int
	RunValid bool // False for blank or non-numeric run cells.
	Quality  string
	Category string
	Fields   map[string]string // Every cell keyed by header.
}

// Log is a parsed run log snapshot.
type Log struct {
	Header  []string
	Entries []Entry
}

// ParseRun parses a run number cell. Integers are accepted, as are integral
// floats such as "56.0", which spreadsheet exports produce for numeric
// columns containing blanks.
func ParseRun(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

// Contains reports whether run appears in the run-number column, regardless
// of quality or category.
func (l *Log) Contains(run int) bool {
	for _, e := range l.Entries {
		if e.RunValid && e.Run == run {
			return true
		}
	}
	return false
}

// Find returns the first entry for run.
func (l *Log) Find(run int) (Entry, bool) {
	for _, e := range l.Entries {
		if e.RunValid && e.Run == run {
			return e, true
		}
	}
	return Entry{}, false
}

// Categories returns the distinct category values in first-seen order.
func (l *Log) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range l.Entries {
		if e.Category == "" || seen[e.Category] {
			continue
		}
		seen[e.Category] = true
		out = append(out, e.Category)
	}
	return out
}
