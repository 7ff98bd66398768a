package runlog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testColumns = Columns{Run: "Run Number", Quality: "Good", Category: "Beam Energy"}

const sampleCSV = `Run Number,Good,Beam Energy,Comment
55,GOOD,4,below range
56,GOOD,4,first in range
57,BAD,4,bad quality
58,GOOD,2,other energy
,GOOD,4,blank run
abc,GOOD,4,garbage run
60.0,GOOD,4,float export
107,GOOD,4,upper bound
108,GOOD,4,above range
70,good,4,lowercase marker
`

func parseSample(t *testing.T) *Log {
	t.Helper()
	log, err := Parse(strings.NewReader(sampleCSV), testColumns)
	require.NoError(t, err)
	return log
}

func TestParseRun(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"56", 56, true},
		{" 107 ", 107, true},
		{"60.0", 60, true},
		{"0", 0, true},
		{"", 0, false},
		{"abc", 0, false},
		{"56.5", 0, false},
		{"NaN", 0, false},
		{"1e20", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseRun(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ParseRun(%q) = (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParse(t *testing.T) {
	log := parseSample(t)

	assert.Equal(t, []string{"Run Number", "Good", "Beam Energy", "Comment"}, log.Header)
	require.Len(t, log.Entries, 10)

	first := log.Entries[0]
	assert.Equal(t, 1, first.Line)
	assert.Equal(t, 55, first.Run)
	assert.True(t, first.RunValid)
	assert.Equal(t, "GOOD", first.Quality)
	assert.Equal(t, "4", first.Category)
	assert.Equal(t, "below range", first.Fields["Comment"])

	assert.False(t, log.Entries[4].RunValid, "blank run")
	assert.False(t, log.Entries[5].RunValid, "garbage run")
	assert.Equal(t, 60, log.Entries[6].Run)
}

func TestParse_MissingColumn(t *testing.T) {
	_, err := Parse(strings.NewReader("Run Number,Good\n56,GOOD\n"), testColumns)
	assert.True(t, errors.Is(err, ErrMissingColumn), "got %v", err)
}

func TestParse_EmptyInput(t *testing.T) {
	_, err := Parse(strings.NewReader(""), testColumns)
	assert.Error(t, err)
}

func TestParse_RaggedRowsAndBOM(t *testing.T) {
	in := "\ufeffRun Number,Good,Beam Energy\n56,GOOD\n57\n"
	log, err := Parse(strings.NewReader(in), testColumns)
	require.NoError(t, err)
	require.Len(t, log.Entries, 2)
	assert.Equal(t, "GOOD", log.Entries[0].Quality)
	assert.Equal(t, "", log.Entries[0].Category)
	assert.Equal(t, "", log.Entries[1].Quality)
}

func TestSelect_MergeCriteria(t *testing.T) {
	log := parseSample(t)
	sel := log.Select(Filter{Good: "GOOD", RunMin: 56, RunMax: 107, Category: "4"})

	if diff := cmp.Diff([]int{56, 60, 107}, RunNumbers(sel)); diff != "" {
		t.Errorf("selection mismatch (-want +got):\n%s", diff)
	}
}

func TestSelect_IncludesIffAllPredicates(t *testing.T) {
	log := parseSample(t)
	f := Filter{Good: "GOOD", RunMin: 56, RunMax: 107, Category: "4"}

	selected := make(map[int]bool)
	for _, e := range log.Select(f) {
		selected[e.Line] = true
	}
	for _, e := range log.Entries {
		want := e.Quality == "GOOD" && e.RunValid && e.Run >= 56 && e.Run <= 107 && e.Category == "4"
		assert.Equal(t, want, selected[e.Line], "row %d (%q)", e.Line, e.RawRun)
	}
}

func TestSelect_EmptyCategoryMatchesAll(t *testing.T) {
	log := parseSample(t)
	sel := log.Select(Filter{Good: "GOOD", RunMin: 56, RunMax: 107})
	assert.Equal(t, []int{56, 58, 60, 107}, RunNumbers(sel))
}

func TestSelect_Scenarios(t *testing.T) {
	tests := []struct {
		name string
		row  string
		want bool
	}{
		{"run 56 good matching category", "56,GOOD,4", true},
		{"run 108 exceeds upper bound", "108,GOOD,4", false},
		{"run 55 below lower bound", "55,GOOD,4", false},
		{"wrong category", "60,GOOD,3", false},
		{"not good", "60,MAYBE,4", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := Parse(strings.NewReader("Run Number,Good,Beam Energy\n"+tt.row+"\n"), testColumns)
			require.NoError(t, err)
			sel := log.Select(Filter{Good: "GOOD", RunMin: 56, RunMax: 107, Category: "4"})
			assert.Equal(t, tt.want, len(sel) == 1)
		})
	}
}

func TestContainsAndFind(t *testing.T) {
	log := parseSample(t)

	assert.True(t, log.Contains(57), "quality does not matter for Contains")
	assert.True(t, log.Contains(108))
	assert.False(t, log.Contains(200))

	e, ok := log.Find(58)
	require.True(t, ok)
	assert.Equal(t, "2", e.Category)
}

func TestCategories(t *testing.T) {
	log := parseSample(t)
	assert.Equal(t, []string{"4", "2"}, log.Categories())
}

func TestLoader_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	l := &Loader{Location: srv.URL + "/export?format=csv", Columns: testColumns, Client: srv.Client()}
	log, err := l.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, log.Entries, 10)
}

func TestLoader_HTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	l := &Loader{Location: srv.URL, Columns: testColumns, Client: srv.Client()}
	_, err := l.Fetch(context.Background())
	assert.True(t, errors.Is(err, ErrHTTPStatus), "got %v", err)
}

func TestLoader_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runlog.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	l := &Loader{Location: path, Columns: testColumns}
	log, err := l.Fetch(context.Background())
	require.NoError(t, err)
	assert.True(t, log.Contains(56))
}

func TestLoader_LocalFileMissing(t *testing.T) {
	l := &Loader{Location: filepath.Join(t.TempDir(), "absent.csv"), Columns: testColumns}
	_, err := l.Fetch(context.Background())
	assert.Error(t, err)
}
