package naming

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRunToken(t *testing.T) {
	cases := []struct {
		run  int
		want string
	}{
		{0, "000"},
		{7, "007"},
		{56, "056"},
		{107, "107"},
		{123, "123"},
		{999, "999"},
		{1000, "1000"},
		{12345, "12345"},
	}
	for _, tc := range cases {
		got, err := RunToken(tc.run)
		if err != nil {
			t.Fatalf("RunToken(%d): %v", tc.run, err)
		}
		if got != tc.want {
			t.Errorf("RunToken(%d) = %q, want %q", tc.run, got, tc.want)
		}
	}
}

func TestRunToken_Negative(t *testing.T) {
	_, err := RunToken(-1)
	if !errors.Is(err, ErrNegativeRun) {
		t.Errorf("RunToken(-1) error = %v, want ErrNegativeRun", err)
	}
}

func TestExpand(t *testing.T) {
	cases := []struct {
		name string
		tmpl string
		run  int
		want string
	}{
		{"raw file", "Run{run}.h2g", 7, "Run007.h2g"},
		{"decoded file", "Run{run}.root", 123, "Run123.root"},
		{"merge input", "run{run}.root", 56, "run056.root"},
		{"run dir unpadded", "run{num}", 7, "run7"},
		{"artifact suffix token", "adc_tot_correlation_run{run}.pdf", 80, "adc_tot_correlation_run080.pdf"},
		{"both placeholders", "{num}/Run{run}.pdf", 5, "5/Run005.pdf"},
		{"no placeholder", "static.txt", 5, "static.txt"},
		{"wide run", "Run{run}.root", 1234, "Run1234.root"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Expand(tc.tmpl, tc.run)
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Errorf("Expand(%q, %d) = %q, want %q", tc.tmpl, tc.run, got, tc.want)
			}
		})
	}
}

func TestTemplatePath_Pure(t *testing.T) {
	tmpl := Template{Dir: "/data/prod", Name: "run{run}.root"}
	a, err := tmpl.Path(7)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := tmpl.Path(7)
	if a != b {
		t.Errorf("Path not deterministic: %q vs %q", a, b)
	}
	if want := filepath.Join("/data/prod", "run007.root"); a != want {
		t.Errorf("Path(7) = %q, want %q", a, want)
	}
}

func TestTemplatePaths_PreservesOrder(t *testing.T) {
	tmpl := Template{Dir: "prod", Name: "run{run}.root"}
	got, err := tmpl.Paths([]int{60, 56, 101})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join("prod", "run060.root"),
		filepath.Join("prod", "run056.root"),
		filepath.Join("prod", "run101.root"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Paths mismatch (-want +got):\n%s", diff)
	}
}

func TestTemplatePaths_NegativeRun(t *testing.T) {
	tmpl := Template{Dir: "prod", Name: "run{run}.root"}
	if _, err := tmpl.Paths([]int{56, -3}); err == nil {
		t.Error("expected error for negative run")
	}
}
