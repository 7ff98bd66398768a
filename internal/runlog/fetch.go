package runlog

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/eeemcal/beamprod/internal/config"
)

// ErrHTTPStatus is returned when the run log server answers with a non-2xx
// status.
var ErrHTTPStatus = errors.New("unexpected run log HTTP status")

// Source yields one run log snapshot per call.
type Source interface {
	Fetch(ctx context.Context) (*Log, error)
}

// Loader fetches the run log from an http(s) URL or reads it from a local
// CSV file.
type Loader struct {
	Location string
	Columns  Columns
	Client   *http.Client
}

// NewLoader builds a Loader from the run log settings in cfg.
func NewLoader(cfg *config.Config) *Loader {
	timeout := cfg.RunLog.FetchTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Loader{
		Location: cfg.RunLog.Location,
		Columns:  ColumnsFrom(cfg),
		Client:   &http.Client{Timeout: timeout},
	}
}

// ColumnsFrom returns the configured run log column names.
func ColumnsFrom(cfg *config.Config) Columns {
	return Columns{
		Run:      cfg.RunLog.RunColumn,
		Quality:  cfg.RunLog.QualityColumn,
		Category: cfg.RunLog.CategoryColumn,
	}
}

// Fetch downloads or opens the run log and parses it.
func (l *Loader) Fetch(ctx context.Context) (*Log, error) {
	if !isRemote(l.Location) {
		f, err := os.Open(l.Location)
		if err != nil {
			return nil, errors.Wrap(err, "open run log")
		}
		defer f.Close()
		return Parse(f, l.Columns)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.Location, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build run log request")
	}
	req.Header.Set("Accept", "text/csv")

	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetch run log")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, errors.Wrapf(ErrHTTPStatus, "%s", resp.Status)
	}
	return Parse(resp.Body, l.Columns)
}

func isRemote(location string) bool {
	lower := strings.ToLower(location)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
