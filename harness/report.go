package harness

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Status of a case.
const (
	StatusPass  = "pass"
	StatusFail  = "fail"  // data mismatch
	StatusError = "error" // configuration or kernel fault
)

// Result captures the outcome of a single case.
type Result struct {
	Case       string        `json:"case" yaml:"case"`
	Kind       string        `json:"kind" yaml:"kind"` // "loadstore" or "fill"
	Type       string        `json:"type" yaml:"type"`
	Layouts    string        `json:"layouts" yaml:"layouts"`
	Tiling     string        `json:"tiling" yaml:"tiling"`
	Status     string        `json:"status" yaml:"status"`
	Error      string        `json:"error,omitempty" yaml:"error,omitempty"`
	Mismatches int           `json:"mismatches,omitempty" yaml:"mismatches,omitempty"`
	Bytes      int64         `json:"bytes" yaml:"bytes"`
	Duration   time.Duration `json:"duration" yaml:"duration"`
	Timestamp  time.Time     `json:"timestamp" yaml:"timestamp"`
}

// Passed reports whether the case succeeded.
func (r Result) Passed() bool {
	return r.Status == StatusPass
}

// Report collects the results of a run. It is safe for concurrent use.
type Report struct {
	mu sync.Mutex

	RunID   string    `json:"run_id" yaml:"run_id"`
	Device  string    `json:"device" yaml:"device"`
	Version string    `json:"version" yaml:"version"`
	Started time.Time `json:"started" yaml:"started"`
	Results []Result  `json:"results" yaml:"results"`
}

// NewReport starts a report with a fresh run ID.
func NewReport(device, version string) *Report {
	return &Report{
		RunID:   uuid.NewString(),
		Device:  device,
		Version: version,
		Started: time.Now(),
	}
}

// Add records a result.
func (r *Report) Add(res Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res.Timestamp.IsZero() {
		res.Timestamp = time.Now()
	}
	r.Results = append(r.Results, res)
}

// Summary counts results by status.
func (r *Report) Summary() (passed, failed, errored int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, res := range r.Results {
		switch res.Status {
		case StatusPass:
			passed++
		case StatusFail:
			failed++
		default:
			errored++
		}
	}
	return passed, failed, errored
}

// Failures returns the results that did not pass.
func (r *Report) Failures() []Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Result
	for _, res := range r.Results {
		if !res.Passed() {
			out = append(out, res)
		}
	}
	return out
}

// Write saves the report to path, as JSON when the extension is .json and
// as YAML otherwise. Missing directories are created.
func (r *Report) Write(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "creating report directory %s", dir)
		}
	}

	var data []byte
	var err error
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err = json.MarshalIndent(r, "", "  ")
	} else {
		data, err = yaml.Marshal(r)
	}
	if err != nil {
		return errors.Wrap(err, "encoding report")
	}
	return errors.Wrapf(os.WriteFile(path, data, 0644), "writing report %s", path)
}

// ReadReport loads a report written by Write.
func ReadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading report %s", path)
	}
	r := &Report{}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, r)
	} else {
		err = yaml.Unmarshal(data, r)
	}
	return r, errors.Wrapf(err, "decoding report %s", path)
}
