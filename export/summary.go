package export

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/teranos/regen/errors"
)

// Outcome is what happened to one entity (or one skipped member) in a run.
type Outcome struct {
	Entity   string
	Kind     string
	Module   string
	Path     string
	Warnings []error
	Err      error
}

// Summary reports which entities a run wrote, skipped and failed.
type Summary struct {
	RunID   string
	Written []Outcome
	Skipped []Outcome
	Failed  []Outcome
}

// Err combines every failure of the run, or nil when nothing failed.
func (s *Summary) Err() error {
	var combined error
	for _, f := range s.Failed {
		combined = errors.CombineErrors(combined, errors.Wrapf(f.Err, "%s", f.Entity))
	}
	return combined
}

// Paths lists the files written, in write order.
func (s *Summary) Paths() []string {
	paths := make([]string, 0, len(s.Written))
	for _, w := range s.Written {
		paths = append(paths, w.Path)
	}
	return paths
}

// Report is the on-disk form of a Summary.
type Report struct {
	RunID       string          `toml:"run_id"`
	GeneratedAt time.Time       `toml:"generated_at"`
	Written     []ReportOutcome `toml:"written"`
	Skipped     []ReportOutcome `toml:"skipped"`
	Failed      []ReportOutcome `toml:"failed"`
}

// ReportOutcome is one Outcome with its errors flattened to messages.
type ReportOutcome struct {
	Entity   string   `toml:"entity"`
	Kind     string   `toml:"kind"`
	Module   string   `toml:"module,omitempty"`
	Path     string   `toml:"path,omitempty"`
	Warnings []string `toml:"warnings,omitempty"`
	Reason   string   `toml:"reason,omitempty"`
}

// Report converts s into its serializable form.
func (s *Summary) Report() Report {
	return Report{
		RunID:       s.RunID,
		GeneratedAt: time.Now().UTC().Truncate(time.Second),
		Written:     reportOutcomes(s.Written),
		Skipped:     reportOutcomes(s.Skipped),
		Failed:      reportOutcomes(s.Failed),
	}
}

func reportOutcomes(outcomes []Outcome) []ReportOutcome {
	out := make([]ReportOutcome, 0, len(outcomes))
	for _, o := range outcomes {
		r := ReportOutcome{Entity: o.Entity, Kind: o.Kind, Module: o.Module, Path: o.Path}
		for _, w := range o.Warnings {
			r.Warnings = append(r.Warnings, w.Error())
		}
		if o.Err != nil {
			r.Reason = o.Err.Error()
		}
		out = append(out, r)
	}
	return out
}

// WriteReport writes the summary as TOML to path.
func (s *Summary) WriteReport(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "failed to create report directory %s", dir)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create report %s", path)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(s.Report()); err != nil {
		return errors.Wrapf(err, "failed to encode report %s", path)
	}
	return nil
}

// ReadReport decodes a report written by WriteReport.
func ReadReport(path string) (Report, error) {
	var r Report
	if _, err := toml.DecodeFile(path, &r); err != nil {
		return Report{}, errors.Wrapf(err, "failed to read report %s", path)
	}
	return r, nil
}
