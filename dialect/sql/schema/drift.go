package schema

import (
	"fmt"
	"slices"
	"strings"

	"github.com/syssam/tablegen/compiler/load"
)

// DriftError describes one difference between a schema snapshot and the
// live database.
type DriftError struct {
	Table   string
	Column  string
	Message string
	// Breaking indicates code generated from the snapshot no longer works
	// against the live database.
	Breaking bool
}

func (e *DriftError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s.%s: %s", e.Table, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Table, e.Message)
}

// DriftReport holds the result of comparing a snapshot with the database.
type DriftReport struct {
	Errors   []*DriftError
	Warnings []*DriftError
}

// HasErrors returns true if there are any drift errors.
func (r *DriftReport) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are any drift warnings.
func (r *DriftReport) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// HasBreakingChanges returns true if there are any breaking changes.
func (r *DriftReport) HasBreakingChanges() bool {
	for _, e := range slices.Concat(r.Errors, r.Warnings) {
		if e.Breaking {
			return true
		}
	}
	return false
}

// String returns a human-readable summary of the report.
func (r *DriftReport) String() string {
	var sb strings.Builder
	write := func(title string, errs []*DriftError) {
		if len(errs) == 0 {
			return
		}
		sb.WriteString(title)
		sb.WriteString(":\n")
		for _, e := range errs {
			sb.WriteString("  - ")
			sb.WriteString(e.Error())
			if e.Breaking {
				sb.WriteString(" [BREAKING]")
			}
			sb.WriteString("\n")
		}
	}
	write("Errors", r.Errors)
	write("Warnings", r.Warnings)
	if !r.HasErrors() && !r.HasWarnings() {
		sb.WriteString("No drift found")
	}
	return sb.String()
}

// DriftOption configures the drift check.
type DriftOption func(*driftConfig)

type driftConfig struct {
	allowDropTable  bool
	allowDropColumn bool
}

// AllowDropTable reports tables missing from the database as warnings.
func AllowDropTable() DriftOption {
	return func(c *driftConfig) {
		c.allowDropTable = true
	}
}

// AllowDropColumn reports columns missing from the database as warnings.
func AllowDropColumn() DriftOption {
	return func(c *driftConfig) {
		c.allowDropColumn = true
	}
}

// Drift compares the tables of a snapshot with the tables inspected from
// the database. Changes that break code generated from the snapshot are
// errors, everything else is a warning.
//
//	report := schema.Drift(snapshot.Tables, live)
//	if report.HasErrors() {
//		log.Fatal(report)
//	}
func Drift(snapshot, live []*load.Table, opts ...DriftOption) *DriftReport {
	cfg := &driftConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	r := &DriftReport{}
	liveMap := make(map[string]*load.Table, len(live))
	for _, t := range live {
		liveMap[t.Name] = t
	}
	snapMap := make(map[string]bool, len(snapshot))
	for _, t := range snapshot {
		snapMap[t.Name] = true
		cur, ok := liveMap[t.Name]
		if !ok {
			r.add(cfg.allowDropTable, &DriftError{Table: t.Name, Message: "table no longer exists", Breaking: true})
			continue
		}
		tableDrift(t, cur, cfg, r)
	}
	for _, t := range live {
		if !snapMap[t.Name] {
			r.Warnings = append(r.Warnings, &DriftError{Table: t.Name, Message: "table is not in the snapshot"})
		}
	}
	return r
}

// add records e as a warning when allowed, or as an error.
func (r *DriftReport) add(allowed bool, e *DriftError) {
	if allowed {
		r.Warnings = append(r.Warnings, e)
	} else {
		r.Errors = append(r.Errors, e)
	}
}

func tableDrift(snap, cur *load.Table, cfg *driftConfig, r *DriftReport) {
	if snap.View != cur.View {
		r.Errors = append(r.Errors, &DriftError{Table: snap.Name, Message: "changed between table and view", Breaking: true})
	}
	if !slices.Equal(snap.PrimaryKey, cur.PrimaryKey) {
		r.Errors = append(r.Errors, &DriftError{
			Table:    snap.Name,
			Message:  fmt.Sprintf("primary key changed from %v to %v", snap.PrimaryKey, cur.PrimaryKey),
			Breaking: true,
		})
	}
	for _, c := range snap.Columns {
		lc, ok := cur.Column(c.Name)
		if !ok {
			r.add(cfg.allowDropColumn, &DriftError{Table: snap.Name, Column: c.Name, Message: "column no longer exists", Breaking: true})
			continue
		}
		if !strings.EqualFold(c.Type, lc.Type) {
			r.Warnings = append(r.Warnings, &DriftError{
				Table:   snap.Name,
				Column:  c.Name,
				Message: fmt.Sprintf("column type changed from %s to %s", c.Type, lc.Type),
			})
		}
		// Rows with NULL cannot be scanned into the non-null Go type.
		if !c.Nullable && lc.Nullable {
			r.Errors = append(r.Errors, &DriftError{
				Table:    snap.Name,
				Column:   c.Name,
				Message:  "column changed from NOT NULL to NULL",
				Breaking: true,
			})
		}
	}
	for _, lc := range cur.Columns {
		if _, ok := snap.Column(lc.Name); ok {
			continue
		}
		e := &DriftError{Table: snap.Name, Column: lc.Name, Message: "column is not in the snapshot"}
		if !lc.Nullable && !snap.View {
			e.Message = "NOT NULL column is not in the snapshot; inserts may fail"
		}
		r.Warnings = append(r.Warnings, e)
	}
}
