package mapping

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"ratebridge/internal/table"
)

// ErrUnknownSource is returned when a mapping references a source field that
// the dataset does not have.
var ErrUnknownSource = errors.New("mapping references unknown source field")

// Assignment is the source chosen for one target field.
type Assignment struct {
	Source     string `yaml:"source"     json:"source"`
	Confidence int    `yaml:"confidence" json:"confidence"` // 0..100
	Reason     Reason `yaml:"reason"     json:"reason"`
}

// FieldMapping maps canonical target fields to source fields. It is
// immutable: every modifier returns a new mapping.
type FieldMapping struct {
	targets []string
	assign  map[string]Assignment
}

// FromSources builds a mapping from plain target -> source and
// target -> confidence maps, as stored by the cache. Targets are ordered by
// name. Missing confidences read as 100.
func FromSources(sources map[string]string, confidence map[string]int, reason Reason) FieldMapping {
	targets := make([]string, 0, len(sources))
	for t, src := range sources {
		if src != "" {
			targets = append(targets, t)
		}
	}

	sort.Strings(targets)

	m := FieldMapping{targets: targets, assign: make(map[string]Assignment, len(targets))}
	for _, t := range targets {
		c, ok := confidence[t]
		if !ok {
			c = 100
		}

		m.assign[t] = Assignment{Source: sources[t], Confidence: c, Reason: reason}
	}

	return m
}

// With returns a copy of m where target is assigned a. An empty source
// removes the target.
func (m FieldMapping) With(target string, a Assignment) FieldMapping {
	if a.Source == "" {
		return m.Without(target)
	}

	out := m.clone()
	if _, ok := out.assign[target]; !ok {
		out.targets = append(out.targets, target)
	}

	out.assign[target] = a

	return out
}

// Without returns a copy of m without target.
func (m FieldMapping) Without(target string) FieldMapping {
	out := m.clone()
	if _, ok := out.assign[target]; !ok {
		return out
	}

	delete(out.assign, target)
	out.targets = slices.DeleteFunc(out.targets, func(t string) bool { return t == target })

	return out
}

// WithReason returns a copy of m where every assignment carries reason.
func (m FieldMapping) WithReason(reason Reason) FieldMapping {
	out := m.clone()
	for t, a := range out.assign {
		a.Reason = reason
		out.assign[t] = a
	}

	return out
}

// Claim returns a copy of m where the sources of targets serve only those
// targets. Any other target reading one of them is dropped.
func (m FieldMapping) Claim(targets ...string) FieldMapping {
	owned := make(map[string]bool, len(targets))
	for _, t := range targets {
		if a, ok := m.assign[t]; ok {
			owned[a.Source] = true
		}
	}

	out := m.clone()
	for _, t := range m.targets {
		if !slices.Contains(targets, t) && owned[m.assign[t].Source] {
			out = out.Without(t)
		}
	}

	return out
}

func (m FieldMapping) clone() FieldMapping {
	out := FieldMapping{
		targets: slices.Clone(m.targets),
		assign:  make(map[string]Assignment, len(m.assign)+1),
	}

	for t, a := range m.assign {
		out.assign[t] = a
	}

	return out
}

// Len returns the number of mapped targets.
func (m FieldMapping) Len() int { return len(m.targets) }

// IsEmpty reports whether nothing is mapped.
func (m FieldMapping) IsEmpty() bool { return len(m.targets) == 0 }

// Targets returns the mapped targets in assignment order.
func (m FieldMapping) Targets() []string { return slices.Clone(m.targets) }

// Get returns the assignment of target.
func (m FieldMapping) Get(target string) (Assignment, bool) {
	a, ok := m.assign[target]
	return a, ok
}

// Source returns the source field of target, or "".
func (m FieldMapping) Source(target string) string {
	return m.assign[target].Source
}

// Sources returns a copy of the target -> source pairs.
func (m FieldMapping) Sources() map[string]string {
	out := make(map[string]string, len(m.assign))
	for t, a := range m.assign {
		out[t] = a.Source
	}

	return out
}

// Confidences returns a copy of the target -> confidence pairs.
func (m FieldMapping) Confidences() map[string]int {
	out := make(map[string]int, len(m.assign))
	for t, a := range m.assign {
		out[t] = a.Confidence
	}

	return out
}

// Lowest returns the lowest confidence across all targets, or 100 when the
// mapping is empty.
func (m FieldMapping) Lowest() int {
	lowest := 100
	for _, a := range m.assign {
		lowest = min(lowest, a.Confidence)
	}

	return lowest
}

// Count returns the number of mapped targets that are not in exclude.
func (m FieldMapping) Count(exclude ...string) int {
	n := 0

	for _, t := range m.targets {
		if !slices.Contains(exclude, t) {
			n++
		}
	}

	return n
}

// Validate checks that every source exists in fields.
func (m FieldMapping) Validate(fields []string) error {
	var missing []string

	for _, t := range m.targets {
		if src := m.assign[t].Source; !slices.Contains(fields, src) {
			missing = append(missing, fmt.Sprintf("%s <- %s", t, src))
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrUnknownSource, strings.Join(missing, ", "))
	}

	return nil
}

// Restrict returns a copy of m without the assignments whose source is not
// in fields.
func (m FieldMapping) Restrict(fields []string) FieldMapping {
	out := m

	for _, t := range m.targets {
		if !slices.Contains(fields, m.assign[t].Source) {
			out = out.Without(t)
		}
	}

	return out
}

// Apply builds a new dataset whose fields are the mapped targets, in mapping
// order, followed by the passthrough source fields kept under their own
// names. A source feeding several targets is copied into each. The input is
// not modified.
func (m FieldMapping) Apply(ds *table.Dataset, passthrough ...string) *table.Dataset {
	var fields []string

	for _, t := range m.targets {
		if ds.HasField(m.assign[t].Source) {
			fields = append(fields, t)
		}
	}

	var kept []string

	for _, f := range passthrough {
		if ds.HasField(f) && !slices.Contains(fields, f) && !slices.Contains(kept, f) {
			kept = append(kept, f)
		}
	}

	out := table.New(append(fields, kept...)...)
	out.Rows = make([]table.Row, 0, ds.Len())

	for _, r := range ds.Rows {
		row := make(table.Row, len(out.Fields))
		for _, t := range fields {
			row[t] = r.Get(m.assign[t].Source)
		}

		for _, f := range kept {
			row[f] = r.Get(f)
		}

		out.Rows = append(out.Rows, row)
	}

	return out
}

// String renders the mapping as "Target <- Source (confidence, reason)" lines.
func (m FieldMapping) String() string {
	var b strings.Builder

	for _, t := range m.targets {
		a := m.assign[t]
		fmt.Fprintf(&b, "%s <- %s (%d, %s)\n", t, a.Source, a.Confidence, a.Reason)
	}

	return b.String()
}
