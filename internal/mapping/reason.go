package mapping

import (
	"fmt"
	"strings"
)

// Reason records which rule produced an assignment.
type Reason int

const (
	ReasonNone     Reason = iota
	ReasonExact           // normalized names equal
	ReasonSynonym         // source contains a curated synonym
	ReasonFuzzy           // similarity score above threshold
	ReasonContent         // semantic tag of the values
	ReasonDetected        // pivot-column detector
	ReasonManual          // chosen by a person
	ReasonCached          // reused from the mapping cache
)

// String returns a human-readable representation of the Reason.
func (r Reason) String() string {
	switch r {
	case ReasonExact:
		return "exact"
	case ReasonSynonym:
		return "synonym"
	case ReasonFuzzy:
		return "fuzzy"
	case ReasonContent:
		return "content"
	case ReasonDetected:
		return "detected"
	case ReasonManual:
		return "manual"
	case ReasonCached:
		return "cached"
	default:
		return "none"
	}
}

// ParseReason parses the String form of a Reason. The empty string is
// ReasonNone.
func ParseReason(s string) (Reason, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return ReasonNone, nil
	case "exact":
		return ReasonExact, nil
	case "synonym":
		return ReasonSynonym, nil
	case "fuzzy":
		return ReasonFuzzy, nil
	case "content":
		return ReasonContent, nil
	case "detected":
		return ReasonDetected, nil
	case "manual":
		return ReasonManual, nil
	case "cached":
		return ReasonCached, nil
	default:
		return ReasonNone, fmt.Errorf("unknown mapping reason %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Reason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Reason) UnmarshalText(text []byte) error {
	parsed, err := ParseReason(string(text))
	if err != nil {
		return err
	}

	*r = parsed

	return nil
}
