// Package domain defines the core types for the eval-analytics service.
package domain

import (
	"errors"
	"strings"
)

// DefaultTimeField is the timestamp field used when a request does not name one.
const DefaultTimeField = "@timestamp"

// nestedLabelPrefix marks fields stored inside the labels object.
const nestedLabelPrefix = "labels."

// rawValueField is a numeric field aggregated on its bare name (no keyword sub-field).
const rawValueField = "value"

// ErrNoFields is returned when a field-count request contains no usable field names.
var ErrNoFields = errors.New("at least one non-blank field is required")

// FieldCountRequest describes a field-count aggregation request.
type FieldCountRequest struct {
	// Fields is the ordered list of requested field names. Dotted
	// "labels.<leaf>" notation addresses nested label fields.
	Fields []string
	// FromTime and ToTime are optional inclusive ISO-8601 bounds on TimeField.
	FromTime string
	ToTime   string
	// TimeField is the timestamp field for range filtering. Empty means
	// DefaultTimeField.
	TimeField string
}

// EffectiveTimeField returns the time field to filter on.
func (r *FieldCountRequest) EffectiveTimeField() string {
	if r.TimeField == "" {
		return DefaultTimeField
	}
	return r.TimeField
}

// FieldKind classifies how a requested field is referenced in an aggregation.
type FieldKind int

const (
	// FieldDirect aggregates on "<name>.keyword" (text field with keyword sub-field).
	FieldDirect FieldKind = iota
	// FieldNested aggregates a labels object leaf on "labels.<leaf>.keyword".
	FieldNested
	// FieldRaw aggregates on the bare field name (numeric/date field, no
	// keyword sub-field exists).
	FieldRaw
)

// FieldRef is the resolved form of a requested field name. It is computed once
// when the request is parsed so the query builder and the result shaper agree
// on the aggregation target and key without re-deriving them from the raw
// string.
type FieldRef struct {
	// Name is the field name exactly as requested, e.g. "labels.model_name".
	Name string
	// Kind selects the aggregation addressing rule.
	Kind FieldKind
	// Path is the aggregation target, e.g. "status.keyword" or "value".
	Path string
	// AggKey is the aggregation name in the query and response, e.g. "status_count".
	AggKey string
}

// ResolveField classifies a single requested field name. The boolean is false
// when the name is blank after trimming and the field should be dropped.
func ResolveField(name, timeField string) (FieldRef, bool) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return FieldRef{}, false
	}

	if leaf, ok := strings.CutPrefix(trimmed, nestedLabelPrefix); ok && leaf != "" {
		// For nested leaves the result key is the leaf name, not the full path.
		key := leaf
		if idx := strings.LastIndex(leaf, "."); idx >= 0 {
			key = leaf[idx+1:]
		}
		return FieldRef{
			Name:   trimmed,
			Kind:   FieldNested,
			Path:   nestedLabelPrefix + leaf + ".keyword",
			AggKey: key + "_count",
		}, true
	}

	if trimmed == rawValueField || trimmed == timeField {
		return FieldRef{
			Name:   trimmed,
			Kind:   FieldRaw,
			Path:   trimmed,
			AggKey: trimmed + "_count",
		}, true
	}

	return FieldRef{
		Name:   trimmed,
		Kind:   FieldDirect,
		Path:   trimmed + ".keyword",
		AggKey: trimmed + "_count",
	}, true
}

// ResolveFields classifies every requested field, silently dropping blanks.
func ResolveFields(fields []string, timeField string) []FieldRef {
	refs := make([]FieldRef, 0, len(fields))
	for _, f := range fields {
		if ref, ok := ResolveField(f, timeField); ok {
			refs = append(refs, ref)
		}
	}
	return refs
}

// ParseFieldList splits a comma-separated field list, trims whitespace and
// discards blanks. An empty result is a caller error.
func ParseFieldList(raw string) ([]string, error) {
	parts := strings.Split(raw, ",")
	fields := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			fields = append(fields, trimmed)
		}
	}
	if len(fields) == 0 {
		return nil, ErrNoFields
	}
	return fields, nil
}

// FieldCount summarizes one field's terms aggregation.
type FieldCount struct {
	// Total is the sum of all breakdown counts.
	Total int64 `json:"total"`
	// Breakdown maps each bucket key to its document count.
	Breakdown map[string]int64 `json:"breakdown"`
}

// FieldCountResult maps each requested field name to its count summary.
// Fields absent from the backend response are zero-filled, never omitted.
type FieldCountResult map[string]FieldCount
