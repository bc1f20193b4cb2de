// Package importer sanitizes externally supplied progress files against the
// catalog and encodes progress maps back into the same exchange format.
package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/okian/curriculum/internal/domain/catalog"
	"github.com/okian/curriculum/internal/domain/progress"
)

// Exchange format field names.
const (
	fieldStatus = "estado"
	fieldGrade  = "nota"
)

// Result is the outcome of a validation pass.
type Result struct {
	Progress progress.Map `json:"-"`
	Accepted int          `json:"accepted"`
	Dropped  int          `json:"dropped"`
}

// Progressed counts accepted entries that are regular or approved.
func (r Result) Progressed() int {
	n := 0
	for _, e := range r.Progress {
		if e.Status.Progressed() {
			n++
		}
	}
	return n
}

// Validator checks raw progress values against a catalog.
type Validator struct {
	cat *catalog.Catalog
}

// NewValidator returns a Validator bound to cat.
func NewValidator(cat *catalog.Catalog) *Validator {
	return &Validator{cat: cat}
}

// Validate sanitizes raw, as produced by decoding JSON into an any.
//
// Only an object is accepted. Unknown course codes and entries without a
// valid status are dropped; an unusable grade becomes nil. ok is false when
// raw is not an object, or when entries were dropped and none were accepted.
// An empty object validates to an empty map.
func (v *Validator) Validate(raw any) (Result, bool) {
	obj, isObj := raw.(map[string]any)
	if !isObj {
		return Result{}, false
	}

	res := Result{Progress: make(progress.Map, len(obj))}
	for code, value := range obj {
		entry, ok := v.entry(code, value)
		if !ok {
			res.Dropped++
			continue
		}
		res.Progress[code] = entry
		res.Accepted++
	}

	if res.Accepted == 0 && res.Dropped > 0 {
		return Result{Dropped: res.Dropped}, false
	}
	return res, true
}

func (v *Validator) entry(code string, value any) (progress.Entry, bool) {
	if !v.cat.Has(code) {
		return progress.Entry{}, false
	}
	fields, ok := value.(map[string]any)
	if !ok {
		return progress.Entry{}, false
	}
	raw, ok := fields[fieldStatus].(string)
	if !ok {
		return progress.Entry{}, false
	}
	status := progress.Status(raw)
	if !status.Valid() {
		return progress.Entry{}, false
	}
	return progress.Entry{Status: status, Grade: coerceGrade(fields[fieldGrade])}, true
}

// coerceGrade converts numbers and numeric strings. Anything else, or a value
// outside the grade range, yields nil.
func coerceGrade(v any) *float64 {
	var g float64
	switch t := v.(type) {
	case float64:
		g = t
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil
		}
		g = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil
		}
		g = f
	default:
		return nil
	}
	if !progress.ValidGrade(g) {
		return nil
	}
	return &g
}

// Decode parses data as JSON and validates it.
func (v *Validator) Decode(data []byte) (Result, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	res, ok := v.Validate(raw)
	if !ok {
		return res, fmt.Errorf("%w: %d entries dropped", ErrInvalidFormat, res.Dropped)
	}
	return res, nil
}

// Export encodes p in the exchange format with two-space indentation.
// Entries are written in course code order.
func Export(p progress.Map) ([]byte, error) {
	if p == nil {
		p = progress.Map{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return nil, fmt.Errorf("failed to encode progress: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Filename suggests the export file name for the UTC date of t.
func Filename(t time.Time) string {
	return "progreso-carrera-" + t.UTC().Format(time.DateOnly) + ".json"
}
