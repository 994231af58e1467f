package store

import (
	"encoding/json"
	"fmt"
)

// Record field names written by the sync pipeline.
const (
	FieldName        = "name"
	FieldAuthor      = "author"
	FieldVersion     = "version"
	FieldType        = "updateTypeString"
	FieldSrcLink     = "srcLink"
	FieldReadme      = "README"
	FieldChangelog   = "changeLog"
	FieldImages      = "images"
	FieldKeywords    = "keywords"
	FieldRequiresTag = "requires_tag"
	FieldOpenName    = "openName"
	FieldPackageName = "packageName"
)

// Record is a repository's metadata document. Values decoded from disk keep
// their JSON shape: numbers stay [json.Number], so they round-trip verbatim.
type Record map[string]any

// Set overwrites key unconditionally.
func (r Record) Set(key string, value any) {
	r[key] = value
}

// SetDefault sets key only if it is absent and reports whether it did.
func (r Record) SetDefault(key string, value any) bool {
	if _, ok := r[key]; ok {
		return false
	}
	r[key] = value
	return true
}

// Has reports whether key is present.
func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// String returns key's value as a string. Non-string values are formatted
// with %v; a missing key yields "".
func (r Record) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Version returns the persisted release version, or "" for a new record.
func (r Record) Version() string {
	return r.String(FieldVersion)
}

// Clone returns a shallow copy.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Images returns the recorded image count.
func (r Record) Images() int {
	switch v := r[FieldImages].(type) {
	case int:
		return v
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	case float64:
		return int(v)
	}
	return 0
}
