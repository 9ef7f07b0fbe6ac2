// Package domain holds the exam-question record and the verdict types shared by
// the cleaning pipeline.
package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Field names with a meaning to the pipeline.
const (
	FieldLink     = "link"
	FieldQuestion = "question"
	FieldTags     = "tags"
)

// Record is one scraped exam question.
//
// Fields other than link, question and tags (title, year, answer, ...) are
// carried through untouched and written back in their original order.
type Record struct {
	Link     string
	Question string
	Tags     []string

	// Source is the record exactly as it was decoded, used by the schema gate.
	// Nil for records built in code.
	Source json.RawMessage

	keys   []string
	extras map[string]json.RawMessage
}

// Identity returns the dedup key of the record. Empty keys never collide.
func (r Record) Identity() string {
	return r.Link
}

// Extra returns a passthrough field by name.
func (r Record) Extra(key string) (json.RawMessage, bool) {
	v, ok := r.extras[key]
	return v, ok
}

// UnmarshalJSON decodes a record leniently. Anything that is not an object, or
// core fields of the wrong shape, decode to empty defaults instead of failing.
func (r *Record) UnmarshalJSON(data []byte) error {
	*r = Record{Source: append(json.RawMessage(nil), data...)}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil
		}
		r.assign(key, raw)
	}

	return nil
}

func (r *Record) assign(key string, raw json.RawMessage) {
	if !r.hasKey(key) {
		r.keys = append(r.keys, key)
	}

	switch key {
	case FieldLink:
		r.Link = decodeString(raw)
	case FieldQuestion:
		r.Question = decodeString(raw)
	case FieldTags:
		r.Tags = decodeStrings(raw)
	default:
		if r.extras == nil {
			r.extras = make(map[string]json.RawMessage)
		}
		r.extras[key] = raw
	}
}

func (r *Record) hasKey(key string) bool {
	for _, k := range r.keys {
		if k == key {
			return true
		}
	}
	return false
}

func decodeString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// decodeStrings keeps the string elements of an array and drops the rest.
func decodeStrings(raw json.RawMessage) []string {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if len(item) == 0 || item[0] != '"' {
			continue
		}
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
		}
	}
	return out
}

// MarshalJSON writes the record with its original key order. The core fields
// are always present.
func (r Record) MarshalJSON() ([]byte, error) {
	keys := r.keys
	for _, k := range []string{FieldLink, FieldQuestion, FieldTags} {
		if !r.hasKey(k) {
			keys = append(append([]string(nil), keys...), k)
		}
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSON(&buf, key); err != nil {
			return nil, err
		}
		buf.WriteByte(':')

		var err error
		switch key {
		case FieldLink:
			err = writeJSON(&buf, r.Link)
		case FieldQuestion:
			err = writeJSON(&buf, r.Question)
		case FieldTags:
			tags := r.Tags
			if tags == nil {
				tags = []string{}
			}
			err = writeJSON(&buf, tags)
		default:
			buf.Write(r.extras[key])
		}
		if err != nil {
			return nil, fmt.Errorf("encode field %s: %w", key, err)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// writeJSON encodes v without HTML escaping and without a trailing newline.
func writeJSON(buf *bytes.Buffer, v any) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}
