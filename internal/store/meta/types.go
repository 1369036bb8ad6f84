package meta

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Version describes one saved snapshot of a file.
type Version struct {
	ID           string    `json:"id" yaml:"id"`
	CreatedAt    Timestamp `json:"timestamp" yaml:"timestamp"`
	Description  string    `json:"description" yaml:"description"`
	ContentHash  string    `json:"hash" yaml:"hash"`
	OriginalPath string    `json:"filePath" yaml:"filePath"`
	SizeBytes    int64     `json:"size" yaml:"size"`
}

// Record is the per-file metadata document.
type Record struct {
	Versions       Versions  `json:"versions"`
	CurrentVersion string    `json:"currentVersion"`
	LastUpdated    Timestamp `json:"lastUpdated"`
}

// Current returns the descriptor named by CurrentVersion.
func (r *Record) Current() (Version, bool) {
	if r.CurrentVersion == "" {
		return Version{}, false
	}
	return r.Versions.Get(r.CurrentVersion)
}

// Timestamp is a time persisted as epoch milliseconds.
type Timestamp struct {
	time.Time
}

// NewTimestamp truncates t to millisecond precision.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{time.UnixMilli(t.UnixMilli())}
}

func (t Timestamp) Millis() int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return strconv.AppendInt(nil, t.Millis(), 10), nil
}

// MarshalYAML renders the timestamp as RFC 3339 text.
func (t Timestamp) MarshalYAML() (any, error) {
	return t.Time.Format(time.RFC3339Nano), nil
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	ms, err := n.Int64()
	if err != nil {
		f, ferr := n.Float64()
		if ferr != nil {
			return fmt.Errorf("timestamp %q: %w", n, ferr)
		}
		ms = int64(f)
	}
	t.Time = time.UnixMilli(ms)
	return nil
}

// Versions is a map of id to Version that remembers insertion order. The
// order survives a JSON round trip as object key order.
type Versions struct {
	keys []string
	m    map[string]Version
}

// Len returns the number of versions.
func (vs *Versions) Len() int { return len(vs.keys) }

// Get returns the version with id.
func (vs *Versions) Get(id string) (Version, bool) {
	v, ok := vs.m[id]
	return v, ok
}

// Set inserts v, or replaces the version with the same id in place.
func (vs *Versions) Set(v Version) {
	if vs.m == nil {
		vs.m = make(map[string]Version)
	}
	if _, ok := vs.m[v.ID]; !ok {
		vs.keys = append(vs.keys, v.ID)
	}
	vs.m[v.ID] = v
}

// Delete removes id and reports whether it was present.
func (vs *Versions) Delete(id string) bool {
	if _, ok := vs.m[id]; !ok {
		return false
	}
	delete(vs.m, id)
	for i, k := range vs.keys {
		if k == id {
			vs.keys = append(vs.keys[:i], vs.keys[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns ids in insertion order.
func (vs *Versions) Keys() []string {
	return append([]string(nil), vs.keys...)
}

// Last returns the most recently inserted id.
func (vs *Versions) Last() (string, bool) {
	if len(vs.keys) == 0 {
		return "", false
	}
	return vs.keys[len(vs.keys)-1], true
}

// All returns the versions in insertion order.
func (vs *Versions) All() []Version {
	out := make([]Version, 0, len(vs.keys))
	for _, k := range vs.keys {
		out = append(out, vs.m[k])
	}
	return out
}

func (vs Versions) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range vs.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(vs.m[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (vs *Versions) UnmarshalJSON(b []byte) error {
	*vs = Versions{}
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("versions: expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("versions: expected key, got %v", tok)
		}
		var v Version
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("versions[%q]: %w", key, err)
		}
		// the key is authoritative
		v.ID = key
		vs.Set(v)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
