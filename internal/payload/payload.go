// Package payload gives uniform, provenance-carrying access to decoded JSON.
//
// Every lookup either returns the requested value or a
// *failure.DataFormatError naming where the document came from, so callers
// never validate structure by hand.
package payload

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/swelljoe/wthrq/internal/failure"
)

// Document is a decoded JSON value together with its provenance.
type Document struct {
	root   any
	origin failure.Provenance
}

// Decode parses raw bytes read from origin. Bytes that are not valid UTF-8
// or not valid JSON are reported as a FORMAT source error.
func Decode(data []byte, origin failure.Provenance) (Document, error) {
	if !utf8.Valid(data) {
		return Document{}, &failure.SourceError{
			Origin: origin,
			Cause:  failure.CauseFormat,
			Err:    fmt.Errorf("body is not valid utf-8"),
		}
	}

	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return Document{}, &failure.SourceError{Origin: origin, Cause: failure.CauseFormat, Err: err}
	}

	return Document{root: root, origin: origin}, nil
}

// ReadFile loads and decodes a local snapshot file. A file that cannot be
// read is reported as MISSING.
func ReadFile(path string) (Document, error) {
	origin := failure.FromPath(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, &failure.SourceError{Origin: origin, Cause: failure.CauseMissing, Err: err}
	}
	return Decode(data, origin)
}

// Wrap roots a document at an already decoded value.
func Wrap(value any, origin failure.Provenance) Document {
	return Document{root: value, origin: origin}
}

// Origin returns where the document was loaded from.
func (d Document) Origin() failure.Provenance {
	return d.origin
}

// Fail returns a data format error for this document.
func (d Document) Fail(detail string) error {
	return failure.DataFormat(d.origin, detail)
}

// Get walks path from the root. String steps index objects, int steps index
// arrays.
func (d Document) Get(path ...any) (any, error) {
	current := d.root
	for i, step := range path {
		switch key := step.(type) {
		case string:
			obj, ok := current.(map[string]any)
			if !ok {
				return nil, d.Fail(fmt.Sprintf("%s: not an object", render(path[:i+1])))
			}
			v, ok := obj[key]
			if !ok {
				return nil, d.Fail(fmt.Sprintf("%s: key not found", render(path[:i+1])))
			}
			current = v
		case int:
			arr, ok := current.([]any)
			if !ok {
				return nil, d.Fail(fmt.Sprintf("%s: not an array", render(path[:i+1])))
			}
			if key < 0 || key >= len(arr) {
				return nil, d.Fail(fmt.Sprintf("%s: index out of range", render(path[:i+1])))
			}
			current = arr[key]
		default:
			return nil, d.Fail(fmt.Sprintf("unsupported path step %T", step))
		}
	}
	return current, nil
}

// Sub returns the document rooted at path, keeping the provenance.
func (d Document) Sub(path ...any) (Document, error) {
	v, err := d.Get(path...)
	if err != nil {
		return Document{}, err
	}
	return Wrap(v, d.origin), nil
}

// String returns the string at path.
func (d Document) String(path ...any) (string, error) {
	v, err := d.Get(path...)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", d.Fail(fmt.Sprintf("%s: not a string", render(path)))
	}
	return s, nil
}

// Float returns the number at path. Numeric strings such as Nominatim's
// "33.6461" are accepted too.
func (d Document) Float(path ...any) (float64, error) {
	v, err := d.Get(path...)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, d.Fail(fmt.Sprintf("%s: %q is not a number", render(path), n))
		}
		return f, nil
	}
	return 0, d.Fail(fmt.Sprintf("%s: not a number", render(path)))
}

// Len returns the length of the array at path.
func (d Document) Len(path ...any) (int, error) {
	v, err := d.Get(path...)
	if err != nil {
		return 0, err
	}
	arr, ok := v.([]any)
	if !ok {
		return 0, d.Fail(fmt.Sprintf("%s: not an array", render(path)))
	}
	return len(arr), nil
}

func render(path []any) string {
	var b strings.Builder
	for _, step := range path {
		switch key := step.(type) {
		case int:
			fmt.Fprintf(&b, "[%d]", key)
		default:
			if b.Len() > 0 {
				b.WriteByte('.')
			}
			fmt.Fprint(&b, key)
		}
	}
	if b.Len() == 0 {
		return "$"
	}
	return b.String()
}
