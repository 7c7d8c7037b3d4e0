// Package failure defines the two terminal error kinds of a run and the
// report printed when one of them aborts it.
package failure

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

// Cause is the short tag printed on the last line of a failure report.
type Cause string

const (
	CauseNetwork Cause = "NETWORK"
	CauseNot200  Cause = "NOT 200"
	CauseFormat  Cause = "FORMAT"
	CauseMissing Cause = "MISSING"
)

// Provenance identifies where a payload was loaded from. Exactly one of
// Path or URL is set. Status is the HTTP status for URL origins, or 0 when
// no response was received.
type Provenance struct {
	Path   string
	URL    string
	Status int
}

// FromPath returns the provenance of a local file.
func FromPath(path string) Provenance {
	return Provenance{Path: path}
}

// FromURL returns the provenance of a fetched URL.
func FromURL(url string, status int) Provenance {
	return Provenance{URL: url, Status: status}
}

// IsURL reports whether the payload was fetched rather than read from disk.
func (p Provenance) IsURL() bool {
	return p.URL != ""
}

// String renders the provenance line of a failure report.
func (p Provenance) String() string {
	if !p.IsURL() {
		return p.Path
	}
	if p.Status != 0 {
		return strconv.Itoa(p.Status) + " " + p.URL
	}
	return p.URL
}

// SourceError reports that fetching or reading a payload failed before its
// content could be inspected.
type SourceError struct {
	Origin Provenance
	Cause  Cause
	Err    error
}

func (e *SourceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Origin, e.Cause, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Origin, e.Cause)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// DataFormatError reports that a payload was retrieved but did not have the
// expected structure.
type DataFormatError struct {
	Origin Provenance
	Detail string
}

func (e *DataFormatError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Origin, CauseFormat, e.Detail)
}

// DataFormat builds a DataFormatError for origin. A structural error on
// network data can only be raised after a successful response was decoded,
// so URL origins always carry status 200.
func DataFormat(origin Provenance, detail string) *DataFormatError {
	if origin.IsURL() {
		origin.Status = http.StatusOK
	}
	return &DataFormatError{Origin: origin, Detail: detail}
}

// Report writes the failure report for err and returns true, or returns
// false without writing anything when err is not one of the terminal kinds.
func Report(w io.Writer, err error) bool {
	var (
		origin Provenance
		cause  Cause
	)

	var srcErr *SourceError
	var fmtErr *DataFormatError
	switch {
	case errors.As(err, &srcErr):
		origin, cause = srcErr.Origin, srcErr.Cause
	case errors.As(err, &fmtErr):
		origin, cause = fmtErr.Origin, CauseFormat
	default:
		return false
	}

	fmt.Fprintln(w, "FAILED")
	fmt.Fprintln(w, origin.String())
	fmt.Fprintln(w, string(cause))
	return true
}
