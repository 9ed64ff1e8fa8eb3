package sgmlreader

import "fmt"

// errKind enumerates the recovery-policy table from spec.md §7. Kept as a
// small unexported string-backed error type, the same pattern the teacher
// uses for its UnexpectedChar constant in decoder.go, rather than a custom
// errors package this repo has no other need for.
type errKind string

func (e errKind) Error() string { return string(e) }

const (
	errMalformedAttribute errKind = "malformed attribute"
	errDuplicateAttribute errKind = "duplicate attribute"
	errInvalidElementName errKind = "invalid element name"
	errUnmatchedEndTag    errKind = "unmatched end tag"
	errMisplacedElement   errKind = "misplaced element"
	errUnclosedEntity     errKind = "unclosed entity reference"
	errUndefinedEntity    errKind = "undefined entity"
	errUnclosedComment    errKind = "unclosed comment or CDATA at end of input"
	errSecondRoot         errKind = "second root element"

	// errDTDMismatch and errMissingInput are the two fatal kinds: they
	// surface to the caller (errDTDMismatch from Read, errMissingInput
	// from NewReader) instead of being logged and recovered from.
	errDTDMismatch  errKind = "DOCTYPE name does not match loaded DTD"
	errMissingInput errKind = "neither Href nor InputStream was configured"
)

// Diagnostic is one recoverable parsing note: which entity it happened in,
// where, and what went wrong. Fatal errors (errDTDMismatch, errMissingInput)
// are returned directly, from Read and NewReader respectively, and never
// become a Diagnostic.
type Diagnostic struct {
	Entity  string
	URI     string
	Line    int
	Column  int
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s (%s) line %d, col %d: %s", d.Entity, d.URI, d.Line, d.Column, d.Message)
}

// Logger receives recoverable diagnostics. Diagnostics never cause Read to
// fail; a Logger only observes them.
type Logger interface {
	Log(Diagnostic)
}

// NopLogger discards every diagnostic. Useful in tests and as the default
// when a caller does not want logging overhead.
type NopLogger struct{}

func (NopLogger) Log(Diagnostic) {}

// logf records a recoverable diagnostic at the current entity position.
func (r *Reader) logf(kind errKind, format string, args ...interface{}) {
	if r.opts.ErrorLog == nil {
		return
	}
	msg := kind.Error()
	if format != "" {
		msg = msg + ": " + fmt.Sprintf(format, args...)
	}
	ent := r.ent
	d := Diagnostic{Message: msg}
	if ent != nil {
		d.Entity = ent.Name()
		d.URI = ent.BaseURI()
		d.Line = ent.Line()
		d.Column = ent.Column()
	}
	r.opts.ErrorLog.Log(d)
}
