package sgmlreader

import (
	"io"
)

// WhitespaceHandling controls whether whitespace-only text events are
// surfaced to the consumer.
type WhitespaceHandling int

const (
	// WhitespaceAll emits every text event, including whitespace-only ones.
	WhitespaceAll WhitespaceHandling = iota
	// WhitespaceNone suppresses whitespace-only text events entirely.
	WhitespaceNone
	// WhitespaceSignificant emits whitespace-only text events except
	// inside elements whose xml:space scope is not "preserve"... in
	// practice, for this reader, identical to WhitespaceAll since no
	// input-side xml:space stripping beyond the DTD's CDATA handling is
	// modeled; kept as a distinct value so callers can express intent and
	// so a future, stricter implementation has somewhere to live.
	WhitespaceSignificant
)

// Options configures a Reader before the first call to Read. Every field
// is read once, at NewReader time; mutating an Options value after that has
// no effect, matching spec.md §6.1's "all effective before first read".
type Options struct {
	// DocType is the declared root element name, e.g. "HTML". Setting it
	// to "HTML" loads the package's built-in HTML DTD unless IgnoreDTD is
	// set or DTD is already populated.
	DocType string
	// PublicID, SystemLiteral and InternalSubset are accepted for
	// configuration-surface parity but the reader does not use them: no
	// DOCTYPE event is synthesized from them, and a DOCTYPE the document
	// declares is reported as written.
	PublicID       string
	SystemLiteral  string
	InternalSubset string

	// BaseURI is the base URI reported for a document read from
	// InputStream; it has no default when empty. A document read from
	// Href reports the Href path instead. External entity paths are opened
	// as given, not resolved against it.
	BaseURI string

	// Href is a local filesystem path to read from. Mutually exclusive
	// with InputStream. Remote (http/https) hrefs are out of scope
	// (spec.md §1); fetching them is the caller's job, done by handing the
	// fetched body to InputStream instead.
	Href string
	// InputStream is an in-memory or streaming character source.
	InputStream io.Reader

	// Proxy is accepted for configuration-surface parity with spec.md
	// §6.1 but unused: this package never performs network I/O itself.
	Proxy string

	CaseFolding        CaseFolding
	WhitespaceHandling WhitespaceHandling

	// StripDoctype, when true (the default), suppresses the DOCTYPE event
	// even when the input declares one.
	StripDoctype bool
	// stripDoctypeSet distinguishes "not set, use the true default" from
	// an explicit false, since Go's zero value for bool is false.
	stripDoctypeSet bool

	// IgnoreDTD disables DTD loading entirely, including the built-in HTML
	// DTD that DocType: "HTML" would otherwise load (spec.md §9's open
	// question (a), resolved here in favor of honoring IgnoreDTD strictly).
	IgnoreDTD bool
	// DTD, when set, is used instead of loading one from DocType.
	DTD DTD

	// ErrorLog receives recoverable diagnostics (spec.md §6.2). Defaults to
	// NopLogger when nil.
	ErrorLog Logger
}

// WithStripDoctype is the only way to explicitly set StripDoctype to false,
// since the zero value of Options.StripDoctype (false) would otherwise be
// indistinguishable from "not set" when the documented default is true.
func (o Options) WithStripDoctype(strip bool) Options {
	o.StripDoctype = strip
	o.stripDoctypeSet = true
	return o
}

func (o Options) stripDoctype() bool {
	if !o.stripDoctypeSet {
		return true
	}
	return o.StripDoctype
}
