package sgmlreader

// AttDef is the subset of a DTD attribute declaration this reader needs: a
// default value to fall back to when the input omits one, and the declared
// attribute type (used only to decide NMTOKEN-style validity in callers
// that care; kept as a plain string since the DTD loader itself is an
// external collaborator, not part of this package).
type AttDef struct {
	Name       string
	Type       string
	Default    string
	HasDefault bool
}

// Attribute is one name/value pair scanned from a start tag. Attribute
// values are reused across parses the same way go-xml reuses its *Attr
// buffer: Reset puts a slot back into a pristine state without giving up
// its backing storage.
type Attribute struct {
	Name    Name
	literal string
	has     bool
	Quote   rune
	Decl    *AttDef
}

// Reset reinitializes an Attribute slot for reuse by the attribute high
// water stack.
func (a *Attribute) Reset() {
	a.Name = Name{}
	a.literal = ""
	a.has = false
	a.Quote = 0
	a.Decl = nil
}

// Value returns the attribute's effective value: the literal value scanned
// from the input if present, otherwise the DTD-declared default, otherwise
// absent.
func (a *Attribute) Value() (string, bool) {
	if a.has {
		return a.literal, true
	}
	if a.Decl != nil && a.Decl.HasDefault {
		return a.Decl.Default, true
	}
	return "", false
}

// SetLiteral records a value scanned from the input.
func (a *Attribute) SetLiteral(v string, quote rune) {
	a.literal = v
	a.has = true
	a.Quote = quote
}

// IsDefault reports whether this attribute's value comes from the DTD
// default rather than the input (true iff no literal value was scanned).
func (a *Attribute) IsDefault() bool {
	return !a.has
}

// AttributeList is the ordered collection of Attribute records belonging to
// one element event, backed by a high-water stack so that elements with
// similar attribute counts reuse the same Attribute records parse after
// parse.
type AttributeList struct {
	stack *hwStack[Attribute]
}

func newAttributeList() *AttributeList {
	return &AttributeList{stack: newHWStack[Attribute](8)}
}

// reset drops all attributes from the list, ready for the next element.
func (l *AttributeList) reset() {
	l.stack.reset()
}

// Count returns the number of attributes currently collected.
func (l *AttributeList) Count() int {
	return l.stack.len()
}

// ByIndex returns the attribute at position i, or nil if i is out of range.
func (l *AttributeList) ByIndex(i int) *Attribute {
	a, ok := l.stack.get(i)
	if !ok {
		return nil
	}
	return a
}

// IndexOf returns the index of the attribute named name under the given
// case-sensitivity policy, or -1 if none matches.
func (l *AttributeList) IndexOf(name string, caseInsensitive bool) int {
	for i := 0; i < l.stack.len(); i++ {
		a, _ := l.stack.get(i)
		if sameName(a.Name.String(), name, caseInsensitive) {
			return i
		}
	}
	return -1
}

// Add appends a new attribute named name. If an attribute by that name
// (under the given case-sensitivity policy) already exists, Add drops the
// duplicate silently and returns nil, matching the "duplicate attribute"
// recovery policy: log at the call site, keep the first occurrence.
func (l *AttributeList) Add(name Name, caseInsensitive bool) *Attribute {
	if l.IndexOf(name.String(), caseInsensitive) >= 0 {
		return nil
	}
	a := l.stack.push()
	a.Reset()
	a.Name = name
	return a
}

// Remove drops the attribute named name, if present.
func (l *AttributeList) Remove(name string, caseInsensitive bool) bool {
	i := l.IndexOf(name, caseInsensitive)
	if i < 0 {
		return false
	}
	l.stack.removeAt(i)
	return true
}

func sameName(a, b string, caseInsensitive bool) bool {
	if !caseInsensitive {
		return a == b
	}
	return asciiEqualFold(a, b)
}

// asciiEqualFold compares a and b ignoring ASCII case, matching the
// ordinal-case-insensitive comparison spec.md calls for (not full Unicode
// case folding, which real HTML tag/attribute names never need).
func asciiEqualFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
