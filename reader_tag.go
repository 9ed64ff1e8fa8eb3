package sgmlreader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// scanToEndOrEOF drains ScanToEnd's two outcomes into the recovery policy
// spec.md §7 names for unclosed comments/CDATA/PI at end of input: on a
// clean match it re-primes the current character past the marker; on EOF it
// reports truncated=true so the caller can log and still emit whatever was
// captured.
func (r *Reader) scanToEndOrEOF(buf *bytes.Buffer, label, marker string) (truncated bool, err error) {
	scanErr := r.ent.ScanToEnd(buf, label, marker)
	if scanErr == nil {
		if _, err := r.ent.ReadChar(); err != nil {
			return false, err
		}
		return false, nil
	}
	if errors.Is(scanErr, io.ErrUnexpectedEOF) {
		return true, nil
	}
	return false, scanErr
}

func isTagNameTerm(r rune) bool {
	return r == eof || unicode.IsSpace(r) || r == '>' || r == '/'
}

// isAttrNameTerm additionally stops on the punctuation spec.md calls out as
// common malformed-attribute noise: a bare ',' or ';' left over from markup
// authored by copy-paste, '=' marking the start of a value, and a stray '<'
// that signals the tag itself is malformed (spec.md §4.6).
func isAttrNameTerm(r rune) bool {
	return isTagNameTerm(r) || r == '=' || r == ',' || r == ';' || r == '<'
}

// dispatchTag is entered with the '<' already consumed: PeekChar is the
// character immediately following it (spec.md §4.5's tag dispatch table).
func (r *Reader) dispatchTag() (bool, error) {
	c := r.ent.PeekChar()
	switch {
	case c == '%':
		return r.readASPBlock()
	case c == '!':
		return r.readBang()
	case c == '?':
		return r.readPI()
	case c == '/':
		return r.readEndTag()
	case isNameStartChar(c):
		return r.readStartTag()
	default:
		// Not a recognizable tag opener: treat '<' as ordinary data and
		// resume text scanning with c already as the current character.
		return r.readText0("<")
	}
}

func (r *Reader) readASPBlock() (bool, error) {
	if _, err := r.scanToEndOrEOF(nil, "processing block", "%>"); err != nil {
		return false, err
	}
	return false, nil
}

func (r *Reader) readBang() (bool, error) {
	if _, err := r.ent.ReadChar(); err != nil { // consume '!'
		return false, err
	}
	switch {
	case r.ent.PeekChar() == '-':
		return r.readComment()
	case r.ent.PeekChar() == '[':
		return r.readConditional()
	case isNameStartChar(r.ent.PeekChar()):
		return r.readDoctypeOrUnknownBang()
	default:
		return r.discardToGT()
	}
}

func (r *Reader) discardToGT() (bool, error) {
	for r.ent.PeekChar() != '>' && r.ent.PeekChar() != eof {
		if _, err := r.ent.ReadChar(); err != nil {
			return false, err
		}
	}
	if r.ent.PeekChar() == '>' {
		if _, err := r.ent.ReadChar(); err != nil {
			return false, err
		}
	}
	return false, nil
}

func (r *Reader) readComment() (bool, error) {
	if _, err := r.ent.ReadChar(); err != nil { // consume first '-'
		return false, err
	}
	if r.ent.PeekChar() != '-' {
		// "<!-" not followed by a second dash: not a well-formed comment
		// opener. Recover by discarding to '>' like any other bang form.
		return r.discardToGT()
	}
	if _, err := r.ent.ReadChar(); err != nil { // consume second '-'
		return false, err
	}
	r.buf.Reset()
	truncated, err := r.scanToEndOrEOF(r.buf, "comment", "-->")
	if err != nil {
		return false, err
	}
	if truncated {
		r.logf(errUnclosedComment, "comment")
	}
	text := sanitizeCommentText(r.buf.String())
	r.emitScratch(NodeComment, EventComment, []byte(text))
	return true, nil
}

// sanitizeCommentText repairs content that would otherwise produce an
// illegal "--" inside an emitted XML comment.
func sanitizeCommentText(s string) string {
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	if strings.HasSuffix(s, "-") {
		s += " "
	}
	return s
}

func (r *Reader) readPI() (bool, error) {
	if _, err := r.ent.ReadChar(); err != nil { // consume '?'
		return false, err
	}
	r.buf.Reset()
	if _, err := r.ent.ScanToken(r.buf, func(c rune) bool { return c == eof || unicode.IsSpace(c) || c == '?' }); err != nil {
		return false, err
	}
	target := r.buf.String()
	if idx := strings.IndexByte(target, ':'); idx > 0 {
		target = target[idx+1:]
	}
	if _, err := r.ent.SkipWhitespace(); err != nil {
		return false, err
	}
	isXMLTarget := asciiEqualFold(target, "xml")
	var content *bytes.Buffer
	if !isXMLTarget {
		r.buf.Reset()
		content = r.buf
	}
	truncated, err := r.scanToEndOrEOF(content, "processing instruction", "?>")
	if err != nil {
		return false, err
	}
	if truncated {
		r.logf(errUnclosedComment, "processing instruction")
	}
	if isXMLTarget {
		return false, nil
	}
	r.emitScratch(NodePI, EventPI, []byte(r.buf.String()))
	r.scratch.Target = target
	return true, nil
}

func (r *Reader) readConditional() (bool, error) {
	if _, err := r.ent.ReadChar(); err != nil { // consume '['
		return false, err
	}
	r.buf.Reset()
	if _, err := r.ent.ScanToken(r.buf, func(c rune) bool { return c == eof || unicode.IsSpace(c) || c == '[' || c == '>' }); err != nil {
		return false, err
	}
	keyword := r.buf.String()
	if asciiEqualFold(keyword, "CDATA") {
		if r.ent.PeekChar() == '[' {
			if _, err := r.ent.ReadChar(); err != nil {
				return false, err
			}
		}
		r.buf.Reset()
		truncated, err := r.scanToEndOrEOF(r.buf, "CDATA section", "]]>")
		if err != nil {
			return false, err
		}
		if truncated {
			r.logf(errUnclosedComment, "CDATA section")
		}
		r.emitScratch(NodeCData, EventCData, []byte(r.buf.String()))
		return true, nil
	}
	// Other marked-section forms (downlevel-revealed conditional comments,
	// "if"/"endif"/INCLUDE/IGNORE) carry no content this reader models; they
	// are swallowed whole.
	if _, err := r.scanToEndOrEOF(nil, "conditional section", "]>"); err != nil {
		return false, err
	}
	return false, nil
}

func (r *Reader) readDoctypeOrUnknownBang() (bool, error) {
	r.buf.Reset()
	if _, err := r.ent.ScanToken(r.buf, isTagNameTerm); err != nil {
		return false, err
	}
	if !asciiEqualFold(r.buf.String(), "DOCTYPE") {
		return r.discardToGT()
	}
	return r.readDoctype()
}

func (r *Reader) readDoctype() (bool, error) {
	if _, err := r.ent.SkipWhitespace(); err != nil {
		return false, err
	}
	r.buf.Reset()
	if _, err := r.ent.ScanToken(r.buf, isTagNameTerm); err != nil {
		return false, err
	}
	rootName := r.buf.String()
	if _, err := r.ent.SkipWhitespace(); err != nil {
		return false, err
	}

	var pub, sys string
	r.buf.Reset()
	if _, err := r.ent.ScanToken(r.buf, func(c rune) bool { return c == eof || unicode.IsSpace(c) || c == '>' || c == '[' }); err != nil {
		return false, err
	}
	keyword := r.buf.String()
	switch {
	case asciiEqualFold(keyword, "PUBLIC"):
		var err error
		if pub, err = r.readQuotedLiteral(); err != nil {
			return false, err
		}
		if _, err := r.ent.SkipWhitespace(); err != nil {
			return false, err
		}
		if r.ent.PeekChar() == '"' || r.ent.PeekChar() == '\'' {
			// Well-formed: PUBLIC id followed by a SYSTEM literal.
			if sys, err = r.readQuotedLiteral(); err != nil {
				return false, err
			}
		}
		// Otherwise: PUBLIC given with no SYSTEM literal, a common
		// malformed-HTML shorthand. Leaving sys empty here is itself the
		// repair spec.md calls for: later consumers get an empty SYSTEM
		// rather than a parse failure.
	case asciiEqualFold(keyword, "SYSTEM"):
		var err error
		if sys, err = r.readQuotedLiteral(); err != nil {
			return false, err
		}
	}

	if _, err := r.ent.SkipWhitespace(); err != nil {
		return false, err
	}
	var internalSubset string
	if r.ent.PeekChar() == '[' {
		if _, err := r.ent.ReadChar(); err != nil {
			return false, err
		}
		r.buf.Reset()
		for r.ent.PeekChar() != ']' && r.ent.PeekChar() != eof {
			r.buf.WriteRune(r.ent.PeekChar())
			if _, err := r.ent.ReadChar(); err != nil {
				return false, err
			}
		}
		internalSubset = r.buf.String()
		if r.ent.PeekChar() == ']' {
			if _, err := r.ent.ReadChar(); err != nil {
				return false, err
			}
		}
		if _, err := r.ent.SkipWhitespace(); err != nil {
			return false, err
		}
	}
	if _, err := r.discardToGT(); err != nil {
		return false, err
	}

	if r.opts.DocType != "" && !asciiEqualFold(rootName, r.opts.DocType) {
		return false, fmt.Errorf("%w: declared root %q does not match configured doc_type %q", errDTDMismatch, rootName, r.opts.DocType)
	}

	if r.opts.stripDoctype() {
		return false, nil
	}
	r.emitScratch(NodeDoctype, EventDoctype, nil)
	r.scratch.Name = Name{Local: rootName}
	r.scratch.PublicID = pub
	r.scratch.SystemID = sys
	r.scratch.InternalSubset = internalSubset
	return true, nil
}

// readQuotedLiteral reads a whitespace-delimited quoted literal used by
// DOCTYPE's PUBLIC/SYSTEM clauses. Unlike attribute values, these never
// expand entities.
func (r *Reader) readQuotedLiteral() (string, error) {
	if _, err := r.ent.SkipWhitespace(); err != nil {
		return "", err
	}
	quote := r.ent.PeekChar()
	if quote != '"' && quote != '\'' {
		return "", nil
	}
	r.buf.Reset()
	if err := r.ent.ScanLiteral(r.buf, quote); err != nil {
		return "", err
	}
	if _, err := r.ent.ReadChar(); err != nil { // past closing quote
		return "", err
	}
	return r.buf.String(), nil
}

// rawAttr is a start tag attribute scanned but not yet attached to a Node:
// readStartTag collects every attribute this way before deciding whether
// the element can be pushed directly or must wait behind an auto-close
// cascade.
type rawAttr struct {
	name    Name
	literal string
	has     bool
	quote   rune
}

func (r *Reader) readStartTag() (bool, error) {
	r.buf.Reset()
	if _, err := r.ent.ScanToken(r.buf, isTagNameTerm); err != nil {
		return false, err
	}
	rawName := r.buf.String()
	name := r.interner.intern(rawName, r.opts.CaseFolding)
	if !isValidXMLName(name.String()) {
		r.logf(errInvalidElementName, "%q", name.String())
		return r.degradeTagToText(rawName)
	}

	attrs, selfClosed, err := r.readAttributes()
	if err != nil {
		return false, err
	}

	if r.injectWrapperMerge(name, attrs) {
		return false, nil
	}

	if r.rootClosed {
		r.logf(errSecondRoot, "%q", name.String())
	}

	slot := r.stack.push()
	slot.Reset(NodeElement)
	slot.Name = name
	r.validateNode(slot)
	if selfClosed {
		slot.Empty = true
	}
	r.attachAttributes(slot, attrs)
	r.applyScopeAttrs(slot)
	r.inheritScopes(slot)

	top := r.stack.len() - 1
	target := r.validateContentTargetIndex()
	if target < top-1 {
		r.beginAutoClose(slot, target)
		return false, nil
	}
	r.emitElement(slot, EventStartElement)
	return true, nil
}

// degradeTagToText recovers from a start-tag name that fails XML Name
// validity by reproducing the offending tag verbatim as a single text
// event instead of opening an element for it (spec.md §4.9, §7). It is
// entered with the element name already scanned and the current character
// sitting on whatever terminated it (whitespace, '/', or '>').
func (r *Reader) degradeTagToText(rawName string) (bool, error) {
	var buf bytes.Buffer
	buf.WriteByte('<')
	buf.WriteString(rawName)
	quote := rune(0)
	for {
		c := r.ent.PeekChar()
		if c == eof {
			break
		}
		buf.WriteRune(c)
		if _, err := r.ent.ReadChar(); err != nil {
			return false, err
		}
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		if c == '"' || c == '\'' {
			quote = c
			continue
		}
		if c == '>' {
			break
		}
	}
	r.emitScratch(NodeText, EventText, buf.Bytes())
	return true, nil
}

// injectWrapperMerge folds an explicit <html ...> start tag into the
// synthetic wrapper this reader may have already pushed in HTML mode,
// instead of opening a second, nested html element (spec.md §4.15).
func (r *Reader) injectWrapperMerge(name Name, attrs []rawAttr) bool {
	if !r.htmlInjected || r.stack.len() != 2 || !asciiEqualFold(name.Local, "html") {
		return false
	}
	top, _ := r.stack.top()
	if !top.Simulated {
		return false
	}
	top.Simulated = false
	r.attachAttributes(top, attrs)
	return true
}

func (r *Reader) beginAutoClose(slot *Node, target int) {
	pend := &pendingStart{
		name:      slot.Name,
		empty:     slot.Empty,
		decl:      slot.Decl,
		simulated: slot.Simulated,
	}
	for i := 0; i < slot.Attrs.Count(); i++ {
		a := slot.Attrs.ByIndex(i)
		lit, has := a.literal, a.has
		pend.attrs = append(pend.attrs, pendingAttr{name: a.Name, literal: lit, has: has, quote: a.Quote, decl: a.Decl})
	}
	r.stack.pop()
	r.pending = pend
	r.popToDepth = target + 1
	r.state = stateAutoClose
}

func (r *Reader) readAttributes() ([]rawAttr, bool, error) {
	var attrs []rawAttr
	selfClosed := false
	for {
		if _, err := r.ent.SkipWhitespace(); err != nil {
			return nil, false, err
		}
		c := r.ent.PeekChar()
		if c == eof {
			return attrs, selfClosed, nil
		}
		if c == '<' {
			r.logf(errMalformedAttribute, "unexpected '<' in tag")
			return attrs, selfClosed, nil
		}
		if c == '>' {
			if _, err := r.ent.ReadChar(); err != nil {
				return nil, false, err
			}
			return attrs, selfClosed, nil
		}
		if c == '/' {
			if _, err := r.ent.ReadChar(); err != nil {
				return nil, false, err
			}
			if r.ent.PeekChar() == '>' {
				if _, err := r.ent.ReadChar(); err != nil {
					return nil, false, err
				}
				selfClosed = true
				return attrs, selfClosed, nil
			}
			continue
		}

		r.buf.Reset()
		term, err := r.ent.ScanToken(r.buf, func(c rune) bool { return isAttrNameTerm(c) || c == '"' || c == '\'' })
		if err != nil {
			return nil, false, err
		}
		raw := r.buf.String()
		if raw == "" {
			if term == '<' {
				r.logf(errMalformedAttribute, "unexpected '<' in tag")
				return attrs, selfClosed, nil
			}
			// Stray punctuation the loop's terminators stopped on but
			// didn't consume as part of a name; skip it and continue.
			if _, err := r.ent.ReadChar(); err != nil {
				return nil, false, err
			}
			continue
		}
		if term == '<' {
			// A name was scanned but a stray '<' follows it directly
			// (no separating whitespace): still malformed, abort without
			// consuming the '<' so the next markup dispatch sees it.
			r.logf(errMalformedAttribute, "unexpected '<' after %q", raw)
			return attrs, selfClosed, nil
		}
		if term == '"' || term == '\'' {
			// A name running straight into a quote is left over from a
			// malformed value (href="foo"bar"): drop it and the quote.
			r.logf(errMalformedAttribute, "unexpected quote after %q", raw)
			if _, err := r.ent.ReadChar(); err != nil {
				return nil, false, err
			}
			continue
		}
		if raw == ":" {
			// A lone ':' is stray punctuation; it only scans as a name
			// because ':' is legal inside prefixed names.
			continue
		}

		// spec.md §4.6: attribute names are checked against NMTOKEN, not
		// the stricter XML Name production a colon-carrying element name
		// needs; one that fails is dropped silently, with no diagnostic.
		valid := isValidNMToken(raw)
		if idx := strings.IndexByte(raw, ':'); idx > 0 && idx < len(raw)-1 {
			valid = valid && isValidNCName(raw[idx+1:])
		}
		name := r.interner.intern(raw, r.opts.CaseFolding)

		if _, err := r.ent.SkipWhitespace(); err != nil {
			return nil, false, err
		}
		a := rawAttr{name: name}
		if r.ent.PeekChar() == '=' {
			if _, err := r.ent.ReadChar(); err != nil {
				return nil, false, err
			}
			if _, err := r.ent.SkipWhitespace(); err != nil {
				return nil, false, err
			}
			lit, quote, err := r.readAttributeValue()
			if err != nil {
				return nil, false, err
			}
			a.literal = lit
			a.has = true
			a.quote = quote
		} else {
			// HTML boolean-attribute convention (spec.md §4.6): no value
			// at all means the value is the attribute's own name.
			a.literal = name.String()
			a.has = true
		}
		if !valid {
			continue
		}
		attrs = append(attrs, a)
	}
}

func (r *Reader) readAttributeValue() (string, rune, error) {
	c := r.ent.PeekChar()
	if c == '"' || c == '\'' {
		r.buf.Reset()
		if err := r.ent.ScanLiteral(r.buf, c); err != nil {
			return "", 0, err
		}
		if _, err := r.ent.ReadChar(); err != nil { // past closing quote
			return "", 0, err
		}
		return r.expandNamedEntitiesInText(r.buf.String()), c, nil
	}
	r.buf.Reset()
	if _, err := r.ent.ScanToken(r.buf, func(c rune) bool { return c == eof || unicode.IsSpace(c) || c == '>' }); err != nil {
		return "", 0, err
	}
	return r.expandNamedEntitiesInText(r.buf.String()), 0, nil
}

func (r *Reader) attachAttributes(slot *Node, attrs []rawAttr) {
	for _, ra := range attrs {
		a := slot.Attrs.Add(ra.name, r.caseInsensitiveAttrs())
		if a == nil {
			r.logf(errDuplicateAttribute, "%q", ra.name.String())
			continue
		}
		if ra.has {
			a.SetLiteral(ra.literal, ra.quote)
		}
		if slot.Decl != nil {
			if def, ok := slot.Decl.AttDef(ra.name.Local); ok {
				a.Decl = def
			}
		}
	}
}

// applyScopeAttrs lifts xml:space and xml:lang off the attribute list onto
// the Node's dedicated fields, matching spec.md §4.9.
func (r *Reader) applyScopeAttrs(slot *Node) {
	if idx := slot.Attrs.IndexOf("xml:space", false); idx >= 0 {
		if v, ok := slot.Attrs.ByIndex(idx).Value(); ok {
			slot.XMLSpace = v
		}
	}
	if idx := slot.Attrs.IndexOf("xml:lang", false); idx >= 0 {
		if v, ok := slot.Attrs.ByIndex(idx).Value(); ok {
			slot.XMLLang = v
		}
	}
}

func (r *Reader) readEndTag() (bool, error) {
	if _, err := r.ent.ReadChar(); err != nil { // consume '/'
		return false, err
	}
	r.buf.Reset()
	if _, err := r.ent.ScanToken(r.buf, isTagNameTerm); err != nil {
		return false, err
	}
	name := r.interner.intern(r.buf.String(), r.opts.CaseFolding)
	if _, err := r.discardToGT(); err != nil {
		return false, err
	}

	for i := r.stack.len() - 1; i >= 1; i-- {
		anc, _ := r.stack.get(i)
		if asciiEqualFold(anc.Name.Local, name.Local) {
			r.pendingEndTarget = anc.Name.Local
			r.state = stateEndTag
			return false, nil
		}
	}
	r.logf(errUnmatchedEndTag, "%q", name.String())
	return false, nil
}
