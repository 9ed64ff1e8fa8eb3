package sgmlreader

import (
	"bytes"
	"fmt"
	"io"
)

// readerState is the reader's state enumeration (spec.md §4.5). stateAttr
// and stateAttrValue are "pseudo-states" that the attribute-traversal
// surface (reader_attrs.go) enters and leaves without driving Read's main
// loop. stateText, statePartialText and statePseudoStartTag are declared
// but never entered; everything else is dispatched from step.
type readerState int

const (
	stateInitial readerState = iota
	stateMarkup
	stateEndTag
	stateAttr
	stateAttrValue
	stateText
	statePartialTag
	stateAutoClose
	stateCData
	statePartialText
	statePseudoStartTag
	stateEOF
)

// EventType is the kind of event the most recent successful Read produced.
type EventType int

const (
	EventNone EventType = iota
	EventStartElement
	EventEndElement
	EventText
	EventWhitespace
	EventCData
	EventComment
	EventPI
	EventDoctype
)

// pendingAttr snapshots one attribute of a start tag that had to be pulled
// back off the element stack because ValidateContent decided the element
// needed auto-closing ancestors first (spec.md §4.10).
type pendingAttr struct {
	name    Name
	literal string
	has     bool
	quote   rune
	decl    *AttDef
}

// pendingStart snapshots a start tag pulled back off the stack while its
// ancestors are synthetically closed, to be reinserted once the stack
// reaches the target depth.
type pendingStart struct {
	name      Name
	empty     bool
	decl      *ElementDecl
	simulated bool
	attrs     []pendingAttr
}

// Reader is the pull-style SGML/HTML reader. Not safe for concurrent use
// by multiple goroutines (spec.md §5); a *DTD may be shared read-only
// across many Readers.
type Reader struct {
	opts Options
	dtd  DTD

	ent      Entity
	entStack []Entity

	interner *nameInterner

	// stack is the element stack; index 0 is always the sentinel document
	// frame (Kind: NodeDocument).
	stack *hwStack[Node]

	state readerState

	// event holds the data for the most recently emitted event. For
	// element start/end events it points at the corresponding stack slot
	// (valid until the next push reuses that slot); for every other kind
	// it is scratch, owned by the reader.
	event      *Node
	eventType  EventType
	eventDepth int

	scratch Node

	buf  *bytes.Buffer
	buf2 *bytes.Buffer

	pendingEndTarget string
	pending          *pendingStart
	popToDepth       int

	unknownPrefixes     map[string]string
	unknownPrefixCount  int

	htmlInjected     bool
	htmlBufferedNode *Node
	htmlBufferedType EventType
	htmlBufferedDepth int
	sawRoot          bool

	// scratch2 backs a second, independent scratch event alongside
	// scratch: stepCData needs to hand back a CData flush as this call's
	// event while a Comment/PI split out of the same content is still
	// waiting to be replayed on the very next Read call, and both can't
	// share one scratch record without the second overwriting the first
	// before the caller ever sees it.
	scratch2         Node
	cdataQueuedNode  *Node
	cdataQueuedType  EventType
	cdataQueuedDepth int

	done     bool
	fatalErr error

	attrSavedState readerState
	attrNode       *Node

	// rootClosed is set once the element stack has been opened and then
	// fully closed, so a later top-level start tag can be recognized and
	// logged as a second root (spec.md §4.6, errSecondRoot) rather than
	// silently accepted as if nothing were wrong.
	rootClosed bool
}

// currentNode returns the top of the element stack. It is only meaningful
// while a new element is being validated, immediately after it has been
// pushed (dtd.go's validateContentTargetIndex is its only caller).
func (r *Reader) currentNode() *Node {
	n, _ := r.stack.top()
	return n
}

// NewReader constructs a Reader from opts. It resolves the input source
// (Href or InputStream), loads the built-in HTML DTD when DocType is "HTML"
// and IgnoreDTD is not set, and returns the one fatal configuration error
// spec.md §7 names: "missing input configuration".
func NewReader(opts Options) (*Reader, error) {
	r := &Reader{
		opts:     opts,
		interner: newNameInterner(),
		stack:    newHWStack[Node](8),
		buf:      &bytes.Buffer{},
		buf2:     &bytes.Buffer{},
	}
	if opts.ErrorLog == nil {
		r.opts.ErrorLog = NopLogger{}
	}

	ent, err := r.openInput()
	if err != nil {
		return nil, err
	}
	r.ent = ent

	r.dtd = r.resolveDTD()

	// Sentinel document frame.
	doc := r.stack.push()
	doc.Reset(NodeDocument)

	r.state = stateInitial
	return r, nil
}

func (r *Reader) openInput() (Entity, error) {
	switch {
	case r.opts.InputStream != nil:
		return newReaderEntity(r.opts.InputStream, "#document", r.opts.BaseURI), nil
	case r.opts.Href != "":
		return newFileEntity(r.opts.Href)
	default:
		return nil, errMissingInput
	}
}

func (r *Reader) resolveDTD() DTD {
	if r.opts.DTD != nil {
		return r.opts.DTD
	}
	if r.opts.IgnoreDTD {
		return nil
	}
	if asciiEqualFold(r.opts.DocType, "HTML") {
		return HTMLDTD()
	}
	return nil
}

// currentElement returns the top of the element stack (above the sentinel),
// or (nil, false) if no element is open.
func (r *Reader) currentElement() (*Node, bool) {
	if r.stack.len() <= 1 {
		return nil, false
	}
	return r.stack.top()
}

// Read advances to the next event. It returns false only when the document
// is exhausted; a non-nil error is always fatal (spec.md §7's "Only fatal
// classes surface to the caller").
func (r *Reader) Read() (bool, error) {
	if r.fatalErr != nil {
		return false, r.fatalErr
	}
	if r.done {
		return false, nil
	}
	for {
		if r.htmlBufferedNode != nil {
			r.event, r.eventType = r.htmlBufferedNode, r.htmlBufferedType
			r.eventDepth = r.htmlBufferedDepth
			r.htmlBufferedNode = nil
			return true, nil
		}
		if r.cdataQueuedNode != nil {
			r.event, r.eventType = r.cdataQueuedNode, r.cdataQueuedType
			r.eventDepth = r.cdataQueuedDepth
			r.cdataQueuedNode = nil
			return true, nil
		}
		emitted, err := r.step()
		if err != nil {
			r.fatalErr = err
			return false, err
		}
		if emitted {
			if ok := r.maybeInjectHTMLWrapper(); ok {
				// injectHTMLWrapper buffered the real event and swapped in
				// the synthetic wrapper's start as this call's event.
			}
			return true, nil
		}
		if r.state == stateEOF && r.stack.len() <= 1 {
			r.done = true
			return false, nil
		}
	}
}

func (r *Reader) step() (bool, error) {
	switch r.state {
	case stateInitial:
		return r.stepInitial()
	case stateMarkup:
		return r.stepMarkup()
	case stateEndTag:
		return r.stepEndTag()
	case stateAutoClose:
		return r.stepAutoClose()
	case stateCData:
		return r.stepCData()
	case statePartialTag:
		r.state = stateMarkup
		return r.dispatchTag()
	case stateEOF:
		return r.stepEOF()
	default:
		return false, fmt.Errorf("sgmlreader: read called while in pseudo-state %d; call MoveToElement first", r.state)
	}
}

func (r *Reader) stepInitial() (bool, error) {
	if _, err := r.ent.ReadChar(); err != nil {
		return false, err
	}
	r.state = stateMarkup
	return false, nil
}

func (r *Reader) stepMarkup() (bool, error) {
	if top, ok := r.currentElement(); ok && top.Empty {
		r.stack.pop()
		r.emitElement(top, EventEndElement)
		return true, nil
	}

	cur := r.ent.PeekChar()
	switch {
	case cur == eof:
		r.state = stateEOF
		return false, nil
	case cur == '<':
		if _, err := r.ent.ReadChar(); err != nil {
			return false, err
		}
		return r.dispatchTag()
	default:
		if top, ok := r.currentElement(); ok && top.Decl != nil && top.Decl.CDATAContent {
			r.state = stateCData
			return false, nil
		}
		return r.readText()
	}
}

func (r *Reader) stepEOF() (bool, error) {
	if len(r.entStack) > 0 {
		r.ent.Close()
		r.ent = r.entStack[len(r.entStack)-1]
		r.entStack = r.entStack[:len(r.entStack)-1]
		r.state = stateMarkup
		return false, nil
	}
	if r.stack.len() > 1 {
		r.state = stateAutoClose
		r.popToDepth = 1
		return false, nil
	}
	return false, nil
}

func (r *Reader) stepEndTag() (bool, error) {
	if r.stack.len() <= 1 {
		r.state = stateMarkup
		r.pendingEndTarget = ""
		return false, nil
	}
	popped, _ := r.stack.top()
	r.stack.pop()
	r.emitElement(popped, EventEndElement)
	if asciiEqualFold(popped.Name.Local, r.pendingEndTarget) {
		r.state = stateMarkup
		r.pendingEndTarget = ""
	}
	return true, nil
}

func (r *Reader) stepAutoClose() (bool, error) {
	if r.stack.len() > r.popToDepth {
		popped, _ := r.stack.top()
		r.stack.pop()
		r.emitElement(popped, EventEndElement)
		return true, nil
	}
	if r.pending == nil {
		r.state = stateMarkup
		return false, nil
	}
	slot := r.stack.push()
	slot.Reset(NodeElement)
	slot.Name = r.pending.name
	slot.Empty = r.pending.empty
	slot.Decl = r.pending.decl
	slot.Simulated = r.pending.simulated
	for _, pa := range r.pending.attrs {
		a := slot.Attrs.Add(pa.name, r.caseInsensitiveAttrs())
		if a == nil {
			continue
		}
		a.has = pa.has
		a.literal = pa.literal
		a.Quote = pa.quote
		a.Decl = pa.decl
	}
	r.inheritScopes(slot)
	r.pending = nil
	r.state = stateMarkup
	r.emitElement(slot, EventStartElement)
	return true, nil
}

func (r *Reader) caseInsensitiveAttrs() bool {
	return r.opts.CaseFolding == CaseFoldingNone
}

// inheritScopes copies xml:space/xml:lang scope down from the parent frame
// unless this element redeclares them. The HTML BODY guard is handled in
// dtd.go, not here.
func (r *Reader) inheritScopes(n *Node) {
	idx := r.stack.len() - 2
	parent, ok := r.stack.get(idx)
	if !ok {
		return
	}
	if n.XMLSpace == "" {
		n.XMLSpace = parent.XMLSpace
	}
	if n.XMLLang == "" {
		n.XMLLang = parent.XMLLang
	}
}

// emitElement records n as the current event at kind typ, computing depth
// from n's live position for start events and from the stack length left
// after popping for end events (n is already detached from the stack by
// the time this is called for EventEndElement).
func (r *Reader) emitElement(n *Node, typ EventType) {
	r.event = n
	r.eventType = typ
	if typ == EventStartElement {
		r.eventDepth = r.stack.len() - 1
	} else {
		r.eventDepth = r.stack.len()
		if r.stack.len() == 1 {
			r.rootClosed = true
		}
	}
}

func (r *Reader) emitScratch(kind NodeKind, typ EventType, text []byte) {
	r.scratch.Reset(kind)
	r.scratch.Text = text
	r.event = &r.scratch
	r.eventType = typ
	r.eventDepth = r.stack.len() - 1
}

// queueScratch2 stashes a second event (a Comment or PI split out of
// CDATA-content text, spec.md §4.7) to be replayed as next call's event by
// Read's cdataQueuedNode check, without disturbing whatever this call is
// about to return through r.event/r.scratch.
func (r *Reader) queueScratch2(kind NodeKind, typ EventType, text []byte, depth int) {
	r.scratch2.Reset(kind)
	r.scratch2.Text = text
	r.cdataQueuedNode = &r.scratch2
	r.cdataQueuedType = typ
	r.cdataQueuedDepth = depth
}

// pushExternalEntity implements the nested-entity push half of spec.md
// §4.3's discipline: the current Entity becomes the parent, and uri is
// opened as the new current source. Only local paths are honored; fetching
// a remote URI is out of scope (spec.md §1).
func (r *Reader) pushExternalEntity(name, uri string) error {
	child, err := newFileEntity(uri)
	if err != nil {
		return err
	}
	r.entStack = append(r.entStack, r.ent)
	r.ent = child
	return nil
}

// Close releases the reader's input resources, closing every entity still
// on the nested-entity stack.
func (r *Reader) Close() error {
	var firstErr error
	if r.ent != nil {
		firstErr = r.ent.Close()
	}
	for i := len(r.entStack) - 1; i >= 0; i-- {
		if err := r.entStack[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	r.done = true
	return firstErr
}

// maybeInjectHTMLWrapper implements spec.md §4.15: in HTML mode, the first
// event the document ever produces is expected to be an <html> start tag.
// When the input omits it (a common malformed-HTML shape), this synthesizes
// one around whatever the real first event was, buffering that original
// event to replay on the very next Read call. It is a no-op outside HTML
// mode and after the first real event has been decided one way or another.
func (r *Reader) maybeInjectHTMLWrapper() bool {
	if r.htmlInjected {
		return false
	}
	if r.dtd == nil || !asciiEqualFold(r.dtd.Name(), "HTML") {
		r.htmlInjected = true
		return false
	}
	if r.eventType == EventStartElement && asciiEqualFold(r.event.Name.Local, "html") {
		r.htmlInjected = true
		return false
	}
	r.htmlInjected = true

	if r.eventType == EventStartElement {
		slot := r.stack.insertAt(1)
		slot.Attrs = nil
		slot.Reset(NodeElement)
		slot.Name = Name{Local: "html"}
		slot.Simulated = true
		if decl, ok := r.dtd.LookupElement("html"); ok {
			slot.Decl = decl
		}
		real, _ := r.stack.get(2)
		r.htmlBufferedNode = real
		r.htmlBufferedType = EventStartElement
		r.htmlBufferedDepth = r.stack.len() - 1
		// slot sits at index 1 regardless of how much real content was
		// already pushed above it by the time it's spliced in, so its depth
		// is always 1; emitElement's generic len-1 formula would instead
		// report the depth of whatever got shifted on top of it.
		r.event = slot
		r.eventType = EventStartElement
		r.eventDepth = 1
		return true
	}

	buffered, bufferedType := r.event, r.eventType
	slot := r.stack.push()
	slot.Reset(NodeElement)
	slot.Name = Name{Local: "html"}
	slot.Simulated = true
	if decl, ok := r.dtd.LookupElement("html"); ok {
		slot.Decl = decl
	}
	r.htmlBufferedNode = buffered
	r.htmlBufferedType = bufferedType
	r.htmlBufferedDepth = r.stack.len() - 1
	r.emitElement(slot, EventStartElement)
	return true
}

var _ io.Closer = (*Reader)(nil)
