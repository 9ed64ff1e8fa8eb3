package sgmlreader

import "strings"

// attributeNode returns the element frame attribute lookups and traversal
// should act on: the one saved by a prior MoveToFirstAttribute while a
// pseudo-state is active, or the current start-element frame otherwise.
func (r *Reader) attributeNode() *Node {
	if (r.state == stateAttr || r.state == stateAttrValue) && r.attrNode != nil {
		return r.attrNode
	}
	if r.eventType == EventStartElement {
		return r.event
	}
	return nil
}

// AttributeCount returns the number of attributes on the current element
// event, or 0 when not positioned on one.
func (r *Reader) AttributeCount() int {
	n := r.attributeNode()
	if n == nil || n.Attrs == nil {
		return 0
	}
	return n.Attrs.Count()
}

// MoveToFirstAttribute enters the Attr pseudo-state at attribute 0 (spec.md
// §4.14); it returns false without changing state if the current element
// has no attributes.
func (r *Reader) MoveToFirstAttribute() bool {
	n := r.currentElementNodeForTraversal()
	if n == nil || n.Attrs == nil || n.Attrs.Count() == 0 {
		return false
	}
	r.enterAttrTraversal(n)
	n.attrPos = 0
	r.state = stateAttr
	return true
}

// MoveToNextAttribute advances the Attr cursor, returning false (and
// leaving state unchanged) once the last attribute has been passed.
func (r *Reader) MoveToNextAttribute() bool {
	n := r.attributeNode()
	if n == nil || n.Attrs == nil {
		return false
	}
	if n.attrPos+1 >= n.Attrs.Count() {
		return false
	}
	r.enterAttrTraversal(n)
	n.attrPos++
	r.state = stateAttr
	return true
}

// MoveToAttribute positions on the named attribute directly.
func (r *Reader) MoveToAttribute(name string) bool {
	el := r.currentElementNodeForTraversal()
	if el == nil || el.Attrs == nil {
		return false
	}
	idx := el.Attrs.IndexOf(name, r.caseInsensitiveAttrs())
	if idx < 0 {
		return false
	}
	r.enterAttrTraversal(el)
	el.attrPos = idx
	r.state = stateAttr
	return true
}

// MoveToAttributeAt positions on the attribute at ordinal index i.
func (r *Reader) MoveToAttributeAt(i int) bool {
	el := r.currentElementNodeForTraversal()
	if el == nil || el.Attrs == nil || i < 0 || i >= el.Attrs.Count() {
		return false
	}
	r.enterAttrTraversal(el)
	el.attrPos = i
	r.state = stateAttr
	return true
}

// MoveToElement leaves the Attr/AttrValue pseudo-states and restores the
// state the reader was in when traversal began.
func (r *Reader) MoveToElement() bool {
	if r.attrNode == nil {
		return false
	}
	r.state = r.attrNode.savedState
	r.attrNode.savingState = false
	r.attrNode.attrPos = -1
	r.attrNode = nil
	return true
}

// ReadAttributeValue enters the AttrValue pseudo-state, conceptually
// positioning on the current attribute's value text (spec.md §4.14);
// GetAttribute already returns the full value directly, so this exists for
// interface parity with pull readers that model attribute values as their
// own node.
func (r *Reader) ReadAttributeValue() bool {
	if r.state != stateAttr {
		return false
	}
	r.state = stateAttrValue
	return true
}

func (r *Reader) enterAttrTraversal(n *Node) {
	if !n.savingState {
		n.savedState = r.state
		n.savingState = true
	}
	r.attrNode = n
}

// currentElementNodeForTraversal returns the element frame attribute
// traversal should begin from: the frame already being traversed, or the
// current start-element event.
func (r *Reader) currentElementNodeForTraversal() *Node {
	if r.attrNode != nil {
		return r.attrNode
	}
	if r.eventType == EventStartElement {
		return r.event
	}
	return nil
}

// GetAttribute returns the named attribute's effective value (literal, or
// DTD default, per Attribute.Value).
func (r *Reader) GetAttribute(name string) (string, bool) {
	n := r.currentElementNodeForTraversal()
	if n == nil || n.Attrs == nil {
		return "", false
	}
	idx := n.Attrs.IndexOf(name, r.caseInsensitiveAttrs())
	if idx < 0 {
		return "", false
	}
	return n.Attrs.ByIndex(idx).Value()
}

// GetAttributeAt returns the name and effective value of the attribute at
// ordinal index i.
func (r *Reader) GetAttributeAt(i int) (Name, string, bool) {
	n := r.currentElementNodeForTraversal()
	if n == nil || n.Attrs == nil || i < 0 || i >= n.Attrs.Count() {
		return Name{}, "", false
	}
	a := n.Attrs.ByIndex(i)
	v, ok := a.Value()
	return a.Name, v, ok
}

// currentAttribute returns the Attribute the Attr/AttrValue pseudo-state is
// positioned on, or nil.
func (r *Reader) currentAttribute() *Attribute {
	if r.attrNode == nil || r.attrNode.attrPos < 0 {
		return nil
	}
	return r.attrNode.Attrs.ByIndex(r.attrNode.attrPos)
}

// NodeType reports the kind of the most recently read event.
func (r *Reader) NodeType() EventType { return r.eventType }

// Name returns the qualified name for element and doctype events, or the
// target for a processing instruction; empty for every other kind.
func (r *Reader) Name() string {
	if a := r.currentAttribute(); a != nil {
		return a.Name.String()
	}
	if r.event == nil {
		return ""
	}
	switch r.eventType {
	case EventStartElement, EventEndElement:
		return r.event.Name.String()
	case EventPI:
		return r.event.Target
	case EventDoctype:
		return r.event.Name.Local
	default:
		return ""
	}
}

// LocalName returns Name with any namespace prefix stripped.
func (r *Reader) LocalName() string {
	if a := r.currentAttribute(); a != nil {
		return a.Name.Local
	}
	if r.event == nil {
		return ""
	}
	switch r.eventType {
	case EventStartElement, EventEndElement:
		return r.event.Name.Local
	case EventPI:
		return r.event.Target
	case EventDoctype:
		return r.event.Name.Local
	default:
		return ""
	}
}

// Prefix returns the namespace prefix of the current element or attribute,
// or "" when there is none or the current event isn't name-bearing.
func (r *Reader) Prefix() string {
	if a := r.currentAttribute(); a != nil {
		return a.Name.Prefix
	}
	if r.event == nil || (r.eventType != EventStartElement && r.eventType != EventEndElement) {
		return ""
	}
	return r.event.Name.Prefix
}

// NamespaceURI resolves the current element or attribute's namespace,
// including the synthetic placeholders spec.md §4.13 mandates for
// undeclared prefixes.
func (r *Reader) NamespaceURI() string {
	if a := r.currentAttribute(); a != nil {
		return r.namespaceURI(a.Name, true)
	}
	if r.event == nil || (r.eventType != EventStartElement && r.eventType != EventEndElement) {
		return ""
	}
	return r.namespaceURI(r.event.Name, false)
}

// Value returns the textual payload of the current event: the character
// data for Text/Whitespace/CData/Comment/PI, or the current attribute's
// value during attribute traversal. Empty for element and doctype events.
func (r *Reader) Value() string {
	if a := r.currentAttribute(); a != nil {
		v, _ := a.Value()
		return v
	}
	if r.event == nil {
		return ""
	}
	switch r.eventType {
	case EventText, EventWhitespace, EventCData, EventComment, EventPI:
		return string(r.event.Text)
	default:
		return ""
	}
}

// Depth reports the current event's nesting depth: 0 at the document root,
// incrementing with each open element.
func (r *Reader) Depth() int {
	return r.eventDepth
}

// IsEmptyElement reports whether the current start-element event is
// immediately followed by its own end (self-closed in the input, or
// declared EMPTY by the DTD).
func (r *Reader) IsEmptyElement() bool {
	return r.eventType == EventStartElement && r.event != nil && r.event.Empty
}

// QuoteChar returns the quote character the current attribute's value was
// delimited by, or 0 if the value was unquoted or no attribute is current.
func (r *Reader) QuoteChar() rune {
	a := r.currentAttribute()
	if a == nil {
		return 0
	}
	return a.Quote
}

// IsDefault reports whether the current attribute's value came from a DTD
// default rather than the input.
func (r *Reader) IsDefault() bool {
	a := r.currentAttribute()
	if a == nil {
		return false
	}
	return a.IsDefault()
}

// XMLSpace and XMLLang return the in-scope xml:space/xml:lang values for
// the current element event.
func (r *Reader) XMLSpace() string {
	if r.event == nil || (r.eventType != EventStartElement && r.eventType != EventEndElement) {
		return ""
	}
	return r.event.XMLSpace
}

func (r *Reader) XMLLang() string {
	if r.event == nil || (r.eventType != EventStartElement && r.eventType != EventEndElement) {
		return ""
	}
	return r.event.XMLLang
}

// BaseURI returns the base URI of the entity the current event was read
// from.
func (r *Reader) BaseURI() string {
	if r.ent == nil {
		return ""
	}
	return r.ent.BaseURI()
}

// ReadString concatenates every Text/Whitespace/CData event up to (but not
// including) the next element or end-of-document event, returning their
// combined character data. A supplemented convenience on top of the raw
// Read loop (spec.md's Non-goals exclude a tree model, not a plain text
// accumulator).
func (r *Reader) ReadString() (string, error) {
	var sb strings.Builder
	for {
		ok, err := r.Read()
		if err != nil {
			return sb.String(), err
		}
		if !ok {
			return sb.String(), nil
		}
		switch r.eventType {
		case EventText, EventWhitespace, EventCData:
			sb.WriteString(string(r.event.Text))
		default:
			return sb.String(), nil
		}
	}
}

// ReadInnerXML is a supplemented convenience that renders the serialized
// XML of the current element's children without its own start/end tags.
// ReadOuterXML additionally includes them. Both are best-effort
// reserializations of what was just read, not a guarantee of exact
// byte-for-byte fidelity with the original input.
func (r *Reader) ReadInnerXML() (string, error) {
	if r.eventType != EventStartElement {
		return "", nil
	}
	if r.event.Empty {
		return "", nil
	}
	depth := r.eventDepth
	var sb strings.Builder
	for {
		ok, err := r.Read()
		if err != nil {
			return sb.String(), err
		}
		if !ok {
			return sb.String(), nil
		}
		if r.eventType == EventEndElement && r.eventDepth == depth {
			return sb.String(), nil
		}
		writeEventXML(&sb, r)
	}
}

func (r *Reader) ReadOuterXML() (string, error) {
	if r.eventType != EventStartElement {
		return "", nil
	}
	var sb strings.Builder
	writeEventXML(&sb, r)
	if r.event.Empty {
		return sb.String(), nil
	}
	depth := r.eventDepth
	for {
		ok, err := r.Read()
		if err != nil {
			return sb.String(), err
		}
		if !ok {
			return sb.String(), nil
		}
		writeEventXML(&sb, r)
		if r.eventType == EventEndElement && r.eventDepth == depth {
			return sb.String(), nil
		}
	}
}

func writeEventXML(sb *strings.Builder, r *Reader) {
	switch r.eventType {
	case EventStartElement:
		sb.WriteByte('<')
		sb.WriteString(r.event.Name.String())
		for i := 0; i < r.event.Attrs.Count(); i++ {
			a := r.event.Attrs.ByIndex(i)
			v, ok := a.Value()
			if !ok {
				continue
			}
			sb.WriteByte(' ')
			sb.WriteString(a.Name.String())
			sb.WriteString(`="`)
			sb.WriteString(escapeAttrValue(v))
			sb.WriteByte('"')
		}
		if r.event.Empty {
			sb.WriteString("/>")
		} else {
			sb.WriteByte('>')
		}
	case EventEndElement:
		if !r.event.Empty {
			sb.WriteString("</")
			sb.WriteString(r.event.Name.String())
			sb.WriteByte('>')
		}
	case EventText, EventWhitespace:
		sb.WriteString(escapeText(string(r.event.Text)))
	case EventCData:
		sb.WriteString("<![CDATA[")
		sb.WriteString(string(r.event.Text))
		sb.WriteString("]]>")
	case EventComment:
		sb.WriteString("<!--")
		sb.WriteString(string(r.event.Text))
		sb.WriteString("-->")
	case EventPI:
		sb.WriteString("<?")
		sb.WriteString(r.event.Target)
		sb.WriteByte(' ')
		sb.WriteString(string(r.event.Text))
		sb.WriteString("?>")
	}
}

func escapeText(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}

func escapeAttrValue(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", `"`, "&quot;")
	return r.Replace(s)
}
