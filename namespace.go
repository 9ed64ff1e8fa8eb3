package sgmlreader

import "strconv"

const (
	xmlNamespaceURI   = "http://www.w3.org/XML/1998/namespace"
	xmlnsNamespaceURI = "http://www.w3.org/2000/xmlns/"
	unknownNamespace  = "#unknown"
)

// namespaceURI implements spec.md §4.13's resolution algorithm for the
// given name, treating it as an attribute name when onAttribute is true.
// The stack is walked top-down looking for an in-scope xmlns/xmlns:prefix
// declaration; undeclared prefixes are coined a stable placeholder URI so
// that the output is always namespace-well-formed, even when the input
// never declares a namespace at all.
func (r *Reader) namespaceURI(n Name, onAttribute bool) string {
	if onAttribute && n.Local == "xmlns" && n.Prefix == "" {
		return xmlnsNamespaceURI
	}
	prefix := n.Prefix
	switch prefix {
	case "xml":
		return xmlNamespaceURI
	case "xmlns":
		return xmlnsNamespaceURI
	}
	if prefix == "" {
		if onAttribute {
			return ""
		}
		if uri, ok := r.lookupDefaultXMLNS(); ok {
			return uri
		}
		return ""
	}
	if uri, ok := r.lookupPrefixedXMLNS(prefix); ok {
		return uri
	}
	return r.resolveUnknownPrefix(prefix)
}

// lookupDefaultXMLNS walks the open-element stack top-down for a bare
// xmlns="..." declaration.
func (r *Reader) lookupDefaultXMLNS() (string, bool) {
	for i := r.stack.len() - 1; i >= 1; i-- {
		n, _ := r.stack.get(i)
		if n.Attrs == nil {
			continue
		}
		if idx := n.Attrs.IndexOf("xmlns", false); idx >= 0 {
			if v, ok := n.Attrs.ByIndex(idx).Value(); ok {
				return v, true
			}
		}
	}
	return "", false
}

// lookupPrefixedXMLNS walks the open-element stack top-down for an
// xmlns:prefix="..." declaration.
func (r *Reader) lookupPrefixedXMLNS(prefix string) (string, bool) {
	declName := "xmlns:" + prefix
	for i := r.stack.len() - 1; i >= 1; i-- {
		n, _ := r.stack.get(i)
		if n.Attrs == nil {
			continue
		}
		if idx := n.Attrs.IndexOf(declName, false); idx >= 0 {
			if v, ok := n.Attrs.ByIndex(idx).Value(); ok {
				return v, true
			}
		}
	}
	return "", false
}

// resolveUnknownPrefix coins (or reuses) a synthetic namespace URI for a
// prefix with no in-scope declaration: "#unknown" for the first one seen by
// this Reader, "#unknown1", "#unknown2", ... for subsequent distinct
// prefixes, matching spec.md §4.13 step 7 and §6.3.
func (r *Reader) resolveUnknownPrefix(prefix string) string {
	if uri, ok := r.unknownPrefixes[prefix]; ok {
		return uri
	}
	var uri string
	if r.unknownPrefixCount == 0 {
		uri = unknownNamespace
	} else {
		uri = unknownNamespace + strconv.Itoa(r.unknownPrefixCount)
	}
	if r.unknownPrefixes == nil {
		r.unknownPrefixes = map[string]string{}
	}
	r.unknownPrefixes[prefix] = uri
	r.unknownPrefixCount++
	return uri
}
