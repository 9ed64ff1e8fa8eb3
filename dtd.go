package sgmlreader

import "strings"

// ElementDecl is the subset of a DTD element declaration this reader needs
// to drive auto-close and emptiness: whether the element is declared EMPTY,
// whether its content is unparsed CDATA (script/style), whether its end
// tag may be omitted, and a content-model predicate used by
// ValidateContent.
//
// The DTD loader/parser that produces these declarations is an external
// collaborator (spec §1); this package only consumes the declarations
// through the DTD interface below and ships one concrete DTD, the built-in
// HTML table in htmldtd.go, since no external DTD loader was available to
// wire against.
type ElementDecl struct {
	Name           string
	Empty          bool
	CDATAContent   bool
	EndTagOptional bool

	// contains, when non-nil, lists the child names (upper-cased) this
	// element's content model admits. A nil map means "permissive": the
	// element is treated as able to contain anything, matching spec.md's
	// "an ancestor with no declaration" default for elements whose content
	// model this reader does not attempt to model precisely.
	contains map[string]bool

	attrs map[string]*AttDef
}

// CanContain reports whether this element's content model admits a child
// named childName (already upper-cased by the caller).
func (d *ElementDecl) CanContain(childName string) bool {
	if d == nil || d.contains == nil {
		return true
	}
	return d.contains[childName]
}

// AttDef looks up a declared attribute default by name.
func (d *ElementDecl) AttDef(name string) (*AttDef, bool) {
	if d == nil || d.attrs == nil {
		return nil, false
	}
	a, ok := d.attrs[strings.ToUpper(name)]
	return a, ok
}

// DTD is the read-only, DTD-name-cased lookup surface the reader consults
// for element declarations and entity text. A DTD instance may be shared
// read-only across many Readers once built: nothing in this package
// mutates a DTD after construction.
type DTD interface {
	// Name is the DOCTYPE root name this DTD was built for, e.g. "HTML".
	Name() string
	// LookupElement returns the declaration for an element name (any case),
	// or (nil, false) if the DTD declares nothing by that name.
	LookupElement(name string) (*ElementDecl, bool)
	// LookupEntity returns a named entity's replacement text (for an
	// external entity, the path to open) and whether it is external; ok is
	// false if the name is undeclared.
	LookupEntity(name string) (text string, external bool, ok bool)
}

// StaticDTD is a DTD built once from literal declarations and never
// mutated afterward, the shape every DTD in this package takes (the
// built-in HTML table, and any DTD a caller constructs by hand via
// NewStaticDTD).
type StaticDTD struct {
	name     string
	elements map[string]*ElementDecl
	entities map[string]staticEntity
}

type staticEntity struct {
	text     string
	external bool
}

// NewStaticDTD creates an empty, named DTD ready to be filled in with
// DeclareElement/DeclareEntity before being handed to a Reader.
func NewStaticDTD(name string) *StaticDTD {
	return &StaticDTD{
		name:     strings.ToUpper(name),
		elements: map[string]*ElementDecl{},
		entities: map[string]staticEntity{},
	}
}

func (d *StaticDTD) Name() string { return d.name }

// DeclareElement stores decl under its upper-cased name, matching
// spec.md §4.10's "DTDs are stored case-folded to upper".
func (d *StaticDTD) DeclareElement(decl *ElementDecl) {
	d.elements[strings.ToUpper(decl.Name)] = decl
}

// DeclareEntity registers an internal or external entity's replacement
// text.
func (d *StaticDTD) DeclareEntity(name, text string, external bool) {
	d.entities[name] = staticEntity{text: text, external: external}
}

func (d *StaticDTD) LookupElement(name string) (*ElementDecl, bool) {
	e, ok := d.elements[strings.ToUpper(name)]
	return e, ok
}

func (d *StaticDTD) LookupEntity(name string) (string, bool, bool) {
	e, ok := d.entities[name]
	return e.text, e.external, ok
}

// validateNode attaches a DTD declaration to node, if the reader has a DTD
// loaded and it declares node's name, and sets Empty when the declaration
// says the element is EMPTY. Implements spec.md §4.10's Validate hook.
func (r *Reader) validateNode(n *Node) {
	if r.dtd == nil {
		return
	}
	decl, ok := r.dtd.LookupElement(n.Name.Local)
	if !ok {
		return
	}
	n.Decl = decl
	if decl.Empty {
		n.Empty = true
	}
}

// validateContentTargetIndex implements spec.md §4.10's ValidateContent hook: given
// the stack with the new element already pushed as top, walk ancestors
// looking for the first legal (or forced) container, and return the index
// of that ancestor. When the returned index is less than top-1, the caller
// must auto-close down to index+1 before the new element can be emitted.
func (r *Reader) validateContentTargetIndex() int {
	top := r.stack.len() - 1
	newName := strings.ToUpper(r.currentNode().Name.Local)
	for i := top - 1; i >= 1; i-- {
		anc, _ := r.stack.get(i)
		if i == 1 {
			return i // root element: can contain anything
		}
		if strings.EqualFold(anc.Name.Local, "body") {
			return i // never auto-close BODY
		}
		if anc.Decl == nil {
			return i // permissive default
		}
		if anc.Decl.CanContain(newName) {
			return i
		}
		if !anc.Decl.EndTagOptional {
			return i // cannot synthesize this ancestor's close
		}
	}
	return topOrSentinel(top)
}

func topOrSentinel(top int) int {
	if top < 1 {
		return 0
	}
	return 1
}
