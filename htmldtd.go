package sgmlreader

// This file supplements spec.md: it was silent on exactly which elements
// the built-in "doc_type = HTML" DTD declares (spec.md §6.1), naming only
// html, body, p, and script/style by example. The table below covers that
// named set plus the minimal neighboring elements needed for CanContain and
// EndTagOptional to be exercised meaningfully rather than vacuously: block
// containers (div, ul, ol, table rows/cells), a handful of inline elements,
// and the common EMPTY elements.

var htmlDTD = buildHTMLDTD()

// HTMLDTD returns the package's built-in HTML element declaration table.
// It is shared, read-only, across every Reader configured with
// DocType: "HTML".
func HTMLDTD() DTD {
	return htmlDTD
}

var htmlInlineElements = []string{
	"A", "SPAN", "B", "I", "EM", "STRONG", "BR", "IMG", "SMALL", "SUB", "SUP",
}

var htmlBlockElements = []string{
	"P", "DIV", "UL", "OL", "LI", "TABLE", "TR", "TD", "TH", "FORM",
	"H1", "H2", "H3", "H4", "H5", "H6", "PRE", "BLOCKQUOTE",
}

func buildHTMLDTD() *StaticDTD {
	d := NewStaticDTD("HTML")

	flow := unionOf(htmlInlineElements, htmlBlockElements)

	decl := func(name string, empty, cdata, endOptional bool, contains []string) {
		var containsSet map[string]bool
		if contains != nil {
			containsSet = toSet(contains)
		}
		d.DeclareElement(&ElementDecl{
			Name:           name,
			Empty:          empty,
			CDATAContent:   cdata,
			EndTagOptional: endOptional,
			contains:       containsSet,
		})
	}

	// Root and structural elements: HTML, TITLE and BODY get permissive
	// content models (nil contains) so the walk in
	// validateContentTargetIndex treats them as able to hold anything;
	// HEAD admits only its usual children.
	decl("HTML", false, false, true, nil)
	decl("HEAD", false, false, true, []string{"TITLE", "META", "LINK", "SCRIPT", "STYLE"})
	decl("TITLE", false, false, false, nil)
	decl("BODY", false, false, true, nil)

	// Block containers: P, the headings and PRE hold inline content only;
	// DIV, FORM and BLOCKQUOTE hold flow content (inline + block, their
	// own kind included).
	decl("P", false, false, true, htmlInlineElements)
	decl("DIV", false, false, false, flow)
	decl("FORM", false, false, false, flow)
	decl("BLOCKQUOTE", false, false, false, flow)
	for _, h := range []string{"H1", "H2", "H3", "H4", "H5", "H6"} {
		decl(h, false, false, true, htmlInlineElements)
	}
	decl("PRE", false, false, false, htmlInlineElements)

	// Lists. LI's own content excludes LI itself so a new <li> forces the
	// previous one closed instead of nesting under it.
	decl("UL", false, false, false, []string{"LI"})
	decl("OL", false, false, false, []string{"LI"})
	decl("LI", false, false, true, unionOf(htmlInlineElements, []string{
		"P", "DIV", "TABLE", "FORM", "BLOCKQUOTE",
		"H1", "H2", "H3", "H4", "H5", "H6", "PRE",
	}))

	// Tables.
	decl("TABLE", false, false, false, []string{"TR", "TBODY", "THEAD", "TFOOT", "CAPTION"})
	decl("TBODY", false, false, true, []string{"TR"})
	decl("THEAD", false, false, true, []string{"TR"})
	decl("TFOOT", false, false, true, []string{"TR"})
	decl("TR", false, false, true, []string{"TD", "TH"})
	decl("TD", false, false, true, flow)
	decl("TH", false, false, true, flow)
	decl("CAPTION", false, false, false, htmlInlineElements)

	// Forms.
	decl("SELECT", false, false, false, []string{"OPTION", "OPTGROUP"})
	decl("OPTGROUP", false, false, true, []string{"OPTION"})
	decl("OPTION", false, false, true, nil)
	decl("TEXTAREA", false, false, false, nil)
	decl("LABEL", false, false, false, htmlInlineElements)

	// Inline elements: can hold other inline elements and text.
	for _, inl := range []string{"A", "SPAN", "B", "I", "EM", "STRONG", "SMALL", "SUB", "SUP", "LABEL"} {
		decl(inl, false, false, false, htmlInlineElements)
	}

	// CDATA-content elements.
	decl("SCRIPT", false, true, false, nil)
	decl("STYLE", false, true, false, nil)

	// EMPTY elements.
	for _, e := range []string{"BR", "IMG", "HR", "META", "LINK", "INPUT", "BASE", "COL", "AREA"} {
		decl(e, true, false, false, nil)
	}

	return d
}

func toSet(names []string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

func unionOf(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
