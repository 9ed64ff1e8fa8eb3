package sgmlreader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticDTDLookupElementIsCaseInsensitive(t *testing.T) {
	d := NewStaticDTD("html")
	d.DeclareElement(&ElementDecl{Name: "br", Empty: true})

	decl, ok := d.LookupElement("BR")
	require.True(t, ok)
	assert.True(t, decl.Empty)

	_, ok = d.LookupElement("unknown")
	assert.False(t, ok)
}

func TestElementDeclCanContainPermissiveWhenNil(t *testing.T) {
	var decl *ElementDecl
	assert.True(t, decl.CanContain("ANYTHING"))

	decl = &ElementDecl{Name: "ul", contains: map[string]bool{"LI": true}}
	assert.True(t, decl.CanContain("LI"))
	assert.False(t, decl.CanContain("P"))
}

func TestHTMLDTDDeclaresCommonElements(t *testing.T) {
	dtd := HTMLDTD()
	assert.Equal(t, "HTML", dtd.Name())

	br, ok := dtd.LookupElement("br")
	require.True(t, ok)
	assert.True(t, br.Empty)

	script, ok := dtd.LookupElement("script")
	require.True(t, ok)
	assert.True(t, script.CDATAContent)

	p, ok := dtd.LookupElement("p")
	require.True(t, ok)
	assert.True(t, p.EndTagOptional)
	assert.True(t, p.CanContain("A"))
	assert.False(t, p.CanContain("TABLE"))
}

func TestStaticDTDLookupEntity(t *testing.T) {
	d := NewStaticDTD("html")
	d.DeclareEntity("nbsp", " ", false)

	text, external, ok := d.LookupEntity("nbsp")
	require.True(t, ok)
	assert.False(t, external)
	assert.Equal(t, " ", text)

	_, _, ok = d.LookupEntity("missing")
	assert.False(t, ok)
}
