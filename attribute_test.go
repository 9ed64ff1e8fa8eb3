package sgmlreader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributeListAddDropsDuplicates(t *testing.T) {
	l := newAttributeList()
	a := l.Add(Name{Local: "id"}, false)
	require.NotNil(t, a)
	a.SetLiteral("one", '"')

	dup := l.Add(Name{Local: "id"}, false)
	assert.Nil(t, dup)
	assert.Equal(t, 1, l.Count())

	v, ok := l.ByIndex(0).Value()
	assert.True(t, ok)
	assert.Equal(t, "one", v)
}

func TestAttributeListCaseInsensitiveIndexOf(t *testing.T) {
	l := newAttributeList()
	l.Add(Name{Local: "Class"}, true)
	assert.Equal(t, 0, l.IndexOf("class", true))
	assert.Equal(t, -1, l.IndexOf("class", false))
}

func TestAttributeValueFallsBackToDTDDefault(t *testing.T) {
	a := &Attribute{Name: Name{Local: "type"}}
	_, ok := a.Value()
	assert.False(t, ok)

	a.Decl = &AttDef{Name: "type", Default: "text", HasDefault: true}
	v, ok := a.Value()
	assert.True(t, ok)
	assert.Equal(t, "text", v)
	assert.True(t, a.IsDefault())

	a.SetLiteral("checkbox", '"')
	v, ok = a.Value()
	assert.True(t, ok)
	assert.Equal(t, "checkbox", v)
	assert.False(t, a.IsDefault())
}

func TestAttributeListRemove(t *testing.T) {
	l := newAttributeList()
	l.Add(Name{Local: "a"}, false)
	l.Add(Name{Local: "b"}, false)
	assert.True(t, l.Remove("a", false))
	assert.Equal(t, 1, l.Count())
	assert.Equal(t, "b", l.ByIndex(0).Name.Local)
	assert.False(t, l.Remove("missing", false))
}
