package sgmlreader

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringEntityReadChar(t *testing.T) {
	e := newStringEntity("ab", "doc", "doc")
	c, err := e.ReadChar()
	require.NoError(t, err)
	assert.Equal(t, 'a', c)
	assert.Equal(t, 'a', e.PeekChar())

	c, err = e.ReadChar()
	require.NoError(t, err)
	assert.Equal(t, 'b', c)

	c, err = e.ReadChar()
	require.NoError(t, err)
	assert.Equal(t, eof, c)
}

func TestEntityScanToken(t *testing.T) {
	e := newStringEntity("div class", "doc", "doc")
	e.ReadChar()
	var buf bytes.Buffer
	term, err := e.ScanToken(&buf, unicode.IsSpace)
	require.NoError(t, err)
	assert.Equal(t, ' ', term)
	assert.Equal(t, "div", buf.String())
}

func TestEntityScanLiteralExpandsNumericReference(t *testing.T) {
	e := newStringEntity(`"caf&#233;"`, "doc", "doc")
	e.ReadChar()
	var buf bytes.Buffer
	err := e.ScanLiteral(&buf, '"')
	require.NoError(t, err)
	assert.Equal(t, "café", buf.String())
}

func TestEntityScanLiteralLeavesNamedEntityVerbatim(t *testing.T) {
	e := newStringEntity(`"a&amp;b"`, "doc", "doc")
	e.ReadChar()
	var buf bytes.Buffer
	err := e.ScanLiteral(&buf, '"')
	require.NoError(t, err)
	assert.Equal(t, "a&amp;b", buf.String())
}

func TestEntityScanToEndFindsMarker(t *testing.T) {
	e := newStringEntity(" hello -->tail", "doc", "doc")
	var buf bytes.Buffer
	err := e.ScanToEnd(&buf, "comment", "-->")
	require.NoError(t, err)
	assert.Equal(t, " hello ", buf.String())
}

func TestEntityScanToEndReturnsUnexpectedEOFAndFlushesPartial(t *testing.T) {
	e := newStringEntity(" unterminated", "doc", "doc")
	var buf bytes.Buffer
	err := e.ScanToEnd(&buf, "comment", "-->")
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	assert.Equal(t, " unterminated", buf.String())
}

func TestEntityExpandCharEntityDecimalAndHex(t *testing.T) {
	e := newStringEntity("65;", "doc", "doc")
	s, err := e.ExpandCharEntity()
	require.NoError(t, err)
	assert.Equal(t, "A", s)

	e = newStringEntity("x41;", "doc", "doc")
	s, err = e.ExpandCharEntity()
	require.NoError(t, err)
	assert.Equal(t, "A", s)
}

func TestEncodeCodepointAstralCharacterIsOneValidRune(t *testing.T) {
	s := encodeCodepoint(0x1F600)
	r := []rune(s)
	require.Len(t, r, 1)
	assert.Equal(t, rune(0x1F600), r[0])
}

func TestEncodeCodepointRejectsLoneSurrogateHalf(t *testing.T) {
	s := encodeCodepoint(0xD83D)
	assert.Equal(t, string(unicode.ReplacementChar), s)
}
