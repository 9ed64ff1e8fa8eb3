package sgmlreader

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertEvents(t *testing.T, want, got []event) {
	t.Helper()
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(event{})); diff != "" {
		t.Errorf("event stream mismatch (-want +got):\n%s", diff)
	}
}

type event struct {
	typ   EventType
	name  string
	depth int
	empty bool
}

func drain(t *testing.T, r *Reader) []event {
	t.Helper()
	var got []event
	for {
		ok, err := r.Read()
		require.NoError(t, err)
		if !ok {
			return got
		}
		got = append(got, event{typ: r.NodeType(), name: r.Name(), depth: r.Depth(), empty: r.IsEmptyElement()})
	}
}

func TestReaderSelfClosingElementEmitsMatchingEndTag(t *testing.T) {
	r, err := NewReader(Options{InputStream: strings.NewReader("<root><br/></root>")})
	require.NoError(t, err)

	got := drain(t, r)
	want := []event{
		{EventStartElement, "root", 1, false},
		{EventStartElement, "br", 2, true},
		{EventEndElement, "br", 2, false},
		{EventEndElement, "root", 1, false},
	}
	assertEvents(t, want, got)
}

func TestReaderAutoClosesOptionalEndTagAncestor(t *testing.T) {
	r, err := NewReader(Options{DocType: "HTML", InputStream: strings.NewReader("<html><body><p>a<p>b</p></body></html>")})
	require.NoError(t, err)

	got := drain(t, r)
	want := []event{
		{EventStartElement, "html", 1, false},
		{EventStartElement, "body", 2, false},
		{EventStartElement, "p", 3, false},
		{EventText, "", 3, false},
		{EventEndElement, "p", 3, false}, // synthesized close of the first <p>
		{EventStartElement, "p", 3, false},
		{EventText, "", 3, false},
		{EventEndElement, "p", 3, false},
		{EventEndElement, "body", 2, false},
		{EventEndElement, "html", 1, false},
	}
	assertEvents(t, want, got)
}

func TestReaderMismatchedEndTagCascadesClosesOpenAncestors(t *testing.T) {
	r, err := NewReader(Options{InputStream: strings.NewReader("<a><b>text</a>")})
	require.NoError(t, err)

	got := drain(t, r)
	want := []event{
		{EventStartElement, "a", 1, false},
		{EventStartElement, "b", 2, false},
		{EventText, "", 2, false},
		{EventEndElement, "b", 2, false},
		{EventEndElement, "a", 1, false},
	}
	assert.Equal(t, want, got)
}

func TestReaderHTMLWrapperInjectionWhenFirstEventIsAnElement(t *testing.T) {
	r, err := NewReader(Options{DocType: "HTML", InputStream: strings.NewReader("<br>")})
	require.NoError(t, err)

	got := drain(t, r)
	want := []event{
		{EventStartElement, "html", 1, false},
		{EventStartElement, "br", 2, true},
		{EventEndElement, "br", 2, false},
		{EventEndElement, "html", 1, false},
	}
	assert.Equal(t, want, got)
}

func TestReaderHTMLWrapperInjectionWhenFirstEventIsText(t *testing.T) {
	r, err := NewReader(Options{DocType: "HTML", InputStream: strings.NewReader("stray text<p>more</p>")})
	require.NoError(t, err)

	got := drain(t, r)
	require.NotEmpty(t, got)
	assert.Equal(t, EventStartElement, got[0].typ)
	assert.Equal(t, "html", got[0].name)
	assert.Equal(t, 1, got[0].depth)

	assert.Equal(t, EventText, got[1].typ)
	assert.Equal(t, EventStartElement, got[2].typ)
	assert.Equal(t, "p", got[2].name)

	last := got[len(got)-1]
	assert.Equal(t, EventEndElement, last.typ)
	assert.Equal(t, "html", last.name)
}

func TestReaderExplicitHTMLStartTagIsNotDoubleWrapped(t *testing.T) {
	r, err := NewReader(Options{DocType: "HTML", InputStream: strings.NewReader(`<html lang="en"><body>hi</body></html>`)})
	require.NoError(t, err)

	ok, err := r.Read()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "html", r.Name())
	assert.Equal(t, 1, r.Depth())
	v, ok := r.GetAttribute("lang")
	require.True(t, ok)
	assert.Equal(t, "en", v)

	got := append([]event{{r.NodeType(), r.Name(), r.Depth(), r.IsEmptyElement()}}, drain(t, r)...)
	htmlStarts := 0
	for _, e := range got {
		if e.typ == EventStartElement && e.name == "html" {
			htmlStarts++
		}
	}
	assert.Equal(t, 1, htmlStarts)
}

func TestReaderScriptContentCommentGuardSplitsIntoCommentEvent(t *testing.T) {
	r, err := NewReader(Options{DocType: "HTML", InputStream: strings.NewReader(
		"<html><body><script><!--\nvar x = 1 < 2;\n--></script></body></html>")})
	require.NoError(t, err)

	var comment string
	for {
		ok, err := r.Read()
		require.NoError(t, err)
		require.True(t, ok)
		if r.NodeType() == EventComment {
			comment = r.Value()
			break
		}
	}
	assert.Contains(t, comment, "var x = 1 < 2;")
	assert.NotContains(t, comment, "<!--")
	assert.NotContains(t, comment, "-->")
}

func TestReaderScriptContentMidStreamCommentSplitsEventsAndResumesCData(t *testing.T) {
	r, err := NewReader(Options{DocType: "HTML", InputStream: strings.NewReader(
		"<html><body><script>a;<!--x-->b;</script></body></html>")})
	require.NoError(t, err)

	var kinds []EventType
	var values []string
	for {
		ok, err := r.Read()
		require.NoError(t, err)
		if !ok {
			break
		}
		if r.NodeType() == EventCData || r.NodeType() == EventComment {
			kinds = append(kinds, r.NodeType())
			values = append(values, r.Value())
		}
	}
	require.Equal(t, []EventType{EventCData, EventComment, EventCData}, kinds)
	assert.Equal(t, "a;", values[0])
	assert.Equal(t, "x", values[1])
	assert.Equal(t, "b;", values[2])
}

func TestReaderScriptContentCDATABracketGuardIsStripped(t *testing.T) {
	r, err := NewReader(Options{DocType: "HTML", InputStream: strings.NewReader(
		"<html><body><script>//<![CDATA[\nvar x = 1;\n//]]></script></body></html>")})
	require.NoError(t, err)

	var cdata string
	for {
		ok, err := r.Read()
		require.NoError(t, err)
		require.True(t, ok)
		if r.NodeType() == EventCData {
			cdata = r.Value()
			break
		}
	}
	assert.Contains(t, cdata, "var x = 1;")
	assert.NotContains(t, cdata, "CDATA")
}

func TestReaderLogsUnmatchedEndTagAndContinues(t *testing.T) {
	var log []Diagnostic
	r, err := NewReader(Options{
		InputStream: strings.NewReader("<a>text</b></a>"),
		ErrorLog:    loggerFunc(func(d Diagnostic) { log = append(log, d) }),
	})
	require.NoError(t, err)

	got := drain(t, r)
	want := []event{
		{EventStartElement, "a", 1, false},
		{EventText, "", 1, false},
		{EventEndElement, "a", 1, false},
	}
	assert.Equal(t, want, got)
	require.Len(t, log, 1)
	assert.Contains(t, log[0].Message, string(errUnmatchedEndTag))
}

func TestReaderDoctypeStrippedByDefaultAndEmittedWhenOptedIn(t *testing.T) {
	src := `<!DOCTYPE root PUBLIC "-//X//DTD X//EN" "x.dtd"><root/>`

	r, err := NewReader(Options{InputStream: strings.NewReader(src)})
	require.NoError(t, err)
	ok, err := r.Read()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, EventStartElement, r.NodeType())
	assert.Equal(t, "root", r.Name())

	r2, err := NewReader(Options{InputStream: strings.NewReader(src)}.WithStripDoctype(false))
	require.NoError(t, err)
	ok, err = r2.Read()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, EventDoctype, r2.NodeType())
	assert.Equal(t, "root", r2.Name())
}

func TestReaderMissingInputIsFatal(t *testing.T) {
	_, err := NewReader(Options{})
	assert.ErrorIs(t, err, errMissingInput)
}

func TestReaderDoctypeMismatchIsFatal(t *testing.T) {
	r, err := NewReader(Options{
		DocType:     "HTML",
		InputStream: strings.NewReader(`<!DOCTYPE other><other/>`),
	})
	require.NoError(t, err)

	_, err = r.Read()
	assert.ErrorIs(t, err, errDTDMismatch)

	// Once fatal, Read keeps returning the same error.
	_, err2 := r.Read()
	assert.Equal(t, err, err2)
}

func TestReaderAttributeTraversal(t *testing.T) {
	r, err := NewReader(Options{InputStream: strings.NewReader(`<a id="x" class="y z"/>`)})
	require.NoError(t, err)

	ok, err := r.Read()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 2, r.AttributeCount())

	require.True(t, r.MoveToFirstAttribute())
	assert.Equal(t, "id", r.Name())
	assert.Equal(t, "x", r.Value())

	require.True(t, r.MoveToNextAttribute())
	assert.Equal(t, "class", r.Name())
	assert.Equal(t, "y z", r.Value())

	assert.False(t, r.MoveToNextAttribute())

	require.True(t, r.MoveToAttribute("id"))
	assert.Equal(t, "x", r.Value())

	require.True(t, r.MoveToElement())
	assert.Equal(t, "a", r.Name())
}

func TestReaderBooleanAttributeValueIsItsOwnName(t *testing.T) {
	r, err := NewReader(Options{InputStream: strings.NewReader(`<p foo>done</p>`)})
	require.NoError(t, err)

	ok, err := r.Read()
	require.NoError(t, err)
	require.True(t, ok)
	v, ok := r.GetAttribute("foo")
	require.True(t, ok)
	assert.Equal(t, "foo", v)
}

func TestReaderMalformedQuoteRecoveryDropsTrailingGarbage(t *testing.T) {
	r, err := NewReader(Options{InputStream: strings.NewReader(`<a href="foo"bar">ok</a>`)})
	require.NoError(t, err)

	ok, err := r.Read()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 1, r.AttributeCount())
	v, ok := r.GetAttribute("href")
	require.True(t, ok)
	assert.Equal(t, "foo", v)

	ok, err = r.Read()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, EventText, r.NodeType())
	assert.Equal(t, "ok", r.Value())
}

func TestReaderInvalidAttributeNameIsDroppedSilently(t *testing.T) {
	var log []Diagnostic
	r, err := NewReader(Options{
		InputStream: strings.NewReader(`<a @foo="x" id="y">ok</a>`),
		ErrorLog:    loggerFunc(func(d Diagnostic) { log = append(log, d) }),
	})
	require.NoError(t, err)

	ok, err := r.Read()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 1, r.AttributeCount())
	v, ok := r.GetAttribute("id")
	require.True(t, ok)
	assert.Equal(t, "y", v)
	assert.Empty(t, log)
}

func TestReaderStrayLessThanInTagAbortsAttributeScanning(t *testing.T) {
	var log []Diagnostic
	r, err := NewReader(Options{
		InputStream: strings.NewReader(`<a id="x" <b>ok</b>`),
		ErrorLog:    loggerFunc(func(d Diagnostic) { log = append(log, d) }),
	})
	require.NoError(t, err)

	ok, err := r.Read()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a", r.Name())
	require.Equal(t, 1, r.AttributeCount())
	require.Len(t, log, 1)
	assert.Contains(t, log[0].Message, string(errMalformedAttribute))
}

func TestReaderInvalidElementNameDegradesToLiteralText(t *testing.T) {
	r, err := NewReader(Options{InputStream: strings.NewReader(`<a:b:c attr="x">text</a:b:c>`)})
	require.NoError(t, err)

	ok, err := r.Read()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, EventText, r.NodeType())
	assert.Equal(t, `<a:b:c attr="x">`, r.Value())

	ok, err = r.Read()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, EventText, r.NodeType())
	assert.Equal(t, "text", r.Value())
}

func TestReaderWhitespaceHandlingNoneSuppressesWhitespaceOnlyText(t *testing.T) {
	r, err := NewReader(Options{
		InputStream:        strings.NewReader("<a>   <b/>  </a>"),
		WhitespaceHandling: WhitespaceNone,
	})
	require.NoError(t, err)

	got := drain(t, r)
	want := []event{
		{EventStartElement, "a", 1, false},
		{EventStartElement, "b", 2, true},
		{EventEndElement, "b", 2, false},
		{EventEndElement, "a", 1, false},
	}
	assert.Equal(t, want, got)
}

func TestReaderNamedAndNumericEntitiesExpandInTextAndAttributes(t *testing.T) {
	r, err := NewReader(Options{InputStream: strings.NewReader(`<a title="caf&#233;">Tom &amp; Jerry</a>`)})
	require.NoError(t, err)

	ok, err := r.Read()
	require.NoError(t, err)
	require.True(t, ok)
	v, ok := r.GetAttribute("title")
	require.True(t, ok)
	assert.Equal(t, "café", v)

	ok, err = r.Read()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, EventText, r.NodeType())
	assert.Equal(t, "Tom & Jerry", r.Value())
}

type loggerFunc func(Diagnostic)

func (f loggerFunc) Log(d Diagnostic) { f(d) }
