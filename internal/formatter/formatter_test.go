package formatter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeContent struct{ err error }

func (f fakeContent) ToHTML() (string, error)     { return "<p>x</p>", f.err }
func (f fakeContent) ToText() (string, error)     { return "x", f.err }
func (f fakeContent) ToMarkdown() (string, error) { return "# x", f.err }
func (f fakeContent) ToJSON() ([]byte, error)     { return []byte(`{"x":1}`), f.err }
func (f fakeContent) ToCSV() (string, error)      { return "x\n", f.err }

func TestFormat(t *testing.T) {
	want := map[string]string{
		"html":     "<p>x</p>",
		"text":     "x",
		"markdown": "# x",
		"json":     `{"x":1}`,
		"csv":      "x\n",
	}
	for _, f := range Formats {
		got, err := Format(fakeContent{}, f)
		require.NoError(t, err, f)
		assert.Equal(t, want[f], got, f)
		assert.True(t, Valid(f))
	}

	_, err := Format(fakeContent{}, "xml")
	assert.EqualError(t, err, "unsupported output format: xml")
	assert.False(t, Valid("xml"))
}

func TestFormat_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Format(fakeContent{err: boom}, "json")
	assert.ErrorIs(t, err, boom)
}

func TestInferFromExtension(t *testing.T) {
	assert.Equal(t, "markdown", InferFromExtension("out.MD"))
	assert.Equal(t, "csv", InferFromExtension("/tmp/report.csv"))
	assert.Equal(t, "html", InferFromExtension("a.htm"))
	assert.Equal(t, "", InferFromExtension("noext"))
}
