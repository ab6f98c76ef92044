package display

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/docwatch/internal/logger"
)

func TestWriterSink_ShowDocument(t *testing.T) {
	var buf bytes.Buffer
	sink := NewWriterSink(&buf, "README.md")

	sink.ShowDocument("hello")
	sink.ShowDocument("world\n")

	assert.Equal(t, "[README.md changed]\nhello\n[README.md changed]\nworld\n", buf.String())
}

func TestWriterSink_ShowError(t *testing.T) {
	var buf bytes.Buffer
	sink := NewWriterSink(&buf, "README.md")

	sink.ShowError("fetch failed (404): Not Found")
	assert.Equal(t, "[error] fetch failed (404): Not Found\n", buf.String())

	buf.Reset()
	sink.SetQuiet(true)
	sink.ShowError("again")
	assert.Empty(t, buf.String())
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.SetVerbose(true)
	t.Cleanup(func() {
		logger.SetVerbose(false)
		logger.SetOutput(nil)
	})

	sink := NewLogSink("README.md")
	sink.ShowDocument("abc")
	sink.ShowError("boom")

	out := buf.String()
	assert.Contains(t, out, "document changed")
	assert.Contains(t, out, "bytes=3")
	assert.Contains(t, out, "error=boom")
	assert.NotContains(t, out, "abc", "content stays out of the log")
}

func TestMulti(t *testing.T) {
	var a, b bytes.Buffer
	sink := Multi{NewWriterSink(&a, "A"), NewWriterSink(&b, "B")}

	sink.ShowDocument("x")
	sink.ShowError("y")

	assert.Equal(t, "[A changed]\nx\n[error] y\n", a.String())
	assert.Equal(t, "[B changed]\nx\n[error] y\n", b.String())
}
