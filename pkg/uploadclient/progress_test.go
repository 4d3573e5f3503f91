package uploadclient

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressBar_Line(t *testing.T) {
	var out bytes.Buffer
	bar := newProgressBar(&out, "Uploading", 2048)
	bar.AddBytes(1024)
	bar.Finish()

	last := out.String()[strings.LastIndex(out.String(), "\r")+1:]
	assert.True(t, strings.HasPrefix(last, "Uploading ["+strings.Repeat("=", 16)+strings.Repeat(" ", 16)+"]  50% 1.0 KB/2.0 KB ✓"), last)
	assert.True(t, strings.HasSuffix(last, "\n"))

	// После завершения вывод не меняется.
	n := out.Len()
	bar.AddBytes(10)
	bar.Fail(nil)
	assert.Equal(t, n, out.Len())
}

func TestProgressBar_UnknownTotal(t *testing.T) {
	var out bytes.Buffer
	bar := newProgressBar(&out, "Downloading", -1)
	bar.AddBytes(10)
	bar.Fail(assert.AnError)
	assert.Contains(t, out.String(), "10 B transferred ✗")
}

func TestProgressBar_NilIsNoop(t *testing.T) {
	bar := newProgressBar(nil, "x", 1)
	assert.Nil(t, bar)
	bar.AddBytes(1)
	bar.Finish()
	_, err := progressWriter{bar: bar}.Write([]byte("abc"))
	assert.NoError(t, err)
}

func TestHumanBytes(t *testing.T) {
	assert.Equal(t, "512 B", humanBytes(512))
	assert.Equal(t, "1.5 KB", humanBytes(1536))
	assert.Equal(t, "3.0 MB", humanBytes(3<<20))
}
