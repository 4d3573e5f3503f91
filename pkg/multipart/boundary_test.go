package multipart

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateBoundary(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		b := GenerateBoundary()
		assert.Len(t, b, BoundaryLength)
		assert.False(t, strings.ContainsAny(b, "=/"), "boundary %q", b)
		seen[b] = struct{}{}
	}
	assert.Len(t, seen, 200)
}

func TestBoundary(t *testing.T) {
	b, err := Boundary(contentTypeHeader(`multipart/mixed; boundary="abc def"`))
	require.NoError(t, err)
	assert.Equal(t, "abc def", b)

	b, err = Boundary(contentTypeHeader(ContentType("form-data", "AaB03x")))
	require.NoError(t, err)
	assert.Equal(t, "AaB03x", b)

	_, err = Boundary(contentTypeHeader("image/gif"))
	assert.ErrorIs(t, err, ErrNotMultipart)
}

func TestIsDecodeError(t *testing.T) {
	assert.True(t, IsDecodeError(ErrEOFInPart))
	assert.False(t, IsDecodeError(nil))
	assert.False(t, IsDecodeError(&IOError{Op: "read", Err: assert.AnError}))
}
