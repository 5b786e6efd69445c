package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalDigestIgnoresKeyOrderAndWhitespace(t *testing.T) {
	a, err := CanonicalDigest([]byte(`{"id":"x","cwd":"/w","n":1}`))
	require.NoError(t, err)
	b, err := CanonicalDigest([]byte("{ \"n\": 1.0,\n \"cwd\": \"/w\", \"id\": \"x\" }"))
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestCanonicalDigestDistinguishesValues(t *testing.T) {
	a, err := CanonicalDigest([]byte(`{"cwd":"/a"}`))
	require.NoError(t, err)
	b, err := CanonicalDigest([]byte(`{"cwd":"/b"}`))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestCanonicalDigestRejectsInvalidJSON(t *testing.T) {
	_, err := CanonicalDigest([]byte(`{"cwd":`))
	assert.Error(t, err)
}
