package utils

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestCalculateHash(t *testing.T) {
	const abcHash = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"

	got, err := CalculateHash(strings.NewReader("abc"))
	require.NoError(t, err)
	assert.Equal(t, abcHash, got)
	assert.Equal(t, abcHash, HashBytes([]byte("abc")))

	_, err = CalculateHash(failingReader{})
	assert.ErrorContains(t, err, "disk gone")
}
