package idgen

import (
	"strconv"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNanoIDLengthAndAlphabet(t *testing.T) {
	id := NanoID(12)()
	require.Len(t, id, 12)
	for _, r := range id {
		assert.True(t, strings.ContainsRune(alphabet, r), "unexpected rune %q", r)
	}
}

func TestTimestampedFormat(t *testing.T) {
	id := Timestamped(func() string { return "abc" })()
	prefix, ok := strings.CutSuffix(id, "abc")
	require.True(t, ok, "expected suffix in %q", id)
	assert.Len(t, prefix, 13)
	_, err := strconv.ParseInt(prefix, 10, 64)
	assert.NoError(t, err)
}

func TestDefaultIsUniqueWithinSession(t *testing.T) {
	gen := Default()
	seen := make(map[string]bool, 1000)
	for i := 0; i < 1000; i++ {
		id := gen()
		assert.False(t, seen[id], "duplicate id %q", id)
		seen[id] = true
	}
}

func TestUUIDv7Parses(t *testing.T) {
	id := UUIDv7()()
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestByName(t *testing.T) {
	gen, err := ByName("")
	require.NoError(t, err)
	assert.Regexp(t, `^\d{13}[0-9a-z]{9}$`, gen())

	gen, err = ByName(" UUIDv7 ")
	require.NoError(t, err)
	parsed, err := uuid.Parse(gen())
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())

	_, err = ByName("sequential")
	assert.ErrorContains(t, err, `unknown id strategy "sequential"`)
}
