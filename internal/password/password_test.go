package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashVerifyRoundtrip(t *testing.T) {
	digest, err := Hash("s3cret-pass")
	require.NoError(t, err)
	require.NotEmpty(t, digest)

	assert.True(t, Verify("s3cret-pass", digest))
	assert.False(t, Verify("wrong-pass", digest))
}

func TestHashProducesDistinctDigests(t *testing.T) {
	first, err := Hash("same-password")
	require.NoError(t, err)
	second, err := Hash("same-password")
	require.NoError(t, err)

	// Fresh salt per call: the digests differ even for identical input.
	assert.NotEqual(t, first, second)
	assert.True(t, Verify("same-password", first))
	assert.True(t, Verify("same-password", second))
}

func TestVerifyMalformedDigest(t *testing.T) {
	for _, digest := range []string{"", "not-a-digest", "$2a$garbage", "$9z$10$short"} {
		assert.False(t, Verify("anything", digest), "digest %q", digest)
	}
}
