package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	t.Parallel()

	h, err := HashPassword("rider-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "rider-pass", h)
	assert.True(t, CheckPassword(h, "rider-pass"))
	assert.False(t, CheckPassword(h, "other"))
}
