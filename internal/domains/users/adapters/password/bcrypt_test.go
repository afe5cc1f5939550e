package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcrypt(t *testing.T) {
	h := Bcrypt{Cost: bcrypt.MinCost}
	hash, err := h.Hash("canteen-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "canteen-pass", hash)
	assert.True(t, h.Compare(hash, "canteen-pass"))
	assert.False(t, h.Compare(hash, "Canteen-pass"))
	assert.False(t, h.Compare("not-a-hash", "canteen-pass"))
}
