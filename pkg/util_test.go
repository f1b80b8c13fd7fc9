package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRandomString(t *testing.T) {
	s1, err := GenerateRandomString(35)
	require.NoError(t, err)
	s2, err := GenerateRandomString(35)
	require.NoError(t, err)

	assert.NotEmpty(t, s1)
	assert.NotEmpty(t, s2)
	assert.NotEqual(t, s1, s2)
}

func TestBytesToString(t *testing.T) {
	assert.Equal(t, "arise", BytesToString([]byte("arise")))
	assert.Equal(t, "", BytesToString(nil))
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("shadow-monarch")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("shadow-monarch", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}
