package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hashed, err := HashPassword("pw12345")
	require.NoError(t, err)
	require.NotEqual(t, "pw12345", hashed)

	require.True(t, CheckPassword(hashed, "pw12345"))
	require.False(t, CheckPassword(hashed, "pw12346"))
	require.False(t, CheckPassword("not-a-hash", "pw12345"))
}

func TestHashesAreSalted(t *testing.T) {
	a, err := HashPassword("pw12345")
	require.NoError(t, err)
	b, err := HashPassword("pw12345")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}
