package env

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCIDFrom(t *testing.T) {
	require.Equal(t, uint16(0x1a2b), CIDFrom("1a2b3c4d"))
	require.Equal(t, uint16(1), CIDFrom("0000ffff"))
	require.NotZero(t, CIDFrom("station-1"))
	require.Equal(t, CIDFrom("station-1"), CIDFrom("station-1"))
	require.NotEqual(t, CIDFrom("station-1"), CIDFrom("station-2"))
}
