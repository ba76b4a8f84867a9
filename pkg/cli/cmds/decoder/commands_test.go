package decoder

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/track.go/pkg/track"
)

func TestParseArgs(t *testing.T) {
	vals, format, err := parseArgs([]string{"3", "0x1d", "dcc28"}, "ADDR", "CV")
	require.NoError(t, err)
	require.Equal(t, []uint32{3, 29}, vals)
	require.Equal(t, track.FormatDCC28, format)

	vals, format, err = parseArgs([]string{"1", "255"}, "CV", "VALUE")
	require.NoError(t, err)
	require.Equal(t, []uint32{1, 255}, vals)
	require.Equal(t, track.FormatUnknown, format)

	_, _, err = parseArgs([]string{"3"}, "ADDR", "CV")
	require.EqualError(t, err, "CV required")
	_, _, err = parseArgs([]string{"1", "256"}, "CV", "VALUE")
	require.Error(t, err)
	_, _, err = parseArgs([]string{"x"}, "CV")
	require.Error(t, err)
	_, _, err = parseArgs([]string{"3", "1", "dcc"}, "ADDR", "CV")
	require.Error(t, err)
}
