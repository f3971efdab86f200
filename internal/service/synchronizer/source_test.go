package synchronizer

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestReaderLineSource returns lines without terminators and then io.EOF.
func TestReaderLineSource(t *testing.T) {
	t.Parallel()

	source := NewReaderLineSource(strings.NewReader("abc\r\n\n1.2.4"))

	for _, want := range []string{"abc", "", "1.2.4"} {
		got, err := source.ReadLine()
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := source.ReadLine()
	require.ErrorIs(t, err, io.EOF)
}
