package common

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWipeByteArray(t *testing.T) {
	b := []byte("hunter2")
	WipeByteArray(b)
	require.Equal(t, make([]byte, 7), b)

	// nil must not panic
	WipeByteArray(nil)
}
