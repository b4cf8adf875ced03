package assert

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type sample struct{}

func TestNotNil(t *testing.T) {
	var p *sample
	require.Panics(t, func() { NotNil(p) })
	require.Panics(t, func() { NotNil(nil) })
	require.NotPanics(t, func() { NotNil(&sample{}) })
}

var reentered bool

func accessor(depth int) {
	NotCircular()
	if depth > 0 {
		reentered = true
		accessor(depth - 1)
	}
}

func TestNotCircular(t *testing.T) {
	require.NotPanics(t, func() { accessor(0) })
	require.Panics(t, func() { accessor(1) })
	require.True(t, reentered)
}
