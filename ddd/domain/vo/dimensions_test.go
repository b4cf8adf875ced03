package vo

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateDimensions(t *testing.T) {
	cases := []struct {
		name             string
		w, h, maxW, maxH int
		want             Dimensions
	}{
		{"within bounds", 800, 600, 1200, 1200, Dimensions{800, 600}},
		{"landscape clamped by width", 2400, 1200, 1200, 1200, Dimensions{1200, 600}},
		{"portrait clamped by height", 1000, 4000, 1200, 1200, Dimensions{300, 1200}},
		{"width pass then height pass", 3000, 2000, 1200, 600, Dimensions{900, 600}},
		{"exact bounds", 1200, 1200, 1200, 1200, Dimensions{1200, 1200}},
		{"rounds to nearest", 1000, 333, 500, 500, Dimensions{500, 167}},
		{"thumbnail", 4000, 3000, 150, 150, Dimensions{150, 113}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := CalculateDimensions(tc.w, tc.h, tc.maxW, tc.maxH)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCalculateDimensionsRejectsNonPositive(t *testing.T) {
	inputs := [][4]int{
		{0, 100, 100, 100},
		{100, -1, 100, 100},
		{100, 100, 0, 100},
		{100, 100, 100, -5},
	}
	for _, in := range inputs {
		_, err := CalculateDimensions(in[0], in[1], in[2], in[3])
		assert.ErrorIs(t, err, ErrInvalidDimensions)
	}
}

func TestCalculateDimensionsProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 5000; i++ {
		w, h := rng.Intn(8000)+1, rng.Intn(8000)+1
		maxW, maxH := rng.Intn(2000)+1, rng.Intn(2000)+1

		got, err := CalculateDimensions(w, h, maxW, maxH)
		require.NoError(t, err)

		require.LessOrEqual(t, got.Width, maxW)
		require.LessOrEqual(t, got.Height, maxH)
		require.GreaterOrEqual(t, got.Width, 1)
		require.GreaterOrEqual(t, got.Height, 1)

		if got.Width == w && got.Height == h {
			continue
		}
		// 缩放后 w/h 比例误差不超过一个取整单位
		expectedH := float64(got.Width) * float64(h) / float64(w)
		expectedW := float64(got.Height) * float64(w) / float64(h)
		ok := math.Abs(expectedH-float64(got.Height)) <= 1 || math.Abs(expectedW-float64(got.Width)) <= 1
		require.Truef(t, ok, "aspect drift for %dx%d in %dx%d -> %v", w, h, maxW, maxH, got)
	}
}
