package slices

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFill(t *testing.T) {
	assert.Equal(t, []string{"a", "a", "a"}, Fill("a", 3))
	assert.Equal(t, []float64{}, Fill(1.0, 0))
}

func TestZeros(t *testing.T) {
	assert.Equal(t, []float64{0, 0}, Zeros[float64](2))
	assert.Equal(t, []int{0, 0, 0}, Zeros[int](3))
}

func TestOnes(t *testing.T) {
	assert.Equal(t, []float64{1, 1}, Ones[float64](2))
	assert.Equal(t, []int{1}, Ones[int](1))
}

func TestMap(t *testing.T) {
	assert.Equal(
		t,
		[]float64{2, 4, 6},
		Map([]int{1, 2, 3}, func(e int) float64 { return 2 * float64(e) }),
	)
}
