package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterlaceSimple(t *testing.T) {
	out := Interlace([]int{1, 2, 3, 4}, []int{5, 6, 7, 8})
	assert.Equal(t, []int{1, 5, 2, 6, 3, 7, 4, 8}, out)
}

func TestInterlaceUnbalanced(t *testing.T) {
	out := Interlace([]int{1, 2, 3}, []int{4, 5, 6, 7, 8})
	assert.Equal(t, []int{1, 4, 2, 5, 3, 6, 7, 8}, out)

	out = Interlace([]int{4, 5, 6, 7, 8}, []int{1, 2, 3})
	assert.Equal(t, []int{4, 1, 5, 2, 6, 3, 7, 8}, out)
}

func TestInterlaceEmpty(t *testing.T) {
	assert.Empty(t, Interlace([]float32(nil), nil))
	assert.Equal(t, []int{1, 2}, Interlace([]int{1, 2}, nil))
}

func TestDeinterlaceSimple(t *testing.T) {
	first, second := Deinterlace([]int{1, 5, 2, 6, 3, 7, 4, 8})
	assert.Equal(t, []int{1, 2, 3, 4}, first)
	assert.Equal(t, []int{5, 6, 7, 8}, second)
}

func TestDeinterlaceOdd(t *testing.T) {
	first, second := Deinterlace([]int{1, 2, 3, 4, 5})
	assert.Equal(t, []int{1, 3, 5}, first)
	assert.Equal(t, []int{2, 4}, second)
}
