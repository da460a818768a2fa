package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSource_SeededIsReproducible(t *testing.T) {
	a := NewSeeded(1, 2)
	b := NewSeeded(1, 2)
	c := NewSeeded(3, 4)

	var diverged bool
	for i := 0; i < 20; i++ {
		x, y, z := a.Float64(), b.Float64(), c.Float64()
		assert.Equal(t, x, y)
		if x != z {
			diverged = true
		}
	}
	assert.True(t, diverged)
}

func TestSource_Range(t *testing.T) {
	s := New()
	for i := 0; i < 1000; i++ {
		f := s.Float64()
		assert.GreaterOrEqual(t, f, 0.0)
		assert.Less(t, f, 1.0)
	}
}
