package workout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAngleWindow_LastTwoMean(t *testing.T) {
	w := newAngleWindow(3, SmoothLastTwoMean)

	// yields from the very first sample
	v, ok := w.push(170)
	assert.True(t, ok)
	assert.Equal(t, 170.0, v)

	v, ok = w.push(100)
	assert.True(t, ok)
	assert.Equal(t, 135.0, v)

	v, ok = w.push(100)
	assert.True(t, ok)
	assert.Equal(t, 100.0, v)

	// capacity 3, oldest sample evicted
	v, ok = w.push(160)
	assert.True(t, ok)
	assert.Equal(t, 130.0, v)
	assert.Equal(t, 3, w.size())
}

func TestAngleWindow_FullWindowMean(t *testing.T) {
	w := newAngleWindow(5, SmoothFullWindowMean)

	for i := 0; i < 4; i++ {
		_, ok := w.push(80)
		assert.False(t, ok, "no value until the window is full")
	}

	v, ok := w.push(80)
	assert.True(t, ok)
	assert.Equal(t, 80.0, v)

	v, ok = w.push(130)
	assert.True(t, ok)
	assert.Equal(t, 90.0, v)
}

func TestAngleWindow_Reset(t *testing.T) {
	w := newAngleWindow(3, SmoothLastTwoMean)
	w.push(100)
	w.push(120)
	w.reset()
	assert.Equal(t, 0, w.size())

	v, ok := w.push(150)
	assert.True(t, ok)
	assert.Equal(t, 150.0, v)
}
