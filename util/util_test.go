package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCounter(t *testing.T) {
	c := NewCounter()
	assert.Equal(t, 0, c.Next())
	assert.Equal(t, "M2", c.NextID("M"))
	assert.Equal(t, 2, c.Next())
}
