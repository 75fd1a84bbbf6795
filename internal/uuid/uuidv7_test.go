package uuid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	a := New()
	b := New()

	assert.True(t, IsValid(a))
	assert.NotEqual(t, a, b)
	assert.Equal(t, byte('7'), a[14], "version nibble")
}

func TestIsValid(t *testing.T) {
	assert.False(t, IsValid(""))
	assert.False(t, IsValid("42"))
	assert.True(t, IsValid("018f3b9e-8a1c-7c3d-9f00-112233445566"))
}
