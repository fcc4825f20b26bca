package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultPageSize, ClampLimit(0))
	assert.Equal(t, DefaultPageSize, ClampLimit(-1))
	assert.Equal(t, DefaultPageSize, ClampLimit(1000))
	assert.Equal(t, 10, ClampLimit(10))
	assert.Equal(t, DefaultPageSize, ClampLimit(DefaultPageSize))
}
