package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMediaRefValid(t *testing.T) {
	assert.True(t, MediaRef{}.Valid())
	assert.True(t, MediaRef{ID: "k", URL: "http://host/k"}.Valid())
	assert.False(t, MediaRef{ID: "k"}.Valid())
	assert.False(t, MediaRef{URL: "http://host/k"}.Valid())
}

func TestMediaRefIsZero(t *testing.T) {
	assert.True(t, MediaRef{}.IsZero())
	assert.False(t, MediaRef{ID: "k", URL: "u"}.IsZero())
}
