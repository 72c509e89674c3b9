package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoalesceStr(t *testing.T) {
	assert.Equal(t, "b", CoalesceStr("", "b", "c"))
	assert.Equal(t, "", CoalesceStr("", ""))
	assert.Equal(t, "", CoalesceStr())
}

func TestBoolFromPtrWithDefault(t *testing.T) {
	f := false
	assert.True(t, BoolFromPtrWithDefault(true))
	assert.True(t, BoolFromPtrWithDefault(true, nil))
	assert.False(t, BoolFromPtrWithDefault(true, nil, &f))
}
