package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(s string) *string { return &s }

func TestJoinName(t *testing.T) {
	assert.Equal(t, "Alice Smith", JoinName(ptr("Alice"), ptr("Smith")))
	assert.Equal(t, "Alice", JoinName(ptr("Alice"), nil))
	assert.Equal(t, "Smith", JoinName(nil, ptr("Smith")))
	assert.Equal(t, "", JoinName(nil, nil))
	assert.Equal(t, "", JoinName(ptr("  "), ptr("")))
	assert.Equal(t, "Alice Smith", JoinName(ptr(" Alice "), ptr(" Smith ")))
}

func TestSplitName(t *testing.T) {
	first, last := SplitName(ptr("Alice Smith"))
	if assert.NotNil(t, first) {
		assert.Equal(t, "Alice", *first)
	}
	if assert.NotNil(t, last) {
		assert.Equal(t, "Smith", *last)
	}

	first, last = SplitName(ptr("Alice"))
	if assert.NotNil(t, first) {
		assert.Equal(t, "Alice", *first)
	}
	assert.Nil(t, last)

	// Everything after the first token becomes the last name.
	first, last = SplitName(ptr("Mary Jane Watson"))
	if assert.NotNil(t, first) {
		assert.Equal(t, "Mary", *first)
	}
	if assert.NotNil(t, last) {
		assert.Equal(t, "Jane Watson", *last)
	}

	first, last = SplitName(nil)
	assert.Nil(t, first)
	assert.Nil(t, last)

	first, last = SplitName(ptr("   "))
	assert.Nil(t, first)
	assert.Nil(t, last)
}
