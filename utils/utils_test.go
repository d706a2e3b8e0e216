package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestContainsString(t *testing.T) {
	assert.True(t, ContainsString([]string{"a", "b"}, "a"))
	assert.False(t, ContainsString([]string{}, "a"))
	assert.False(t, ContainsString([]string{"a", "b"}, "c"))
}

func TestMin(t *testing.T) {
	assert.Equal(t, 1, Min(1, 2))
	assert.Equal(t, 1, Min(2, 1))
	assert.Equal(t, -3, Min(-3, 0))
}

func TestRandomAlphabetString(t *testing.T) {
	str := RandomAlphabetString(6)
	assert.Equal(t, 6, len(str))
	for _, ch := range str {
		assert.True(t, ch >= 'a' && ch <= 'z')
	}
}

func TestDateOnly(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*60*60)
	instant := time.Date(2026, 3, 18, 23, 45, 12, 0, loc)
	day := DateOnly(instant)

	assert.Equal(t, time.Date(2026, 3, 18, 0, 0, 0, 0, time.UTC), day)
	assert.Equal(t, day, DateOnly(day))
}
