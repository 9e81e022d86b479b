package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ivan@acme.test", NormalizeEmail("  Ivan@Acme.Test  "))
	assert.Equal(t, "", NormalizeEmail("   "))
}

func TestSplitFullName(t *testing.T) {
	first, last, err := SplitFullName("Иван Иванов")
	require.NoError(t, err)
	assert.Equal(t, "Иван", first)
	assert.Equal(t, "Иванов", last)

	first, last, err = SplitFullName("Madonna")
	require.NoError(t, err)
	assert.Equal(t, "Madonna", first)
	assert.Equal(t, "", last)

	first, last, err = SplitFullName("  Анна  Мария  Петрова  ")
	require.NoError(t, err)
	assert.Equal(t, "Анна", first)
	assert.Equal(t, "Мария Петрова", last, "всё после имени уходит в фамилию")

	_, _, err = SplitFullName("   ")
	assert.Error(t, err)
}

func TestClampLeaveDays(t *testing.T) {
	assert.Equal(t, 0.0, ClampLeaveDays(-5))
	assert.Equal(t, 0.0, ClampLeaveDays(0))
	assert.Equal(t, 12.5, ClampLeaveDays(12.5))
	assert.Equal(t, 365.0, ClampLeaveDays(365))
	assert.Equal(t, 365.0, ClampLeaveDays(400))
}

func TestParseDate(t *testing.T) {
	parsed, err := ParseDate("2026-09-14")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC), parsed)

	parsed, err = ParseDate("14.09.2026")
	require.NoError(t, err)
	assert.Equal(t, 14, parsed.Day())

	parsed, err = ParseDate(" 2026-09-14T10:30:00Z ")
	require.NoError(t, err)
	assert.Equal(t, 10, parsed.Hour())

	_, err = ParseDate("сентябрь")
	assert.Error(t, err)
}
