package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	p := NewPagination(45, 2, 20)
	assert.Equal(t, 45, p.Total)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 3, p.Pages)
	assert.Equal(t, 20, p.Limit)
	assert.Equal(t, 20, p.Offset())

	// Exact multiple
	assert.Equal(t, 2, NewPagination(40, 1, 20).Pages)

	// Empty set still reports one page
	assert.Equal(t, 1, NewPagination(0, 1, 20).Pages)

	// Degenerate inputs clamp instead of dividing by zero
	p = NewPagination(10, 0, 0)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 1, p.Limit)
}

func TestRangeLabel(t *testing.T) {
	// (page-1)*limit+1 to min(page*limit, total) of total
	assert.Equal(t, "1 to 20 of 45", NewPagination(45, 1, 20).RangeLabel())
	assert.Equal(t, "21 to 40 of 45", NewPagination(45, 2, 20).RangeLabel())
	assert.Equal(t, "41 to 45 of 45", NewPagination(45, 3, 20).RangeLabel())
	assert.Equal(t, "0 to 0 of 0", NewPagination(0, 1, 20).RangeLabel())
}

func TestValidatePassword(t *testing.T) {
	assert.ErrorIs(t, ValidatePassword("12345", "12345"), ErrPasswordTooShort)
	assert.ErrorIs(t, ValidatePassword("123456", "654321"), ErrPasswordMismatch)
	assert.NoError(t, ValidatePassword("123456", "123456"))
}

func TestIsOTPFormat(t *testing.T) {
	assert.True(t, IsOTPFormat("0412"))
	assert.False(t, IsOTPFormat("123"))
	assert.False(t, IsOTPFormat("12345"))
	assert.False(t, IsOTPFormat("12a4"))
	assert.False(t, IsOTPFormat(""))
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse")
	assert.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$")

	ok, err := VerifyPassword("correct-horse", hash)
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong-horse", hash)
	assert.NoError(t, err)
	assert.False(t, ok)

	_, err = VerifyPassword("x", "not-a-hash")
	assert.Error(t, err)
}
