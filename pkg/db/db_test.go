package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsDuplicateKeyErr(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm translated", fmt.Errorf("create: %w", gorm.ErrDuplicatedKey), true},
		{"postgres", errors.New(`ERROR: duplicate key value violates unique constraint "ux_invitations_company_email" (SQLSTATE 23505)`), true},
		{"mysql", errors.New("Error 1062 (23000): Duplicate entry"), true},
		{"sqlite", errors.New("UNIQUE constraint failed: invitations.company_id, invitations.email"), true},
		{"other", errors.New("connection refused"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsDuplicateKeyErr(tc.err))
		})
	}
}

func TestPriceFits(t *testing.T) {
	assert.True(t, PriceFits(decimal.RequireFromString("0")))
	assert.True(t, PriceFits(decimal.RequireFromString("9999999999.99")))
	assert.True(t, PriceFits(decimal.RequireFromString("12.50")))
	assert.False(t, PriceFits(decimal.RequireFromString("10000000000")))
	assert.False(t, PriceFits(decimal.RequireFromString("1e11")))
	assert.False(t, PriceFits(decimal.RequireFromString("1.234")))
	assert.False(t, PriceFits(decimal.RequireFromString("-0.01")))
}

func TestIntegerFits(t *testing.T) {
	assert.True(t, IntegerFits(0))
	assert.True(t, IntegerFits(MaxInteger))
	assert.False(t, IntegerFits(MaxInteger+1))
	assert.False(t, IntegerFits(-1))
}
