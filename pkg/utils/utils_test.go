package utils

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Email  string `validate:"required,email"`
	Amount string `validate:"omitempty,money"`
	Role   string `validate:"omitempty,oneof=client vip admin"`
}

func TestValidateStruct(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		errs := ValidateStruct(sampleRequest{Email: "a@b.io", Amount: "900.00", Role: "vip"})
		assert.Empty(t, errs)
	})

	t.Run("invalid fields are reported", func(t *testing.T) {
		errs := ValidateStruct(sampleRequest{Email: "nope", Amount: "1.234", Role: "root"})
		require.Len(t, errs, 3)
		assert.Equal(t, "Invalid email format", errs["Email"])
		assert.Equal(t, "Must be one of: client, vip, admin", errs["Role"])
		assert.Contains(t, errs, "Amount")
	})

	t.Run("formatted output is sorted", func(t *testing.T) {
		out := FormatValidationErrors(map[string]string{"b": "two", "a": "one"})
		assert.Equal(t, "a: one; b: two", out)
	})
}

func TestIsMoney(t *testing.T) {
	cases := map[string]bool{
		"0":      true,
		"10":     true,
		"10.5":   true,
		"10.55":  true,
		"10.555": false,
		"-1":     false,
		"abc":    false,
		"":       false,
	}
	for in, want := range cases {
		assert.Equal(t, want, isMoney(in), in)
	}
}

func TestGenerateBookingNumber(t *testing.T) {
	now := time.Unix(1700000000, 0)
	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		n := GenerateBookingNumber(now)
		assert.True(t, strings.HasPrefix(n, "BK-1700000000-"), n)
		seen[n] = struct{}{}
	}
	assert.Len(t, seen, 200)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("s3cret!", hash))
	assert.False(t, CheckPasswordHash("other", hash))
}

func TestDates(t *testing.T) {
	d, err := ParseDate("2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, d.Location())

	today := Today(time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC))
	assert.True(t, today.Equal(d))

	_, err = ParseDate("01/03/2026")
	assert.Error(t, err)
}

func TestUserContext(t *testing.T) {
	id := uuid.New()
	ctx := SetUserContext(context.Background(), id, "vip")

	got, ok := GetUserIDFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, id, got)

	role, ok := GetRoleFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "vip", role)

	_, ok = GetUserIDFromContext(context.Background())
	assert.False(t, ok)
}

func TestPagination(t *testing.T) {
	assert.Equal(t, 3, CalculateTotalPages(21, 10))
	assert.Equal(t, 0, CalculateTotalPages(0, 10))
	assert.Equal(t, 20, CalculateOffset(3, 10))
	assert.Equal(t, 0, CalculateOffset(0, 10))
}

func TestDescribeUserAgent(t *testing.T) {
	assert.Equal(t, "unknown", DescribeUserAgent("  "))

	desktop := DescribeUserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	assert.True(t, strings.HasPrefix(desktop, "Chrome 120"), desktop)
	assert.Contains(t, desktop, "Windows")
	assert.True(t, strings.HasSuffix(desktop, "(desktop)"), desktop)

	bot := DescribeUserAgent("Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)")
	assert.True(t, strings.HasPrefix(bot, "bot "), bot)
}

func TestLoadConfigCORSOrigins(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	t.Run("comma separated list", func(t *testing.T) {
		t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com ,")
		config, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, config.App.CORSOrigins)
	})

	t.Run("default allows any origin", func(t *testing.T) {
		config, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, []string{"*"}, config.App.CORSOrigins)
	})
}
