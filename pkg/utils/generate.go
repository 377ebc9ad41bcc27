package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v3"
)

const DateLayout = "2006-01-02"

// ==================== IDENTIFIERS ====================

// GenerateBookingNumber returns BK-<unix seconds>-<random suffix>. The suffix keeps
// numbers distinct for bookings created within the same second; uniqueness is still
// enforced by the bookings_booking_number_key constraint.
func GenerateBookingNumber(now time.Time) string {
	suffix := strings.ToUpper(shortuuid.New()[:8])
	return fmt.Sprintf("BK-%d-%s", now.Unix(), suffix)
}

func GenerateTransactionID() string {
	return "TXN-" + uuid.NewString()
}

func ReceiptNumber(paymentID uuid.UUID) string {
	return "RCP-" + strings.ToUpper(strings.ReplaceAll(paymentID.String(), "-", "")[:12])
}

// ==================== PARSING ====================

func ParseInt(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

// ParseDate parses a YYYY-MM-DD date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// Today returns the current date truncated to midnight UTC.
func Today(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
