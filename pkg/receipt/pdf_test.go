package receipt

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	body, err := Render(Data{
		ReceiptNumber:  "RCP-0123456789AB",
		BookingNumber:  "BK-1700000000-ABCDEFGH",
		TransactionID:  "TXN-1",
		CustomerName:   "Ana Lopez",
		CustomerEmail:  "ana@example.com",
		Destination:    "Cusco",
		TravelDate:     "2030-05-01",
		Travelers:      2,
		PaymentMethod:  "credit_card",
		CardLastDigits: "4242",
		Status:         "completed",
		Currency:       "USD",
		Amount:         decimal.RequireFromString("900"),
		Discount:       decimal.RequireFromString("100"),
		TotalPrice:     decimal.RequireFromString("1000"),
		TotalPaid:      decimal.RequireFromString("900"),
		PaymentDate:    time.Date(2030, 4, 1, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF-")))
	assert.Greater(t, len(body), 1000)
}

func TestRenderConfirmation(t *testing.T) {
	c := Confirmation{
		BookingNumber:    "BK-1700000000-ABCDEFGH",
		CustomerName:     "Ana Lopez",
		CustomerEmail:    "ana@example.com",
		CustomerRole:     "vip",
		Destination:      "Cusco",
		Duration:         4,
		IncludedServices: "Flights, hotel, Machu Picchu tickets",
		TravelDate:       time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC),
		Travelers:        2,
		Status:           "confirmed",
		SpecialRequests:  "Vegetarian meals",
		Currency:         "USD",
		PricePerPerson:   decimal.RequireFromString("500"),
		TotalPrice:       decimal.RequireFromString("1000"),
		TotalPaid:        decimal.RequireFromString("1000"),
		IssuedAt:         time.Date(2030, 4, 1, 10, 0, 0, 0, time.UTC),
	}

	assert.Equal(t, "BOOKING:BK-1700000000-ABCDEFGH|Ana Lopez|Cusco|2030-05-01", c.QRPayload())

	body, err := RenderConfirmation(c)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF-")))
	assert.Greater(t, len(body), 1000)

	t.Run("itinerary", func(t *testing.T) {
		days := c.Days()
		require.Len(t, days, 4)
		assert.Equal(t, "Arrival in Cusco", days[0].Title)
		assert.Equal(t, "Free day in Cusco", days[1].Title)
		assert.Equal(t, "Departure from Cusco", days[3].Title)
		assert.Equal(t, time.Date(2030, 5, 4, 0, 0, 0, 0, time.UTC), days[3].Date)

		body, err := RenderItinerary(c)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(body, []byte("%PDF-")))
	})

	t.Run("day trip", func(t *testing.T) {
		days := Confirmation{Destination: "Sintra", TravelDate: c.TravelDate}.Days()
		require.Len(t, days, 1)
		assert.Equal(t, "Day trip to Sintra", days[0].Title)
	})
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "12.50 USD", money(decimal.RequireFromString("12.5"), "USD"))
}
