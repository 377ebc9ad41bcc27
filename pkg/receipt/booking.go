package receipt

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	qrcode "github.com/skip2/go-qrcode"
)

// Confirmation is everything printed on a booking confirmation and itinerary.
type Confirmation struct {
	BookingNumber    string
	CustomerName     string
	CustomerEmail    string
	CustomerRole     string
	Destination      string
	Duration         int
	IncludedServices string
	TravelDate       time.Time
	Travelers        int
	Status           string
	SpecialRequests  string
	Currency         string
	PricePerPerson   decimal.Decimal
	TotalPrice       decimal.Decimal
	TotalPaid        decimal.Decimal
	IssuedAt         time.Time
}

// QRPayload is the text encoded in the confirmation QR code.
func (c Confirmation) QRPayload() string {
	return strings.Join([]string{
		"BOOKING:" + c.BookingNumber,
		c.CustomerName,
		c.Destination,
		c.TravelDate.Format("2006-01-02"),
	}, "|")
}

// Day is one row of an itinerary.
type Day struct {
	Number int
	Date   time.Time
	Title  string
}

// Days lays the trip out from the travel date, one entry per day of the
// package duration. A zero duration still yields the travel day.
func (c Confirmation) Days() []Day {
	n := max(c.Duration, 1)
	days := make([]Day, 0, n)
	for i := 0; i < n; i++ {
		title := "Free day in " + c.Destination
		switch {
		case n == 1:
			title = "Day trip to " + c.Destination
		case i == 0:
			title = "Arrival in " + c.Destination
		case i == n-1:
			title = "Departure from " + c.Destination
		}
		days = append(days, Day{Number: i + 1, Date: c.TravelDate.AddDate(0, 0, i), Title: title})
	}
	return days
}

var confirmationTerms = []string{
	"Bookings are confirmed once fully paid.",
	"Cancellations are only possible before the travel date.",
	"Refunds are issued to the original payment method.",
	"Bring an ID document that matches the booking name.",
}

// RenderConfirmation builds the booking confirmation with a QR code of QRPayload.
func RenderConfirmation(c Confirmation) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	pdf.SetAutoPageBreak(false, 0)

	// --- Header ---
	pdf.SetFont("Helvetica", "B", 22)
	pdf.Cell(0, 15, "BOOKING CONFIRMATION")
	pdf.Ln(14)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Booking No: %s", c.BookingNumber))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Issued: %s", c.IssuedAt.UTC().Format("2006-01-02 15:04 MST")))
	pdf.Ln(10)

	pdf.SetDrawColor(220, 220, 220)
	pdf.Line(15, pdf.GetY(), 195, pdf.GetY())
	pdf.Ln(8)

	// --- Customer + QR ---
	yStart := pdf.GetY()
	pdf.SetFillColor(245, 245, 245)
	pdf.Rect(15, yStart, 120, 40, "F")

	pdf.SetXY(20, yStart+7)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, "CUSTOMER")
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 12)
	for _, line := range []string{c.CustomerName, c.CustomerEmail, "Membership: " + c.CustomerRole} {
		pdf.SetX(20)
		pdf.Cell(0, 8, line)
		pdf.Ln(6)
	}

	qrBytes, err := qrcode.Encode(c.QRPayload(), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	pdf.RegisterImageOptionsReader("qr", gofpdf.ImageOptions{ImageType: "png"}, bytes.NewReader(qrBytes))
	pdf.ImageOptions("qr", 145, yStart, 45, 0, false, gofpdf.ImageOptions{ImageType: "png"}, 0, "")

	pdf.SetY(yStart + 50)

	// --- Package ---
	drawSectionTitle(pdf, "PACKAGE")
	drawRows(pdf, [][2]string{
		{"Destination", c.Destination},
		{"Duration", fmt.Sprintf("%d days", c.Duration)},
	})
	if c.IncludedServices != "" {
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, "Includes: "+c.IncludedServices, "", "L", false)
	}
	pdf.Ln(4)

	// --- Booking ---
	drawSectionTitle(pdf, "BOOKING")
	rows := [][2]string{
		{"Travel date", c.TravelDate.Format("2006-01-02")},
		{"Travelers", fmt.Sprintf("%d", c.Travelers)},
		{"Status", strings.ToUpper(c.Status)},
	}
	if c.SpecialRequests != "" {
		rows = append(rows, [2]string{"Special requests", c.SpecialRequests})
	}
	drawRows(pdf, rows)
	pdf.Ln(4)

	// --- Payment summary ---
	drawSectionTitle(pdf, "PAYMENT SUMMARY")
	drawRows(pdf, [][2]string{
		{"Price per person", money(c.PricePerPerson, c.Currency)},
		{"Travelers", fmt.Sprintf("x %d", c.Travelers)},
		{"Total", money(c.TotalPrice, c.Currency)},
		{"Paid to date", money(c.TotalPaid, c.Currency)},
	})
	pdf.Ln(4)

	// --- Terms ---
	drawSectionTitle(pdf, "TERMS AND CONDITIONS")
	pdf.SetFont("Helvetica", "", 10)
	for _, term := range confirmationTerms {
		pdf.Cell(0, 6, "- "+term)
		pdf.Ln(5)
	}

	drawFooter(pdf, "Present this confirmation and the QR code at check-in.")
	return output(pdf)
}

// RenderItinerary builds a day-by-day plan of the trip.
func RenderItinerary(c Confirmation) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 22)
	pdf.Cell(0, 15, "TRAVEL ITINERARY")
	pdf.Ln(14)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("%s  |  Booking No: %s", c.Destination, c.BookingNumber))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("%s, %d traveler(s)", c.CustomerName, c.Travelers))
	pdf.Ln(10)

	drawSectionTitle(pdf, "SCHEDULE")
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(250, 250, 250)
	pdf.CellFormat(20, 8, "Day", "B", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, "Date", "B", 0, "L", false, 0, "")
	pdf.CellFormat(0, 8, "Plan", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	for i, day := range c.Days() {
		fill := i%2 == 1
		pdf.CellFormat(20, 8, fmt.Sprintf("%d", day.Number), "", 0, "L", fill, 0, "")
		pdf.CellFormat(40, 8, day.Date.Format("Mon 2006-01-02"), "", 0, "L", fill, 0, "")
		pdf.CellFormat(0, 8, day.Title, "", 1, "L", fill, 0, "")
	}

	if c.IncludedServices != "" {
		pdf.Ln(6)
		drawSectionTitle(pdf, "INCLUDED")
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, c.IncludedServices, "", "L", false)
	}

	return output(pdf)
}

func drawRows(pdf *gofpdf.Fpdf, rows [][2]string) {
	pdf.SetFont("Helvetica", "", 12)
	for _, row := range rows {
		pdf.CellFormat(60, 8, row[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 8, row[1], "", 1, "L", false, 0, "")
	}
}

func drawFooter(pdf *gofpdf.Fpdf, text string) {
	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(15, 285, 195, 285)
	pdf.SetY(288)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.CellFormat(0, 8, text, "", 0, "C", false, 0, "")
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
