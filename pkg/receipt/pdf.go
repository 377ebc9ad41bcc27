package receipt

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	qrcode "github.com/skip2/go-qrcode"
)

// Data is everything printed on a payment receipt.
type Data struct {
	ReceiptNumber  string
	BookingNumber  string
	TransactionID  string
	CustomerName   string
	CustomerEmail  string
	Destination    string
	TravelDate     string
	Travelers      int
	PaymentMethod  string
	CardLastDigits string
	Status         string
	Currency       string
	Amount         decimal.Decimal
	Discount       decimal.Decimal
	TotalPrice     decimal.Decimal
	TotalPaid      decimal.Decimal
	PaymentDate    time.Time
}

// Render builds a single-page A4 receipt with a QR code of the booking number.
func Render(d Data) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	pdf.SetAutoPageBreak(false, 0)

	// --- Header ---
	pdf.SetFont("Helvetica", "B", 22)
	pdf.Cell(0, 15, "PAYMENT RECEIPT")
	pdf.Ln(14)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Receipt No: %s", d.ReceiptNumber))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Issued: %s", d.PaymentDate.UTC().Format("2006-01-02 15:04 MST")))
	pdf.Ln(10)

	pdf.SetDrawColor(220, 220, 220)
	pdf.Line(15, pdf.GetY(), 195, pdf.GetY())
	pdf.Ln(8)

	// --- Booking summary + QR ---
	yStart := pdf.GetY()
	pdf.SetFillColor(245, 245, 245)
	pdf.Rect(15, yStart, 120, 50, "F")

	pdf.SetXY(20, yStart+7)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, "BOOKING")
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 12)
	for _, line := range []string{
		fmt.Sprintf("Booking No: %s", d.BookingNumber),
		fmt.Sprintf("Destination: %s", d.Destination),
		fmt.Sprintf("Travel date: %s", d.TravelDate),
		fmt.Sprintf("Travelers: %d", d.Travelers),
	} {
		pdf.SetX(20)
		pdf.Cell(0, 8, line)
		pdf.Ln(6)
	}

	qrBytes, err := qrcode.Encode(d.BookingNumber, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	pdf.RegisterImageOptionsReader("qr", gofpdf.ImageOptions{ImageType: "png"}, bytes.NewReader(qrBytes))
	pdf.ImageOptions("qr", 145, yStart+2, 45, 0, false, gofpdf.ImageOptions{ImageType: "png"}, 0, "")

	pdf.SetY(yStart + 58)

	// --- Customer ---
	drawSectionTitle(pdf, "CUSTOMER")
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, d.CustomerName)
	pdf.Ln(6)
	pdf.Cell(0, 8, d.CustomerEmail)
	pdf.Ln(10)

	// --- Payment ---
	drawSectionTitle(pdf, "PAYMENT")
	method := d.PaymentMethod
	if d.CardLastDigits != "" {
		method = fmt.Sprintf("%s (**** %s)", method, d.CardLastDigits)
	}
	rows := [][2]string{
		{"Method", method},
		{"Transaction", d.TransactionID},
		{"Status", d.Status},
		{"Amount charged", money(d.Amount, d.Currency)},
	}
	if d.Discount.IsPositive() {
		rows = append(rows, [2]string{"VIP discount", money(d.Discount, d.Currency)})
	}
	rows = append(rows,
		[2]string{"Booking total", money(d.TotalPrice, d.Currency)},
		[2]string{"Paid to date", money(d.TotalPaid, d.Currency)},
	)
	drawRows(pdf, rows)

	drawFooter(pdf, "Present the QR code at check-in.")
	return output(pdf)
}

func drawSectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(0, 9, title, "", 1, "L", true, 0, "")
	pdf.Ln(3)
}

func money(v decimal.Decimal, currency string) string {
	return fmt.Sprintf("%s %s", v.StringFixed(2), currency)
}
