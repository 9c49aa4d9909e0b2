// Package ticket renders e-tickets as PDF documents.
package ticket

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/phpdave11/gofpdf"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	timeLayout = "02 Jan 2006, 15:04 MST"
	dobLayout  = "02 Jan 2006"
)

// Render returns an A4 e-ticket for t.
func Render(t domain.Ticket) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetTitle("E-ticket "+t.Booking.PNR, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFillColor(0, 82, 147)
	pdf.Rect(0, 0, 210, 28, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetXY(20, 8)
	pdf.CellFormat(110, 10, "Flightdesk E-ticket", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(60, 10, "PNR "+t.Booking.PNR, "", 1, "R", false, 0, "")
	pdf.SetY(36)
	pdf.SetTextColor(0, 0, 0)

	section := func(title string) {
		pdf.SetFillColor(230, 238, 246)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(170, 8, "  "+title, "", 1, "L", true, 0, "")
		pdf.Ln(2)
	}
	row := func(label, value string) {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(50, 7, label, "", 0, "L", false, 0, "")
		pdf.SetTextColor(20, 20, 20)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(120, 7, tr(value), "", 1, "L", false, 0, "")
	}

	f := t.Flight
	section("Flight")
	row("Flight", f.FlightNumber)
	row("Airline", f.Airline)
	row("Route", fmt.Sprintf("%s - %s", f.FromAirport, f.ToAirport))
	row("Departure", f.DepartureTime.Format(timeLayout))
	row("Arrival", f.ArrivalTime.Format(timeLayout))
	row("Duration", t.Duration.String())
	row("Status", StatusLabel(t))
	pdf.Ln(4)

	b := t.Booking
	section("Fare")
	row("Class", titleCase(string(b.FareClass)))
	row("Trip", titleCase(string(b.TripType)))
	row("Passengers", fmt.Sprintf("%d", b.PassengerCount))
	row("Booking status", string(b.Status))
	pdf.Ln(4)

	section("Passengers")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(10, 7, "#", "B", 0, "L", false, 0, "")
	pdf.CellFormat(80, 7, "Name", "B", 0, "L", false, 0, "")
	pdf.CellFormat(45, 7, "Phone", "B", 0, "L", false, 0, "")
	pdf.CellFormat(35, 7, "Date of birth", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for i, p := range b.Passengers {
		dob := ""
		if !p.DateOfBirth.IsZero() {
			dob = p.DateOfBirth.Format(dobLayout)
		}
		pdf.CellFormat(10, 7, fmt.Sprintf("%d", i+1), "", 0, "L", false, 0, "")
		pdf.CellFormat(80, 7, tr(p.FullName), "", 0, "L", false, 0, "")
		pdf.CellFormat(45, 7, tr(p.Phone), "", 0, "L", false, 0, "")
		pdf.CellFormat(35, 7, dob, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFillColor(0, 82, 147)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(50, 9, "  TOTAL", "", 0, "L", true, 0, "")
	pdf.CellFormat(120, 9, FormatTotal(b), "", 1, "L", true, 0, "")

	pdf.SetY(-22)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(150, 150, 150)
	pdf.CellFormat(0, 8, "Please carry a photo ID matching the passenger name.", "", 0, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render e-ticket: %w", err)
	}
	return buf.Bytes(), nil
}

// FormatTotal prints the minor-unit total in major units with two decimals.
func FormatTotal(b domain.Booking) string {
	return domain.FormatMoney(b.Total, b.Currency)
}

func StatusLabel(t domain.Ticket) string {
	return titleCase(string(t.Status))
}

// titleCase turns enum values such as "round_trip" into "Round Trip". A
// Caser holds state, so each call gets its own.
func titleCase(s string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(s, "_", " "))
}
