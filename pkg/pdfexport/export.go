// Package pdfexport renders an itinerary document as an A4 PDF.
package pdfexport

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
	"tripwise/pkg/itinerary"
)

const (
	margin       = 15.0
	contentWidth = 210.0 - 2*margin
	qrSize       = 28.0
	mapPixels    = 1200
	lineHeight   = 5.5
)

type Options struct {
	// MapImage is an optional PNG or JPEG overview map, scaled to the page width.
	MapImage []byte
	// ShareURL, when set, is printed as a QR code on the first page.
	ShareURL string
	// FontPath names a TrueType font with CJK glyphs. Without it the core
	// Helvetica font is used and characters outside cp1252 are lost.
	FontPath    string
	GeneratedAt time.Time
	Logger      *zap.Logger
}

// Render returns the PDF bytes for doc.
func Render(doc *itinerary.Document, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, doc, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func Write(w io.Writer, doc *itinerary.Document, opts Options) error {
	if doc == nil || doc.Metadata == nil {
		return itinerary.ErrMetadataRequired
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now()
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin+5)
	pdf.SetTitle("Trip to "+doc.Metadata.Destination, true)

	r := &renderer{pdf: pdf, family: "Helvetica"}
	if opts.FontPath != "" {
		pdf.AddUTF8Font("body", "", opts.FontPath)
		pdf.AddUTF8Font("body", "B", opts.FontPath)
		r.family = "body"
		r.text = func(s string) string { return s }
	} else {
		r.text = pdf.UnicodeTranslatorFromDescriptor("")
	}

	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		r.font("", 8)
		pdf.SetTextColor(130, 130, 130)
		pdf.CellFormat(0, 6, r.text(fmt.Sprintf("Generated %s  |  page %d", opts.GeneratedAt.Format("2006-01-02 15:04"), pdf.PageNo())), "", 0, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	})
	pdf.AddPage()

	if opts.ShareURL != "" {
		r.qr(opts.ShareURL, opts.Logger)
	}
	r.header(doc.Metadata)
	if len(opts.MapImage) > 0 {
		r.mapImage(opts.MapImage, opts.Logger)
	}
	r.summary(doc.Summary)
	r.budget(doc.BudgetBreakdown)
	r.days(doc.DailyItinerary)
	r.accommodation(doc.AccommodationSuggestions)
	r.list("Travel tips", doc.TravelTips)
	r.list("Emergency contacts", doc.EmergencyContacts)

	if pdf.Err() {
		return fmt.Errorf("rendering itinerary PDF: %w", pdf.Error())
	}
	return pdf.Output(w)
}

type renderer struct {
	pdf    *gofpdf.Fpdf
	family string
	text   func(string) string
}

func (r *renderer) font(style string, size float64) {
	r.pdf.SetFont(r.family, style, size)
}

func (r *renderer) heading(title string) {
	r.pdf.Ln(4)
	r.font("B", 14)
	r.pdf.SetFillColor(232, 240, 254)
	r.pdf.CellFormat(contentWidth, 9, r.text(title), "", 1, "L", true, 0, "")
	r.pdf.Ln(2)
}

func (r *renderer) paragraph(s string) {
	r.font("", 10)
	r.pdf.MultiCell(contentWidth, lineHeight, r.text(s), "", "L", false)
}

func (r *renderer) header(m *itinerary.Metadata) {
	r.font("B", 22)
	r.pdf.CellFormat(contentWidth-qrSize, 12, r.text(m.Destination), "", 1, "L", false, 0, "")
	r.font("", 11)
	r.pdf.SetTextColor(90, 90, 90)
	r.pdf.CellFormat(contentWidth-qrSize, 6, r.text("Travel itinerary"), "", 1, "L", false, 0, "")
	r.pdf.SetTextColor(0, 0, 0)
	r.pdf.Ln(3)

	days := m.TotalDays
	if n, err := itinerary.TripDays(m.StartDate, m.EndDate); err == nil {
		days = n
	}
	details := [][2]string{
		{"Dates", fmt.Sprintf("%s to %s", m.StartDate, m.EndDate)},
		{"Duration", fmt.Sprintf("%d days", days)},
		{"Budget", formatMoney(m.Budget)},
		{"Travelers", fmt.Sprintf("%d", m.PeopleCount)},
	}
	for _, d := range details {
		r.font("B", 10)
		r.pdf.CellFormat(28, lineHeight+1, r.text(d[0]+":"), "", 0, "L", false, 0, "")
		r.font("", 10)
		r.pdf.CellFormat(0, lineHeight+1, r.text(d[1]), "", 1, "L", false, 0, "")
	}
	if y := margin + qrSize + 2; r.pdf.GetY() < y {
		r.pdf.SetY(y)
	}
}

func (r *renderer) qr(payload string, log *zap.Logger) {
	png, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err != nil {
		log.Warn("encoding share QR code", zap.Error(err))
		return
	}
	opts := gofpdf.ImageOptions{ImageType: "png"}
	r.pdf.RegisterImageOptionsReader("share-qr", opts, bytes.NewReader(png))
	r.pdf.ImageOptions("share-qr", margin+contentWidth-qrSize, margin, qrSize, qrSize, false, opts, 0, payload)
}

// mapImage scales the overview map to the content width. An undecodable
// image is skipped.
func (r *renderer) mapImage(data []byte, log *zap.Logger) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		log.Warn("decoding static map for PDF, skipping", zap.Error(err))
		return
	}
	if img.Bounds().Dx() > mapPixels {
		img = imaging.Resize(img, mapPixels, 0, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		log.Warn("encoding static map for PDF, skipping", zap.Error(err))
		return
	}

	height := contentWidth * imageRatio(img)
	_, pageHeight := r.pdf.GetPageSize()
	if r.pdf.GetY()+height > pageHeight-margin-5 {
		r.pdf.AddPage()
	}
	opts := gofpdf.ImageOptions{ImageType: "png"}
	r.pdf.RegisterImageOptionsReader("overview-map", opts, &buf)
	r.pdf.Ln(3)
	r.pdf.ImageOptions("overview-map", margin, r.pdf.GetY(), contentWidth, height, true, opts, 0, "")
}

func imageRatio(img image.Image) float64 {
	b := img.Bounds()
	if b.Dx() == 0 {
		return 0
	}
	return float64(b.Dy()) / float64(b.Dx())
}

func (r *renderer) summary(s string) {
	if strings.TrimSpace(s) == "" {
		return
	}
	r.heading("Summary")
	r.paragraph(s)
}

func (r *renderer) budget(b itinerary.BudgetBreakdown) {
	if b.Total() == 0 {
		return
	}
	r.heading("Budget breakdown")
	for _, c := range itinerary.Categories {
		r.font("", 10)
		r.pdf.CellFormat(60, lineHeight+1, r.text(categoryLabel(c)), "B", 0, "L", false, 0, "")
		r.pdf.CellFormat(40, lineHeight+1, r.text(formatMoney(b.Get(c))), "B", 1, "R", false, 0, "")
	}
	r.font("B", 10)
	r.pdf.CellFormat(60, lineHeight+1, r.text("Total"), "", 0, "L", false, 0, "")
	r.pdf.CellFormat(40, lineHeight+1, r.text(formatMoney(b.Total())), "", 1, "R", false, 0, "")
}

func (r *renderer) days(days []itinerary.Day) {
	for _, day := range days {
		title := fmt.Sprintf("Day %d", day.Day)
		if day.Date != "" {
			title += "  " + day.Date
		}
		if day.Theme != "" {
			title += "  -  " + day.Theme
		}
		r.heading(title)
		if len(day.Items) == 0 {
			r.paragraph("No activities planned.")
			continue
		}
		for _, item := range day.Items {
			r.item(item)
		}
	}
}

func (r *renderer) item(item itinerary.Item) {
	r.font("B", 11)
	head := item.Title
	if item.Time != "" {
		head = item.Time + "  " + head
	}
	r.pdf.MultiCell(contentWidth, lineHeight+0.5, r.text(fmt.Sprintf("%s  [%s]", head, item.Type)), "", "L", false)

	r.font("", 10)
	if item.Description != "" {
		r.pdf.MultiCell(contentWidth, lineHeight, r.text(item.Description), "", "L", false)
	}
	var facts []string
	if item.Location != "" {
		facts = append(facts, "Location: "+item.Location)
	}
	if item.Duration != "" {
		facts = append(facts, "Duration: "+item.Duration)
	}
	if item.EstimatedCost > 0 {
		facts = append(facts, "Cost: "+formatMoney(float64(item.EstimatedCost)))
	}
	if len(facts) > 0 {
		r.pdf.SetTextColor(80, 80, 80)
		r.pdf.MultiCell(contentWidth, lineHeight, r.text(strings.Join(facts, "   ")), "", "L", false)
		r.pdf.SetTextColor(0, 0, 0)
	}
	if item.Tips != "" {
		r.pdf.MultiCell(contentWidth, lineHeight, r.text("Tip: "+item.Tips), "", "L", false)
	}
	r.pdf.Ln(2)
}

func (r *renderer) accommodation(list []itinerary.Accommodation) {
	if len(list) == 0 {
		return
	}
	r.heading("Accommodation")
	for _, a := range list {
		r.font("B", 11)
		r.pdf.MultiCell(contentWidth, lineHeight+0.5, r.text(a.Name), "", "L", false)
		r.font("", 10)
		for _, line := range []string{a.Location, a.PriceRange, a.Features, a.BookingTips} {
			if line != "" {
				r.pdf.MultiCell(contentWidth, lineHeight, r.text(line), "", "L", false)
			}
		}
		r.pdf.Ln(2)
	}
}

func (r *renderer) list(title string, lines []string) {
	if len(lines) == 0 {
		return
	}
	r.heading(title)
	r.font("", 10)
	for _, line := range lines {
		r.pdf.MultiCell(contentWidth, lineHeight, r.text("- "+line), "", "L", false)
	}
}

func categoryLabel(c itinerary.Category) string {
	s := string(c)
	return strings.ToUpper(s[:1]) + s[1:]
}

func formatMoney(v float64) string {
	return fmt.Sprintf("%.2f CNY", v)
}
