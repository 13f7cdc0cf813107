// Package certificate renders a printable completion certificate for a
// learner who earned the journey badge.
package certificate

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

var ErrNoBadge = errors.New("certificate requires a minted badge")

// Data is what gets printed on the certificate
type Data struct {
	LearnerName   string    `json:"learner_name"`
	WalletAddress string    `json:"wallet_address"`
	QuizScore     int       `json:"quiz_score"`
	QuestionCount int       `json:"question_count"`
	TokenID       string    `json:"token_id"`
	TxHash        string    `json:"tx_hash"`
	IssuedAt      time.Time `json:"issued_at"`
	Steps         []string  `json:"steps"`
}

// Color represents an RGB color
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Options configures certificate rendering
type Options struct {
	PageSize   string `json:"page_size"`
	Title      string `json:"title"`
	Issuer     string `json:"issuer"`
	FontFamily string `json:"font_family"`
	DateFormat string `json:"date_format"`
	Accent     Color  `json:"accent"`
}

// DefaultOptions returns default certificate options
func DefaultOptions() Options {
	return Options{
		PageSize:   "A4",
		Title:      "Certificate of Completion",
		Issuer:     "SuperLearn",
		FontFamily: "Arial",
		DateFormat: "January 2, 2006",
		Accent:     Color{R: 124, G: 58, B: 237},
	}
}

// Generator renders certificates
type Generator struct {
	options Options
}

// NewGenerator creates a new certificate generator
func NewGenerator(options Options) *Generator {
	return &Generator{options: options}
}

// Generate renders a landscape certificate and returns the PDF bytes
func (g *Generator) Generate(data Data) ([]byte, error) {
	if data.TokenID == "" {
		return nil, ErrNoBadge
	}
	if data.LearnerName == "" {
		data.LearnerName = "Crypto Explorer"
	}
	if data.IssuedAt.IsZero() {
		data.IssuedAt = time.Now()
	}

	o := g.options
	pdf := gofpdf.New("L", "mm", o.PageSize, "")
	pdf.SetTitle(o.Title, true)
	pdf.SetAuthor(o.Issuer, true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	w, h := pdf.GetPageSize()

	// border
	pdf.SetDrawColor(o.Accent.R, o.Accent.G, o.Accent.B)
	pdf.SetLineWidth(2)
	pdf.Rect(10, 10, w-20, h-20, "D")
	pdf.SetLineWidth(0.5)
	pdf.Rect(14, 14, w-28, h-28, "D")

	pdf.SetY(35)
	pdf.SetFont(o.FontFamily, "B", 30)
	pdf.SetTextColor(o.Accent.R, o.Accent.G, o.Accent.B)
	pdf.CellFormat(0, 14, tr(o.Title), "", 1, "C", false, 0, "")

	pdf.Ln(6)
	pdf.SetFont(o.FontFamily, "", 14)
	pdf.SetTextColor(90, 90, 90)
	pdf.CellFormat(0, 8, "This certifies that", "", 1, "C", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont(o.FontFamily, "B", 26)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 12, tr(data.LearnerName), "", 1, "C", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont(o.FontFamily, "", 13)
	pdf.SetTextColor(60, 60, 60)
	pdf.SetX(40)
	pdf.MultiCell(w-80, 7, tr(g.summary(data)), "", "C", false)

	pdf.Ln(6)
	pdf.SetFont(o.FontFamily, "B", 12)
	pdf.CellFormat(0, 7, fmt.Sprintf("Quiz score: %d / %d", data.QuizScore, data.QuestionCount), "", 1, "C", false, 0, "")

	// details block
	pdf.SetY(h - 55)
	pdf.SetFont("Courier", "", 9)
	pdf.SetTextColor(110, 110, 110)
	for _, line := range []string{
		"Badge token: " + data.TokenID,
		"Transaction: " + data.TxHash,
		"Wallet:      " + data.WalletAddress,
	} {
		pdf.CellFormat(0, 5, tr(line), "", 1, "C", false, 0, "")
	}

	pdf.SetY(h - 32)
	pdf.SetFont(o.FontFamily, "I", 11)
	pdf.SetTextColor(90, 90, 90)
	issued := fmt.Sprintf("Issued by %s on %s", o.Issuer, data.IssuedAt.Format(o.DateFormat))
	pdf.CellFormat(0, 6, tr(issued), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render certificate: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *Generator) summary(data Data) string {
	if len(data.Steps) == 0 {
		return "has completed the crypto learning journey."
	}
	return fmt.Sprintf("has completed the crypto learning journey: %s.", joinSteps(data.Steps))
}

func joinSteps(steps []string) string {
	switch len(steps) {
	case 1:
		return steps[0]
	case 2:
		return steps[0] + " and " + steps[1]
	}
	var b bytes.Buffer
	for i, s := range steps {
		switch {
		case i == len(steps)-1:
			b.WriteString("and " + s)
		default:
			b.WriteString(s + ", ")
		}
	}
	return b.String()
}
