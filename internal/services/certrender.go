package services

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	certWidth  = 1200
	certHeight = 850
)

type certificateRenderData struct {
	Number      string
	StudentName string
	CourseTitle string
	IssuedAt    time.Time
}

// renderCertificatePNG draws the downloadable certificate. The font is
// taken from CERT_FONT_PATH when set, otherwise the embedded Go
// Regular face is used.
func renderCertificatePNG(data certificateRenderData) ([]byte, error) {
	titleFace, err := certFontFace(64)
	if err != nil {
		return nil, err
	}
	nameFace, err := certFontFace(48)
	if err != nil {
		return nil, err
	}
	bodyFace, err := certFontFace(28)
	if err != nil {
		return nil, err
	}
	smallFace, err := certFontFace(20)
	if err != nil {
		return nil, err
	}

	dc := gg.NewContext(certWidth, certHeight)
	dc.SetHexColor("#FFFFFF")
	dc.Clear()

	// Double border.
	dc.SetHexColor("#1F3A5F")
	dc.SetLineWidth(10)
	dc.DrawRectangle(30, 30, certWidth-60, certHeight-60)
	dc.Stroke()
	dc.SetLineWidth(2)
	dc.DrawRectangle(50, 50, certWidth-100, certHeight-100)
	dc.Stroke()

	cx := float64(certWidth) / 2

	dc.SetFontFace(titleFace)
	dc.SetHexColor("#1F3A5F")
	drawCentered(dc, "Certificate of Completion", cx, 180)

	dc.SetFontFace(bodyFace)
	dc.SetHexColor("#333333")
	drawCentered(dc, "This certifies that", cx, 300)

	dc.SetFontFace(nameFace)
	dc.SetHexColor("#0B2545")
	drawCentered(dc, data.StudentName, cx, 390)

	dc.SetFontFace(bodyFace)
	dc.SetHexColor("#333333")
	drawCentered(dc, "has successfully completed the course", cx, 470)

	dc.SetFontFace(nameFace)
	dc.SetHexColor("#0B2545")
	drawCentered(dc, data.CourseTitle, cx, 560)

	dc.SetFontFace(bodyFace)
	drawCentered(dc, "Issued on "+data.IssuedAt.Format("January 2, 2006"), cx, 660)

	dc.SetFontFace(smallFace)
	dc.SetHexColor("#666666")
	drawCentered(dc, "Certificate No: "+data.Number, cx, 740)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode certificate: %w", err)
	}
	return buf.Bytes(), nil
}

func drawCentered(dc *gg.Context, text string, cx, y float64) {
	tw, _ := dc.MeasureString(text)
	dc.DrawString(text, cx-tw/2, y)
}

func certFontFace(size float64) (font.Face, error) {
	fontBytes := goregular.TTF
	if fontPath := strings.TrimSpace(os.Getenv("CERT_FONT_PATH")); fontPath != "" {
		loaded, err := os.ReadFile(fontPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read font file: %w", err)
		}
		fontBytes = loaded
	}
	parsedFont, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	return truetype.NewFace(parsedFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}
