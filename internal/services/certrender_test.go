package services

import (
	"bytes"
	"image/png"
	"path/filepath"
	"testing"
	"time"
)

func TestRenderCertificatePNG(t *testing.T) {
	data, err := renderCertificatePNG(certificateRenderData{
		Number:      "CH-20260314-A1B2C3",
		StudentName: "Ada Lovelace",
		CourseTitle: "Analytical Engines 101",
		IssuedAt:    time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("renderCertificatePNG: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a decodable PNG: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != certWidth || bounds.Dy() != certHeight {
		t.Fatalf("canvas size: want=%dx%d got=%dx%d", certWidth, certHeight, bounds.Dx(), bounds.Dy())
	}
}

func TestRenderCertificateHonorsFontPathEnv(t *testing.T) {
	// Pointing CERT_FONT_PATH at a missing file must surface an error
	// instead of silently falling back to the embedded face.
	t.Setenv("CERT_FONT_PATH", filepath.Join(t.TempDir(), "missing.ttf"))

	_, err := renderCertificatePNG(certificateRenderData{
		Number:      "CH-20260314-A1B2C3",
		StudentName: "Ada Lovelace",
		CourseTitle: "Analytical Engines 101",
		IssuedAt:    time.Now(),
	})
	if err == nil {
		t.Fatalf("unreadable font path did not fail the render")
	}
}

func TestRenderCertificatePNGHandlesLongTitles(t *testing.T) {
	_, err := renderCertificatePNG(certificateRenderData{
		Number:      "CH-20260314-ZZZZZZ",
		StudentName: "A Student With A Remarkably Long Name Indeed",
		CourseTitle: "An Extremely Verbose Course Title That Keeps Going And Going Well Past The Canvas Edge",
		IssuedAt:    time.Now(),
	})
	if err != nil {
		t.Fatalf("renderCertificatePNG with long strings: %v", err)
	}
}
