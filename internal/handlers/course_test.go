package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/logger"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/requestdata"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/services"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// canned certificate service: issuance always succeeds and the
// download returns a fixed PNG payload.
type cannedCertService struct {
	png []byte
}

func (s *cannedCertService) Generate(ctx context.Context, id *requestdata.Identity, courseID uuid.UUID) (*services.CertificateDTO, error) {
	return &services.CertificateDTO{
		ID:                uuid.New(),
		CertificateNumber: "CH-20260314-A1B2C3",
		CourseID:          courseID,
		IssuedAt:          time.Now(),
	}, nil
}

func (s *cannedCertService) Info(ctx context.Context, id *requestdata.Identity, courseID uuid.UUID) (*services.CertificateDTO, error) {
	return nil, nil
}

func (s *cannedCertService) ListMine(ctx context.Context, id *requestdata.Identity) ([]services.CertificateDTO, error) {
	return nil, nil
}

func (s *cannedCertService) Verify(ctx context.Context, number string) (*services.CertificateVerificationDTO, error) {
	return nil, nil
}

func (s *cannedCertService) Download(ctx context.Context, id *requestdata.Identity, courseID uuid.UUID) ([]byte, error) {
	return s.png, nil
}

func TestGenerateCertificateRespondsWithPNG(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}

	payload := append(append([]byte{}, pngMagic...), []byte("fake image body")...)
	handler := NewCourseHandler(log, nil, nil, &cannedCertService{png: payload})

	router := gin.New()
	router.POST("/api/courses/:id/generate-certificate", handler.GenerateCertificate)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/courses/"+uuid.NewString()+"/generate-certificate", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d (%s)", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Content-Type"); got != "image/png" {
		t.Fatalf("content type: want=image/png got=%q", got)
	}
	body := w.Body.Bytes()
	if len(body) < len(pngMagic) || !bytes.Equal(body[:len(pngMagic)], pngMagic) {
		t.Fatalf("response body is not the PNG document (%d bytes)", len(body))
	}
}
