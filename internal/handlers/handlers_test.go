package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Funya-okina/sightseeingLog/internal/ai"
	"github.com/Funya-okina/sightseeingLog/internal/handlers"
	"github.com/Funya-okina/sightseeingLog/internal/models"
)

// mockShioriService is a test double for handlers.ShioriGenerator.
type mockShioriService struct {
	generate func(ctx context.Context, details map[string]any, images map[string]string) ([]byte, error)
}

func (m *mockShioriService) Generate(ctx context.Context, details map[string]any, images map[string]string) ([]byte, error) {
	return m.generate(ctx, details, images)
}

var _ handlers.ShioriGenerator = (*mockShioriService)(nil)

// mockExtractor is a test double for handlers.ReceiptExtractor.
type mockExtractor struct {
	extract func(ctx context.Context, image []byte, mimeType string) (*models.ReceiptExtraction, error)
}

func (m *mockExtractor) ExtractReceipt(ctx context.Context, image []byte, mimeType string) (*models.ReceiptExtraction, error) {
	return m.extract(ctx, image, mimeType)
}

var _ handlers.ReceiptExtractor = (*mockExtractor)(nil)

// mockGeocoder is a test double for handlers.GeocodeLookup.
type mockGeocoder struct {
	lookup func(ctx context.Context, lat, lon string) ([]byte, error)
}

func (m *mockGeocoder) Lookup(ctx context.Context, lat, lon string) ([]byte, error) {
	return m.lookup(ctx, lat, lon)
}

var _ handlers.GeocodeLookup = (*mockGeocoder)(nil)

// pngHeader is a minimal valid PNG signature so DetectContentType sees image/png.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

// multipartBody builds a multipart request body with a details field and
// optional photo files.
func multipartBody(t *testing.T, details string, photos map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if details != "" {
		require.NoError(t, w.WriteField("details", details))
	}
	for name, data := range photos {
		fw, err := w.CreateFormFile("photos", name)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

// TestShioriHandler_success verifies the PDF attachment response and that
// uploaded photos reach the service keyed by clientId.
func TestShioriHandler_success(t *testing.T) {
	var gotImages map[string]string
	svc := &mockShioriService{
		generate: func(ctx context.Context, details map[string]any, images map[string]string) ([]byte, error) {
			gotImages = images
			assert.Equal(t, "卒業旅行", details["purpose"])
			return []byte("%PDF-fake"), nil
		},
	}
	h := handlers.NewShioriHandler(svc, 1<<20)

	body, contentType := multipartBody(t, `{"purpose":"卒業旅行"}`, map[string][]byte{
		"p1.png": pngHeader,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/shiori", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Generate(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Equal(t, "%PDF-fake", rec.Body.String())
	require.Contains(t, gotImages, "p1")
	assert.Contains(t, gotImages["p1"], "data:image/png;base64,")
}

// TestShioriHandler_badRequests verifies the client-error paths.
func TestShioriHandler_badRequests(t *testing.T) {
	svc := &mockShioriService{
		generate: func(ctx context.Context, details map[string]any, images map[string]string) ([]byte, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}
	h := handlers.NewShioriHandler(svc, 1<<20)

	// Missing details field.
	body, contentType := multipartBody(t, "", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/shiori", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.Generate(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assertErrorCode(t, rec, handlers.CodeBadRequest)

	// Details is not JSON.
	body, contentType = multipartBody(t, "not json", nil)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/shiori", body)
	req.Header.Set("Content-Type", contentType)
	rec = httptest.NewRecorder()
	h.Generate(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assertErrorCode(t, rec, handlers.CodeBadRequest)
}

// TestShioriHandler_errorClassification verifies the stable error codes for
// pipeline failures.
func TestShioriHandler_errorClassification(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"misconfigured", fmt.Errorf("cover: %w", ai.ErrMissingCredentials), http.StatusInternalServerError, handlers.CodeMisconfigured},
		{"unprocessable", fmt.Errorf("infer: %w", ai.ErrUnprocessable), http.StatusUnprocessableEntity, handlers.CodeUnprocessable},
		{"upstream", errors.New("render blew up"), http.StatusBadGateway, handlers.CodeUpstreamError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockShioriService{
				generate: func(ctx context.Context, details map[string]any, images map[string]string) ([]byte, error) {
					return nil, tc.err
				},
			}
			h := handlers.NewShioriHandler(svc, 1<<20)

			body, contentType := multipartBody(t, `{}`, nil)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/shiori", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()

			h.Generate(rec, req)

			require.Equal(t, tc.wantStatus, rec.Code)
			assertErrorCode(t, rec, tc.wantCode)
		})
	}
}

// TestShioriHandler_releasesUploadedFiles verifies that photo uploads spilled
// to disk by the multipart parser are removed once the response is written.
func TestShioriHandler_releasesUploadedFiles(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("TMPDIR", tmpDir)

	svc := &mockShioriService{
		generate: func(ctx context.Context, details map[string]any, images map[string]string) ([]byte, error) {
			return []byte("%PDF-fake"), nil
		},
	}
	// maxMemory of 1 byte forces every file part onto disk.
	h := handlers.NewShioriHandler(svc, 1)

	photo := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 32<<10)...)
	body, contentType := multipartBody(t, `{}`, map[string][]byte{"p1.png": photo})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/shiori", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Generate(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	entries, err := os.ReadDir(tmpDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// receiptBody builds a multipart body with a single image field.
func receiptBody(t *testing.T, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("image", "receipt.png")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

// TestReceiptHandler_success verifies the structured extraction response.
func TestReceiptHandler_success(t *testing.T) {
	ext := &mockExtractor{
		extract: func(ctx context.Context, image []byte, mimeType string) (*models.ReceiptExtraction, error) {
			assert.Equal(t, "image/png", mimeType)
			return &models.ReceiptExtraction{
				Items:     []models.ReceiptItem{{Name: "コーヒー", Amount: 450}},
				StoreName: "喫茶店",
			}, nil
		},
	}
	h := handlers.NewReceiptHandler(ext)

	body, contentType := receiptBody(t, pngHeader)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/receipt", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Extract(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got models.ReceiptExtraction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "喫茶店", got.StoreName)
}

// TestReceiptHandler_unsupportedType verifies the MIME allow-list.
func TestReceiptHandler_unsupportedType(t *testing.T) {
	ext := &mockExtractor{
		extract: func(ctx context.Context, image []byte, mimeType string) (*models.ReceiptExtraction, error) {
			t.Fatal("extractor must not be called")
			return nil, nil
		},
	}
	h := handlers.NewReceiptHandler(ext)

	body, contentType := receiptBody(t, []byte("%PDF-1.4 definitely not an image"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/receipt", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Extract(rec, req)

	require.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assertErrorCode(t, rec, handlers.CodeUnsupportedMedia)
}

// TestReceiptHandler_heicUpload verifies that an ISO-BMFF upload with a
// HEIF-family ftyp brand passes the allow-list as image/heic even though the
// standard sniffer cannot name it.
func TestReceiptHandler_heicUpload(t *testing.T) {
	heicHeader := append([]byte{0, 0, 0, 0x18}, []byte("ftypheic")...)
	heicHeader = append(heicHeader, bytes.Repeat([]byte{0}, 16)...)

	var gotMime string
	ext := &mockExtractor{
		extract: func(ctx context.Context, image []byte, mimeType string) (*models.ReceiptExtraction, error) {
			gotMime = mimeType
			return &models.ReceiptExtraction{}, nil
		},
	}
	h := handlers.NewReceiptHandler(ext)

	body, contentType := receiptBody(t, heicHeader)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/receipt", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Extract(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/heic", gotMime)
}

// TestReceiptHandler_bareBMFFRejected verifies that an ISO-BMFF container
// with a non-HEIF brand still fails the allow-list.
func TestReceiptHandler_bareBMFFRejected(t *testing.T) {
	mp4Header := append([]byte{0, 0, 0, 0x18}, []byte("ftypisom")...)
	mp4Header = append(mp4Header, bytes.Repeat([]byte{0}, 16)...)

	ext := &mockExtractor{
		extract: func(ctx context.Context, image []byte, mimeType string) (*models.ReceiptExtraction, error) {
			t.Fatal("extractor must not be called")
			return nil, nil
		},
	}
	h := handlers.NewReceiptHandler(ext)

	body, contentType := receiptBody(t, mp4Header)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/receipt", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Extract(rec, req)

	require.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assertErrorCode(t, rec, handlers.CodeUnsupportedMedia)
}

// TestReceiptHandler_extractionFailed verifies that an unparseable AI reply
// is classified as extraction_failed, distinct from transport errors.
func TestReceiptHandler_extractionFailed(t *testing.T) {
	ext := &mockExtractor{
		extract: func(ctx context.Context, image []byte, mimeType string) (*models.ReceiptExtraction, error) {
			return nil, fmt.Errorf("parse: %w", ai.ErrUnprocessable)
		},
	}
	h := handlers.NewReceiptHandler(ext)

	body, contentType := receiptBody(t, pngHeader)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/receipt", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Extract(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assertErrorCode(t, rec, handlers.CodeExtractionFailed)
}

// TestGeocodeHandler verifies parameter validation and verbatim passthrough.
func TestGeocodeHandler(t *testing.T) {
	geo := &mockGeocoder{
		lookup: func(ctx context.Context, lat, lon string) ([]byte, error) {
			assert.Equal(t, "35.68", lat)
			assert.Equal(t, "139.76", lon)
			return []byte(`{"results":{"muniCd":"13101"}}`), nil
		},
	}
	h := handlers.NewGeocodeHandler(geo)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/geocode?lat=35.68&lon=139.76", nil)
	rec := httptest.NewRecorder()
	h.Lookup(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"results":{"muniCd":"13101"}}`, rec.Body.String())

	// Missing lon is a client error.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/geocode?lat=35.68", nil)
	rec = httptest.NewRecorder()
	h.Lookup(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assertErrorCode(t, rec, handlers.CodeBadRequest)
}

func assertErrorCode(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	var resp handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, want, resp.Code)
}
