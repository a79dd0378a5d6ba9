package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/Funya-okina/sightseeingLog/internal/models"
)

// maxReceiptBytes caps a single receipt image upload.
const maxReceiptBytes = 10 << 20

// allowedReceiptTypes is the MIME allow-list for receipt images.
var allowedReceiptTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/heic": true,
}

// detectImageType sniffs the upload's MIME type. HEIC is an ISO-BMFF
// container the standard sniffer reports as octet-stream, so the ftyp brand
// is inspected directly.
func detectImageType(data []byte) string {
	mimeType := http.DetectContentType(data)
	if mimeType == "application/octet-stream" && isHEIC(data) {
		return "image/heic"
	}
	return mimeType
}

// isHEIC reports whether data starts with an ISO-BMFF ftyp box carrying a
// HEIF-family brand.
func isHEIC(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heix", "heif", "mif1", "msf1":
		return true
	}
	return false
}

// ReceiptExtractor turns a receipt image into structured line items.
type ReceiptExtractor interface {
	ExtractReceipt(ctx context.Context, image []byte, mimeType string) (*models.ReceiptExtraction, error)
}

// ReceiptHandler handles receipt extraction requests
type ReceiptHandler struct {
	extractor ReceiptExtractor
}

// NewReceiptHandler creates a new receipt handler
func NewReceiptHandler(extractor ReceiptExtractor) *ReceiptHandler {
	return &ReceiptHandler{extractor: extractor}
}

// Extract handles POST /api/v1/receipt. The request is multipart with a
// single "image" file part. A reply the collaborator produced but that does
// not parse as the expected shape is classified as an extraction failure,
// not a transport error.
func (h *ReceiptHandler) Extract(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(maxReceiptBytes); err != nil {
		respondError(w, "Invalid multipart request", CodeBadRequest, http.StatusBadRequest)
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			log.Warn().Err(err).Msg("Failed to clean up multipart form")
		}
	}()

	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, "image field is required", CodeBadRequest, http.StatusBadRequest)
		return
	}
	defer file.Close()

	if header.Size > maxReceiptBytes {
		respondError(w, "image exceeds the size limit", CodePayloadTooLarge, http.StatusRequestEntityTooLarge)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxReceiptBytes+1))
	if err != nil {
		respondError(w, "failed to read image", CodeBadRequest, http.StatusBadRequest)
		return
	}
	if int64(len(data)) > maxReceiptBytes {
		respondError(w, "image exceeds the size limit", CodePayloadTooLarge, http.StatusRequestEntityTooLarge)
		return
	}

	mimeType := detectImageType(data)
	if !allowedReceiptTypes[mimeType] {
		respondError(w, "unsupported image type", CodeUnsupportedMedia, http.StatusUnsupportedMediaType)
		return
	}

	extraction, err := h.extractor.ExtractReceipt(ctx, data, mimeType)
	if err != nil {
		log.Error().Err(err).Str("mime_type", mimeType).Msg("Receipt extraction failed")
		status, code := classify(err)
		if code == CodeUnprocessable {
			code = CodeExtractionFailed
		}
		respondError(w, err.Error(), code, status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(extraction)
}
