package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ShioriGenerator runs the full generation pipeline for one request.
type ShioriGenerator interface {
	Generate(ctx context.Context, details map[string]any, images map[string]string) ([]byte, error)
}

// ShioriHandler handles shiori generation requests
type ShioriHandler struct {
	service        ShioriGenerator
	maxUploadBytes int64
}

// NewShioriHandler creates a new shiori handler
func NewShioriHandler(service ShioriGenerator, maxUploadBytes int64) *ShioriHandler {
	return &ShioriHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
	}
}

// Generate handles POST /api/v1/shiori. The request is multipart: a "details"
// field carrying the JSON trip blob and any number of "photos" file parts
// whose filenames (without extension) match photo event clientIds. The
// response is a PDF attachment or a JSON error envelope.
func (h *ShioriHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		respondError(w, "Invalid multipart request", CodeBadRequest, http.StatusBadRequest)
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			log.Warn().Err(err).Msg("Failed to clean up multipart form")
		}
	}()

	detailsRaw := r.FormValue("details")
	if detailsRaw == "" {
		respondError(w, "details field is required", CodeBadRequest, http.StatusBadRequest)
		return
	}

	var details map[string]any
	if err := json.Unmarshal([]byte(detailsRaw), &details); err != nil {
		respondError(w, "details must be a JSON object", CodeBadRequest, http.StatusBadRequest)
		return
	}

	images, err := readPhotoParts(r.MultipartForm.File["photos"])
	if err != nil {
		respondError(w, err.Error(), CodeBadRequest, http.StatusBadRequest)
		return
	}

	pdf, err := h.service.Generate(ctx, details, images)
	if err != nil {
		log.Error().Err(err).Msg("Failed to generate shiori")
		status, code := classify(err)
		respondError(w, err.Error(), code, status)
		return
	}

	filename := fmt.Sprintf("shiori-%s.pdf", uuid.New().String())
	log.Info().
		Int("pdf_bytes", len(pdf)).
		Int("photos", len(images)).
		Str("filename", filename).
		Msg("Shiori generated")

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		log.Warn().Err(err).Str("filename", filename).Msg("Failed to stream pdf to client")
	}
}

// readPhotoParts loads the uploaded photos into clientId-keyed data URIs.
func readPhotoParts(parts []*multipart.FileHeader) (map[string]string, error) {
	images := make(map[string]string, len(parts))
	for _, part := range parts {
		f, err := part.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open photo %s", part.Filename)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read photo %s", part.Filename)
		}
		if len(data) == 0 {
			continue
		}

		clientID := strings.TrimSuffix(part.Filename, filepath.Ext(part.Filename))
		if clientID == "" {
			continue
		}
		mimeType := http.DetectContentType(data)
		images[clientID] = fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
	}
	return images, nil
}
