package handlers

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"
)

// GeocodeLookup resolves latitude/longitude to an upstream place payload.
type GeocodeLookup interface {
	Lookup(ctx context.Context, lat, lon string) ([]byte, error)
}

// GeocodeHandler handles reverse-geocoding requests
type GeocodeHandler struct {
	service GeocodeLookup
}

// NewGeocodeHandler creates a new geocode handler
func NewGeocodeHandler(service GeocodeLookup) *GeocodeHandler {
	return &GeocodeHandler{service: service}
}

// Lookup handles GET /api/v1/geocode. Both lat and lon query parameters are
// required; the upstream payload is returned verbatim.
func (h *GeocodeHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	lat := r.URL.Query().Get("lat")
	lon := r.URL.Query().Get("lon")
	if lat == "" || lon == "" {
		respondError(w, "lat and lon are required", CodeBadRequest, http.StatusBadRequest)
		return
	}

	payload, err := h.service.Lookup(r.Context(), lat, lon)
	if err != nil {
		log.Error().Err(err).Str("lat", lat).Str("lon", lon).Msg("Geocode lookup failed")
		respondError(w, "geocode lookup failed", CodeUpstreamError, http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}
