package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/Funya-okina/sightseeingLog/internal/config"
	"github.com/Funya-okina/sightseeingLog/internal/models"
	"github.com/Funya-okina/sightseeingLog/internal/render"
	"github.com/Funya-okina/sightseeingLog/internal/shiori"
)

// Generator is the AI collaborator surface the orchestrator depends on.
type Generator interface {
	GenerateCover(ctx context.Context, trip models.Trip) ([]byte, error)
	WriteNarrative(ctx context.Context, trip models.Trip, groups []models.DayGroup) (string, error)
	InferItinerary(ctx context.Context, groups []models.DayGroup) (*models.InferredItinerary, error)
}

// PDFRenderer is the browser-automation collaborator surface.
type PDFRenderer interface {
	RenderPDF(ctx context.Context, htmlPage string, paperSize string) ([]byte, error)
}

// ShioriService orchestrates one generation request: normalization, the
// external artifact calls, document assembly, and the admission-gated PDF
// render. Stages run strictly in order because each consumes the previous
// stage's output.
type ShioriService struct {
	gen          Generator
	renderer     PDFRenderer
	renderSlots  *semaphore.Weighted
	coverTimeout time.Duration
	paperSize    string
}

// NewShioriService creates the orchestrator. maxConcurrent bounds how many
// browser renders may run at once across all requests; callers over the
// limit wait for a slot rather than being rejected.
func NewShioriService(gen Generator, renderer PDFRenderer, cfg config.Config) *ShioriService {
	return &ShioriService{
		gen:          gen,
		renderer:     renderer,
		renderSlots:  semaphore.NewWeighted(cfg.Render.MaxConcurrent),
		coverTimeout: cfg.AI.CoverTimeout.Std(),
		paperSize:    cfg.Render.PaperSize,
	}
}

// Generate runs the full pipeline and returns the finished PDF. images maps
// a photo event clientId to a data URI of the uploaded file. Itinerary
// inference and narrative generation are required stages; cover generation
// degrades to "no cover" on failure or timeout.
func (s *ShioriService) Generate(ctx context.Context, details map[string]any, images map[string]string) ([]byte, error) {
	trip := shiori.NormalizeTrip(details)
	groups := shiori.BuildItinerary(shiori.PhotoEvents(details), images)

	var inferred *models.InferredItinerary
	if len(groups) > 0 {
		var err error
		inferred, err = s.gen.InferItinerary(ctx, groups)
		if err != nil {
			return nil, fmt.Errorf("itinerary inference failed: %w", err)
		}
	}

	cover := s.attemptCover(ctx, trip)

	narrative, err := s.gen.WriteNarrative(ctx, trip, groups)
	if err != nil {
		return nil, fmt.Errorf("narrative generation failed: %w", err)
	}

	markup := shiori.RenderDocument(models.Document{
		Trip:      trip,
		DayGroups: groups,
		Inferred:  inferred,
		Cover:     cover,
		Narrative: narrative,
	})
	htmlPage := render.HTMLPage(markup)

	if err := s.renderSlots.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("render admission interrupted: %w", err)
	}
	defer s.renderSlots.Release(1)

	pdf, err := s.renderer.RenderPDF(ctx, htmlPage, s.paperSize)
	if err != nil {
		return nil, fmt.Errorf("pdf render failed: %w", err)
	}
	return pdf, nil
}

// attemptCover races cover generation against a soft deadline. A cover is a
// nice-to-have: on timeout or failure the document simply renders without
// one. Cancelling the context on exit aborts the losing call instead of
// leaving it running; a cover that finishes after losing the race is
// discarded either way.
func (s *ShioriService) attemptCover(ctx context.Context, trip models.Trip) []byte {
	coverCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type coverResult struct {
		img []byte
		err error
	}
	done := make(chan coverResult, 1)
	go func() {
		img, err := s.gen.GenerateCover(coverCtx, trip)
		done <- coverResult{img: img, err: err}
	}()

	timer := time.NewTimer(s.coverTimeout)
	defer timer.Stop()

	select {
	case res := <-done:
		if res.err != nil {
			log.Warn().Err(res.err).Msg("Cover generation skipped")
			return nil
		}
		return res.img
	case <-timer.C:
		log.Warn().Dur("timeout", s.coverTimeout).Msg("Cover generation timed out")
		return nil
	}
}
