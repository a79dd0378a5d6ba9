package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Funya-okina/sightseeingLog/internal/models"
)

// GenerateCover asks the image collaborator for a cover illustration and
// returns the decoded PNG bytes.
func (c *Client) GenerateCover(ctx context.Context, trip models.Trip) ([]byte, error) {
	prompt := fmt.Sprintf(
		"旅のしおりの表紙イラストを描いてください。日程: %s。目的: %s。"+
			"水彩風で、文字は入れないでください。",
		trip.DateRange, trip.Purpose)

	var resp imageResponse
	req := imageRequest{Model: c.imageModel, Prompt: prompt, Size: imageSize, N: 1}
	if err := c.post(ctx, "/images/generations", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, fmt.Errorf("%w: no image data", ErrUnprocessable)
	}
	img, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnprocessable, err)
	}
	return img, nil
}

// WriteNarrative asks the text collaborator for a short trip introduction.
func (c *Client) WriteNarrative(ctx context.Context, trip models.Trip, groups []models.DayGroup) (string, error) {
	var places []string
	for _, g := range groups {
		for _, ev := range g.Events {
			places = append(places, ev.PlaceName)
		}
	}
	prompt := fmt.Sprintf(
		"次の旅行のしおりに載せる導入文を%d文字以内の日本語で書いてください。"+
			"日程: %s。目的: %s。訪問予定: %s。",
		maxNarrativeChars, trip.DateRange, trip.Purpose, strings.Join(places, "、"))

	text, err := c.chat(ctx, []chatMessage{{Role: "user", Content: prompt}})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// inferenceDay is the trimmed event view sent to the text collaborator.
// Attached photo data stays out of the prompt: it carries no signal for the
// model and multi-megabyte uploads would blow the request past its limits.
type inferenceDay struct {
	Date   string           `json:"date"`
	Events []inferenceEvent `json:"events"`
}

type inferenceEvent struct {
	Place string `json:"place"`
	Clock string `json:"clock"`
}

func inferenceInput(groups []models.DayGroup) []inferenceDay {
	days := make([]inferenceDay, 0, len(groups))
	for _, g := range groups {
		day := inferenceDay{Date: g.Label, Events: make([]inferenceEvent, 0, len(g.Events))}
		for _, ev := range g.Events {
			day.Events = append(day.Events, inferenceEvent{Place: ev.PlaceName, Clock: ev.Clock})
		}
		days = append(days, day)
	}
	return days
}

// InferItinerary asks the text collaborator to read the day-grouped events
// and produce a per-day commentary. The response must be a JSON object of the
// InferredItinerary shape, possibly wrapped in a code fence.
func (c *Client) InferItinerary(ctx context.Context, groups []models.DayGroup) (*models.InferredItinerary, error) {
	input, err := json.Marshal(inferenceInput(groups))
	if err != nil {
		return nil, fmt.Errorf("failed to encode events: %w", err)
	}
	prompt := "以下は旅行中の写真から得た日別の行動記録です。各日について何をした日かを一言で推定し、" +
		`JSON {"days":[{"date":"YYYY/MM/DD","note":"…"}]} だけを返してください。` +
		"\n\n" + string(input)

	text, err := c.chat(ctx, []chatMessage{{Role: "user", Content: prompt}})
	if err != nil {
		return nil, err
	}

	var inferred models.InferredItinerary
	if err := json.Unmarshal([]byte(StripFence(text)), &inferred); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnprocessable, err)
	}
	return &inferred, nil
}

// ExtractReceipt sends a receipt image to the vision collaborator and parses
// the structured line items out of the reply. A reply that does not parse as
// the expected shape is ErrUnprocessable, distinct from transport failures.
func (c *Client) ExtractReceipt(ctx context.Context, image []byte, mimeType string) (*models.ReceiptExtraction, error) {
	dataURI := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))
	content := []map[string]any{
		{"type": "text", "text": "このレシート画像から品目と金額を読み取り、" +
			`JSON {"items":[{"name":"…","amount":0}],"storeName":"…"} だけを返してください。`},
		{"type": "image_url", "image_url": map[string]string{"url": dataURI}},
	}

	text, err := c.chat(ctx, []chatMessage{{Role: "user", Content: content}})
	if err != nil {
		return nil, err
	}

	var extraction models.ReceiptExtraction
	if err := json.Unmarshal([]byte(StripFence(text)), &extraction); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnprocessable, err)
	}
	return &extraction, nil
}
