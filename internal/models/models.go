package models

// Trip is the normalized travel record built from the request's detail blob.
// All fields are display-ready; nothing here outlives the request.
type Trip struct {
	DateRange string
	Hotels    []string
	Purpose   string
	Members   []Member
	Budget    BudgetSummary
}

// Member is a roster entry with its resolved display label.
type Member struct {
	Name    string
	Label   string
	Episode string
}

// BudgetRow is one retained budget category ready for rendering.
type BudgetRow struct {
	Title        string
	TotalDisplay string
	TotalValue   float64
	Details      string
}

// BudgetSummary holds the retained budget rows and their grand total.
type BudgetSummary struct {
	Rows       []BudgetRow
	GrandTotal float64
}

// ItineraryEvent is a normalized photo event placed on the itinerary.
type ItineraryEvent struct {
	PlaceName string
	Day       string // "YYYY/MM/DD", empty for the unknown-day bucket
	Clock     string // "HH:MM", or the placeholder dash
	SortKey   int64  // epoch millis; maxInt64 when unparseable
	Index     int    // original upload order, used as tie-break
	ImageData string // optional data URI of the uploaded photo
}

// DayGroup is a bucket of itinerary events sharing a calendar day.
type DayGroup struct {
	Label  string
	Events []ItineraryEvent
}

// InferredDay is one day of the AI-inferred itinerary commentary.
type InferredDay struct {
	Date string `json:"date"`
	Note string `json:"note"`
}

// InferredItinerary is the AI collaborator's day-by-day reading of the trip.
type InferredItinerary struct {
	Days []InferredDay `json:"days"`
}

// ReceiptItem is one extracted line from a receipt image.
type ReceiptItem struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// ReceiptExtraction is the structured result of receipt image extraction.
type ReceiptExtraction struct {
	Items     []ReceiptItem `json:"items"`
	StoreName string        `json:"storeName,omitempty"`
}

// Document bundles everything the document renderer needs for one shiori.
type Document struct {
	Trip      Trip
	DayGroups []DayGroup
	Inferred  *InferredItinerary
	Cover     []byte // PNG bytes, nil when cover generation was skipped or late
	Narrative string
}
