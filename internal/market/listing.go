package market

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Status partitions listings into the two display sets. The UI never shows
// both at once.
type Status string

const (
	StatusActive Status = "active"
	StatusSold   Status = "sold"
)

// Categories in the order the marketplace presents them.
var Categories = []string{
	"Textbooks",
	"Electronics",
	"Furniture",
	"Clothing & Accessories",
	"Dorm Essentials",
	"School Supplies",
	"Sports & Outdoors",
	"Transportation",
	"Tickets & Events",
	"Other",
}

// Conditions in the order the marketplace presents them.
var Conditions = []string{"New", "Like New", "Good", "Fair", "Used"}

// Listing is a read-only projection of a marketplace listing owned by the
// hosted entity service.
type Listing struct {
	ID          string
	Title       string
	Description string
	Price       float64
	Category    string
	Condition   string
	Status      Status
	CreatedDate time.Time
	Views       int
	SellerEmail string
	Images      []string
}

// ListingSummary is the reduced shape returned by the voice-search endpoint.
type ListingSummary struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
}

// rawListing is the wire shape. Price and created_date arrive as loosely
// typed JSON from the hosted service and are validated in decode.
type rawListing struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       json.RawMessage `json:"price"`
	Category    string          `json:"category"`
	Condition   string          `json:"condition"`
	Status      string          `json:"status"`
	CreatedDate string          `json:"created_date"`
	Views       int             `json:"views"`
	SellerEmail string          `json:"seller_email"`
	Images      []string        `json:"images"`
}

// UnmarshalJSON decodes a listing, tolerating malformed price and date
// values. A listing that cannot be normalized still decodes; callers check
// Valid() before feeding it to the sort pipeline.
func (l *Listing) UnmarshalJSON(data []byte) error {
	var raw rawListing
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	l.ID = raw.ID
	l.Title = raw.Title
	l.Description = raw.Description
	l.Category = raw.Category
	l.Condition = raw.Condition
	l.Status = Status(raw.Status)
	l.Views = raw.Views
	l.SellerEmail = raw.SellerEmail
	l.Images = raw.Images

	l.Price = parsePrice(raw.Price)
	l.CreatedDate = parseCreatedDate(raw.CreatedDate)
	return nil
}

// MarshalJSON emits the wire shape with canonical price and date encoding.
func (l Listing) MarshalJSON() ([]byte, error) {
	raw := struct {
		ID          string   `json:"id"`
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Price       float64  `json:"price"`
		Category    string   `json:"category"`
		Condition   string   `json:"condition"`
		Status      string   `json:"status"`
		CreatedDate string   `json:"created_date"`
		Views       int      `json:"views"`
		SellerEmail string   `json:"seller_email"`
		Images      []string `json:"images"`
	}{
		ID: l.ID, Title: l.Title, Description: l.Description,
		Price: l.Price, Category: l.Category, Condition: l.Condition,
		Status: string(l.Status), Views: l.Views, SellerEmail: l.SellerEmail,
		Images: l.Images,
	}
	if !l.CreatedDate.IsZero() {
		raw.CreatedDate = l.CreatedDate.UTC().Format(time.RFC3339)
	}
	return json.Marshal(raw)
}

// Valid reports whether the listing is usable by the filter/sort pipeline.
// Listings with an unparseable price or created date are excluded from
// display, never a crash.
func (l *Listing) Valid() bool {
	return l.Price >= 0 && !l.CreatedDate.IsZero()
}

// Sold reports whether the listing belongs to the sold partition.
func (l *Listing) Sold() bool {
	return l.Status == StatusSold
}

// FormatPrice renders a non-negative price for display, e.g. "$1,250" or
// "$19.99". Whole-dollar amounts drop the cents.
func FormatPrice(p float64) string {
	total := int64(math.Round(p * 100))
	whole := total / 100
	cents := total % 100

	s := strconv.FormatInt(whole, 10)
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	if cents > 0 {
		return fmt.Sprintf("$%s.%02d", out, cents)
	}
	return "$" + string(out)
}

// ValidCategory reports whether name is one of the fixed categories.
func ValidCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}

// ValidCondition reports whether name is one of the fixed conditions.
func ValidCondition(name string) bool {
	for _, c := range Conditions {
		if c == name {
			return true
		}
	}
	return false
}

// parsePrice accepts a JSON number or numeric string. Anything else, or a
// negative value, maps to the invalid sentinel -1.
func parsePrice(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return -1
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		if f < 0 {
			return -1
		}
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 {
			return f
		}
	}
	return -1
}

// parseCreatedDate accepts RFC3339 with or without sub-second precision.
// Unparseable input maps to the zero time.
func parseCreatedDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
