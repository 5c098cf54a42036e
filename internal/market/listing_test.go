package market

import (
	"encoding/json"
	"testing"
	"time"
)

func TestUnmarshalListing(t *testing.T) {
	data := `{
		"id": "abc123",
		"title": "Calc 2 textbook",
		"description": "Barely used",
		"price": 45.5,
		"category": "Textbooks",
		"condition": "Like New",
		"status": "active",
		"created_date": "2026-08-01T12:30:00Z",
		"views": 7,
		"seller_email": "boiler@purdue.edu",
		"images": ["https://img/1.jpg"]
	}`

	var l Listing
	if err := json.Unmarshal([]byte(data), &l); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if l.ID != "abc123" || l.Title != "Calc 2 textbook" {
		t.Errorf("identity fields = %q / %q", l.ID, l.Title)
	}
	if l.Price != 45.5 {
		t.Errorf("Price = %v, want 45.5", l.Price)
	}
	if l.Status != StatusActive {
		t.Errorf("Status = %q, want active", l.Status)
	}
	want := time.Date(2026, 8, 1, 12, 30, 0, 0, time.UTC)
	if !l.CreatedDate.Equal(want) {
		t.Errorf("CreatedDate = %v, want %v", l.CreatedDate, want)
	}
	if !l.Valid() {
		t.Error("Valid() = false for well-formed listing")
	}
}

func TestUnmarshalMalformedValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"string price garbage", `{"id":"x","price":"cheap","created_date":"2026-01-01T00:00:00Z"}`},
		{"negative price", `{"id":"x","price":-3,"created_date":"2026-01-01T00:00:00Z"}`},
		{"missing price", `{"id":"x","created_date":"2026-01-01T00:00:00Z"}`},
		{"garbage date", `{"id":"x","price":5,"created_date":"yesterday"}`},
		{"missing date", `{"id":"x","price":5}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l Listing
			if err := json.Unmarshal([]byte(tt.body), &l); err != nil {
				t.Fatalf("Unmarshal() error = %v, want nil (tolerant decode)", err)
			}
			if l.Valid() {
				t.Error("Valid() = true, want false")
			}
		})
	}
}

func TestUnmarshalNumericStringPrice(t *testing.T) {
	var l Listing
	body := `{"id":"x","price":"42.99","created_date":"2026-01-01T00:00:00Z"}`
	if err := json.Unmarshal([]byte(body), &l); err != nil {
		t.Fatal(err)
	}
	if l.Price != 42.99 {
		t.Errorf("Price = %v, want 42.99", l.Price)
	}
	if !l.Valid() {
		t.Error("Valid() = false, want true")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	l := Listing{
		ID:          "id1",
		Title:       "Desk lamp",
		Price:       12,
		Category:    "Dorm Essentials",
		Condition:   "Good",
		Status:      StatusSold,
		CreatedDate: time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC),
	}
	data, err := json.Marshal(l)
	if err != nil {
		t.Fatal(err)
	}
	var back Listing
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back.Title != l.Title || back.Price != l.Price || !back.CreatedDate.Equal(l.CreatedDate) {
		t.Errorf("round trip = %+v, want %+v", back, l)
	}
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0"},
		{5, "$5"},
		{45.5, "$45.50"},
		{19.99, "$19.99"},
		{1000, "$1,000"},
		{1250000, "$1,250,000"},
	}
	for _, tt := range tests {
		if got := FormatPrice(tt.in); got != tt.want {
			t.Errorf("FormatPrice(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidCategoryAndCondition(t *testing.T) {
	if !ValidCategory("Textbooks") {
		t.Error("Textbooks should be a valid category")
	}
	if ValidCategory("Spaceships") {
		t.Error("Spaceships should not be a valid category")
	}
	if !ValidCondition("Like New") {
		t.Error("Like New should be a valid condition")
	}
	if ValidCondition("Broken") {
		t.Error("Broken should not be a valid condition")
	}
}
