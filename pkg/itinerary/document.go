// Package itinerary holds the typed itinerary document and the state container
// that mediates every mutation of it.
package itinerary

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used throughout the document.
const DateLayout = "2006-01-02"

// ActivityType is the closed set of activity kinds an item can have.
type ActivityType string

const (
	ActivityAttraction     ActivityType = "attraction"
	ActivityRestaurant     ActivityType = "restaurant"
	ActivityHotel          ActivityType = "hotel"
	ActivityTransportation ActivityType = "transportation"
	ActivityShopping       ActivityType = "shopping"
	ActivityOther          ActivityType = "other"
)

var activityTypes = []ActivityType{
	ActivityAttraction,
	ActivityRestaurant,
	ActivityHotel,
	ActivityTransportation,
	ActivityShopping,
	ActivityOther,
}

func (t ActivityType) Valid() bool {
	for _, v := range activityTypes {
		if v == t {
			return true
		}
	}
	return false
}

// ParseActivityType is case-insensitive and reports whether s named a known type.
func ParseActivityType(s string) (ActivityType, bool) {
	t := ActivityType(strings.ToLower(strings.TrimSpace(s)))
	return t, t.Valid()
}

// Category is a budget/expense category.
type Category string

const (
	CategoryTransportation Category = "transportation"
	CategoryAccommodation  Category = "accommodation"
	CategoryFood           Category = "food"
	CategoryAttractions    Category = "attractions"
	CategoryShopping       Category = "shopping"
	CategoryOther          Category = "other"
)

// Categories lists every budget category in display order.
var Categories = []Category{
	CategoryTransportation,
	CategoryAccommodation,
	CategoryFood,
	CategoryAttractions,
	CategoryShopping,
	CategoryOther,
}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// Amount is a currency amount. It decodes from JSON numbers and from strings
// carrying a leading number ("120", "about 80 CNY"); anything else decodes as 0.
type Amount float64

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*a = 0
		return nil
	}
	if data[0] != '"' {
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return err
		}
		*a = Amount(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*a = Amount(leadingNumber(s))
	return nil
}

func leadingNumber(s string) float64 {
	start := -1
	end := -1
	for i, r := range s {
		isNum := (r >= '0' && r <= '9') || (r == '.' && start != -1)
		if isNum {
			if start == -1 {
				start = i
			}
			end = i + 1
			continue
		}
		if start != -1 && r != ',' {
			break
		}
	}
	if start == -1 {
		return 0
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s[start:end], ",", ""), 64)
	if err != nil {
		return 0
	}
	return f
}

type Metadata struct {
	Destination string            `json:"destination"`
	StartDate   string            `json:"start_date"`
	EndDate     string            `json:"end_date"`
	Budget      float64           `json:"budget"`
	PeopleCount int               `json:"people_count"`
	Preferences map[string]string `json:"preferences,omitempty"`
	TotalDays   int               `json:"total_days,omitempty"`
	GeneratedAt string            `json:"generated_at,omitempty"`
}

type Item struct {
	Time          string       `json:"time"`
	Duration      string       `json:"duration"`
	Type          ActivityType `json:"type"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Location      string       `json:"location"`
	EstimatedCost Amount       `json:"estimated_cost"`
	Tips          string       `json:"tips,omitempty"`
}

type Day struct {
	Day   int    `json:"day"`
	Date  string `json:"date"`
	Theme string `json:"theme"`
	Items []Item `json:"items"`
}

// BudgetBreakdown maps each fixed category to an amount. Nothing ties the sum
// to Metadata.Budget.
type BudgetBreakdown struct {
	Transportation Amount `json:"transportation"`
	Accommodation  Amount `json:"accommodation"`
	Food           Amount `json:"food"`
	Attractions    Amount `json:"attractions"`
	Shopping       Amount `json:"shopping"`
	Other          Amount `json:"other"`
}

func (b *BudgetBreakdown) field(c Category) *Amount {
	switch c {
	case CategoryTransportation:
		return &b.Transportation
	case CategoryAccommodation:
		return &b.Accommodation
	case CategoryFood:
		return &b.Food
	case CategoryAttractions:
		return &b.Attractions
	case CategoryShopping:
		return &b.Shopping
	case CategoryOther:
		return &b.Other
	}
	return nil
}

// Get returns the amount for c, or 0 for an unknown category.
func (b BudgetBreakdown) Get(c Category) float64 {
	if f := b.field(c); f != nil {
		return float64(*f)
	}
	return 0
}

// Set stores v under c. It returns false for an unknown category.
func (b *BudgetBreakdown) Set(c Category, v float64) bool {
	f := b.field(c)
	if f == nil {
		return false
	}
	*f = Amount(v)
	return true
}

func (b BudgetBreakdown) Total() float64 {
	var sum float64
	for _, c := range Categories {
		sum += b.Get(c)
	}
	return sum
}

type Accommodation struct {
	Name        string `json:"name"`
	Location    string `json:"location"`
	PriceRange  string `json:"price_range"`
	Features    string `json:"features"`
	BookingTips string `json:"booking_tips,omitempty"`
}

// ContactList holds emergency contacts as display strings. Models sometimes
// answer with {name, phone} objects instead; those are flattened to "name: phone".
type ContactList []string

func (l *ContactList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*l = nil
		return nil
	}
	out := make(ContactList, 0, len(raw))
	for _, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			out = append(out, s)
			continue
		}
		var c struct {
			Name  string `json:"name"`
			Phone string `json:"phone"`
		}
		if err := json.Unmarshal(r, &c); err != nil {
			return err
		}
		switch {
		case c.Name != "" && c.Phone != "":
			out = append(out, c.Name+": "+c.Phone)
		case c.Phone != "":
			out = append(out, c.Phone)
		case c.Name != "":
			out = append(out, c.Name)
		}
	}
	*l = out
	return nil
}

// Document is one complete itinerary.
type Document struct {
	Metadata                 *Metadata       `json:"metadata"`
	Summary                  string          `json:"summary"`
	BudgetBreakdown          BudgetBreakdown `json:"budget_breakdown"`
	DailyItinerary           []Day           `json:"daily_itinerary"`
	AccommodationSuggestions []Accommodation `json:"accommodation_suggestions"`
	TravelTips               []string        `json:"travel_tips"`
	EmergencyContacts        ContactList     `json:"emergency_contacts,omitempty"`
}

// ParseDocument decodes and validates a full document.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, newParseError(err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks the document against its schema. A missing metadata object
// yields ErrMetadataRequired; every other problem is collected into a
// *ValidationError.
func (d *Document) Validate() error {
	if d.Metadata == nil {
		return ErrMetadataRequired
	}

	var problems []string
	m := d.Metadata
	if strings.TrimSpace(m.Destination) == "" {
		problems = append(problems, "metadata.destination is required")
	}
	start, startErr := ParseDate(m.StartDate)
	if startErr != nil {
		problems = append(problems, fmt.Sprintf("metadata.start_date: %v", startErr))
	}
	end, endErr := ParseDate(m.EndDate)
	if endErr != nil {
		problems = append(problems, fmt.Sprintf("metadata.end_date: %v", endErr))
	}
	if startErr == nil && endErr == nil && end.Before(start) {
		problems = append(problems, "metadata.end_date must not be before start_date")
	}
	if m.PeopleCount < 1 {
		problems = append(problems, "metadata.people_count must be positive")
	}
	if m.Budget < 0 {
		problems = append(problems, "metadata.budget must not be negative")
	}

	for _, c := range Categories {
		if d.BudgetBreakdown.Get(c) < 0 {
			problems = append(problems, fmt.Sprintf("budget_breakdown.%s must not be negative", c))
		}
	}

	for i, day := range d.DailyItinerary {
		if day.Day != i+1 {
			problems = append(problems, fmt.Sprintf("daily_itinerary[%d].day is %d, want %d", i, day.Day, i+1))
		}
		if day.Date != "" {
			if _, err := ParseDate(day.Date); err != nil {
				problems = append(problems, fmt.Sprintf("daily_itinerary[%d].date: %v", i, err))
			}
		}
		for j, item := range day.Items {
			if !item.Type.Valid() {
				problems = append(problems, fmt.Sprintf("daily_itinerary[%d].items[%d].type %q is not a known activity type", i, j, item.Type))
			}
			if item.EstimatedCost < 0 {
				problems = append(problems, fmt.Sprintf("daily_itinerary[%d].items[%d].estimated_cost must not be negative", i, j))
			}
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Clone returns a deep copy.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := *d
	if d.Metadata != nil {
		m := *d.Metadata
		if d.Metadata.Preferences != nil {
			m.Preferences = make(map[string]string, len(d.Metadata.Preferences))
			for k, v := range d.Metadata.Preferences {
				m.Preferences[k] = v
			}
		}
		out.Metadata = &m
	}
	if d.DailyItinerary != nil {
		out.DailyItinerary = make([]Day, len(d.DailyItinerary))
		for i, day := range d.DailyItinerary {
			out.DailyItinerary[i] = day
			if day.Items != nil {
				out.DailyItinerary[i].Items = append([]Item(nil), day.Items...)
			}
		}
	}
	if d.AccommodationSuggestions != nil {
		out.AccommodationSuggestions = append([]Accommodation(nil), d.AccommodationSuggestions...)
	}
	if d.TravelTips != nil {
		out.TravelTips = append([]string(nil), d.TravelTips...)
	}
	if d.EmergencyContacts != nil {
		out.EmergencyContacts = append(ContactList(nil), d.EmergencyContacts...)
	}
	return &out
}

// TripDays returns the number of calendar days between start and end, inclusive.
func TripDays(startDate, endDate string) (int, error) {
	start, err := ParseDate(startDate)
	if err != nil {
		return 0, err
	}
	end, err := ParseDate(endDate)
	if err != nil {
		return 0, err
	}
	if end.Before(start) {
		return 0, fmt.Errorf("end date %s is before start date %s", endDate, startDate)
	}
	return int(end.Sub(start).Hours()/24) + 1, nil
}

func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("date is required")
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return t, nil
}

// SplitTips turns editor text into tips: one per line, trimmed, blanks dropped.
func SplitTips(text string) []string {
	tips := make([]string, 0)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			tips = append(tips, line)
		}
	}
	return tips
}

// JoinTips is the editor form of tips.
func JoinTips(tips []string) string {
	return strings.Join(tips, "\n")
}
