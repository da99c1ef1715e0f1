package itinerary

import "fmt"

// Edit is a partial update of one field group. Applying an edit touches only
// its own slice of the document, and applying the same edit twice leaves the
// document as it was after the first application.
type Edit interface {
	apply(d *Document) error
}

// MetadataEdit merges the non-nil fields into metadata. A non-nil Preferences
// replaces the whole preference set.
type MetadataEdit struct {
	Destination *string
	StartDate   *string
	EndDate     *string
	Budget      *float64
	PeopleCount *int
	Preferences map[string]string
}

func (e MetadataEdit) apply(d *Document) error {
	m := d.Metadata
	if e.Destination != nil {
		m.Destination = *e.Destination
	}
	if e.StartDate != nil {
		m.StartDate = *e.StartDate
	}
	if e.EndDate != nil {
		m.EndDate = *e.EndDate
	}
	if e.Budget != nil {
		m.Budget = *e.Budget
	}
	if e.PeopleCount != nil {
		m.PeopleCount = *e.PeopleCount
	}
	if e.Preferences != nil {
		m.Preferences = make(map[string]string, len(e.Preferences))
		for k, v := range e.Preferences {
			m.Preferences[k] = v
		}
	}
	if e.StartDate != nil || e.EndDate != nil {
		if n, err := TripDays(m.StartDate, m.EndDate); err == nil {
			m.TotalDays = n
		}
	}
	return nil
}

type SummaryEdit struct {
	Summary string
}

func (e SummaryEdit) apply(d *Document) error {
	d.Summary = e.Summary
	return nil
}

// BudgetEdit sets the listed categories and leaves the others alone.
type BudgetEdit struct {
	Amounts map[Category]float64
}

func (e BudgetEdit) apply(d *Document) error {
	for c, v := range e.Amounts {
		if !d.BudgetBreakdown.Set(c, v) {
			return fmt.Errorf("%w: %q", ErrUnknownCategory, c)
		}
	}
	return nil
}

// TravelTipsEdit carries the editor's line-delimited text.
type TravelTipsEdit struct {
	Text string
}

func (e TravelTipsEdit) apply(d *Document) error {
	d.TravelTips = SplitTips(e.Text)
	return nil
}

// DayEdit changes one day's theme and/or date. Day is 1-based.
type DayEdit struct {
	Day   int
	Theme *string
	Date  *string
}

func (e DayEdit) apply(d *Document) error {
	day, err := dayAt(d, e.Day)
	if err != nil {
		return err
	}
	if e.Theme != nil {
		day.Theme = *e.Theme
	}
	if e.Date != nil {
		day.Date = *e.Date
	}
	return nil
}

// AccommodationEdit replaces the suggestion list.
type AccommodationEdit struct {
	Suggestions []Accommodation
}

func (e AccommodationEdit) apply(d *Document) error {
	d.AccommodationSuggestions = append([]Accommodation{}, e.Suggestions...)
	return nil
}

type ItemPatch struct {
	Time          *string
	Duration      *string
	Type          *ActivityType
	Title         *string
	Description   *string
	Location      *string
	EstimatedCost *float64
	Tips          *string
}

// ItemEdit patches the item at (Day, Item). Day is 1-based, Item is 0-based.
// Indices are positional: after a delete in the same day they shift.
type ItemEdit struct {
	Day   int
	Item  int
	Patch ItemPatch
}

func (e ItemEdit) apply(d *Document) error {
	day, err := dayAt(d, e.Day)
	if err != nil {
		return err
	}
	if e.Item < 0 || e.Item >= len(day.Items) {
		return fmt.Errorf("%w: day %d has %d items, got index %d", ErrItemOutOfRange, e.Day, len(day.Items), e.Item)
	}
	it := &day.Items[e.Item]
	p := e.Patch
	if p.Time != nil {
		it.Time = *p.Time
	}
	if p.Duration != nil {
		it.Duration = *p.Duration
	}
	if p.Type != nil {
		it.Type = *p.Type
	}
	if p.Title != nil {
		it.Title = *p.Title
	}
	if p.Description != nil {
		it.Description = *p.Description
	}
	if p.Location != nil {
		it.Location = *p.Location
	}
	if p.EstimatedCost != nil {
		it.EstimatedCost = Amount(*p.EstimatedCost)
	}
	if p.Tips != nil {
		it.Tips = *p.Tips
	}
	return nil
}

func dayAt(d *Document, index int) (*Day, error) {
	if index < 1 || index > len(d.DailyItinerary) {
		return nil, fmt.Errorf("%w: %d (trip has %d days)", ErrDayOutOfRange, index, len(d.DailyItinerary))
	}
	return &d.DailyItinerary[index-1], nil
}
