// Package mapview turns an itinerary into map markers by geocoding its stops
// one at a time.
package mapview

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"tripwise/internal/models/response_models"
	"tripwise/pkg/itinerary"
)

// maxStaticMarkers is how many labelled markers a static map request carries.
const maxStaticMarkers = 10

type Geocoder interface {
	Geocode(ctx context.Context, address, city string) (*response_models.GeocodeResult, error)
}

// Stop is an item with a location. Day is 1-based, Index is the item's
// position within the day.
type Stop struct {
	Day      int
	Index    int
	Title    string
	Location string
}

type Marker struct {
	Stop
	Lng     float64
	Lat     float64
	Address string
}

type Result struct {
	// Center is the destination, or the first marker when the destination
	// could not be geocoded. Nil when nothing was placed.
	Center  *Marker
	Markers []Marker
	Failed  []Stop
}

// Stops lists every item that names a location, in itinerary order.
func Stops(doc *itinerary.Document) []Stop {
	if doc == nil {
		return nil
	}
	var stops []Stop
	for d, day := range doc.DailyItinerary {
		for i, item := range day.Items {
			loc := strings.TrimSpace(item.Location)
			if loc == "" {
				continue
			}
			stops = append(stops, Stop{Day: d + 1, Index: i, Title: item.Title, Location: loc})
		}
	}
	return stops
}

// PlaceMarkers geocodes the destination and then each stop, awaiting every
// call before issuing the next. A stop that fails is logged and skipped.
// Cancelling ctx stops the loop and returns what was placed so far.
func PlaceMarkers(ctx context.Context, doc *itinerary.Document, geocoder Geocoder, logger *zap.Logger) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	res := &Result{}
	if doc == nil || doc.Metadata == nil {
		return res, itinerary.ErrMetadataRequired
	}
	city := doc.Metadata.Destination

	if city != "" {
		if g, err := geocoder.Geocode(ctx, city, ""); err != nil {
			logger.Warn("destination geocode failed", zap.String("destination", city), zap.Error(err))
		} else {
			res.Center = &Marker{Stop: Stop{Title: city, Location: city}, Lng: g.Lng, Lat: g.Lat, Address: g.FormattedAddress}
		}
	}

	seen := make(map[string]*response_models.GeocodeResult)
	for _, stop := range Stops(doc) {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		g, ok := seen[stop.Location]
		if !ok {
			var err error
			g, err = geocoder.Geocode(ctx, stop.Location, city)
			if err != nil {
				logger.Warn("stop geocode failed",
					zap.Int("day", stop.Day),
					zap.String("location", stop.Location),
					zap.Error(err))
				res.Failed = append(res.Failed, stop)
				continue
			}
			seen[stop.Location] = g
		}
		res.Markers = append(res.Markers, Marker{Stop: stop, Lng: g.Lng, Lat: g.Lat, Address: g.FormattedAddress})
	}

	if res.Center == nil && len(res.Markers) > 0 {
		first := res.Markers[0]
		res.Center = &first
	}
	return res, nil
}

// CenterLocation is the "lng,lat" of the map center, or "" when unknown.
func (r *Result) CenterLocation() string {
	if r == nil || r.Center == nil {
		return ""
	}
	return coord(r.Center.Lng, r.Center.Lat)
}

// StaticMarkers encodes up to ten markers, labelled A to J, in the static map
// markers syntax.
func (r *Result) StaticMarkers() string {
	if r == nil || len(r.Markers) == 0 {
		return ""
	}
	n := len(r.Markers)
	if n > maxStaticMarkers {
		n = maxStaticMarkers
	}
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		m := r.Markers[i]
		parts = append(parts, fmt.Sprintf("mid,,%c:%s", 'A'+i, coord(m.Lng, m.Lat)))
	}
	return strings.Join(parts, "|")
}

func coord(lng, lat float64) string {
	return fmt.Sprintf("%.6f,%.6f", lng, lat)
}
