package apiclient

import (
	"context"
	"net/url"
	"strconv"

	"tripwise/internal/models/request_models"
	"tripwise/internal/models/response_models"
	"tripwise/pkg/gateway"
)

type MapService struct {
	gw *gateway.Client
}

func NewMapService(gw *gateway.Client) *MapService {
	return &MapService{gw: gw}
}

func (s *MapService) Geocode(ctx context.Context, address, city string) (*response_models.GeocodeResult, error) {
	v := url.Values{"address": {address}}
	setIf(v, "city", city)
	var out response_models.GeocodeResult
	if err := s.gw.Get(ctx, withQuery("/map/geocode", v), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *MapService) Search(ctx context.Context, keywords, city string) ([]response_models.Place, error) {
	v := url.Values{"keywords": {keywords}}
	setIf(v, "city", city)
	var out []response_models.Place
	if err := s.gw.Get(ctx, withQuery("/map/search", v), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MapService) Route(ctx context.Context, q request_models.RouteQuery) (*response_models.Route, error) {
	v := url.Values{"origin": {q.Origin}, "destination": {q.Destination}}
	setIf(v, "mode", q.Mode)
	setIf(v, "city", q.City)
	var out response_models.Route
	if err := s.gw.Get(ctx, withQuery("/map/route", v), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *MapService) Weather(ctx context.Context, city string) (*response_models.Weather, error) {
	var out response_models.Weather
	if err := s.gw.Get(ctx, withQuery("/map/weather", url.Values{"city": {city}}), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StaticMap returns the rendered PNG.
func (s *MapService) StaticMap(ctx context.Context, q request_models.StaticMapQuery) ([]byte, error) {
	v := url.Values{"location": {q.Location}}
	setIf(v, "markers", q.Markers)
	setIf(v, "size", q.Size)
	if q.Zoom > 0 {
		v.Set("zoom", strconv.Itoa(q.Zoom))
	}
	body, _, err := s.gw.Raw(ctx, withQuery("/map/staticmap", v))
	return body, err
}
