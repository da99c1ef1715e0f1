package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"tripwise/internal/models/response_models"
	"tripwise/pkg/metrics"
	"tripwise/pkg/utils"
)

const (
	DefaultAmapBaseURL = "https://restapi.amap.com/v3"
	geocodeCacheTTL    = 24 * time.Hour
	weatherCacheTTL    = 10 * time.Minute
	placeSearchLimit   = 20
	defaultMapZoom     = 13
	defaultMapSize     = "750*400"
)

type MapServiceInterface interface {
	Geocode(ctx context.Context, address, city string) (*response_models.GeocodeResult, error)
	SearchPlaces(ctx context.Context, keywords, city string) ([]response_models.Place, error)
	Route(ctx context.Context, origin, destination, mode, city string) (*response_models.Route, error)
	Weather(ctx context.Context, city string) (*response_models.Weather, error)
	StaticMap(ctx context.Context, location, markers string, zoom int, size string) ([]byte, string, error)
}

// MapService talks to the Amap web API.
type MapService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	cache      MapCache
	logger     *zap.Logger
}

func NewMapService(apiKey, baseURL string, cache MapCache, logger *zap.Logger) MapServiceInterface {
	if baseURL == "" {
		baseURL = DefaultAmapBaseURL
	}
	return &MapService{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cache:      cache,
		logger:     logger,
	}
}

func (m *MapService) Geocode(ctx context.Context, address, city string) (*response_models.GeocodeResult, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, utils.InvalidInput("address is required")
	}

	key := "geocode:" + city + ":" + address
	var result response_models.GeocodeResult
	if m.cached(ctx, key, &result) {
		return &result, nil
	}

	params := url.Values{"address": {address}}
	if city != "" {
		params.Set("city", city)
	}
	body, err := m.get(ctx, "geocode", "/geocode/geo", params)
	if err != nil {
		return nil, err
	}

	first := body.Get("geocodes.0")
	if !first.Exists() {
		return nil, fmt.Errorf("%w: no match for %q", utils.ErrMapServiceError, address)
	}
	lng, lat, ok := parseLngLat(first.Get("location").String())
	if !ok {
		return nil, fmt.Errorf("%w: malformed location %q", utils.ErrMapServiceError, first.Get("location").String())
	}
	result = response_models.GeocodeResult{
		Lng:              lng,
		Lat:              lat,
		FormattedAddress: first.Get("formatted_address").String(),
		Province:         amapString(first.Get("province")),
		City:             amapString(first.Get("city")),
		District:         amapString(first.Get("district")),
	}
	m.store(ctx, key, result, geocodeCacheTTL)
	return &result, nil
}

func (m *MapService) SearchPlaces(ctx context.Context, keywords, city string) ([]response_models.Place, error) {
	keywords = strings.TrimSpace(keywords)
	if keywords == "" {
		return nil, utils.InvalidInput("keywords are required")
	}
	params := url.Values{
		"keywords":   {keywords},
		"offset":     {strconv.Itoa(placeSearchLimit)},
		"page":       {"1"},
		"extensions": {"base"},
	}
	if city != "" {
		params.Set("city", city)
		params.Set("citylimit", "true")
	}
	body, err := m.get(ctx, "search", "/place/text", params)
	if err != nil {
		return nil, err
	}

	places := make([]response_models.Place, 0, placeSearchLimit)
	body.Get("pois").ForEach(func(_, poi gjson.Result) bool {
		lng, lat, _ := parseLngLat(poi.Get("location").String())
		places = append(places, response_models.Place{
			ID:       poi.Get("id").String(),
			Name:     poi.Get("name").String(),
			Type:     amapString(poi.Get("type")),
			Address:  amapString(poi.Get("address")),
			Lng:      lng,
			Lat:      lat,
			Tel:      amapString(poi.Get("tel")),
			Distance: amapString(poi.Get("distance")),
		})
		return true
	})
	return places, nil
}

// Route accepts "lng,lat" pairs or free-text addresses for both ends.
func (m *MapService) Route(ctx context.Context, origin, destination, mode, city string) (*response_models.Route, error) {
	if mode == "" {
		mode = "driving"
	}
	from, err := m.coordinate(ctx, origin, city)
	if err != nil {
		return nil, err
	}
	to, err := m.coordinate(ctx, destination, city)
	if err != nil {
		return nil, err
	}
	params := url.Values{"origin": {from}, "destination": {to}}

	switch mode {
	case "driving", "walking":
		body, err := m.get(ctx, "route_"+mode, "/direction/"+mode, params)
		if err != nil {
			return nil, err
		}
		path := body.Get("route.paths.0")
		if !path.Exists() {
			return nil, fmt.Errorf("%w: no %s route found", utils.ErrMapServiceError, mode)
		}
		route := &response_models.Route{
			Mode:     mode,
			Distance: path.Get("distance").Float(),
			Duration: path.Get("duration").Int(),
			Steps:    []response_models.RouteStep{},
		}
		path.Get("steps").ForEach(func(_, step gjson.Result) bool {
			route.Steps = append(route.Steps, response_models.RouteStep{
				Instruction: step.Get("instruction").String(),
				Distance:    step.Get("distance").Float(),
				Duration:    step.Get("duration").Int(),
			})
			return true
		})
		return route, nil

	case "transit":
		if city == "" {
			return nil, utils.InvalidInput("city is required for transit routes")
		}
		params.Set("city", city)
		body, err := m.get(ctx, "route_transit", "/direction/transit/integrated", params)
		if err != nil {
			return nil, err
		}
		transit := body.Get("route.transits.0")
		if !transit.Exists() {
			return nil, fmt.Errorf("%w: no transit route found", utils.ErrMapServiceError)
		}
		route := &response_models.Route{
			Mode:     mode,
			Distance: transit.Get("distance").Float(),
			Duration: transit.Get("duration").Int(),
			Cost:     transit.Get("cost").Float(),
			Steps:    []response_models.RouteStep{},
		}
		transit.Get("segments").ForEach(func(_, seg gjson.Result) bool {
			if walk := seg.Get("walking"); walk.Get("distance").Float() > 0 {
				route.Steps = append(route.Steps, response_models.RouteStep{
					Instruction: "Walk",
					Distance:    walk.Get("distance").Float(),
					Duration:    walk.Get("duration").Int(),
				})
			}
			if line := seg.Get("bus.buslines.0"); line.Exists() {
				route.Steps = append(route.Steps, response_models.RouteStep{
					Instruction: fmt.Sprintf("%s: %s to %s", line.Get("name").String(),
						line.Get("departure_stop.name").String(), line.Get("arrival_stop.name").String()),
					Distance: line.Get("distance").Float(),
					Duration: line.Get("duration").Int(),
				})
			}
			return true
		})
		return route, nil
	}
	return nil, utils.InvalidInput("mode must be driving, walking or transit")
}

func (m *MapService) Weather(ctx context.Context, city string) (*response_models.Weather, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, utils.InvalidInput("city is required")
	}

	key := "weather:" + city
	var weather response_models.Weather
	if m.cached(ctx, key, &weather) {
		return &weather, nil
	}

	body, err := m.get(ctx, "weather", "/weather/weatherInfo", url.Values{"city": {city}, "extensions": {"base"}})
	if err != nil {
		return nil, err
	}
	live := body.Get("lives.0")
	if !live.Exists() {
		return nil, fmt.Errorf("%w: no weather for %q", utils.ErrMapServiceError, city)
	}
	weather = response_models.Weather{
		City:          live.Get("city").String(),
		Weather:       live.Get("weather").String(),
		Temperature:   live.Get("temperature").String(),
		WindDirection: live.Get("winddirection").String(),
		WindPower:     live.Get("windpower").String(),
		Humidity:      live.Get("humidity").String(),
		ReportTime:    live.Get("reporttime").String(),
	}
	m.store(ctx, key, weather, weatherCacheTTL)
	return &weather, nil
}

// StaticMap returns the rendered image and its content type.
func (m *MapService) StaticMap(ctx context.Context, location, markers string, zoom int, size string) ([]byte, string, error) {
	if m.apiKey == "" {
		return nil, "", fmt.Errorf("%w: map features need AMAP_API_KEY", utils.ErrNotConfigured)
	}
	if strings.TrimSpace(location) == "" {
		return nil, "", utils.InvalidInput("location is required")
	}
	center, err := m.coordinate(ctx, location, "")
	if err != nil {
		return nil, "", err
	}
	if zoom <= 0 {
		zoom = defaultMapZoom
	}
	if size == "" {
		size = defaultMapSize
	}
	params := url.Values{
		"key":      {m.apiKey},
		"location": {center},
		"zoom":     {strconv.Itoa(zoom)},
		"size":     {size},
	}
	if markers != "" {
		params.Set("markers", markers)
	}

	data, contentType, err := m.fetch(ctx, "/staticmap", params)
	if err == nil && !strings.HasPrefix(contentType, "image/") {
		err = fmt.Errorf("%w: %s", utils.ErrMapServiceError, gjson.GetBytes(data, "info").String())
	}
	metrics.RecordExternalCall("amap", "staticmap", err)
	if err != nil {
		return nil, "", err
	}
	return data, contentType, nil
}

func (m *MapService) coordinate(ctx context.Context, place, city string) (string, error) {
	if _, _, ok := parseLngLat(place); ok {
		return place, nil
	}
	geo, err := m.Geocode(ctx, place, city)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%.6f,%.6f", geo.Lng, geo.Lat), nil
}

func (m *MapService) get(ctx context.Context, op, path string, params url.Values) (gjson.Result, error) {
	if m.apiKey == "" {
		return gjson.Result{}, fmt.Errorf("%w: map features need AMAP_API_KEY", utils.ErrNotConfigured)
	}
	params.Set("key", m.apiKey)
	params.Set("output", "JSON")

	data, _, err := m.fetch(ctx, path, params)
	if err == nil && !gjson.ValidBytes(data) {
		err = fmt.Errorf("%w: invalid JSON from %s", utils.ErrMapServiceError, path)
	}
	var body gjson.Result
	if err == nil {
		body = gjson.ParseBytes(data)
		if body.Get("status").String() != "1" {
			err = fmt.Errorf("%w: %s (%s)", utils.ErrMapServiceError, body.Get("info").String(), body.Get("infocode").String())
		}
	}
	metrics.RecordExternalCall("amap", op, err)
	if err != nil {
		m.logger.Warn("amap request failed", zap.String("op", op), zap.Error(err))
		return gjson.Result{}, err
	}
	return body, nil
}

func (m *MapService) fetch(ctx context.Context, path string, params url.Values) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", utils.ErrMapServiceError, err)
	}
	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", utils.ErrMapServiceError, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, "", fmt.Errorf("%w: reading response: %v", utils.ErrMapServiceError, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("%w: HTTP %d", utils.ErrMapServiceError, resp.StatusCode)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func (m *MapService) cached(ctx context.Context, key string, out any) bool {
	if m.cache == nil {
		return false
	}
	data, ok := m.cache.Get(ctx, key)
	if !ok {
		return false
	}
	return json.Unmarshal(data, out) == nil
}

func (m *MapService) store(ctx context.Context, key string, value any, ttl time.Duration) {
	if m.cache == nil {
		return
	}
	if data, err := json.Marshal(value); err == nil {
		m.cache.Set(ctx, key, data, ttl)
	}
}

// amapString reads a field Amap sends as either a string or an empty array.
func amapString(r gjson.Result) string {
	if r.IsArray() {
		return ""
	}
	return r.String()
}

func parseLngLat(s string) (float64, float64, bool) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	lng, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lat, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return lng, lat, true
}
