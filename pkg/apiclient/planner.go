package apiclient

import (
	"context"
	"fmt"
	"net/url"

	"tripwise/internal/models/request_models"
	"tripwise/internal/models/response_models"
	"tripwise/pkg/gateway"
	"tripwise/pkg/itinerary"
)

// PlannerService covers /itinerary. It is the container's itinerary.Store.
type PlannerService struct {
	gw *gateway.Client
}

var _ itinerary.Store = (*PlannerService)(nil)

func NewPlannerService(gw *gateway.Client) *PlannerService {
	return &PlannerService{gw: gw}
}

// Generate asks the backend for a fresh, unsaved document.
func (s *PlannerService) Generate(ctx context.Context, req request_models.GenerateItineraryRequest) (*itinerary.Document, error) {
	var doc itinerary.Document
	if err := s.gw.Post(ctx, "/itinerary/generate", req, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *PlannerService) Get(ctx context.Context, id string) (*itinerary.Record, error) {
	var rec itinerary.Record
	if err := s.gw.Get(ctx, "/itinerary/"+url.PathEscape(id), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *PlannerService) Create(ctx context.Context, req itinerary.SaveRequest) (*itinerary.Record, error) {
	var rec itinerary.Record
	if err := s.gw.Post(ctx, "/itinerary/save", req, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *PlannerService) Update(ctx context.Context, id string, req itinerary.SaveRequest) (*itinerary.Record, error) {
	var rec itinerary.Record
	if err := s.gw.Put(ctx, "/itinerary/"+url.PathEscape(id), req, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *PlannerService) List(ctx context.Context) ([]itinerary.Record, error) {
	var recs []itinerary.Record
	if err := s.gw.Get(ctx, "/itinerary/list", &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *PlannerService) Delete(ctx context.Context, id string) error {
	return s.gw.Delete(ctx, "/itinerary/"+url.PathEscape(id), nil)
}

func (s *PlannerService) Similar(ctx context.Context, id string, limit int) ([]response_models.SimilarItinerary, error) {
	path := "/itinerary/" + url.PathEscape(id) + "/similar"
	if limit > 0 {
		path += fmt.Sprintf("?limit=%d", limit)
	}
	var out []response_models.SimilarItinerary
	if err := s.gw.Get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}
