package apiclient

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"tripwise/pkg/gateway"
)

type PDFService struct {
	gw *gateway.Client
}

func NewPDFService(gw *gateway.Client) *PDFService {
	return &PDFService{gw: gw}
}

// Download fetches the server-rendered PDF of a saved itinerary.
func (s *PDFService) Download(ctx context.Context, id string) ([]byte, error) {
	body, contentType, err := s.gw.Raw(ctx, "/itinerary/"+url.PathEscape(id)+"/pdf")
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(contentType, "application/pdf") {
		return nil, fmt.Errorf("apiclient: expected a PDF, got %q", contentType)
	}
	return body, nil
}
