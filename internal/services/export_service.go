package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"tripwise/pkg/itinerary"
	"tripwise/pkg/pdfexport"
)

type ExportServiceInterface interface {
	// ItineraryPDF renders a saved itinerary and returns the file with a
	// suggested download name.
	ItineraryPDF(ctx context.Context, id string) ([]byte, string, error)
}

type ExportService struct {
	itineraries   ItineraryServiceInterface
	maps          MapServiceInterface
	publicBaseURL string
	fontPath      string
	logger        *zap.Logger
}

func NewExportService(itineraries ItineraryServiceInterface, maps MapServiceInterface, publicBaseURL, fontPath string, logger *zap.Logger) ExportServiceInterface {
	return &ExportService{
		itineraries:   itineraries,
		maps:          maps,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		fontPath:      fontPath,
		logger:        logger,
	}
}

func (s *ExportService) ItineraryPDF(ctx context.Context, id string) ([]byte, string, error) {
	record, err := s.itineraries.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	doc := itinerary.DocumentFromRecord(record)

	opts := pdfexport.Options{
		FontPath: s.fontPath,
		Logger:   s.logger,
	}
	if s.publicBaseURL != "" {
		opts.ShareURL = fmt.Sprintf("%s/itinerary/%s", s.publicBaseURL, record.ID)
	}
	if s.maps != nil {
		image, _, err := s.maps.StaticMap(ctx, record.Destination, "", 0, "")
		if err != nil {
			s.logger.Warn("static map unavailable for PDF", zap.String("itinerary_id", record.ID), zap.Error(err))
		} else {
			opts.MapImage = image
		}
	}

	data, err := pdfexport.Render(doc, opts)
	if err != nil {
		return nil, "", fmt.Errorf("rendering itinerary %s: %w", record.ID, err)
	}
	return data, pdfFilename(record), nil
}

func pdfFilename(record *itinerary.Record) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '"', ':', '*', '?', '<', '>', '|':
			return '-'
		}
		return r
	}, strings.TrimSpace(record.Destination))
	if name == "" {
		name = "itinerary"
	}
	return fmt.Sprintf("%s_%s.pdf", name, record.StartDate)
}
