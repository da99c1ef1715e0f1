package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"tripwise/internal/models/db_models"
	"tripwise/internal/models/request_models"
	"tripwise/internal/models/response_models"
	"tripwise/internal/repositories"
	"tripwise/pkg/itinerary"
	mem "tripwise/pkg/memcache"
	"tripwise/pkg/metrics"
	"tripwise/pkg/utils"
)

const (
	MaxTripDays         = 30
	planCacheTTL        = time.Hour
	generateTemperature = 0.7
	defaultSimilarLimit = 5
	maxKeywords         = 20
)

type ItineraryServiceInterface interface {
	Generate(ctx context.Context, request request_models.GenerateItineraryRequest) (*itinerary.Document, error)
	Save(ctx context.Context, userID string, request request_models.SaveItineraryRequest) (*itinerary.Record, error)
	Get(ctx context.Context, id string) (*itinerary.Record, error)
	List(ctx context.Context, userID string) ([]itinerary.Record, error)
	Update(ctx context.Context, userID, id string, request request_models.SaveItineraryRequest) (*itinerary.Record, error)
	Delete(ctx context.Context, userID, id string) error
	Similar(ctx context.Context, userID, id string, limit int) ([]response_models.SimilarItinerary, error)
}

type ItineraryService struct {
	itineraryRepo repositories.ItineraryRepository
	embeddingRepo repositories.ItineraryEmbeddingRepository
	ai            utils.AIClientInterface
	planCache     *mem.TTLCache[*itinerary.Document]
	logger        *zap.Logger
	now           func() time.Time
}

func NewItineraryService(
	itineraryRepo repositories.ItineraryRepository,
	embeddingRepo repositories.ItineraryEmbeddingRepository,
	ai utils.AIClientInterface,
	planCache *mem.TTLCache[*itinerary.Document],
	logger *zap.Logger,
) ItineraryServiceInterface {
	return &ItineraryService{
		itineraryRepo: itineraryRepo,
		embeddingRepo: embeddingRepo,
		ai:            ai,
		planCache:     planCache,
		logger:        logger,
		now:           time.Now,
	}
}

// Generate asks the model for an itinerary and normalizes whatever comes back
// into a valid document with exactly one day per calendar day of the trip.
func (s *ItineraryService) Generate(ctx context.Context, request request_models.GenerateItineraryRequest) (*itinerary.Document, error) {
	days, err := itinerary.TripDays(request.StartDate, request.EndDate)
	if err != nil {
		return nil, utils.InvalidInput("%v", err)
	}
	if days > MaxTripDays {
		return nil, utils.InvalidInput("trips are limited to %d days", MaxTripDays)
	}
	if request.PeopleCount < 1 {
		return nil, utils.InvalidInput("people_count must be positive")
	}
	if strings.TrimSpace(request.Destination) == "" {
		return nil, utils.InvalidInput("destination is required")
	}

	key := planCacheKey(request)
	if cached, ok := s.planCache.Get(key); ok {
		metrics.RecordGeneration(s.ai.Provider(), "cached", 0)
		return cached.Clone(), nil
	}

	started := time.Now()
	raw, err := s.ai.CompleteJSON(ctx, itinerarySystemPrompt, buildItineraryPrompt(request, days), generateTemperature)
	if err != nil {
		metrics.RecordGeneration(s.ai.Provider(), "error", time.Since(started))
		s.logger.Error("itinerary generation failed",
			zap.String("provider", s.ai.Provider()),
			zap.String("destination", request.Destination),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", utils.ErrAIServiceUnavailable, err)
	}

	outcome := "ok"
	var doc itinerary.Document
	if err := utils.DecodeModelJSON(raw, &doc); err != nil {
		s.logger.Warn("model returned unusable itinerary JSON, using fallback",
			zap.String("destination", request.Destination),
			zap.Int("response_length", len(raw)),
			zap.Error(err))
		doc = fallbackDocument()
		outcome = "fallback"
	}

	normalizeDocument(&doc, request, days, s.now())
	if err := doc.Validate(); err != nil {
		s.logger.Warn("normalized itinerary failed validation, using fallback", zap.Error(err))
		doc = fallbackDocument()
		normalizeDocument(&doc, request, days, s.now())
		outcome = "fallback"
		if err := doc.Validate(); err != nil {
			metrics.RecordGeneration(s.ai.Provider(), "invalid", time.Since(started))
			return nil, fmt.Errorf("%w: %v", utils.ErrAIServiceUnavailable, err)
		}
	}

	metrics.RecordGeneration(s.ai.Provider(), outcome, time.Since(started))
	s.logger.Info("itinerary generated",
		zap.String("destination", request.Destination),
		zap.Int("days", days),
		zap.String("outcome", outcome),
		zap.Duration("took", time.Since(started)))

	if outcome == "ok" {
		s.planCache.Set(key, doc.Clone(), planCacheTTL)
	}
	return &doc, nil
}

func (s *ItineraryService) Save(ctx context.Context, userID string, request request_models.SaveItineraryRequest) (*itinerary.Record, error) {
	accountID, err := uuid.Parse(userID)
	if err != nil {
		return nil, utils.ErrInvalidToken
	}

	model := &db_models.Itinerary{AccountID: accountID}
	if err := applySaveRequest(model, request); err != nil {
		return nil, err
	}

	if err := s.itineraryRepo.Create(ctx, model); err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}

	s.indexItinerary(ctx, model)
	return toRecord(model), nil
}

func (s *ItineraryService) Get(ctx context.Context, id string) (*itinerary.Record, error) {
	model, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return toRecord(model), nil
}

func (s *ItineraryService) List(ctx context.Context, userID string) ([]itinerary.Record, error) {
	models, err := s.itineraryRepo.ListByAccount(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	records := make([]itinerary.Record, 0, len(models))
	for i := range models {
		records = append(records, *toRecord(&models[i]))
	}
	return records, nil
}

func (s *ItineraryService) Update(ctx context.Context, userID, id string, request request_models.SaveItineraryRequest) (*itinerary.Record, error) {
	model, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := applySaveRequest(model, request); err != nil {
		return nil, err
	}
	if err := s.itineraryRepo.Update(ctx, model); err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}

	s.indexItinerary(ctx, model)
	return toRecord(model), nil
}

func (s *ItineraryService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.findOwned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.itineraryRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	return nil
}

// Similar ranks the caller's other itineraries by embedding distance to id.
func (s *ItineraryService) Similar(ctx context.Context, userID, id string, limit int) ([]response_models.SimilarItinerary, error) {
	model, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultSimilarLimit
	}

	stored, err := s.embeddingRepo.FindByItineraryID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if stored == nil {
		if stored = s.indexItinerary(ctx, model); stored == nil {
			return []response_models.SimilarItinerary{}, nil
		}
	}

	matches, err := s.embeddingRepo.FindSimilar(ctx, userID, stored.Embedding, id, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}

	out := make([]response_models.SimilarItinerary, 0, len(matches))
	for _, m := range matches {
		out = append(out, response_models.SimilarItinerary{
			ID:          m.ItineraryID.String(),
			Destination: m.Destination,
			Keywords:    []string(m.Keywords),
			Similarity:  m.Similarity,
		})
	}
	return out, nil
}

func (s *ItineraryService) find(ctx context.Context, id string) (*db_models.Itinerary, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, utils.ErrItineraryNotFound
	}
	model, err := s.itineraryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if model == nil {
		return nil, utils.ErrItineraryNotFound
	}
	return model, nil
}

func (s *ItineraryService) findOwned(ctx context.Context, userID, id string) (*db_models.Itinerary, error) {
	model, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if model.AccountID.String() != userID {
		return nil, utils.ErrForbidden
	}
	return model, nil
}

// indexItinerary refreshes the stored embedding. Failures are logged only; a
// missing embedding just drops the itinerary from similarity results.
func (s *ItineraryService) indexItinerary(ctx context.Context, model *db_models.Itinerary) *db_models.ItineraryEmbedding {
	record := toRecord(model)
	doc := itinerary.DocumentFromRecord(record)

	vector, err := s.ai.GetEmbedding(ctx, documentText(doc))
	if err != nil {
		s.logger.Warn("embedding itinerary, using hashed vector", zap.String("itinerary_id", record.ID), zap.Error(err))
		vector = utils.TextToVector(documentText(doc))
	}

	embedding := &db_models.ItineraryEmbedding{
		ItineraryID: model.ID,
		AccountID:   model.AccountID,
		Destination: model.Destination,
		Keywords:    documentKeywords(doc),
		Embedding:   vector,
	}
	if err := s.embeddingRepo.Upsert(ctx, embedding); err != nil {
		s.logger.Warn("storing itinerary embedding", zap.String("itinerary_id", record.ID), zap.Error(err))
		return nil
	}
	return embedding
}

// applySaveRequest validates request and copies it onto model. The envelope
// facts are folded into the embedded document so both always agree.
func applySaveRequest(model *db_models.Itinerary, request request_models.SaveItineraryRequest) error {
	if strings.TrimSpace(request.Destination) == "" {
		return utils.InvalidInput("destination is required")
	}
	if _, err := itinerary.TripDays(request.StartDate, request.EndDate); err != nil {
		return utils.InvalidInput("%v", err)
	}
	if request.PeopleCount < 1 {
		return utils.InvalidInput("people_count must be positive")
	}
	if request.Budget < 0 {
		return utils.InvalidInput("budget must not be negative")
	}

	title := strings.TrimSpace(request.Title)
	if title == "" {
		title = itinerary.DefaultTitle(request.Destination)
	}

	var aiResponse datatypes.JSON
	if request.AIResponse != nil {
		doc := itinerary.DocumentFromRecord(&itinerary.Record{
			Destination: request.Destination,
			StartDate:   request.StartDate,
			EndDate:     request.EndDate,
			Budget:      request.Budget,
			PeopleCount: request.PeopleCount,
			Preferences: request.Preferences,
			AIResponse:  request.AIResponse,
		})
		if err := doc.Validate(); err != nil {
			return utils.InvalidInput("ai_response: %v", err)
		}
		raw, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encoding itinerary document: %w", err)
		}
		aiResponse = datatypes.JSON(raw)
	}

	preferences := request.Preferences
	if preferences == nil {
		preferences = map[string]string{}
	}

	model.Title = title
	model.Destination = strings.TrimSpace(request.Destination)
	model.StartDate = request.StartDate
	model.EndDate = request.EndDate
	model.Budget = request.Budget
	model.PeopleCount = request.PeopleCount
	model.Preferences = datatypes.NewJSONType(preferences)
	model.AIResponse = aiResponse
	return nil
}

func toRecord(model *db_models.Itinerary) *itinerary.Record {
	record := &itinerary.Record{
		ID:          model.ID.String(),
		UserID:      model.AccountID.String(),
		Title:       model.Title,
		Destination: model.Destination,
		StartDate:   model.StartDate,
		EndDate:     model.EndDate,
		Budget:      model.Budget,
		PeopleCount: model.PeopleCount,
		Preferences: model.Preferences.Data(),
		CreatedAt:   utils.FormatUnixRFC3339(model.CreatedAt),
		UpdatedAt:   utils.FormatUnixRFC3339(model.UpdatedAt),
	}
	if len(model.AIResponse) > 0 {
		var doc itinerary.Document
		if err := json.Unmarshal(model.AIResponse, &doc); err == nil {
			record.AIResponse = &doc
		}
	}
	return record
}

func planCacheKey(request request_models.GenerateItineraryRequest) string {
	raw, _ := json.Marshal(request)
	sum := sha256.Sum256(raw)
	return "plan:" + hex.EncodeToString(sum[:])
}

// fallbackDocument is served when the model's answer cannot be decoded.
func fallbackDocument() itinerary.Document {
	return itinerary.Document{
		Summary:    "The itinerary was generated but its details could not be read. Edit the days below or generate again.",
		TravelTips: []string{"Generate the itinerary again for a full day-by-day plan."},
	}
}

// normalizeDocument forces doc into shape for the request: metadata from the
// request, exactly days contiguous days with computed dates, known item types
// and no negative amounts.
func normalizeDocument(doc *itinerary.Document, request request_models.GenerateItineraryRequest, days int, now time.Time) {
	doc.Metadata = &itinerary.Metadata{
		Destination: strings.TrimSpace(request.Destination),
		StartDate:   request.StartDate,
		EndDate:     request.EndDate,
		Budget:      request.Budget,
		PeopleCount: request.PeopleCount,
		Preferences: request.Preferences,
		TotalDays:   days,
		GeneratedAt: now.Format(time.RFC3339),
	}

	start, _ := itinerary.ParseDate(request.StartDate)
	normalized := make([]itinerary.Day, days)
	for i := range normalized {
		var day itinerary.Day
		if i < len(doc.DailyItinerary) {
			day = doc.DailyItinerary[i]
		}
		day.Day = i + 1
		day.Date = start.AddDate(0, 0, i).Format(itinerary.DateLayout)
		if day.Items == nil {
			day.Items = []itinerary.Item{}
		}
		for j := range day.Items {
			item := &day.Items[j]
			if t, ok := itinerary.ParseActivityType(string(item.Type)); ok {
				item.Type = t
			} else {
				item.Type = itinerary.ActivityOther
			}
			if item.EstimatedCost < 0 {
				item.EstimatedCost = 0
			}
		}
		normalized[i] = day
	}
	doc.DailyItinerary = normalized

	for _, c := range itinerary.Categories {
		if doc.BudgetBreakdown.Get(c) < 0 {
			doc.BudgetBreakdown.Set(c, 0)
		}
	}
	if doc.AccommodationSuggestions == nil {
		doc.AccommodationSuggestions = []itinerary.Accommodation{}
	}
	if doc.TravelTips == nil {
		doc.TravelTips = []string{}
	}
}

func documentText(doc *itinerary.Document) string {
	var sb strings.Builder
	if doc.Metadata != nil {
		sb.WriteString(doc.Metadata.Destination)
		sb.WriteString(". ")
		sb.WriteString(describePreferences(doc.Metadata.Preferences))
		sb.WriteString(". ")
	}
	sb.WriteString(doc.Summary)
	for _, day := range doc.DailyItinerary {
		sb.WriteString(" ")
		sb.WriteString(day.Theme)
		for _, item := range day.Items {
			sb.WriteString(" ")
			sb.WriteString(item.Title)
		}
	}
	return sb.String()
}

func documentKeywords(doc *itinerary.Document) []string {
	seen := map[string]bool{}
	var out []string
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" || seen[strings.ToLower(s)] || len(out) >= maxKeywords {
			return
		}
		seen[strings.ToLower(s)] = true
		out = append(out, s)
	}
	if doc.Metadata != nil {
		add(doc.Metadata.Destination)
		keys := make([]string, 0, len(doc.Metadata.Preferences))
		for k := range doc.Metadata.Preferences {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			add(doc.Metadata.Preferences[k])
		}
	}
	for _, day := range doc.DailyItinerary {
		add(day.Theme)
	}
	for _, day := range doc.DailyItinerary {
		for _, item := range day.Items {
			if item.Type == itinerary.ActivityAttraction {
				add(item.Title)
			}
		}
	}
	return out
}
