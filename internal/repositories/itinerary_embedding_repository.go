package repositories

import (
	"context"
	"errors"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"tripwise/internal/models/db_models"
)

type ItineraryEmbeddingRepository interface {
	Upsert(ctx context.Context, embedding *db_models.ItineraryEmbedding) error
	FindSimilar(ctx context.Context, accountID string, vector pgvector.Vector, excludeID string, limit int) ([]db_models.ItineraryEmbedding, error)
	FindByItineraryID(ctx context.Context, itineraryID string) (*db_models.ItineraryEmbedding, error)
}

type itineraryEmbeddingRepository struct {
	db *gorm.DB
}

func NewItineraryEmbeddingRepository(db *gorm.DB) ItineraryEmbeddingRepository {
	return &itineraryEmbeddingRepository{db: db}
}

func (r *itineraryEmbeddingRepository) Upsert(ctx context.Context, embedding *db_models.ItineraryEmbedding) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "itinerary_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"destination", "keywords", "embedding"}),
		}).
		Create(embedding).Error
}

// FindSimilar ranks the account's other itineraries by cosine distance.
func (r *itineraryEmbeddingRepository) FindSimilar(ctx context.Context, accountID string, vector pgvector.Vector, excludeID string, limit int) ([]db_models.ItineraryEmbedding, error) {
	var results []db_models.ItineraryEmbedding

	query := `
        SELECT itinerary_id, account_id, destination, keywords, created_at,
               (1 - (embedding <=> ?)) AS similarity
        FROM itinerary_embeddings
        WHERE account_id = ? AND itinerary_id <> ?
        ORDER BY embedding <=> ?
        LIMIT ?
    `

	err := r.db.WithContext(ctx).Raw(query, vector, accountID, excludeID, vector, limit).Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *itineraryEmbeddingRepository) FindByItineraryID(ctx context.Context, itineraryID string) (*db_models.ItineraryEmbedding, error) {
	var embedding db_models.ItineraryEmbedding
	err := r.db.WithContext(ctx).First(&embedding, "itinerary_id = ?", itineraryID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &embedding, nil
}
