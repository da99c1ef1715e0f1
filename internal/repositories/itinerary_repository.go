package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"tripwise/internal/infra"
	"tripwise/internal/models/db_models"
)

type ItineraryRepository interface {
	Create(ctx context.Context, itinerary *db_models.Itinerary) error
	FindByID(ctx context.Context, id string) (*db_models.Itinerary, error)
	ListByAccount(ctx context.Context, accountID string) ([]db_models.Itinerary, error)
	Update(ctx context.Context, itinerary *db_models.Itinerary) error
	Delete(ctx context.Context, id string) error
}

type itineraryRepository struct {
	db *gorm.DB
}

func NewItineraryRepository(db *gorm.DB) ItineraryRepository {
	return &itineraryRepository{db: db}
}

func (r *itineraryRepository) Create(ctx context.Context, itinerary *db_models.Itinerary) error {
	return r.db.WithContext(ctx).Create(itinerary).Error
}

func (r *itineraryRepository) FindByID(ctx context.Context, id string) (*db_models.Itinerary, error) {
	var itinerary db_models.Itinerary
	err := r.db.WithContext(ctx).First(&itinerary, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &itinerary, nil
}

func (r *itineraryRepository) ListByAccount(ctx context.Context, accountID string) ([]db_models.Itinerary, error) {
	var itineraries []db_models.Itinerary
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Find(&itineraries).Error
	return itineraries, err
}

// Update writes every column, the envelope is always replaced whole.
func (r *itineraryRepository) Update(ctx context.Context, itinerary *db_models.Itinerary) error {
	return r.db.WithContext(ctx).Save(itinerary).Error
}

// Delete drops the itinerary's embedding and soft-deletes the itinerary together.
func (r *itineraryRepository) Delete(ctx context.Context, id string) error {
	return infra.WithTransaction(r.db.WithContext(ctx), func(tx *gorm.DB) error {
		if err := tx.Delete(&db_models.ItineraryEmbedding{}, "itinerary_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&db_models.Itinerary{}, "id = ?", id).Error
	})
}
