package db_models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"tripwise/pkg/utils"
)

// BaseModel gives every table a time-ordered UUID key, unix-second
// timestamps and soft delete. Ordering by id matches creation order.
type BaseModel struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	CreatedAt int64          `gorm:"autoCreateTime"`
	UpdatedAt int64          `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (b *BaseModel) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		b.ID = id
	}
	now := utils.NowUnixSeconds()
	if b.CreatedAt == 0 {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
	return nil
}

func (b *BaseModel) BeforeUpdate(*gorm.DB) error {
	b.UpdatedAt = utils.NowUnixSeconds()
	return nil
}
