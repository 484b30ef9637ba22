package gorm

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/miguelmarques1/church-web/pkg/server/store"
)

var _ store.HealthStore = (*HealthStore)(nil)

// HealthStore probes the users table.
type HealthStore struct {
	db *gorm.DB
}

func NewHealthStore(db *gorm.DB) *HealthStore {
	return &HealthStore{db: db}
}

func (s *HealthStore) CheckConnectivity(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Exec("SELECT 1 FROM users LIMIT 1").Error; err != nil {
		return fmt.Errorf("users table unreachable: %w", err)
	}
	return nil
}
