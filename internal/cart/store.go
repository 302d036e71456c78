package cart

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/beanie/internal/models"
)

// GormStore persists one snapshot row per owner.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore constructs a database-backed snapshot store.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Load(owner uuid.UUID) ([]byte, error) {
	var snapshot models.CartSnapshot
	err := s.db.First(&snapshot, "owner_id = ?", owner).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return snapshot.Data, nil
}

func (s *GormStore) Save(owner uuid.UUID, data []byte) error {
	snapshot := models.CartSnapshot{OwnerID: owner, Data: data}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&snapshot).Error
}

// MemoryStore keeps snapshots in memory, for tests.
type MemoryStore struct {
	mu        sync.Mutex
	snapshots map[uuid.UUID][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[uuid.UUID][]byte)}
}

func (s *MemoryStore) Load(owner uuid.UUID) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshots[owner], nil
}

func (s *MemoryStore) Save(owner uuid.UUID, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[owner] = data
	return nil
}
