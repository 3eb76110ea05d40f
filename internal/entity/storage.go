package entity

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vyrodovalexey/jsonapi-path-support/internal/observability"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/util"
)

// memoryDSN keeps the database in memory.
const memoryDSN = ":memory:"

// ErrNotFound is returned when an entity does not exist.
var ErrNotFound = fmt.Errorf("entity %w", util.ErrNotFound)

// Storage persists entities with gorm.
type Storage struct {
	db *gorm.DB
}

// OpenStorage opens a sqlite database and migrates the schema.
func OpenStorage(ctx context.Context, dsn string, logger observability.Logger) (*Storage, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: newGormLogger(logger),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// Every connection to ":memory:" would get its own database.
	if dsn == memoryDSN {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access sql database: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	s := NewStorage(db)
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// NewStorage wraps an open gorm database.
func NewStorage(db *gorm.DB) *Storage {
	return &Storage{db: db}
}

// Migrate creates or updates the schema.
func (s *Storage) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&Entity{}); err != nil {
		return fmt.Errorf("failed to auto-migrate tables: %w", err)
	}
	return nil
}

// Create inserts a new entity, assigning a UUID if it has none.
func (s *Storage) Create(ctx context.Context, e *Entity) error {
	if e.UUID == "" {
		e.UUID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("failed to create %s entity: %w", e.TypeID, err)
	}
	return nil
}

// Load loads an entity by its numeric ID. Non-numeric IDs never match.
func (s *Storage) Load(ctx context.Context, typeID, id string) (*Entity, error) {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.first(ctx, "entity_type = ? AND id = ?", typeID, uint(n))
}

// LoadByUUID loads an entity by UUID.
func (s *Storage) LoadByUUID(ctx context.Context, typeID, id string) (*Entity, error) {
	return s.first(ctx, "entity_type = ? AND uuid = ?", typeID, id)
}

func (s *Storage) first(ctx context.Context, query string, args ...any) (*Entity, error) {
	var e Entity
	result := s.db.WithContext(ctx).Where(query, args...).First(&e)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load entity: %w", result.Error)
	}
	return &e, nil
}

// Save updates an existing entity.
func (s *Storage) Save(ctx context.Context, e *Entity) error {
	if err := s.db.WithContext(ctx).Save(e).Error; err != nil {
		return fmt.Errorf("failed to save entity %s: %w", e.UUID, err)
	}
	return nil
}

// Delete removes an entity.
func (s *Storage) Delete(ctx context.Context, e *Entity) error {
	result := s.db.WithContext(ctx).Delete(&Entity{}, e.ID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete entity %s: %w", e.UUID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns all entities of a type ordered by ID.
func (s *Storage) List(ctx context.Context, typeID string) ([]Entity, error) {
	var entities []Entity
	if err := s.db.WithContext(ctx).Where("entity_type = ?", typeID).Order("id").Find(&entities).Error; err != nil {
		return nil, fmt.Errorf("failed to list %s entities: %w", typeID, err)
	}
	return entities, nil
}

// Ping checks the database connection.
func (s *Storage) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database.
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
