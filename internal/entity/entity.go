package entity

import (
	"time"
)

// Reference identifies an entity to API consumers.
type Reference struct {
	TypeID string
	Bundle string
	UUID   string
}

// Referencer is implemented by values that can be addressed by Reference,
// such as a loaded *Entity.
type Referencer interface {
	Reference() Reference
}

// Entity is a stored content item.
type Entity struct {
	ID      uint           `gorm:"primaryKey;autoIncrement"`
	UUID    string         `gorm:"type:text;size:36;not null;uniqueIndex"`
	TypeID  string         `gorm:"column:entity_type;type:text;not null;index"`
	Bundle  string         `gorm:"type:text;not null"`
	Label   string         `gorm:"type:text"`
	Fields  map[string]any `gorm:"type:text;serializer:json"`
	Created time.Time      `gorm:"autoCreateTime"`
	Changed time.Time      `gorm:"autoUpdateTime"`
}

// TableName sets the table name of the model.
func (Entity) TableName() string {
	return "entities"
}

// Reference returns the entity's reference.
func (e *Entity) Reference() Reference {
	return Reference{TypeID: e.TypeID, Bundle: e.Bundle, UUID: e.UUID}
}
