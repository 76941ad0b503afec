package world

import (
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ChangeRecord is the persisted form of a committed change.
type ChangeRecord struct {
	ID uint `gorm:"primaryKey"`

	RoundType  string `gorm:"size:32"`
	Kind       uint8
	EntityID   int
	Item       string `gorm:"size:64"`
	Node       string `gorm:"size:64"`
	OldValue   int
	NewValue   int
	Reversible bool

	CreatedAt time.Time
}

// OpenDB opens (or creates) the sqlite change log database.
func OpenDB(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&ChangeRecord{}); err != nil {
		return nil, err
	}

	return db, nil
}

// persist writes a batch of changes in one transaction. Callers hold
// b.mu.
func (b *Bridge) persist(roundType string, changes []Change) error {
	records := make([]ChangeRecord, 0, len(changes))
	for _, change := range changes {
		records = append(records, ChangeRecord{
			RoundType:  roundType,
			Kind:       uint8(change.Kind),
			EntityID:   change.EntityID,
			Item:       change.Item,
			Node:       change.Node,
			OldValue:   change.Old,
			NewValue:   change.New,
			Reversible: change.Reversible,
			CreatedAt:  change.At,
		})
	}
	if len(records) == 0 {
		return nil
	}
	return b.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&records).Error
	})
}
