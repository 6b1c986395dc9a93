package model

import "gorm.io/datatypes"

// DocumentRecord is one row of the externally owned documents table.
// Metadata is passed through exactly as the store returns it.
type DocumentRecord struct {
	ID       int64          `gorm:"primaryKey;column:id" json:"id"`
	Metadata datatypes.JSON `gorm:"column:metadata" json:"metadata"`
}
