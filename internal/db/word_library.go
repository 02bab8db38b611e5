package db

import "time"

type WordLibrary struct {
	ID        uint      `gorm:"primaryKey"`
	Category  string    `gorm:"size:64;not null;default:''"`
	Word      string    `gorm:"size:40;not null;uniqueIndex:idx_word_library_word"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (WordLibrary) TableName() string {
	return "word_library"
}
