package models

import "time"

type NoteModel struct {
	ID          uint   `gorm:"primaryKey"`
	NoteID      string `gorm:"column:note_id;uniqueIndex;size:32;not null"`
	SubjectType string `gorm:"size:20;not null;index:idx_note_subject"`
	SubjectID   uint   `gorm:"not null;index:idx_note_subject"`
	Text        string `gorm:"type:text;not null"`
	AuthorID    uint   `gorm:"not null;default:0"`
	CreatedAt   time.Time
}

func (NoteModel) TableName() string {
	return "notes"
}
