package models

import "time"

// Paper is an exam paper uploaded by a teacher.
type Paper struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"size:255;not null" json:"title"`
	Filename   string    `gorm:"size:512;not null" json:"filename"`
	UploadedBy string    `gorm:"size:64;not null" json:"uploaded_by"`
	UploadedAt time.Time `gorm:"not null" json:"uploaded_at"`
}

// TableName pins the table name used by the schema.
func (Paper) TableName() string {
	return "papers"
}
