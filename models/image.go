package models

import "time"

// Image is the metadata row for an uploaded image and its derived sizes.
// The row and its files are never removed by the database itself; deletion
// is always an explicit call into the image store.
type Image struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	OriginalName string    `json:"original_name"`
	FileName     string    `json:"file_name"`
	MimeType     string    `json:"mime_type"`
	Size         int64     `json:"size"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	SmallPath    string    `json:"small_path"`
	MediumPath   string    `json:"medium_path"`
	LargePath    string    `json:"large_path"`
	OriginalPath string    `json:"original_path"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}
