package models

import "gorm.io/datatypes"

// Worker represents an individual available for short-term engagements.
type Worker struct {
	BaseModel

	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Phone       string         `gorm:"type:varchar(32);index" json:"phone"`
	Rating      float64        `gorm:"default:0" json:"rating"`
	RatingCount int            `gorm:"default:0" json:"rating_count"`
	Skills      datatypes.JSON `json:"skills"`
	JobsDone    int            `gorm:"default:0" json:"jobs_done"`
}
