package models

// Company represents a business account that posts projects and pays workers.
type Company struct {
	BaseModel

	Name          string  `gorm:"type:varchar(255);not null" json:"name"`
	ContactPhone  string  `gorm:"type:varchar(32);index" json:"contact_phone"`
	Address       string  `gorm:"type:text" json:"address"`
	Rating        float64 `gorm:"default:0" json:"rating"`
	RatingCount   int     `gorm:"default:0" json:"rating_count"`
	ProjectsTotal int     `gorm:"default:0" json:"projects_total"`
}
