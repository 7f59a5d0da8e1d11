package models

import "time"

// ProjectStatus enumerates the coarse project lifecycle.
type ProjectStatus string

const (
	ProjectDraft      ProjectStatus = "draft"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectCancelled  ProjectStatus = "cancelled"
)

// PaymentType enumerates how a project's wage offer is expressed.
type PaymentType string

const (
	PaymentHourly PaymentType = "hourly"
	PaymentDaily  PaymentType = "daily"
	PaymentFixed  PaymentType = "fixed"
)

// WageUnit labels the unit of a project's original wage figure.
type WageUnit string

const (
	WageUnitHour  WageUnit = "hour"
	WageUnitDay   WageUnit = "day"
	WageUnitTotal WageUnit = "total"
)

// Project is a company's posted labor need with a wage basis and date window.
// DailyWage, OriginalWage and WageUnit are derived by the wage normalizer and
// are recomputed whenever the payment fields change, never edited directly.
type Project struct {
	BaseModel

	CompanyID       string        `gorm:"type:uuid;not null;index" json:"company_id"`
	Name            string        `gorm:"type:varchar(255);not null" json:"name"`
	Address         string        `gorm:"type:text;not null" json:"address"`
	RequiredWorkers int           `gorm:"not null" json:"required_workers"`
	PaymentType     PaymentType   `gorm:"type:varchar(16);not null" json:"payment_type"`
	Amount          float64       `gorm:"not null" json:"amount"`
	DailyWage       float64       `gorm:"not null" json:"daily_wage"`
	OriginalWage    float64       `gorm:"not null" json:"original_wage"`
	WageUnit        WageUnit      `gorm:"type:varchar(8);not null" json:"wage_unit"`
	StartDate       time.Time     `gorm:"not null" json:"start_date"`
	EndDate         time.Time     `gorm:"not null" json:"end_date"`
	Status          ProjectStatus `gorm:"type:varchar(16);not null;default:'draft';index" json:"status"`

	Company *Company `gorm:"constraint:OnDelete:CASCADE" json:"company,omitempty"`
}

// DurationDays returns the length of the project window in whole days,
// never less than one.
func (p *Project) DurationDays() int {
	days := int(p.EndDate.Sub(p.StartDate).Hours()/24) + 1
	if days < 1 {
		return 1
	}
	return days
}

// Mutable reports whether the project can still change state.
func (p *Project) Mutable() bool {
	return p.Status == ProjectDraft || p.Status == ProjectInProgress
}
