package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/crewlinkhq/crewlink/internal/models"
	apperrors "github.com/crewlinkhq/crewlink/pkg/errors"
)

// CompanyService manages the minimal company identity the core references.
type CompanyService struct {
	db *gorm.DB
}

// NewCompanyService constructs a CompanyService.
func NewCompanyService(db *gorm.DB) (*CompanyService, error) {
	if db == nil {
		return nil, errors.New("company service: db is required")
	}
	return &CompanyService{db: db}, nil
}

// RegisterCompanyInput defines attributes required to register a company.
type RegisterCompanyInput struct {
	Name         string
	ContactPhone string
	Address      string
}

// Register persists a new company account.
func (s *CompanyService) Register(ctx context.Context, input RegisterCompanyInput) (*models.Company, error) {
	ctx = ensureContext(ctx)

	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidation("name", "company name is required")
	}

	company := models.Company{
		Name:         strings.TrimSpace(input.Name),
		ContactPhone: strings.TrimSpace(input.ContactPhone),
		Address:      strings.TrimSpace(input.Address),
	}
	if err := s.db.WithContext(ctx).Create(&company).Error; err != nil {
		return nil, fmt.Errorf("company service: create company: %w", err)
	}

	return &company, nil
}

// Get returns a company by ID.
func (s *CompanyService) Get(ctx context.Context, companyID string) (*models.Company, error) {
	ctx = ensureContext(ctx)

	var company models.Company
	if err := s.db.WithContext(ctx).First(&company, "id = ?", companyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("company", companyID)
		}
		return nil, fmt.Errorf("company service: load company: %w", err)
	}
	return &company, nil
}
