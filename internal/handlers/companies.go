package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	iauth "github.com/crewlinkhq/crewlink/internal/auth"
	"github.com/crewlinkhq/crewlink/internal/models"
	"github.com/crewlinkhq/crewlink/internal/services"
	"github.com/crewlinkhq/crewlink/pkg/response"
)

// CompanyHandler exposes company registration and profile endpoints.
type CompanyHandler struct {
	companies *services.CompanyService
	jwt       *iauth.JWTService
}

// NewCompanyHandler constructs a company handler.
func NewCompanyHandler(db *gorm.DB, jwt *iauth.JWTService) (*CompanyHandler, error) {
	companies, err := services.NewCompanyService(db)
	if err != nil {
		return nil, err
	}
	return &CompanyHandler{companies: companies, jwt: jwt}, nil
}

type registerCompanyRequest struct {
	Name         string `json:"name" validate:"required,max=255"`
	ContactPhone string `json:"contact_phone" validate:"omitempty,max=32"`
	Address      string `json:"address" validate:"omitempty,max=512"`
}

type registeredResponse struct {
	ID    string `json:"id"`
	Token string `json:"token"`
}

// Register creates a company account and issues its bearer token.
// POST /api/companies
func (h *CompanyHandler) Register(c *gin.Context) {
	var req registerCompanyRequest
	if !bindAndValidate(c, &req) {
		return
	}

	company, err := h.companies.Register(requestContext(c), services.RegisterCompanyInput{
		Name:         req.Name,
		ContactPhone: req.ContactPhone,
		Address:      req.Address,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	token, err := h.jwt.GenerateToken(company.ID, models.RoleCompany)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, registeredResponse{ID: company.ID, Token: token})
}

// Get returns a company profile.
// GET /api/companies/:id
func (h *CompanyHandler) Get(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	company, err := h.companies.Get(requestContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, company)
}
