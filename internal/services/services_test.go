package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/crewlinkhq/crewlink/internal/database/testutil"
	"github.com/crewlinkhq/crewlink/internal/models"
	"github.com/crewlinkhq/crewlink/internal/notifications"
)

// captureGateway records emitted events for assertions.
type captureGateway struct {
	mu     sync.Mutex
	events []notifications.Event
}

func (g *captureGateway) Notify(ctx context.Context, event notifications.Event) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.events = append(g.events, event)
}

func (g *captureGateway) byType(eventType string) []notifications.Event {
	g.mu.Lock()
	defer g.mu.Unlock()

	var out []notifications.Event
	for _, event := range g.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}

func seedCompany(t *testing.T, db *gorm.DB) *models.Company {
	t.Helper()

	company := &models.Company{Name: "Brightside Construction"}
	require.NoError(t, db.Create(company).Error)
	return company
}

func seedWorker(t *testing.T, db *gorm.DB, name string) *models.Worker {
	t.Helper()

	worker := &models.Worker{Name: name}
	require.NoError(t, db.Create(worker).Error)
	return worker
}

func seedProject(t *testing.T, db *gorm.DB, company *models.Company, paymentType models.PaymentType, amount float64) *models.Project {
	t.Helper()

	start := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	project := &models.Project{
		CompanyID:       company.ID,
		Name:            "Warehouse Shift",
		Address:         "12 Dockside Rd",
		RequiredWorkers: 3,
		PaymentType:     paymentType,
		Amount:          amount,
		StartDate:       start,
		EndDate:         start.AddDate(0, 0, 4),
		Status:          models.ProjectDraft,
	}

	switch paymentType {
	case models.PaymentHourly:
		project.DailyWage = amount * 8
		project.WageUnit = models.WageUnitHour
	case models.PaymentDaily:
		project.DailyWage = amount
		project.WageUnit = models.WageUnitDay
	case models.PaymentFixed:
		project.DailyWage = amount / float64(project.DurationDays())
		project.WageUnit = models.WageUnitTotal
	}
	project.OriginalWage = amount

	require.NoError(t, db.Create(project).Error)
	return project
}

func seedInvitation(t *testing.T, db *gorm.DB, project *models.Project, worker *models.Worker) *models.Invitation {
	t.Helper()

	invitation := &models.Invitation{
		ProjectID:    project.ID,
		WorkerID:     worker.ID,
		CompanyID:    project.CompanyID,
		WageAmount:   project.DailyWage,
		OriginalWage: project.OriginalWage,
		WageUnit:     project.WageUnit,
		Status:       models.InvitationPending,
	}
	require.NoError(t, db.Create(invitation).Error)
	return invitation
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testutil.MustOpenTestDB(t)
}

func companyActor(company *models.Company) Actor {
	return Actor{ID: company.ID, Role: models.RoleCompany}
}

func workerActor(worker *models.Worker) Actor {
	return Actor{ID: worker.ID, Role: models.RoleWorker}
}
