package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/crewlinkhq/crewlink/internal/models"
	"github.com/crewlinkhq/crewlink/internal/notifications"
	apperrors "github.com/crewlinkhq/crewlink/pkg/errors"
)

func TestRespondAcceptCreatesJobAtomically(t *testing.T) {
	db := openTestDB(t)
	gateway := &captureGateway{}
	svc, err := NewResponseService(db, gateway)
	require.NoError(t, err)

	company := seedCompany(t, db)
	project := seedProject(t, db, company, models.PaymentHourly, 50)
	worker := seedWorker(t, db, "Alice")
	invitation := seedInvitation(t, db, project, worker)

	job, err := svc.Respond(context.Background(), invitation.ID, worker.ID, DecisionAccepted, "see you Monday")
	require.NoError(t, err)
	require.NotNil(t, job)
	require.Equal(t, models.JobActive, job.Status)
	require.Equal(t, invitation.ID, job.InvitationID)
	require.Equal(t, 400.0, job.WageAmount)
	require.Equal(t, 50.0, job.OriginalWage)
	require.Equal(t, models.WageUnitHour, job.WageUnit)
	require.True(t, job.StartDate.Equal(project.StartDate))

	var reloaded models.Invitation
	require.NoError(t, db.First(&reloaded, "id = ?", invitation.ID).Error)
	require.Equal(t, models.InvitationAccepted, reloaded.Status)
	require.NotNil(t, reloaded.RespondedAt)
	require.Equal(t, "see you Monday", reloaded.ResponseNote)

	var jobs int64
	require.NoError(t, db.Model(&models.JobRecord{}).
		Where("invitation_id = ?", invitation.ID).
		Count(&jobs).Error)
	require.EqualValues(t, 1, jobs)

	events := gateway.byType(notifications.EventInvitationAccepted)
	require.Len(t, events, 1)
	require.Equal(t, company.ID, events[0].RecipientID)
	require.Equal(t, models.RoleCompany, events[0].RecipientRole)
}

func TestRespondSnapshotSurvivesWageUpdate(t *testing.T) {
	db := openTestDB(t)
	respond, err := NewResponseService(db, nil)
	require.NoError(t, err)
	projects, err := NewProjectService(db, nil)
	require.NoError(t, err)

	company := seedCompany(t, db)
	project := seedProject(t, db, company, models.PaymentHourly, 50)
	worker := seedWorker(t, db, "Alice")
	invitation := seedInvitation(t, db, project, worker)

	// Wage changes after dispatch never leak into the sent invitation.
	_, err = projects.UpdateWage(context.Background(), project.ID, models.PaymentHourly, 90, companyActor(company))
	require.NoError(t, err)

	job, err := respond.Respond(context.Background(), invitation.ID, worker.ID, DecisionAccepted, "")
	require.NoError(t, err)
	require.Equal(t, 400.0, job.WageAmount)
	require.Equal(t, 50.0, job.OriginalWage)
}

func TestRespondReject(t *testing.T) {
	db := openTestDB(t)
	gateway := &captureGateway{}
	svc, err := NewResponseService(db, gateway)
	require.NoError(t, err)

	company := seedCompany(t, db)
	project := seedProject(t, db, company, models.PaymentDaily, 300)
	worker := seedWorker(t, db, "Alice")
	invitation := seedInvitation(t, db, project, worker)

	job, err := svc.Respond(context.Background(), invitation.ID, worker.ID, DecisionRejected, "schedule clash")
	require.NoError(t, err)
	require.Nil(t, job)

	var reloaded models.Invitation
	require.NoError(t, db.First(&reloaded, "id = ?", invitation.ID).Error)
	require.Equal(t, models.InvitationRejected, reloaded.Status)

	var jobs int64
	require.NoError(t, db.Model(&models.JobRecord{}).Count(&jobs).Error)
	require.Zero(t, jobs)

	events := gateway.byType(notifications.EventInvitationRejected)
	require.Len(t, events, 1)
	require.Equal(t, "schedule clash", events[0].Message)
}

func TestRespondDoubleResponse(t *testing.T) {
	db := openTestDB(t)
	svc, err := NewResponseService(db, nil)
	require.NoError(t, err)

	company := seedCompany(t, db)
	project := seedProject(t, db, company, models.PaymentDaily, 300)
	worker := seedWorker(t, db, "Alice")
	invitation := seedInvitation(t, db, project, worker)

	_, err = svc.Respond(context.Background(), invitation.ID, worker.ID, DecisionAccepted, "")
	require.NoError(t, err)

	_, err = svc.Respond(context.Background(), invitation.ID, worker.ID, DecisionRejected, "")
	require.True(t, apperrors.IsCode(err, apperrors.CodeState))

	appErr := apperrors.FromError(err)
	require.Equal(t, "already processed", appErr.Details["reason"])

	// Exactly one job record regardless of the second attempt.
	var jobs int64
	require.NoError(t, db.Model(&models.JobRecord{}).
		Where("invitation_id = ?", invitation.ID).
		Count(&jobs).Error)
	require.EqualValues(t, 1, jobs)
}

func TestRespondExpiredInvitation(t *testing.T) {
	db := openTestDB(t)

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, err := NewResponseService(db, nil, WithResponseClock(func() time.Time { return current }))
	require.NoError(t, err)

	company := seedCompany(t, db)
	project := seedProject(t, db, company, models.PaymentDaily, 300)
	worker := seedWorker(t, db, "Alice")
	invitation := seedInvitation(t, db, project, worker)

	past := current.Add(-time.Hour)
	require.NoError(t, db.Model(invitation).Update("expires_at", past).Error)

	_, err = svc.Respond(context.Background(), invitation.ID, worker.ID, DecisionAccepted, "")
	require.True(t, apperrors.IsCode(err, apperrors.CodeExpired))

	// Expiry never mutates the stored row.
	var reloaded models.Invitation
	require.NoError(t, db.First(&reloaded, "id = ?", invitation.ID).Error)
	require.Equal(t, models.InvitationPending, reloaded.Status)
}

func TestRespondGuards(t *testing.T) {
	db := openTestDB(t)
	svc, err := NewResponseService(db, nil)
	require.NoError(t, err)

	company := seedCompany(t, db)
	project := seedProject(t, db, company, models.PaymentDaily, 300)
	worker := seedWorker(t, db, "Alice")
	invitation := seedInvitation(t, db, project, worker)

	t.Run("unknown invitation", func(t *testing.T) {
		_, err := svc.Respond(context.Background(), "missing", worker.ID, DecisionAccepted, "")
		require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
	})

	t.Run("foreign worker reads as not found", func(t *testing.T) {
		stranger := seedWorker(t, db, "Mallory")
		_, err := svc.Respond(context.Background(), invitation.ID, stranger.ID, DecisionAccepted, "")
		require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
	})

	t.Run("invalid decision", func(t *testing.T) {
		_, err := svc.Respond(context.Background(), invitation.ID, worker.ID, Decision("maybe"), "")
		require.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
	})

	t.Run("cancelled invitation", func(t *testing.T) {
		require.NoError(t, db.Model(invitation).Update("status", models.InvitationCancelled).Error)
		_, err := svc.Respond(context.Background(), invitation.ID, worker.ID, DecisionAccepted, "")
		require.True(t, apperrors.IsCode(err, apperrors.CodeState))
	})
}
