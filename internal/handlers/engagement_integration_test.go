package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/crewlinkhq/crewlink/internal/handlers/testutil"
	"github.com/crewlinkhq/crewlink/internal/models"
	"github.com/crewlinkhq/crewlink/internal/services"
)

func TestHealthEndpoint(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := testutil.DecodeResponse(t, w)
	require.True(t, resp.Success)
}

func TestRegistrationAndProfiles(t *testing.T) {
	env := testutil.NewEnv(t)

	company := env.RegisterCompany("Northside Builders")
	worker := env.RegisterWorker("Bob Mason", "masonry", "scaffolding")

	// Profiles require authentication.
	unauth := env.Request(http.MethodGet, "/api/companies/"+company.ID, nil, "")
	require.Equal(t, http.StatusUnauthorized, unauth.Code)

	got := env.Request(http.MethodGet, "/api/companies/"+company.ID, nil, company.Token)
	require.Equal(t, http.StatusOK, got.Code)
	payload := testutil.DecodeResponse(t, got)
	var fetched models.Company
	testutil.DecodeInto(t, payload.Data, &fetched)
	require.Equal(t, "Northside Builders", fetched.Name)

	search := env.Request(http.MethodGet, "/api/workers/search?skill=masonry", nil, company.Token)
	require.Equal(t, http.StatusOK, search.Code)
	searchPayload := testutil.DecodeResponse(t, search)
	var result map[string][]string
	testutil.DecodeInto(t, searchPayload.Data, &result)
	require.Contains(t, result["worker_ids"], worker.ID)

	// Missing skill query is a validation error.
	bad := env.Request(http.MethodGet, "/api/workers/search", nil, company.Token)
	require.Equal(t, http.StatusBadRequest, bad.Code)
	badPayload := testutil.DecodeResponse(t, bad)
	require.NotNil(t, badPayload.Error)
	require.Equal(t, "VALIDATION_ERROR", badPayload.Error.Code)
}

func TestProjectEndpoints(t *testing.T) {
	env := testutil.NewEnv(t)
	company := env.RegisterCompany("Harbour Works")
	worker := env.RegisterWorker("Ann Rigger")

	body := map[string]any{
		"name":             "Pier refit",
		"address":          "1 Harbour Rd",
		"required_workers": 4,
		"payment_type":     "hourly",
		"amount":           50,
		"start_date":       time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		"end_date":         time.Date(2026, 6, 14, 0, 0, 0, 0, time.UTC),
	}

	// Workers cannot post projects.
	forbidden := env.Request(http.MethodPost, "/api/projects", body, worker.Token)
	require.Equal(t, http.StatusForbidden, forbidden.Code)

	created := env.Request(http.MethodPost, "/api/projects", body, company.Token)
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	createdPayload := testutil.DecodeResponse(t, created)
	var project models.Project
	testutil.DecodeInto(t, createdPayload.Data, &project)
	require.Equal(t, models.ProjectDraft, project.Status)
	require.InDelta(t, 400, project.DailyWage, 0.001)
	require.InDelta(t, 50, project.OriginalWage, 0.001)
	require.Equal(t, models.WageUnitHour, project.WageUnit)

	// Validation failures surface field detail.
	invalid := env.Request(http.MethodPost, "/api/projects", map[string]any{"name": "x"}, company.Token)
	require.Equal(t, http.StatusBadRequest, invalid.Code)
	invalidPayload := testutil.DecodeResponse(t, invalid)
	require.Equal(t, "VALIDATION_ERROR", invalidPayload.Error.Code)
	require.Equal(t, "address", invalidPayload.Error.Details["field"])

	list := env.Request(http.MethodGet, "/api/projects", nil, company.Token)
	require.Equal(t, http.StatusOK, list.Code)
	listPayload := testutil.DecodeResponse(t, list)
	var projects []models.Project
	testutil.DecodeInto(t, listPayload.Data, &projects)
	require.Len(t, projects, 1)

	detail := env.Request(http.MethodGet, "/api/projects/"+project.ID, nil, company.Token)
	require.Equal(t, http.StatusOK, detail.Code)
	detailPayload := testutil.DecodeResponse(t, detail)
	var detailData services.ProjectDetail
	testutil.DecodeInto(t, detailPayload.Data, &detailData)
	require.Equal(t, project.ID, detailData.Project.ID)
	require.Zero(t, detailData.Invitations.Pending)

	transition := env.Request(http.MethodPost, "/api/projects/"+project.ID+"/transition",
		map[string]any{"status": "in_progress"}, company.Token)
	require.Equal(t, http.StatusOK, transition.Code)
	transitionPayload := testutil.DecodeResponse(t, transition)
	var moved models.Project
	testutil.DecodeInto(t, transitionPayload.Data, &moved)
	require.Equal(t, models.ProjectInProgress, moved.Status)

	// A completed project refuses further wage edits.
	done := env.Request(http.MethodPost, "/api/projects/"+project.ID+"/transition",
		map[string]any{"status": "completed"}, company.Token)
	require.Equal(t, http.StatusOK, done.Code)

	frozen := env.Request(http.MethodPatch, "/api/projects/"+project.ID+"/wage",
		map[string]any{"payment_type": "daily", "amount": 300}, company.Token)
	require.Equal(t, http.StatusConflict, frozen.Code)
	frozenPayload := testutil.DecodeResponse(t, frozen)
	require.Equal(t, "STATE_ERROR", frozenPayload.Error.Code)
}

func TestEngagementFlowOverHTTP(t *testing.T) {
	env := testutil.NewEnv(t)
	company := env.RegisterCompany("Quayside Logistics")
	bob := env.RegisterWorker("Bob Docker", "forklift")
	eve := env.RegisterWorker("Eve Docker", "forklift")

	created := env.Request(http.MethodPost, "/api/projects", map[string]any{
		"name":             "Night shift unload",
		"address":          "Dock 4",
		"required_workers": 2,
		"payment_type":     "daily",
		"amount":           320,
		"start_date":       time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		"end_date":         time.Date(2026, 7, 5, 0, 0, 0, 0, time.UTC),
	}, company.Token)
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	var project models.Project
	testutil.DecodeInto(t, testutil.DecodeResponse(t, created).Data, &project)

	// Dispatch to both workers plus one unknown id; batch succeeds partially.
	dispatch := env.Request(http.MethodPost, "/api/invitations/dispatch", map[string]any{
		"project_id": project.ID,
		"worker_ids": []string{bob.ID, eve.ID, "00000000-0000-0000-0000-000000000000"},
		"message":    "Night shift, boots required",
	}, company.Token)
	require.Equal(t, http.StatusOK, dispatch.Code, dispatch.Body.String())
	var batch services.BatchResult
	testutil.DecodeInto(t, testutil.DecodeResponse(t, dispatch).Data, &batch)
	require.Len(t, batch.Created, 2)
	require.Len(t, batch.Failed, 1)
	require.InDelta(t, 320, batch.Created[0].WageAmount, 0.001)

	// Only the owning company can read the project's invitation list.
	owned := env.Request(http.MethodGet, "/api/projects/"+project.ID+"/invitations", nil, company.Token)
	require.Equal(t, http.StatusOK, owned.Code)
	var projectInvites []models.Invitation
	testutil.DecodeInto(t, testutil.DecodeResponse(t, owned).Data, &projectInvites)
	require.Len(t, projectInvites, 2)

	rival := env.RegisterCompany("Rival Freight")
	leak := env.Request(http.MethodGet, "/api/projects/"+project.ID+"/invitations", nil, rival.Token)
	require.Equal(t, http.StatusNotFound, leak.Code)

	// Workers cannot dispatch.
	forbidden := env.Request(http.MethodPost, "/api/invitations/dispatch", map[string]any{
		"project_id": project.ID,
		"worker_ids": []string{bob.ID},
	}, bob.Token)
	require.Equal(t, http.StatusForbidden, forbidden.Code)

	// Bob sees his invitation and accepts it.
	mine := env.Request(http.MethodGet, "/api/invitations", nil, bob.Token)
	require.Equal(t, http.StatusOK, mine.Code)
	var invitations []models.Invitation
	testutil.DecodeInto(t, testutil.DecodeResponse(t, mine).Data, &invitations)
	require.Len(t, invitations, 1)
	inviteID := invitations[0].ID

	accept := env.Request(http.MethodPost, "/api/invitations/"+inviteID+"/respond",
		map[string]any{"decision": "accepted", "note": "see you there"}, bob.Token)
	require.Equal(t, http.StatusOK, accept.Code, accept.Body.String())
	var acceptData struct {
		Decision string            `json:"decision"`
		Job      *models.JobRecord `json:"job"`
	}
	testutil.DecodeInto(t, testutil.DecodeResponse(t, accept).Data, &acceptData)
	require.Equal(t, "accepted", acceptData.Decision)
	require.NotNil(t, acceptData.Job)
	require.Equal(t, models.JobActive, acceptData.Job.Status)
	jobID := acceptData.Job.ID

	// Responding twice is a state error.
	again := env.Request(http.MethodPost, "/api/invitations/"+inviteID+"/respond",
		map[string]any{"decision": "rejected"}, bob.Token)
	require.Equal(t, http.StatusConflict, again.Code)
	require.Equal(t, "STATE_ERROR", testutil.DecodeResponse(t, again).Error.Code)

	// Eve rejects hers; no job is created for her.
	eveMine := env.Request(http.MethodGet, "/api/invitations", nil, eve.Token)
	var eveInvites []models.Invitation
	testutil.DecodeInto(t, testutil.DecodeResponse(t, eveMine).Data, &eveInvites)
	require.Len(t, eveInvites, 1)
	reject := env.Request(http.MethodPost, "/api/invitations/"+eveInvites[0].ID+"/respond",
		map[string]any{"decision": "rejected"}, eve.Token)
	require.Equal(t, http.StatusOK, reject.Code)
	var rejectData struct {
		Decision string            `json:"decision"`
		Job      *models.JobRecord `json:"job"`
	}
	testutil.DecodeInto(t, testutil.DecodeResponse(t, reject).Data, &rejectData)
	require.Nil(t, rejectData.Job)

	// Company drives nothing worker-side: check_in from the company is forbidden.
	wrongActor := env.Request(http.MethodPost, "/api/jobs/"+jobID+"/advance",
		map[string]any{"action": "check_in"}, company.Token)
	require.Equal(t, http.StatusForbidden, wrongActor.Code)

	advance := func(token string, body map[string]any) models.JobRecord {
		w := env.Request(http.MethodPost, "/api/jobs/"+jobID+"/advance", body, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var job models.JobRecord
		testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &job)
		return job
	}

	job := advance(bob.Token, map[string]any{"action": "check_in"})
	require.Equal(t, models.JobCheckedIn, job.Status)
	job = advance(bob.Token, map[string]any{"action": "start_work"})
	require.Equal(t, models.JobInProgress, job.Status)
	job = advance(bob.Token, map[string]any{"action": "complete_work", "completion_note": "done"})
	require.Equal(t, models.JobCompleted, job.Status)
	job = advance(company.Token, map[string]any{"action": "confirm", "quality_rating": 5})
	require.Equal(t, models.JobConfirmed, job.Status)
	job = advance(company.Token, map[string]any{
		"action":          "pay",
		"payment_method":  "transfer",
		"transaction_ref": "TX-2026-0701",
	})
	require.Equal(t, models.JobPaid, job.Status)
	require.InDelta(t, 320, job.WageAmount, 0.001)

	// Out-of-order action after closure is a state error.
	late := env.Request(http.MethodPost, "/api/jobs/"+jobID+"/advance",
		map[string]any{"action": "confirm", "quality_rating": 4}, company.Token)
	require.Equal(t, http.StatusConflict, late.Code)

	// Both parties see the job; outsiders do not.
	bobJobs := env.Request(http.MethodGet, "/api/jobs", nil, bob.Token)
	var jobs []models.JobRecord
	testutil.DecodeInto(t, testutil.DecodeResponse(t, bobJobs).Data, &jobs)
	require.Len(t, jobs, 1)

	outsider := env.Request(http.MethodGet, "/api/jobs/"+jobID, nil, eve.Token)
	require.Equal(t, http.StatusNotFound, outsider.Code)
}

func TestNotificationEndpoints(t *testing.T) {
	env := testutil.NewEnv(t)
	company := env.RegisterCompany("Gable & Sons")
	worker := env.RegisterWorker("Pat Roofer")

	created := env.Request(http.MethodPost, "/api/projects", map[string]any{
		"name":             "Roof repair",
		"address":          "12 Gable St",
		"required_workers": 1,
		"payment_type":     "daily",
		"amount":           280,
		"start_date":       time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		"end_date":         time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC),
	}, company.Token)
	require.Equal(t, http.StatusCreated, created.Code)
	var project models.Project
	testutil.DecodeInto(t, testutil.DecodeResponse(t, created).Data, &project)

	dispatch := env.Request(http.MethodPost, "/api/invitations/dispatch", map[string]any{
		"project_id": project.ID,
		"worker_ids": []string{worker.ID},
	}, company.Token)
	require.Equal(t, http.StatusOK, dispatch.Code)

	list := env.Request(http.MethodGet, "/api/notifications?unread=true", nil, worker.Token)
	require.Equal(t, http.StatusOK, list.Code)
	var items []models.Notification
	testutil.DecodeInto(t, testutil.DecodeResponse(t, list).Data, &items)
	require.Len(t, items, 1)
	require.False(t, items[0].IsRead)

	read := env.Request(http.MethodPost, "/api/notifications/"+items[0].ID+"/read", nil, worker.Token)
	require.Equal(t, http.StatusOK, read.Code)

	// Reading someone else's notification is a not found.
	foreign := env.Request(http.MethodPost, "/api/notifications/"+items[0].ID+"/read", nil, company.Token)
	require.Equal(t, http.StatusNotFound, foreign.Code)

	unread := env.Request(http.MethodGet, "/api/notifications?unread=true", nil, worker.Token)
	testutil.DecodeInto(t, testutil.DecodeResponse(t, unread).Data, &items)
	require.Empty(t, items)
}
