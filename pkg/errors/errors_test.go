package errors

import (
	stdErrors "errors"
	"net/http"
	"testing"
)

func TestErrorIncludesInternal(t *testing.T) {
	internal := stdErrors.New("boom")
	err := Wrap(internal, "failed")

	if err.Error() != "failed: boom" {
		t.Fatalf("unexpected error string: %s", err.Error())
	}
}

func TestWithInternalCopies(t *testing.T) {
	base := New("TEST", "test", 400)
	with := base.WithInternal(stdErrors.New("oops"))

	if with == base {
		t.Fatal("expected WithInternal to return a copy")
	}

	if base.Internal != nil {
		t.Fatal("expected original error to remain unchanged")
	}

	if with.Internal == nil {
		t.Fatal("expected internal error to be set")
	}
}

func TestWithDetailCopies(t *testing.T) {
	base := NewState("invitation", "accepted", "pending")
	with := base.WithDetail("id", "inv-1")

	if with == base {
		t.Fatal("expected WithDetail to return a copy")
	}
	if _, ok := base.Details["id"]; ok {
		t.Fatal("expected original details to remain unchanged")
	}
	if with.Details["id"] != "inv-1" {
		t.Fatalf("expected detail to be set, got %v", with.Details["id"])
	}
	if with.Details["current"] != "accepted" {
		t.Fatal("expected existing details to be carried over")
	}
}

func TestTaxonomyConstructors(t *testing.T) {
	cases := []struct {
		err    *AppError
		code   string
		status int
	}{
		{NewValidation("amount", "amount must be positive"), CodeValidation, http.StatusBadRequest},
		{NewConflict("invitation", "already invited"), CodeConflict, http.StatusConflict},
		{NewNotFound("project", "p-1"), CodeNotFound, http.StatusNotFound},
		{NewState("job", "completed", "confirmed"), CodeState, http.StatusConflict},
		{NewExpired("invitation", "inv-1"), CodeExpired, http.StatusGone},
		{NewAuthorization("confirm", "company"), CodeAuthorization, http.StatusForbidden},
	}

	for _, tc := range cases {
		if tc.err.Code != tc.code {
			t.Fatalf("expected code %s, got %s", tc.code, tc.err.Code)
		}
		if tc.err.StatusCode != tc.status {
			t.Fatalf("%s: expected status %d, got %d", tc.code, tc.status, tc.err.StatusCode)
		}
		if len(tc.err.Details) == 0 {
			t.Fatalf("%s: expected structured details", tc.code)
		}
	}
}

func TestIsCode(t *testing.T) {
	err := NewState("invitation", "rejected", "pending")

	if !IsCode(err, CodeState) {
		t.Fatal("expected IsCode to match STATE_ERROR")
	}
	if IsCode(err, CodeExpired) {
		t.Fatal("did not expect IsCode to match EXPIRED")
	}
	if IsCode(stdErrors.New("raw"), CodeState) {
		t.Fatal("did not expect IsCode to match a plain error")
	}

	wrapped := Wrap(err, "outer")
	if !IsCode(wrapped.Internal, CodeState) {
		t.Fatal("expected IsCode to unwrap")
	}
}

func TestFromError(t *testing.T) {
	appErr := ErrNotFound
	if out := FromError(appErr); out != appErr {
		t.Fatal("expected FromError to return the same AppError instance")
	}

	raw := stdErrors.New("raw")
	out := FromError(raw)
	if out.Code != ErrInternalServer.Code {
		t.Fatalf("expected internal server code, got %s", out.Code)
	}
	if out.Internal == nil {
		t.Fatal("expected internal error to be attached")
	}
}
