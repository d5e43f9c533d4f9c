package errors

import (
	stderrors "errors"
	"net/http"
	"testing"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{"not found", stderrors.New("lot not found"), CodeNotFound, http.StatusNotFound},
		{"duplicate", stderrors.New("lot already exists"), CodeConflict, http.StatusConflict},
		{"insufficient", stderrors.New("insufficient balance"), CodeBusinessRuleViolation, http.StatusUnprocessableEntity},
		{"closed", stderrors.New("lot is closed"), CodeBusinessRuleViolation, http.StatusUnprocessableEntity},
		{"finalized", stderrors.New("issue already finalized"), CodeBusinessRuleViolation, http.StatusUnprocessableEntity},
		{"blocked", stderrors.New("style is blocked for dispatch"), CodeBusinessRuleViolation, http.StatusUnprocessableEntity},
		{"double confirm", stderrors.New("dispatch is not in planned state"), CodeBusinessRuleViolation, http.StatusUnprocessableEntity},
		{"invalid", stderrors.New("invalid quantity"), CodeValidationError, http.StatusBadRequest},
		{"unknown", stderrors.New("something odd"), CodeInternalError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := MapDomainError(tt.err)
			if appErr.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, appErr.Code)
			}
			if appErr.HTTPStatus != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, appErr.HTTPStatus)
			}
			if !stderrors.Is(appErr, tt.err) {
				t.Errorf("mapped error should wrap the original")
			}
		})
	}
}

func TestMapDomainError_PassesThroughAppError(t *testing.T) {
	original := ErrBadRequest("malformed body")
	mapped := MapDomainError(original)
	if mapped != original {
		t.Errorf("existing AppError must pass through unchanged")
	}
	if MapDomainError(nil) != nil {
		t.Errorf("nil maps to nil")
	}
}

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	cause := stderrors.New("boom")
	appErr := ErrInternal("").Wrap(cause)

	if !stderrors.Is(appErr, cause) {
		t.Errorf("Unwrap chain broken")
	}
	if appErr.Error() == "" {
		t.Errorf("empty error string")
	}

	withDetail := ErrNotFoundWithID("lot", "LOT-001")
	if withDetail.Details["id"] != "LOT-001" {
		t.Errorf("detail not recorded: %v", withDetail.Details)
	}
}
