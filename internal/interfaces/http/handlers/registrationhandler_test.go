package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siteforge/siteforge/internal/application/registration/dto"
	settingdto "github.com/siteforge/siteforge/internal/application/setting/dto"
	"github.com/siteforge/siteforge/internal/interfaces/http/handlers/testutil"
	"github.com/siteforge/siteforge/internal/shared/errors"
)

type mockRegisterUC struct {
	result *dto.RegisterResponse
	err    error
	got    dto.RegisterRequest
}

func (m *mockRegisterUC) Execute(ctx context.Context, req dto.RegisterRequest) (*dto.RegisterResponse, error) {
	m.got = req
	return m.result, m.err
}

type mockRegistrationStatusUC struct {
	status string
}

func (m *mockRegistrationStatusUC) RegistrationStatus(ctx context.Context) *settingdto.RegistrationStatusResponse {
	return &settingdto.RegistrationStatusResponse{RegistrationStatus: m.status}
}

func TestRegistrationHandler_GetStatus(t *testing.T) {
	for _, status := range []string{"open", "closed"} {
		t.Run(status, func(t *testing.T) {
			handler := NewRegistrationHandler(nil, &mockRegistrationStatusUC{status: status}, testutil.NewMockLogger())
			c, w := testutil.NewTestContext(http.MethodGet, "/register", nil)

			handler.GetStatus(c)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, `{"registration_status":"`+status+`"}`, w.Body.String())
		})
	}
}

func TestRegistrationHandler_Register_Success(t *testing.T) {
	mockUC := &mockRegisterUC{result: &dto.RegisterResponse{
		Customer: &dto.CustomerResponse{ID: 3, Username: "janedoe"},
	}}
	handler := NewRegistrationHandler(mockUC, nil, testutil.NewMockLogger())

	body := map[string]any{
		"customer": map[string]any{"username": "janedoe", "password": "secret123", "email": "jane@example.com"},
		"products": []any{1, "addon-storage"},
	}
	c, w := testutil.NewTestContext(http.MethodPost, "/register", body)
	c.Request.RemoteAddr = "203.0.113.9:4100"

	handler.Register(c)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp, "customer")
	assert.Contains(t, resp, "site")
	assert.NotContains(t, resp, "success", "registration responses are not wrapped")

	assert.Equal(t, "203.0.113.9", mockUC.got.IP)
	assert.Equal(t, dto.ProductRefs{"1", "addon-storage"}, mockUC.got.Products)
}

func TestRegistrationHandler_Register_MalformedBody(t *testing.T) {
	mockUC := &mockRegisterUC{}
	handler := NewRegistrationHandler(mockUC, nil, testutil.NewMockLogger())

	c, w := testutil.NewRawTestContext(http.MethodPost, "/register", []byte(`{"products": {"a": 1}}`),
		map[string]string{"Content-Type": "application/json"})

	handler.Register(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "bad_request", resp.Error.Type)
}

func TestRegistrationHandler_Register_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantFields bool
	}{
		{
			name: "validation",
			err: errors.NewFieldValidationError("Validation failed", map[string][]string{
				"site.site_url": {"site.site_url must be at least 4 characters long"},
			}),
			wantStatus: http.StatusBadRequest,
			wantFields: true,
		},
		{
			name:       "closed",
			err:        errors.NewForbiddenError("Registration is currently closed").WithReason("registration_closed"),
			wantStatus: http.StatusForbidden,
			wantCode:   "registration_closed",
		},
		{
			name:       "invalid cart",
			err:        errors.NewBadRequestError("Products are required.").WithReason("invalid_cart"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_cart",
		},
		{
			name:       "runtime failure",
			err:        errors.NewInternalError("deadlock found").WithReason("registration_error"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "registration_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewRegistrationHandler(&mockRegisterUC{err: tt.err}, nil, testutil.NewMockLogger())
			c, w := testutil.NewTestContext(http.MethodPost, "/register", map[string]any{"customer_id": 1})

			handler.Register(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			var resp testutil.APIResponse
			require.NoError(t, testutil.ParseResponse(w, &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantStatus, resp.Error.Status)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			if tt.wantFields {
				assert.Contains(t, resp.Error.Fields, "site.site_url")
			}
		})
	}
}
