package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siteforge/siteforge/internal/application/setting/dto"
	"github.com/siteforge/siteforge/internal/interfaces/http/handlers/testutil"
	"github.com/siteforge/siteforge/internal/shared/errors"
)

type mockGetSettingsUC struct {
	result *dto.BillingSettingsResponse
}

func (m *mockGetSettingsUC) Execute(ctx context.Context) *dto.BillingSettingsResponse {
	return m.result
}

type mockUpdateSettingsUC struct {
	err error
	got dto.UpdateBillingSettingsRequest
}

func (m *mockUpdateSettingsUC) Execute(ctx context.Context, req dto.UpdateBillingSettingsRequest) error {
	m.got = req
	return m.err
}

func testBillingSettings() *dto.BillingSettingsResponse {
	return &dto.BillingSettingsResponse{
		EnableRegistration:     dto.SettingWithSource{Value: true, Source: dto.SourceConfig},
		InvoiceNumberingScheme: dto.SettingWithSource{Value: "reference_code", Source: dto.SourceConfig},
		NextInvoiceNumber:      dto.SettingWithSource{Value: 1, Source: dto.SourceConfig},
		InvoicePrefix:          dto.SettingWithSource{Value: "", Source: dto.SourceConfig},
	}
}

func TestSettingHandler_GetBillingSettings(t *testing.T) {
	handler := NewSettingHandler(&mockGetSettingsUC{result: testBillingSettings()}, nil, testutil.NewMockLogger())
	c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/settings/billing", nil)

	handler.GetBillingSettings(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"source":"config"`)
}

func TestSettingHandler_UpdateBillingSettings(t *testing.T) {
	updateUC := &mockUpdateSettingsUC{}
	handler := NewSettingHandler(&mockGetSettingsUC{result: testBillingSettings()}, updateUC, testutil.NewMockLogger())
	c, w := testutil.NewTestContext(http.MethodPatch, "/api/v1/settings/billing", map[string]any{
		"enable_registration":      false,
		"invoice_numbering_scheme": "sequential_number",
	})

	handler.UpdateBillingSettings(c)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, updateUC.got.EnableRegistration)
	assert.False(t, *updateUC.got.EnableRegistration)
	require.NotNil(t, updateUC.got.InvoiceNumberingScheme)
	assert.Equal(t, "sequential_number", *updateUC.got.InvoiceNumberingScheme)
	assert.Nil(t, updateUC.got.InvoicePrefix)
}

func TestSettingHandler_UpdateBillingSettings_ValidationError(t *testing.T) {
	updateUC := &mockUpdateSettingsUC{err: errors.NewFieldValidationError("Validation failed", map[string][]string{
		"invoice_numbering_scheme": {"invoice_numbering_scheme must be one of [reference_code sequential_number]"},
	})}
	handler := NewSettingHandler(&mockGetSettingsUC{}, updateUC, testutil.NewMockLogger())
	c, w := testutil.NewTestContext(http.MethodPatch, "/api/v1/settings/billing", map[string]any{"invoice_numbering_scheme": "roman"})

	handler.UpdateBillingSettings(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.Contains(t, resp.Error.Fields, "invoice_numbering_scheme")
}
