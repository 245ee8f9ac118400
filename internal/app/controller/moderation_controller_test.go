package controller

import (
	"net/http"
	"testing"

	"github.com/ikkim/udonggeum-storefront/internal/app/model"
	"github.com/ikkim/udonggeum-storefront/internal/app/service"
	"github.com/ikkim/udonggeum-storefront/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupModerationControllerTest(t *testing.T) (*testEnv, *storefront) {
	sf := newStorefront()
	sf.handle("GET /api/moderation/reports", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"items":[{"id":3,"targetType":"product","targetId":5,"status":"open"}],"totalCount":1}`)
	})
	sf.handle("POST /api/moderation/reports/{id}/resolve", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"id":3,"targetType":"product","targetId":5,"status":"resolved"}`)
	})

	env := newTestEnv(t, sf)
	ctrl := NewModerationController(service.NewModerationService(env.api))

	moderation := env.router.Group("/moderation",
		env.mw.Authenticate(),
		env.mw.RequireRole(model.RoleAdmin, model.RoleModerator),
	)
	moderation.GET("/reports", ctrl.GetReports)
	moderation.POST("/reports/:id/resolve", ctrl.ResolveReport)
	return env, sf
}

func TestModerationController_Access(t *testing.T) {
	env, sf := setupModerationControllerTest(t)

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"admin", "tok-admin", http.StatusOK},
		{"customer", "tok-1", http.StatusForbidden},
		{"anonymous", "", http.StatusUnauthorized},
		{"expired session", "tok-bad", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodGet, "/moderation/reports?status=open", tt.token, "")
			assert.Equal(t, tt.status, w.Code)
		})
	}
	assert.True(t, sf.called("GET /api/moderation/reports"))
}

func TestModerationController_ResolveReport(t *testing.T) {
	env, sf := setupModerationControllerTest(t)

	w := env.do(http.MethodPost, "/moderation/reports/3/resolve", "tok-admin", `{"action":" Remove ","note":"spam"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "resolved", decodeBody(t, w)["status"])
	assert.Equal(t, "remove", sf.lastBody()["Action"])

	w = env.do(http.MethodPost, "/moderation/reports/3/resolve", "tok-admin", `{"action":"explode"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, errors.ValidationInvalidInput, decodeBody(t, w)["error"])

	w = env.do(http.MethodPost, "/moderation/reports/3/resolve", "tok-admin", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
