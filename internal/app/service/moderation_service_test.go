package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModerationService(t *testing.T) {
	rec := &recorder{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/moderation/reports", func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		assert.Equal(t, "open", r.URL.Query().Get("status"))
		writeJSON(w, http.StatusOK, `{"data":[{"ReportId":3,"TargetType":"review","TargetId":11,"Status":"open"}],"total":1}`)
	})
	mux.HandleFunc("POST /api/moderation/reports/{id}/resolve", func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		w.WriteHeader(http.StatusNoContent)
	})
	svc := NewModerationService(newTestAPI(t, mux))
	ctx := context.Background()

	page, err := svc.ListReports(ctx, "tok", "open", 1, 0)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(3), page.Items[0].ID)
	assert.Equal(t, "review", page.Items[0].TargetType)

	_, err = svc.ResolveReport(ctx, "tok", 3, "explode", "")
	assert.ErrorIs(t, err, ErrInvalidResolution)

	report, err := svc.ResolveReport(ctx, "tok", 3, " Dismiss ", "spam")
	require.NoError(t, err)
	assert.Equal(t, int64(3), report.ID)
	assert.Equal(t, "resolved", report.Status)
	assert.Equal(t, "dismiss", rec.body["Action"])
	assert.Equal(t, "spam", rec.body["Note"])
}
