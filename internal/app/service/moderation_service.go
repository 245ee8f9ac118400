package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ikkim/udonggeum-storefront/internal/app/mapper"
	"github.com/ikkim/udonggeum-storefront/internal/app/model"
	"github.com/ikkim/udonggeum-storefront/pkg/logger"
	"github.com/ikkim/udonggeum-storefront/pkg/upstream"
)

var ErrInvalidResolution = errors.New("unknown report resolution")

// Resolutions the storefront API accepts on POST /moderation/reports/{id}/resolve.
var reportActions = map[string]bool{
	"dismiss": true,
	"remove":  true,
	"warn":    true,
	"ban":     true,
}

type ModerationService interface {
	ListReports(ctx context.Context, token, status string, page, pageSize int) (*model.Page[model.Report], error)
	ResolveReport(ctx context.Context, token string, reportID int64, action, note string) (*model.Report, error)
}

type moderationService struct {
	api *upstream.Client
}

func NewModerationService(api *upstream.Client) ModerationService {
	return &moderationService{api: api}
}

func (s *moderationService) ListReports(ctx context.Context, token, status string, page, pageSize int) (*model.Page[model.Report], error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("pageSize", strconv.Itoa(pageSize))
	if status != "" {
		query.Set("status", status)
	}

	var raw interface{}
	if err := s.api.GetJSON(ctx, "/moderation/reports", token, query, &raw); err != nil {
		logger.Error("Failed to list reports", err, map[string]interface{}{
			"status": status,
		})
		return nil, err
	}

	reports, total := mapper.ReportsFromRaw(raw)
	return &model.Page[model.Report]{
		Items:      reports,
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

func (s *moderationService) ResolveReport(ctx context.Context, token string, reportID int64, action, note string) (*model.Report, error) {
	if reportID <= 0 {
		return nil, ErrInvalidID
	}
	action = strings.ToLower(strings.TrimSpace(action))
	if !reportActions[action] {
		return nil, ErrInvalidResolution
	}

	logger.Info("Resolving report", map[string]interface{}{
		"report_id": reportID,
		"action":    action,
	})

	var raw interface{}
	path := fmt.Sprintf("/moderation/reports/%d/resolve", reportID)
	body := mapper.ResolveReportRequest{Action: action, Note: note}
	if err := s.api.SendJSON(ctx, http.MethodPost, path, token, body, &raw); err != nil {
		logger.Error("Failed to resolve report", err, map[string]interface{}{
			"report_id": reportID,
		})
		return nil, err
	}

	report := model.Report{ID: reportID, Status: "resolved"}
	if fields, ok := mapper.AsFields(raw); ok {
		report = mapper.ReportFromRaw(fields)
		if report.ID == 0 {
			report.ID = reportID
		}
	}
	return &report, nil
}
