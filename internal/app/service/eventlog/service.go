package eventlog

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/connectd/billing/internal/models"
	"github.com/connectd/billing/pkg/logctx"
	"github.com/connectd/billing/pkg/tool"
	"github.com/connectd/billing/pkg/types"
)

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service { return &Service{db: db, log: log} }

// Save asynchronously persists a webhook event log row. Nil input is ignored.
// Audit writes must never fail the webhook response, so errors are only
// logged.
func (s *Service) Save(ctx context.Context, row *models.WebhookEventLog) {
	go func() {
		if row == nil {
			return
		}
		if row.ID == "" {
			row.ID = tool.GenerateUUIDV7()
		}
		if err := s.db.Save(row).Error; err != nil {
			logctx.FromCtx(ctx, s.log).Errorf("failed to save webhook event log: %v", err)
		}
	}()
}

// ScanRequest lists audit rows for the admin surface.
type ScanRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type ScanResponse struct {
	Items []*models.WebhookEventLog `json:"items"`
	Total int64                     `json:"total"`
}

func (s *Service) Scan(ctx context.Context, req *ScanRequest) (*ScanResponse, error) {
	q := s.db.WithContext(ctx).Model(&models.WebhookEventLog{})
	for _, f := range req.Filters {
		if f == nil {
			continue
		}
		q = q.Where(f)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count webhook event logs: %w", err)
	}

	size := req.Size
	if size <= 0 || size > 1000 {
		size = 100
	}

	var items []*models.WebhookEventLog
	if err := q.Order(scanOrder(req.SortBy, req.SortOrder)).
		Offset(req.From).Limit(size).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to scan webhook event logs: %w", err)
	}
	return &ScanResponse{Items: items, Total: total}, nil
}

// scanSortColumns lists the columns a caller may sort by. Anything else
// falls back to event_time; sort_by must never reach SQL as raw text.
var scanSortColumns = map[string]bool{
	"event_time":    true,
	"event_id":      true,
	"event_type":    true,
	"serial_number": true,
	"status":        true,
	"created_at":    true,
	"updated_at":    true,
}

func scanOrder(sortBy, sortOrder string) clause.OrderBy {
	if !scanSortColumns[sortBy] {
		sortBy = "event_time"
	}
	return clause.OrderBy{Columns: []clause.OrderByColumn{{
		Column: clause.Column{Name: sortBy},
		Desc:   sortOrder != "asc",
	}}}
}
