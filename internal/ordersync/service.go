package ordersync

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/mcpl-automation/coilprint-backend/pkg/db/models"
	"github.com/mcpl-automation/coilprint-backend/pkg/logger"
)

type orderFetcher interface {
	FetchWorkOrders(ctx context.Context, createdAtMin string) ([]WorkOrderPayload, error)
}

type orderUpserter interface {
	Upsert(ctx context.Context, order *models.WorkOrder) error
}

// Service refreshes the local work order cache from NetSuite.
type Service struct {
	fetcher      orderFetcher
	repo         orderUpserter
	logg         *logger.Logger
	createdAtMin string
}

// NewService wires the sync pipeline. createdAtMin bounds how far back the
// RESTlet query reaches (dd/mm/yyyy); empty defaults to the current month.
func NewService(fetcher orderFetcher, repo orderUpserter, logg *logger.Logger, createdAtMin string) (*Service, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("order fetcher required")
	}
	if repo == nil {
		return nil, fmt.Errorf("work order repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{fetcher: fetcher, repo: repo, logg: logg, createdAtMin: createdAtMin}, nil
}

// Sync fetches the latest work orders and upserts each into the cache. One
// bad order does not abort the rest; all failures are reported together.
func (s *Service) Sync(ctx context.Context) (int, error) {
	createdAtMin := s.createdAtMin
	if createdAtMin == "" {
		createdAtMin = time.Now().Format("02/01/2006")
	}

	orders, err := s.fetcher.FetchWorkOrders(ctx, createdAtMin)
	if err != nil {
		return 0, fmt.Errorf("fetching work orders: %w", err)
	}

	var errs error
	saved := 0
	for _, payload := range orders {
		if payload.WorkOrderNo == "" {
			errs = multierr.Append(errs, fmt.Errorf("skipping order without work_order_no"))
			continue
		}
		order := &models.WorkOrder{
			WorkOrderNo:      payload.WorkOrderNo,
			MCPLPartCode:     payload.MCPLPartCode,
			CustomerPartCode: payload.CustomerPartCode,
			CustomerName:     payload.CustomerName,
			TotalQuantity:    payload.TotalQuantity,
			MfgProcessName:   payload.MfgProcessName,
			RawJSON:          payload.Raw(),
			Location:         payload.Location,
			WireType:         payload.WireType,
			Gauge:            payload.Gauge,
			MainColor:        payload.MainColor,
			BiColor:          payload.BiColor,
			WorkOrderDate:    payload.WorkOrderDate,
			LastFetchedAt:    time.Now().UTC(),
		}
		if err := s.repo.Upsert(ctx, order); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("upserting %s: %w", payload.WorkOrderNo, err))
			continue
		}
		saved++
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"fetched": len(orders),
		"saved":   saved,
	}), "work order sync complete")
	return saved, errs
}
