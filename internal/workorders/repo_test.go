package workorders

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpl-automation/coilprint-backend/pkg/config"
	"github.com/mcpl-automation/coilprint-backend/pkg/db"
	"github.com/mcpl-automation/coilprint-backend/pkg/db/models"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?_busy_timeout=10000", filepath.Join(t.TempDir(), "workorders.db"))
	client, err := db.New(context.Background(), config.DBConfig{DSN: dsn, Driver: config.DBDriverSQLite}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.DB().AutoMigrate(&models.WorkOrder{}))
	return NewRepository(client.DB())
}

func cachedOrder(no string) *models.WorkOrder {
	return &models.WorkOrder{
		WorkOrderNo:      no,
		MCPLPartCode:     "MCPL-001",
		CustomerPartCode: "CUST-9",
		CustomerName:     "Acme Cables",
		TotalQuantity:    "500",
		RawJSON:          "{}",
		WireType:         "FR PVC (7/0.26)",
		MainColor:        "Red",
		LastFetchedAt:    time.Now().UTC(),
	}
}

func TestUpsertInsertsAndRefreshes(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, cachedOrder("WO-2001")))

	refreshed := cachedOrder("WO-2001")
	refreshed.CustomerName = "Acme Cables Ltd"
	refreshed.TotalQuantity = "750"
	require.NoError(t, repo.Upsert(ctx, refreshed))

	var count int64
	require.NoError(t, repo.db.Model(&models.WorkOrder{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	got, err := repo.FindByNumber(ctx, "WO-2001")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Acme Cables Ltd", got.CustomerName)
	assert.Equal(t, "750", got.TotalQuantity)
}

func TestUpsertRequiresOrder(t *testing.T) {
	repo := newTestRepo(t)

	assert.Error(t, repo.Upsert(context.Background(), nil))
}

func TestFindByNumberMissReturnsNil(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.FindByNumber(context.Background(), "WO-NOPE")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListOrdersByFreshness(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	older := cachedOrder("WO-OLD")
	older.LastFetchedAt = time.Now().UTC().Add(-time.Hour)
	newer := cachedOrder("WO-NEW")

	require.NoError(t, repo.Upsert(ctx, older))
	require.NoError(t, repo.Upsert(ctx, newer))

	orders, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "WO-NEW", orders[0].WorkOrderNo)

	limited, err := repo.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
