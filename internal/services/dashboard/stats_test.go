package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vgroup-backoffice/internal/cache"
	"vgroup-backoffice/internal/database/dbtest"
	"vgroup-backoffice/internal/database/models"
)

func newCache(t *testing.T) (*miniredis.Miniredis, *cache.Cache) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, cache.New(client, zap.NewNop())
}

func expectAggregates(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`SELECT status, COUNT\(\*\) AS count FROM "workers"`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("NEW_LEAD", 4).
			AddRow("WORKING", 6))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "agents"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "clients"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`FROM "loans"`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count", "total"}).
			AddRow("ACTIVE", 2, "6000.00").
			AddRow("OVERDUE", 1, "1500.50"))
	mock.ExpectQuery(`FROM "commissions"`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count", "total"}).
			AddRow("PENDING", 2, "800.00"))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "sos_alerts"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "orders"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "documents"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))
}

func TestGetStats_AggregatesAndCaches(t *testing.T) {
	db, mock := dbtest.NewMock(t)
	mr, c := newCache(t)
	svc := NewService(db, c, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) }

	expectAggregates(mock)

	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(10), stats.TotalWorkers)
	assert.Equal(t, int64(6), stats.WorkersByStatus[models.WorkerWorking])
	assert.Equal(t, int64(0), stats.WorkersByStatus[models.WorkerDeployed])
	assert.Equal(t, int64(2), stats.ActiveLoans)
	assert.Equal(t, int64(1), stats.OverdueLoans)
	assert.True(t, stats.OutstandingBalance.Equal(decimal.RequireFromString("7500.50")))
	assert.True(t, stats.PendingCommissions.Equal(decimal.NewFromInt(800)))
	assert.True(t, stats.ApprovedCommissions.IsZero())
	assert.Equal(t, int64(7), stats.ExpiringDocuments)
	assert.True(t, mr.Exists(cache.DashboardStatsKey))
	assert.NoError(t, mock.ExpectationsWereMet())

	// served from Redis without touching the database
	again, err := svc.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, stats.TotalWorkers, again.TotalWorkers)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetStats_RecomputesAfterInvalidation(t *testing.T) {
	db, mock := dbtest.NewMock(t)
	_, c := newCache(t)
	svc := NewService(db, c, zap.NewNop())

	expectAggregates(mock)
	_, err := svc.GetStats(context.Background())
	require.NoError(t, err)

	c.InvalidateBusinessData(context.Background())

	expectAggregates(mock)
	_, err = svc.GetStats(context.Background())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
