package health

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vgroup-backoffice/internal/cache"
	"vgroup-backoffice/internal/database/dbtest"
)

func newCache(t *testing.T) (*cache.Cache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return cache.New(rdb, zap.NewNop()), mr
}

func TestCheck_AllHealthy(t *testing.T) {
	db, mock := dbtest.NewPingMock(t)
	c, _ := newCache(t)
	mock.ExpectPing()

	report := NewChecker(db, c).Check(context.Background())

	assert.Equal(t, StatusHealthy, report.Status)
	assert.Equal(t, StatusHealthy, report.Components["database"].Status)
	assert.Equal(t, StatusHealthy, report.Components["redis"].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheck_RedisDownDegrades(t *testing.T) {
	db, mock := dbtest.NewPingMock(t)
	c, mr := newCache(t)
	mr.Close()
	mock.ExpectPing()

	report := NewChecker(db, c).Check(context.Background())

	assert.Equal(t, StatusDegraded, report.Status)
	assert.Equal(t, StatusUnavailable, report.Components["redis"].Status)
}

func TestCheck_DatabaseDownIsUnavailable(t *testing.T) {
	db, mock := dbtest.NewPingMock(t)
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	checker := NewChecker(db, nil)
	report := checker.Check(context.Background())

	require.Equal(t, StatusUnavailable, report.Status)
	assert.Contains(t, report.Components["database"].Message, "connection refused")
	assert.Equal(t, "Not configured", report.Components["redis"].Message)
}

func TestServing(t *testing.T) {
	db, mock := dbtest.NewPingMock(t)
	mock.ExpectPing()
	mock.ExpectPing().WillReturnError(errors.New("down"))

	checker := NewChecker(db, nil)
	assert.True(t, checker.Serving(context.Background()))
	assert.False(t, checker.Serving(context.Background()))
}
