package admin

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"vgroup-backoffice/internal/database/dbtest"
)

func TestResetAll_RequiresExactPhrase(t *testing.T) {
	db, mock := dbtest.NewMock(t)
	svc := NewService(db, nil, zap.NewNop())

	for _, phrase := range []string{"", "reset all data", "RESET ALL DATA ", " RESET ALL DATA", "RESET"} {
		_, err := svc.ResetAll(context.Background(), phrase, 1)
		assert.Equal(t, codes.FailedPrecondition, status.Code(err), "%q", phrase)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResetAll_DeletesInForeignKeyOrder(t *testing.T) {
	db, mock := dbtest.NewMock(t)
	svc := NewService(db, nil, zap.NewNop())

	mock.ExpectBegin()
	for i, table := range resetOrder {
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM " + table)).
			WillReturnResult(sqlmock.NewResult(0, int64(i+1)))
	}
	mock.ExpectCommit()

	result, err := svc.ResetAll(context.Background(), ConfirmationPhrase, 1)
	require.NoError(t, err)

	require.Len(t, result.Tables, len(resetOrder))
	assert.Equal(t, "payments", result.Tables[0].Table)
	assert.Equal(t, "clients", result.Tables[len(resetOrder)-1].Table)
	assert.Equal(t, int64(45), result.Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResetAll_RollsBackOnFailure(t *testing.T) {
	db, mock := dbtest.NewMock(t)
	svc := NewService(db, nil, zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM payments").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM loans").WillReturnError(errors.New("lock timeout"))
	mock.ExpectRollback()

	_, err := svc.ResetAll(context.Background(), ConfirmationPhrase, 1)
	assert.Equal(t, codes.Internal, status.Code(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResetOrder_KeepsUsersAndReferenceData(t *testing.T) {
	for _, table := range resetOrder {
		assert.NotContains(t, []string{"users", "provinces", "districts", "cms_pages"}, table)
	}
}
