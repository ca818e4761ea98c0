package commissions

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"vgroup-backoffice/internal/database/dbtest"
	"vgroup-backoffice/internal/database/models"
)

var commissionColumns = []string{"id", "agent_id", "amount", "status"}

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	db, mock := dbtest.NewMock(t)
	svc := NewService(db, nil, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC) }
	return svc, mock
}

func expectLockedCommission(mock sqlmock.Sqlmock, st models.CommissionStatus) {
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "commissions" WHERE "commissions"."id" = .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(commissionColumns).AddRow(4, 2, "1500.00", string(st)))
}

func TestApprove_FromPending(t *testing.T) {
	svc, mock := newTestService(t)

	expectLockedCommission(mock, models.CommissionPending)
	mock.ExpectExec(`UPDATE "commissions" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	commission, err := svc.Approve(context.Background(), 4, 9, "checked contract")
	require.NoError(t, err)

	assert.Equal(t, models.CommissionApproved, commission.Status)
	require.NotNil(t, commission.ApprovedByID)
	assert.Equal(t, int64(9), *commission.ApprovedByID)
	require.NotNil(t, commission.ApprovedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkPaid_RequiresApproval(t *testing.T) {
	svc, mock := newTestService(t)

	expectLockedCommission(mock, models.CommissionPending)
	mock.ExpectRollback()

	_, err := svc.MarkPaid(context.Background(), 4, 9, "TRX-1")
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkPaid_StampsReference(t *testing.T) {
	svc, mock := newTestService(t)

	expectLockedCommission(mock, models.CommissionApproved)
	mock.ExpectExec(`UPDATE "commissions" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	commission, err := svc.MarkPaid(context.Background(), 4, 9, "TRX-1")
	require.NoError(t, err)

	assert.Equal(t, models.CommissionPaid, commission.Status)
	require.NotNil(t, commission.PaymentReference)
	assert.Equal(t, "TRX-1", *commission.PaymentReference)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancel_PaidIsTerminal(t *testing.T) {
	svc, mock := newTestService(t)

	expectLockedCommission(mock, models.CommissionPaid)
	mock.ExpectRollback()

	_, err := svc.Cancel(context.Background(), 4, 9, "duplicate")
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApprove_RepeatIsNoOp(t *testing.T) {
	svc, mock := newTestService(t)

	expectLockedCommission(mock, models.CommissionApproved)
	mock.ExpectCommit()

	commission, err := svc.Approve(context.Background(), 4, 9, "")
	require.NoError(t, err)
	assert.Equal(t, models.CommissionApproved, commission.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_Validation(t *testing.T) {
	svc, mock := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Amount: decimal.NewFromInt(10)})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = svc.Create(ctx, CreateInput{AgentID: 2, Amount: decimal.Zero})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = svc.Create(ctx, CreateInput{AgentID: 2, Amount: decimal.RequireFromString("1.234")})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	mock.ExpectQuery(`SELECT "id" FROM "agents"`).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	_, err = svc.Create(ctx, CreateInput{AgentID: 2, Amount: decimal.NewFromInt(10)})
	assert.Equal(t, codes.NotFound, status.Code(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_StartsPending(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(`SELECT "id" FROM "agents"`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "commissions"`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(31))
	mock.ExpectCommit()

	commission, err := svc.Create(context.Background(), CreateInput{AgentID: 2, Amount: decimal.NewFromInt(750)})
	require.NoError(t, err)
	assert.Equal(t, int64(31), commission.ID)
	assert.Equal(t, models.CommissionPending, commission.Status)
	assert.Nil(t, commission.WorkerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkApprove_CollectsErrors(t *testing.T) {
	svc, mock := newTestService(t)

	_, err := svc.BulkApprove(context.Background(), nil, 9)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "commissions"`).WillReturnRows(sqlmock.NewRows(commissionColumns))
	mock.ExpectRollback()

	result, err := svc.BulkApprove(context.Background(), []int64{77}, 9)
	require.NoError(t, err)
	assert.Equal(t, 0, result.SuccessCount)
	assert.Equal(t, 1, result.ErrorCount)
	assert.Contains(t, result.Errors[0], "Commission ID 77")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkApprove_ApprovesRepeatedIDOnce(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "commissions"`).WillReturnRows(sqlmock.NewRows(commissionColumns))
	mock.ExpectRollback()

	result, err := svc.BulkApprove(context.Background(), []int64{77, 77, 77}, 9)
	require.NoError(t, err)
	assert.Equal(t, 0, result.SuccessCount)
	assert.Equal(t, 1, result.ErrorCount)
	assert.Len(t, result.Errors, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryByAgent(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(`FROM "commissions" WHERE agent_id = .* GROUP BY "status"`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count", "total"}).
			AddRow("PENDING", 2, "300.00").
			AddRow("PAID", 1, "1200.00"))

	summary, err := svc.SummaryByAgent(context.Background(), 2)
	require.NoError(t, err)
	assert.True(t, summary.Pending.Equal(decimal.NewFromInt(300)))
	assert.True(t, summary.Paid.Equal(decimal.NewFromInt(1200)))
	assert.True(t, summary.Approved.IsZero())
	assert.Equal(t, int64(3), summary.Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
