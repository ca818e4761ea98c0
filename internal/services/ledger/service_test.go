package ledger

import (
	"context"
	"testing"

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

var loanColumns = []string{"id", "worker_id", "principal", "balance", "currency", "status"}

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	db, mock := dbtest.NewMock(t)
	return NewService(db, nil, zap.NewNop()), mock
}

func TestRecordPayment_DecrementsBalance(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "loans" WHERE "loans"."id" = .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(loanColumns).AddRow(7, 3, "10000.00", "10000.00", "THB", "ACTIVE"))
	mock.ExpectQuery(`INSERT INTO "payments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectExec(`UPDATE "loans" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	payment, loan, err := svc.RecordPayment(context.Background(), RecordPaymentInput{
		LoanID:       7,
		Amount:       d("4000"),
		Method:       models.PaymentBankTransfer,
		RecordedByID: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(11), payment.ID)
	assert.True(t, loan.Balance.Equal(d("6000")))
	assert.Equal(t, models.LoanActive, loan.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordPayment_FinalPaymentPaysOff(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "loans"`).
		WillReturnRows(sqlmock.NewRows(loanColumns).AddRow(7, 3, "10000.00", "6000.00", "THB", "OVERDUE"))
	mock.ExpectQuery(`INSERT INTO "payments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))
	mock.ExpectExec(`UPDATE "loans" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, loan, err := svc.RecordPayment(context.Background(), RecordPaymentInput{
		LoanID:       7,
		Amount:       d("6000"),
		RecordedByID: 1,
	})
	require.NoError(t, err)

	assert.True(t, loan.Balance.IsZero())
	assert.Equal(t, models.LoanPaidOff, loan.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordPayment_OverpaymentRollsBack(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "loans"`).
		WillReturnRows(sqlmock.NewRows(loanColumns).AddRow(7, 3, "10000.00", "6000.00", "THB", "ACTIVE"))
	mock.ExpectRollback()

	_, _, err := svc.RecordPayment(context.Background(), RecordPaymentInput{
		LoanID:       7,
		Amount:       d("7000"),
		RecordedByID: 1,
	})
	require.Error(t, err)
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordPayment_LoanNotFound(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "loans"`).
		WillReturnRows(sqlmock.NewRows(loanColumns))
	mock.ExpectRollback()

	_, _, err := svc.RecordPayment(context.Background(), RecordPaymentInput{
		LoanID:       99,
		Amount:       d("10"),
		RecordedByID: 1,
	})
	assert.Equal(t, codes.NotFound, status.Code(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordPayment_ValidatesBeforeTouchingDB(t *testing.T) {
	svc, mock := newTestService(t)

	_, _, err := svc.RecordPayment(context.Background(), RecordPaymentInput{LoanID: 7, Amount: d("10")})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, _, err = svc.RecordPayment(context.Background(), RecordPaymentInput{
		LoanID: 7, Amount: d("10"), RecordedByID: 1, Method: "CHEQUE",
	})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateLoan_RejectsBadPrincipal(t *testing.T) {
	svc, mock := newTestService(t)

	for _, principal := range []string{"0", "-5", "10.005"} {
		_, err := svc.CreateLoan(context.Background(), CreateLoanInput{WorkerID: 1, Principal: d(principal)})
		assert.Equal(t, codes.InvalidArgument, status.Code(err), principal)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateLoan_OpensWithFullBalance(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(`SELECT "id" FROM "workers"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "loans"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectCommit()

	loan, err := svc.CreateLoan(context.Background(), CreateLoanInput{
		WorkerID:  3,
		Principal: d("2500.50"),
		Currency:  "lak",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(5), loan.ID)
	assert.True(t, loan.Balance.Equal(loan.Principal))
	assert.Equal(t, "LAK", loan.Currency)
	assert.Equal(t, models.LoanActive, loan.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateLoanStatus_RefusesManualPayoff(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "loans"`).
		WillReturnRows(sqlmock.NewRows(loanColumns).AddRow(7, 3, "100.00", "50.00", "THB", "ACTIVE"))
	mock.ExpectRollback()

	_, err := svc.UpdateLoanStatus(context.Background(), 7, models.LoanPaidOff)
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReconcile_RepairsDrift(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "loans"`).
		WillReturnRows(sqlmock.NewRows(loanColumns).AddRow(7, 3, "10000.00", "9000.00", "THB", "ACTIVE"))
	mock.ExpectQuery(`SELECT \* FROM "payments" WHERE loan_id = `).
		WillReturnRows(sqlmock.NewRows([]string{"id", "loan_id", "amount"}).
			AddRow(1, 7, "4000.00").
			AddRow(2, 7, "6000.00"))
	mock.ExpectExec(`UPDATE "loans" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rec, err := svc.Reconcile(context.Background(), 7, true)
	require.NoError(t, err)

	assert.True(t, rec.ExpectedBalance.IsZero())
	assert.True(t, rec.Drift.Equal(decimal.NewFromInt(9000)))
	assert.True(t, rec.Repaired)
	assert.Equal(t, models.LoanPaidOff, rec.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReconcile_ReportOnly(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "loans"`).
		WillReturnRows(sqlmock.NewRows(loanColumns).AddRow(7, 3, "10000.00", "6000.00", "THB", "ACTIVE"))
	mock.ExpectQuery(`SELECT \* FROM "payments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "loan_id", "amount"}).AddRow(1, 7, "4000.00"))
	mock.ExpectCommit()

	rec, err := svc.Reconcile(context.Background(), 7, false)
	require.NoError(t, err)

	assert.True(t, rec.Drift.IsZero())
	assert.False(t, rec.Repaired)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReconcile_RefusesToRepairUnderpaidPaidOffLoan(t *testing.T) {
	svc, mock := newTestService(t)

	for _, repair := range []bool{false, true} {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "loans"`).
			WillReturnRows(sqlmock.NewRows(loanColumns).AddRow(7, 3, "10000.00", "0.00", "THB", "PAID_OFF"))
		mock.ExpectQuery(`SELECT \* FROM "payments" WHERE loan_id = `).
			WillReturnRows(sqlmock.NewRows([]string{"id", "loan_id", "amount"}).AddRow(1, 7, "4000.00"))
		if repair {
			mock.ExpectRollback()
		} else {
			mock.ExpectCommit()
		}
	}

	rec, err := svc.Reconcile(context.Background(), 7, false)
	require.NoError(t, err)
	assert.True(t, rec.ExpectedBalance.Equal(decimal.NewFromInt(6000)))
	assert.True(t, rec.Drift.Equal(decimal.NewFromInt(-6000)))
	assert.Equal(t, models.LoanPaidOff, rec.Status)

	_, err = svc.Reconcile(context.Background(), 7, true)
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoanDetail_Aggregates(t *testing.T) {
	loan := models.Loan{
		Principal: d("10000"),
		Balance:   d("6000"),
		Payments:  []models.Payment{{Amount: d("4000")}},
	}

	got := detail(loan)
	assert.True(t, got.TotalPaid.Equal(d("4000")))
	assert.True(t, got.Progress.Equal(d("0.4")))
	assert.True(t, got.Consistent)
}
