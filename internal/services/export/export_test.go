package export

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"vgroup-backoffice/internal/database/dbtest"
	"vgroup-backoffice/internal/database/models"
)

func openWorkbook(t *testing.T, data []byte) *excelize.File {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestBuildWorkbook_WorkerRows(t *testing.T) {
	deployed := time.Date(2024, 11, 2, 0, 0, 0, 0, time.UTC)
	workers := []models.Worker{
		{
			Code:        "W-0001",
			FirstNameEn: "Somsak",
			LastNameEn:  "Phommachanh",
			FirstNameLo: "ສົມສັກ",
			Nationality: "LA",
			Status:      models.WorkerDeployed,
			DeployedAt:  &deployed,
			Agent:       &models.Agent{Name: "Vientiane Recruit"},
		},
		{Code: "W-0002", FirstNameEn: "Noy", Status: models.WorkerNewLead},
	}

	data, err := buildWorkbook("Workers", workerColumns, workers)
	require.NoError(t, err)

	f := openWorkbook(t, data)
	assert.Equal(t, []string{"Workers"}, f.GetSheetList())

	rows, err := f.GetRows("Workers")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Code", rows[0][0])
	assert.Equal(t, "Somsak Phommachanh", rows[1][1])
	assert.Equal(t, "ສົມສັກ", rows[1][3])
	assert.Equal(t, "DEPLOYED", rows[1][9])
	assert.Equal(t, "Vientiane Recruit", rows[1][10])
	assert.Equal(t, "2024-11-02", rows[1][12])

	panes, err := f.GetPanes("Workers")
	require.NoError(t, err)
	assert.True(t, panes.Freeze)
	assert.Equal(t, 1, panes.YSplit)
}

func TestBuildWorkbook_LoanAmounts(t *testing.T) {
	loans := []models.Loan{{
		ID:        4,
		Principal: decimal.NewFromInt(10000),
		Balance:   decimal.NewFromInt(6000),
		Currency:  "THB",
		Status:    models.LoanActive,
		IssuedAt:  time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
	}}

	data, err := buildWorkbook("Loans", loanColumns, loans)
	require.NoError(t, err)

	f := openWorkbook(t, data)
	paid, err := f.GetCellValue("Loans", "G2")
	require.NoError(t, err)
	assert.Equal(t, "4000", paid)
}

func TestService_LoansQueriesByStatus(t *testing.T) {
	db, mock := dbtest.NewMock(t)
	svc := NewService(db, zap.NewNop())

	mock.ExpectQuery(`SELECT \* FROM "loans" WHERE status = `).
		WillReturnRows(sqlmock.NewRows([]string{"id", "worker_id", "principal", "balance", "currency", "status"}))

	data, err := svc.Loans(context.Background(), models.LoanOverdue)
	require.NoError(t, err)

	rows, err := openWorkbook(t, data).GetRows("Loans")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
