package report_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/amirasaad/branchledger/internal/fixtures"
	"github.com/amirasaad/branchledger/pkg/domain"
	"github.com/amirasaad/branchledger/pkg/domain/ledger"
	"github.com/amirasaad/branchledger/pkg/domain/user"
	branchsvc "github.com/amirasaad/branchledger/pkg/service/branch"
	reportsvc "github.com/amirasaad/branchledger/pkg/service/report"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func day(month time.Month, d int) time.Time {
	return time.Date(2025, month, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newService(w *fixtures.World) *reportsvc.Service {
	svc := reportsvc.New(w.Store, branchsvc.New(w.Store, nil, fixtures.Logger()), fixtures.Logger())
	svc.SetClock(func() time.Time { return day(time.March, 15).Add(10 * time.Hour) })
	return svc
}

// March: SubA +100 (10th) -40 (12th), main +300 (1st). February: main +200.
func populate(t *testing.T, w *fixtures.World) {
	t.Helper()
	w.Post(t, w.Sub.ID, ledger.TypeIncome, "100", day(time.March, 10))
	w.Post(t, w.Sub.ID, ledger.TypeExpenditure, "40", day(time.March, 12))
	w.Post(t, w.Main.ID, ledger.TypeIncome, "300", day(time.March, 1))
	w.Post(t, w.Main.ID, ledger.TypeIncome, "200", day(time.February, 20))
}

func TestDashboard_SuperAdmin(t *testing.T) {
	t.Parallel()
	w := fixtures.NewWorld(t)
	populate(t, w)
	w.AddUser(t, "a", user.RoleBranchAdmin, &w.Sub.ID)
	w.AddUser(t, "b", user.RoleBranchAdmin, nil)

	d, err := newService(w).Dashboard(context.Background(), w.Super)
	require.NoError(t, err)
	require.NotNil(t, d.Main)
	assert.Equal(t, w.Main.ID, d.Main.Branch.ID)
	assert.True(t, dec("500").Equal(d.Main.Balance))
	assert.Len(t, d.Main.Recent, 2)
	require.NotNil(t, d.Totals)
	assert.True(t, dec("600").Equal(d.Totals.Income))
	assert.True(t, dec("40").Equal(d.Totals.Expenditure))
	assert.True(t, dec("560").Equal(*d.Net))
	assert.True(t, d.TotalAllocated.IsZero())
	require.Len(t, d.SubBranches, 1)
	assert.Equal(t, w.Sub.ID, d.SubBranches[0].ID)
	assert.Equal(t, int64(2), *d.ActiveAdmins)
	assert.Nil(t, d.Branch)
}

func TestDashboard_BranchAdmin(t *testing.T) {
	t.Parallel()
	w := fixtures.NewWorld(t)
	populate(t, w)
	svc := newService(w)

	d, err := svc.Dashboard(context.Background(), fixtures.BranchAdmin(w.Sub.ID))
	require.NoError(t, err)
	require.NotNil(t, d.Branch)
	assert.True(t, dec("60").Equal(d.Branch.Balance))
	assert.Len(t, d.Branch.Recent, 2)
	assert.Nil(t, d.Main)
	assert.Nil(t, d.Totals)

	_, err = svc.Dashboard(context.Background(), user.Principal{UserID: uuid.New(), Role: user.RoleBranchAdmin})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestReport_DefaultPeriod(t *testing.T) {
	t.Parallel()
	w := fixtures.NewWorld(t)
	populate(t, w)

	r, err := newService(w).Report(context.Background(), w.Super, reportsvc.Filter{})
	require.NoError(t, err)
	assert.Equal(t, day(time.March, 1), r.StartDate)
	assert.Equal(t, day(time.March, 15), r.EndDate)

	assert.True(t, dec("400").Equal(r.Totals.Income))
	assert.True(t, dec("40").Equal(r.Totals.Expenditure))
	assert.Equal(t, int64(2), r.Totals.IncomeCount)
	assert.Equal(t, int64(1), r.Totals.ExpenditureCount)
	assert.True(t, dec("360").Equal(r.Net))
	assert.True(t, dec("146.67").Equal(r.Average), r.Average.String())

	require.Len(t, r.Trend, 30)
	assert.Equal(t, day(time.March, 15), r.Trend[29].Date)
	assert.Equal(t, day(time.February, 14), r.Trend[0].Date)
	for _, p := range r.Trend {
		switch p.Date {
		case day(time.March, 10):
			assert.True(t, dec("100").Equal(p.Income))
		case day(time.March, 12):
			assert.True(t, dec("40").Equal(p.Expenditure))
		case day(time.February, 20):
			assert.True(t, dec("200").Equal(p.Income))
		}
	}

	require.Len(t, r.TopIncome, 1)
	assert.Equal(t, "Donations", r.TopIncome[0].Name)
	assert.True(t, dec("400").Equal(r.TopIncome[0].Total))
	assert.Equal(t, int64(2), r.TopIncome[0].Count)
	require.Len(t, r.TopExpenditure, 1)
	assert.Equal(t, "Utilities", r.TopExpenditure[0].Name)

	require.Len(t, r.Branches, 2)
	assert.Equal(t, "Head Office", r.Branches[0].Name)
	assert.True(t, dec("300").Equal(r.Branches[0].Income))
	assert.Equal(t, "SubA", r.Branches[1].Name)
	assert.True(t, dec("60").Equal(r.Branches[1].Net()))

	assert.True(t, dec("400").Equal(r.CurrentMonthIncome))
	assert.True(t, dec("200").Equal(r.PreviousMonthIncome))
	assert.True(t, dec("100").Equal(r.Growth), r.Growth.String())
}

func TestReport_BranchAdminScoped(t *testing.T) {
	t.Parallel()
	w := fixtures.NewWorld(t)
	populate(t, w)
	svc := newService(w)

	start := day(time.February, 1)
	r, err := svc.Report(context.Background(), fixtures.BranchAdmin(w.Sub.ID), reportsvc.Filter{
		StartDate: &start,
		BranchID:  &w.Main.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, r.BranchID)
	assert.Equal(t, w.Sub.ID, *r.BranchID)
	assert.True(t, dec("100").Equal(r.Totals.Income))
	assert.Nil(t, r.Branches)
	assert.True(t, dec("100").Equal(r.CurrentMonthIncome))
	assert.True(t, r.PreviousMonthIncome.IsZero())
	assert.True(t, r.Growth.IsZero())
}

func TestReport_InvalidPeriod(t *testing.T) {
	t.Parallel()
	w := fixtures.NewWorld(t)
	start, end := day(time.March, 10), day(time.March, 1)

	_, err := newService(w).Report(context.Background(), w.Super, reportsvc.Filter{StartDate: &start, EndDate: &end})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestGrowth(t *testing.T) {
	t.Parallel()
	assert.True(t, reportsvc.Growth(dec("150"), dec("100")).Equal(dec("50")))
	assert.True(t, reportsvc.Growth(dec("50"), dec("100")).Equal(dec("-50")))
	assert.True(t, reportsvc.Growth(dec("10"), decimal.Zero).IsZero())
	assert.True(t, reportsvc.Growth(dec("1"), dec("3")).Equal(dec("-66.67")))
}

func TestExport(t *testing.T) {
	t.Parallel()
	w := fixtures.NewWorld(t)
	populate(t, w)

	data, err := newService(w).Export(context.Background(), w.Super, reportsvc.Filter{})
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Transactions")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Date", "Branch", "Type", "Category", "Amount", "Description"}, rows[0])
	assert.Equal(t, "2025-03-12", rows[1][0])
	assert.Equal(t, "40.00", rows[1][4])

	summary, err := f.GetRows("Summary")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(summary), 4)
	assert.Equal(t, []string{"Total income", "400.00"}, summary[1])
	assert.Equal(t, []string{"Net", "360.00"}, summary[3])
}
