package ledger_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/amirasaad/branchledger/internal/fixtures"
	"github.com/amirasaad/branchledger/internal/fixtures/memstore"
	"github.com/amirasaad/branchledger/pkg/config"
	"github.com/amirasaad/branchledger/pkg/domain"
	"github.com/amirasaad/branchledger/pkg/domain/branch"
	"github.com/amirasaad/branchledger/pkg/domain/category"
	"github.com/amirasaad/branchledger/pkg/domain/ledger"
	"github.com/amirasaad/branchledger/pkg/domain/user"
	"github.com/amirasaad/branchledger/pkg/dto"
	ledgersvc "github.com/amirasaad/branchledger/pkg/service/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newService(w *fixtures.World, enforce bool) *ledgersvc.Service {
	return ledgersvc.New(w.Store, &config.Ledger{EnforceMainBalance: enforce}, fixtures.Logger())
}

func expenditure(w *fixtures.World, branchID uuid.UUID, amount string) ledgersvc.RecordInput {
	return ledgersvc.RecordInput{
		BranchID:   branchID,
		Type:       ledger.TypeExpenditure,
		Amount:     dec(amount),
		CategoryID: w.Expenditure.ID,
	}
}

func income(w *fixtures.World, branchID uuid.UUID, amount string) ledgersvc.RecordInput {
	return ledgersvc.RecordInput{
		BranchID:   branchID,
		Type:       ledger.TypeIncome,
		Amount:     dec(amount),
		CategoryID: w.Income.ID,
	}
}

func TestGetBalance_ZeroWithoutTransactions(t *testing.T) {
	t.Parallel()
	w := fixtures.NewWorld(t)
	svc := newService(w, false)

	bal, err := svc.GetBalance(context.Background(), w.Super, w.Sub.ID)
	require.NoError(t, err)
	assert.True(t, bal.IsZero())
}

func TestGetBalance_IncomeMinusExpenditure(t *testing.T) {
	t.Parallel()
	w := fixtures.NewWorld(t)
	svc := newService(w, false)
	ctx := context.Background()

	w.Post(t, w.Sub.ID, ledger.TypeIncome, "1000.50", time.Now())
	w.Post(t, w.Sub.ID, ledger.TypeIncome, "200", time.Now())
	w.Post(t, w.Sub.ID, ledger.TypeExpenditure, "300.25", time.Now())
	w.Post(t, w.Main.ID, ledger.TypeIncome, "99", time.Now())

	first, err := svc.GetBalance(ctx, w.Super, w.Sub.ID)
	require.NoError(t, err)
	assert.True(t, dec("900.25").Equal(first), first.String())

	second, err := svc.GetBalance(ctx, w.Super, w.Sub.ID)
	require.NoError(t, err)
	assert.True(t, first.Equal(second))
}

func TestGetBalance_Access(t *testing.T) {
	t.Parallel()
	w := fixtures.NewWorld(t)
	svc := newService(w, false)
	ctx := context.Background()

	_, err := svc.GetBalance(ctx, fixtures.BranchAdmin(w.Sub.ID), w.Main.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.GetBalance(ctx, fixtures.BranchAdmin(w.Sub.ID), w.Sub.ID)
	assert.NoError(t, err)

	_, err = svc.GetBalance(ctx, w.Super, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordTransaction_Income(t *testing.T) {
	t.Parallel()
	w := fixtures.NewWorld(t)
	svc := newService(w, false)

	in := income(w, w.Sub.ID, "250.75")
	in.Description = "  weekly collection "
	tx, err := svc.RecordTransaction(context.Background(), w.Super, in)
	require.NoError(t, err)
	assert.Equal(t, w.Sub.ID, tx.BranchID)
	assert.Equal(t, "weekly collection", tx.Description)
	assert.Equal(t, ledger.Day(time.Now().UTC()), tx.Date)
	require.NotNil(t, tx.CreatedBy)
	assert.Equal(t, w.Super.UserID, *tx.CreatedBy)
	assert.True(t, dec("250.75").Equal(w.Balance(t, w.Sub.ID)))
}

func TestRecordTransaction_ExpenditureWithinBalance(t *testing.T) {
	t.Parallel()
	w := fixtures.NewWorld(t)
	svc := newService(w, false)
	w.Post(t, w.Sub.ID, ledger.TypeIncome, "100", time.Now())

	_, err := svc.RecordTransaction(context.Background(), w.Super, expenditure(w, w.Sub.ID, "100"))
	require.NoError(t, err)
	assert.True(t, w.Balance(t, w.Sub.ID).IsZero())
}

func TestRecordTransaction_Overdraft(t *testing.T) {
	t.Parallel()
	w := fixtures.NewWorld(t)
	svc := newService(w, false)
	w.Post(t, w.Sub.ID, ledger.TypeIncome, "100", time.Now())
	before := w.Store.Counts()

	tx, err := svc.RecordTransaction(context.Background(), w.Super, expenditure(w, w.Sub.ID, "100.01"))
	require.Error(t, err)
	assert.Nil(t, tx)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	var insufficient *ledger.InsufficientFundsError
	require.True(t, errors.As(err, &insufficient))
	assert.True(t, dec("100").Equal(insufficient.Current))
	assert.True(t, dec("100.01").Equal(insufficient.Requested))

	assert.Equal(t, before, w.Store.Counts())
	assert.True(t, dec("100").Equal(w.Balance(t, w.Sub.ID)))
}

func TestRecordTransaction_Validation(t *testing.T) {
	t.Parallel()
	w := fixtures.NewWorld(t)
	svc := newService(w, false)
	w.Post(t, w.Sub.ID, ledger.TypeIncome, "1000", time.Now())

	other := w.AddBranch(t, "SubB", branch.TypeSub)
	owned := w.NewCategory(t, category.Params{
		Kind:     category.KindExpenditure,
		Name:     "SubB rent",
		BranchID: &other.ID,
	})
	mainOnly := w.NewCategory(t, category.Params{
		Kind:  category.KindExpenditure,
		Name:  "Head office payroll",
		Scope: category.ScopeMain,
	})

	tests := []struct {
		name   string
		mutate func(in *ledgersvc.RecordInput)
		want   error
	}{
		{"zero amount", func(in *ledgersvc.RecordInput) { in.Amount = decimal.Zero }, domain.ErrValidation},
		{"negative amount", func(in *ledgersvc.RecordInput) { in.Amount = dec("-5") }, domain.ErrValidation},
		{"three decimals", func(in *ledgersvc.RecordInput) { in.Amount = dec("1.005") }, domain.ErrValidation},
		{"unknown type", func(in *ledgersvc.RecordInput) { in.Type = "transfer" }, domain.ErrValidation},
		{"unknown branch", func(in *ledgersvc.RecordInput) { in.BranchID = uuid.New() }, domain.ErrNotFound},
		{"unknown category", func(in *ledgersvc.RecordInput) { in.CategoryID = uuid.New() }, domain.ErrNotFound},
		{"category kind mismatch", func(in *ledgersvc.RecordInput) { in.CategoryID = w.Income.ID }, domain.ErrValidation},
		{"category owned by another branch", func(in *ledgersvc.RecordInput) { in.CategoryID = owned.ID }, domain.ErrCategoryNotVisible},
		{"category scoped to main", func(in *ledgersvc.RecordInput) { in.CategoryID = mainOnly.ID }, domain.ErrCategoryNotVisible},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := expenditure(w, w.Sub.ID, "10")
			tt.mutate(&in)
			_, err := svc.RecordTransaction(context.Background(), w.Super, in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.True(t, dec("1000").Equal(w.Balance(t, w.Sub.ID)))
}

func TestRecordTransaction_Roles(t *testing.T) {
	t.Parallel()
	w := fixtures.NewWorld(t)
	svc := newService(w, false)
	ctx := context.Background()
	w.Post(t, w.Sub.ID, ledger.TypeIncome, "500", time.Now())
	w.Post(t, w.Main.ID, ledger.TypeIncome, "500", time.Now())
	admin := fixtures.BranchAdmin(w.Sub.ID)

	_, err := svc.RecordTransaction(ctx, admin, income(w, w.Sub.ID, "10"))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.RecordTransaction(ctx, admin, expenditure(w, w.Main.ID, "10"))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.RecordTransaction(ctx, user.Principal{UserID: uuid.New(), Role: user.RoleBranchAdmin},
		expenditure(w, w.Sub.ID, "10"))
	assert.ErrorIs(t, err, domain.ErrValidation)

	tx, err := svc.RecordTransaction(ctx, admin, expenditure(w, uuid.Nil, "10"))
	require.NoError(t, err)
	assert.Equal(t, w.Sub.ID, tx.BranchID)

	_, err = svc.RecordTransaction(ctx, w.Super, expenditure(w, w.Main.ID, "10"))
	assert.NoError(t, err)
}

func TestVisibility(t *testing.T) {
	t.Parallel()
	w := fixtures.NewWorld(t)
	subB := w.AddBranch(t, "SubB", branch.TypeSub)

	cases := []struct {
		name   string
		params category.Params
		main   bool
		subA   bool
	}{
		{"global all", category.Params{Scope: category.ScopeAll}, true, true},
		{"global main", category.Params{Scope: category.ScopeMain}, true, false},
		{"global sub", category.Params{Scope: category.ScopeSub}, false, true},
		{"owned by SubA", category.Params{BranchID: &w.Sub.ID}, false, true},
		{"owned by SubB", category.Params{BranchID: &subB.ID}, false, false},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			tt.params.Kind = category.KindExpenditure
			tt.params.Name = tt.name
			c, err := category.New(tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.main, c.VisibleTo(w.Main))
			assert.Equal(t, tt.subA, c.VisibleTo(w.Sub))
		})
	}
}

func TestAllocateFunds(t *testing.T) {
	t.Parallel()
	w := fixtures.NewWorld(t)
	svc := newService(w, false)
	ctx := context.Background()
	w.Post(t, w.Main.ID, ledger.TypeIncome, "1000", time.Now())
	mainBefore := w.Balance(t, w.Main.ID)
	subBefore := w.Balance(t, w.Sub.ID)

	alloc, err := svc.AllocateFunds(ctx, w.Super, ledgersvc.AllocateInput{
		ToBranchID:  w.Sub.ID,
		Amount:      dec("500"),
		Description: "Q1 budget",
	})
	require.NoError(t, err)
	assert.Equal(t, w.Main.ID, alloc.FromBranchID)
	assert.Equal(t, w.Sub.ID, alloc.ToBranchID)

	assert.True(t, subBefore.Add(dec("500")).Equal(w.Balance(t, w.Sub.ID)))
	assert.True(t, mainBefore.Sub(dec("500")).Equal(w.Balance(t, w.Main.ID)))
	assert.True(t, dec("500").Equal(w.Branch(t, w.Sub.ID).AllocatedFunds))

	page, err := svc.ListTransactions(ctx, w.Super, dto.TransactionFilter{})
	require.NoError(t, err)
	var legs []*dto.TransactionRead
	for _, tx := range page.Transactions {
		if tx.FundAllocationID != nil && *tx.FundAllocationID == alloc.ID {
			legs = append(legs, tx)
		}
	}
	require.Len(t, legs, 2)
	for _, leg := range legs {
		assert.Equal(t, category.ReservedName, leg.CategoryName)
		switch leg.Type {
		case ledger.TypeIncome:
			assert.Equal(t, w.Sub.ID, leg.BranchID)
			assert.Equal(t, category.ReservedIncomeID, leg.CategoryID)
			assert.Equal(t, "Fund allocation received from Head Office: Q1 budget", leg.Description)
		case ledger.TypeExpenditure:
			assert.Equal(t, w.Main.ID, leg.BranchID)
			assert.Equal(t, category.ReservedExpenditureID, leg.CategoryID)
			assert.Equal(t, "Fund allocation to SubA: Q1 budget", leg.Description)
		}
	}

	allocations, err := svc.ListAllocations(ctx, w.Super, dto.AllocationFilter{})
	require.NoError(t, err)
	require.Len(t, allocations, 1)
	assert.Equal(t, "Head Office", allocations[0].FromBranchName)
	assert.Equal(t, "SubA", allocations[0].ToBranchName)
}

func TestAllocateFunds_MainMayGoNegativeByDefault(t *testing.T) {
	t.Parallel()
	w := fixtures.NewWorld(t)
	svc := newService(w, false)

	_, err := svc.AllocateFunds(context.Background(), w.Super, ledgersvc.AllocateInput{
		ToBranchID: w.Sub.ID,
		Amount:     dec("300"),
	})
	require.NoError(t, err)
	assert.True(t, dec("-300").Equal(w.Balance(t, w.Main.ID)))
}

func TestAllocateFunds_EnforcedMainBalance(t *testing.T) {
	t.Parallel()
	w := fixtures.NewWorld(t)
	svc := newService(w, true)
	w.Post(t, w.Main.ID, ledger.TypeIncome, "100", time.Now())
	before := w.Store.Counts()

	_, err := svc.AllocateFunds(context.Background(), w.Super, ledgersvc.AllocateInput{
		ToBranchID: w.Sub.ID,
		Amount:     dec("100.50"),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.Equal(t, before, w.Store.Counts())
	assert.True(t, w.Branch(t, w.Sub.ID).AllocatedFunds.IsZero())
}

func TestAllocateFunds_Rejections(t *testing.T) {
	t.Parallel()
	w := fixtures.NewWorld(t)
	svc := newService(w, false)
	ctx := context.Background()

	_, err := svc.AllocateFunds(ctx, fixtures.BranchAdmin(w.Sub.ID), ledgersvc.AllocateInput{
		ToBranchID: w.Sub.ID, Amount: dec("10"),
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.AllocateFunds(ctx, w.Super, ledgersvc.AllocateInput{ToBranchID: w.Sub.ID, Amount: dec("0")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.AllocateFunds(ctx, w.Super, ledgersvc.AllocateInput{ToBranchID: w.Main.ID, Amount: dec("10")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.AllocateFunds(ctx, w.Super, ledgersvc.AllocateInput{ToBranchID: uuid.New(), Amount: dec("10")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Zero(t, w.Store.Counts().Allocations)
}

func TestAllocateFunds_NoMainBranch(t *testing.T) {
	t.Parallel()
	store := memstore.New()
	svc := ledgersvc.New(store, nil, fixtures.Logger())

	_, err := svc.AllocateFunds(context.Background(),
		user.Principal{UserID: uuid.New(), Role: user.RoleSuperAdmin},
		ledgersvc.AllocateInput{ToBranchID: uuid.New(), Amount: dec("10")},
	)
	assert.ErrorIs(t, err, domain.ErrNoMainBranch)
}

func TestDeleteTransaction(t *testing.T) {
	t.Parallel()
	w := fixtures.NewWorld(t)
	svc := newService(w, false)
	ctx := context.Background()
	onSub := w.Post(t, w.Sub.ID, ledger.TypeIncome, "10", time.Now())
	onMain := w.Post(t, w.Main.ID, ledger.TypeIncome, "10", time.Now())
	admin := fixtures.BranchAdmin(w.Sub.ID)

	assert.ErrorIs(t, svc.DeleteTransaction(ctx, admin, onMain.ID), domain.ErrForbidden)
	require.NoError(t, svc.DeleteTransaction(ctx, admin, onSub.ID))
	assert.ErrorIs(t, svc.DeleteTransaction(ctx, admin, onSub.ID), domain.ErrNotFound)
	require.NoError(t, svc.DeleteTransaction(ctx, w.Super, onMain.ID))
	assert.Zero(t, w.Store.Counts().Transactions)
}

func TestListTransactions(t *testing.T) {
	t.Parallel()
	w := fixtures.NewWorld(t)
	svc := newService(w, false)
	ctx := context.Background()
	today := ledger.Day(time.Now())

	old := w.Post(t, w.Sub.ID, ledger.TypeIncome, "100", today.AddDate(0, 0, -3))
	recent := w.Post(t, w.Sub.ID, ledger.TypeExpenditure, "40", today)
	w.Post(t, w.Main.ID, ledger.TypeIncome, "7", today.AddDate(0, 0, -1))

	page, err := svc.ListTransactions(ctx, w.Super, dto.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, page.Transactions, 3)
	assert.Equal(t, recent.ID, page.Transactions[0].ID)
	assert.Equal(t, old.ID, page.Transactions[2].ID)
	assert.True(t, dec("67").Equal(page.Net))

	page, err = svc.ListTransactions(ctx, fixtures.BranchAdmin(w.Sub.ID), dto.TransactionFilter{BranchID: &w.Main.ID})
	require.NoError(t, err)
	require.Len(t, page.Transactions, 2)
	assert.Equal(t, int64(1), page.Totals.IncomeCount)
	assert.Equal(t, "SubA", page.Transactions[0].BranchName)

	start := today.AddDate(0, 0, -1)
	page, err = svc.ListTransactions(ctx, w.Super, dto.TransactionFilter{
		Type:      ledger.TypeIncome,
		StartDate: &start,
		Limit:     500,
	})
	require.NoError(t, err)
	require.Len(t, page.Transactions, 1)
	assert.Equal(t, w.Main.ID, page.Transactions[0].BranchID)

	_, err = svc.ListTransactions(ctx, w.Super, dto.TransactionFilter{Type: "loan"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestListTransactions_LimitKeepsFullTotals(t *testing.T) {
	t.Parallel()
	w := fixtures.NewWorld(t)
	svc := newService(w, false)
	for range 5 {
		w.Post(t, w.Sub.ID, ledger.TypeIncome, "1", time.Now())
	}

	page, err := svc.ListTransactions(context.Background(), w.Super, dto.TransactionFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Transactions, 2)
	assert.Equal(t, int64(5), page.Totals.Count())
}

func TestEndToEndScenario(t *testing.T) {
	t.Parallel()
	w := fixtures.NewWorld(t)
	svc := newService(w, false)
	ctx := context.Background()
	admin := fixtures.BranchAdmin(w.Sub.ID)

	_, err := svc.RecordTransaction(ctx, w.Super, income(w, w.Main.ID, "10000"))
	require.NoError(t, err)

	_, err = svc.AllocateFunds(ctx, w.Super, ledgersvc.AllocateInput{ToBranchID: w.Sub.ID, Amount: dec("3000")})
	require.NoError(t, err)
	mainBal, err := svc.GetBalance(ctx, w.Super, w.Main.ID)
	require.NoError(t, err)
	assert.True(t, dec("7000").Equal(mainBal), mainBal.String())
	subBal, err := svc.GetBalance(ctx, admin, w.Sub.ID)
	require.NoError(t, err)
	assert.True(t, dec("3000").Equal(subBal), subBal.String())

	_, err = svc.RecordTransaction(ctx, admin, expenditure(w, w.Sub.ID, "1000"))
	require.NoError(t, err)
	subBal, err = svc.GetBalance(ctx, admin, w.Sub.ID)
	require.NoError(t, err)
	assert.True(t, dec("2000").Equal(subBal), subBal.String())

	_, err = svc.RecordTransaction(ctx, admin, expenditure(w, w.Sub.ID, "5000"))
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	subBal, err = svc.GetBalance(ctx, admin, w.Sub.ID)
	require.NoError(t, err)
	assert.True(t, dec("2000").Equal(subBal), subBal.String())
}

func TestRecordTransaction_ConcurrentExpendituresNeverOverdraw(t *testing.T) {
	t.Parallel()
	w := fixtures.NewWorld(t)
	svc := newService(w, false)
	w.Post(t, w.Sub.ID, ledger.TypeIncome, "100", time.Now())

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.RecordTransaction(context.Background(), w.Super, expenditure(w, w.Sub.ID, "30"))
		}()
	}
	wg.Wait()

	assert.True(t, dec("10").Equal(w.Balance(t, w.Sub.ID)))
}
