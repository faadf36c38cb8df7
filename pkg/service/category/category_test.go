package category_test

import (
	"context"
	"testing"

	"github.com/amirasaad/branchledger/internal/fixtures"
	"github.com/amirasaad/branchledger/internal/fixtures/memstore"
	"github.com/amirasaad/branchledger/pkg/domain"
	"github.com/amirasaad/branchledger/pkg/domain/branch"
	"github.com/amirasaad/branchledger/pkg/domain/category"
	categorysvc "github.com/amirasaad/branchledger/pkg/service/category"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(list []*category.Category) []string {
	out := make([]string, 0, len(list))
	for _, c := range list {
		out = append(out, c.Name)
	}
	return out
}

func TestCreate(t *testing.T) {
	t.Parallel()
	w := fixtures.NewWorld(t)
	svc := categorysvc.New(w.Store, fixtures.Logger())
	ctx := context.Background()

	c, err := svc.Create(ctx, w.Super, category.Params{
		Kind:     category.KindExpenditure,
		Name:     "Fuel",
		BranchID: &w.Sub.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, category.ScopeAll, c.Scope)
	require.NotNil(t, c.CreatedBy)
	assert.Equal(t, w.Super.UserID, *c.CreatedBy)

	missing := uuid.New()
	_, err = svc.Create(ctx, w.Super, category.Params{Kind: category.KindIncome, Name: "Gift", BranchID: &missing})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Create(ctx, w.Super, category.Params{Kind: "transfer", Name: "Odd"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Create(ctx, fixtures.BranchAdmin(w.Sub.ID), category.Params{Kind: category.KindIncome, Name: "Gift"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestList_VisibilityForBranchAdmins(t *testing.T) {
	t.Parallel()
	w := fixtures.NewWorld(t)
	svc := categorysvc.New(w.Store, fixtures.Logger())
	ctx := context.Background()
	other := w.AddBranch(t, "SubB", branch.TypeSub)

	w.NewCategory(t, category.Params{Kind: category.KindExpenditure, Name: "HQ only", Scope: category.ScopeMain})
	w.NewCategory(t, category.Params{Kind: category.KindExpenditure, Name: "Subs only", Scope: category.ScopeSub})
	w.NewCategory(t, category.Params{Kind: category.KindExpenditure, Name: "SubA own", BranchID: &w.Sub.ID})
	w.NewCategory(t, category.Params{Kind: category.KindExpenditure, Name: "SubB own", BranchID: &other.ID})

	all, err := svc.List(ctx, w.Super, category.KindExpenditure)
	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]string{category.ReservedName, "HQ only", "Subs only", "SubA own", "SubB own", "Utilities"},
		names(all))

	visible, err := svc.List(ctx, fixtures.BranchAdmin(w.Sub.ID), category.KindExpenditure)
	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]string{category.ReservedName, "Subs only", "SubA own", "Utilities"},
		names(visible))

	_, err = svc.List(ctx, fixtures.BranchAdmin(uuid.New()), category.KindExpenditure)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEnsureReserved(t *testing.T) {
	t.Parallel()
	store := memstore.New()
	svc := categorysvc.New(store, fixtures.Logger())
	ctx := context.Background()

	require.NoError(t, svc.EnsureReserved(ctx))
	require.NoError(t, svc.EnsureReserved(ctx))
	assert.Equal(t, 2, store.Counts().Categories)
}
