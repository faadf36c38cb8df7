// Package category holds income and expenditure categories and the rule
// deciding which branches may use them.
package category

import (
	"fmt"
	"strings"
	"time"

	"github.com/amirasaad/branchledger/pkg/domain"
	"github.com/amirasaad/branchledger/pkg/domain/branch"
	"github.com/google/uuid"
)

// Kind tells income categories from expenditure categories.
type Kind string

const (
	KindIncome      Kind = "income"
	KindExpenditure Kind = "expenditure"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpenditure
}

// Scope restricts a global category to a branch type.
type Scope string

const (
	ScopeAll  Scope = "all"
	ScopeMain Scope = "main"
	ScopeSub  Scope = "sub"
)

// Valid reports whether s is a known scope.
func (s Scope) Valid() bool {
	return s == ScopeAll || s == ScopeMain || s == ScopeSub
}

// ReservedName is the name of the categories used by fund allocations.
const ReservedName = "Fund Allocation"

// Fixed identifiers of the reserved allocation categories.
var (
	ReservedIncomeID      = uuid.MustParse("6f1c3a52-2d8e-4c1b-9a57-0f4e1f0a0001")
	ReservedExpenditureID = uuid.MustParse("6f1c3a52-2d8e-4c1b-9a57-0f4e1f0a0002")
)

// Category labels transactions of one kind.
type Category struct {
	ID          uuid.UUID  `json:"id"`
	Kind        Kind       `json:"kind"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Scope       Scope      `json:"branch_type"`
	BranchID    *uuid.UUID `json:"branch_id,omitempty"`
	IsActive    bool       `json:"is_active"`
	CreatedBy   *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Params carries the fields needed to create a category.
type Params struct {
	Kind        Kind
	Name        string
	Description string
	Scope       Scope
	BranchID    *uuid.UUID
	CreatedBy   *uuid.UUID
}

// New validates p and returns an active category.
func New(p Params) (*Category, error) {
	if !p.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown category kind %q", domain.ErrValidation, p.Kind)
	}
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", domain.ErrValidation)
	}
	if len(name) > 100 {
		return nil, fmt.Errorf("%w: category name is too long", domain.ErrValidation)
	}
	if p.Scope == "" {
		p.Scope = ScopeAll
	}
	if !p.Scope.Valid() {
		return nil, fmt.Errorf("%w: unknown category scope %q", domain.ErrValidation, p.Scope)
	}
	return &Category{
		ID:          uuid.New(),
		Kind:        p.Kind,
		Name:        name,
		Description: strings.TrimSpace(p.Description),
		Scope:       p.Scope,
		BranchID:    p.BranchID,
		IsActive:    true,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// Reserved returns the allocation category of the given kind.
func Reserved(kind Kind) *Category {
	id := ReservedIncomeID
	if kind == KindExpenditure {
		id = ReservedExpenditureID
	}
	return &Category{
		ID:          id,
		Kind:        kind,
		Name:        ReservedName,
		Description: "Funds moved between the main branch and sub branches",
		Scope:       ScopeAll,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}
}

// VisibleTo reports whether the category may be used by b.
// A branch-owned category is visible only to its owner; a global one is
// visible when its scope is "all" or matches the branch type.
func (c *Category) VisibleTo(b *branch.Branch) bool {
	if c.BranchID != nil {
		return *c.BranchID == b.ID
	}
	return c.Scope == ScopeAll || string(c.Scope) == string(b.Type)
}
