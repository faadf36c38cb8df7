// Package branch holds the branch entity: the main office and the sub branches it funds.
package branch

import (
	"fmt"
	"strings"
	"time"

	"github.com/amirasaad/branchledger/pkg/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type distinguishes the single main branch from sub branches.
type Type string

const (
	TypeMain Type = "main"
	TypeSub  Type = "sub"
)

// Valid reports whether t is a known branch type.
func (t Type) Valid() bool {
	return t == TypeMain || t == TypeSub
}

// Branch is an organisational unit that holds funds.
//
// AllocatedFunds is the cumulative amount ever allocated to the branch. It is
// never decremented and is not the branch balance; the balance is always
// derived from transactions.
type Branch struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Location       string          `json:"location"`
	State          string          `json:"state"`
	Address        string          `json:"address"`
	Type           Type            `json:"branch_type"`
	AllocatedFunds decimal.Decimal `json:"allocated_funds"`
	IsActive       bool            `json:"is_active"`
	CreatedBy      *uuid.UUID      `json:"created_by,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Params carries the fields needed to create a branch.
type Params struct {
	Name           string
	Location       string
	State          string
	Address        string
	Type           Type
	AllocatedFunds decimal.Decimal
	CreatedBy      *uuid.UUID
}

// New validates p and returns an active branch.
func New(p Params) (*Branch, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: branch name is required", domain.ErrValidation)
	}
	if len(name) > 200 {
		return nil, fmt.Errorf("%w: branch name is too long", domain.ErrValidation)
	}
	if p.Type == "" {
		p.Type = TypeSub
	}
	if !p.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown branch type %q", domain.ErrValidation, p.Type)
	}
	if p.AllocatedFunds.IsNegative() {
		return nil, fmt.Errorf("%w: allocated funds cannot be negative", domain.ErrValidation)
	}
	now := time.Now().UTC()
	return &Branch{
		ID:             uuid.New(),
		Name:           name,
		Location:       strings.TrimSpace(p.Location),
		State:          strings.TrimSpace(p.State),
		Address:        strings.TrimSpace(p.Address),
		Type:           p.Type,
		AllocatedFunds: p.AllocatedFunds,
		IsActive:       true,
		CreatedBy:      p.CreatedBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// IsMain reports whether b is the main branch.
func (b *Branch) IsMain() bool {
	return b.Type == TypeMain
}
