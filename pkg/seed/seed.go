// Package seed loads branches and categories from a YAML file and creates
// the ones that do not exist yet.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/amirasaad/branchledger/pkg/domain"
	"github.com/amirasaad/branchledger/pkg/domain/branch"
	"github.com/amirasaad/branchledger/pkg/domain/category"
	"github.com/amirasaad/branchledger/pkg/domain/user"
	"github.com/amirasaad/branchledger/pkg/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Branch is a branch entry of the seed file.
type Branch struct {
	Name           string          `yaml:"name"`
	Location       string          `yaml:"location"`
	State          string          `yaml:"state"`
	Address        string          `yaml:"address"`
	AllocatedFunds decimal.Decimal `yaml:"allocated_funds"`
}

// Category is a category entry of the seed file. Branch names an owning
// branch and is optional.
type Category struct {
	Kind        category.Kind  `yaml:"kind"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Scope       category.Scope `yaml:"scope"`
	Branch      string         `yaml:"branch"`
}

// File is the document layout of a seed file.
type File struct {
	Branches   []Branch   `yaml:"branches"`
	Categories []Category `yaml:"categories"`
}

// Load reads and parses the seed file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a seed document.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: invalid seed file: %v", domain.ErrValidation, err)
	}
	return &f, nil
}

// BranchService is the subset of branch operations seeding needs.
type BranchService interface {
	List(ctx context.Context, p user.Principal, filter dto.BranchFilter) ([]*branch.Branch, error)
	Create(ctx context.Context, p user.Principal, params branch.Params) (*branch.Branch, error)
}

// CategoryService is the subset of category operations seeding needs.
type CategoryService interface {
	List(ctx context.Context, p user.Principal, kind category.Kind) ([]*category.Category, error)
	Create(ctx context.Context, p user.Principal, params category.Params) (*category.Category, error)
}

// system acts for start-up seeding. It has no user id, so created rows have
// no creator.
var system = user.Principal{Role: user.RoleSuperAdmin}

// Result counts what Apply created.
type Result struct {
	Branches   int
	Categories int
}

// Apply creates the branches and categories of f that are missing. Branches
// match by name; categories by kind, name and owning branch.
func Apply(
	ctx context.Context,
	f *File,
	branches BranchService,
	categories CategoryService,
	logger *slog.Logger,
) (Result, error) {
	var res Result
	existing, err := branches.List(ctx, system, dto.BranchFilter{})
	if err != nil {
		return res, err
	}
	byName := make(map[string]uuid.UUID, len(existing))
	for _, b := range existing {
		byName[b.Name] = b.ID
	}

	for _, sb := range f.Branches {
		if _, ok := byName[sb.Name]; ok {
			continue
		}
		b, err := branches.Create(ctx, system, branch.Params{
			Name:           sb.Name,
			Location:       sb.Location,
			State:          sb.State,
			Address:        sb.Address,
			Type:           branch.TypeSub,
			AllocatedFunds: sb.AllocatedFunds,
		})
		if err != nil {
			return res, fmt.Errorf("seed branch %q: %w", sb.Name, err)
		}
		byName[b.Name] = b.ID
		res.Branches++
	}

	known := map[category.Kind][]*category.Category{}
	for _, sc := range f.Categories {
		var owner *uuid.UUID
		if sc.Branch != "" {
			id, ok := byName[sc.Branch]
			if !ok {
				return res, fmt.Errorf("%w: seed category %q references unknown branch %q",
					domain.ErrValidation, sc.Name, sc.Branch)
			}
			owner = &id
		}
		if _, ok := known[sc.Kind]; !ok && sc.Kind.Valid() {
			if known[sc.Kind], err = categories.List(ctx, system, sc.Kind); err != nil {
				return res, err
			}
		}
		if containsCategory(known[sc.Kind], sc.Name, owner) {
			continue
		}
		c, err := categories.Create(ctx, system, category.Params{
			Kind:        sc.Kind,
			Name:        sc.Name,
			Description: sc.Description,
			Scope:       sc.Scope,
			BranchID:    owner,
		})
		if err != nil {
			return res, fmt.Errorf("seed category %q: %w", sc.Name, err)
		}
		known[c.Kind] = append(known[c.Kind], c)
		res.Categories++
	}
	logger.Info("Seed applied", "branches", res.Branches, "categories", res.Categories)
	return res, nil
}

func containsCategory(list []*category.Category, name string, owner *uuid.UUID) bool {
	for _, c := range list {
		if c.Name != name {
			continue
		}
		if owner == nil && c.BranchID == nil {
			return true
		}
		if owner != nil && c.BranchID != nil && *owner == *c.BranchID {
			return true
		}
	}
	return false
}
