package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/amirasaad/branchledger/pkg/domain"
	"github.com/amirasaad/branchledger/pkg/domain/user"
	"github.com/amirasaad/branchledger/pkg/dto"
	"github.com/google/uuid"
)

type userRepository struct {
	db *db
}

func (r *userRepository) Create(_ context.Context, u *user.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.state.users {
		if existing.ID == u.ID || existing.Username == u.Username {
			return domain.ErrAlreadyExists
		}
		if u.Email != "" && existing.Email == u.Email {
			return domain.ErrAlreadyExists
		}
	}
	r.db.state.users[u.ID] = *u
	return nil
}

func (r *userRepository) Update(_ context.Context, id uuid.UUID, uu *dto.UserUpdate) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.state.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	if uu.Email != nil {
		u.Email = *uu.Email
	}
	if uu.FirstName != nil {
		u.FirstName = *uu.FirstName
	}
	if uu.LastName != nil {
		u.LastName = *uu.LastName
	}
	if uu.Phone != nil {
		u.Phone = *uu.Phone
	}
	if uu.Password != nil {
		u.Password = *uu.Password
	}
	if uu.IsActive != nil {
		u.IsActive = *uu.IsActive
	}
	switch {
	case uu.ClearBranch:
		u.BranchID = nil
	case uu.BranchID != nil:
		id := *uu.BranchID
		u.BranchID = &id
	}
	u.UpdatedAt = time.Now().UTC()
	r.db.state.users[u.ID] = u
	return nil
}

func (r *userRepository) Get(_ context.Context, id uuid.UUID) (*user.User, error) {
	return r.find(func(u user.User) bool { return u.ID == id })
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*user.User, error) {
	return r.find(func(u user.User) bool { return email != "" && u.Email == email })
}

func (r *userRepository) GetByUsername(_ context.Context, username string) (*user.User, error) {
	return r.find(func(u user.User) bool { return u.Username == username })
}

func (r *userRepository) find(match func(user.User) bool) (*user.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, u := range r.db.state.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *userRepository) List(_ context.Context, role user.Role) ([]*user.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	result := make([]*user.User, 0, len(r.db.state.users))
	for _, u := range r.db.state.users {
		if role != "" && u.Role != role {
			continue
		}
		result = append(result, &u)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *userRepository) CountActive(_ context.Context, role user.Role) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var count int64
	for _, u := range r.db.state.users {
		if u.Role == role && u.IsActive {
			count++
		}
	}
	return count, nil
}

func (r *userRepository) ClearBranch(_ context.Context, branchID uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for id, u := range r.db.state.users {
		if u.BranchID != nil && *u.BranchID == branchID {
			u.BranchID = nil
			r.db.state.users[id] = u
		}
	}
	return nil
}

func (r *userRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.state.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.db.state.users, id)
	return nil
}
