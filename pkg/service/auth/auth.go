// Package auth authenticates administrators and resolves the Principal
// behind a JWT.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/amirasaad/branchledger/pkg/config"
	"github.com/amirasaad/branchledger/pkg/domain"
	"github.com/amirasaad/branchledger/pkg/domain/user"
	"github.com/amirasaad/branchledger/pkg/repository"
	userrepo "github.com/amirasaad/branchledger/pkg/repository/user"
	"github.com/amirasaad/branchledger/pkg/utils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Service struct {
	uow    repository.UnitOfWork
	cfg    *config.Jwt
	logger *slog.Logger
}

func New(
	uow repository.UnitOfWork,
	cfg *config.Jwt,
	logger *slog.Logger,
) *Service {
	return &Service{uow: uow, cfg: cfg, logger: logger}
}

func (s *Service) CheckPasswordHash(
	password, hash string,
) bool {
	valid := utils.CheckPasswordHash(password, hash)
	if !valid {
		s.logger.Debug("Password hash check failed")
	}
	return valid
}

func (s *Service) ValidEmail(email string) bool {
	return utils.IsEmail(email)
}

// Login checks identity (username or email) and password. Unknown users,
// wrong passwords and inactive accounts all fail with ErrUserUnauthorized.
func (s *Service) Login(
	ctx context.Context,
	identity, password string,
) (u *user.User, err error) {
	log := s.logger.With("context", "Login", "identity", identity)
	log.Debug("Login called")
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := repository.Get[userrepo.Repository](uow)
		if err != nil {
			return err
		}
		if s.ValidEmail(identity) {
			u, err = repo.GetByEmail(ctx, identity)
		} else {
			u, err = repo.GetByUsername(ctx, identity)
		}
		if errors.Is(err, domain.ErrNotFound) {
			// Always check password hash to avoid timing attacks
			_ = s.CheckPasswordHash(password, utils.DummyHash)
			return user.ErrUserUnauthorized
		}
		if err != nil {
			return err
		}
		if !s.CheckPasswordHash(password, u.Password) {
			return user.ErrUserUnauthorized
		}
		if !u.IsActive {
			return user.ErrUserUnauthorized
		}
		return nil
	})
	if err != nil {
		log.Warn("Login failed", "error", err)
		return nil, err
	}
	log.Info("Login successful", "userID", u.ID)
	return u, nil
}

// GenerateToken signs an HS256 token carrying the user id, username and role.
func (s *Service) GenerateToken(u *user.User) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)
	claims["user_id"] = u.ID.String()
	claims["username"] = u.Username
	claims["role"] = string(u.Role)
	claims["exp"] = time.Now().Add(s.cfg.Expiry).Unix()
	tokenString, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		s.logger.Error("GenerateToken failed", "userID", u.ID, "error", err)
		return "", err
	}
	return tokenString, nil
}

// GetCurrentUserID extracts the user id claim of a validated token.
func (s *Service) GetCurrentUserID(token *jwt.Token) (uuid.UUID, error) {
	if token == nil {
		return uuid.Nil, user.ErrUserUnauthorized
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, user.ErrUserUnauthorized
	}
	raw, ok := claims["user_id"].(string)
	if !ok {
		return uuid.Nil, user.ErrUserUnauthorized
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, user.ErrUserUnauthorized
	}
	return id, nil
}

// Principal loads the caller behind token from the database, so role and
// branch changes and deactivation apply to tokens already issued.
func (s *Service) Principal(
	ctx context.Context,
	token *jwt.Token,
) (p user.Principal, err error) {
	userID, err := s.GetCurrentUserID(token)
	if err != nil {
		return user.Principal{}, err
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := repository.Get[userrepo.Repository](uow)
		if err != nil {
			return err
		}
		u, err := repo.Get(ctx, userID)
		if errors.Is(err, domain.ErrNotFound) {
			return user.ErrUserUnauthorized
		}
		if err != nil {
			return err
		}
		if !u.IsActive {
			return user.ErrUserUnauthorized
		}
		p = u.Principal()
		return nil
	})
	if err != nil {
		s.logger.Debug("Principal lookup failed", "userID", userID, "error", err)
		return user.Principal{}, err
	}
	return p, nil
}
