// Package services contains server-side business logic. This file implements
// CredentialService, which creates principals, checks passwords and mints
// tokens for both principal kinds.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/alumnihub/internal/common"
	"github.com/dmitrijs2005/alumnihub/internal/dbx"
	"github.com/dmitrijs2005/alumnihub/internal/logging"
	"github.com/dmitrijs2005/alumnihub/internal/server/auth"
	"github.com/dmitrijs2005/alumnihub/internal/server/config"
	"github.com/dmitrijs2005/alumnihub/internal/server/models"
	"github.com/dmitrijs2005/alumnihub/internal/server/repositories/repomanager"
)

// TokenPair bundles an access token and, for alumni, a refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// CredentialService owns the principals table: creation, login, password
// changes and token renewal.
type CredentialService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	issuer      *auth.Issuer
	bcryptCost  int
	logger      logging.Logger
}

func NewCredentialService(db *sql.DB, m repomanager.RepositoryManager, issuer *auth.Issuer, cfg *config.Config, logger logging.Logger) *CredentialService {
	return &CredentialService{
		db:          db,
		repomanager: m,
		issuer:      issuer,
		bcryptCost:  cfg.BcryptCost,
		logger:      logger,
	}
}

// Create stores a new principal with a bcrypt hash of password. The
// plaintext is not kept anywhere.
func (s *CredentialService) Create(ctx context.Context, kind models.Kind, userName, password string) (*models.Principal, error) {
	return s.create(ctx, s.db, kind, userName, password)
}

func (s *CredentialService) create(ctx context.Context, db dbx.DBTX, kind models.Kind, userName, password string) (*models.Principal, error) {
	userName = strings.TrimSpace(userName)
	if userName == "" {
		return nil, fmt.Errorf("%w: username is required", common.ErrorValidation)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	p, err := s.repomanager.Principals(db).Create(ctx, &models.Principal{
		Kind:         kind,
		UserName:     userName,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateUsername) {
			return nil, err
		}
		s.logger.Error(ctx, "create principal failed", "kind", kind, "error", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "principal created", "kind", kind, "id", p.ID)
	return p, nil
}

// VerifyPassword reports whether password matches the principal's stored hash.
func (s *CredentialService) VerifyPassword(p *models.Principal, password string) bool {
	return auth.VerifyPassword(p.PasswordHash, password)
}

// Login checks credentials. An unknown username yields common.ErrorNotFound,
// a wrong password common.ErrInvalidCredentials.
func (s *CredentialService) Login(ctx context.Context, kind models.Kind, userName, password string) (*TokenPair, *models.Principal, error) {
	p, err := s.repomanager.Principals(s.db).GetByUserName(ctx, kind, strings.TrimSpace(userName))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrorNotFound
		}
		s.logger.Error(ctx, "login lookup failed", "kind", kind, "error", err)
		return nil, nil, common.ErrorInternal
	}

	if !s.VerifyPassword(p, password) {
		s.logger.Warn(ctx, "login rejected", "kind", kind, "id", p.ID)
		return nil, nil, common.ErrInvalidCredentials
	}

	pair, err := s.IssueTokens(p)
	if err != nil {
		return nil, nil, err
	}
	return pair, p, nil
}

// IssueTokens mints an access token and, for alumni, a refresh token.
func (s *CredentialService) IssueTokens(p *models.Principal) (*TokenPair, error) {
	access, err := s.issuer.IssueAccessToken(p)
	if err != nil {
		return nil, common.ErrorInternal
	}

	pair := &TokenPair{AccessToken: access}
	if p.Kind == models.KindAlumni {
		if pair.RefreshToken, err = s.issuer.IssueRefreshToken(p); err != nil {
			return nil, common.ErrorInternal
		}
	}
	return pair, nil
}

// ChangePassword re-hashes after checking the current password.
func (s *CredentialService) ChangePassword(ctx context.Context, kind models.Kind, id, oldPassword, newPassword string) error {
	repo := s.repomanager.Principals(s.db)

	p, err := repo.GetByID(ctx, kind, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		s.logger.Error(ctx, "password change lookup failed", "kind", kind, "error", err)
		return common.ErrorInternal
	}

	if !s.VerifyPassword(p, oldPassword) {
		return common.ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}

	if err := repo.UpdatePassword(ctx, kind, id, hash); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		s.logger.Error(ctx, "password update failed", "kind", kind, "error", err)
		return common.ErrorInternal
	}

	s.logger.Info(ctx, "password changed", "kind", kind, "id", id)
	return nil
}

// RefreshAccessToken exchanges a refresh token for a new access token. The
// alumni must still exist.
func (s *CredentialService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	id, err := s.issuer.VerifyRefreshToken(refreshToken)
	if err != nil {
		return "", err
	}

	p, err := s.repomanager.Principals(s.db).GetByID(ctx, models.KindAlumni, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrInvalidToken
		}
		s.logger.Error(ctx, "refresh lookup failed", "error", err)
		return "", common.ErrorInternal
	}

	access, err := s.issuer.IssueAccessToken(p)
	if err != nil {
		return "", common.ErrorInternal
	}
	return access, nil
}
