package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/alumnihub/internal/common"
	"github.com/dmitrijs2005/alumnihub/internal/dbx"
	"github.com/dmitrijs2005/alumnihub/internal/logging"
	"github.com/dmitrijs2005/alumnihub/internal/server/models"
	"github.com/dmitrijs2005/alumnihub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/alumnihub/internal/server/storage"
)

const alumniImageFolder = "alumni"

// AlumniService manages alumni records: self-registration, admin
// provisioning, profile reads and edits, and deletion.
type AlumniService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	credentials *CredentialService
	store       storage.ObjectStore
	logger      logging.Logger
}

func NewAlumniService(db *sql.DB, m repomanager.RepositoryManager, credentials *CredentialService, store storage.ObjectStore, logger logging.Logger) *AlumniService {
	return &AlumniService{
		db:          db,
		repomanager: m,
		credentials: credentials,
		store:       store,
		logger:      logger,
	}
}

// Register creates a self-registered alumni and logs them in. The image is
// mandatory; if the record cannot be stored the uploaded image is removed.
func (s *AlumniService) Register(ctx context.Context, password string, profile *models.Alumni, image *storage.Upload) (*TokenPair, *models.Alumni, error) {
	if image == nil {
		return nil, nil, fmt.Errorf("%w: image is required", common.ErrorValidation)
	}
	profile.Verified = false

	a, err := s.create(ctx, password, profile, image)
	if err != nil {
		return nil, nil, err
	}

	pair, err := s.credentials.IssueTokens(&a.Principal)
	if err != nil {
		return nil, nil, err
	}
	return pair, a, nil
}

// ProvisionPassword is the initial password of an admin-provisioned alumni:
// branch followed by graduation year.
func ProvisionPassword(branch string, year int) string {
	return branch + strconv.Itoa(year)
}

// Provision creates a verified alumni on behalf of an admin. The username is
// the roll number and the password is ProvisionPassword(branch, year).
func (s *AlumniService) Provision(ctx context.Context, profile *models.Alumni, image *storage.Upload) (*models.Alumni, error) {
	if profile.Roll <= 0 {
		return nil, fmt.Errorf("%w: roll is required", common.ErrorValidation)
	}
	if profile.Branch == "" || profile.Year <= 0 {
		return nil, fmt.Errorf("%w: branch and year are required", common.ErrorValidation)
	}

	profile.UserName = strconv.FormatInt(profile.Roll, 10)
	profile.Verified = true

	return s.create(ctx, ProvisionPassword(profile.Branch, profile.Year), profile, image)
}

func (s *AlumniService) create(ctx context.Context, password string, profile *models.Alumni, image *storage.Upload) (*models.Alumni, error) {
	profile.Kind = models.KindAlumni
	profile.UserName = strings.TrimSpace(profile.UserName)
	if profile.UserName == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", common.ErrorValidation)
	}

	// Cheap early exit so a taken username does not cost an upload.
	if _, err := s.repomanager.Principals(s.db).GetByUserName(ctx, models.KindAlumni, profile.UserName); err == nil {
		return nil, common.ErrDuplicateUsername
	}

	var uploaded *storage.Object
	if image != nil {
		obj, err := s.store.Put(ctx, alumniImageFolder, *image)
		if err != nil {
			s.logger.Error(ctx, "alumni image upload failed", "error", err)
			return nil, common.ErrUpstream
		}
		uploaded = obj
		profile.Image = obj.URL
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		p, err := s.credentials.create(ctx, tx, models.KindAlumni, profile.UserName, password)
		if err != nil {
			return err
		}
		profile.Principal = *p
		return s.repomanager.Alumni(tx).CreateProfile(ctx, profile)
	})
	if err != nil {
		if uploaded != nil {
			s.discard(ctx, uploaded.Key)
		}
		if errors.Is(err, common.ErrDuplicateUsername) || errors.Is(err, common.ErrorValidation) || errors.Is(err, common.ErrorInternal) {
			return nil, err
		}
		s.logger.Error(ctx, "create alumni failed", "error", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "alumni created", "id", profile.ID, "verified", profile.Verified)
	return profile, nil
}

// discard removes an object whose record was never stored.
func (s *AlumniService) discard(ctx context.Context, key string) {
	if err := s.store.Delete(context.WithoutCancel(ctx), key); err != nil {
		s.logger.Error(ctx, "orphaned object left behind", "key", key, "error", err)
	}
}

func (s *AlumniService) Get(ctx context.Context, id string) (*models.Alumni, error) {
	a, err := s.repomanager.Alumni(s.db).Get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.logger.Error(ctx, "get alumni failed", "error", err)
		return nil, common.ErrorInternal
	}
	return a, nil
}

func (s *AlumniService) List(ctx context.Context) ([]*models.Alumni, error) {
	list, err := s.repomanager.Alumni(s.db).List(ctx)
	if err != nil {
		s.logger.Error(ctx, "list alumni failed", "error", err)
		return nil, common.ErrorInternal
	}
	return list, nil
}

// UpdateProfile applies patch to the alumni's profile. Credentials are never
// rewritten here, so the stored hash stays as it was.
func (s *AlumniService) UpdateProfile(ctx context.Context, id string, patch models.ProfilePatch) (*models.Alumni, error) {
	return dbx.WithTxValue(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (*models.Alumni, error) {
		repo := s.repomanager.Alumni(tx)

		a, err := repo.Get(ctx, id)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil, common.ErrorNotFound
			}
			s.logger.Error(ctx, "profile lookup failed", "error", err)
			return nil, common.ErrorInternal
		}

		patch.Apply(a)

		if err := repo.UpdateProfile(ctx, a); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil, common.ErrorNotFound
			}
			s.logger.Error(ctx, "profile update failed", "error", err)
			return nil, common.ErrorInternal
		}
		return a, nil
	})
}

// Delete removes the alumni and their hosted image. The record deletion only
// commits once the image is gone. If that commit then fails, the record
// survives pointing at a deleted object; this is logged with the key so the
// image column can be cleared by hand.
func (s *AlumniService) Delete(ctx context.Context, id string) error {
	var removedKey string
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		a, err := s.repomanager.Alumni(tx).Get(ctx, id)
		if err != nil {
			return err
		}

		if err := s.repomanager.Principals(tx).Delete(ctx, models.KindAlumni, id); err != nil {
			return err
		}

		if a.Image == "" {
			return nil
		}
		key, err := s.store.KeyFromURL(a.Image)
		if err != nil {
			s.logger.Warn(ctx, "alumni image is not hosted here, leaving it", "id", id, "image", a.Image)
			return nil
		}
		if err := s.store.Delete(ctx, key); err != nil {
			return err
		}
		removedKey = key
		return nil
	})
	if err != nil {
		switch {
		case removedKey != "":
			s.logger.Error(ctx, "alumni image deleted but record commit failed, record now points at a missing image",
				"id", id, "key", removedKey, "error", err)
			return common.ErrorInternal
		case errors.Is(err, common.ErrorNotFound):
			return common.ErrorNotFound
		case errors.Is(err, common.ErrUpstream):
			s.logger.Error(ctx, "alumni image delete failed, record kept", "id", id, "error", err)
			return common.ErrUpstream
		default:
			s.logger.Error(ctx, "delete alumni failed", "id", id, "error", err)
			return common.ErrorInternal
		}
	}

	s.logger.Info(ctx, "alumni deleted", "id", id)
	return nil
}
