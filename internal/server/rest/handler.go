// Package rest exposes the portal over HTTP/JSON using gin.
package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/alumnihub/internal/common"
	"github.com/dmitrijs2005/alumnihub/internal/logging"
	"github.com/dmitrijs2005/alumnihub/internal/server/auth"
	"github.com/dmitrijs2005/alumnihub/internal/server/config"
	"github.com/dmitrijs2005/alumnihub/internal/server/models"
	"github.com/dmitrijs2005/alumnihub/internal/server/services"
	"github.com/dmitrijs2005/alumnihub/internal/server/storage"
	"github.com/gin-gonic/gin"
)

type CredentialService interface {
	Create(ctx context.Context, kind models.Kind, userName, password string) (*models.Principal, error)
	Login(ctx context.Context, kind models.Kind, userName, password string) (*services.TokenPair, *models.Principal, error)
	IssueTokens(p *models.Principal) (*services.TokenPair, error)
	ChangePassword(ctx context.Context, kind models.Kind, id, oldPassword, newPassword string) error
	RefreshAccessToken(ctx context.Context, refreshToken string) (string, error)
}

type AlumniService interface {
	Register(ctx context.Context, password string, profile *models.Alumni, image *storage.Upload) (*services.TokenPair, *models.Alumni, error)
	Provision(ctx context.Context, profile *models.Alumni, image *storage.Upload) (*models.Alumni, error)
	Get(ctx context.Context, id string) (*models.Alumni, error)
	List(ctx context.Context) ([]*models.Alumni, error)
	UpdateProfile(ctx context.Context, id string, patch models.ProfilePatch) (*models.Alumni, error)
	Delete(ctx context.Context, id string) error
}

type GalleryService interface {
	Upload(ctx context.Context, uploads []storage.Upload) ([]*models.GalleryImage, error)
	List(ctx context.Context) ([]*models.GalleryImage, error)
	Delete(ctx context.Context, id string) error
}

type TokenVerifier interface {
	VerifyAccessToken(token string) (*auth.Identity, error)
}

// HealthCheck reports whether one dependency is usable.
type HealthCheck func(ctx context.Context) error

// Deps are the collaborators the handlers call into.
type Deps struct {
	Credentials CredentialService
	Alumni      AlumniService
	Gallery     GalleryService
	Tokens      TokenVerifier
	Health      []HealthCheck
	Logger      logging.Logger
}

type Handler struct {
	Deps
	uploadDir             string
	maxUploadSize         int64
	adminSelfRegistration bool
}

func NewHandler(d Deps, cfg *config.Config) *Handler {
	if d.Logger == nil {
		d.Logger = logging.Nop{}
	}
	return &Handler{
		Deps:                  d,
		uploadDir:             cfg.UploadDir,
		maxUploadSize:         cfg.MaxUploadSize,
		adminSelfRegistration: cfg.AdminSelfRegistration,
	}
}

// statusFor maps service errors onto a status code and a client-safe message.
// Anything unknown is a 500.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrDuplicateUsername):
		return http.StatusConflict, "user already exists"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusForbidden, "incorrect password"
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, "token expired"
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, common.ErrUpstream):
		return http.StatusBadGateway, "upstream failure"
	}
	return http.StatusInternalServerError, "internal error"
}

// writeError answers with the status for err. The cause of a 500 stays in
// the server log.
func (h *Handler) writeError(c *gin.Context, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.Logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}

// identity returns what the auth gate attached to the request.
func identity(c *gin.Context) *auth.Identity {
	return auth.IdentityFromContext(c.Request.Context())
}
