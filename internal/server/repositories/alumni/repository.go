package alumni

import (
	"context"

	"github.com/dmitrijs2005/alumnihub/internal/server/models"
)

type Repository interface {
	CreateProfile(ctx context.Context, a *models.Alumni) error
	Get(ctx context.Context, id string) (*models.Alumni, error)
	List(ctx context.Context) ([]*models.Alumni, error)
	UpdateProfile(ctx context.Context, a *models.Alumni) error
}
