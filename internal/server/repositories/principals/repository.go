package principals

import (
	"context"

	"github.com/dmitrijs2005/alumnihub/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, p *models.Principal) (*models.Principal, error)
	GetByUserName(ctx context.Context, kind models.Kind, userName string) (*models.Principal, error)
	GetByID(ctx context.Context, kind models.Kind, id string) (*models.Principal, error)
	UpdatePassword(ctx context.Context, kind models.Kind, id string, hash []byte) error
	Delete(ctx context.Context, kind models.Kind, id string) error
}
