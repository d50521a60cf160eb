package gallery

import (
	"context"

	"github.com/dmitrijs2005/alumnihub/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, img *models.GalleryImage) (*models.GalleryImage, error)
	List(ctx context.Context) ([]*models.GalleryImage, error)
	Get(ctx context.Context, id string) (*models.GalleryImage, error)
	Delete(ctx context.Context, id string) error
}
