package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/alumnihub/internal/common"
	"github.com/dmitrijs2005/alumnihub/internal/dbx"
	"github.com/dmitrijs2005/alumnihub/internal/logging"
	"github.com/dmitrijs2005/alumnihub/internal/server/config"
	"github.com/dmitrijs2005/alumnihub/internal/server/models"
	"github.com/dmitrijs2005/alumnihub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/alumnihub/internal/server/storage"
	"golang.org/x/sync/errgroup"
)

const galleryFolder = "gallery"

// GalleryService manages the public image gallery.
type GalleryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       storage.ObjectStore
	concurrency int
	logger      logging.Logger
}

func NewGalleryService(db *sql.DB, m repomanager.RepositoryManager, store storage.ObjectStore, cfg *config.Config, logger logging.Logger) *GalleryService {
	return &GalleryService{
		db:          db,
		repomanager: m,
		store:       store,
		concurrency: max(cfg.GalleryUploadConcurrency, 1),
		logger:      logger,
	}
}

// Upload stores a batch of images. Either every image is hosted and recorded
// or none is: on any failure the objects already uploaded are deleted.
func (s *GalleryService) Upload(ctx context.Context, uploads []storage.Upload) ([]*models.GalleryImage, error) {
	if len(uploads) == 0 {
		return nil, fmt.Errorf("%w: at least one image is required", common.ErrorValidation)
	}

	objects := make([]*storage.Object, len(uploads))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, up := range uploads {
		g.Go(func() error {
			obj, err := s.store.Put(gctx, galleryFolder, up)
			if err != nil {
				return err
			}
			objects[i] = obj
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Error(ctx, "gallery upload failed", "error", err)
		s.discard(ctx, objects)
		return nil, common.ErrUpstream
	}

	images, err := dbx.WithTxValue(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) ([]*models.GalleryImage, error) {
		repo := s.repomanager.Gallery(tx)
		out := make([]*models.GalleryImage, 0, len(objects))
		for _, obj := range objects {
			img, err := repo.Create(ctx, &models.GalleryImage{URL: obj.URL, StorageKey: obj.Key})
			if err != nil {
				return nil, err
			}
			out = append(out, img)
		}
		return out, nil
	})
	if err != nil {
		s.logger.Error(ctx, "gallery insert failed", "error", err)
		s.discard(ctx, objects)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "gallery images added", "count", len(images))
	return images, nil
}

func (s *GalleryService) discard(ctx context.Context, objects []*storage.Object) {
	ctx = context.WithoutCancel(ctx)
	for _, obj := range objects {
		if obj == nil {
			continue
		}
		if err := s.store.Delete(ctx, obj.Key); err != nil {
			s.logger.Error(ctx, "orphaned object left behind", "key", obj.Key, "error", err)
		}
	}
}

func (s *GalleryService) List(ctx context.Context) ([]*models.GalleryImage, error) {
	images, err := s.repomanager.Gallery(s.db).List(ctx)
	if err != nil {
		s.logger.Error(ctx, "list gallery failed", "error", err)
		return nil, common.ErrorInternal
	}
	return images, nil
}

// Delete removes the record and the hosted object. The record deletion only
// commits once the object is gone.
func (s *GalleryService) Delete(ctx context.Context, id string) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Gallery(tx)

		img, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := repo.Delete(ctx, id); err != nil {
			return err
		}
		return s.store.Delete(ctx, img.StorageKey)
	})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			return common.ErrorNotFound
		case errors.Is(err, common.ErrUpstream):
			s.logger.Error(ctx, "gallery object delete failed, record kept", "id", id, "error", err)
			return common.ErrUpstream
		default:
			s.logger.Error(ctx, "delete gallery image failed", "id", id, "error", err)
			return common.ErrorInternal
		}
	}

	s.logger.Info(ctx, "gallery image deleted", "id", id)
	return nil
}
