package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/alumnihub/internal/common"
	"github.com/dmitrijs2005/alumnihub/internal/server/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uploads(n int) []storage.Upload {
	out := make([]storage.Upload, n)
	for i := range out {
		out[i] = *upload(fmt.Sprintf("img%d.png", i))
	}
	return out
}

func TestGalleryUpload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	images, err := f.gallery.Upload(ctx, uploads(5))
	require.NoError(t, err)
	require.Len(t, images, 5)
	assert.Equal(t, 5, f.store.count())
	for _, img := range images {
		assert.NotEmpty(t, img.ID)
		assert.Contains(t, img.URL, img.StorageKey)
	}

	list, err := f.gallery.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 5)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestGalleryUpload_Empty(t *testing.T) {
	f := newFixture(t)
	_, err := f.gallery.Upload(context.Background(), nil)
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestGalleryUpload_OneFailureDiscardsBatch(t *testing.T) {
	f := newFixture(t)
	f.store.failPut["img3.png"] = true

	_, err := f.gallery.Upload(context.Background(), uploads(6))
	assert.ErrorIs(t, err, common.ErrUpstream)
	assert.Zero(t, f.store.count(), "already uploaded objects are removed")
	assert.Zero(t, f.repos.imageCount())
	require.NoError(t, f.mock.ExpectationsWereMet(), "no transaction for a failed upload")
}

func TestGalleryUpload_InsertFailureDiscardsBatch(t *testing.T) {
	f := newFixture(t)
	f.repos.galleryCreateErr = errors.New("db error: boom")

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.gallery.Upload(context.Background(), uploads(3))
	assert.ErrorIs(t, err, common.ErrorInternal)
	assert.Zero(t, f.store.count())
	assert.Len(t, f.store.deleted, 3)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestGalleryDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	images, err := f.gallery.Upload(ctx, uploads(2))
	require.NoError(t, err)

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	require.NoError(t, f.gallery.Delete(ctx, images[0].ID))
	assert.Equal(t, 1, f.store.count())
	assert.Equal(t, 1, f.repos.imageCount())

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
	assert.ErrorIs(t, f.gallery.Delete(ctx, images[0].ID), common.ErrorNotFound)

	f.store.deleteErr = common.ErrUpstream
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
	assert.ErrorIs(t, f.gallery.Delete(ctx, images[1].ID), common.ErrUpstream)

	require.NoError(t, f.mock.ExpectationsWereMet())
}
