package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/alumnihub/internal/dbx"
	"github.com/dmitrijs2005/alumnihub/internal/server/repositories/alumni"
	"github.com/dmitrijs2005/alumnihub/internal/server/repositories/gallery"
	"github.com/dmitrijs2005/alumnihub/internal/server/repositories/principals"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Principals(db dbx.DBTX) principals.Repository
	Alumni(db dbx.DBTX) alumni.Repository
	Gallery(db dbx.DBTX) gallery.Repository
}
