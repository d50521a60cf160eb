// Package principals stores login credentials for both principal kinds.
package principals

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/alumnihub/internal/common"
	"github.com/dmitrijs2005/alumnihub/internal/dbx"
	"github.com/dmitrijs2005/alumnihub/internal/server/models"
	"github.com/google/uuid"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts p and fills ID and timestamps. A taken username within the
// same kind yields common.ErrDuplicateUsername.
func (r *PostgresRepository) Create(ctx context.Context, p *models.Principal) (*models.Principal, error) {
	query :=
		`INSERT INTO principals (kind, username, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query, string(p.Kind), p.UserName, p.PasswordHash).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrDuplicateUsername
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return p, nil
}

func (r *PostgresRepository) GetByUserName(ctx context.Context, kind models.Kind, userName string) (*models.Principal, error) {
	query :=
		`SELECT id, kind, username, password_hash, created_at, updated_at FROM principals
		 WHERE kind = $1 AND username = $2
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, string(kind), userName))
}

func (r *PostgresRepository) GetByID(ctx context.Context, kind models.Kind, id string) (*models.Principal, error) {
	if uuid.Validate(id) != nil {
		return nil, common.ErrorNotFound
	}

	query :=
		`SELECT id, kind, username, password_hash, created_at, updated_at FROM principals
		 WHERE kind = $1 AND id = $2
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, string(kind), id))
}

// UpdatePassword replaces the stored hash. It is the only statement that
// writes password_hash after creation.
func (r *PostgresRepository) UpdatePassword(ctx context.Context, kind models.Kind, id string, hash []byte) error {
	if uuid.Validate(id) != nil {
		return common.ErrorNotFound
	}

	query :=
		`UPDATE principals SET password_hash = $1, updated_at = now()
		 WHERE kind = $2 AND id = $3
		 `

	res, err := r.db.ExecContext(ctx, query, hash, string(kind), id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

// Delete removes the principal; the profile row goes with it via ON DELETE CASCADE.
func (r *PostgresRepository) Delete(ctx context.Context, kind models.Kind, id string) error {
	if uuid.Validate(id) != nil {
		return common.ErrorNotFound
	}

	query := `DELETE FROM principals WHERE kind = $1 AND id = $2`

	res, err := r.db.ExecContext(ctx, query, string(kind), id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Principal, error) {
	p := &models.Principal{}
	var kind string
	err := row.Scan(&p.ID, &kind, &p.UserName, &p.PasswordHash, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if p.Kind, err = models.ParseKind(kind); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
