// Package alumni stores alumni profile rows. The credentials of an alumni live
// in the principals table; reads join both.
package alumni

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/alumnihub/internal/common"
	"github.com/dmitrijs2005/alumnihub/internal/dbx"
	"github.com/dmitrijs2005/alumnihub/internal/server/models"
	"github.com/google/uuid"
)

const selectAlumni = `SELECT p.id, p.username, p.created_at, p.updated_at,
		a.name, a.father_name, a.profession, a.gender, a.email, a.roll, a.phone, a.dob,
		a.course, a.branch, a.year, a.linkedin, a.instagram, a.github, a.company, a.image, a.verified
		FROM principals p JOIN alumni_profiles a ON a.principal_id = p.id
		`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateProfile inserts the profile row for an already created principal.
func (r *PostgresRepository) CreateProfile(ctx context.Context, a *models.Alumni) error {
	query :=
		`INSERT INTO alumni_profiles (principal_id, name, father_name, profession, gender, email, roll, phone, dob,
		 course, branch, year, linkedin, instagram, github, company, image, verified)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		 `

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.Name, a.FatherName, a.Profession, a.Gender, a.Email, a.Roll, a.Phone, nullTime(a.DOB),
		a.Course, a.Branch, a.Year, a.LinkedIn, a.Instagram, a.GitHub, a.Company, a.Image, a.Verified)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Alumni, error) {
	if uuid.Validate(id) != nil {
		return nil, common.ErrorNotFound
	}

	row := r.db.QueryRowContext(ctx, selectAlumni+`WHERE p.kind = 'alumni' AND p.id = $1`, id)
	a, err := scanAlumni(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

// List returns every alumni, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]*models.Alumni, error) {
	rows, err := r.db.QueryContext(ctx, selectAlumni+`WHERE p.kind = 'alumni' ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Alumni, 0)
	for rows.Next() {
		a, err := scanAlumni(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

// UpdateProfile rewrites the editable profile columns and bumps the
// principal's updated_at, which is copied back into a. Credentials, image and
// verified are left alone.
func (r *PostgresRepository) UpdateProfile(ctx context.Context, a *models.Alumni) error {
	if uuid.Validate(a.ID) != nil {
		return common.ErrorNotFound
	}

	query :=
		`WITH touched AS (
			UPDATE principals SET updated_at = now() WHERE kind = 'alumni' AND id = $1 RETURNING id, updated_at
		 )
		 UPDATE alumni_profiles SET name = $2, father_name = $3, profession = $4, gender = $5, email = $6,
			phone = $7, dob = $8, course = $9, branch = $10, year = $11, linkedin = $12, instagram = $13,
			github = $14, company = $15
		 FROM touched WHERE alumni_profiles.principal_id = touched.id
		 RETURNING touched.updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		a.ID, a.Name, a.FatherName, a.Profession, a.Gender, a.Email,
		a.Phone, nullTime(a.DOB), a.Course, a.Branch, a.Year, a.LinkedIn, a.Instagram,
		a.GitHub, a.Company).Scan(&a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAlumni(s scanner) (*models.Alumni, error) {
	a := &models.Alumni{}
	var dob sql.NullTime
	err := s.Scan(&a.ID, &a.UserName, &a.CreatedAt, &a.UpdatedAt,
		&a.Name, &a.FatherName, &a.Profession, &a.Gender, &a.Email, &a.Roll, &a.Phone, &dob,
		&a.Course, &a.Branch, &a.Year, &a.LinkedIn, &a.Instagram, &a.GitHub, &a.Company, &a.Image, &a.Verified)
	if err != nil {
		return nil, err
	}
	a.Kind = models.KindAlumni
	if dob.Valid {
		a.DOB = &dob.Time
	}
	return a, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
