package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/alumnihub/internal/common"
	"github.com/dmitrijs2005/alumnihub/internal/dbx"
	"github.com/dmitrijs2005/alumnihub/internal/logging"
	"github.com/dmitrijs2005/alumnihub/internal/server/auth"
	"github.com/dmitrijs2005/alumnihub/internal/server/config"
	"github.com/dmitrijs2005/alumnihub/internal/server/models"
	"github.com/dmitrijs2005/alumnihub/internal/server/repositories/alumni"
	"github.com/dmitrijs2005/alumnihub/internal/server/repositories/gallery"
	"github.com/dmitrijs2005/alumnihub/internal/server/repositories/principals"
	"github.com/dmitrijs2005/alumnihub/internal/server/storage"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func testConfig() *config.Config {
	return &config.Config{
		AccessTokenSecret:            "access",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenSecret:           "refresh",
		RefreshTokenValidityDuration: 24 * time.Hour,
		BcryptCost:                   bcrypt.MinCost,
		GalleryUploadConcurrency:     2,
	}
}

type fixture struct {
	db      *sql.DB
	mock    sqlmock.Sqlmock
	repos   *memRepos
	store   *memStore
	issuer  *auth.Issuer
	creds   *CredentialService
	alumni  *AlumniService
	gallery *GalleryService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, mock := newSQLMockDB(t)
	cfg := testConfig()

	f := &fixture{db: db, mock: mock, repos: newMemRepos(), store: newMemStore(), issuer: auth.NewIssuer(cfg)}
	f.creds = NewCredentialService(db, f.repos, f.issuer, cfg, logging.Nop{})
	f.alumni = NewAlumniService(db, f.repos, f.creds, f.store, logging.Nop{})
	f.gallery = NewGalleryService(db, f.repos, f.store, cfg, logging.Nop{})
	return f
}

func upload(name string) *storage.Upload {
	return &storage.Upload{Name: name, ContentType: "image/png", Body: strings.NewReader("png")}
}

// --- in-memory repositories ---

type memRepos struct {
	mu         sync.Mutex
	principals map[string]*models.Principal
	profiles   map[string]*models.Alumni
	images     map[string]*models.GalleryImage

	createProfileErr error
	galleryCreateErr error
	getErr           error
}

func newMemRepos() *memRepos {
	return &memRepos{
		principals: map[string]*models.Principal{},
		profiles:   map[string]*models.Alumni{},
		images:     map[string]*models.GalleryImage{},
	}
}

func (m *memRepos) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *memRepos) Principals(dbx.DBTX) principals.Repository    { return memPrincipals{m} }
func (m *memRepos) Alumni(dbx.DBTX) alumni.Repository            { return memAlumni{m} }
func (m *memRepos) Gallery(dbx.DBTX) gallery.Repository          { return memGallery{m} }

func (m *memRepos) lock() func() {
	m.mu.Lock()
	return m.mu.Unlock
}

func (m *memRepos) principal(id string) *models.Principal {
	defer m.lock()()
	return m.principals[id]
}

func (m *memRepos) profileCount() int {
	defer m.lock()()
	return len(m.profiles)
}

func (m *memRepos) imageCount() int {
	defer m.lock()()
	return len(m.images)
}

func (m *memRepos) findByName(kind models.Kind, name string) *models.Principal {
	for _, p := range m.principals {
		if p.Kind == kind && p.UserName == name {
			return p
		}
	}
	return nil
}

type memPrincipals struct{ m *memRepos }

func (r memPrincipals) Create(_ context.Context, p *models.Principal) (*models.Principal, error) {
	defer r.m.lock()()
	if r.m.findByName(p.Kind, p.UserName) != nil {
		return nil, common.ErrDuplicateUsername
	}
	cp := *p
	cp.ID = uuid.NewString()
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	r.m.principals[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r memPrincipals) GetByUserName(_ context.Context, kind models.Kind, name string) (*models.Principal, error) {
	defer r.m.lock()()
	if r.m.getErr != nil {
		return nil, r.m.getErr
	}
	p := r.m.findByName(kind, name)
	if p == nil {
		return nil, common.ErrorNotFound
	}
	cp := *p
	return &cp, nil
}

func (r memPrincipals) GetByID(_ context.Context, kind models.Kind, id string) (*models.Principal, error) {
	defer r.m.lock()()
	p, ok := r.m.principals[id]
	if !ok || p.Kind != kind {
		return nil, common.ErrorNotFound
	}
	cp := *p
	return &cp, nil
}

func (r memPrincipals) UpdatePassword(_ context.Context, kind models.Kind, id string, hash []byte) error {
	defer r.m.lock()()
	p, ok := r.m.principals[id]
	if !ok || p.Kind != kind {
		return common.ErrorNotFound
	}
	p.PasswordHash = hash
	return nil
}

func (r memPrincipals) Delete(_ context.Context, kind models.Kind, id string) error {
	defer r.m.lock()()
	p, ok := r.m.principals[id]
	if !ok || p.Kind != kind {
		return common.ErrorNotFound
	}
	delete(r.m.principals, id)
	delete(r.m.profiles, id)
	return nil
}

type memAlumni struct{ m *memRepos }

func (r memAlumni) CreateProfile(_ context.Context, a *models.Alumni) error {
	defer r.m.lock()()
	if r.m.createProfileErr != nil {
		return r.m.createProfileErr
	}
	cp := *a
	r.m.profiles[a.ID] = &cp
	return nil
}

func (r memAlumni) Get(_ context.Context, id string) (*models.Alumni, error) {
	defer r.m.lock()()
	a, ok := r.m.profiles[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *a
	cp.Principal = *r.m.principals[id]
	return &cp, nil
}

func (r memAlumni) List(context.Context) ([]*models.Alumni, error) {
	defer r.m.lock()()
	out := make([]*models.Alumni, 0, len(r.m.profiles))
	for _, a := range r.m.profiles {
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (r memAlumni) UpdateProfile(_ context.Context, a *models.Alumni) error {
	defer r.m.lock()()
	stored, ok := r.m.profiles[a.ID]
	if !ok {
		return common.ErrorNotFound
	}
	// mirror the SQL statement: credentials, image and verified are not written,
	// the principal's updated_at moves forward and is handed back
	p := r.m.principals[a.ID]
	now := time.Now()
	if !now.After(p.UpdatedAt) {
		now = p.UpdatedAt.Add(time.Microsecond)
	}
	p.UpdatedAt = now
	a.UpdatedAt = now

	image, verified := stored.Image, stored.Verified
	cp := *a
	cp.Image, cp.Verified = image, verified
	cp.Principal = *p
	r.m.profiles[a.ID] = &cp
	return nil
}

type memGallery struct{ m *memRepos }

func (r memGallery) Create(_ context.Context, img *models.GalleryImage) (*models.GalleryImage, error) {
	defer r.m.lock()()
	if r.m.galleryCreateErr != nil {
		return nil, r.m.galleryCreateErr
	}
	cp := *img
	cp.ID = uuid.NewString()
	cp.CreatedAt = time.Now()
	r.m.images[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r memGallery) List(context.Context) ([]*models.GalleryImage, error) {
	defer r.m.lock()()
	out := make([]*models.GalleryImage, 0, len(r.m.images))
	for _, img := range r.m.images {
		cp := *img
		out = append(out, &cp)
	}
	return out, nil
}

func (r memGallery) Get(_ context.Context, id string) (*models.GalleryImage, error) {
	defer r.m.lock()()
	img, ok := r.m.images[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *img
	return &cp, nil
}

func (r memGallery) Delete(_ context.Context, id string) error {
	defer r.m.lock()()
	if _, ok := r.m.images[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.m.images, id)
	return nil
}

// --- in-memory object host ---

type memStore struct {
	mu        sync.Mutex
	objects   map[string]string
	failPut   map[string]bool
	deleteErr error
	deleted   []string
}

func newMemStore() *memStore {
	return &memStore{objects: map[string]string{}, failPut: map[string]bool{}}
}

func (s *memStore) Put(_ context.Context, folder string, up storage.Upload) (*storage.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failPut[up.Name] {
		return nil, fmt.Errorf("%w: put %s", common.ErrUpstream, up.Name)
	}
	key := storage.RandomKey(folder, up.Name)
	url := "http://objects/bucket/" + key
	s.objects[key] = url
	return &storage.Object{URL: url, Key: key}, nil
}

func (s *memStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *memStore) KeyFromURL(url string) (string, error) {
	key, ok := strings.CutPrefix(url, "http://objects/bucket/")
	if !ok {
		return "", common.ErrorValidation
	}
	return key, nil
}

func (s *memStore) Ping(context.Context) error { return nil }

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// recordingLogger keeps error-level messages for assertions.
type recordingLogger struct {
	logging.Nop
	mu     sync.Mutex
	errors []string
}

func (l *recordingLogger) Error(_ context.Context, msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}

func (l *recordingLogger) With(...any) logging.Logger { return l }

func (l *recordingLogger) has(fragment string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.errors {
		if strings.Contains(m, fragment) {
			return true
		}
	}
	return false
}
