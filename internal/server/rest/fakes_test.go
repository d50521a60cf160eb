package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/dmitrijs2005/alumnihub/internal/server/auth"
	"github.com/dmitrijs2005/alumnihub/internal/server/config"
	"github.com/dmitrijs2005/alumnihub/internal/server/models"
	"github.com/dmitrijs2005/alumnihub/internal/server/services"
	"github.com/dmitrijs2005/alumnihub/internal/server/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ---- fakes ----

type fakeCredentials struct {
	created   *models.Principal
	createErr error

	loginPair *services.TokenPair
	loginErr  error

	changeErr  error
	changedFor [2]string

	refreshOut string
	refreshErr error
}

func (f *fakeCredentials) Create(_ context.Context, kind models.Kind, userName, _ string) (*models.Principal, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = &models.Principal{ID: "adm-2", Kind: kind, UserName: userName}
	return f.created, nil
}

func (f *fakeCredentials) Login(context.Context, models.Kind, string, string) (*services.TokenPair, *models.Principal, error) {
	return f.loginPair, &models.Principal{}, f.loginErr
}

func (f *fakeCredentials) IssueTokens(p *models.Principal) (*services.TokenPair, error) {
	return &services.TokenPair{AccessToken: "access-" + p.ID}, nil
}

func (f *fakeCredentials) ChangePassword(_ context.Context, kind models.Kind, id, _, _ string) error {
	f.changedFor = [2]string{string(kind), id}
	return f.changeErr
}

func (f *fakeCredentials) RefreshAccessToken(context.Context, string) (string, error) {
	return f.refreshOut, f.refreshErr
}

type fakeAlumni struct {
	registered   *models.Alumni
	registerPw   string
	registerImg  []byte
	registerErr  error
	provisioned  *models.Alumni
	provisionImg bool

	getOut *models.Alumni
	getErr error
	gotID  string

	list []*models.Alumni

	patch     models.ProfilePatch
	updateErr error

	deleteErr error
	deletedID string
}

func (f *fakeAlumni) Register(_ context.Context, password string, profile *models.Alumni, image *storage.Upload) (*services.TokenPair, *models.Alumni, error) {
	f.registerPw = password
	f.registered = profile
	if image != nil {
		f.registerImg, _ = io.ReadAll(image.Body)
	}
	if f.registerErr != nil {
		return nil, nil, f.registerErr
	}
	return &services.TokenPair{AccessToken: "a", RefreshToken: "r"}, profile, nil
}

func (f *fakeAlumni) Provision(_ context.Context, profile *models.Alumni, image *storage.Upload) (*models.Alumni, error) {
	f.provisioned = profile
	f.provisionImg = image != nil
	profile.ID = "new-id"
	profile.Verified = true
	return profile, nil
}

func (f *fakeAlumni) Get(_ context.Context, id string) (*models.Alumni, error) {
	f.gotID = id
	return f.getOut, f.getErr
}

func (f *fakeAlumni) List(context.Context) ([]*models.Alumni, error) {
	return f.list, nil
}

func (f *fakeAlumni) UpdateProfile(_ context.Context, id string, patch models.ProfilePatch) (*models.Alumni, error) {
	f.patch = patch
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	a := &models.Alumni{Principal: models.Principal{ID: id}}
	patch.Apply(a)
	return a, nil
}

func (f *fakeAlumni) Delete(_ context.Context, id string) error {
	f.deletedID = id
	return f.deleteErr
}

type fakeGallery struct {
	uploaded  [][]byte
	names     []string
	uploadErr error
	list      []*models.GalleryImage
	deleteErr error
}

func (f *fakeGallery) Upload(_ context.Context, uploads []storage.Upload) ([]*models.GalleryImage, error) {
	out := make([]*models.GalleryImage, 0, len(uploads))
	for _, up := range uploads {
		b, _ := io.ReadAll(up.Body)
		f.uploaded = append(f.uploaded, b)
		f.names = append(f.names, up.Name)
		out = append(out, &models.GalleryImage{ID: up.Name, URL: "http://objects/" + up.Name})
	}
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return out, nil
}

func (f *fakeGallery) List(context.Context) ([]*models.GalleryImage, error) {
	return f.list, nil
}

func (f *fakeGallery) Delete(context.Context, string) error {
	return f.deleteErr
}

// ---- harness ----

type harness struct {
	t       *testing.T
	router  *gin.Engine
	issuer  *auth.Issuer
	creds   *fakeCredentials
	alumni  *fakeAlumni
	gallery *fakeGallery
	dir     string
	health  []HealthCheck
}

func newHarness(t *testing.T, selfRegistration bool) *harness {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		AccessTokenSecret:            "access",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenSecret:           "refresh",
		RefreshTokenValidityDuration: time.Hour,
		UploadDir:                    dir,
		MaxUploadSize:                1 << 20,
		AdminSelfRegistration:        selfRegistration,
	}

	h := &harness{
		t:       t,
		issuer:  auth.NewIssuer(cfg),
		creds:   &fakeCredentials{},
		alumni:  &fakeAlumni{},
		gallery: &fakeGallery{},
		dir:     dir,
	}
	handler := NewHandler(Deps{
		Credentials: h.creds,
		Alumni:      h.alumni,
		Gallery:     h.gallery,
		Tokens:      h.issuer,
		Health:      []HealthCheck{func(ctx context.Context) error { return h.healthErr(ctx) }},
	}, cfg)
	h.router = NewRouter(handler)
	return h
}

func (h *harness) healthErr(ctx context.Context) error {
	for _, c := range h.health {
		if err := c(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (h *harness) token(kind models.Kind, id string) string {
	h.t.Helper()
	tok, err := h.issuer.IssueAccessToken(&models.Principal{ID: id, Kind: kind, UserName: "u-" + id})
	require.NoError(h.t, err)
	return tok
}

func (h *harness) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func jsonRequest(method, path string, body any, token string) *http.Request {
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

type filePart struct {
	name    string
	content string
}

func multipartRequest(t *testing.T, path string, fields map[string]string, files []filePart, token string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		hdr := textproto.MIMEHeader{}
		hdr.Set("Content-Disposition", `form-data; name="image"; filename="`+f.name+`"`)
		hdr.Set("Content-Type", "image/png")
		part, err := mw.CreatePart(hdr)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
