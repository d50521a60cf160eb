// Package auth implements password hashing and bearer-token issuance and
// verification for alumni and admin principals.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/alumnihub/internal/common"
	"github.com/dmitrijs2005/alumnihub/internal/server/config"
	"github.com/dmitrijs2005/alumnihub/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

const (
	audienceAccess  = "access"
	audienceRefresh = "refresh"
)

// AccessClaims identify a principal for the lifetime of an access token.
type AccessClaims struct {
	jwt.RegisteredClaims
	UserID   string `json:"uid"`
	UserName string `json:"username"`
	Kind     string `json:"kind"`
}

// RefreshClaims only carry the alumni id.
type RefreshClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
}

// Issuer signs and verifies both token kinds. Secrets and lifetimes come from
// the process configuration and never change per request.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewIssuer(cfg *config.Config) *Issuer {
	return &Issuer{
		accessSecret:  []byte(cfg.AccessTokenSecret),
		refreshSecret: []byte(cfg.RefreshTokenSecret),
		accessTTL:     cfg.AccessTokenValidityDuration,
		refreshTTL:    cfg.RefreshTokenValidityDuration,
		now:           time.Now,
	}
}

func (i *Issuer) registered(subject, audience string, ttl time.Duration) jwt.RegisteredClaims {
	now := i.now()
	return jwt.RegisteredClaims{
		Subject:   subject,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

// IssueAccessToken mints an access token for any principal kind.
func (i *Issuer) IssueAccessToken(p *models.Principal) (string, error) {
	claims := AccessClaims{
		RegisteredClaims: i.registered(p.ID, audienceAccess, i.accessTTL),
		UserID:           p.ID,
		UserName:         p.UserName,
		Kind:             string(p.Kind),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.accessSecret)
}

// IssueRefreshToken mints a refresh token. Only alumni get one.
func (i *Issuer) IssueRefreshToken(p *models.Principal) (string, error) {
	if p.Kind != models.KindAlumni {
		return "", common.ErrInvalidKind
	}
	claims := RefreshClaims{
		RegisteredClaims: i.registered(p.ID, audienceRefresh, i.refreshTTL),
		UserID:           p.ID,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.refreshSecret)
}

// VerifyAccessToken checks signature, expiry and audience and returns the
// identity. Expired tokens yield common.ErrTokenExpired, everything else
// common.ErrInvalidToken.
func (i *Issuer) VerifyAccessToken(token string) (*Identity, error) {
	claims := &AccessClaims{}
	if err := i.parse(token, claims, i.accessSecret, audienceAccess); err != nil {
		return nil, err
	}

	kind, err := models.ParseKind(claims.Kind)
	if err != nil || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}

	return &Identity{ID: claims.UserID, UserName: claims.UserName, Kind: kind}, nil
}

// VerifyRefreshToken returns the alumni id a refresh token was issued for.
func (i *Issuer) VerifyRefreshToken(token string) (string, error) {
	claims := &RefreshClaims{}
	if err := i.parse(token, claims, i.refreshSecret, audienceRefresh); err != nil {
		return "", err
	}
	if claims.UserID == "" {
		return "", common.ErrInvalidToken
	}
	return claims.UserID, nil
}

func (i *Issuer) parse(token string, claims jwt.Claims, secret []byte, audience string) error {
	if token == "" {
		return common.ErrInvalidToken
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)

	t, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return common.ErrTokenExpired
		}
		return common.ErrInvalidToken
	}
	if !t.Valid {
		return common.ErrInvalidToken
	}
	return nil
}
