// Package models defines server-side data models persisted in the database.
package models

import (
	"fmt"
	"time"
)

// Kind tags which principal table semantics apply to a record.
type Kind string

const (
	KindAlumni Kind = "alumni"
	KindAdmin  Kind = "admin"
)

// ParseKind validates a kind read from storage or a token.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindAlumni, KindAdmin:
		return k, nil
	default:
		return "", fmt.Errorf("unknown principal kind %q", s)
	}
}

// Principal is an authenticatable identity. UserName is unique per Kind.
// PasswordHash is never serialized.
type Principal struct {
	ID           string    `json:"_id"`
	Kind         Kind      `json:"kind"`
	UserName     string    `json:"username"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
