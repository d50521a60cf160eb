package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfilePatch_Apply(t *testing.T) {
	a := &Alumni{Name: "Old", Company: "Acme", Year: 2019}
	name := "New"
	year := 2020
	dob := time.Date(1999, 1, 2, 0, 0, 0, 0, time.UTC)

	ProfilePatch{Name: &name, Year: &year, DOB: &dob}.Apply(a)

	assert.Equal(t, "New", a.Name)
	assert.Equal(t, "Acme", a.Company, "nil fields stay unchanged")
	assert.Equal(t, 2020, a.Year)
	require.NotNil(t, a.DOB)
	assert.True(t, a.DOB.Equal(dob))
}

func TestAlumni_JSONHidesPasswordHash(t *testing.T) {
	a := Alumni{Principal: Principal{ID: "1", Kind: KindAlumni, UserName: "a1", PasswordHash: []byte("$2a$10$secret")}}

	b, err := json.Marshal(a)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "secret")
	assert.Contains(t, string(b), `"username":"a1"`)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("admin")
	require.NoError(t, err)
	assert.Equal(t, KindAdmin, k)

	_, err = ParseKind("root")
	assert.Error(t, err)
}
