package rest

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/alumnihub/internal/common"
	"github.com/dmitrijs2005/alumnihub/internal/server/models"
)

const dateLayout = "2006-01-02"

type credentialsRequest struct {
	UserName string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type passwordChangeRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// alumniForm is the multipart body of registration and provisioning. The
// provisioning form historically names the father field "father".
type alumniForm struct {
	UserName   string `form:"username"`
	Password   string `form:"password"`
	Name       string `form:"name"`
	FatherName string `form:"fatherName"`
	Father     string `form:"father"`
	Profession string `form:"profession"`
	Gender     string `form:"gender"`
	Email      string `form:"email"`
	Roll       int64  `form:"roll"`
	Phone      string `form:"phone"`
	DOB        string `form:"dob"`
	Course     string `form:"course"`
	Branch     string `form:"branch"`
	Year       int    `form:"year"`
	LinkedIn   string `form:"linkedin"`
	Instagram  string `form:"instagram"`
	GitHub     string `form:"github"`
	Company    string `form:"company"`
}

func (f *alumniForm) toModel() (*models.Alumni, error) {
	dob, err := parseDate(f.DOB)
	if err != nil {
		return nil, err
	}

	father := f.FatherName
	if father == "" {
		father = f.Father
	}

	return &models.Alumni{
		Principal:  models.Principal{UserName: f.UserName},
		Name:       f.Name,
		FatherName: father,
		Profession: f.Profession,
		Gender:     f.Gender,
		Email:      f.Email,
		Roll:       f.Roll,
		Phone:      f.Phone,
		DOB:        dob,
		Course:     f.Course,
		Branch:     f.Branch,
		Year:       f.Year,
		LinkedIn:   f.LinkedIn,
		Instagram:  f.Instagram,
		GitHub:     f.GitHub,
		Company:    f.Company,
	}, nil
}

// profileEditRequest wraps the edited fields in "formData".
type profileEditRequest struct {
	FormData profileEditForm `json:"formData"`
}

type profileEditForm struct {
	Name       *string `json:"name"`
	FatherName *string `json:"fatherName"`
	Profession *string `json:"profession"`
	Gender     *string `json:"gender"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
	DOB        *string `json:"dob"`
	Course     *string `json:"course"`
	Branch     *string `json:"branch"`
	Year       *int    `json:"year"`
	LinkedIn   *string `json:"linkedin"`
	Instagram  *string `json:"instagram"`
	GitHub     *string `json:"github"`
	Company    *string `json:"company"`
}

func (f profileEditForm) toPatch() (models.ProfilePatch, error) {
	p := models.ProfilePatch{
		Name:       f.Name,
		FatherName: f.FatherName,
		Profession: f.Profession,
		Gender:     f.Gender,
		Email:      f.Email,
		Phone:      f.Phone,
		Course:     f.Course,
		Branch:     f.Branch,
		Year:       f.Year,
		LinkedIn:   f.LinkedIn,
		Instagram:  f.Instagram,
		GitHub:     f.GitHub,
		Company:    f.Company,
	}
	if f.DOB != nil {
		dob, err := parseDate(*f.DOB)
		if err != nil {
			return p, err
		}
		p.DOB = dob
	}
	return p, nil
}

// parseDate accepts a plain date or a full RFC 3339 timestamp. Empty means unset.
func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{dateLayout, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: dob must be YYYY-MM-DD", common.ErrorValidation)
}
