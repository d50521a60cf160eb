package models

import "time"

// Alumni is a principal with a directory profile. Verified is only set by
// admin provisioning.
type Alumni struct {
	Principal

	Name       string     `json:"name"`
	FatherName string     `json:"fatherName"`
	Profession string     `json:"profession"`
	Gender     string     `json:"gender"`
	Email      string     `json:"email"`
	Roll       int64      `json:"roll"`
	Phone      string     `json:"phone"`
	DOB        *time.Time `json:"dob,omitempty"`
	Course     string     `json:"course"`
	Branch     string     `json:"branch"`
	Year       int        `json:"year"`
	LinkedIn   string     `json:"linkedin"`
	Instagram  string     `json:"instagram"`
	GitHub     string     `json:"github"`
	Company    string     `json:"company"`
	Image      string     `json:"image"`
	Verified   bool       `json:"verified"`
}

// ProfilePatch carries the editable profile fields; nil means "unchanged".
// Username, password, image and verification are not editable here.
type ProfilePatch struct {
	Name       *string    `json:"name"`
	FatherName *string    `json:"fatherName"`
	Profession *string    `json:"profession"`
	Gender     *string    `json:"gender"`
	Email      *string    `json:"email"`
	Phone      *string    `json:"phone"`
	DOB        *time.Time `json:"dob"`
	Course     *string    `json:"course"`
	Branch     *string    `json:"branch"`
	Year       *int       `json:"year"`
	LinkedIn   *string    `json:"linkedin"`
	Instagram  *string    `json:"instagram"`
	GitHub     *string    `json:"github"`
	Company    *string    `json:"company"`
}

// Apply copies every non-nil field of p onto a.
func (p ProfilePatch) Apply(a *Alumni) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&a.Name, p.Name)
	set(&a.FatherName, p.FatherName)
	set(&a.Profession, p.Profession)
	set(&a.Gender, p.Gender)
	set(&a.Email, p.Email)
	set(&a.Phone, p.Phone)
	set(&a.Course, p.Course)
	set(&a.Branch, p.Branch)
	set(&a.LinkedIn, p.LinkedIn)
	set(&a.Instagram, p.Instagram)
	set(&a.GitHub, p.GitHub)
	set(&a.Company, p.Company)
	if p.DOB != nil {
		dob := *p.DOB
		a.DOB = &dob
	}
	if p.Year != nil {
		a.Year = *p.Year
	}
}
