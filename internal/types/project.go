// Package types provides the record definitions stored and served by the admin API.
//
//nolint:revive // types is a standard Go package name pattern
package types

// ProjectFile is an attachment listed on a project page.
type ProjectFile struct {
	Name string `json:"name" validate:"min=1,max=200"`
	Type string `json:"type" validate:"min=1,max=100"`
	Size string `json:"size" validate:"min=1,max=40"`
	URL  string `json:"url" validate:"min=1,max=500"`
}

// ProjectPassport is the summary card shown beside a project.
type ProjectPassport struct {
	Period     string `json:"period" validate:"min=1,max=200"`
	Status     string `json:"status" validate:"min=1,max=200"`
	Customer   string `json:"customer" validate:"min=1,max=300"`
	Contractor string `json:"contractor" validate:"min=1,max=300"`
	INN        string `json:"inn" validate:"min=1,max=24"`
	Location   string `json:"location" validate:"min=1,max=260"`
	ObjectType string `json:"objectType" validate:"min=1,max=180"`
	WorkScope  string `json:"workScope" validate:"min=1,max=280"`
}

// Project is a portfolio entry. ID and Slug are unique across the collection.
type Project struct {
	ID                   string          `json:"id" validate:"recordid"`
	Slug                 string          `json:"slug" validate:"slug"`
	Year                 int             `json:"year" validate:"min=2000,max=2100"`
	Title                string          `json:"title" validate:"min=3,max=300"`
	ShortTitle           string          `json:"shortTitle" validate:"min=3,max=200"`
	Excerpt              string          `json:"excerpt" validate:"min=3,max=1500"`
	HeroImage            string          `json:"heroImage" validate:"min=1,max=500"`
	Gallery              []string        `json:"gallery" validate:"required,max=40,dive,min=1,max=500"`
	Region               string          `json:"region" validate:"min=1,max=160"`
	ObjectType           string          `json:"objectType" validate:"min=1,max=160"`
	WorkTypes            []string        `json:"workTypes" validate:"required,max=20,dive,min=1,max=160"`
	Passport             ProjectPassport `json:"passport"`
	Tasks                []string        `json:"tasks" validate:"required,max=80,dive,min=1,max=2000"`
	Solutions            []string        `json:"solutions" validate:"required,max=80,dive,min=1,max=2000"`
	Results              []string        `json:"results" validate:"required,max=80,dive,min=1,max=2000"`
	Files                []ProjectFile   `json:"files" validate:"required,max=40,dive"`
	RelatedCompetencyIDs []string        `json:"relatedCompetencyIds" validate:"required,max=40,dive,recordid"`
}

// RecordID returns the project id.
func (p Project) RecordID() string { return p.ID }
