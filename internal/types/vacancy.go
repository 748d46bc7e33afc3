package types

// Vacancy is an open position on the careers page.
type Vacancy struct {
	ID               string   `json:"id" validate:"recordid"`
	Slug             string   `json:"slug" validate:"slug"`
	Title            string   `json:"title" validate:"min=3,max=220"`
	City             string   `json:"city" validate:"min=1,max=120"`
	Format           string   `json:"format" validate:"oneof=office hybrid remote"`
	Dept             string   `json:"dept" validate:"min=1,max=180"`
	Employment       string   `json:"employment" validate:"oneof=full part rotation"`
	Experience       string   `json:"experience" validate:"oneof=0 1-3 3-6 6+"`
	SalaryFrom       *int     `json:"salaryFrom" validate:"required,min=0,max=1000000000"`
	SalaryTo         *int     `json:"salaryTo" validate:"required,min=0,max=1000000000,gtefield=SalaryFrom"`
	Currency         string   `json:"currency" validate:"eq=RUB"`
	PostedAt         string   `json:"postedAt" validate:"isodate"`
	Priority         *bool    `json:"priority" validate:"required"`
	Keywords         []string `json:"keywords" validate:"required,max=40,dive,min=1,max=120"`
	Summary          string   `json:"summary" validate:"min=3,max=2000"`
	Responsibilities []string `json:"responsibilities" validate:"required,max=100,dive,min=1,max=2000"`
	Requirements     []string `json:"requirements" validate:"required,max=100,dive,min=1,max=2000"`
	Conditions       []string `json:"conditions" validate:"required,max=100,dive,min=1,max=2000"`
}

// RecordID returns the vacancy id.
func (v Vacancy) RecordID() string { return v.ID }
