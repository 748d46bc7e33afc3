package schemas

import (
	"testing"

	"github.com/jonathan/sng-admin/internal/apperr"
	"github.com/jonathan/sng-admin/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validVacancy() types.Vacancy {
	return types.Vacancy{
		ID:               "vac-welder",
		Slug:             "welder",
		Title:            "Сварщик НАКС",
		City:             "Казань",
		Format:           "office",
		Dept:             "Производство",
		Employment:       "rotation",
		Experience:       "3-6",
		SalaryFrom:       types.Ptr(120000),
		SalaryTo:         types.Ptr(180000),
		Priority:         types.Ptr(false),
		Currency:         "RUB",
		PostedAt:         "2025-03-01",
		Keywords:         []string{"сварка"},
		Summary:          "Сварка трубопроводов",
		Responsibilities: []string{"Сварка"},
		Requirements:     []string{"НАКС"},
		Conditions:       []string{"Вахта"},
	}
}

func validDocument() types.DocumentItem {
	return types.DocumentItem{
		ID:       "doc-charter",
		Title:    "Устав",
		Date:     "2024-01-10",
		Type:     "PDF",
		Size:     "1.2 MB",
		Category: "Учредительные",
		URL:      "/docs/charter.pdf",
	}
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, apperr.Validation, appErr.Kind)

	out := make(map[string]string, len(appErr.Fields))
	for _, f := range appErr.Fields {
		out[f.Field] = f.Message
	}
	return out
}

func TestStruct_ValidVacancy(t *testing.T) {
	v := New()
	assert.NoError(t, v.Struct(validVacancy()))
}

func TestStruct_SalaryToBelowSalaryFrom(t *testing.T) {
	v := New()
	vacancy := validVacancy()
	vacancy.SalaryTo = types.Ptr(1000)

	fields := fieldsOf(t, v.Struct(vacancy))
	require.Contains(t, fields, "salaryTo")
	assert.Equal(t, "must not be less than salaryFrom", fields["salaryTo"])
}

func TestStruct_ReportsEveryViolation(t *testing.T) {
	v := New()
	vacancy := validVacancy()
	vacancy.Slug = "Bad Slug"
	vacancy.Format = "freelance"
	vacancy.Currency = "USD"
	vacancy.PostedAt = "01.03.2025"
	vacancy.Keywords = nil

	fields := fieldsOf(t, v.Struct(vacancy))
	assert.Contains(t, fields, "slug")
	assert.Contains(t, fields, "format")
	assert.Contains(t, fields, "currency")
	assert.Contains(t, fields, "postedAt")
	assert.Contains(t, fields, "keywords")
}

func TestStruct_DocumentCategory(t *testing.T) {
	v := New()
	doc := validDocument()
	assert.NoError(t, v.Struct(doc))

	doc.Category = "Прочее"
	fields := fieldsOf(t, v.Struct(doc))
	assert.Contains(t, fields, "category")
}

func TestStruct_RecordIDPattern(t *testing.T) {
	v := New()
	tests := []struct {
		id    string
		valid bool
	}{
		{"ab", true},
		{"Doc-01", true},
		{"a", false},
		{"has space", false},
		{"кириллица", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			doc := validDocument()
			doc.ID = tt.id
			err := v.Struct(doc)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Contains(t, fieldsOf(t, err), "id")
			}
		})
	}
}

func TestStruct_NestedPaths(t *testing.T) {
	v := New()
	project := types.Project{
		ID:         "p1",
		Slug:       "p1",
		Year:       1999,
		Title:      "Проект",
		ShortTitle: "Проект",
		Excerpt:    "Описание",
		HeroImage:  "/img.png",
		Gallery:    []string{""},
		Region:     "Татарстан",
		ObjectType: "ГРС",
		WorkTypes:  []string{"СМР"},
		Passport: types.ProjectPassport{
			Period: "2020", Status: "Завершен", Customer: "c", Contractor: "c",
			INN: "", Location: "l", ObjectType: "o", WorkScope: "w",
		},
		Tasks:                []string{},
		Solutions:            []string{},
		Results:              []string{},
		Files:                []types.ProjectFile{},
		RelatedCompetencyIDs: []string{"comp-ok", "x"},
	}

	fields := fieldsOf(t, v.Struct(project))
	assert.Contains(t, fields, "year")
	assert.Contains(t, fields, "gallery[0]")
	assert.Contains(t, fields, "passport.inn")
	assert.Contains(t, fields, "relatedCompetencyIds[1]")
	assert.NotContains(t, fields, "tasks")
}

func TestStruct_SettingsHighlights(t *testing.T) {
	v := New()
	settings := types.DefaultSiteSettings()
	assert.NoError(t, v.Struct(settings))

	settings.Careers.AttractionHighlights = []string{}
	fields := fieldsOf(t, v.Struct(settings))
	assert.Contains(t, fields, "careers.attractionHighlights")
}

func TestStruct_LoginRequest(t *testing.T) {
	v := New()
	fields := fieldsOf(t, v.Struct(types.LoginRequest{}))
	assert.Contains(t, fields, "username")
	assert.Contains(t, fields, "password")
}

func TestValidateExperienceLedger(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{name: "valid rows", doc: `[{"id":"1","year":2020,"customer":"c","subject":"s","work":"w"},{"id":2,"year":"2021"}]`},
		{name: "empty array", doc: `[]`},
		{name: "object root", doc: `{"id":"1"}`, wantErr: true},
		{name: "row not object", doc: `["row"]`, wantErr: true},
		{name: "subject wrong type", doc: `[{"id":"1","subject":42}]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateExperienceLedger([]byte(tt.doc))
			if tt.wantErr {
				assert.True(t, apperr.Is(err, apperr.Validation))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateDocument_MalformedJSON(t *testing.T) {
	err := ValidateDocument(`{"type":"array"}`, []byte(`[1,`))
	assert.True(t, apperr.Is(err, apperr.Validation))
}
