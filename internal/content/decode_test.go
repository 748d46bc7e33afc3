package content

import (
	"testing"

	"github.com/jonathan/sng-admin/internal/apperr"
	"github.com/jonathan/sng-admin/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	doc, err := Decode[types.DocumentItem]([]byte(`{"id":"doc-1","title":"Устав","extra":true}`))
	require.NoError(t, err)
	assert.Equal(t, "doc-1", doc.ID)
	assert.Equal(t, "Устав", doc.Title)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{name: "empty body", body: ``, field: "root"},
		{name: "array", body: `[1]`, field: "root"},
		{name: "type mismatch", body: `{"salaryFrom":"a lot"}`, field: "salaryFrom"},
		{name: "syntax", body: `{"id":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode[types.Vacancy]([]byte(tt.body))
			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.Validation))

			if tt.field != "" {
				var appErr *apperr.Error
				require.ErrorAs(t, err, &appErr)
				require.Len(t, appErr.Fields, 1)
				assert.Equal(t, tt.field, appErr.Fields[0].Field)
			}
		})
	}
}
