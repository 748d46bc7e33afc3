package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExperienceItem_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantID   string
		wantYear *int
	}{
		{
			name:     "string id, numeric year",
			input:    `{"id":"r-1","year":2021,"customer":"c","subject":"s","work":"w"}`,
			wantID:   "r-1",
			wantYear: intPtr(2021),
		},
		{
			name:     "numeric id, string year",
			input:    `{"id":17,"year":"2019","customer":"c","subject":"s","work":"w"}`,
			wantID:   "17",
			wantYear: intPtr(2019),
		},
		{
			name:     "missing year",
			input:    `{"id":"x","customer":"c","subject":"s","work":"w"}`,
			wantID:   "x",
			wantYear: nil,
		},
		{
			name:     "non-numeric year",
			input:    `{"id":"x","year":"n/a"}`,
			wantID:   "x",
			wantYear: nil,
		},
		{
			name:     "null id",
			input:    `{"id":null,"year":2020}`,
			wantID:   "",
			wantYear: intPtr(2020),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var item ExperienceItem
			require.NoError(t, json.Unmarshal([]byte(tt.input), &item))
			assert.Equal(t, tt.wantID, item.ID)
			assert.Equal(t, tt.wantYear, item.Year)
		})
	}
}

func TestExperienceItem_UnmarshalJSON_TextFields(t *testing.T) {
	var item ExperienceItem
	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","customer":"ПАО, ИНН 1234567890","subject":"ГРС Казань","work":"ПНР"}`), &item))
	assert.Equal(t, "ПАО, ИНН 1234567890", item.Customer)
	assert.Equal(t, "ГРС Казань", item.Subject)
	assert.Equal(t, "ПНР", item.Work)
}

func TestExperienceItem_UnmarshalJSON_NotObject(t *testing.T) {
	var item ExperienceItem
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &item))
}

func intPtr(v int) *int { return &v }
