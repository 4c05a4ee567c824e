package postgres

import (
	"encoding/json"
	"testing"

	"go-recruitment-workflow/internal/domain"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeLanguagesSendsJSONText(t *testing.T) {
	arg, err := encodeLanguages([]domain.Language{{Name: "English", Level: "B2"}})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"English","level":"B2"}]`, arg)

	// Simple-protocol arguments are rendered as text literals; the value must
	// reach the server as JSON, not as a \x bytea literal.
	buf, err := pgtype.NewMap().Encode(0, pgtype.TextFormatCode, arg, nil)
	require.NoError(t, err)
	assert.True(t, json.Valid(buf), "encoded %q", buf)
	assert.NotContains(t, string(buf), `\x`)
}

func TestEncodeLanguagesEmpty(t *testing.T) {
	arg, err := encodeLanguages([]domain.Language{})
	require.NoError(t, err)
	assert.Equal(t, "[]", arg)
}

func TestUniqueSkills(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil", nil, []string{}},
		{"keeps order", []string{"welding", "forklift"}, []string{"welding", "forklift"}},
		{"drops repeats", []string{"welding", "forklift", "welding"}, []string{"welding", "forklift"}},
		{"trims before comparing", []string{" welding", "welding ", ""}, []string{"welding"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, uniqueSkills(tt.in))
		})
	}
}
