package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HansenDafa/indostereoset-annotation/internal/models"
)

func TestParseTriplets(t *testing.T) {
	rows := ParseTriplets("Ethiopia|race|Many people live in Ethiopia.\nWomen|gender|Most women work in healthcare.")

	require.Len(t, rows, 2)
	assert.Equal(t, TripletRow{Line: 1, Target: "Ethiopia", BiasType: "race", Context: "Many people live in Ethiopia."}, rows[0])
	assert.Equal(t, TripletRow{Line: 2, Target: "Women", BiasType: "gender", Context: "Most women work in healthcare."}, rows[1])
}

func TestParseTripletsDefaults(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  TripletRow
	}{
		{"target only", "OnlyTarget", TripletRow{Line: 1, Target: "OnlyTarget", BiasType: "race", Context: ""}},
		{"empty target", " | religion | Some context", TripletRow{Line: 1, Target: "Unknown", BiasType: "religion", Context: "Some context"}},
		{"empty bias type", "Nurses |  | They work nights.", TripletRow{Line: 1, Target: "Nurses", BiasType: "race", Context: "They work nights."}},
		{"extra fields ignored", "a|b|c|d", TripletRow{Line: 1, Target: "a", BiasType: "b", Context: "c"}},
		{"free text bias type", "x|nationality|y", TripletRow{Line: 1, Target: "x", BiasType: "nationality", Context: "y"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := ParseTriplets(tt.input)
			require.Len(t, rows, 1)
			assert.Equal(t, tt.want, rows[0])
		})
	}
}

func TestParseTripletsSharesFormDefault(t *testing.T) {
	rows := ParseTriplets("Nurses||They work nights.")
	require.Len(t, rows, 1)
	assert.Equal(t, models.DefaultBiasType, rows[0].BiasType)
}

func TestParseTripletsSkipsBlankLines(t *testing.T) {
	rows := ParseTriplets("\n  \nA|race|c1\r\n\nB|age|c2\n")

	require.Len(t, rows, 2)
	assert.Equal(t, 3, rows[0].Line)
	assert.Equal(t, "c1", rows[0].Context)
	assert.Equal(t, 5, rows[1].Line)
	assert.Equal(t, "B", rows[1].Target)
}

func TestParseUsers(t *testing.T) {
	rows := ParseUsers("user001 | Alice | pass123 | generator\nbroken | line\nuser002 | Bob | pass456 | annotator | extra\n")

	require.Len(t, rows, 3)

	assert.True(t, rows[0].Accepted)
	assert.Equal(t, "user001", rows[0].ID)
	assert.Equal(t, "Alice", rows[0].Name)
	assert.Equal(t, "pass123", rows[0].Password)
	assert.Equal(t, "generator", rows[0].Role)

	assert.False(t, rows[1].Accepted)
	assert.Equal(t, 2, rows[1].Line)
	assert.Equal(t, "expected 4 fields, got 2", rows[1].Reason)

	assert.True(t, rows[2].Accepted)
	assert.Equal(t, "annotator", rows[2].Role)
}

func TestParseUsersKeepsRoleVerbatim(t *testing.T) {
	rows := ParseUsers("u1|n|p|superuser")

	require.Len(t, rows, 1)
	assert.True(t, rows[0].Accepted)
	assert.Equal(t, "superuser", rows[0].Role)
}

func TestBlank(t *testing.T) {
	assert.True(t, Blank(""))
	assert.True(t, Blank(" \n\t "))
	assert.False(t, Blank("x"))
}
