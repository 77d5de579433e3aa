package state

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HansenDafa/indostereoset-annotation/internal/models"
)

func TestCandidatePrefersSelection(t *testing.T) {
	r := testReducer()
	s := initial(t, r)
	s, _, err := r.ImportTriplets(s, "A|race|a\nB|race|b\nC|race|c")
	require.NoError(t, err)

	tr, remaining, ok := Candidate(s, "")
	require.True(t, ok)
	assert.Equal(t, "A", tr.Target)
	assert.Equal(t, 3, remaining)

	tr, _, ok = Candidate(s, s.Triplets[2].ID)
	require.True(t, ok)
	assert.Equal(t, "C", tr.Target)

	tr, _, ok = Candidate(s, "unknown")
	require.True(t, ok)
	assert.Equal(t, "A", tr.Target)
}

func TestCandidateSkipsGeneratedSelection(t *testing.T) {
	r := testReducer()
	s := initial(t, r)
	s, _, err := r.ImportTriplets(s, "A|race|a\nB|race|b")
	require.NoError(t, err)
	s, done, err := r.SubmitTriplet(s, s.Triplets[0].ID, "g", models.GenerateRequest{Stereotype: "s", AntiStereotype: "a", Neutral: "n"})
	require.NoError(t, err)

	tr, remaining, ok := Candidate(s, done.ID)
	require.True(t, ok)
	assert.Equal(t, "B", tr.Target)
	assert.Equal(t, 1, remaining)
}

func TestCandidateEmptyPool(t *testing.T) {
	_, remaining, ok := Candidate(initial(t, testReducer()), "")
	assert.False(t, ok)
	assert.Zero(t, remaining)
}

func TestComputeStats(t *testing.T) {
	r := testReducer()

	empty := ComputeStats(initial(t, r))
	assert.Equal(t, models.Stats{TotalUsers: 1}, empty)

	s, _ := generated(t, r)
	s, _, err := r.AddTriplet(s, models.TripletRequest{Target: "B", Context: "b"})
	require.NoError(t, err)
	for _, u := range []string{"A", "B", "C"} {
		s, _, err = r.SubmitLabel(s, u, "stereotype", "")
		require.NoError(t, err)
	}

	st := ComputeStats(s)
	assert.Equal(t, 2, st.TotalTriplets)
	assert.Equal(t, 1, st.PendingTriplets)
	assert.Equal(t, 3, st.TotalSentences)
	assert.Equal(t, 3, st.TotalLabels)
	assert.Equal(t, 15, st.TargetLabels)
	assert.InDelta(t, 0.2, st.Progress, 1e-9)
	assert.Equal(t, 1, st.TotalUsers)
}

func TestEncodeJSONIsIdempotent(t *testing.T) {
	r := testReducer()
	s, _ := generated(t, r)
	s, _, err := r.SubmitLabel(s, "A", "unrelated", "")
	require.NoError(t, err)
	s, _, err = r.AddTriplet(s, models.TripletRequest{Target: "B", Context: "b"})
	require.NoError(t, err)

	first, err := EncodeJSON(s)
	require.NoError(t, err)
	second, err := EncodeJSON(s)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(first, &decoded))
	require.Len(t, decoded, 2)
	assert.Nil(t, decoded[1]["generatorId"])
	assert.Equal(t, []any{}, decoded[1]["sentences"])
	assert.Equal(t, "gen-1", decoded[0]["generatorId"])

	sentences := decoded[0]["sentences"].([]any)
	require.Len(t, sentences, 3)
	firstSentence := sentences[0].(map[string]any)
	assert.Equal(t, "stereotype", firstSentence["slot"])
	assert.Equal(t, []any{map[string]any{"label": "unrelated", "human_id": "A"}}, firstSentence["labels"])

	assert.True(t, strings.HasPrefix(string(first), "[\n  {\n    \"id\""), "export is pretty-printed with two spaces")
}

func TestEncodeJSONEmpty(t *testing.T) {
	out, err := EncodeJSON(State{})
	require.NoError(t, err)
	assert.Equal(t, "[]", string(out))
}

func TestEncodeCSV(t *testing.T) {
	r := testReducer()
	s, tr := generated(t, r)
	s, _, err := r.SubmitLabel(s, "A", "stereotype", "")
	require.NoError(t, err)
	s, _, err = r.SubmitLabel(s, "B", "anti-stereotype", "")
	require.NoError(t, err)

	out, err := EncodeCSV(s)
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	require.NoError(t, err)

	// header, two labels on the first sentence, one empty row for each of the others
	require.Len(t, records, 5)
	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, []string{tr.ID, "Ethiopia", "race", "Many people live in Ethiopia.", tr.Sentences[0].ID, "stereotype", tr.Sentences[0].Sentence, "stereotype", "A"}, records[1])
	assert.Equal(t, "anti-stereotype", records[2][7])
	assert.Equal(t, "B", records[2][8])
	assert.Equal(t, "anti-stereotype", records[3][5])
	assert.Equal(t, "", records[3][7])
	assert.Equal(t, "unrelated", records[4][5])
}

func TestFindUser(t *testing.T) {
	s := initial(t, testReducer())

	u, ok := FindUser(s, "admin_user")
	require.True(t, ok)
	assert.Equal(t, "admin", u.Name)

	_, ok = FindUser(s, "nobody")
	assert.False(t, ok)
}
