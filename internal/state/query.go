package state

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"slices"

	"github.com/HansenDafa/indostereoset-annotation/internal/models"
)

// Candidates returns the triplets still waiting for a generator, in list order
func Candidates(s State) []models.Triplet {
	var out []models.Triplet
	for _, t := range s.Triplets {
		if !t.Generated() {
			out = append(out, t)
		}
	}
	return out
}

// Candidate returns the preferred triplet if it is still pending, else the
// first pending one. remaining is the size of the candidate pool.
func Candidate(s State, preferredID string) (t models.Triplet, remaining int, ok bool) {
	pool := Candidates(s)
	if len(pool) == 0 {
		return models.Triplet{}, 0, false
	}
	if preferredID != "" {
		if i := slices.IndexFunc(pool, func(c models.Triplet) bool { return c.ID == preferredID }); i >= 0 {
			return pool[i], len(pool), true
		}
	}
	return pool[0], len(pool), true
}

// NextAssignment returns the first sentence, in list order, that has fewer
// than five labels and none from humanID.
func NextAssignment(s State, humanID string) (models.Assignment, bool) {
	ti, si, ok := nextSentence(s, humanID)
	if !ok {
		return models.Assignment{}, false
	}
	t := s.Triplets[ti]
	sent := t.Sentences[si]
	return models.Assignment{
		TripletID:  t.ID,
		Target:     t.Target,
		Context:    t.Context,
		SentenceID: sent.ID,
		Sentence:   sent.Sentence,
		LabelCount: len(sent.Labels),
	}, true
}

func nextSentence(s State, humanID string) (int, int, bool) {
	for ti, t := range s.Triplets {
		if !needsAnnotation(t) {
			continue
		}
		for si, sent := range t.Sentences {
			if !sent.Complete() && !sent.LabeledBy(humanID) {
				return ti, si, true
			}
		}
	}
	return 0, 0, false
}

func needsAnnotation(t models.Triplet) bool {
	if len(t.Sentences) == 0 {
		return false
	}
	return slices.ContainsFunc(t.Sentences, func(s models.Sentence) bool { return !s.Complete() })
}

// ComputeStats derives the admin dashboard numbers
func ComputeStats(s State) models.Stats {
	st := models.Stats{
		TotalTriplets: len(s.Triplets),
		TotalUsers:    len(s.Users),
	}
	for _, t := range s.Triplets {
		if !t.Generated() {
			st.PendingTriplets++
		}
		st.TotalSentences += len(t.Sentences)
		for _, sent := range t.Sentences {
			st.TotalLabels += len(sent.Labels)
		}
	}
	st.TargetLabels = st.TotalSentences * models.LabelsPerSentence
	if st.TargetLabels > 0 {
		st.Progress = float64(st.TotalLabels) / float64(st.TargetLabels)
	}
	return st
}

// FindUser looks a user up by id
func FindUser(s State, id string) (models.User, bool) {
	i := slices.IndexFunc(s.Users, func(u models.User) bool { return u.ID == id })
	if i < 0 {
		return models.User{}, false
	}
	return s.Users[i], true
}

// EncodeJSON renders the triplet list as the annotations.json export
func EncodeJSON(s State) ([]byte, error) {
	triplets := s.Triplets
	if triplets == nil {
		triplets = []models.Triplet{}
	}
	return json.MarshalIndent(triplets, "", "  ")
}

var csvHeader = []string{"triplet_id", "target", "bias_type", "context", "sentence_id", "slot", "sentence", "label", "human_id"}

// WriteCSV writes one row per label, and one row with empty label columns
// for each sentence that has none yet.
func WriteCSV(w io.Writer, s State) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, t := range s.Triplets {
		for _, sent := range t.Sentences {
			base := []string{t.ID, t.Target, t.BiasType, t.Context, sent.ID, string(sent.Slot), sent.Sentence}
			if len(sent.Labels) == 0 {
				if err := cw.Write(append(base, "", "")); err != nil {
					return err
				}
				continue
			}
			for _, l := range sent.Labels {
				if err := cw.Write(append(slices.Clip(base), string(l.Label), l.HumanID)); err != nil {
					return err
				}
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// EncodeCSV is WriteCSV into a byte slice
func EncodeCSV(s State) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
