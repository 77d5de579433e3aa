package models

const (
	// SentencesPerTriplet is the number of sentences a generator writes per context
	SentencesPerTriplet = 3
	// LabelsPerSentence is the number of labels after which a sentence is complete
	LabelsPerSentence = 5
)

// Slot is the semantic role a generated sentence was written for
type Slot string

const (
	SlotStereotype     Slot = "stereotype"
	SlotAntiStereotype Slot = "anti-stereotype"
	SlotUnrelated      Slot = "unrelated"
)

// GenerationOrder is the fixed order in which sentences are stored on a triplet
var GenerationOrder = [SentencesPerTriplet]Slot{SlotStereotype, SlotAntiStereotype, SlotUnrelated}

// LabelValue is an annotator's judgment of a sentence
type LabelValue string

const (
	LabelStereotype     LabelValue = "stereotype"
	LabelAntiStereotype LabelValue = "anti-stereotype"
	LabelUnrelated      LabelValue = "unrelated"
)

// ParseLabel returns the label for s and whether it is one of the three known values
func ParseLabel(s string) (LabelValue, bool) {
	switch LabelValue(s) {
	case LabelStereotype, LabelAntiStereotype, LabelUnrelated:
		return LabelValue(s), true
	}
	return "", false
}

// DefaultBiasType fills a blank bias type in both the form and bulk import
const DefaultBiasType = "race"

// BiasTypes are the values the single-entry form accepts. Bulk import accepts any text.
var BiasTypes = []string{"race", "gender", "religion", "occupation", "age"}

// Triplet is one unit of work: a context and, once generated, its three sentences.
// The JSON shape is the export format (annotations.json).
type Triplet struct {
	ID          string     `json:"id"`
	Target      string     `json:"target"`
	BiasType    string     `json:"bias_type"`
	Context     string     `json:"context"`
	Sentences   []Sentence `json:"sentences"`
	GeneratorID *string    `json:"generatorId"`
}

// Generated reports whether a generator has already completed the triplet
func (t Triplet) Generated() bool {
	return t.GeneratorID != nil && *t.GeneratorID != ""
}

// Sentence is one generated variant of a context
type Sentence struct {
	ID       string  `json:"id"`
	Sentence string  `json:"sentence"`
	Slot     Slot    `json:"slot"`
	Labels   []Label `json:"labels"`
}

// Complete reports whether the sentence has collected all its labels
func (s Sentence) Complete() bool {
	return len(s.Labels) >= LabelsPerSentence
}

// LabeledBy reports whether humanID already labeled the sentence
func (s Sentence) LabeledBy(humanID string) bool {
	for _, l := range s.Labels {
		if l.HumanID == humanID {
			return true
		}
	}
	return false
}

// Label is a single annotator judgment
type Label struct {
	Label   LabelValue `json:"label"`
	HumanID string     `json:"human_id"`
}
