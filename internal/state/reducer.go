package state

import (
	"fmt"
	"slices"
	"strings"

	"github.com/HansenDafa/indostereoset-annotation/internal/importer"
	"github.com/HansenDafa/indostereoset-annotation/internal/models"
)

// Login returns the first user whose name and password both match
func (r Reducer) Login(s State, name, password string) (models.User, error) {
	if blank(name) || blank(password) {
		return models.User{}, reject(ErrMissingFields, "Please fill in both fields")
	}
	for _, u := range s.Users {
		if u.Name == name && r.verify(u.Password, password) {
			return u, nil
		}
	}
	return models.User{}, reject(ErrInvalidCredentials, "Invalid name or password")
}

// AddTriplet appends one context entry from the single-entry form
func (r Reducer) AddTriplet(s State, req models.TripletRequest) (State, models.Triplet, error) {
	if blank(req.Target) || blank(req.Context) {
		return s, models.Triplet{}, reject(ErrMissingFields, "Please fill context and target")
	}
	biasType := strings.TrimSpace(req.BiasType)
	if biasType == "" {
		biasType = models.DefaultBiasType
	}
	if !slices.Contains(models.BiasTypes, biasType) {
		return s, models.Triplet{}, reject(ErrInvalidBiasType, "Bias type must be one of "+strings.Join(models.BiasTypes, ", "))
	}

	t := newTriplet(r.id(), req.Target, biasType, req.Context)
	s.Triplets = append(slices.Clip(s.Triplets), t)
	return s, t, nil
}

// ImportTriplets appends one context entry per non-blank line, in line order
func (r Reducer) ImportTriplets(s State, text string) (State, models.ImportResult[models.TripletImportRow], error) {
	var res models.ImportResult[models.TripletImportRow]
	if importer.Blank(text) {
		return s, res, reject(ErrEmptyInput, "Please paste CSV content")
	}

	rows := importer.ParseTriplets(text)
	if len(rows) == 0 {
		return s, res, reject(ErrNoValidEntries, "No valid entries found")
	}

	added := make([]models.Triplet, 0, len(rows))
	for _, row := range rows {
		t := newTriplet(r.id(), row.Target, row.BiasType, row.Context)
		added = append(added, t)
		res.Rows = append(res.Rows, models.TripletImportRow{Line: row.Line, Accepted: true, Triplet: &t})
	}
	res.Accepted = len(added)
	res.Message = fmt.Sprintf("Successfully added %d context entries!", len(added))

	s.Triplets = append(slices.Clip(s.Triplets), added...)
	return s, res, nil
}

// PrepareUser validates req and hashes its password. It does not touch any
// State, so callers can run it outside Store.Update.
func (r Reducer) PrepareUser(req models.UserRequest) (models.User, error) {
	if blank(req.Name) || blank(req.Password) || blank(string(req.Role)) {
		return models.User{}, reject(ErrMissingFields, "Please fill all user fields")
	}
	if !req.Role.Valid() {
		return models.User{}, reject(ErrInvalidRole, "Role must be one of admin, generator, annotator")
	}

	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = r.id()
	}
	hash, err := r.hash(req.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}
	return models.User{ID: id, Name: req.Name, Password: hash, Role: req.Role}, nil
}

// AddUser appends a single user
func (r Reducer) AddUser(s State, req models.UserRequest) (State, models.User, error) {
	u, err := r.PrepareUser(req)
	if err != nil {
		return s, models.User{}, err
	}
	return AppendUsers(s, u), u, nil
}

// PrepareUsers parses a user bulk import and hashes every accepted
// password. Lines with fewer than four fields are reported as rejected rows.
// Like PrepareUser it is independent of State.
func (r Reducer) PrepareUsers(text string) ([]models.User, models.ImportResult[models.UserImportRow], error) {
	var res models.ImportResult[models.UserImportRow]
	if importer.Blank(text) {
		return nil, res, reject(ErrEmptyInput, "Please paste user CSV content")
	}

	var added []models.User
	for _, row := range importer.ParseUsers(text) {
		if !row.Accepted {
			res.Rejected++
			res.Rows = append(res.Rows, models.UserImportRow{Line: row.Line, Reason: row.Reason})
			continue
		}
		hash, err := r.hash(row.Password)
		if err != nil {
			return nil, res, fmt.Errorf("failed to hash password on line %d: %w", row.Line, err)
		}
		u := models.User{ID: row.ID, Name: row.Name, Password: hash, Role: models.Role(row.Role)}
		added = append(added, u)
		res.Rows = append(res.Rows, models.UserImportRow{Line: row.Line, Accepted: true, User: &u})
	}

	if len(added) == 0 {
		return nil, res, reject(ErrNoValidEntries, "No valid user entries found")
	}
	res.Accepted = len(added)
	res.Message = fmt.Sprintf("Successfully added %d users!", len(added))
	return added, res, nil
}

// ImportUsers appends every line with at least four fields
func (r Reducer) ImportUsers(s State, text string) (State, models.ImportResult[models.UserImportRow], error) {
	users, res, err := r.PrepareUsers(text)
	if err != nil {
		return s, res, err
	}
	return AppendUsers(s, users...), res, nil
}

// AppendUsers adds already prepared users in order
func AppendUsers(s State, users ...models.User) State {
	s.Users = append(slices.Clip(s.Users), users...)
	return s
}

// SubmitTriplet stores the three generated sentences on a pending triplet.
// A triplet is generated at most once.
func (r Reducer) SubmitTriplet(s State, tripletID, generatorID string, req models.GenerateRequest) (State, models.Triplet, error) {
	if blank(tripletID) || blank(generatorID) ||
		blank(req.Stereotype) || blank(req.AntiStereotype) || blank(req.Neutral) {
		return s, models.Triplet{}, reject(ErrMissingFields, "Please fill all fields")
	}

	idx := indexOfTriplet(s, tripletID)
	if idx < 0 {
		return s, models.Triplet{}, reject(ErrTripletNotFound, "Triplet not found")
	}
	if s.Triplets[idx].Generated() {
		return s, models.Triplet{}, reject(ErrAlreadyGenerated, "This triplet has already been generated")
	}

	texts := [models.SentencesPerTriplet]string{req.Stereotype, req.AntiStereotype, req.Neutral}
	sentences := make([]models.Sentence, models.SentencesPerTriplet)
	for i, slot := range models.GenerationOrder {
		sentences[i] = models.Sentence{
			ID:       r.id(),
			Sentence: texts[i],
			Slot:     slot,
			Labels:   []models.Label{},
		}
	}

	t := s.Triplets[idx]
	t.Sentences = sentences
	gid := generatorID
	t.GeneratorID = &gid

	s.Triplets = slices.Clone(s.Triplets)
	s.Triplets[idx] = t
	return s, t, nil
}

// SubmitLabel appends a label to the sentence currently assigned to humanID.
// It is a no-op when nothing is assigned. A non-empty sentenceID must name
// the current assignment.
func (r Reducer) SubmitLabel(s State, humanID, label, sentenceID string) (State, models.LabelResult, error) {
	value, ok := models.ParseLabel(label)
	if !ok {
		return s, models.LabelResult{}, reject(ErrInvalidLabel, "Label must be one of stereotype, anti-stereotype, unrelated")
	}

	ti, si, ok := nextSentence(s, humanID)
	if !ok {
		return s, models.LabelResult{Applied: false}, nil
	}

	current := s.Triplets[ti].Sentences[si]
	if sentenceID != "" && sentenceID != current.ID {
		return s, models.LabelResult{}, reject(ErrStaleAssignment, "This sentence is no longer assigned to you")
	}

	current.Labels = append(slices.Clip(current.Labels), models.Label{Label: value, HumanID: humanID})

	t := s.Triplets[ti]
	t.Sentences = slices.Clone(t.Sentences)
	t.Sentences[si] = current

	s.Triplets = slices.Clone(s.Triplets)
	s.Triplets[ti] = t

	return s, models.LabelResult{Applied: true, SentenceID: current.ID, LabelCount: len(current.Labels)}, nil
}

func newTriplet(id, target, biasType, context string) models.Triplet {
	return models.Triplet{
		ID:        id,
		Target:    target,
		BiasType:  biasType,
		Context:   context,
		Sentences: []models.Sentence{},
	}
}

func indexOfTriplet(s State, id string) int {
	return slices.IndexFunc(s.Triplets, func(t models.Triplet) bool { return t.ID == id })
}

func blank(v string) bool {
	return strings.TrimSpace(v) == ""
}
