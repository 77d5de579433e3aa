package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/HansenDafa/indostereoset-annotation/internal/models"
	"github.com/HansenDafa/indostereoset-annotation/internal/repository"
	"github.com/HansenDafa/indostereoset-annotation/internal/state"
)

type memoryArchive struct {
	records []models.ExportRecord
	err     error
}

func (m *memoryArchive) Record(rec *models.ExportRecord) error {
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, *rec)
	return nil
}

func (m *memoryArchive) List() ([]models.ExportRecord, error) { return m.records, nil }

func (m *memoryArchive) Get(id string) (*models.ExportRecord, error) {
	for _, r := range m.records {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, repository.ErrExportNotFound
}

func (m *memoryArchive) Close() error { return nil }

type stubDrafter struct {
	err   error
	calls int
}

func (s *stubDrafter) Draft(_ context.Context, t models.Triplet) (*models.Drafts, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &models.Drafts{Stereotype: "s " + t.Target, AntiStereotype: "a", Unrelated: "u", Provider: "stub"}, nil
}

func (s *stubDrafter) GetModelInfo() map[string]interface{} {
	return map[string]interface{}{"provider": "stub"}
}

type fixture struct {
	store     *state.Store
	admin     *AdminService
	generator *GeneratorService
	annotator *AnnotatorService
	archive   *memoryArchive
	drafter   *stubDrafter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zaptest.NewLogger(t)
	reducer := state.Reducer{}
	initial, err := reducer.Initial()
	require.NoError(t, err)

	f := &fixture{
		store:   state.NewStore(initial),
		archive: &memoryArchive{},
		drafter: &stubDrafter{},
	}
	f.admin = NewAdminService(f.store, reducer, f.archive, logger)
	f.generator = NewGeneratorService(f.store, reducer, f.drafter, logger)
	f.annotator = NewAnnotatorService(f.store, reducer, logger)
	return f
}

var sentences = models.GenerateRequest{
	Stereotype:     "The people are fat and unathletic.",
	AntiStereotype: "The people are very thin and good at distance running.",
	Neutral:        "Cats have sharp claws.",
}

func TestAdminIntakeAndStats(t *testing.T) {
	f := newFixture(t)

	tr, err := f.admin.AddTriplet(models.TripletRequest{Target: "Ethiopia", Context: "Many people live in Ethiopia."})
	require.NoError(t, err)
	assert.Equal(t, "race", tr.BiasType)

	_, err = f.admin.AddTriplet(models.TripletRequest{Target: " "})
	assert.ErrorIs(t, err, state.ErrMissingFields)

	res, err := f.admin.ImportTriplets("Japan|race|Japan is an island.\n\n|gender|")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Accepted)
	assert.Equal(t, "Successfully added 2 context entries!", res.Message)

	users, err := f.admin.ImportUsers("u1|alice|pw|annotator\nbroken|line")
	require.NoError(t, err)
	assert.Equal(t, 1, users.Accepted)
	assert.Equal(t, 1, users.Rejected)

	_, err = f.admin.AddUser(models.UserRequest{Name: "bob", Password: "pw", Role: models.RoleGenerator})
	require.NoError(t, err)

	assert.Len(t, f.admin.ListUsers(), 3)
	assert.Len(t, f.admin.ListPending(), 3)

	stats := f.admin.Stats()
	assert.Equal(t, 3, stats.TotalTriplets)
	assert.Equal(t, 3, stats.PendingTriplets)
	assert.Equal(t, 3, stats.TotalUsers)
	assert.Zero(t, stats.Progress)
}

func TestListPendingNeverNil(t *testing.T) {
	f := newFixture(t)
	assert.NotNil(t, f.admin.ListPending())
}

func TestExportJSONArchives(t *testing.T) {
	f := newFixture(t)
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	f.admin.now = func() time.Time { return fixed }

	_, err := f.admin.AddTriplet(models.TripletRequest{Target: "Ethiopia", Context: "ctx"})
	require.NoError(t, err)

	first, err := f.admin.ExportJSON()
	require.NoError(t, err)
	second, err := f.admin.ExportJSON()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var decoded []models.Triplet
	require.NoError(t, json.Unmarshal(first, &decoded))
	assert.Len(t, decoded, 1)

	list, err := f.admin.ListExports()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 1, list[0].TripletCount)
	assert.Equal(t, fixed, list[0].CreatedAt)

	got, err := f.admin.GetExport(list[1].ID)
	require.NoError(t, err)
	assert.Equal(t, string(first), got.Payload)
}

func TestExportJSONSurvivesArchiveFailure(t *testing.T) {
	f := newFixture(t)
	f.archive.err = errors.New("disk full")

	data, err := f.admin.ExportJSON()
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestArchiveDisabled(t *testing.T) {
	f := newFixture(t)
	admin := NewAdminService(f.store, state.Reducer{}, nil, zaptest.NewLogger(t))

	_, err := admin.ExportJSON()
	require.NoError(t, err)
	_, err = admin.ListExports()
	assert.ErrorIs(t, err, ErrArchiveDisabled)
	_, err = admin.GetExport("x")
	assert.ErrorIs(t, err, ErrArchiveDisabled)
}

func TestGeneratorFlow(t *testing.T) {
	f := newFixture(t)

	task := f.generator.Next("")
	assert.False(t, task.Available)
	assert.Equal(t, "No Tasks Available", task.Message)

	a, err := f.admin.AddTriplet(models.TripletRequest{Target: "A", Context: "a"})
	require.NoError(t, err)
	b, err := f.admin.AddTriplet(models.TripletRequest{Target: "B", Context: "b"})
	require.NoError(t, err)

	task = f.generator.Next(b.ID)
	require.True(t, task.Available)
	assert.Equal(t, b.ID, task.Triplet.ID)
	assert.Equal(t, 2, task.Remaining)

	generated, err := f.generator.Submit(b.ID, "gen-1", sentences)
	require.NoError(t, err)
	require.NotNil(t, generated.GeneratorID)
	assert.Equal(t, "gen-1", *generated.GeneratorID)

	_, err = f.generator.Submit(b.ID, "gen-2", sentences)
	assert.ErrorIs(t, err, state.ErrAlreadyGenerated)

	task = f.generator.Next(b.ID)
	assert.Equal(t, a.ID, task.Triplet.ID, "falls back to the first candidate")
	assert.Equal(t, 1, task.Remaining)
}

func TestGeneratorDrafts(t *testing.T) {
	f := newFixture(t)
	tr, err := f.admin.AddTriplet(models.TripletRequest{Target: "Ethiopia", Context: "ctx"})
	require.NoError(t, err)
	version := f.store.Version()

	d, err := f.generator.Drafts(context.Background(), tr.ID)
	require.NoError(t, err)
	assert.Equal(t, "s Ethiopia", d.Stereotype)
	assert.Equal(t, version, f.store.Version(), "drafts never change state")

	_, err = f.generator.Drafts(context.Background(), "missing")
	assert.ErrorIs(t, err, state.ErrTripletNotFound)

	f.drafter.err = errors.New("all providers failed")
	_, err = f.generator.Drafts(context.Background(), tr.ID)
	assert.ErrorIs(t, err, ErrDraftsFailed)

	_, err = f.generator.Submit(tr.ID, "gen-1", sentences)
	require.NoError(t, err)
	calls := f.drafter.calls
	_, err = f.generator.Drafts(context.Background(), tr.ID)
	assert.ErrorIs(t, err, state.ErrAlreadyGenerated)
	assert.Equal(t, calls, f.drafter.calls)
}

func TestGeneratorDraftsDisabled(t *testing.T) {
	f := newFixture(t)
	g := NewGeneratorService(f.store, state.Reducer{}, nil, zaptest.NewLogger(t))
	assert.False(t, g.DraftsEnabled())

	_, err := g.Drafts(context.Background(), "any")
	assert.ErrorIs(t, err, ErrDraftsDisabled)
}

func TestAnnotatorFlow(t *testing.T) {
	f := newFixture(t)

	task := f.annotator.Next("h1")
	assert.True(t, task.Done)
	assert.Equal(t, "All Done!", task.Message)

	res, err := f.annotator.Submit("h1", models.LabelRequest{Label: "stereotype"})
	require.NoError(t, err)
	assert.False(t, res.Applied)

	tr, err := f.admin.AddTriplet(models.TripletRequest{Target: "Ethiopia", Context: "ctx"})
	require.NoError(t, err)
	generated, err := f.generator.Submit(tr.ID, "gen-1", sentences)
	require.NoError(t, err)

	task = f.annotator.Next("h1")
	require.False(t, task.Done)
	first := generated.Sentences[0].ID
	assert.Equal(t, first, task.Assignment.SentenceID)

	res, err = f.annotator.Submit("h1", models.LabelRequest{Label: "stereotype", SentenceID: first})
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Equal(t, 1, res.LabelCount)

	_, err = f.annotator.Submit("h1", models.LabelRequest{Label: "unrelated", SentenceID: first})
	assert.ErrorIs(t, err, state.ErrStaleAssignment)

	_, err = f.annotator.Submit("h1", models.LabelRequest{Label: "neutral"})
	assert.ErrorIs(t, err, state.ErrInvalidLabel)

	assert.Equal(t, generated.Sentences[1].ID, f.annotator.Next("h1").Assignment.SentenceID)
	assert.Equal(t, 1, f.admin.Stats().TotalLabels)
}

// gatedHasher blocks in Hash until release is closed
type gatedHasher struct {
	entered chan struct{}
	release chan struct{}
}

func (g *gatedHasher) Hash(password string) (string, error) {
	select {
	case g.entered <- struct{}{}:
	default:
	}
	<-g.release
	return "hashed:" + password, nil
}

func (g *gatedHasher) Verify(stored, password string) bool {
	return stored == "hashed:"+password
}

func TestImportUsersHashesOutsideStoreLock(t *testing.T) {
	hasher := &gatedHasher{entered: make(chan struct{}, 1), release: make(chan struct{})}
	reducer := state.Reducer{Passwords: hasher}
	store := state.NewStore(state.State{})
	admin := NewAdminService(store, reducer, nil, zaptest.NewLogger(t))

	type outcome struct {
		res models.ImportResult[models.UserImportRow]
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := admin.ImportUsers("u1|alice|pw|annotator\nu2|bob|pw|generator")
		done <- outcome{res, err}
	}()

	select {
	case <-hasher.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("import never started hashing")
	}

	// The store stays writable while passwords are being hashed
	updated := make(chan error, 1)
	go func() {
		updated <- store.Update(func(s state.State) (state.State, error) {
			s.Triplets = append(s.Triplets, models.Triplet{ID: "t1"})
			return s, nil
		})
	}()
	select {
	case err := <-updated:
		require.NoError(t, err)
	case <-time.After(time.Second):
		close(hasher.release)
		t.Fatal("store update blocked behind password hashing")
	}
	assert.Empty(t, store.Snapshot().Users)

	close(hasher.release)
	out := <-done
	require.NoError(t, out.err)
	assert.Equal(t, 2, out.res.Accepted)

	snap := store.Snapshot()
	require.Len(t, snap.Users, 2)
	assert.Equal(t, "hashed:pw", snap.Users[0].Password)
	assert.Len(t, snap.Triplets, 1, "concurrent update is kept")
}

func TestAddUserHashesOutsideStoreLock(t *testing.T) {
	hasher := &gatedHasher{entered: make(chan struct{}, 1), release: make(chan struct{})}
	store := state.NewStore(state.State{})
	admin := NewAdminService(store, state.Reducer{Passwords: hasher}, nil, zaptest.NewLogger(t))

	done := make(chan error, 1)
	go func() {
		_, err := admin.AddUser(models.UserRequest{Name: "carol", Password: "pw", Role: models.RoleAnnotator})
		done <- err
	}()
	<-hasher.entered

	snapshot := make(chan int, 1)
	go func() {
		assert.NoError(t, store.Update(func(s state.State) (state.State, error) { return s, nil }))
		snapshot <- len(store.Snapshot().Users)
	}()
	select {
	case n := <-snapshot:
		assert.Zero(t, n)
	case <-time.After(time.Second):
		close(hasher.release)
		t.Fatal("store update blocked behind password hashing")
	}

	close(hasher.release)
	require.NoError(t, <-done)
	assert.Len(t, store.Snapshot().Users, 1)
}
