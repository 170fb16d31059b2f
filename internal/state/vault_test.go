package state

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/lifehub/lifehub/internal/metrics"
	"github.com/lifehub/lifehub/internal/models"
	"github.com/lifehub/lifehub/internal/progression"
	"github.com/lifehub/lifehub/internal/storage"
)

var testNow = time.Date(2026, 3, 4, 18, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memKV is an in-memory storage.KV that can be told to fail writes.
type memKV struct {
	data    map[string][]byte
	puts    int
	failPut error
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string][]byte)}
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.data[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return v, nil
}

func (m *memKV) PutAll(_ context.Context, entries map[string][]byte) error {
	m.puts++
	if m.failPut != nil {
		return m.failPut
	}
	for k, v := range entries {
		m.data[k] = v
	}
	return nil
}

func (m *memKV) Close() error { return nil }

// recordingNotifier keeps every snapshot it is handed.
type recordingNotifier struct {
	snaps []*models.Snapshot
}

func (r *recordingNotifier) Notify(s *models.Snapshot) {
	r.snaps = append(r.snaps, s)
}

func openTestVault(t *testing.T, kv storage.KV, opts ...Option) *Vault {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	v, err := Open(context.Background(), kv, discardLogger(), opts...)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return v
}

// TestOpenEmptyStoreUsesDefaults verifies a first run starts from the
// documented defaults for every store.
func TestOpenEmptyStoreUsesDefaults(t *testing.T) {
	v := openTestVault(t, newMemKV())

	if v.Profile.FitnessLevel != 1 || v.Profile.FitnessPoints != 0 {
		t.Errorf("profile = %+v, want fresh profile", v.Profile)
	}
	if v.Profile.LastGraceWeek != 10 {
		t.Errorf("LastGraceWeek = %d, want current ISO week 10", v.Profile.LastGraceWeek)
	}
	if v.Profile.Muscles == nil || v.Profile.PRs == nil || v.Profile.SystemLogs == nil {
		t.Error("profile maps/slices not initialized")
	}
	if v.Goals["Weight"] != 40 {
		t.Errorf("Goals = %v, want Weight 40", v.Goals)
	}
	if v.Measurements == nil || len(v.Measurements) != 0 {
		t.Errorf("Measurements = %v, want empty", v.Measurements)
	}
	if string(v.Gallery) != "[]" {
		t.Errorf("Gallery = %s, want []", v.Gallery)
	}
	if v.Templates == nil {
		t.Error("Templates not initialized")
	}
}

// TestOpenLoadsStoredData verifies existing stores are read back as saved.
func TestOpenLoadsStoredData(t *testing.T) {
	kv := newMemKV()
	kv.data[models.KeyUser] = []byte(`{"fitnessPoints":120,"fitnessLevel":2,"streak":3,
		"muscles":{"Chest":{"xp":150,"level":2}},"prs":{"bench":500},"lastGraceWeek":9}`)
	kv.data[models.KeyGoals] = []byte(`{"Weight":55}`)
	kv.data[models.KeyMeasurements] = []byte(`[{"date":"2026-03-01T08:00:00Z","data":{"Weight":"61.5"}}]`)
	kv.data[models.KeyTemplates] = []byte(`[{"dbId":"bench","name":"Bench Press","type":"Weight & Reps","target":["Chest"]}]`)

	v := openTestVault(t, kv)

	if v.Profile.FitnessPoints != 120 || v.Profile.Streak != 3 || v.Profile.LastGraceWeek != 9 {
		t.Errorf("profile = %+v", v.Profile)
	}
	if v.Profile.PRs["bench"] != 500 {
		t.Errorf("PRs = %v", v.Profile.PRs)
	}
	if v.Goals["Weight"] != 55 {
		t.Errorf("Goals = %v, want Weight 55", v.Goals)
	}
	if len(v.Measurements) != 1 || v.Measurements[0].Data["Weight"] != 61.5 {
		t.Errorf("Measurements = %+v", v.Measurements)
	}
	if len(v.Templates) != 1 || v.Templates[0].Type != models.ScoreWeightReps {
		t.Errorf("Templates = %+v", v.Templates)
	}
}

// TestOpenCorruptStore verifies a store that cannot be decoded stops startup
// instead of being replaced with defaults.
func TestOpenCorruptStore(t *testing.T) {
	kv := newMemKV()
	kv.data[models.KeyGoals] = []byte(`["not", "goals"]`)

	if _, err := Open(context.Background(), kv, discardLogger()); err == nil {
		t.Error("expected error for undecodable goals")
	}
}

// TestSaveWritesAllStoresTogether verifies one save is one PutAll carrying
// the profile and every legacy store.
func TestSaveWritesAllStoresTogether(t *testing.T) {
	kv := newMemKV()
	v := openTestVault(t, kv)
	v.Profile.FitnessPoints = 42

	if err := v.Save(context.Background()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if kv.puts != 1 {
		t.Errorf("PutAll called %d times, want 1", kv.puts)
	}
	for _, key := range []string{models.KeyUser, models.KeyMeasurements, models.KeyGoals, models.KeyGallery, models.KeyTemplates} {
		if _, ok := kv.data[key]; !ok {
			t.Errorf("store %s not written", key)
		}
	}

	var p models.UserProfile
	if err := json.Unmarshal(kv.data[models.KeyUser], &p); err != nil {
		t.Fatalf("decoding saved profile: %v", err)
	}
	if p.FitnessPoints != 42 {
		t.Errorf("saved FitnessPoints = %d, want 42", p.FitnessPoints)
	}
}

// TestSaveNotifiesSnapshot verifies the notifier receives the saved payload.
func TestSaveNotifiesSnapshot(t *testing.T) {
	n := &recordingNotifier{}
	v := openTestVault(t, newMemKV(), WithNotifier(n))

	if err := v.Save(context.Background()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(n.snaps) != 1 {
		t.Fatalf("got %d snapshots, want 1", len(n.snaps))
	}
	s := n.snaps[0]
	if s.SyncID == "" {
		t.Error("snapshot has no sync id")
	}
	if !s.LastSync.Equal(testNow) {
		t.Errorf("LastSync = %v, want %v", s.LastSync, testNow)
	}
	if string(s.Goals) != `{"Weight":40}` {
		t.Errorf("snapshot goals = %s", s.Goals)
	}
	if len(s.UserProfile) == 0 || len(s.Templates) == 0 || len(s.Measurements) == 0 {
		t.Error("snapshot missing stores")
	}
}

// TestSaveFailureSkipsNotify verifies nothing is replicated that was not
// stored locally, and the failure is counted.
func TestSaveFailureSkipsNotify(t *testing.T) {
	kv := newMemKV()
	n := &recordingNotifier{}
	m := metrics.NewTestManager()
	v := openTestVault(t, kv, WithNotifier(n), WithMetrics(m))
	kv.failPut = errors.New("disk full")

	if err := v.Save(context.Background()); err == nil {
		t.Fatal("expected save error")
	}
	if len(n.snaps) != 0 {
		t.Errorf("notifier called %d times after failed save", len(n.snaps))
	}
}

// TestAddMeasurement verifies measurements are appended, dated and saved.
func TestAddMeasurement(t *testing.T) {
	kv := newMemKV()
	v := openTestVault(t, kv)

	err := v.AddMeasurement(context.Background(), models.MeasurementLog{
		Data: map[string]models.Measure{"Weight": 60},
	})
	if err != nil {
		t.Fatalf("AddMeasurement: %v", err)
	}
	if len(v.Measurements) != 1 || !v.Measurements[0].Date.Equal(testNow) {
		t.Errorf("Measurements = %+v", v.Measurements)
	}
	if kv.puts != 1 {
		t.Errorf("PutAll called %d times, want 1", kv.puts)
	}
}

// TestBackupRoundTrip verifies received backups are stored apart from the
// live stores.
func TestBackupRoundTrip(t *testing.T) {
	kv := newMemKV()
	v := openTestVault(t, kv)
	ctx := context.Background()

	if _, err := v.Backup(ctx, "Sister_Data"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Backup(missing) error = %v, want ErrNotFound", err)
	}
	if err := v.PutBackup(ctx, "Sister_Data", []byte(`{"syncId":"x"}`)); err != nil {
		t.Fatalf("PutBackup: %v", err)
	}
	got, err := v.Backup(ctx, "Sister_Data")
	if err != nil || string(got) != `{"syncId":"x"}` {
		t.Errorf("Backup = %s, %v", got, err)
	}
	if _, ok := kv.data["LifeHub_Backups/Sister_Data"]; !ok {
		t.Error("backup not stored under LifeHub_Backups/")
	}
}

// TestSyncNotifiesWithoutWriting verifies the startup sync replicates the
// loaded stores and leaves the local store alone.
func TestSyncNotifiesWithoutWriting(t *testing.T) {
	kv := newMemKV()
	n := &recordingNotifier{}
	v := openTestVault(t, kv, WithNotifier(n))

	if err := v.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(n.snaps) != 1 {
		t.Errorf("got %d snapshots, want 1", len(n.snaps))
	}
	if kv.puts != 0 {
		t.Errorf("PutAll called %d times, want 0", kv.puts)
	}
}

// TestSaveAfterOverflowingSet verifies a workout with an overflowing set is
// persisted, and so is every workout logged after it.
func TestSaveAfterOverflowingSet(t *testing.T) {
	kv := newMemKV()
	v := openTestVault(t, kv)
	engine := progression.New(v.Profile, v, discardLogger(),
		progression.WithClock(func() time.Time { return testNow }),
	)

	bench := func(sets ...models.SetInput) models.WorkoutSession {
		return models.WorkoutSession{Exercises: []models.Exercise{{
			DBID:    "bench",
			Name:    "Bench Press",
			Type:    models.ScoreWeightReps,
			Sets:    sets,
			Details: models.ExerciseDetails{Target: []string{"Chest"}},
		}}}
	}
	ctx := context.Background()
	engine.ProcessSession(ctx, bench(models.SetInput{1e200, 1e200}), false, true)
	engine.ProcessSession(ctx, bench(models.SetInput{50, 10}), false, true)

	if err := v.Save(ctx); err != nil {
		t.Fatalf("Save: %v", err)
	}

	var p models.UserProfile
	if err := json.Unmarshal(kv.data[models.KeyUser], &p); err != nil {
		t.Fatalf("decoding saved profile: %v", err)
	}
	if p.FitnessPoints != v.Profile.FitnessPoints || p.FitnessPoints == 0 {
		t.Errorf("saved FitnessPoints = %d, want %d", p.FitnessPoints, v.Profile.FitnessPoints)
	}
	if p.PRs["bench"] != 500 {
		t.Errorf("saved PR = %v, want 500", p.PRs["bench"])
	}
	if p.Streak != 2 {
		t.Errorf("saved Streak = %d, want 2", p.Streak)
	}
}
