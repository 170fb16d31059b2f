// Package state owns the persisted stores of a LifeHub installation and
// saves them as one unit.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lifehub/lifehub/internal/metrics"
	"github.com/lifehub/lifehub/internal/models"
	"github.com/lifehub/lifehub/internal/storage"
)

// DefaultHeightM is used for BMI when no height is configured.
const DefaultHeightM = 1.60

// Notifier receives a snapshot after every successful save. Implementations
// must not block.
type Notifier interface {
	Notify(snap *models.Snapshot)
}

// Vault holds every named store in memory and writes them back together.
// It is not safe for concurrent use.
type Vault struct {
	kv       storage.KV
	log      *slog.Logger
	notifier Notifier
	metrics  *metrics.Manager
	now      func() time.Time
	heightM  float64

	Profile      *models.UserProfile
	Measurements []models.MeasurementLog
	Goals        models.Goals
	Gallery      json.RawMessage
	Templates    []models.Template
}

// Option configures a Vault.
type Option func(*Vault)

// WithNotifier sends a snapshot to n after every save.
func WithNotifier(n Notifier) Option {
	return func(v *Vault) { v.notifier = n }
}

// WithMetrics records save counts and durations.
func WithMetrics(m *metrics.Manager) Option {
	return func(v *Vault) { v.metrics = m }
}

// WithClock replaces time.Now for normalization and snapshots.
func WithClock(now func() time.Time) Option {
	return func(v *Vault) { v.now = now }
}

// WithHeight sets the height in meters used for BMI.
func WithHeight(m float64) Option {
	return func(v *Vault) {
		if m > 0 {
			v.heightM = m
		}
	}
}

// Open loads every store from kv, substituting defaults for missing ones,
// and normalizes the profile. A store that exists but cannot be decoded is
// an error; it is never overwritten with defaults.
func Open(ctx context.Context, kv storage.KV, log *slog.Logger, opts ...Option) (*Vault, error) {
	v := &Vault{
		kv:      kv,
		log:     log,
		now:     time.Now,
		heightM: DefaultHeightM,
	}
	for _, opt := range opts {
		opt(v)
	}

	rawProfile, err := v.raw(ctx, models.KeyUser)
	if err != nil {
		return nil, err
	}
	v.Profile, err = NormalizeProfile(rawProfile, v.now())
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", models.KeyUser, err)
	}

	if err := load(ctx, v, models.KeyMeasurements, []models.MeasurementLog{}, &v.Measurements); err != nil {
		return nil, err
	}
	if err := load(ctx, v, models.KeyGoals, models.DefaultGoals(), &v.Goals); err != nil {
		return nil, err
	}
	if err := load(ctx, v, models.KeyGallery, json.RawMessage(`[]`), &v.Gallery); err != nil {
		return nil, err
	}
	if err := load(ctx, v, models.KeyTemplates, []models.Template{}, &v.Templates); err != nil {
		return nil, err
	}

	v.log.Info("state loaded",
		"fitness_points", v.Profile.FitnessPoints,
		"streak", v.Profile.Streak,
		"measurements", len(v.Measurements),
		"templates", len(v.Templates),
	)
	return v, nil
}

// raw returns the stored bytes for key, or nil if the key was never written.
func (v *Vault) raw(ctx context.Context, key string) ([]byte, error) {
	b, err := v.kv.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", key, err)
	}
	return b, nil
}

// load decodes key into dst, or copies fallback into dst when key is absent
// or holds JSON null.
func load[T any](ctx context.Context, v *Vault, key string, fallback T, dst *T) error {
	b, err := v.raw(ctx, key)
	if err != nil {
		return err
	}
	if len(b) == 0 || string(b) == "null" {
		*dst = fallback
		return nil
	}
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		return fmt.Errorf("decoding %s: %w", key, err)
	}
	*dst = out
	return nil
}

// Save writes the profile and the legacy stores in one PutAll, then hands a
// snapshot to the notifier. Replication is never awaited.
func (v *Vault) Save(ctx context.Context) error {
	start := time.Now()

	entries, err := v.encode()
	if err != nil {
		v.observeSave(start, err)
		return err
	}
	if err := v.kv.PutAll(ctx, entries); err != nil {
		err = fmt.Errorf("saving stores: %w", err)
		v.observeSave(start, err)
		return err
	}
	v.observeSave(start, nil)

	v.notify(entries)
	return nil
}

// Sync hands the current stores to the notifier without writing them.
func (v *Vault) Sync() error {
	entries, err := v.encode()
	if err != nil {
		return err
	}
	v.notify(entries)
	return nil
}

func (v *Vault) notify(entries map[string][]byte) {
	if v.notifier == nil {
		return
	}
	v.notifier.Notify(&models.Snapshot{
		SyncID:       uuid.NewString(),
		UserProfile:  entries[models.KeyUser],
		Measurements: entries[models.KeyMeasurements],
		Goals:        entries[models.KeyGoals],
		Gallery:      entries[models.KeyGallery],
		Templates:    entries[models.KeyTemplates],
		LastSync:     v.now().UTC(),
	})
}

func (v *Vault) encode() (map[string][]byte, error) {
	stores := []struct {
		key   string
		value any
	}{
		{models.KeyUser, v.Profile},
		{models.KeyMeasurements, v.Measurements},
		{models.KeyGoals, v.Goals},
		{models.KeyGallery, v.Gallery},
		{models.KeyTemplates, v.Templates},
	}

	entries := make(map[string][]byte, len(stores))
	for _, s := range stores {
		b, err := json.Marshal(s.value)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", s.key, err)
		}
		entries[s.key] = b
	}
	return entries, nil
}

func (v *Vault) observeSave(start time.Time, err error) {
	if v.metrics == nil {
		return
	}
	result := metrics.ResultOK
	if err != nil {
		result = metrics.ResultError
	}
	v.metrics.CounterSaves.WithLabelValues(result).Inc()
	v.metrics.HistSaveDuration.Observe(time.Since(start).Seconds())
}

// AddMeasurement appends a measurement log entry and saves.
func (v *Vault) AddMeasurement(ctx context.Context, entry models.MeasurementLog) error {
	if entry.Date.IsZero() {
		entry.Date = v.now()
	}
	v.Measurements = append(v.Measurements, entry)
	return v.Save(ctx)
}

// Backup returns the replication document stored under doc.
func (v *Vault) Backup(ctx context.Context, doc string) ([]byte, error) {
	return v.kv.Get(ctx, models.KeyBackupPrefix+doc)
}

// PutBackup stores a received replication document. It does not touch the
// in-memory stores.
func (v *Vault) PutBackup(ctx context.Context, doc string, data []byte) error {
	if err := v.kv.PutAll(ctx, map[string][]byte{models.KeyBackupPrefix + doc: data}); err != nil {
		return fmt.Errorf("storing backup %s: %w", doc, err)
	}
	return nil
}
