package usecase_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/port"
	"github.com/bibbank/creditrisk/pkg/events"
)

// --- Mock implementations ---

// memDB is an in-memory UnitOfWork. Writes made inside WithinCustomer are
// staged and only become visible when fn returns nil.
type memDB struct {
	profiles    map[string]*model.CustomerProfile
	locks       map[string]*sync.Mutex
	transitions []model.CategoryTransition
	edits       []model.FieldEdit
	events      []events.DomainEvent

	saveErr       error
	transitionErr error
	editErr       error
	listErr       error
	failKeys      map[string]error

	mu sync.Mutex
}

func newMemDB(profiles ...*model.CustomerProfile) *memDB {
	db := &memDB{
		profiles: make(map[string]*model.CustomerProfile),
		locks:    make(map[string]*sync.Mutex),
		failKeys: make(map[string]error),
	}
	for _, p := range profiles {
		db.profiles[p.CustomerKey()] = p
	}
	return db
}

func cloneProfile(p *model.CustomerProfile) *model.CustomerProfile {
	return model.ReconstructCustomerProfile(
		p.CustomerKey(), p.Features(), p.ContrastRating(), p.State(),
		p.Active(), p.Version(), p.CreatedAt(), p.UpdatedAt(),
	)
}

func (db *memDB) lockFor(key string) *sync.Mutex {
	db.mu.Lock()
	defer db.mu.Unlock()
	l, ok := db.locks[key]
	if !ok {
		l = &sync.Mutex{}
		db.locks[key] = l
	}
	return l
}

func (db *memDB) WithinCustomer(ctx context.Context, key string, fn func(context.Context, port.CustomerStore, *model.CustomerProfile) error) error {
	l := db.lockFor(key)
	l.Lock()
	defer l.Unlock()

	db.mu.Lock()
	current, ok := db.profiles[key]
	failErr := db.failKeys[key]
	db.mu.Unlock()
	if !ok {
		return port.ErrCustomerNotFound
	}
	if failErr != nil {
		return failErr
	}

	tx := &memTx{db: db}
	if err := fn(ctx, tx, cloneProfile(current)); err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	if tx.saved != nil {
		db.profiles[key] = cloneProfile(tx.saved)
	}
	db.transitions = append(db.transitions, tx.transitions...)
	db.edits = append(db.edits, tx.edits...)
	db.events = append(db.events, tx.events...)
	return nil
}

func (db *memDB) FindByKey(_ context.Context, key string) (*model.CustomerProfile, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	p, ok := db.profiles[key]
	if !ok {
		return nil, port.ErrCustomerNotFound
	}
	return cloneProfile(p), nil
}

func (db *memDB) List(_ context.Context, afterKey string, limit int) ([]*model.CustomerProfile, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.listErr != nil {
		return nil, db.listErr
	}
	keys := make([]string, 0, len(db.profiles))
	for k := range db.profiles {
		if k > afterKey {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if len(keys) > limit {
		keys = keys[:limit]
	}
	out := make([]*model.CustomerProfile, 0, len(keys))
	for _, k := range keys {
		out = append(out, cloneProfile(db.profiles[k]))
	}
	return out, nil
}

func (db *memDB) CreateIfAbsent(_ context.Context, p *model.CustomerProfile) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.profiles[p.CustomerKey()]; ok {
		return false, nil
	}
	db.profiles[p.CustomerKey()] = cloneProfile(p)
	return true, nil
}

func (db *memDB) ListTransitions(_ context.Context, key string, limit, offset int) ([]model.CategoryTransition, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []model.CategoryTransition
	for i := len(db.transitions) - 1; i >= 0; i-- {
		if db.transitions[i].CustomerKey() == key {
			out = append(out, db.transitions[i])
		}
	}
	return page(out, limit, offset), nil
}

func (db *memDB) ListEdits(_ context.Context, key string, limit, offset int) ([]model.FieldEdit, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []model.FieldEdit
	for i := len(db.edits) - 1; i >= 0; i-- {
		if db.edits[i].CustomerKey() == key {
			out = append(out, db.edits[i])
		}
	}
	return page(out, limit, offset), nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}

func (db *memDB) profile(key string) *model.CustomerProfile {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.profiles[key]
}

func (db *memDB) transitionsFor(key string) []model.CategoryTransition {
	out, _ := db.ListTransitions(context.Background(), key, 1000, 0)
	return out
}

func (db *memDB) editsFor(key string) []model.FieldEdit {
	out, _ := db.ListEdits(context.Background(), key, 1000, 0)
	return out
}

type memTx struct {
	db          *memDB
	saved       *model.CustomerProfile
	transitions []model.CategoryTransition
	edits       []model.FieldEdit
	events      []events.DomainEvent
}

func (tx *memTx) SaveProfile(_ context.Context, p *model.CustomerProfile) error {
	if tx.db.saveErr != nil {
		return tx.db.saveErr
	}
	tx.saved = cloneProfile(p)
	return nil
}

func (tx *memTx) AppendTransition(_ context.Context, t model.CategoryTransition) error {
	if tx.db.transitionErr != nil {
		return tx.db.transitionErr
	}
	tx.transitions = append(tx.transitions, t)
	return nil
}

func (tx *memTx) AppendEdit(_ context.Context, e model.FieldEdit) error {
	if tx.db.editErr != nil {
		return tx.db.editErr
	}
	tx.edits = append(tx.edits, e)
	return nil
}

func (tx *memTx) StoreEvents(_ context.Context, evts ...events.DomainEvent) error {
	tx.events = append(tx.events, evts...)
	return nil
}

// stepClock advances by one second on every call.
type stepClock struct {
	now time.Time
	mu  sync.Mutex
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type stubArtifact struct {
	columns   []string
	threshold float64
	prob      float64
}

func (a *stubArtifact) FeatureColumns() []string { return a.columns }
func (a *stubArtifact) Threshold() float64       { return a.threshold }
func (a *stubArtifact) TargetDefinition() string { return "default within 12 months" }
func (a *stubArtifact) Checksum() string         { return "sha256:test" }
func (a *stubArtifact) LoadedAt() time.Time      { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
func (a *stubArtifact) PredictProba(model.FeatureRow) (float64, error) {
	return a.prob, nil
}

var errArtifactUnavailable = errors.New("artifact unavailable")

type stubProvider struct {
	artifact  port.ModelArtifact
	err       error
	reloadErr error
	reloads   int
}

func (p *stubProvider) Current(context.Context) (port.ModelArtifact, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.artifact, nil
}

func (p *stubProvider) Reload(context.Context) (port.ModelArtifact, error) {
	p.reloads++
	if p.reloadErr != nil {
		return nil, p.reloadErr
	}
	return p.artifact, nil
}

type recordingMetrics struct {
	scores      []string
	transitions []string
	edits       []string
	reloads     []bool
	mu          sync.Mutex
}

func (m *recordingMetrics) ScoreRecorded(_ context.Context, category, disposition string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores = append(m.scores, category+"/"+disposition)
}

func (m *recordingMetrics) TransitionRecorded(_ context.Context, from, to string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitions = append(m.transitions, from+">"+to)
}

func (m *recordingMetrics) EditRecorded(_ context.Context, action string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edits = append(m.edits, action)
}

func (m *recordingMetrics) ArtifactReloaded(_ context.Context, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reloads = append(m.reloads, ok)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type historyStub struct {
	transitions []model.CategoryTransition
	edits       []model.FieldEdit
	err         error
	gotKey      string
	gotLimit    int
	gotOffset   int
}

func (h *historyStub) ListTransitions(_ context.Context, key string, limit, offset int) ([]model.CategoryTransition, error) {
	h.gotKey, h.gotLimit, h.gotOffset = key, limit, offset
	return h.transitions, h.err
}

func (h *historyStub) ListEdits(_ context.Context, key string, limit, offset int) ([]model.FieldEdit, error) {
	h.gotKey, h.gotLimit, h.gotOffset = key, limit, offset
	return h.edits, h.err
}
