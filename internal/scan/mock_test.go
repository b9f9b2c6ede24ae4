package scan

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sells-group/visibility-cli/internal/model"
	"github.com/sells-group/visibility-cli/internal/provider"
	"github.com/sells-group/visibility-cli/internal/store"
)

// fakeProvider answers with a canned function so tests control every
// response deterministically.
type fakeProvider struct {
	id      string
	modelID string
	respond func(prompt string) (string, error)
}

func (f *fakeProvider) ID() string    { return f.id }
func (f *fakeProvider) Model() string { return f.modelID }

func (f *fakeProvider) Generate(ctx context.Context, prompt string, maxTokens int) (*provider.Generation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text, err := f.respond(prompt)
	if err != nil {
		return nil, err
	}
	return &provider.Generation{
		Text:  text,
		Usage: model.TokenUsage{InputTokens: 20, OutputTokens: 80},
	}, nil
}

// echoProvider returns a fixed response regardless of the prompt.
func echoProvider(id, text string) *fakeProvider {
	return &fakeProvider{
		id:      id,
		modelID: id + "-model",
		respond: func(string) (string, error) { return text, nil },
	}
}

// failingProvider always errors.
func failingProvider(id string, err error) *fakeProvider {
	return &fakeProvider{
		id:      id,
		modelID: id + "-model",
		respond: func(string) (string, error) { return "", err },
	}
}

// memStore is an in-memory Store with optional error injection.
type memStore struct {
	mu           sync.Mutex
	scans        map[string]*model.Scan
	usage        map[string][]model.UsageRecord
	transitions  []model.ScanStatus
	saveUsageErr error

	// successResultErr rejects result writes without an Error set, so
	// the failure-marking write still goes through.
	successResultErr error
}

func newMemStore() *memStore {
	return &memStore{
		scans: make(map[string]*model.Scan),
		usage: make(map[string][]model.UsageRecord),
	}
}

func (m *memStore) CreateScan(_ context.Context, profile model.BusinessProfile) (*model.Scan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	scan := &model.Scan{
		ID:      uuid.New().String(),
		Profile: profile,
		Status:  model.ScanStatusQueued,
	}
	m.scans[scan.ID] = scan
	return &model.Scan{ID: scan.ID, Profile: profile, Status: scan.Status}, nil
}

func (m *memStore) UpdateScanStatus(_ context.Context, scanID string, status model.ScanStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	scan, ok := m.scans[scanID]
	if !ok {
		return eris.Errorf("scan not found: %s", scanID)
	}
	scan.Status = status
	m.transitions = append(m.transitions, status)
	return nil
}

func (m *memStore) UpdateScanResult(_ context.Context, scanID string, result *model.ScanResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	scan, ok := m.scans[scanID]
	if !ok {
		return eris.Errorf("scan not found: %s", scanID)
	}
	if result.Error == "" && m.successResultErr != nil {
		return m.successResultErr
	}
	scan.Result = result
	if result.Error != "" {
		scan.Status = model.ScanStatusFailed
	} else {
		scan.Status = model.ScanStatusComplete
	}
	return nil
}

func (m *memStore) GetScan(_ context.Context, scanID string) (*model.Scan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	scan, ok := m.scans[scanID]
	if !ok {
		return nil, eris.Errorf("scan not found: %s", scanID)
	}
	return scan, nil
}

func (m *memStore) ListScans(_ context.Context, _ store.ScanFilter) ([]model.Scan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Scan
	for _, s := range m.scans {
		out = append(out, *s)
	}
	return out, nil
}

func (m *memStore) SaveUsage(_ context.Context, records []model.UsageRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveUsageErr != nil {
		return m.saveUsageErr
	}
	for _, rec := range records {
		m.usage[rec.ScanID] = append(m.usage[rec.ScanID], rec)
	}
	return nil
}

func (m *memStore) ListUsage(_ context.Context, scanID string) ([]model.UsageRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.usage[scanID], nil
}

func (m *memStore) Migrate(context.Context) error { return nil }
func (m *memStore) Close() error                  { return nil }

// countingRecorder counts Record calls.
type countingRecorder struct {
	mu    sync.Mutex
	calls int
}

func (c *countingRecorder) Record(provider, modelID string, queryIndex int, usage model.TokenUsage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
}

func (c *countingRecorder) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}
