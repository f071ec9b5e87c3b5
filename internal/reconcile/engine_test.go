package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"adforge/internal/domain"
	"adforge/internal/providers/heygen"
)

type memAssets struct {
	records   map[string]domain.AssetRecord
	order     []string
	updateErr error
}

func newMemAssets(records ...domain.AssetRecord) *memAssets {
	m := &memAssets{records: make(map[string]domain.AssetRecord)}
	for _, r := range records {
		m.records[r.ID] = r
		m.order = append(m.order, r.ID)
	}
	return m
}

func (m *memAssets) Create(ctx context.Context, record *domain.AssetRecord) error {
	record.CreatedAt = time.Now()
	m.records[record.ID] = *record
	m.order = append(m.order, record.ID)
	return nil
}

func (m *memAssets) GetByID(ctx context.Context, id string) (*domain.AssetRecord, error) {
	record, ok := m.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &record, nil
}

func (m *memAssets) UpdateResult(ctx context.Context, id string, update domain.AssetUpdate) (*domain.AssetRecord, error) {
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	record, ok := m.records[id]
	if !ok || record.Status != domain.AssetStatusProcessing {
		return nil, domain.ErrStaleRecord
	}
	if update.Status != nil {
		record.Status = *update.Status
	}
	if update.AssetURL != nil {
		record.AssetURL = *update.AssetURL
	}
	if update.Content != nil {
		record.Content = *update.Content
	}
	if update.ErrorMsg != nil {
		record.ErrorMsg = *update.ErrorMsg
	}
	m.records[id] = record
	return &record, nil
}

func (m *memAssets) ListByStatus(ctx context.Context, status domain.AssetStatus, limit int) ([]domain.AssetRecord, error) {
	var out []domain.AssetRecord
	for _, id := range m.order {
		if record := m.records[id]; record.Status == status {
			out = append(out, record)
		}
	}
	return out, nil
}

func (m *memAssets) List(ctx context.Context, limit, offset int) ([]domain.AssetRecord, error) {
	var out []domain.AssetRecord
	for _, id := range m.order {
		out = append(out, m.records[id])
	}
	return out, nil
}

func (m *memAssets) Delete(ctx context.Context, id string) error {
	delete(m.records, id)
	return nil
}

func (m *memAssets) SetFavorite(ctx context.Context, id string, favorite bool) error {
	record := m.records[id]
	record.Favorite = favorite
	m.records[id] = record
	return nil
}

type stubStatusClient struct {
	statuses     map[string]heygen.JobStatus
	pending      []heygen.JobStatus
	statusCalls  int
	pendingCalls int
}

func (s *stubStatusClient) Status(ctx context.Context, jobID string) (*heygen.JobStatus, error) {
	s.statusCalls++
	status, ok := s.statuses[jobID]
	if !ok {
		return nil, errors.New("job not found")
	}
	return &status, nil
}

func (s *stubStatusClient) ListPending(ctx context.Context) ([]heygen.JobStatus, error) {
	s.pendingCalls++
	return s.pending, nil
}

func processingRecord(id, assetURL string) domain.AssetRecord {
	return domain.AssetRecord{
		ID:          id,
		ItemID:      "item-1",
		ContentType: domain.ContentTypeVideo,
		Provider:    "heygen",
		Status:      domain.AssetStatusProcessing,
		AssetURL:    assetURL,
	}
}

func TestReconcileCompletesPendingAsset(t *testing.T) {
	assets := newMemAssets(processingRecord("a1", domain.PendingToken("abc123")))
	client := &stubStatusClient{statuses: map[string]heygen.JobStatus{
		"abc123": {JobID: "abc123", Status: "completed", VideoURL: "https://res.example.com/final.mp4"},
	}}
	engine := NewEngine(assets, client, zerolog.Nop())

	record, changed, err := engine.Reconcile(context.Background(), "a1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed {
		t.Fatal("expected record to change")
	}
	if record.Status != domain.AssetStatusCompleted {
		t.Fatalf("expected completed, got %s", record.Status)
	}
	if record.AssetURL != "https://res.example.com/final.mp4" {
		t.Fatalf("pending token not replaced: %q", record.AssetURL)
	}
}

func TestReconcileTerminalRecordIsNoOp(t *testing.T) {
	done := processingRecord("a1", "https://res.example.com/final.mp4")
	done.Status = domain.AssetStatusCompleted
	assets := newMemAssets(done)
	client := &stubStatusClient{}
	engine := NewEngine(assets, client, zerolog.Nop())

	record, changed, err := engine.Reconcile(context.Background(), "a1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed {
		t.Fatal("terminal record must not change")
	}
	if record.AssetURL != done.AssetURL {
		t.Fatalf("record mutated: %+v", record)
	}
	if client.statusCalls != 0 {
		t.Fatalf("provider must not be queried for terminal records, got %d calls", client.statusCalls)
	}
}

func TestReconcileStillRunningLeavesRecordUntouched(t *testing.T) {
	assets := newMemAssets(processingRecord("a1", domain.PendingToken("abc123")))
	client := &stubStatusClient{statuses: map[string]heygen.JobStatus{
		"abc123": {JobID: "abc123", Status: "processing"},
	}}
	engine := NewEngine(assets, client, zerolog.Nop())

	record, changed, err := engine.Reconcile(context.Background(), "a1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed || record.Status != domain.AssetStatusProcessing {
		t.Fatalf("running job must stay processing: changed=%v status=%s", changed, record.Status)
	}
}

func TestReconcileCompletedWithoutURLIsInconclusive(t *testing.T) {
	assets := newMemAssets(processingRecord("a1", domain.PendingToken("abc123")))
	client := &stubStatusClient{statuses: map[string]heygen.JobStatus{
		"abc123": {JobID: "abc123", Status: "completed"},
	}}
	engine := NewEngine(assets, client, zerolog.Nop())

	record, changed, err := engine.Reconcile(context.Background(), "a1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed || record.Status != domain.AssetStatusProcessing {
		t.Fatalf("completed without url must wait for next pass: changed=%v status=%s", changed, record.Status)
	}
}

func TestReconcileFailedJobRecordsMessage(t *testing.T) {
	assets := newMemAssets(processingRecord("a1", domain.PendingToken("abc123")))
	client := &stubStatusClient{statuses: map[string]heygen.JobStatus{
		"abc123": {JobID: "abc123", Status: "failed", ErrorMessage: "avatar render rejected"},
	}}
	engine := NewEngine(assets, client, zerolog.Nop())

	record, changed, err := engine.Reconcile(context.Background(), "a1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed || record.Status != domain.AssetStatusFailed {
		t.Fatalf("expected failed transition: changed=%v status=%s", changed, record.Status)
	}
	if record.ErrorMsg != "avatar render rejected" {
		t.Fatalf("provider message not recorded: %q", record.ErrorMsg)
	}
}

func TestReconcileFailedJobSynthesizesMessage(t *testing.T) {
	assets := newMemAssets(processingRecord("a1", domain.PendingToken("abc123")))
	client := &stubStatusClient{statuses: map[string]heygen.JobStatus{
		"abc123": {JobID: "abc123", Status: "error"},
	}}
	engine := NewEngine(assets, client, zerolog.Nop())

	record, _, err := engine.Reconcile(context.Background(), "a1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.ErrorMsg == "" {
		t.Fatal("expected a synthesized error message")
	}
}

func TestReconcileLegacyTokenInContent(t *testing.T) {
	legacy := processingRecord("a1", "")
	legacy.Content = "video queued, handle pending_legacy9 issued"
	assets := newMemAssets(legacy)
	client := &stubStatusClient{statuses: map[string]heygen.JobStatus{
		"legacy9": {JobID: "legacy9", Status: "completed", VideoURL: "https://res.example.com/old.mp4"},
	}}
	engine := NewEngine(assets, client, zerolog.Nop())

	record, changed, err := engine.Reconcile(context.Background(), "a1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed || record.AssetURL != "https://res.example.com/old.mp4" {
		t.Fatalf("legacy token not honored: changed=%v url=%q", changed, record.AssetURL)
	}
}

func TestReconcileWithoutJobIDFallsBackToBulkRecovery(t *testing.T) {
	assets := newMemAssets(processingRecord("a1", ""))
	client := &stubStatusClient{}
	engine := NewEngine(assets, client, zerolog.Nop())

	record, changed, err := engine.Reconcile(context.Background(), "a1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.pendingCalls != 1 {
		t.Fatalf("expected one bulk recovery pass, got %d", client.pendingCalls)
	}
	if changed || record.Status != domain.AssetStatusProcessing {
		t.Fatalf("unmatchable record must stay processing: changed=%v status=%s", changed, record.Status)
	}
}

func TestRecoverAllReportsEveryRemoteJob(t *testing.T) {
	assets := newMemAssets(
		processingRecord("a1", domain.PendingToken("job-1")),
		processingRecord("a2", domain.PendingToken("job-2")),
		processingRecord("a3", domain.PendingToken("job-3")),
	)
	client := &stubStatusClient{pending: []heygen.JobStatus{
		{JobID: "job-1", Status: "completed", VideoURL: "https://res.example.com/1.mp4"},
		{JobID: "job-2", Status: "processing"},
		{JobID: "job-3", Status: "completed", VideoURL: "https://res.example.com/3.mp4"},
		{JobID: "job-4", Status: "waiting"},
		{JobID: "job-5", Status: "failed"},
	}}
	engine := NewEngine(assets, client, zerolog.Nop())

	outcomes, err := engine.RecoverAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(outcomes) != 5 {
		t.Fatalf("expected one outcome per remote job, got %d", len(outcomes))
	}
	updated := 0
	for _, o := range outcomes {
		if o.Updated {
			updated++
		}
	}
	if updated != 2 {
		t.Fatalf("expected 2 updates, got %d", updated)
	}
	for id, wantStatus := range map[string]domain.AssetStatus{
		"a1": domain.AssetStatusCompleted,
		"a2": domain.AssetStatusProcessing,
		"a3": domain.AssetStatusCompleted,
	} {
		record, err := assets.GetByID(context.Background(), id)
		if err != nil {
			t.Fatalf("get %s: %v", id, err)
		}
		if record.Status != wantStatus {
			t.Fatalf("record %s: expected %s, got %s", id, wantStatus, record.Status)
		}
	}
}

func TestReconcileStaleRecordIsNotRewritten(t *testing.T) {
	assets := newMemAssets(processingRecord("a1", domain.PendingToken("abc123")))
	assets.updateErr = domain.ErrStaleRecord
	client := &stubStatusClient{statuses: map[string]heygen.JobStatus{
		"abc123": {JobID: "abc123", Status: "completed", VideoURL: "https://res.example.com/final.mp4"},
	}}
	engine := NewEngine(assets, client, zerolog.Nop())

	record, changed, err := engine.Reconcile(context.Background(), "a1")
	if err != nil {
		t.Fatalf("losing the write race must not error: %v", err)
	}
	if changed || record.Status != domain.AssetStatusProcessing {
		t.Fatalf("stale write must be dropped: changed=%v status=%s", changed, record.Status)
	}
}
