package service //nolint:testpackage // mocks live alongside the service

import (
	"context"
	"errors"
	"testing"

	"github.com/evaldesk/eval-analytics/internal/database"
	"github.com/evaldesk/eval-analytics/internal/elasticsearch/mappings"
	"github.com/evaldesk/eval-analytics/internal/logger"
)

// --- mocks ---

type mockProvisioner struct {
	failFor map[string]error
	created map[string]bool

	calls []string
}

func (m *mockProvisioner) EnsureIndex(_ context.Context, def mappings.IndexDefinition) (bool, error) {
	m.calls = append(m.calls, def.Name)
	if err, ok := m.failFor[def.Name]; ok {
		return false, err
	}
	return m.created[def.Name], nil
}

type mockMetadataStore struct {
	saveErr error
	saved   []*database.IndexMetadata
	active  []*database.IndexMetadata
}

func (m *mockMetadataStore) SaveIndexMetadata(_ context.Context, metadata *database.IndexMetadata) error {
	m.saved = append(m.saved, metadata)
	return m.saveErr
}

func (m *mockMetadataStore) ListAllActiveMetadata(_ context.Context) ([]*database.IndexMetadata, error) {
	return m.active, nil
}

type mockMappingClient struct {
	exists     bool
	existsErr  error
	mapping    map[string]any
	mappingErr error
}

func (m *mockMappingClient) IndexExists(_ context.Context, _ string) (bool, error) {
	return m.exists, m.existsErr
}

func (m *mockMappingClient) GetIndexMapping(_ context.Context, _ string) (map[string]any, error) {
	return m.mapping, m.mappingErr
}

func newIndexService(prov *mockProvisioner, db *mockMetadataStore, es *mockMappingClient) *IndexService {
	return NewIndexService(prov, es, db, "ai_usage_metrics", logger.Nop())
}

// --- InitIndices ---

func TestInitIndices_ProvisionsAllIndices(t *testing.T) {
	prov := &mockProvisioner{created: map[string]bool{mappings.EvalRunIndex: true}}
	db := &mockMetadataStore{}
	svc := newIndexService(prov, db, &mockMappingClient{})

	provisioned := svc.InitIndices(context.Background())

	if provisioned != 4 {
		t.Errorf("provisioned = %d, want 4", provisioned)
	}
	if len(prov.calls) != 4 {
		t.Fatalf("ensure calls = %d, want 4", len(prov.calls))
	}
	if len(db.saved) != 4 {
		t.Errorf("metadata records = %d, want 4", len(db.saved))
	}

	for _, metadata := range db.saved {
		if metadata.Status != "active" {
			t.Errorf("metadata status = %q, want active", metadata.Status)
		}
		if metadata.MappingVersion == "" {
			t.Errorf("metadata for %q missing mapping version", metadata.IndexName)
		}
	}
}

func TestInitIndices_ContinuesAfterFailure(t *testing.T) {
	prov := &mockProvisioner{
		failFor: map[string]error{mappings.EvalPromptIndex: errors.New("connection refused")},
	}
	db := &mockMetadataStore{}
	svc := newIndexService(prov, db, &mockMappingClient{})

	provisioned := svc.InitIndices(context.Background())

	if provisioned != 3 {
		t.Errorf("provisioned = %d, want 3", provisioned)
	}
	// All four attempted despite one failing
	if len(prov.calls) != 4 {
		t.Errorf("ensure calls = %d, want 4", len(prov.calls))
	}
	// No metadata for the failed index
	if len(db.saved) != 3 {
		t.Errorf("metadata records = %d, want 3", len(db.saved))
	}
}

func TestInitIndices_MetadataSaveFailureIsNonFatal(t *testing.T) {
	prov := &mockProvisioner{}
	db := &mockMetadataStore{saveErr: errors.New("postgres down")}
	svc := newIndexService(prov, db, &mockMappingClient{})

	provisioned := svc.InitIndices(context.Background())

	if provisioned != 4 {
		t.Errorf("provisioned = %d, want 4 despite metadata failure", provisioned)
	}
}

// --- GetIndexMapping ---

func TestGetIndexMapping_MissingIndex(t *testing.T) {
	es := &mockMappingClient{exists: false}
	svc := newIndexService(&mockProvisioner{}, &mockMetadataStore{}, es)

	_, err := svc.GetIndexMapping(context.Background(), "nope")
	if !errors.Is(err, ErrIndexNotFound) {
		t.Fatalf("GetIndexMapping() error = %v, want ErrIndexNotFound", err)
	}
}

func TestGetIndexMapping_ReturnsMapping(t *testing.T) {
	es := &mockMappingClient{
		exists:  true,
		mapping: map[string]any{"properties": map[string]any{"eval_id": map[string]any{"type": "keyword"}}},
	}
	svc := newIndexService(&mockProvisioner{}, &mockMetadataStore{}, es)

	mapping, err := svc.GetIndexMapping(context.Background(), mappings.EvalRunIndex)
	if err != nil {
		t.Fatalf("GetIndexMapping() error = %v", err)
	}
	if _, ok := mapping["properties"]; !ok {
		t.Error("mapping missing properties")
	}
}
