package elasticsearch_test

import (
	"context"
	"errors"
	"testing"

	"github.com/evaldesk/eval-analytics/internal/elasticsearch"
	"github.com/evaldesk/eval-analytics/internal/elasticsearch/mappings"
	"github.com/evaldesk/eval-analytics/internal/logger"
)

// mockAdminClient implements elasticsearch.IndexAdminClient for tests.
type mockAdminClient struct {
	existsResult bool
	existsErr    error
	createErr    error
	updateErr    error

	createCalls []string
	updateCalls []string
}

func (m *mockAdminClient) IndexExists(_ context.Context, _ string) (bool, error) {
	return m.existsResult, m.existsErr
}

func (m *mockAdminClient) CreateIndex(_ context.Context, indexName string, _ map[string]any) error {
	m.createCalls = append(m.createCalls, indexName)
	return m.createErr
}

func (m *mockAdminClient) UpdateIndexMapping(_ context.Context, indexName string, _ map[string]any) error {
	m.updateCalls = append(m.updateCalls, indexName)
	return m.updateErr
}

func evalRunDefinition() mappings.IndexDefinition {
	return mappings.IndexDefinition{
		Name: mappings.EvalRunIndex,
		Type: mappings.TypeEvalRun,
		Body: mappings.GetEvalRunMapping(1, 1),
	}
}

func TestEnsureIndex_CreatesMissingIndex(t *testing.T) {
	t.Helper()

	client := &mockAdminClient{existsResult: false}
	manager := elasticsearch.NewLifecycleManager(client, logger.Nop())

	created, err := manager.EnsureIndex(context.Background(), evalRunDefinition())
	if err != nil {
		t.Fatalf("EnsureIndex() error = %v", err)
	}

	if !created {
		t.Error("EnsureIndex() created = false, want true")
	}
	if len(client.createCalls) != 1 || client.createCalls[0] != mappings.EvalRunIndex {
		t.Errorf("create calls = %v, want [%s]", client.createCalls, mappings.EvalRunIndex)
	}
	if len(client.updateCalls) != 0 {
		t.Errorf("update calls = %v, want none", client.updateCalls)
	}
}

func TestEnsureIndex_UpdatesExistingIndexMapping(t *testing.T) {
	t.Helper()

	client := &mockAdminClient{existsResult: true}
	manager := elasticsearch.NewLifecycleManager(client, logger.Nop())

	created, err := manager.EnsureIndex(context.Background(), evalRunDefinition())
	if err != nil {
		t.Fatalf("EnsureIndex() error = %v", err)
	}

	if created {
		t.Error("EnsureIndex() created = true, want false")
	}
	if len(client.createCalls) != 0 {
		t.Errorf("create calls = %v, want none", client.createCalls)
	}
	if len(client.updateCalls) != 1 || client.updateCalls[0] != mappings.EvalRunIndex {
		t.Errorf("update calls = %v, want [%s]", client.updateCalls, mappings.EvalRunIndex)
	}
}

func TestEnsureIndex_ExistenceCheckError(t *testing.T) {
	t.Helper()

	client := &mockAdminClient{existsErr: errors.New("connection refused")}
	manager := elasticsearch.NewLifecycleManager(client, logger.Nop())

	_, err := manager.EnsureIndex(context.Background(), evalRunDefinition())
	if err == nil {
		t.Fatal("EnsureIndex() expected error when existence check fails")
	}
	if len(client.createCalls)+len(client.updateCalls) != 0 {
		t.Error("no create or update calls expected after existence check failure")
	}
}

func TestEnsureIndex_CreateError(t *testing.T) {
	t.Helper()

	client := &mockAdminClient{existsResult: false, createErr: errors.New("disk full")}
	manager := elasticsearch.NewLifecycleManager(client, logger.Nop())

	created, err := manager.EnsureIndex(context.Background(), evalRunDefinition())
	if err == nil {
		t.Fatal("EnsureIndex() expected error when create fails")
	}
	if created {
		t.Error("EnsureIndex() created = true, want false on error")
	}
}

func TestEnsureIndex_UpdateMappingError(t *testing.T) {
	t.Helper()

	client := &mockAdminClient{existsResult: true, updateErr: errors.New("mapper_parsing_exception")}
	manager := elasticsearch.NewLifecycleManager(client, logger.Nop())

	_, err := manager.EnsureIndex(context.Background(), evalRunDefinition())
	if err == nil {
		t.Fatal("EnsureIndex() expected error when mapping update fails")
	}
}
