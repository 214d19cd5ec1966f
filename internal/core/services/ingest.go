package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/weave/internal/core/domain"
	"github.com/custodia-labs/weave/internal/core/ports/driven"
	"github.com/custodia-labs/weave/internal/logger"
)

// ingestTimeout bounds one background ingestion, embedding call included.
const ingestTimeout = 2 * time.Minute

// IngestFailureSink receives failures from detached ingestion tasks.
// The default sink logs a warning; tests inject their own.
type IngestFailureSink func(tenant domain.Tenant, connector domain.ConnectorType, err error)

// Ingestor feeds fetched items into tenant knowledge indexes.
//
// Ingestion runs detached from the fetch request so the caller gets its
// items without waiting on embedding calls, but the task is tracked: its
// failure is delivered to the sink, never silently dropped, and Wait
// blocks until in-flight tasks drain.
type Ingestor struct {
	knowledge driven.KnowledgeStore
	sink      IngestFailureSink
	wg        sync.WaitGroup
}

// NewIngestor creates an ingestor. A nil sink falls back to logging.
func NewIngestor(knowledge driven.KnowledgeStore, sink IngestFailureSink) *Ingestor {
	if sink == nil {
		sink = func(tenant domain.Tenant, connector domain.ConnectorType, err error) {
			logger.Warn("ingestion failed: connector=%s org=%s user=%s: %v",
				connector, tenant.OrgID, tenant.UserID, err)
		}
	}
	return &Ingestor{knowledge: knowledge, sink: sink}
}

// IngestItems schedules a detached insertion of the items into the
// tenant's knowledge index and returns immediately. The whole batch
// becomes one document, serialised as JSON, tagged with the connector.
func (i *Ingestor) IngestItems(tenant domain.Tenant, connector domain.ConnectorType, items []domain.Item) {
	if i.knowledge == nil || len(items) == 0 {
		return
	}
	i.wg.Add(1)
	go func() {
		defer i.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
		defer cancel()
		if err := i.ingest(ctx, tenant, connector, items); err != nil {
			i.sink(tenant, connector, err)
		}
	}()
}

func (i *Ingestor) ingest(ctx context.Context, tenant domain.Tenant, connector domain.ConnectorType, items []domain.Item) error {
	text, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("serialise items: %w", err)
	}
	index, err := i.knowledge.EnsureIndex(ctx, tenant)
	if err != nil {
		return fmt.Errorf("ensure index: %w", err)
	}
	metadata := map[string]string{"integration_type": connector.String()}
	if err := index.Insert(ctx, string(text), metadata); err != nil {
		return fmt.Errorf("insert items: %w", err)
	}
	logger.Debug("ingested %d items: connector=%s org=%s user=%s",
		len(items), connector, tenant.OrgID, tenant.UserID)
	return nil
}

// Wait blocks until all in-flight ingestion tasks complete.
// Used on shutdown and in tests.
func (i *Ingestor) Wait() {
	i.wg.Wait()
}
