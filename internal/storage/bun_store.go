// Package storage implements the optional workflow-definition store
// (SPEC_FULL §2 row 11): persistence for Definitions only, never
// execution state, which spec §1/§5 keeps strictly in-memory for the
// life of the process. Grounded on the teacher's factory.go
// (NewPostgresStorage(dsn) -> storage.NewBunStore(dsn) + InitSchema)
// using its direct dependencies github.com/uptrace/bun, pgdialect and
// pgdriver.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/flowforge/dagflow/internal/domain"
)

// workflowRow is the bun model backing the workflow_definitions table.
type workflowRow struct {
	bun.BaseModel `bun:"table:workflow_definitions"`

	WorkflowID string    `bun:"workflow_id,pk"`
	Definition string    `bun:"definition"` // JSON-encoded domain.Definition
	CreatedAt  time.Time `bun:"created_at,nullzero,default:current_timestamp"`
	UpdatedAt  time.Time `bun:"updated_at,nullzero,default:current_timestamp"`
}

// BunStore persists workflow Definitions to Postgres via bun.
type BunStore struct {
	db *bun.DB
}

// NewBunStore opens a connection pool against dsn (BUN_DSN) and wraps
// it with bun's Postgres dialect.
func NewBunStore(dsn string) *BunStore {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	return &BunStore{db: db}
}

// InitSchema creates the backing table if it does not already exist.
func (s *BunStore) InitSchema(ctx context.Context) error {
	_, err := s.db.NewCreateTable().Model((*workflowRow)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return fmt.Errorf("storage: init schema: %w", err)
	}
	return nil
}

// Save upserts a workflow's definition.
func (s *BunStore) Save(ctx context.Context, workflowID string, def domain.Definition) error {
	encoded, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("storage: encode definition: %w", err)
	}
	row := &workflowRow{WorkflowID: workflowID, Definition: string(encoded), UpdatedAt: time.Now().UTC()}
	_, err = s.db.NewInsert().
		Model(row).
		On("CONFLICT (workflow_id) DO UPDATE").
		Set("definition = EXCLUDED.definition").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("storage: save definition: %w", err)
	}
	return nil
}

// Get loads a workflow's definition by id.
func (s *BunStore) Get(ctx context.Context, workflowID string) (domain.Definition, error) {
	row := new(workflowRow)
	err := s.db.NewSelect().Model(row).Where("workflow_id = ?", workflowID).Scan(ctx)
	if err != nil {
		return domain.Definition{}, fmt.Errorf("storage: get definition: %w", err)
	}
	var def domain.Definition
	if err := json.Unmarshal([]byte(row.Definition), &def); err != nil {
		return domain.Definition{}, fmt.Errorf("storage: decode definition: %w", err)
	}
	return def, nil
}

// Delete removes a workflow's stored definition.
func (s *BunStore) Delete(ctx context.Context, workflowID string) error {
	_, err := s.db.NewDelete().Model((*workflowRow)(nil)).Where("workflow_id = ?", workflowID).Exec(ctx)
	if err != nil {
		return fmt.Errorf("storage: delete definition: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *BunStore) Close() error {
	return s.db.Close()
}
