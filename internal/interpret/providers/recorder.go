package providers

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jaxxstorm/landlord/internal/domain"
)

const insertIntentRecordQuery = `
INSERT INTO intent_records (
	id, organization_id, user_id, utterance, intent_type, entities,
	parameters, llm_confidence, service_confidence, candidate_ids, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

// PostgresRecorder is the default IntentRecorder: it appends one row per
// interpret() call to intent_records, the audit trail operators use to
// review what the pipeline parsed and acted on.
type PostgresRecorder struct {
	pool *pgxpool.Pool
}

// NewPostgresRecorder builds a PostgresRecorder over pool.
func NewPostgresRecorder(pool *pgxpool.Pool) *PostgresRecorder {
	return &PostgresRecorder{pool: pool}
}

// Record inserts rec. Entities and parameters are stored as JSONB.
func (r *PostgresRecorder) Record(ctx context.Context, rec *domain.IntentRecord) error {
	entities, err := json.Marshal(rec.ParsedIntent.Entities)
	if err != nil {
		return err
	}
	params, err := json.Marshal(rec.ParsedIntent.Parameters)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, insertIntentRecordQuery,
		rec.ID, rec.TenantID, rec.UserID, rec.Utterance, string(rec.ParsedIntent.IntentType),
		entities, params, rec.LLMConfidence, rec.ServiceConfidence, rec.CandidateIDs, rec.CreatedAt,
	)
	return err
}
