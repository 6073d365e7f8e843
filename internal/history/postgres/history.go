// Package postgres appends readiness evaluations and task analyses to
// their audit-trail tables so a story's or task's scoring history can be
// reconstructed, mirroring the insert-only pattern internal/interpret's
// IntentRecorder uses for intent_records.
package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jaxxstorm/landlord/internal/readiness"
	"github.com/jaxxstorm/landlord/internal/taskanalyzer"
)

const insertReadinessEvaluationQuery = `
INSERT INTO readiness_evaluations (id, story_id, score, is_ready, missing_items, evaluated_at)
VALUES ($1, $2, $3, $4, $5, $6)`

const insertTaskAnalysisQuery = `
INSERT INTO task_analyses (id, task_id, clarity_score, clarity_level, recommendations, summary, analyzed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

// Recorder appends readiness.Evaluation and taskanalyzer.Analysis rows.
type Recorder struct {
	pool *pgxpool.Pool
}

// New builds a Recorder over pool.
func New(pool *pgxpool.Pool) *Recorder {
	return &Recorder{pool: pool}
}

// RecordReadiness inserts one row of eval's history for storyID.
func (r *Recorder) RecordReadiness(ctx context.Context, storyID uuid.UUID, eval readiness.Evaluation) error {
	missing, err := json.Marshal(eval.MissingItems)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, insertReadinessEvaluationQuery,
		uuid.New(), storyID, eval.Score, eval.IsReady, missing, eval.EvaluatedAt)
	return err
}

// RecordAnalysis inserts one row of analysis's history for taskID.
func (r *Recorder) RecordAnalysis(ctx context.Context, taskID uuid.UUID, analysis taskanalyzer.Analysis, analyzedAt time.Time) error {
	recs, err := json.Marshal(analysis.Recommendations)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, insertTaskAnalysisQuery,
		uuid.New(), taskID, analysis.ClarityScore, string(analysis.ClarityLevel), recs, analysis.Summary, analyzedAt)
	return err
}
