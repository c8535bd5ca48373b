// Package store persists assessments, evaluations and profiles in Postgres,
// with Redis, LRU and Elasticsearch layers around it.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"psychometric-workers/internal/common/database"
	"psychometric-workers/internal/common/logger"
	"psychometric-workers/internal/psychometric"
)

const (
	insertAssessmentSQL = `
		INSERT INTO psychometric_assessments
			(assessment_id, user_id, assessment_type, questions_data, status, generated_at, updated_at)
		VALUES ($1, $2, $3, $4, 'pending', $5, $6)
		ON CONFLICT (assessment_id, user_id) DO UPDATE
			SET questions_data = EXCLUDED.questions_data,
			    assessment_type = EXCLUDED.assessment_type,
			    status = 'pending',
			    evaluation_id = NULL,
			    updated_at = EXCLUDED.updated_at`

	selectAssessmentSQL = `
		SELECT questions_data FROM psychometric_assessments
		WHERE assessment_id = $1
		ORDER BY generated_at DESC
		LIMIT 1`

	completeAssessmentSQL = `
		UPDATE psychometric_assessments
		SET status = 'completed', evaluation_id = $3, updated_at = $4
		WHERE assessment_id = $1 AND user_id = $2`

	insertEvaluationSQL = `
		INSERT INTO psychometric_evaluations
			(evaluation_id, user_id, user_name, assessment_id, assessment_type,
			 overall_score, completion_rate, questions_answered, evaluation, evaluated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (evaluation_id) DO NOTHING`

	selectEvaluationSQL = `SELECT evaluation FROM psychometric_evaluations WHERE evaluation_id = $1`

	listEvaluationsSQL = `
		SELECT evaluation FROM psychometric_evaluations
		WHERE user_id = $1
		ORDER BY evaluated_at DESC
		LIMIT $2`

	selectProfileSQL = `
		SELECT profile, history, created_at, last_updated
		FROM psychometric_profiles
		WHERE user_id = $1 AND profile_type = $2`

	insertProfileSQL = `
		INSERT INTO psychometric_profiles (user_id, profile_type, profile, history, created_at, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, profile_type) DO NOTHING`

	updateProfileSQL = `
		UPDATE psychometric_profiles
		SET profile = $3, last_updated = $4
		WHERE user_id = $1 AND profile_type = $2`

	appendHistorySQL = `
		UPDATE psychometric_profiles
		SET history = history || jsonb_build_array($3::jsonb), last_updated = $4
		WHERE user_id = $1 AND profile_type = $2
		RETURNING jsonb_array_length(history)`

	markAssessedSQL = `
		UPDATE users
		SET psychometric_done = true, psychometric_score = $2, psychometric_completed_at = $3
		WHERE id = $1`
)

// PostgresStore implements psychometric.Store.
type PostgresStore struct {
	db     *database.PostgresClient
	logger logger.Logger
	now    func() time.Time
}

var _ psychometric.Store = (*PostgresStore)(nil)

func NewPostgresStore(db *database.PostgresClient, log logger.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "postgres-store"}),
		now:    time.Now,
	}
}

// ==========================
// Assessments
// ==========================

func (s *PostgresStore) SaveAssessment(ctx context.Context, userID string, a *psychometric.Assessment) error {
	doc, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal assessment: %w", err)
	}
	generatedAt := a.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = s.now().UTC()
	}
	_, err = s.db.DB.ExecContext(ctx, insertAssessmentSQL,
		a.AssessmentID, userID, string(a.AssessmentType), doc, generatedAt, s.now().UTC())
	if err != nil {
		return fmt.Errorf("insert assessment: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetAssessment(ctx context.Context, assessmentID string) (*psychometric.Assessment, error) {
	var doc []byte
	err := s.db.DB.QueryRowContext(ctx, selectAssessmentSQL, assessmentID).Scan(&doc)
	if err != nil {
		return nil, notFound(err)
	}
	var a psychometric.Assessment
	if err := json.Unmarshal(doc, &a); err != nil {
		return nil, fmt.Errorf("decode assessment %s: %w", assessmentID, err)
	}
	return &a, nil
}

func (s *PostgresStore) CompleteAssessment(ctx context.Context, assessmentID, userID, evaluationID string) error {
	res, err := s.db.DB.ExecContext(ctx, completeAssessmentSQL, assessmentID, userID, evaluationID, s.now().UTC())
	if err != nil {
		return fmt.Errorf("complete assessment: %w", err)
	}
	return requireRow(res)
}

// ==========================
// Evaluations
// ==========================

func (s *PostgresStore) SaveEvaluation(ctx context.Context, ev *psychometric.Evaluation) error {
	doc, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal evaluation: %w", err)
	}
	_, err = s.db.DB.ExecContext(ctx, insertEvaluationSQL,
		ev.EvaluationID, nullString(ev.UserID), nullString(ev.UserName), ev.AssessmentID, string(ev.AssessmentType),
		ev.OverallScore, ev.CompletionRate, ev.QuestionsAnswered, doc, ev.EvaluatedAt)
	if err != nil {
		return fmt.Errorf("insert evaluation: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetEvaluation(ctx context.Context, evaluationID string) (*psychometric.Evaluation, error) {
	var doc []byte
	if err := s.db.DB.QueryRowContext(ctx, selectEvaluationSQL, evaluationID).Scan(&doc); err != nil {
		return nil, notFound(err)
	}
	return decodeEvaluation(doc)
}

func (s *PostgresStore) ListEvaluations(ctx context.Context, userID string, limit int) ([]*psychometric.Evaluation, error) {
	rows, err := s.db.DB.QueryContext(ctx, listEvaluationsSQL, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	defer rows.Close()

	evs := []*psychometric.Evaluation{}
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		ev, err := decodeEvaluation(doc)
		if err != nil {
			return nil, err
		}
		evs = append(evs, ev)
	}
	return evs, rows.Err()
}

func decodeEvaluation(doc []byte) (*psychometric.Evaluation, error) {
	var ev psychometric.Evaluation
	if err := json.Unmarshal(doc, &ev); err != nil {
		return nil, fmt.Errorf("decode evaluation: %w", err)
	}
	return &ev, nil
}

// ==========================
// Profiles
// ==========================

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProfile(row rowScanner) (*psychometric.Profile, error) {
	var (
		doc, history           []byte
		createdAt, lastUpdated time.Time
	)
	if err := row.Scan(&doc, &history, &createdAt, &lastUpdated); err != nil {
		return nil, notFound(err)
	}
	var p psychometric.Profile
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	p.History = []psychometric.Engagement{}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &p.History); err != nil {
			return nil, fmt.Errorf("decode profile history: %w", err)
		}
	}
	p.CreatedAt, p.LastUpdated = createdAt.UTC(), lastUpdated.UTC()
	return &p, nil
}

// profileDocument is the profile column: everything except history, which
// lives in its own column so appends never rewrite the profile.
func profileDocument(p *psychometric.Profile) ([]byte, error) {
	cp := *p
	cp.History = nil
	return json.Marshal(&cp)
}

func (s *PostgresStore) GetProfile(ctx context.Context, userID string, t psychometric.AssessmentType) (*psychometric.Profile, error) {
	return scanProfile(s.db.DB.QueryRowContext(ctx, selectProfileSQL, userID, string(t)))
}

// UpsertProfile locks the row, merges and writes back in one transaction. A
// concurrent first insert loses ON CONFLICT and retries as an update.
func (s *PostgresStore) UpsertProfile(ctx context.Context, userID string, t psychometric.AssessmentType, merge psychometric.MergeFunc) (*psychometric.Profile, bool, error) {
	var (
		out     *psychometric.Profile
		created bool
	)
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		existing, err := scanProfile(tx.QueryRowContext(ctx, selectProfileSQL+" FOR UPDATE", userID, string(t)))
		if err != nil && !errors.Is(err, psychometric.ErrNotFound) {
			return err
		}

		if existing == nil {
			p := merge(nil)
			inserted, err := s.insertProfile(ctx, tx, userID, t, p)
			if err != nil {
				return err
			}
			if inserted {
				out, created = p, true
				return nil
			}
			s.logger.Debug("concurrent profile insert, retrying as update", map[string]interface{}{"userId": userID, "type": string(t)})
			if existing, err = scanProfile(tx.QueryRowContext(ctx, selectProfileSQL+" FOR UPDATE", userID, string(t))); err != nil {
				return err
			}
		}

		p := merge(existing)
		p.History = existing.History
		doc, err := profileDocument(p)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, updateProfileSQL, userID, string(t), doc, p.LastUpdated); err != nil {
			return fmt.Errorf("update profile: %w", err)
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, created, nil
}

func (s *PostgresStore) insertProfile(ctx context.Context, tx *sql.Tx, userID string, t psychometric.AssessmentType, p *psychometric.Profile) (bool, error) {
	doc, err := profileDocument(p)
	if err != nil {
		return false, err
	}
	history := p.History
	if history == nil {
		history = []psychometric.Engagement{}
	}
	hist, err := json.Marshal(history)
	if err != nil {
		return false, err
	}
	res, err := tx.ExecContext(ctx, insertProfileSQL, userID, string(t), doc, hist, p.CreatedAt, p.LastUpdated)
	if err != nil {
		return false, fmt.Errorf("insert profile: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *PostgresStore) AppendHistory(ctx context.Context, userID string, t psychometric.AssessmentType, e psychometric.Engagement) (int, error) {
	entry, err := json.Marshal(e)
	if err != nil {
		return 0, err
	}
	at := e.RecordedAt
	if at.IsZero() {
		at = s.now().UTC()
	}
	var n int
	err = s.db.DB.QueryRowContext(ctx, appendHistorySQL, userID, string(t), string(entry), at).Scan(&n)
	if err != nil {
		return 0, notFound(err)
	}
	return n, nil
}

// ==========================
// Users
// ==========================

func (s *PostgresStore) MarkAssessed(ctx context.Context, userID string, score float64, at time.Time) error {
	res, err := s.db.DB.ExecContext(ctx, markAssessedSQL, userID, score, at)
	if err != nil {
		return fmt.Errorf("mark assessed: %w", err)
	}
	return requireRow(res)
}

// ==========================
// Helpers
// ==========================

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return psychometric.ErrNotFound
	}
	return err
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return psychometric.ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
