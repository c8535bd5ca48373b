// Package psychometrictest provides in-memory collaborators for tests of the
// psychometric service and the workers built on it.
package psychometrictest

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"psychometric-workers/internal/psychometric"
)

type profileKey struct {
	userID string
	t      psychometric.AssessmentType
}

type storedAssessment struct {
	userID       string
	status       psychometric.AssessmentStatus
	evaluationID string
	doc          []byte
}

type UserStatus struct {
	Done        bool
	Score       float64
	CompletedAt time.Time
}

// MemoryStore is a goroutine-safe psychometric.Store. Values are stored as
// JSON so callers never share memory with the store.
type MemoryStore struct {
	mu          sync.Mutex
	assessments map[string]*storedAssessment
	evaluations map[string][]byte
	evalOrder   []string
	profiles    map[profileKey][]byte
	users       map[string]*UserStatus

	// Err, when set, is returned by every write.
	Err error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		assessments: map[string]*storedAssessment{},
		evaluations: map[string][]byte{},
		profiles:    map[profileKey][]byte{},
		users:       map[string]*UserStatus{},
	}
}

// AddUser registers a user so MarkAssessed succeeds for it.
func (m *MemoryStore) AddUser(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[userID] = &UserStatus{}
}

func (m *MemoryStore) User(userID string) (UserStatus, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return UserStatus{}, false
	}
	return *u, true
}

func (m *MemoryStore) AssessmentStatus(assessmentID string) (psychometric.AssessmentStatus, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assessments[assessmentID]
	if !ok {
		return "", ""
	}
	return a.status, a.evaluationID
}

func (m *MemoryStore) SaveAssessment(_ context.Context, userID string, a *psychometric.Assessment) error {
	if m.Err != nil {
		return m.Err
	}
	doc, err := json.Marshal(a)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assessments[a.AssessmentID] = &storedAssessment{userID: userID, status: psychometric.StatusPending, doc: doc}
	return nil
}

func (m *MemoryStore) GetAssessment(_ context.Context, assessmentID string) (*psychometric.Assessment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.assessments[assessmentID]
	if !ok {
		return nil, psychometric.ErrNotFound
	}
	var a psychometric.Assessment
	if err := json.Unmarshal(s.doc, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (m *MemoryStore) CompleteAssessment(_ context.Context, assessmentID, userID, evaluationID string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.assessments[assessmentID]
	if !ok || s.userID != userID {
		return psychometric.ErrNotFound
	}
	s.status = psychometric.StatusCompleted
	s.evaluationID = evaluationID
	return nil
}

func (m *MemoryStore) SaveEvaluation(_ context.Context, ev *psychometric.Evaluation) error {
	if m.Err != nil {
		return m.Err
	}
	doc, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.evaluations[ev.EvaluationID]; !exists {
		m.evalOrder = append(m.evalOrder, ev.EvaluationID)
	}
	m.evaluations[ev.EvaluationID] = doc
	return nil
}

func (m *MemoryStore) GetEvaluation(_ context.Context, evaluationID string) (*psychometric.Evaluation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.evaluations[evaluationID]
	if !ok {
		return nil, psychometric.ErrNotFound
	}
	var ev psychometric.Evaluation
	if err := json.Unmarshal(doc, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

func (m *MemoryStore) ListEvaluations(ctx context.Context, userID string, limit int) ([]*psychometric.Evaluation, error) {
	m.mu.Lock()
	ids := append([]string(nil), m.evalOrder...)
	m.mu.Unlock()

	var out []*psychometric.Evaluation
	for _, id := range ids {
		ev, err := m.GetEvaluation(ctx, id)
		if err != nil {
			return nil, err
		}
		if ev.UserID == userID {
			out = append(out, ev)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].EvaluatedAt.After(out[j].EvaluatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) GetProfile(_ context.Context, userID string, t psychometric.AssessmentType) (*psychometric.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profileLocked(profileKey{userID, t})
}

func (m *MemoryStore) profileLocked(k profileKey) (*psychometric.Profile, error) {
	doc, ok := m.profiles[k]
	if !ok {
		return nil, psychometric.ErrNotFound
	}
	var p psychometric.Profile
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpsertProfile holds the store lock across read, merge and write, which is
// the in-memory equivalent of SELECT ... FOR UPDATE.
func (m *MemoryStore) UpsertProfile(_ context.Context, userID string, t psychometric.AssessmentType, merge psychometric.MergeFunc) (*psychometric.Profile, bool, error) {
	if m.Err != nil {
		return nil, false, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	k := profileKey{userID, t}
	existing, err := m.profileLocked(k)
	created := err == psychometric.ErrNotFound
	if err != nil && !created {
		return nil, false, err
	}

	p := merge(existing)
	if existing != nil {
		p.History = existing.History
	}
	doc, err := json.Marshal(p)
	if err != nil {
		return nil, false, err
	}
	m.profiles[k] = doc
	return p, created, nil
}

func (m *MemoryStore) AppendHistory(_ context.Context, userID string, t psychometric.AssessmentType, e psychometric.Engagement) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	k := profileKey{userID, t}
	p, err := m.profileLocked(k)
	if err != nil {
		return 0, err
	}
	p.History = append(p.History, e)
	p.LastUpdated = e.RecordedAt
	doc, err := json.Marshal(p)
	if err != nil {
		return 0, err
	}
	m.profiles[k] = doc
	return len(p.History), nil
}

func (m *MemoryStore) MarkAssessed(_ context.Context, userID string, score float64, at time.Time) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return psychometric.ErrNotFound
	}
	u.Done, u.Score, u.CompletedAt = true, score, at
	return nil
}
