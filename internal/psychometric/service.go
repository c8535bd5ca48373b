// internal/psychometric/service.go
package psychometric

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	apperrors "psychometric-workers/internal/common/errors"
	"psychometric-workers/internal/common/logger"
	"psychometric-workers/internal/common/metrics"
)

// ErrNotFound is returned by stores for a missing record.
var ErrNotFound = errors.New("psychometric: not found")

// ==========================
// Collaborators
// ==========================

type GenerateRequest struct {
	Count        int
	Type         AssessmentType
	FocusDomains []string
	UserID       string
}

// Generator produces a fresh assessment. A malformed result is a
// MALFORMED_ASSESSMENT error and is never partially accepted.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (*Assessment, error)
}

// Analyzer turns scores into qualitative analysis. Failures are absorbed by
// the service.
type Analyzer interface {
	Analyze(ctx context.Context, req AnalysisRequest) (*Qualitative, error)
}

type AssessmentStore interface {
	SaveAssessment(ctx context.Context, userID string, a *Assessment) error
	GetAssessment(ctx context.Context, assessmentID string) (*Assessment, error)
	CompleteAssessment(ctx context.Context, assessmentID, userID, evaluationID string) error
}

type EvaluationStore interface {
	SaveEvaluation(ctx context.Context, ev *Evaluation) error
	GetEvaluation(ctx context.Context, evaluationID string) (*Evaluation, error)
	ListEvaluations(ctx context.Context, userID string, limit int) ([]*Evaluation, error)
}

// MergeFunc computes the profile to write given the locked existing row,
// nil on first creation.
type MergeFunc func(existing *Profile) *Profile

type ProfileStore interface {
	GetProfile(ctx context.Context, userID string, t AssessmentType) (*Profile, error)
	// UpsertProfile runs merge against the current row under a lock and
	// writes the result. History is never rewritten by an upsert.
	UpsertProfile(ctx context.Context, userID string, t AssessmentType, merge MergeFunc) (*Profile, bool, error)
	// AppendHistory atomically appends e and returns the new history length.
	AppendHistory(ctx context.Context, userID string, t AssessmentType, e Engagement) (int, error)
}

type UserStore interface {
	MarkAssessed(ctx context.Context, userID string, score float64, at time.Time) error
}

type Store interface {
	AssessmentStore
	EvaluationStore
	ProfileStore
	UserStore
}

type RoleResolver interface {
	ResolveRole(ctx context.Context, userID string) (AssessmentType, error)
}

type EvaluationIndexer interface {
	IndexEvaluation(ctx context.Context, ev *Evaluation) error
}

type ProfilePublisher interface {
	PublishProfileUpdated(ctx context.Context, p *Profile, created bool) error
}

// ==========================
// Service
// ==========================

type Config struct {
	DefaultQuestionCount int
	MinQuestions         int
	MaxQuestions         int
	EvaluationListLimit  int
}

func DefaultConfig() Config {
	return Config{
		DefaultQuestionCount: 20,
		MinQuestions:         5,
		MaxQuestions:         50,
		EvaluationListLimit:  10,
	}
}

type ServiceOption func(*Service)

func WithIndexer(ix EvaluationIndexer) ServiceOption {
	return func(s *Service) { s.indexer = ix }
}

func WithPublisher(p ProfilePublisher) ServiceOption {
	return func(s *Service) { s.publisher = p }
}

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// Service is built once at startup and shared by every worker.
type Service struct {
	cfg       Config
	generator Generator
	analyzer  Analyzer
	store     Store
	roles     RoleResolver
	indexer   EvaluationIndexer
	publisher ProfilePublisher
	logger    logger.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

func NewService(cfg Config, gen Generator, an Analyzer, store Store, roles RoleResolver, log logger.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		cfg:       cfg,
		generator: gen,
		analyzer:  an,
		store:     store,
		roles:     roles,
		logger:    log.WithFields(map[string]interface{}{"component": "psychometric"}),
		tracer:    otel.Tracer("psychometric-workers/internal/psychometric"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Config() Config { return s.cfg }

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "psychometric."+name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// warnings collects non-fatal persistence problems; safe for concurrent use.
type warnings struct {
	mu   sync.Mutex
	list []string
}

func (w *warnings) add(msg string) {
	w.mu.Lock()
	w.list = append(w.list, msg)
	w.mu.Unlock()
}

func (w *warnings) all() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.list...)
}

func (s *Service) persistenceWarning(w *warnings, operation string, err error) {
	metrics.RecordPersistenceWarning(operation)
	s.logger.Warn("persistence failed", map[string]interface{}{"operation": operation, "error": err.Error()})
	w.add(fmt.Sprintf("%s: %v", operation, err))
}

// resolveType picks the explicit type, else the role of the user, else
// entrepreneur.
func (s *Service) resolveType(ctx context.Context, explicit AssessmentType, userID string) AssessmentType {
	if explicit != "" {
		return explicit
	}
	if userID == "" || s.roles == nil {
		return Entrepreneur
	}
	t, err := s.roles.ResolveRole(ctx, userID)
	if err != nil || t == "" {
		if err != nil {
			s.logger.Warn("role resolution failed, assuming entrepreneur", map[string]interface{}{"userId": userID, "error": err.Error()})
		}
		return Entrepreneur
	}
	return t
}

// ==========================
// Generate
// ==========================

type GenerateResult struct {
	Assessment *Assessment
	Warnings   []string
}

func (s *Service) GenerateQuestions(ctx context.Context, req GenerateRequest) (result *GenerateResult, err error) {
	if req.Count == 0 {
		req.Count = s.cfg.DefaultQuestionCount
	}
	if req.Count < s.cfg.MinQuestions || req.Count > s.cfg.MaxQuestions {
		return nil, apperrors.NewInvalidQuestionCountError(req.Count, s.cfg.MinQuestions, s.cfg.MaxQuestions)
	}
	req.Type = s.resolveType(ctx, req.Type, req.UserID)

	ctx, span := s.startSpan(ctx, "GenerateQuestions",
		attribute.Int("questions.requested", req.Count),
		attribute.String("assessment.type", string(req.Type)))
	defer func() { endSpan(span, err) }()

	a, err := s.generator.Generate(ctx, req)
	if err != nil {
		var stdErr *apperrors.StandardError
		if errors.As(err, &stdErr) {
			return nil, stdErr
		}
		return nil, apperrors.NewGenerationFailedError(err)
	}
	if a == nil || len(a.Questions) == 0 {
		return nil, apperrors.NewMalformedAssessmentError("no questions generated")
	}
	if a.AssessmentType == "" {
		a.AssessmentType = req.Type
	}

	w := &warnings{}
	if a.TotalQuestions < req.Count {
		s.logger.Warn("generator returned fewer questions than requested", map[string]interface{}{
			"requested": req.Count, "generated": a.TotalQuestions,
		})
		w.add(fmt.Sprintf("generated %d of %d requested questions", a.TotalQuestions, req.Count))
	}

	if req.UserID != "" {
		if err := s.store.SaveAssessment(ctx, req.UserID, a); err != nil {
			s.persistenceWarning(w, "save assessment", err)
		}
	}

	metrics.RecordAssessmentGenerated(string(a.AssessmentType))
	s.logger.Info("assessment generated", map[string]interface{}{
		"assessmentId": a.AssessmentID, "questions": a.TotalQuestions, "type": string(a.AssessmentType),
	})
	return &GenerateResult{Assessment: a, Warnings: w.all()}, nil
}

// ==========================
// Evaluate
// ==========================

type EvaluateRequest struct {
	Assessment   *Assessment
	AssessmentID string
	Responses    ResponseSet
	UserID       string
	UserName     string
	UserType     AssessmentType
}

type EvaluateResult struct {
	Evaluation *Evaluation
	Skipped    []SkippedResponse
	Warnings   []string
}

// Evaluate scores the responses and attaches qualitative analysis. Nothing
// is persisted here; see RecordEvaluation.
func (s *Service) Evaluate(ctx context.Context, req EvaluateRequest) (result *EvaluateResult, err error) {
	if len(req.Responses) == 0 {
		return nil, apperrors.NewInvalidResponsesError("no responses supplied")
	}

	ctx, span := s.startSpan(ctx, "Evaluate", attribute.Int("responses", len(req.Responses)))
	defer func() { endSpan(span, err) }()

	a := req.Assessment
	if a == nil {
		if a, err = s.loadAssessment(ctx, req.AssessmentID); err != nil {
			return nil, err
		}
	}

	t := req.UserType
	if t == "" {
		t = a.AssessmentType
	}
	t = s.resolveType(ctx, t, req.UserID)
	d := DescriptorFor(t)
	span.SetAttributes(attribute.String("assessment.type", string(t)))

	sheet := ScoreResponses(d.Registry, a, req.Responses)
	for _, sk := range sheet.Skipped {
		metrics.RecordSkippedResponse(string(sk.Reason))
		s.logger.Warn("response skipped", map[string]interface{}{
			"assessmentId": a.AssessmentID, "questionId": sk.QuestionID, "optionId": sk.OptionID, "reason": string(sk.Reason),
		})
	}
	if sheet.IgnoredKeys > 0 {
		s.logger.Debug("ignored score-profile keys outside the registry", map[string]interface{}{"count": sheet.IgnoredKeys})
	}

	agg := AggregateScores(d.Registry, sheet)
	qual, fallback := s.analyze(ctx, d, agg, sheet.Answered)

	ev := &Evaluation{
		EvaluationID:      uuid.NewString(),
		AssessmentID:      a.AssessmentID,
		AssessmentType:    t,
		UserID:            req.UserID,
		UserName:          req.UserName,
		DimensionScores:   agg.DimensionScores,
		OverallScore:      agg.OverallScore,
		QuestionsAnswered: agg.QuestionsAnswered,
		TotalQuestions:    agg.TotalQuestions,
		CompletionRate:    agg.CompletionRate,
		AnsweredDetails:   sheet.Answered,
		Qualitative:       qual,
		AnalysisFallback:  fallback,
		EvaluatedAt:       s.now().UTC(),
		SchemaVersion:     SchemaVersion,
	}
	if ev.AnsweredDetails == nil {
		ev.AnsweredDetails = []AnsweredQuestion{}
	}

	metrics.RecordEvaluation(string(t), fallback, ev.OverallScore)
	s.logger.Info("responses evaluated", map[string]interface{}{
		"evaluationId": ev.EvaluationID, "assessmentId": ev.AssessmentID,
		"overallScore": ev.OverallScore, "completionRate": ev.CompletionRate,
		"answered": ev.QuestionsAnswered, "skipped": len(sheet.Skipped), "analysisFallback": fallback,
	})

	w := &warnings{}
	for _, sk := range sheet.Skipped {
		w.add(fmt.Sprintf("skipped response %s=%s: %s", sk.QuestionID, sk.OptionID, sk.Reason))
	}
	return &EvaluateResult{Evaluation: ev, Skipped: sheet.Skipped, Warnings: w.all()}, nil
}

func (s *Service) loadAssessment(ctx context.Context, assessmentID string) (*Assessment, error) {
	if assessmentID == "" {
		return nil, apperrors.NewAssessmentNotFoundError("no assessment or assessment id supplied")
	}
	a, err := s.store.GetAssessment(ctx, assessmentID)
	switch {
	case errors.Is(err, ErrNotFound):
		return nil, apperrors.NewAssessmentNotFoundError(assessmentID)
	case err != nil:
		return nil, apperrors.NewPersistenceError("load assessment", err)
	}
	return a, nil
}

// analyze never fails: analyzer errors become the descriptor's fallback.
func (s *Service) analyze(ctx context.Context, d *ProfileDescriptor, agg Aggregate, answered []AnsweredQuestion) (Qualitative, bool) {
	if s.analyzer != nil {
		q, err := s.analyzer.Analyze(ctx, AnalysisRequest{
			Type:            d.Type,
			Registry:        d.Registry,
			DimensionScores: agg.DimensionScores,
			OverallScore:    agg.OverallScore,
			Answered:        answered,
		})
		if err == nil && q != nil {
			return *q, false
		}
		if err != nil {
			s.logger.Warn("qualitative analysis failed, using fallback", map[string]interface{}{"error": err.Error(), "type": string(d.Type)})
		}
	}
	return d.Fallback(agg.OverallScore), true
}

// RecordEvaluation persists an evaluation and its side effects concurrently.
// Every failure is downgraded to a warning.
func (s *Service) RecordEvaluation(ctx context.Context, ev *Evaluation) []string {
	ctx, span := s.startSpan(ctx, "RecordEvaluation", attribute.String("evaluation.id", ev.EvaluationID))
	defer span.End()

	w := &warnings{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.store.SaveEvaluation(gctx, ev); err != nil {
			s.persistenceWarning(w, "save evaluation", err)
		}
		return nil
	})

	if ev.UserID != "" {
		g.Go(func() error {
			err := s.store.CompleteAssessment(gctx, ev.AssessmentID, ev.UserID, ev.EvaluationID)
			if err != nil && !errors.Is(err, ErrNotFound) {
				s.persistenceWarning(w, "complete assessment", err)
			}
			return nil
		})
		g.Go(func() error {
			err := s.store.MarkAssessed(gctx, ev.UserID, round(ev.OverallScore, 2), ev.EvaluatedAt)
			if errors.Is(err, ErrNotFound) {
				s.logger.Warn("user not found while marking psychometric status", map[string]interface{}{"userId": ev.UserID})
			} else if err != nil {
				s.persistenceWarning(w, "mark user assessed", err)
			}
			return nil
		})
	}

	if s.indexer != nil {
		g.Go(func() error {
			if err := s.indexer.IndexEvaluation(gctx, ev); err != nil {
				s.persistenceWarning(w, "index evaluation", err)
			}
			return nil
		})
	}

	_ = g.Wait()
	return w.all()
}

// ==========================
// Profiles
// ==========================

type ProfileResult struct {
	Profile  *Profile
	Created  bool
	Warnings []string
}

// SynthesizeProfile merges ev into the user's profile of the given type
// (ev's type when empty). A failed write still returns the computed profile.
func (s *Service) SynthesizeProfile(ctx context.Context, userID string, ev *Evaluation, userType AssessmentType) (result *ProfileResult, err error) {
	if userID == "" {
		return nil, apperrors.NewMissingUserError("synthesize profile")
	}
	t := userType
	if t == "" {
		t = ev.AssessmentType
	}
	t = s.resolveType(ctx, t, userID)
	d := DescriptorFor(t)

	ctx, span := s.startSpan(ctx, "SynthesizeProfile",
		attribute.String("user.id", userID), attribute.String("profile.type", string(t)))
	defer func() { endSpan(span, err) }()

	now := s.now()
	merge := func(existing *Profile) *Profile {
		return Synthesize(d, userID, ev, existing, now)
	}

	w := &warnings{}
	p, created, err := s.store.UpsertProfile(ctx, userID, t, merge)
	if err != nil {
		s.persistenceWarning(w, "upsert profile", err)
		p, created = merge(nil), false
	} else if s.publisher != nil {
		if err := s.publisher.PublishProfileUpdated(ctx, p, created); err != nil {
			s.persistenceWarning(w, "publish profile event", err)
		}
	}

	s.logger.Info("profile synthesized", map[string]interface{}{
		"userId": userID, "type": string(t), "created": created, "completeness": p.ProfileCompleteness,
	})
	return &ProfileResult{Profile: p, Created: created, Warnings: w.all()}, nil
}

// SynthesizeFromEvaluation loads a stored evaluation and synthesizes from it.
func (s *Service) SynthesizeFromEvaluation(ctx context.Context, userID, evaluationID string, userType AssessmentType) (*ProfileResult, error) {
	ev, err := s.GetEvaluation(ctx, evaluationID)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		userID = ev.UserID
	}
	return s.SynthesizeProfile(ctx, userID, ev, userType)
}

// ProjectValidationContext returns the entrepreneur view, or the no-profile
// sentinel when the user has none.
func (s *Service) ProjectValidationContext(ctx context.Context, userID string) (vc *ValidationContext, err error) {
	if userID == "" {
		return nil, apperrors.NewMissingUserError("validation context")
	}
	ctx, span := s.startSpan(ctx, "ProjectValidationContext", attribute.String("user.id", userID))
	defer func() { endSpan(span, err) }()

	p, err := s.store.GetProfile(ctx, userID, Entrepreneur)
	switch {
	case errors.Is(err, ErrNotFound):
		return NoProfileContext(), nil
	case err != nil:
		return nil, apperrors.NewPersistenceError("load profile", err)
	}
	return Project(EntrepreneurRegistry(), p), nil
}

// RecordEngagement appends to the profile's history and returns its new
// length.
func (s *Service) RecordEngagement(ctx context.Context, userID string, t AssessmentType, e Engagement) (n int, err error) {
	if userID == "" {
		return 0, apperrors.NewMissingUserError("record engagement")
	}
	t = s.resolveType(ctx, t, userID)
	ctx, span := s.startSpan(ctx, "RecordEngagement", attribute.String("user.id", userID), attribute.String("profile.type", string(t)))
	defer func() { endSpan(span, err) }()

	entry := DescriptorFor(t).NewEngagement(e, s.now())
	n, err = s.store.AppendHistory(ctx, userID, t, entry)
	switch {
	case errors.Is(err, ErrNotFound):
		return 0, apperrors.NewProfileNotFoundError(userID)
	case err != nil:
		return 0, apperrors.NewPersistenceError("append history", err)
	}
	s.logger.Info("engagement recorded", map[string]interface{}{"userId": userID, "type": string(t), "historyLength": n})
	return n, nil
}

func (s *Service) GetProfile(ctx context.Context, userID string, t AssessmentType) (*Profile, error) {
	if userID == "" {
		return nil, apperrors.NewMissingUserError("get profile")
	}
	t = s.resolveType(ctx, t, userID)
	p, err := s.store.GetProfile(ctx, userID, t)
	switch {
	case errors.Is(err, ErrNotFound):
		return nil, apperrors.NewProfileNotFoundError(userID)
	case err != nil:
		return nil, apperrors.NewPersistenceError("load profile", err)
	}
	return p, nil
}

func (s *Service) GetEvaluation(ctx context.Context, evaluationID string) (*Evaluation, error) {
	if evaluationID == "" {
		return nil, apperrors.NewEvaluationNotFoundError("no evaluation id supplied")
	}
	ev, err := s.store.GetEvaluation(ctx, evaluationID)
	switch {
	case errors.Is(err, ErrNotFound):
		return nil, apperrors.NewEvaluationNotFoundError(evaluationID)
	case err != nil:
		return nil, apperrors.NewPersistenceError("load evaluation", err)
	}
	return ev, nil
}

// ListEvaluations returns the user's evaluations, newest first.
func (s *Service) ListEvaluations(ctx context.Context, userID string, limit int) ([]*Evaluation, error) {
	if userID == "" {
		return nil, apperrors.NewMissingUserError("list evaluations")
	}
	if limit <= 0 {
		limit = s.cfg.EvaluationListLimit
	}
	evs, err := s.store.ListEvaluations(ctx, userID, limit)
	if err != nil {
		return nil, apperrors.NewPersistenceError("list evaluations", err)
	}
	if evs == nil {
		evs = []*Evaluation{}
	}
	return evs, nil
}
