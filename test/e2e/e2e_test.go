// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psychometric-workers/internal/common/camunda"
	"psychometric-workers/internal/common/config"
	"psychometric-workers/internal/common/database"
	"psychometric-workers/internal/common/logger"
	"psychometric-workers/internal/psychometric"
	"psychometric-workers/internal/psychometric/psychometrictest"
	"psychometric-workers/internal/store"

	er "psychometric-workers/internal/workers/psychometric/evaluate-responses"
	ga "psychometric-workers/internal/workers/psychometric/generate-assessment"
	gp "psychometric-workers/internal/workers/psychometric/get-profile"
	qe "psychometric-workers/internal/workers/psychometric/query-evaluations"
	re "psychometric-workers/internal/workers/psychometric/record-engagement"
	vc "psychometric-workers/internal/workers/psychometric/validation-context"
)

// Runs against the docker-compose stack (Postgres, Redis, optional
// Elasticsearch and Zeebe). The text-generation service is stubbed.
const enableEnv = "PSYCHOMETRIC_E2E"

type env struct {
	cfg     *config.Config
	pg      *database.PostgresClient
	rdb     *database.RedisClient
	service *psychometric.Service
	log     logger.Logger
}

func setup(t *testing.T) *env {
	t.Helper()
	if os.Getenv(enableEnv) == "" {
		t.Skipf("set %s=1 to run against live services", enableEnv)
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	// 🔧 FORCE LOCALHOST FOR E2E TESTS
	cfg.Database.Postgres.Host = "localhost"
	cfg.Database.Redis.Address = "localhost:6379"

	ctx := context.Background()
	log := logger.NewTestLogger(t)

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err, "❌ PostgreSQL connection failed")
	require.NoError(t, pg.Ping(ctx), "❌ PostgreSQL ping failed")
	require.NoError(t, pg.Migrate(ctx), "❌ migrations failed")
	t.Cleanup(func() { pg.Close() })
	t.Log("✅ PostgreSQL connected")

	rdb := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, rdb.Ping(ctx), "❌ Redis ping failed")
	t.Cleanup(func() { rdb.Close() })
	t.Log("✅ Redis connected")

	cached, err := store.NewCachedStore(store.NewPostgresStore(pg, log), rdb.Client, 64, time.Minute, log)
	require.NoError(t, err)

	var opts []psychometric.ServiceOption
	if cfg.Database.Elasticsearch.Enabled {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		require.NoError(t, err)
		require.NoError(t, es.Ping(ctx), "❌ Elasticsearch ping failed")
		ix := store.NewEvaluationIndexer(es, cfg.Database.Elasticsearch.EvaluationsIndex)
		require.NoError(t, ix.EnsureIndex(ctx))
		opts = append(opts, psychometric.WithIndexer(ix))
		t.Log("✅ Elasticsearch connected")
	}

	svc := psychometric.NewService(psychometric.DefaultConfig(),
		&psychometrictest.StubGenerator{},
		&psychometrictest.StubAnalyzer{Result: psychometrictest.RichAnalysis()},
		cached,
		store.NewCachedRoles(store.NewUserRoles(pg), rdb.Client, time.Minute, log),
		log,
		opts...,
	)

	return &env{cfg: cfg, pg: pg, rdb: rdb, service: svc, log: log}
}

func TestZeebeConnectivity(t *testing.T) {
	e := setup(t)

	client, err := camunda.NewClientWithConfig(camunda.ConfigFrom(e.cfg.Camunda))
	require.NoError(t, err, "❌ Zeebe topology request failed")
	defer client.Close()
	t.Log("✅ Zeebe connected")
}

func TestEntrepreneurJourney(t *testing.T) {
	e := setup(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	wc := config.WorkerConfig{}
	userID := "e2e-" + uuid.NewString()

	// 1. generate
	gen, err := ga.NewHandler(ga.LoadConfig(wc), e.service, e.log).Execute(ctx, &ga.Input{NumQuestions: 10, UserID: userID})
	require.NoError(t, err)
	require.Equal(t, 10, gen.TotalQuestions)
	assert.Empty(t, gen.Warnings)
	t.Logf("📄 assessment %s generated", gen.AssessmentID)

	// 2. evaluate by assessment id, loading the stored questions
	responses := map[string]string{}
	for _, q := range gen.QuestionsData.Questions {
		responses[q.QuestionID] = "A"
	}
	ev, err := er.NewHandler(er.LoadConfig(wc), e.service, e.log).Execute(ctx, &er.Input{
		AssessmentID: gen.AssessmentID,
		Responses:    responses,
		UserID:       userID,
		UserName:     "E2E Founder",
	})
	require.NoError(t, err)
	assert.Empty(t, ev.Warnings)
	assert.True(t, ev.ProfileCreated)
	assert.Equal(t, 100.0, ev.CompletionRate)

	// 3. validation context
	ctxOut, err := vc.NewHandler(vc.LoadConfig(wc), e.service, e.log).Execute(ctx, &vc.Input{UserID: userID})
	require.NoError(t, err)
	require.True(t, ctxOut.HasProfile)
	assert.Equal(t, "Very High", ctxOut.PsychometricContext.RiskTolerance)
	assert.Equal(t, "E2E Founder", ctxOut.PsychometricContext.UserName)

	// 4. record an idea validation
	score := 7.2
	rec, err := re.NewHandler(re.LoadConfig(wc), e.service, e.log).Execute(ctx, &re.Input{
		UserID: userID,
		Engagement: re.EngagementInput{
			IdeaName:          "Cloud kitchen",
			ReportID:          "rep-" + uuid.NewString(),
			OverallScore:      &score,
			ValidationOutcome: "GO",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, rec.HistoryLength)

	// 5. read back
	prof, err := gp.NewHandler(gp.LoadConfig(wc), e.service, e.log).Execute(ctx, &gp.Input{UserID: userID})
	require.NoError(t, err)
	require.True(t, prof.Found)
	assert.Equal(t, "entrepreneur", prof.ProfileType)

	list, err := qe.NewHandler(qe.LoadConfig(wc), e.service, e.log).Execute(ctx, &qe.Input{UserID: userID})
	require.NoError(t, err)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, ev.EvaluationID, list.Evaluations[0].EvaluationID)

	t.Log("✅ Entrepreneur journey complete")
}
