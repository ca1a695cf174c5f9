package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"personality-quiz/internal/app"
	"personality-quiz/internal/config"
	"personality-quiz/internal/domain"
	"personality-quiz/internal/infra/memory"
	pgstore "personality-quiz/internal/infra/postgres"
	redisstore "personality-quiz/internal/infra/redis"
	"personality-quiz/internal/infra/sqlite"
)

// backends bundles everything built from config; close releases it.
type backends struct {
	quizzes app.QuizRepository
	store   app.ProgressStore
	closers []io.Closer
}

func (b *backends) close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		_ = b.closers[i].Close()
	}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func buildBackends(ctx context.Context, cfg config.Config) (*backends, error) {
	b := &backends{}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		b.closers = append(b.closers, redisClient)
	}

	var loader memory.QuizLoader = memory.NewStaticQuizLoader(map[string]domain.Quiz{cfg.Quiz.Name: sampleQuiz()})
	switch {
	case cfg.Postgres.URL != "":
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		b.closers = append(b.closers, closerFunc(func() error { pool.Close(); return nil }))
		loader = pgstore.NewQuizLoader(pool)
	case cfg.Quiz.Dir != "":
		loader = memory.NewFileQuizLoader(cfg.Quiz.Dir)
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	if redisClient != nil {
		b.quizzes = redisstore.NewQuizRepository(redisClient, loader, quizTTL)
	} else {
		b.quizzes = memory.NewQuizRepository(loader, quizTTL)
	}

	switch cfg.Progress.Store {
	case config.StoreRedis:
		b.store = redisstore.NewProgressStore(redisClient, config.TTLDuration(cfg.Redis.TTL, 30*24*time.Hour))
	case config.StorePostgres:
		db := pgstore.OpenBun(cfg.Postgres.URL)
		b.closers = append(b.closers, db)
		b.store = pgstore.NewProgressStore(db)
	case config.StoreSQLite:
		store, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			b.close()
			return nil, err
		}
		b.closers = append(b.closers, store)
		b.store = store
	default:
		b.store = memory.NewProgressStore()
	}
	return b, nil
}

// sampleQuiz is served when neither Postgres nor a quiz directory is configured.
func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		Title: "Que tipo de viajante você é?",
		Questions: []domain.Question{
			{
				ID:   "p1",
				Text: "Como você passa um fim de semana livre?",
				Options: []domain.Option{
					{ID: "a", Text: "Trilha na montanha", ProfileScores: domain.Weights{{Profile: "aventureiro", Score: 2}}},
					{ID: "b", Text: "Museu e café", ProfileScores: domain.Weights{{Profile: "cultural", Score: 2}}},
					{ID: "c", Text: "Rede e livro", ProfileScores: domain.Weights{{Profile: "relaxado", Score: 2}}},
				},
			},
			{
				ID:   "p2",
				Text: "O que não pode faltar na mala?",
				Options: []domain.Option{
					{ID: "a", Text: "Bota de caminhada", ProfileScores: domain.Weights{{Profile: "aventureiro", Score: 1}}},
					{ID: "b", Text: "Guia da cidade", ProfileScores: domain.Weights{{Profile: "cultural", Score: 1}, {Profile: "aventureiro", Score: 1}}},
					{ID: "c", Text: "Protetor solar", ProfileScores: domain.Weights{{Profile: "relaxado", Score: 1}}},
				},
			},
		},
		Results: []domain.ResultProfile{
			{Profile: "aventureiro", Title: "Aventureiro", Description: "Você vive pela próxima trilha."},
			{Profile: "cultural", Title: "Cultural", Description: "Cada viagem é uma aula de história."},
			{Profile: "relaxado", Title: "Relaxado", Description: "Férias são para descansar."},
		},
	}
}
