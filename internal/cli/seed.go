package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"personality-quiz/internal/infra/memory"
	pgstore "personality-quiz/internal/infra/postgres"
	redisstore "personality-quiz/internal/infra/redis"
)

// NewSeedCmd stores a quiz JSON document in Postgres under the configured quiz name.
func NewSeedCmd(configPath *string) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "seed <quiz.json>",
		Short: "Load a quiz definition into Postgres",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath, name, args[0])
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "quiz name (defaults to quiz.name)")
	return cmd
}

func runSeed(ctx context.Context, configPath, name, file string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if name == "" {
		name = cfg.Quiz.Name
	}
	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		return err
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read quiz file: %w", err)
	}
	quiz, err := memory.DecodeQuiz(data)
	if err != nil {
		return err
	}

	db := pgstore.OpenBun(cfg.Postgres.URL)
	defer db.Close()
	if err := pgstore.NewQuizStore(db).SaveQuiz(ctx, name, quiz); err != nil {
		return err
	}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer client.Close()
		if err := redisstore.NewQuizRepository(client, nil, 0).Invalidate(ctx, name); err != nil {
			slog.Warn("could not invalidate cached quiz", "quiz", name, "error", err)
		}
	}

	slog.Info("quiz seeded", "quiz", name, "questions", len(quiz.Questions), "results", len(quiz.Results))
	return nil
}
