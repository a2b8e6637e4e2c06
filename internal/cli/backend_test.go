package cli

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"millionaire-service/internal/app"
	"millionaire-service/internal/config"
	"millionaire-service/internal/domain"
)

func TestOpenBackendInMemory(t *testing.T) {
	b, err := openBackend(context.Background(), config.Config{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer b.Close()
	if b.persistent {
		t.Fatalf("expected memory backend without a database")
	}
}

func TestMemoryModeWarnsWithoutSeedFile(t *testing.T) {
	cfg := config.Config{}
	if msg := memoryModeWarning(cfg); !strings.Contains(msg, "seed_file") {
		t.Fatalf("expected a seed_file warning, got %q", msg)
	}

	cfg.Questions.SeedFile = "config/questions.yaml"
	if msg := memoryModeWarning(cfg); msg != "" {
		t.Fatalf("expected no warning with a seed file, got %q", msg)
	}

	cfg = config.Config{}
	cfg.Database.Driver = "sqlite"
	if msg := memoryModeWarning(cfg); msg != "" {
		t.Fatalf("expected no warning with a database, got %q", msg)
	}
}

func TestSeedSQLiteBackend(t *testing.T) {
	ctx := context.Background()
	cfg := config.Config{}
	cfg.Database.Driver = "sqlite"
	cfg.Database.DSN = "file:" + filepath.Join(t.TempDir(), "seed.db")

	b, err := openBackend(ctx, cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer b.Close()
	if !b.persistent {
		t.Fatalf("expected sqlite backend to be persistent")
	}

	questions := app.NewQuestionService(b.questions, b.pool)
	if err := importQuestionFile(ctx, questions, filepath.Join("..", "..", "config", "questions.yaml")); err != nil {
		t.Fatalf("import: %v", err)
	}
	picked, err := questions.PickGameQuestions(ctx)
	if err != nil {
		t.Fatalf("pick: %v", err)
	}
	if len(picked) != domain.Levels {
		t.Fatalf("expected a full game from the sample file, got %d", len(picked))
	}

	// importing again only finds duplicates
	if err := importQuestionFile(ctx, questions, filepath.Join("..", "..", "config", "questions.yaml")); err != nil {
		t.Fatalf("second import: %v", err)
	}
}
