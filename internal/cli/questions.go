package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"millionaire-service/internal/app"
	"millionaire-service/internal/config"
)

// NewQuestionsCmd groups question maintenance commands.
func NewQuestionsCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Manage trivia questions",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Import questions from a YAML file into the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			b, err := openBackend(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer b.Close()
			if !b.persistent {
				return fmt.Errorf("questions import needs a database, set database.driver")
			}
			return importQuestionFile(cmd.Context(), app.NewQuestionService(b.questions, b.pool), args[0])
		},
	})
	return cmd
}

func importQuestionFile(ctx context.Context, service *app.QuestionService, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open questions: %w", err)
	}
	defer f.Close()

	inputs, err := app.DecodeQuestions(f)
	if err != nil {
		return err
	}
	report, err := service.Import(ctx, inputs)
	if err != nil {
		return err
	}
	log.Printf("questions from %s: created=%d duplicates=%d invalid=%d", path, report.Created, report.Duplicates, len(report.Invalid))
	for _, problem := range report.Invalid {
		log.Printf("skipped question %s", problem)
	}
	return nil
}
