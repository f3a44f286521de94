package cmd

import (
	"context"
	"log"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Score a resume against a job description",
	Run: func(cmd *cobra.Command, _ []string) {
		runMatch(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringP("resume", "r", "", "plain text resume file")
	matchCmd.Flags().String("jd", "", "plain text job description file")
	matchCmd.MarkFlagRequired("resume")
	matchCmd.MarkFlagRequired("jd")
}

func runMatch(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := newLogger()
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	resumePath, _ := cmd.Flags().GetString("resume")
	jdPath, _ := cmd.Flags().GetString("jd")

	resume, err := os.ReadFile(resumePath)
	if err != nil {
		logger.Fatal("reading resume", zap.Error(err))
	}
	jd, err := os.ReadFile(jdPath)
	if err != nil {
		logger.Fatal("reading job description", zap.Error(err))
	}

	svc, err := bootstrap(ctx, logger)
	if err != nil {
		logger.Fatal("starting match", zap.Error(err))
	}
	defer svc.Close()

	result, err := svc.assistant.MatchResume(ctx, string(resume), string(jd))
	if err != nil {
		logger.Fatal("matching resume", zap.Error(err))
	}

	if err := printJSON(cmd.OutOrStdout(), result); err != nil {
		logger.Fatal("writing result", zap.Error(err))
	}
}
