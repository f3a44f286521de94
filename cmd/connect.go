package cmd

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/linkedintel/internal/ai"
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Draft a personalized connection request",
	Run: func(cmd *cobra.Command, _ []string) {
		runConnect(cmd)
	},
}

func init() {
	rootCmd.AddCommand(connectCmd)

	connectCmd.Flags().StringP("profile", "p", "", "JSON file with the profile (name, headline, about, currentCompany, recentActivity)")
	connectCmd.Flags().String("intent", string(ai.IntentConnect), "referral, connect or business")
	connectCmd.Flags().StringP("resume", "r", "", "optional plain text resume used as sender context")
	connectCmd.MarkFlagRequired("profile")
}

func runConnect(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := newLogger()
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	profilePath, _ := cmd.Flags().GetString("profile")
	intent, _ := cmd.Flags().GetString("intent")
	resumePath, _ := cmd.Flags().GetString("resume")

	data, err := os.ReadFile(profilePath)
	if err != nil {
		logger.Fatal("reading profile", zap.Error(err))
	}
	var profile ai.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		logger.Fatal("parsing profile", zap.Error(err))
	}

	var resumeContext string
	if resumePath != "" {
		resume, err := os.ReadFile(resumePath)
		if err != nil {
			logger.Fatal("reading resume", zap.Error(err))
		}
		resumeContext = string(resume)
	}

	svc, err := bootstrap(ctx, logger)
	if err != nil {
		logger.Fatal("starting connect", zap.Error(err))
	}
	defer svc.Close()

	msg, err := svc.assistant.Icebreaker(ctx, &profile, ai.Intent(intent), resumeContext)
	if err != nil {
		logger.Fatal("writing icebreaker", zap.Error(err))
	}

	if err := printJSON(cmd.OutOrStdout(), msg); err != nil {
		logger.Fatal("writing result", zap.Error(err))
	}
}
