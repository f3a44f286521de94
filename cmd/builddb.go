package cmd

import (
	"log"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/linkedintel/internal/salarydb"
)

var buildDBCmd = &cobra.Command{
	Use:   "build-db",
	Short: "Build the salary dataset from *-salaries.csv sources",
	Run: func(cmd *cobra.Command, _ []string) {
		buildDB(cmd)
	},
}

func init() {
	rootCmd.AddCommand(buildDBCmd)

	buildDBCmd.Flags().String("sources", "data/sources", "directory with *-salaries.csv files")
	buildDBCmd.Flags().String("out", "data/salary-db.json", "output dataset file")
	buildDBCmd.Flags().String("fallback-out", "", "optional output file for the representative fallback subset")
	buildDBCmd.Flags().String("aliases", "", "alias table (JSON or YAML); built-in table when empty")
	buildDBCmd.Flags().Bool("strict", false, "refuse to write a dataset with validation errors")
}

func buildDB(cmd *cobra.Command) {
	logger, err := newLogger()
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	sources, _ := cmd.Flags().GetString("sources")
	out, _ := cmd.Flags().GetString("out")
	fallbackOut, _ := cmd.Flags().GetString("fallback-out")
	aliases, _ := cmd.Flags().GetString("aliases")
	strict, _ := cmd.Flags().GetBool("strict")

	titles, err := loadTitles(&DatasetConfig{Aliases: aliases})
	if err != nil {
		logger.Fatal("loading aliases", zap.Error(err))
	}

	dataset, fallback, report, err := salarydb.BuildDir(sources, titles)
	if err != nil {
		logger.Fatal("building salary dataset", zap.Error(err))
	}

	logger.Info("salary sources read",
		zap.Strings("files", report.Files),
		zap.Int("entries", report.Entries),
		zap.Int("unique_titles", report.UniqueTitles),
		zap.Int("unique_companies", report.UniqueCompanies),
		zap.Int("duplicates", report.Duplicates),
		zap.Any("by_country", report.ByCountry),
		zap.Any("by_source", report.BySource),
	)

	if report.ValidationErrors > 0 {
		if err := salarydb.Validate(dataset.Entries); err != nil {
			logger.Warn("salary dataset has invalid entries",
				zap.Int("count", report.ValidationErrors),
				zap.Error(err),
			)
		}
		if strict {
			logger.Fatal("refusing to write an invalid dataset", zap.String("hint", "fix the sources or drop --strict"))
		}
	}

	if err := salarydb.WriteJSON(out, dataset); err != nil {
		logger.Fatal("writing salary dataset", zap.Error(err))
	}
	logger.Info("salary dataset written", zap.String("file", out), zap.Int64("version", dataset.Version))

	if fallbackOut == "" {
		return
	}

	version, err := salarydb.VersionOf(fallback)
	if err != nil {
		logger.Fatal("computing fallback version", zap.Error(err))
	}
	if err := salarydb.WriteJSON(fallbackOut, &salarydb.Dataset{Version: version, Entries: fallback}); err != nil {
		logger.Fatal("writing fallback dataset", zap.Error(err))
	}
	logger.Info("fallback dataset written", zap.String("file", filepath.Clean(fallbackOut)), zap.Int("entries", len(fallback)))
}
