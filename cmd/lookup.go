package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/linkedintel/internal/lookup"
	"github.com/spigell/linkedintel/internal/salary"
)

const (
	PromptLookup      = "Look up a job"
	PromptForceAI     = "Ask AI for the last job"
	PromptCacheStats  = "Show cache size"
	PromptSweep       = "Sweep expired cache entries"
	PromptClearSalary = "Clear salary cache"
	PromptExit        = "Exit"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptLookup, PromptForceAI, PromptCacheStats, PromptSweep, PromptClearSalary, PromptExit},
}

var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Resolve salaries for one job or a JSON file of jobs",
	Run: func(cmd *cobra.Command, _ []string) {
		runLookup(cmd)
	},
}

func init() {
	rootCmd.AddCommand(lookupCmd)

	lookupCmd.Flags().StringP("title", "t", "", "job title as shown on the listing")
	lookupCmd.Flags().StringP("company", "c", "", "company name")
	lookupCmd.Flags().StringP("location", "l", "", "job location")
	lookupCmd.Flags().StringP("file", "f", "", `JSON file with {"jobs": [...]} or a plain array of jobs`)
	lookupCmd.Flags().Bool("force-ai", false, "skip the dataset and ask the AI estimator")
	lookupCmd.Flags().BoolP("interactive", "i", false, "keep prompting for jobs")
}

// runLookup is the main command for salary lookups.
func runLookup(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := newLogger()
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	svc, err := bootstrap(ctx, logger)
	if err != nil {
		logger.Fatal("starting lookup", zap.Error(err))
	}
	defer svc.Close()

	forceAI, _ := cmd.Flags().GetBool("force-ai")
	out := cmd.OutOrStdout()

	interactive, _ := cmd.Flags().GetBool("interactive")
	if interactive {
		if err := interactiveLoop(ctx, svc, out); err != nil && !errors.Is(err, errExit) {
			logger.Fatal("exiting", zap.Error(err))
		}
		return
	}

	jobs, err := jobsFromFlags(cmd)
	if err != nil {
		logger.Fatal("reading jobs", zap.Error(err))
	}

	results, err := resolve(ctx, svc.lookups, jobs, forceAI)
	if err != nil {
		logger.Fatal("lookup failed", zap.Error(err))
	}

	if err := printJSON(out, map[string]any{"results": results}); err != nil {
		logger.Fatal("writing results", zap.Error(err))
	}
}

func resolve(ctx context.Context, svc *lookup.Service, jobs []lookup.Job, forceAI bool) ([]*salary.Result, error) {
	if forceAI {
		return svc.LookupBatchForceAI(ctx, jobs)
	}
	return svc.LookupBatch(ctx, jobs), nil
}

func jobsFromFlags(cmd *cobra.Command) ([]lookup.Job, error) {
	file, _ := cmd.Flags().GetString("file")
	if file != "" {
		return readJobsFile(file)
	}

	job := lookup.Job{}
	job.Title, _ = cmd.Flags().GetString("title")
	job.Company, _ = cmd.Flags().GetString("company")
	job.Location, _ = cmd.Flags().GetString("location")
	if strings.TrimSpace(job.Title) == "" {
		return nil, errors.New("--title or --file is required")
	}
	return []lookup.Job{job}, nil
}

func readJobsFile(path string) ([]lookup.Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading jobs file %q: %w", path, err)
	}

	var jobs []lookup.Job
	if err := json.Unmarshal(data, &jobs); err == nil {
		return jobs, nil
	}

	var request struct {
		Jobs []lookup.Job `json:"jobs"`
	}
	if err := json.Unmarshal(data, &request); err != nil {
		return nil, fmt.Errorf("parsing jobs file %q: %w", path, err)
	}
	return request.Jobs, nil
}

func interactiveLoop(ctx context.Context, svc *services, out io.Writer) error {
	var last *lookup.Job

	for {
		_, action, err := prompt.Run()
		if err != nil {
			return err
		}

		if err := handleAction(ctx, action, svc, out, &last); err != nil {
			return err
		}
	}
}

func handleAction(ctx context.Context, action string, svc *services, out io.Writer, last **lookup.Job) error {
	switch action {
	case PromptLookup:
		job, err := promptJob()
		if err != nil {
			return err
		}
		*last = job
		return printJSON(out, svc.lookups.LookupBatch(ctx, []lookup.Job{*job})[0])
	case PromptForceAI:
		if *last == nil {
			svc.logger.Info("no job looked up yet")
			return nil
		}
		result, err := svc.lookups.LookupForceAI(ctx, **last)
		if err != nil {
			svc.logger.Warn("ai lookup failed", zap.Error(err))
			return nil
		}
		return printJSON(out, result)
	case PromptCacheStats:
		salaryCount, err := svc.salaryCache.Len(ctx)
		if err != nil {
			return fmt.Errorf("reading salary cache: %w", err)
		}
		matchCount, err := svc.matchCache.Len(ctx)
		if err != nil {
			return fmt.Errorf("reading match cache: %w", err)
		}
		svc.logger.Info("cache size", zap.Int("salary", salaryCount), zap.Int("match", matchCount))
		return nil
	case PromptSweep:
		removed, err := svc.salaryCache.Sweep(ctx)
		if err != nil {
			return err
		}
		svc.logger.Info("expired cache entries removed", zap.Int("removed", removed))
		return nil
	case PromptClearSalary:
		if err := svc.salaryCache.Clear(ctx); err != nil {
			return err
		}
		svc.logger.Info("salary cache cleared")
		return nil
	case PromptExit:
		svc.logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func promptJob() (*lookup.Job, error) {
	ask := func(label string, required bool) (string, error) {
		p := promptui.Prompt{Label: label}
		if required {
			p.Validate = func(input string) error {
				if strings.TrimSpace(input) == "" {
					return errors.New("value is required")
				}
				return nil
			}
		}
		return p.Run()
	}

	var (
		job lookup.Job
		err error
	)
	if job.Title, err = ask("Title", true); err != nil {
		return nil, err
	}
	if job.Company, err = ask("Company", false); err != nil {
		return nil, err
	}
	if job.Location, err = ask("Location", false); err != nil {
		return nil, err
	}
	return &job, nil
}

func printJSON(w io.Writer, v any) error {
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(pretty))
	return err
}
