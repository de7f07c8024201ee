package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"go-scout-export/internal/model"
	"go-scout-export/internal/pipeline"
)

var exportFlags struct {
	json bool
}

var exportCmd = &cobra.Command{
	Use:   "export [team...]",
	Short: "Run one export and wait for it",
	Long: `Export the scouts of the given teams, identified by number or id. Without
arguments every team is exported.

Examples:
  # One CSV file per template for every team
  scout-export export

  # Consolidated JSON document for two teams
  scout-export export 254 1678 --json`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().BoolVar(&exportFlags.json, "json", false, "export the consolidated JSON document instead of spreadsheets")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(globals)
	if err != nil {
		return err
	}
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var teams []model.Team
	if len(args) > 0 {
		all, err := a.source.ListTeams(ctx)
		if err != nil {
			return fmt.Errorf("failed to list teams: %w", err)
		}
		if teams, err = selectTeams(all, args); err != nil {
			return err
		}
	}

	handle, err := a.service.Submit(ctx, pipeline.Request{Teams: teams, JSON: exportFlags.json})
	if err != nil {
		return err
	}

	select {
	case <-handle.Done():
	case <-ctx.Done():
		a.logger.Info("interrupted, stopping export", zap.String("job_id", handle.ID))
		handle.Cancel()
	}

	res, err := handle.Wait(context.Background())
	if res != nil {
		if werr := printResult(cmd.OutOrStdout(), res); werr != nil {
			return werr
		}
	}
	return err
}

// selectTeams picks the teams named by args, matching either the team number
// or the team id.
func selectTeams(all []model.Team, args []string) ([]model.Team, error) {
	byKey := make(map[string]model.Team, 2*len(all))
	for _, t := range all {
		byKey[t.ID] = t
		byKey[t.String()] = t
	}

	seen := make(map[string]bool, len(args))
	teams := make([]model.Team, 0, len(args))
	for _, arg := range args {
		t, ok := byKey[arg]
		if !ok {
			return nil, fmt.Errorf("unknown team %q", arg)
		}
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		teams = append(teams, t)
	}
	return teams, nil
}

func printResult(w io.Writer, res *pipeline.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
