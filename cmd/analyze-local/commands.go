package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"recruit-analysis/internal/batches"
	"recruit-analysis/internal/bootstrap"
)

type buildFunc func(ctx context.Context) (*bootstrap.App, error)

func newRootCmd(build buildFunc) *cobra.Command {
	root := &cobra.Command{
		Use:           "analyze-local",
		Short:         "Analyze local CV files against a target position",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newBatchCmd(build), newSingleCmd(build))
	return root
}

func newBatchCmd(build buildFunc) *cobra.Command {
	var (
		interval time.Duration
		timeout  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "batch <targetId> <file>...",
		Short: "Upload files, submit them as one batch and wait for completion",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			app, err := build(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			targetID := args[0]
			documentIDs := make([]string, 0, len(args)-1)
			for _, path := range args[1:] {
				id, err := uploadFile(ctx, app, targetID, path)
				if err != nil {
					return err
				}
				documentIDs = append(documentIDs, id)
			}

			jobID, err := app.BatchesService.SubmitBatch(ctx, documentIDs, targetID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "submitted job %s with %d documents\n", jobID, len(documentIDs))

			progress, err := waitForCompletion(ctx, app.BatchesService, jobID, interval, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), progress)
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "progress poll interval")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Minute, "overall timeout")
	return cmd
}

func newSingleCmd(build buildFunc) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "single <targetId> <file>",
		Short: "Analyze one file synchronously and print the stored record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			app, err := build(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			documentID, err := uploadFile(ctx, app, args[0], args[1])
			if err != nil {
				return err
			}
			rec, err := app.AnalysesService.AnalyzeSingle(ctx, documentID, args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), rec)
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "overall timeout")
	return cmd
}

func uploadFile(ctx context.Context, app *bootstrap.App, targetID, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := app.DocumentsService.Upload(ctx, targetID, filepath.Base(path), f)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", path, err)
	}
	return doc.ID, nil
}

func waitForCompletion(ctx context.Context, svc *batches.Service, jobID string, interval time.Duration, log io.Writer) (batches.Progress, error) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastPercent := -1
	for {
		progress, err := svc.GetProgress(ctx, jobID)
		if err != nil {
			return batches.Progress{}, err
		}
		if progress.PercentComplete != lastPercent {
			fmt.Fprintf(log, "progress %d%% (%d/%d)\n", progress.PercentComplete, progress.Attempted, progress.Total)
			lastPercent = progress.PercentComplete
		}
		if progress.Completed {
			return progress, nil
		}
		select {
		case <-ctx.Done():
			return batches.Progress{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
