package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
	"github.com/kirillkom/legal-assistant/internal/core/ports"
)

type services struct {
	ingest ports.LegalIngestor
	query  ports.LegalQueryService
}

type serviceLoader func(ctx context.Context, logLevel string) (services, func(), error)

func newRootCmd(load serviceLoader) *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "legalctl",
		Short:         "Ingest and query Indian legal sources",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	withServices := func(run func(cmd *cobra.Command, svc services, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := load(cmd.Context(), logLevel)
			if err != nil {
				return fmt.Errorf("init pipeline: %w", err)
			}
			if closeFn != nil {
				defer closeFn()
			}
			return run(cmd, svc, args)
		}
	}

	root.AddCommand(&cobra.Command{
		Use:   "ingest <files...>",
		Short: "Extract, chunk and index files",
		Args:  cobra.MinimumNArgs(1),
		RunE:  withServices(runIngest),
	})
	root.AddCommand(&cobra.Command{
		Use:   "query [question]",
		Short: "Answer a question; starts an interactive loop without arguments",
		RunE:  withServices(runQuery),
	})
	root.AddCommand(&cobra.Command{
		Use:   "route <question>",
		Short: "Show the corpus filter and boosts chosen for a question",
		Args:  cobra.MinimumNArgs(1),
		RunE:  withServices(runRoute),
	})
	return root
}

func runIngest(cmd *cobra.Command, svc services, args []string) error {
	files := make([]domain.SourceFile, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		files = append(files, domain.SourceFile{Name: filepath.Base(path), Data: data})
	}

	report, err := svc.ingest.Ingest(cmd.Context(), files)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), report)
}

func runQuery(cmd *cobra.Command, svc services, args []string) error {
	if len(args) > 0 {
		return answerOnce(cmd.Context(), cmd.OutOrStdout(), svc.query, strings.Join(args, " "))
	}
	return interactiveQuery(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), svc.query)
}

func runRoute(cmd *cobra.Command, svc services, args []string) error {
	return printJSON(cmd.OutOrStdout(), svc.query.Route(strings.Join(args, " ")))
}

func answerOnce(ctx context.Context, out io.Writer, query ports.LegalQueryService, question string) error {
	answer, err := query.Answer(ctx, question)
	if err != nil {
		if raw, ok := domain.RawModelText(err); ok {
			return fmt.Errorf("%w\nraw_response: %s", err, raw)
		}
		return err
	}
	return printJSON(out, answer)
}

// interactiveQuery reads one question per line until EOF, "exit" or "quit".
// A failed question is reported and the loop continues.
func interactiveQuery(ctx context.Context, in io.Reader, out, errOut io.Writer, query ports.LegalQueryService) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		question := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(question) {
		case "":
			continue
		case "exit", "quit":
			return nil
		}
		if err := answerOnce(ctx, out, query, question); err != nil {
			fmt.Fprintln(errOut, "error:", err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
