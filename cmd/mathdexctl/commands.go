package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/mathdex/internal/domain/question"
	"github.com/kailas-cloud/mathdex/internal/domain/search/request"
	"github.com/kailas-cloud/mathdex/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/mathdex/internal/usecase/health"
)

type runtimeFunc func(cmd *cobra.Command) (*runtime, error)

func newIndexCmd(get runtimeFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Manage the question index",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "create",
			Short: "Create the index if it does not exist",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				rt, err := get(cmd)
				if err != nil {
					return err
				}
				if err := rt.index.CreateIndexIfNotExists(cmd.Context()); err != nil {
					return fmt.Errorf("create index: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Index ready")
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete",
			Short: "Delete the index and every indexed question",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				rt, err := get(cmd)
				if err != nil {
					return err
				}
				if err := rt.index.DeleteIndex(cmd.Context()); err != nil {
					return fmt.Errorf("delete index: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Index deleted")
				return nil
			},
		},
		&cobra.Command{
			Use:   "recreate",
			Short: "Drop and create the index (all questions are lost)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				rt, err := get(cmd)
				if err != nil {
					return err
				}
				if err := rt.index.RecreateIndex(cmd.Context()); err != nil {
					return fmt.Errorf("recreate index: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Index recreated")
				return nil
			},
		},
		&cobra.Command{
			Use:   "stats",
			Short: "Show document count and storage size",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				rt, err := get(cmd)
				if err != nil {
					return err
				}
				st, err := rt.index.IndexStats(cmd.Context())
				if err != nil {
					return fmt.Errorf("index stats: %w", err)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Index:     %s\n", st.Name)
				fmt.Fprintf(out, "Documents: %d\n", st.DocumentCount)
				fmt.Fprintf(out, "Storage:   %d bytes\n", st.StorageBytes)
				return nil
			},
		},
	)
	return cmd
}

func newHealthCmd(get runtimeFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check vector store, embedding provider and index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := get(cmd)
			if err != nil {
				return err
			}
			report := rt.health.Check(cmd.Context())

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Status: %s\n", report.Status)
			for _, name := range []string{"database", "embedding", "index"} {
				if v, ok := report.Checks[name]; ok {
					fmt.Fprintf(out, "  %-10s %s\n", name, v)
				}
			}
			if report.Status != healthuc.Healthy {
				return fmt.Errorf("unhealthy: %s", report.Status)
			}
			return nil
		},
	}
}

// importItem is one question of an import file.
type importItem struct {
	ID         string `json:"id,omitempty"`
	Text       string `json:"text"`
	Answer     int    `json:"answer"`
	Operation  string `json:"operation,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
}

func newImportCmd(get runtimeFunc) *cobra.Command {
	var batchSize int

	cmd := &cobra.Command{
		Use:   "import <file.json>",
		Short: "Index questions from a JSON array file",
		Long: `Reads a JSON array of questions and indexes them in batches.

Each item: {"id": "...", "text": "...", "answer": 8, "operation": "addition", "difficulty": "grade_3"}.
id is optional and generated when empty. Each batch is one embedding pass and one bulk write;
the first failing batch stops the import.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if batchSize <= 0 {
				return fmt.Errorf("--batch-size must be positive")
			}
			qs, err := readQuestions(args[0])
			if err != nil {
				return err
			}

			rt, err := get(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			total := 0
			for start := 0; start < len(qs); start += batchSize {
				end := min(start+batchSize, len(qs))
				ids, err := rt.indexer.IndexQuestions(cmd.Context(), qs[start:end])
				if err != nil {
					return fmt.Errorf("batch %d-%d: %w", start, end-1, err)
				}
				total += len(ids)
				fmt.Fprintf(out, "Indexed %d/%d\n", total, len(qs))
			}
			fmt.Fprintf(out, "Imported %d questions\n", total)
			return nil
		},
	}
	cmd.Flags().IntVar(&batchSize, "batch-size", 100, "questions per bulk write")
	return cmd
}

func readQuestions(path string) ([]question.Question, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return decodeQuestions(f)
}

func decodeQuestions(r io.Reader) ([]question.Question, error) {
	var items []importItem
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	qs := make([]question.Question, len(items))
	for i, it := range items {
		qs[i] = question.Question{
			ID:         it.ID,
			Text:       it.Text,
			Answer:     it.Answer,
			Operation:  it.Operation,
			Difficulty: it.Difficulty,
		}
	}
	return qs, nil
}

// filterFlags are the search filters shared by similar and duplicate.
type filterFlags struct {
	grade      int
	topic      string
	operation  string
	excludeIDs []string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.grade, "grade", -1, "grade filter (negative = any)")
	cmd.Flags().StringVar(&f.topic, "topic", "", "topic filter")
	cmd.Flags().StringVar(&f.operation, "operation", "", "operation filter")
	cmd.Flags().StringSliceVar(&f.excludeIDs, "exclude", nil, "question ids to exclude")
}

func (f *filterFlags) filter(limit int) request.Filter {
	out := request.Filter{
		Topic:      f.topic,
		Operation:  f.operation,
		ExcludeIDs: f.excludeIDs,
		Limit:      limit,
	}
	if f.grade >= 0 {
		g := f.grade
		out.Grade = &g
	}
	return out
}

func newSimilarCmd(get runtimeFunc) *cobra.Command {
	var ff filterFlags
	var limit int

	cmd := &cobra.Command{
		Use:   "similar <text>",
		Short: "Find indexed questions similar to text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := get(cmd)
			if err != nil {
				return err
			}
			results, err := rt.search.FindSimilar(cmd.Context(), args[0], ff.filter(limit))
			if err != nil {
				return fmt.Errorf("find similar: %w", err)
			}
			printResults(cmd.OutOrStdout(), results)
			return nil
		},
	}
	ff.register(cmd)
	cmd.Flags().IntVar(&limit, "limit", request.DefaultLimit, "number of results")
	return cmd
}

func newDuplicateCmd(get runtimeFunc) *cobra.Command {
	var ff filterFlags
	var threshold float64

	cmd := &cobra.Command{
		Use:   "duplicate <text>",
		Short: "Check whether text duplicates an indexed question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := get(cmd)
			if err != nil {
				return err
			}
			th := threshold
			if th <= 0 {
				th = rt.duplicates.DefaultThreshold()
			}
			dup, err := rt.duplicates.Check(cmd.Context(), args[0], ff.filter(0), th)
			if err != nil {
				return fmt.Errorf("duplicate check: %w", err)
			}

			out := cmd.OutOrStdout()
			if dup == nil {
				fmt.Fprintf(out, "No duplicate (threshold %.3f)\n", th)
				return nil
			}
			fmt.Fprintf(out, "Duplicate of %s (score %.4f >= %.3f)\n", dup.Existing.ID(), dup.Score, th)
			fmt.Fprintf(out, "  %s\n", dup.Existing.Text())
			return nil
		},
	}
	ff.register(cmd)
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "similarity threshold (default from config)")
	return cmd
}

func printResults(w io.Writer, results []result.Result) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No results")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SCORE\tID\tGRADE\tTOPIC\tTEXT")
	for i := range results {
		r := &results[i]
		md := r.Metadata()
		fmt.Fprintf(tw, "%.4f\t%s\t%s\t%s\t%s\n", r.Score(), r.ID(), md.Grade, md.Topic, r.Text())
	}
	_ = tw.Flush()
}
