package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/miminchandrank/Csv-data-analyst/src/core/dataset"
	"github.com/miminchandrank/Csv-data-analyst/src/core/formatter"
	"github.com/miminchandrank/Csv-data-analyst/src/core/profile"
	"github.com/miminchandrank/Csv-data-analyst/src/core/rag"
	"github.com/miminchandrank/Csv-data-analyst/src/fsutil"
	"github.com/miminchandrank/Csv-data-analyst/src/log"
	"github.com/miminchandrank/Csv-data-analyst/src/storage/minioctrl"
)

// buildAnalyzeSystem creates the RAG system used to answer --question
var buildAnalyzeSystem = buildSystem

// newAnalyzeCmd creates the analyze command
func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <file.csv | minio://bucket/object>",
		Short: "Profile a CSV file and answer questions about it",
		Long: `The analyze command loads a CSV file from disk or MinIO, prints its profile
and answers every --question against it. With --export the processed data
is written back out as CSV.`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyze,
	}
	cmd.Flags().StringArrayP("question", "q", nil, "Question to ask about the data (repeatable)")
	cmd.Flags().StringP("export", "e", "", "Write the processed data to this CSV file")
	cmd.Flags().Bool("parse-dates", false, "Parse date-like columns as dates")
	return cmd
}

func init() {
	rootCmd.AddCommand(newAnalyzeCmd())
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	questions, _ := cmd.Flags().GetStringArray("question")
	exportPath, _ := cmd.Flags().GetString("export")
	parseDates, _ := cmd.Flags().GetBool("parse-dates")

	data, err := readSource(ctx, args[0])
	if err != nil {
		return err
	}

	loadOpts, err := loadOptions(parseDates || viper.GetBool("data.parse_dates"))
	if err != nil {
		return err
	}
	frame, meta, err := dataset.Load(bytes.NewReader(data), loadOpts...)
	if err != nil {
		return fmt.Errorf("failed to load csv: %w", err)
	}

	summary := profile.Analyze(frame, meta)
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, summary.Text())

	if exportPath != "" {
		var buf bytes.Buffer
		if err := dataset.WriteCSV(&buf, frame); err != nil {
			return fmt.Errorf("failed to export dataset: %w", err)
		}
		if err := os.WriteFile(exportPath, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", exportPath, err)
		}
		log.Info("Dataset exported", "path", exportPath)
	}

	if len(questions) == 0 {
		return nil
	}

	system, err := buildAnalyzeSystem()
	if err != nil {
		return err
	}
	defer func() {
		if err := system.Close(context.Background()); err != nil {
			log.Error(err, "Failed to drop index")
		}
	}()

	if err := prepareWithProgress(ctx, system, rag.GenerateDocuments(frame, summary)); err != nil {
		return err
	}

	for _, q := range questions {
		answer, err := system.Answer(ctx, q)
		if err != nil {
			return fmt.Errorf("failed to answer %q: %w", q, err)
		}
		fmt.Fprintf(out, "\nQ: %s\n%s\n", q, formatter.Format(answer, q))
	}
	return nil
}

func readSource(ctx context.Context, source string) ([]byte, error) {
	if bucket, object, ok := minioctrl.ParseObjectURL(source); ok {
		svc, err := newMinioService()
		if err != nil {
			return nil, err
		}
		return svc.GetObject(ctx, bucket, object)
	}
	data, err := fsutil.NewLocalFileStore().ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", source, err)
	}
	return data, nil
}

func buildSystem() (*rag.System, error) {
	oc, err := newOllamaClient()
	if err != nil {
		return nil, err
	}
	store, _, err := newVectorStore()
	if err != nil {
		return nil, err
	}
	return newSystemFactory(oc, store)(), nil
}

func prepareWithProgress(ctx context.Context, system *rag.System, documents []string) error {
	bar := progressbar.NewOptions(len(documents),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Indexing dataset"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	progress := func(done, total int) {
		if total != bar.GetMax() {
			bar.ChangeMax(total)
		}
		_ = bar.Set(done)
	}

	collection := "Analyze" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := system.Prepare(ctx, collection, documents, progress); err != nil {
		return fmt.Errorf("failed to index dataset: %w", err)
	}
	return bar.Finish()
}
