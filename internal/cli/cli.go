package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"lotsawa/internal/align"
	"lotsawa/internal/config"
	"lotsawa/internal/filewalker"
	"lotsawa/internal/glossary"
	"lotsawa/internal/pipeline"
	"lotsawa/internal/segment"
	"lotsawa/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd := &cobra.Command{
		Use:   "lotsawa",
		Short: "Translation-unit manager for a per-line Tibetan to French corpus",
		Long: `Lotsawa keeps a Tibetan corpus and its French translation in step.
It cuts each source text into per-line translation units with stable
identities, annotates them with dictionary entries, carries existing
translations across source edits, and renders the translated units back
out as plain-text reading copies.`,
	}

	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(glossaryCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func generateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate [stem]",
		Short: "Build or resynchronize translation units from source texts",
		Long: `Generate reads .txt sources from the source directory and writes one .po
file of translation units per source into the translation directory. An
existing .po file is resynchronized: unit identities and translations are
carried onto the edited source. With a stem argument only that source is
processed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(args)
		},
	}
}

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [stem]",
		Short: "Render translated units as plain-text artifacts",
		Long: `Export renders each .po file in the translation directory as a bitext, a
translation-only text, and a translation-first reading copy under the
paragraph directory. Paragraph breaks added by hand to a reading copy are
carried onto the refreshed content. With a stem argument only that file
is rendered.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(args)
		},
	}
}

func glossaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "glossary",
		Short: "Manage the dictionary cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "rebuild",
		Short: "Rebuild the dictionary cache from its source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGlossaryRebuild()
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Report the dictionary cache state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGlossaryStatus()
		},
	})

	return cmd
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Warn().Msg("Received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}

// applyLogLevel sets the global log level from configuration.
func applyLogLevel(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("Unknown log level, keeping info")
		return
	}
	zerolog.SetGlobalLevel(level)
}

// newSegmenter builds the configured tokenizer backend.
func newSegmenter(cfg *config.Config) (segment.Segmenter, error) {
	switch cfg.Segmenter {
	case config.SegmenterCommand:
		return segment.NewCommand(cfg.SegmenterCmd)
	case config.SegmenterSyllable, "":
		return segment.Syllable{}, nil
	default:
		return nil, fmt.Errorf("unknown segmenter %q", cfg.Segmenter)
	}
}

// job pairs one source text with the PO file it generates.
type job struct {
	src string
	po  string
}

// generateJobs maps each selected source text to its PO path in the
// translation directory.
func generateJobs(cfg *config.Config, args []string) ([]job, error) {
	var files []string
	if len(args) == 1 {
		files = []string{filepath.Join(cfg.SourceDir, args[0]+".txt")}
	} else {
		var err error
		files, err = filewalker.Walk(cfg.SourceDir, ".txt")
		if err != nil {
			return nil, fmt.Errorf("walk source directory: %w", err)
		}
	}

	jobs := make([]job, len(files))
	for i, src := range files {
		stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
		jobs[i] = job{src: src, po: filepath.Join(cfg.TranslationDir, stem+".po")}
	}
	return jobs, nil
}

// runGenerate handles the `generate` command.
func runGenerate(args []string) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()
	applyLogLevel(cfg)

	seg, err := newSegmenter(cfg)
	if err != nil {
		return err
	}

	ix, err := glossary.LoadOrBuild(ctx, cfg.GlossaryPath, cfg.GlossaryCache, seg)
	if err != nil {
		return fmt.Errorf("load glossary: %w", err)
	}
	matcher := glossary.NewMatcher(ix, cfg.MatchDedupe)

	p := pipeline.New(seg, matcher, align.NewDiff())

	jobs, err := generateJobs(cfg, args)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.TranslationDir, 0o755); err != nil {
		return fmt.Errorf("create translation directory: %w", err)
	}

	log.Info().Int("files", len(jobs)).Msg("Starting unit generation")

	pool := worker.NewPool[job, *pipeline.GenerateStats](cfg.WorkerCount,
		func(ctx context.Context, j job) (*pipeline.GenerateStats, error) {
			stats, err := p.Generate(ctx, j.src, j.po)
			if err != nil && cfg.OnError == config.OnErrorAbort {
				cancel()
			}
			return stats, err
		},
	)
	results := pool.Execute(ctx, jobs)

	var units, carried, fresh, failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
			continue
		}
		if r.Result == nil {
			continue
		}
		units += r.Result.Units
		carried += r.Result.Carried
		fresh += r.Result.Fresh
	}

	log.Info().
		Int("files", len(jobs)).
		Int("units", units).
		Int("carried", carried).
		Int("fresh", fresh).
		Msg("Unit generation complete")

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(jobs))
	}
	return nil
}

// runExport handles the `export` command.
func runExport(args []string) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()
	applyLogLevel(cfg)

	e := pipeline.NewExporter(align.NewDiff(), cfg.ParagraphDir)

	var files []string
	if len(args) == 1 {
		files = []string{filepath.Join(cfg.TranslationDir, args[0]+".po")}
	} else {
		var err error
		files, err = filewalker.Walk(cfg.TranslationDir, ".po")
		if err != nil {
			return fmt.Errorf("walk translation directory: %w", err)
		}
	}

	log.Info().Int("files", len(files)).Msg("Starting export")

	pool := worker.NewPool[string, *pipeline.ExportStats](cfg.WorkerCount,
		func(ctx context.Context, poPath string) (*pipeline.ExportStats, error) {
			stats, err := e.Export(poPath)
			if err != nil && cfg.OnError == config.OnErrorAbort {
				cancel()
			}
			return stats, err
		},
	)
	results := pool.Execute(ctx, files)

	var failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}

	log.Info().Int("files", len(files)).Msg("Export complete")

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(files))
	}
	return nil
}

// runGlossaryRebuild handles the `glossary rebuild` command.
func runGlossaryRebuild() error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()
	applyLogLevel(cfg)

	seg, err := newSegmenter(cfg)
	if err != nil {
		return err
	}

	if err := os.Remove(cfg.GlossaryCache); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove glossary cache: %w", err)
	}

	ix, err := glossary.LoadOrBuild(ctx, cfg.GlossaryPath, cfg.GlossaryCache, seg)
	if err != nil {
		return fmt.Errorf("rebuild glossary: %w", err)
	}

	log.Info().Int("entries", ix.Len()).Str("cache", cfg.GlossaryCache).Msg("Glossary cache rebuilt")
	return nil
}

// runGlossaryStatus handles the `glossary status` command.
func runGlossaryStatus() error {
	cfg := config.Load()
	applyLogLevel(cfg)

	st, err := glossary.Stat(cfg.GlossaryCache, cfg.GlossaryPath)
	if errors.Is(err, os.ErrNotExist) {
		log.Warn().Str("cache", cfg.GlossaryCache).Msg("No glossary cache; run glossary rebuild")
		return nil
	}
	if err != nil {
		return err
	}

	log.Info().
		Int("entries", st.Entries).
		Str("built_at", st.BuiltAt).
		Str("source", st.SourcePath).
		Bool("source_unchanged", st.SourceUnchanged).
		Msg("Glossary cache status")
	return nil
}
