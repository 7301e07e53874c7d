package importer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"supplynorm/config"
	"supplynorm/normalizer"
)

// Summary aggregates the per-file results of one import run.
type Summary struct {
	FilesProcessed  int
	FilesFailed     int
	RowsProcessed   int
	ProductsCreated int
	ProductsSkipped int
	RowErrors       int
	Results         []*normalizer.Result
}

type RunOptions struct {
	// Format overrides extension-based format detection.
	Format string
	// SupplierName selects a configured supplier for every file.
	SupplierName string
	// SupplierFile loads a standalone supplier configuration for every file.
	SupplierFile string
}

// Run reads and normalizes every path. Files that cannot be read end up as
// failed results; only a missing supplier configuration aborts the run, or
// any file failure when import.stop_on_file_error is set.
func Run(ctx context.Context, paths []string, options RunOptions, cfg config.Config, logger zerolog.Logger) (*Summary, error) {
	explicit, err := resolveExplicitSupplier(options, cfg)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Results: make([]*normalizer.Result, 0, len(paths))}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("import cancelled before %s: %w", path, err)
		}

		supplier, err := resolveSupplierForFile(path, explicit, cfg)
		if err != nil {
			return nil, err
		}

		fileLogger := logger.With().Str("path", path).Logger()
		result, readErr := processFile(ctx, path, options.Format, supplier, fileLogger)
		summary.add(result)

		if readErr != nil {
			fileLogger.Error().Err(readErr).Msg("file could not be read")
			if cfg.Import.StopOnFileError {
				return summary, readErr
			}
		}
	}

	return summary, nil
}

func processFile(ctx context.Context, path, format string, supplier config.Supplier, logger zerolog.Logger) (*normalizer.Result, error) {
	file, err := readFile(path, format)
	if err != nil {
		return failedResult(path, supplier, err), err
	}

	n := normalizer.New(supplier, normalizer.WithLogger(logger))
	return n.NormalizeFile(ctx, *file, normalizer.ProcessingContext{SourceFileName: filepath.Base(path)}), nil
}

func readFile(path, format string) (*normalizer.FileData, error) {
	sourceFormat, err := inferFormat(path, format)
	if err != nil {
		return nil, err
	}
	reader, err := ReaderForFormat(sourceFormat)
	if err != nil {
		return nil, err
	}
	return reader.Read(path)
}

func failedResult(path string, supplier config.Supplier, err error) *normalizer.Result {
	return &normalizer.Result{
		SourceFile:   filepath.Base(path),
		SupplierName: supplier.Name,
		Errors:       []string{err.Error()},
	}
}

func resolveExplicitSupplier(options RunOptions, cfg config.Config) (*config.Supplier, error) {
	if strings.TrimSpace(options.SupplierFile) != "" {
		supplier, err := config.LoadSupplierFile(options.SupplierFile)
		if err != nil {
			return nil, err
		}
		return supplier, nil
	}
	if name := strings.TrimSpace(options.SupplierName); name != "" {
		supplier, ok := cfg.FindSupplier(name)
		if !ok {
			return nil, fmt.Errorf("supplier %q is not configured", name)
		}
		return &supplier, nil
	}
	return nil, nil
}

func resolveSupplierForFile(path string, explicit *config.Supplier, cfg config.Config) (config.Supplier, error) {
	if explicit != nil {
		return *explicit, nil
	}
	supplier, ok := config.MatchSupplierByTemplate(path, cfg.Suppliers)
	if !ok {
		return config.Supplier{}, fmt.Errorf(
			"no supplier configuration matches file %s (set --supplier/--supplier-config or add a file_template in config)",
			path,
		)
	}
	return supplier, nil
}

func (s *Summary) add(result *normalizer.Result) {
	s.Results = append(s.Results, result)
	s.FilesProcessed++
	if result.Failed() {
		s.FilesFailed++
	}
	s.RowsProcessed += result.Statistics.RowsProcessed
	s.ProductsCreated += result.Statistics.ProductsCreated
	s.ProductsSkipped += result.Statistics.ProductsSkipped
	s.RowErrors += result.Statistics.ErrorCount
}
