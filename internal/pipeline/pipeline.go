// Package pipeline orchestrates one document's translation end to end:
// extract, protect, chunk, translate, restore, verify, reconstruct.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dgallion1/doctrans/internal/chunker"
	"github.com/dgallion1/doctrans/internal/config"
	"github.com/dgallion1/doctrans/internal/document"
	"github.com/dgallion1/doctrans/internal/extract"
	"github.com/dgallion1/doctrans/internal/protect"
	"github.com/dgallion1/doctrans/internal/reconstruct"
	"github.com/dgallion1/doctrans/internal/translate"
)

// SetupError is fatal and raised before any work begins: bad path, bad
// extension, unknown language, missing credentials.
type SetupError struct {
	Reason string
	Err    error
}

func (e *SetupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("setup: %s: %s", e.Reason, e.Err)
	}
	return fmt.Sprintf("setup: %s", e.Reason)
}

func (e *SetupError) Unwrap() error { return e.Err }

// Runner drives the pipeline for one or more documents. Runners are safe
// for concurrent use; each Run carries its own state.
type Runner struct {
	cfg    config.Config
	engine *translate.Engine
	log    *slog.Logger
}

func NewRunner(cfg config.Config, engine *translate.Engine, log *slog.Logger) *Runner {
	return &Runner{cfg: cfg, engine: engine, log: log}
}

// Run translates one document, blocking until completion. The returned
// RunReport is non-nil whenever work started; setup failures return a nil
// report and a SetupError.
func (r *Runner) Run(ctx context.Context, inputPath, targetLang, outputPath string) (*RunReport, error) {
	if err := r.checkSetup(inputPath, targetLang); err != nil {
		return nil, err
	}
	if outputPath == "" {
		outputPath = defaultOutputPath(inputPath, targetLang)
	}

	report := newReport(inputPath, targetLang)
	defer report.finish()
	log := r.log.With("run_id", report.RunID, "input", filepath.Base(inputPath))

	// Extract.
	extractor, err := extract.ForFile(inputPath, extract.Options{
		ExtractMinChars: r.cfg.ExtractMinChars,
		OCR:             extract.NewOCRFallback(r.cfg.OCRLanguages, r.cfg.OCRDPI, r.cfg.OCRMinChars, log),
	}, log)
	if err != nil {
		return nil, &SetupError{Reason: "unsupported input", Err: err}
	}
	ext, err := extractor.Extract(ctx, inputPath)
	if err != nil {
		return report, err
	}
	report.Format = ext.Format
	report.OCRUsed = ext.OCRUsed
	log.Info("extracted", "format", ext.Format, "chars", len(ext.FullText), "ocr", ext.OCRUsed)

	// Protect and chunk.
	protected, tokens := protect.Protect(ext.FullText)
	chunks := chunker.Split(protected, r.cfg.ChunkMaxChars)
	if w := coverageWarning(protected, chunks); w != "" {
		report.warn(w)
	}
	log.Info("chunked", "chunks", len(chunks), "protected_tokens", len(tokens))

	// Translate.
	results, err := r.engine.TranslateChunks(ctx, chunks, "auto", targetLang)
	if err != nil {
		if ctx.Err() != nil {
			report.Cancelled = true
			log.Info("run cancelled, discarding partial results")
			return report, ctx.Err()
		}
		return report, err
	}
	if err := verifyResults(chunks, results); err != nil {
		return report, fmt.Errorf("verify translation results: %w", err)
	}
	report.recordResults(results)

	// Reassemble and restore.
	texts := make([]string, len(results))
	for i, res := range results {
		texts[i] = res.Text
	}
	translated, err := chunker.Join(chunks, texts)
	if err != nil {
		return report, fmt.Errorf("reassemble chunks: %w", err)
	}
	restored, lost := protect.Restore(translated, tokens)
	for _, tok := range lost {
		report.warn(fmt.Sprintf("placeholder %s not restored", tok.Placeholder))
	}
	if w := ratioWarning(ext.FullText, restored); w != "" {
		report.warn(w)
	}

	// Reconstruct. OCR and legacy conversions carry no structure, so those
	// documents degrade to plain text output.
	outFormat := ext.Format
	if ext.Format == document.FormatPaged && (ext.OCRUsed || len(ext.Blocks) == 0) {
		outFormat = document.FormatPlainText
	}
	if outFormat == document.FormatPlainText && !strings.EqualFold(filepath.Ext(outputPath), ".txt") {
		degraded := strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + ".txt"
		log.Info("structural reconstruction unavailable, writing plain text", "output", degraded)
		outputPath = degraded
	}
	recon, err := reconstruct.ForFormat(outFormat, reconstruct.Options{
		FontName:    r.cfg.PDFFontName,
		MinFontSize: r.cfg.PDFMinFontSize,
	}, log)
	if err != nil {
		return report, err
	}
	if err := recon.Reconstruct(ctx, ext, restored, inputPath, outputPath); err != nil {
		// Reconstructors may leave a partial file behind; a failed run
		// must not leave output on disk.
		os.Remove(outputPath)
		if ctx.Err() != nil {
			report.Cancelled = true
			return report, ctx.Err()
		}
		return report, err
	}

	report.OutputPath = outputPath
	log.Info("run complete",
		"output", outputPath,
		"untranslated", report.Untranslated,
		"warnings", len(report.Warnings))
	return report, nil
}

// RunAll translates several documents concurrently as independent pipeline
// instances over a small worker pool. Each input gets a report slot; a nil
// report with a non-nil error means setup failed for that input.
func (r *Runner) RunAll(ctx context.Context, inputs []string, targetLang string) ([]*RunReport, []error) {
	reports := make([]*RunReport, len(inputs))
	errs := make([]error, len(inputs))

	workers := r.cfg.Workers
	if workers > len(inputs) {
		workers = len(inputs)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				reports[i], errs[i] = r.Run(ctx, inputs[i], targetLang, "")
			}
		}()
	}
	for i := range inputs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return reports, errs
}

func (r *Runner) checkSetup(inputPath, targetLang string) error {
	info, err := os.Stat(inputPath)
	if err != nil {
		return &SetupError{Reason: "input file", Err: err}
	}
	if info.IsDir() {
		return &SetupError{Reason: fmt.Sprintf("input %s is a directory", inputPath)}
	}
	if !extract.IsSupportedExtension(inputPath) {
		return &SetupError{Reason: fmt.Sprintf("unsupported extension %s", filepath.Ext(inputPath))}
	}
	if !IsSupportedLanguage(targetLang) {
		return &SetupError{Reason: fmt.Sprintf("unknown target language %q", targetLang)}
	}
	if r.engine == nil || r.engine.ProviderCount() == 0 {
		return &SetupError{Reason: "no translation providers configured"}
	}
	return nil
}

// defaultOutputPath is {stem}_{lang}{ext} next to the input.
func defaultOutputPath(inputPath, targetLang string) string {
	ext := filepath.Ext(inputPath)
	stem := strings.TrimSuffix(inputPath, ext)
	return fmt.Sprintf("%s_%s%s", stem, targetLang, ext)
}
