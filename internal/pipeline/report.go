package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/doctrans/internal/document"
	"github.com/dgallion1/doctrans/internal/translate"
)

// ChunkOutcome records how one chunk fared.
type ChunkOutcome struct {
	Index      int    `json:"index"`
	Provider   string `json:"provider,omitempty"`
	Translated bool   `json:"translated"`
	Error      string `json:"error,omitempty"`
}

// RunReport is the full account of one document run.
type RunReport struct {
	RunID        string          `json:"run_id"`
	InputPath    string          `json:"input_path"`
	OutputPath   string          `json:"output_path,omitempty"`
	Format       document.Format `json:"format"`
	TargetLang   string          `json:"target_lang"`
	OCRUsed      bool            `json:"ocr_used,omitempty"`
	Chunks       []ChunkOutcome  `json:"chunks,omitempty"`
	Warnings     []string        `json:"warnings,omitempty"`
	Untranslated int             `json:"untranslated"`
	Cancelled    bool            `json:"cancelled,omitempty"`
	StartedAt    time.Time       `json:"started_at"`
	FinishedAt   time.Time       `json:"finished_at"`
	Duration     time.Duration   `json:"duration_ns"`
}

func newReport(inputPath, targetLang string) *RunReport {
	return &RunReport{
		RunID:      uuid.NewString(),
		InputPath:  inputPath,
		TargetLang: targetLang,
		StartedAt:  time.Now().UTC(),
	}
}

func (r *RunReport) finish() {
	r.FinishedAt = time.Now().UTC()
	r.Duration = r.FinishedAt.Sub(r.StartedAt)
}

// recordResults copies the per-chunk translation outcomes into the report.
func (r *RunReport) recordResults(results []translate.Result) {
	r.Chunks = make([]ChunkOutcome, len(results))
	for i, res := range results {
		out := ChunkOutcome{
			Index:      res.Index,
			Provider:   res.Provider,
			Translated: res.Translated,
		}
		if res.Err != nil {
			out.Error = res.Err.Error()
		}
		if !res.Translated {
			r.Untranslated++
		}
		r.Chunks[i] = out
	}
}

func (r *RunReport) warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}
