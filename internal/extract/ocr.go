package extract

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// DefaultOCRDPI is the rasterization resolution for OCR input.
const DefaultOCRDPI = 300

// DefaultOCRMinChars is the per-page yield below which the layout-aware
// segmentation mode is considered to have failed and recognition degrades to
// the plainer single-block mode. Empirical cutoff, tunable via config.
const DefaultOCRMinChars = 32

// OCRFallback rasterizes PDF pages and recognizes their text with Tesseract.
// Rasterization and recognition are injectable for tests and for swapping
// the engine.
type OCRFallback struct {
	Languages []string
	DPI       int
	MinChars  int
	log       *slog.Logger

	rasterize func(ctx context.Context, path string, page, dpi int) ([]byte, error)
	recognize func(img []byte, psm gosseract.PageSegMode, langs []string, dpi int) (string, error)
}

func NewOCRFallback(languages []string, dpi, minChars int, log *slog.Logger) *OCRFallback {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	if dpi <= 0 {
		dpi = DefaultOCRDPI
	}
	if minChars <= 0 {
		minChars = DefaultOCRMinChars
	}
	return &OCRFallback{
		Languages: languages,
		DPI:       dpi,
		MinChars:  minChars,
		log:       log,
		rasterize: rasterizePoppler,
		recognize: recognizeTesseract,
	}
}

// Recognize OCRs every page and returns the concatenated text, pages
// separated by blank lines. Per-page failures degrade, they do not abort:
// the error is only returned when no page yields text.
func (o *OCRFallback) Recognize(ctx context.Context, path string, pages int) (string, error) {
	var sb strings.Builder
	var lastErr error
	recognized := 0

	for page := 1; page <= pages; page++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := o.recognizePage(ctx, path, page)
		if err != nil {
			lastErr = err
			o.log.Warn("ocr page failed", "page", page, "error", err)
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(text)
		recognized++
	}

	if recognized == 0 {
		if lastErr == nil {
			lastErr = fmt.Errorf("no pages recognized")
		}
		return "", lastErr
	}
	return sb.String(), nil
}

// recognizePage tries the layout-aware segmentation mode first and degrades
// to single-block mode when the yield is below the cutoff.
func (o *OCRFallback) recognizePage(ctx context.Context, path string, page int) (string, error) {
	img, err := o.rasterize(ctx, path, page, o.DPI)
	if err != nil {
		return "", fmt.Errorf("rasterize page %d: %w", page, err)
	}

	text, err := o.recognize(img, gosseract.PSM_AUTO, o.Languages, o.DPI)
	if err == nil && yield(text) >= o.MinChars {
		return strings.TrimSpace(text), nil
	}

	plain, perr := o.recognize(img, gosseract.PSM_SINGLE_BLOCK, o.Languages, o.DPI)
	if perr != nil {
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(text), nil
	}
	// Keep whichever mode yielded more.
	if yield(plain) > yield(text) {
		return strings.TrimSpace(plain), nil
	}
	return strings.TrimSpace(text), nil
}

func yield(text string) int {
	return len(strings.Join(strings.Fields(text), ""))
}

// rasterizePoppler renders one page to grayscale PNG bytes with pdftoppm.
func rasterizePoppler(ctx context.Context, path string, page, dpi int) ([]byte, error) {
	tmpDir, err := os.MkdirTemp("", "doctrans-ocr-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	cmd := exec.CommandContext(ctx, "pdftoppm",
		"-f", fmt.Sprint(page),
		"-l", fmt.Sprint(page),
		"-png",
		"-r", fmt.Sprint(dpi),
		"-singlefile",
		path, prefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm: %w (%s)", err, strings.TrimSpace(string(out)))
	}

	img, err := imaging.Open(prefix + ".png")
	if err != nil {
		return nil, fmt.Errorf("load rendered page: %w", err)
	}

	// Grayscale input measurably improves tesseract on scanned pages.
	gray := imaging.Grayscale(img)
	var buf bytes.Buffer
	if err := png.Encode(&buf, gray); err != nil {
		return nil, fmt.Errorf("encode page image: %w", err)
	}
	return buf.Bytes(), nil
}

// recognizeTesseract runs one gosseract recognition pass.
func recognizeTesseract(img []byte, psm gosseract.PageSegMode, langs []string, dpi int) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetImageFromBytes(img); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	if err := client.SetLanguage(langs...); err != nil {
		return "", fmt.Errorf("set languages: %w", err)
	}
	if err := client.SetPageSegMode(psm); err != nil {
		return "", fmt.Errorf("set page segmentation mode: %w", err)
	}
	if err := client.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(dpi)); err != nil {
		return "", fmt.Errorf("set dpi: %w", err)
	}
	return client.Text()
}
