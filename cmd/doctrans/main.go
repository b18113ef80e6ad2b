package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dgallion1/doctrans/internal/config"
	"github.com/dgallion1/doctrans/internal/pipeline"
	"github.com/dgallion1/doctrans/internal/translate"
)

func main() {
	lang := flag.String("lang", "", "target language code (required, e.g. es, zh-CN)")
	out := flag.String("out", "", "output path (default {stem}_{lang}{ext}; single input only)")
	providers := flag.String("providers", "", "comma-separated provider order, overrides DOCTRANS_PROVIDERS")
	verbose := flag.Bool("verbose", false, "log at debug level")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: doctrans -lang CODE [-out PATH] [-providers LIST] FILE...\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	inputs := flag.Args()
	if *lang == "" || len(inputs) == 0 {
		flag.Usage()
		os.Exit(2)
	}
	if *out != "" && len(inputs) > 1 {
		log.Error("-out only applies to a single input file")
		os.Exit(2)
	}

	cfg := config.Load()
	if *providers != "" {
		cfg.Providers = splitList(*providers)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	engine, err := buildEngine(cfg, log)
	if err != nil {
		log.Error("provider setup failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := pipeline.NewRunner(cfg, engine, log)

	var reports []*pipeline.RunReport
	var errs []error
	if len(inputs) == 1 {
		report, err := runner.Run(ctx, inputs[0], *lang, *out)
		reports, errs = []*pipeline.RunReport{report}, []error{err}
	} else {
		reports, errs = runner.RunAll(ctx, inputs, *lang)
	}

	failed := 0
	for i, err := range errs {
		if err != nil {
			failed++
			log.Error("run failed", "input", inputs[i], "error", err)
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	for _, report := range reports {
		if report == nil {
			continue
		}
		if err := enc.Encode(report); err != nil {
			log.Error("encode report", "error", err)
		}
	}

	if failed > 0 {
		os.Exit(1)
	}
}

func buildEngine(cfg config.Config, log *slog.Logger) (*translate.Engine, error) {
	var chain []translate.Provider
	for _, name := range cfg.Providers {
		switch name {
		case "google":
			chain = append(chain, translate.NewGoogleProvider())
		case "deepl":
			if cfg.DeepLAPIKey == "" {
				return nil, fmt.Errorf("deepl enabled without DOCTRANS_DEEPL_API_KEY")
			}
			chain = append(chain, translate.NewDeepLProvider(cfg.DeepLAPIKey))
		case "libre":
			chain = append(chain, translate.NewLibreProvider(cfg.LibreTranslateURL, cfg.LibreTranslateKey))
		default:
			return nil, fmt.Errorf("unknown provider %q", name)
		}
	}
	return translate.NewEngine(chain, log,
		translate.WithTimeout(cfg.RequestTimeout),
		translate.WithWorkers(cfg.Workers)), nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
