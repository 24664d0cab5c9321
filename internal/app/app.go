package app

import (
	"context"
	"log/slog"
	"os"

	"github.com/ingestly/docextract/internal/config"
	"github.com/ingestly/docextract/internal/extractor"
	"github.com/ingestly/docextract/internal/lang"
	"github.com/ingestly/docextract/internal/llm"
	"github.com/ingestly/docextract/internal/ocr"
	"github.com/ingestly/docextract/internal/storage"
	"github.com/ingestly/docextract/internal/stt"

	audiopkg "github.com/ingestly/docextract/internal/audio"
)

// App owns the wired pipeline and its optional satellites. Components that
// depend on missing external tools or credentials are skipped with a warning
// instead of failing startup; the router simply covers fewer formats then.
type App struct {
	Config     *config.Config
	Logger     *slog.Logger
	Router     *extractor.Router
	Fetcher    storage.Fetcher // nil without AWS credentials
	Summarizer *llm.Summarizer // nil without a Gemini key
	Server     *Server
}

// NewLogger builds the shared structured logger.
func NewLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// NewApp wires every extractor the environment can support.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = NewLogger()
	}

	detector := lang.NewDetector()
	router := extractor.NewRouter(logger)

	router.Register(extractor.NewTextExtractor(detector), extractor.TextExtensions()...)
	router.Register(extractor.NewDocxExtractor(detector), "docx")
	router.Register(extractor.NewFallbackExtractor(detector), extractor.FallbackExtensions()...)

	tesseract := ocr.NewTesseractEngine(cfg.OCRLanguages...)
	router.Register(extractor.NewImageExtractor(tesseract, detector, cfg.MinOCRConfidence),
		extractor.ImageExtensions()...)

	engines := []ocr.Engine{tesseract}
	if bin, err := config.ResolveBinary(cfg.EasyOCRBin); err == nil {
		engines = append(engines, ocr.NewEasyOCREngine(bin))
	} else {
		logger.Warn("second ocr engine unavailable, scanned pdfs run single-engine", "err", err)
	}

	if renderBin, err := config.ResolveBinary(cfg.PdftoppmBin); err == nil {
		router.Register(extractor.NewPDFExtractor(renderBin, engines, detector, logger), "pdf")
	} else {
		logger.Warn("pdf rasterizer unavailable, pdf inputs unsupported", "err", err)
	}

	ffmpegBin, ffmpegErr := config.ResolveBinary(cfg.FFmpegBin)
	whisperBin, whisperErr := config.ResolveBinary(cfg.WhisperBin)
	if ffmpegErr == nil && whisperErr == nil {
		pre := audiopkg.NewPreprocessor(ffmpegBin, logger)
		model := stt.NewWhisperCLI(ctx, whisperBin, cfg.WhisperModelDir, stt.Thresholds{
			LargeGB:  cfg.MemoryLargeGB,
			MediumGB: cfg.MemoryMediumGB,
			SmallGB:  cfg.MemorySmallGB,
		}, logger)
		router.Register(extractor.NewAudioExtractor(pre, model, logger), extractor.AudioExtensions()...)
	} else {
		logger.Warn("audio pipeline unavailable", "ffmpeg_err", ffmpegErr, "whisper_err", whisperErr)
	}

	app := &App{Config: cfg, Logger: logger, Router: router}

	if cfg.AwsAccessKey != "" && cfg.AwsSecretKey != "" {
		fetcher, err := storage.NewS3Fetcher(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		app.Fetcher = fetcher
		logger.Info("remote input fetching enabled", "region", cfg.AwsRegion)
	}

	if cfg.GeminiAPIKey != "" {
		summarizer, err := llm.NewSummarizer(ctx, cfg.GeminiAPIKey, cfg.GenModel)
		if err != nil {
			return nil, err
		}
		app.Summarizer = summarizer
		logger.Info("summarization enabled", "model", cfg.GenModel)
	}

	app.Server = NewServer(cfg, app.Router, app.Summarizer, logger)
	return app, nil
}

func (a *App) Close() {
	if a.Summarizer != nil {
		_ = a.Summarizer.Close()
	}
}
