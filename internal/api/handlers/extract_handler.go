package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ingestly/docextract/internal/extractor"
	"github.com/ingestly/docextract/internal/llm"
	"github.com/ingestly/docextract/internal/models"
)

const maxUploadBytes = 256 << 20

// ExtractHandler exposes the batch pipeline over HTTP. Uploaded files are
// staged in a per-request temp directory and processed in upload order.
type ExtractHandler struct {
	router     *extractor.Router
	summarizer *llm.Summarizer // nil when Gemini is not configured
	logger     *slog.Logger
}

func NewExtractHandler(router *extractor.Router, summarizer *llm.Summarizer, logger *slog.Logger) *ExtractHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractHandler{router: router, summarizer: summarizer, logger: logger}
}

type extractResponseItem struct {
	File    string                  `json:"file"`
	Result  models.ExtractionResult `json:"result"`
	Summary *string                 `json:"summary,omitempty"`
}

// Extract handles POST /api/extract: multipart form with one or more "files"
// parts. Add ?summarize=1 to attach a short abstract to each completed
// result when the summarizer is configured.
func (h *ExtractHandler) Extract(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	if r.MultipartForm == nil || len(r.MultipartForm.File["files"]) == 0 {
		http.Error(w, "no files uploaded", http.StatusBadRequest)
		return
	}

	stageDir, err := os.MkdirTemp("", "extract-"+uuid.NewString())
	if err != nil {
		http.Error(w, "staging failed", http.StatusInternalServerError)
		return
	}
	defer os.RemoveAll(stageDir)

	var paths []string
	for _, fh := range r.MultipartForm.File["files"] {
		local, err := stageUpload(stageDir, fh)
		if err != nil {
			http.Error(w, fmt.Sprintf("staging %q failed: %v", fh.Filename, err), http.StatusInternalServerError)
			return
		}
		paths = append(paths, local)
	}

	results := h.router.Run(r.Context(), paths)

	items := make([]extractResponseItem, 0, len(results))
	for _, fr := range results {
		item := extractResponseItem{File: fr.File, Result: fr.Result}
		if h.summarize(r) && fr.Result.Status == models.StatusCompleted && fr.Result.Text != nil {
			item.Summary = h.trySummarize(r.Context(), *fr.Result.Text)
		}
		items = append(items, item)
	}

	writeJSON(w, http.StatusOK, items)
}

// Health reports liveness.
func (h *ExtractHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *ExtractHandler) summarize(r *http.Request) bool {
	if h.summarizer == nil {
		return false
	}
	v := r.URL.Query().Get("summarize")
	return v == "1" || v == "true"
}

func (h *ExtractHandler) trySummarize(ctx context.Context, text string) *string {
	sumCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	s, err := h.summarizer.Summarize(sumCtx, text)
	if err != nil {
		h.logger.Warn("summarization failed", "err", err)
		return nil
	}
	if s == "" {
		return nil
	}
	return &s
}

func stageUpload(dir string, fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	// Base strips any path components a hostile client may send.
	local := filepath.Join(dir, filepath.Base(fh.Filename))
	dst, err := os.Create(local)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(local)
		return "", err
	}
	return local, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
