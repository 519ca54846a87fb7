// Package api exposes the analysis and account services over HTTP.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/gilchrisn/network-analysis-service/pkg/models"
	"github.com/gilchrisn/network-analysis-service/pkg/service"
	"github.com/gilchrisn/network-analysis-service/pkg/utils"
)

// Handlers contains HTTP request handlers
type Handlers struct {
	analysisService *service.AnalysisService
	authService     *service.AuthService
	metrics         *Metrics
	maxUploadBytes  int64
	startedAt       time.Time
}

// NewHandlers creates new API handlers
func NewHandlers(analysisService *service.AnalysisService, authService *service.AuthService, metrics *Metrics, maxUploadBytes int64) *Handlers {
	return &Handlers{
		analysisService: analysisService,
		authService:     authService,
		metrics:         metrics,
		maxUploadBytes:  maxUploadBytes,
		startedAt:       time.Now(),
	}
}

// Upload handles a multipart edge-list upload and returns its analysis
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.WriteBareError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		log.Warn().Err(err).Msg("Failed to parse multipart form")
		utils.WriteBareError(w, http.StatusBadRequest, "No file part")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		// A part sent with an empty filename is stored as a plain value.
		if _, ok := r.MultipartForm.Value["file"]; ok {
			utils.WriteBareError(w, http.StatusBadRequest, "No selected file")
			return
		}
		utils.WriteBareError(w, http.StatusBadRequest, "No file part")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		utils.WriteBareError(w, http.StatusBadRequest, "No selected file")
		return
	}

	log.Info().
		Str("filename", header.Filename).
		Int64("size", header.Size).
		Str("user", sessionEmail(r)).
		Msg("Upload request received")

	report, err := h.analysisService.AnalyzeUpload(r.Context(), header.Filename, file)
	if err != nil {
		if errors.Is(err, service.ErrInvalidFilename) {
			utils.WriteBareError(w, http.StatusBadRequest, "No selected file")
			return
		}
		log.Error().Err(err).Str("filename", header.Filename).Msg("Upload analysis failed")
		utils.WriteBareError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, report)
}

// Sample analyzes a bundled sample file
func (h *Handlers) Sample(w http.ResponseWriter, r *http.Request) {
	filename := mux.Vars(r)["filename"]

	log.Info().
		Str("sample", filename).
		Str("user", sessionEmail(r)).
		Msg("Sample analysis requested")

	report, err := h.analysisService.AnalyzeSample(r.Context(), filename)
	switch {
	case errors.Is(err, service.ErrInvalidPath):
		utils.WriteBareError(w, http.StatusBadRequest, "Invalid file path")
		return
	case errors.Is(err, service.ErrSampleNotFound):
		utils.WriteBareError(w, http.StatusNotFound, "Sample file not found")
		return
	case err != nil:
		log.Error().Err(err).Str("sample", filename).Msg("Sample analysis failed")
		utils.WriteBareError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, report)
}

// ListSamples lists the bundled sample files
func (h *Handlers) ListSamples(w http.ResponseWriter, r *http.Request) {
	samples, err := h.analysisService.ListSamples()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list samples")
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to list samples", err)
		return
	}

	utils.WriteSuccessResponse(w, "Samples retrieved successfully", samples)
}

// HealthCheck returns service health status
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
		Workers:   h.analysisService.MaxWorkers(),
	}

	utils.WriteSuccessResponse(w, "Service is healthy", health)
}

// Metrics serves the Prometheus registry
func (h *Handlers) Metrics(w http.ResponseWriter, r *http.Request) {
	h.metrics.Handler().ServeHTTP(w, r)
}
