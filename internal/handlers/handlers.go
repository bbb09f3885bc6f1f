package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Brownie44l1/soil-api/internal/classifier"
	"github.com/Brownie44l1/soil-api/internal/history"
	"github.com/Brownie44l1/soil-api/internal/model"
	"github.com/Brownie44l1/soil-api/internal/soil"
)

var allowedExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

// maxImagePixels caps decoded image size; a small compressed upload can
// expand to gigabytes of pixels.
const maxImagePixels = 40_000_000

type Handler struct {
	classifier     *classifier.Classifier
	recorder       history.Recorder
	logger         *log.Logger
	maxUploadBytes int64
	maxImagePixels int
}

func NewHandler(c *classifier.Classifier, recorder history.Recorder, logger *log.Logger, maxUploadBytes int64) *Handler {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if recorder == nil {
		recorder = history.NewMemory(0)
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &Handler{
		classifier:     c,
		recorder:       recorder,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
		maxImagePixels: maxImagePixels,
	}
}

// Routes registers every endpoint on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/health", enableCORS(h.Health))
	mux.HandleFunc("/predict", enableCORS(h.Predict))
	mux.HandleFunc("/predict/image", enableCORS(h.PredictFromImage))
	mux.HandleFunc("/recommendations", enableCORS(h.Recommendations))
	mux.HandleFunc("/soils", enableCORS(h.Soils))
	mux.HandleFunc("/history", enableCORS(h.History))
}

func enableCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "healthy", "model": "loaded"})
}

// Predict classifies an already preprocessed tensor sent as JSON.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxUploadBytes))
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var req model.PredictionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	meta := h.classifier.Metadata()
	if expectedSize := meta.InputSize(); len(req.Image) != expectedSize {
		http.Error(w, fmt.Sprintf("Expected %d values, got %d", expectedSize, len(req.Image)),
			http.StatusBadRequest)
		return
	}

	result, err := h.classifier.PredictTensor(model.Tensor{Shape: meta.InputShape, Data: req.Image})
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, h.respond(r.Context(), "tensor", result))
}

func (h *Handler) PredictFromImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "No image file provided. Use 'image' as the form field name", http.StatusBadRequest)
		return
	}
	defer file.Close()

	h.logger.Printf("Received file: %s, size: %d bytes", header.Filename, header.Size)

	if ext := strings.ToLower(filepath.Ext(header.Filename)); !allowedExtensions[ext] {
		http.Error(w, "Unsupported file type. Supported: jpg, jpeg, png", http.StatusUnsupportedMediaType)
		return
	}

	cfg, format, err := image.DecodeConfig(file)
	if err != nil || (format != "jpeg" && format != "png") || cfg.Width <= 0 || cfg.Height <= 0 {
		http.Error(w, "Invalid image format. Supported: JPEG, PNG", http.StatusBadRequest)
		return
	}
	if cfg.Width > h.maxImagePixels/cfg.Height {
		http.Error(w, fmt.Sprintf("Image too large: %dx%d exceeds %d pixels", cfg.Width, cfg.Height, h.maxImagePixels),
			http.StatusBadRequest)
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		h.logger.Printf("Rewind error: %v", err)
		http.Error(w, "Failed to read image", http.StatusInternalServerError)
		return
	}

	img, _, err := image.Decode(file)
	if err != nil {
		http.Error(w, "Invalid image format. Supported: JPEG, PNG", http.StatusBadRequest)
		return
	}

	h.logger.Printf("Image format: %s, dimensions: %dx%d", format, img.Bounds().Dx(), img.Bounds().Dy())

	result, err := h.classifier.Predict(img)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, h.respond(r.Context(), header.Filename, result))
}

func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	label := r.URL.Query().Get("soil")
	writeJSON(w, map[string]any{
		"soil":            label,
		"recommendations": soil.Recommend(label),
	})
}

func (h *Handler) Soils(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"classes": soil.Classes()})
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}
	records, err := h.recorder.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Printf("History error: %v", err)
		http.Error(w, "Failed to load history", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"records": records})
}

// respond builds the response and records the classification. Recording
// failures are logged only.
func (h *Handler) respond(ctx context.Context, source string, result *classifier.Result) *model.PredictionResponse {
	resp := &model.PredictionResponse{
		Soil:            result.Soil,
		Confidence:      result.Confidence,
		Predictions:     result.Predictions,
		Recommendations: soil.Recommend(string(result.Soil)),
		Description:     soil.Describe(result.Soil),
	}

	rec, err := h.recorder.Record(ctx, history.Record{
		Source:     source,
		Soil:       string(result.Soil),
		Confidence: result.Confidence,
	})
	if err != nil {
		h.logger.Printf("History error: %v", err)
	} else {
		resp.ID = rec.ID
	}

	h.logger.Printf("Classified %s as %s (%.3f)", source, result.Soil, result.Confidence)
	return resp
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch model.KindOf(err) {
	case model.KindPreprocess:
		h.logger.Printf("Preprocessing error: %v", err)
		http.Error(w, "Failed to preprocess image", http.StatusBadRequest)
	default:
		h.logger.Printf("Prediction error: %v", err)
		http.Error(w, "Prediction failed", http.StatusInternalServerError)
	}
}
