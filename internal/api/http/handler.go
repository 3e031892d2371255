package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"mime"
	"net/http"
	"strconv"
	"time"

	app "mine-guard/internal/application"
	"mine-guard/internal/domain/entity"
	"mine-guard/internal/infrastructure/codec"
)

const maxFrameBytes = 50 << 20 // 50MB

type Handler struct {
	monitoring *app.MonitoringService
	now        func() time.Time
}

func NewHandler(monitoring *app.MonitoringService) *Handler {
	return &Handler{monitoring: monitoring, now: time.Now}
}

// Routes регистрирует все эндпоинты и оборачивает их в CORS.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", h.Health)
	mux.HandleFunc("POST /api/process_frame", h.ProcessFrame)
	mux.HandleFunc("POST /api/start_detection", h.StartDetection)
	mux.HandleFunc("POST /api/stop_detection", h.StopDetection)
	mux.HandleFunc("GET /api/detection_status", h.DetectionStatus)
	mux.HandleFunc("GET /api/calibrate", h.GetCalibration)
	mux.HandleFunc("POST /api/calibrate", h.Calibrate)
	mux.HandleFunc("POST /api/emergency_stop", h.EmergencyStop)
	mux.HandleFunc("GET /api/history", h.History)
	return corsMiddleware(mux)
}

type frameRequest struct {
	Image string `json:"image"`
}

type frameResponse struct {
	Detections     []entity.Detection   `json:"detections"`
	RiskLevel      entity.RiskLevel     `json:"risk_level"`
	AnnotatedImage string               `json:"annotated_image"`
	Timestamp      time.Time            `json:"timestamp"`
	Quality        *entity.FrameQuality `json:"quality,omitempty"`
}

type statusResponse struct {
	Active      bool               `json:"active"`
	Results     []entity.Detection `json:"results"`
	RiskLevel   entity.RiskLevel   `json:"risk_level"`
	ProcessedAt *time.Time         `json:"processed_at,omitempty"`
	Timestamp   time.Time          `json:"timestamp"`
}

// Health GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]any{
		"status":           "healthy",
		"timestamp":        h.now(),
		"detection_active": h.monitoring.Active(),
	}, http.StatusOK)
}

// ProcessFrame POST /api/process_frame
// Принимает JSON {"image": "..."} или multipart с полем file.
func (h *Handler) ProcessFrame(w http.ResponseWriter, r *http.Request) {
	payload, err := readFrame(r)
	if err != nil || len(payload) == 0 {
		respondError(w, "No image data provided", http.StatusBadRequest)
		return
	}

	out, err := h.monitoring.ProcessFrame(r.Context(), "http", payload)
	if err != nil {
		log.Printf("Error processing frame: %v", err)
		status := http.StatusInternalServerError
		if entity.IsDecodeError(err) || errors.Is(err, entity.ErrEmptyPayload) {
			status = http.StatusBadRequest
		}
		respondError(w, err.Error(), status)
		return
	}

	respondJSON(w, frameResponse{
		Detections:     out.Analysis.Detections,
		RiskLevel:      out.Analysis.RiskLevel,
		AnnotatedImage: codec.DataURI("image/jpeg", out.Analysis.AnnotatedImage),
		Timestamp:      out.Record.ProcessedAt,
		Quality:        out.Analysis.Quality,
	}, http.StatusOK)
}

// StartDetection POST /api/start_detection
func (h *Handler) StartDetection(w http.ResponseWriter, r *http.Request) {
	h.monitoring.Start()
	respondJSON(w, map[string]string{"status": "detection_started"}, http.StatusOK)
}

// StopDetection POST /api/stop_detection
func (h *Handler) StopDetection(w http.ResponseWriter, r *http.Request) {
	h.monitoring.Stop()
	respondJSON(w, map[string]string{"status": "detection_stopped"}, http.StatusOK)
}

// DetectionStatus GET /api/detection_status
func (h *Handler) DetectionStatus(w http.ResponseWriter, r *http.Request) {
	st := h.monitoring.Status(r.Context())
	resp := statusResponse{
		Active:    st.Active,
		Results:   st.Results,
		RiskLevel: st.RiskLevel,
		Timestamp: h.now(),
	}
	if !st.ProcessedAt.IsZero() {
		resp.ProcessedAt = &st.ProcessedAt
	}
	respondJSON(w, resp, http.StatusOK)
}

// GetCalibration GET /api/calibrate
func (h *Handler) GetCalibration(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.monitoring.Calibration(), http.StatusOK)
}

// Calibrate POST /api/calibrate
func (h *Handler) Calibrate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		respondError(w, "Failed to read body", http.StatusBadRequest)
		return
	}

	cal, err := h.monitoring.Calibrate(body)
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}
	respondJSON(w, map[string]any{"status": "calibrated", "calibration": cal}, http.StatusOK)
}

// EmergencyStop POST /api/emergency_stop
func (h *Handler) EmergencyStop(w http.ResponseWriter, r *http.Request) {
	at := h.monitoring.EmergencyStop()
	respondJSON(w, map[string]any{"status": "emergency_stop_activated", "timestamp": at}, http.StatusOK)
}

// History GET /api/history?limit=N
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	records, err := h.monitoring.History(r.Context(), limit)
	if err != nil {
		log.Printf("Error loading history: %v", err)
		respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, map[string]any{"records": records}, http.StatusOK)
}

func readFrame(r *http.Request) ([]byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxFrameBytes); err != nil {
			return nil, err
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return io.ReadAll(file)
	}

	var req frameRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxFrameBytes)).Decode(&req); err != nil {
		return nil, err
	}
	return []byte(req.Image), nil
}

func respondJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error writing response: %v", err)
	}
}

func respondError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, map[string]string{"error": message}, status)
}

// corsMiddleware добавляет CORS заголовки
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
