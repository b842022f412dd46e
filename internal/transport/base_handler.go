package transport

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/user-management/internal"
	"github.com/frahmantamala/user-management/pkg/logger"
)

// Response is the envelope every endpoint answers with, success or failure.
type Response struct {
	StatusCode string      `json:"status_code"`
	StatusName string      `json:"status_name"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type Pagination struct {
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
	Total  int64 `json:"total"`
}

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
		if lg == nil {
			lg = slog.Default()
		}
	}
	return &BaseHandler{Logger: lg}
}

func (h *BaseHandler) writeEnvelope(w http.ResponseWriter, status int, resp Response) {
	resp.StatusCode = strconv.Itoa(status)
	resp.StatusName = http.StatusText(status)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteData writes a success envelope carrying a data payload.
func (h *BaseHandler) WriteData(w http.ResponseWriter, status int, data interface{}) {
	h.writeEnvelope(w, status, Response{Data: data})
}

// WriteMessage writes a success envelope with only a human-readable message.
func (h *BaseHandler) WriteMessage(w http.ResponseWriter, status int, message string) {
	h.writeEnvelope(w, status, Response{Message: message})
}

// WritePaginated writes a success envelope with data and pagination metadata.
func (h *BaseHandler) WritePaginated(w http.ResponseWriter, status int, data interface{}, p Pagination) {
	h.writeEnvelope(w, status, Response{Data: data, Pagination: &p})
}

// WriteError writes an error envelope with the given status and message.
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	h.Logger.Error("http error", "status", status, "message", message)
	h.writeEnvelope(w, status, Response{Message: message})
}

// WriteAppError maps a service error onto the envelope. AppErrors keep their
// status and message; anything else becomes an opaque 500.
func (h *BaseHandler) WriteAppError(w http.ResponseWriter, err error) {
	if appErr, ok := internal.IsAppError(err); ok {
		h.Logger.Error("request failed", "code", appErr.Code, "error", appErr.Error())
		h.writeEnvelope(w, appErr.StatusCode, Response{Message: appErr.Message})
		return
	}
	h.Logger.Error("unexpected error", "error", err)
	h.writeEnvelope(w, http.StatusInternalServerError, Response{Message: "internal server error"})
}

// ExtractTokenFromHeader extracts Bearer token from Authorization header
func (h *BaseHandler) ExtractTokenFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ""
	}

	return authHeader[7:]
}
