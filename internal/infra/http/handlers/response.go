package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/xavierca1/contractorconnect/internal/usecase"
)

const maxBodyBytes = 1 << 20

type ErrorResponse struct {
	Error   string                    `json:"error"`
	Message string                    `json:"message"`
	Fields  []usecase.ValidationError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
	if err == nil {
		return true
	}
	if errors.Is(err, io.EOF) {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "request body is empty")
		return false
	}
	writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "invalid JSON: "+err.Error())
	return false
}

// writeUseCaseError maps the use case error taxonomy onto HTTP.
func writeUseCaseError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var (
		verrs   usecase.ValidationErrors
		authErr *usecase.AuthError
		nf      *usecase.NotFoundError
		domain  *usecase.DomainError
		tech    *usecase.TechnicalError
	)

	switch {
	case errors.As(err, &verrs):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "VALIDATION_ERROR",
			Message: verrs.Error(),
			Fields:  verrs,
		})
	case errors.As(err, &authErr):
		writeErrorResponse(w, http.StatusUnauthorized, "UNAUTHORIZED", authErr.Error())
	case errors.As(err, &nf):
		writeErrorResponse(w, http.StatusNotFound, "NOT_FOUND", nf.Error())
	case errors.As(err, &domain):
		writeErrorResponse(w, http.StatusConflict, domain.Code, domain.Message)
	case errors.As(err, &tech):
		logger.Error("request failed", zap.String("code", tech.Code), zap.Error(err))
		writeErrorResponse(w, http.StatusInternalServerError, tech.Code, tech.Message)
	default:
		logger.Error("unexpected error", zap.Error(err))
		writeErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
