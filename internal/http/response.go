package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"finassist/internal/core"
	applog "finassist/internal/log"
	"finassist/internal/tools"
)

const (
	contentTypeJSON = "application/json"
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// statusFor maps a failure kind to an HTTP status. A ledger connect failure matches
// both connection and storage, so connection is checked first.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrParse):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNotFound),
		errors.Is(err, core.ErrNoData),
		errors.Is(err, core.ErrInsufficientHistory):
		return http.StatusNotFound
	case errors.Is(err, core.ErrConnection):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeFailure answers with {"error": message}.
func writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	log := applog.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.ErrorContext(r.Context(), "Request failed", applog.FieldError, err)
	} else {
		log.DebugContext(r.Context(), "Request rejected", applog.FieldError, err)
	}
	writeJSON(w, status, tools.ErrorResult{Error: core.UserMessage(err)})
}

// serveFile sends path as an attachment.
func serveFile(w http.ResponseWriter, r *http.Request, path, contentType string) {
	f, err := os.Open(path)
	if err != nil {
		writeFailure(w, r, core.Fail(core.ErrStorage, "The document could not be read.", err))
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		writeFailure(w, r, core.Fail(core.ErrStorage, "The document could not be read.", err))
		return
	}

	name := filepath.Base(path)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(name))
	http.ServeContent(w, r, name, info.ModTime(), f)
}
