package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"finassist/internal/core"
	"finassist/internal/tools"
)

const maxBodyBytes = 64 << 10

type recordRequest struct {
	Text string `json:"text"`
}

// pathID parses the {id} wildcard.
func pathID(r *http.Request, what string) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, core.Fail(core.ErrParse, fmt.Sprintf("Invalid %s %q.", what, raw), err)
	}
	return id, nil
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "user id")
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	profile, err := s.deps.Services.Users.Profile(r.Context(), id, r.URL.Query().Get("period"))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleSpending(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "user id")
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	insights, err := s.deps.Services.Spending.Analyze(r.Context(), id)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, insights)
}

func (s *Server) handleSpendingReport(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "user id")
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	insights, err := s.deps.Services.Spending.Analyze(r.Context(), id)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	path, err := s.deps.Reports.Write(id, insights)
	if err != nil {
		writeFailure(w, r, core.Fail(core.ErrStorage, "The spending report could not be written.", err))
		return
	}
	serveFile(w, r, path, contentTypeXLSX)
}

func (s *Server) handleAdvice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "user id")
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	input, err := s.deps.Services.Budgets.Evaluate(r.Context(), id, r.URL.Query().Get("period"))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, input)
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "user id")
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	forecast, err := s.deps.Services.Forecasts.Predict(r.Context(), id)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, forecast)
}

func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeFailure(w, r, core.Fail(core.ErrParse, "Invalid request body.", err))
		return
	}
	tx, err := s.deps.Services.Ledger.RecordText(r.Context(), req.Text)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, core.NewRecordedTransaction(tx))
}

func (s *Server) handleCreateReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "transaction id")
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	receipt, err := s.deps.Services.Receipts.Generate(r.Context(), id)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

// handleDownloadReceipt renders the receipt afresh and sends the PDF.
func (s *Server) handleDownloadReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "transaction id")
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	receipt, err := s.deps.Services.Receipts.Generate(r.Context(), id)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	serveFile(w, r, receipt.ReceiptPath, contentTypePDF)
}

func handleListTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, tools.Declarations())
}

// handleCallTool answers 200 even for tool errors; those arrive as {"error": ...}
// in the body, the way a model expects a tool result.
func (s *Server) handleCallTool(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeFailure(w, r, core.Fail(core.ErrParse, "Request body too large.", err))
			return
		}
		writeFailure(w, r, core.Fail(core.ErrParse, "Invalid request body.", err))
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Tools.Dispatch(r.Context(), r.PathValue("name"), raw))
}
