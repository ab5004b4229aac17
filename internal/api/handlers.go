package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/derekprior/doubles/internal/api/apierr"
	"github.com/derekprior/doubles/internal/generator"
	"github.com/derekprior/doubles/internal/schedule"
	"github.com/derekprior/doubles/internal/validator"
	"github.com/derekprior/doubles/internal/worker"
)

const maxBodyBytes = 1 << 20

// Dispatcher runs a generation request on a worker.
type Dispatcher interface {
	Dispatch(ctx context.Context, req generator.Request) (worker.Response, error)
}

// ValidateResponse is the body of POST /api/v1/validate.
type ValidateResponse struct {
	Unmet       []validator.Unmet       `json:"unmet"`
	SameRound   []validator.SameRound   `json:"same_round"`
	Consecutive []validator.Consecutive `json:"consecutive"`
	Appearances map[string]int          `json:"appearances"`
}

func newValidateResponse(s schedule.Schedule) ValidateResponse {
	result := validator.Validate(s)
	resp := ValidateResponse{
		Unmet:       result.Unmet,
		SameRound:   result.SameRound,
		Consecutive: result.Consecutive,
		Appearances: s.Appearances(),
	}
	if resp.Unmet == nil {
		resp.Unmet = []validator.Unmet{}
	}
	if resp.SameRound == nil {
		resp.SameRound = []validator.SameRound{}
	}
	if resp.Consecutive == nil {
		resp.Consecutive = []validator.Consecutive{}
	}
	return resp
}

// GenerateResponse is the body of POST /api/v1/generate. Status is either
// "success" with Result set, or "error" with Message set.
type GenerateResponse struct {
	ID         string            `json:"id"`
	Status     generator.Status  `json:"status"`
	Result     schedule.Schedule `json:"result,omitempty"`
	Message    string            `json:"message,omitempty"`
	ElapsedMS  int64             `json:"elapsed_ms"`
	Validation *ValidateResponse `json:"validation,omitempty"`
}

type scheduleHandler struct {
	dispatcher Dispatcher
	timeout    time.Duration
}

// Validate handles POST /api/v1/validate
func (h *scheduleHandler) Validate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("could not read request body"))
		return
	}
	s, err := schedule.ParseJSON(body)
	if err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, newValidateResponse(s))
}

// Generate handles POST /api/v1/generate
func (h *scheduleHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if h.dispatcher == nil {
		apierr.WriteError(w, worker.ErrNotReady)
		return
	}

	var req generator.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		apierr.WriteError(w, asInvalidRequest(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	resp, err := h.dispatcher.Dispatch(ctx, req)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	out := GenerateResponse{
		ID:        resp.ID,
		Status:    resp.Outcome.Status,
		Result:    resp.Outcome.Result,
		Message:   resp.Outcome.Message,
		ElapsedMS: resp.Elapsed.Milliseconds(),
	}
	if resp.Outcome.OK() {
		v := newValidateResponse(resp.Outcome.Result)
		out.Validation = &v
	}
	writeJSON(w, http.StatusOK, out)
}

// asInvalidRequest keeps errors that have their own mapping and reports the
// rest as bad requests.
func asInvalidRequest(err error) error {
	if errors.Is(err, generator.ErrInsufficientPlayers) {
		return err
	}
	return apierr.NewInvalidRequestError(err.Error())
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}
