package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/WessleyAI/wessley-vin/engine/domain"
	"github.com/WessleyAI/wessley-vin/engine/graph"
	"github.com/WessleyAI/wessley-vin/engine/scan"
	"github.com/WessleyAI/wessley-vin/engine/vin"
	"github.com/WessleyAI/wessley-vin/pkg/fn"
	"github.com/WessleyAI/wessley-vin/pkg/metrics"
	"github.com/WessleyAI/wessley-vin/pkg/vinscan"
	"github.com/WessleyAI/wessley-vin/pkg/vpic"
)

const (
	// maxBatch caps POST /api/vin/batch.
	maxBatch = 100
	// batchWorkers bounds batch fan-out.
	batchWorkers = 8
	// maxBody caps request bodies.
	maxBody = 1 << 20
)

// VehicleStore is the subset of *graph.GraphStore the API uses.
type VehicleStore interface {
	SaveVehicle(ctx context.Context, r vin.Result) error
	FindVehicle(ctx context.Context, vin string) (graph.Vehicle, error)
}

// Enricher is the subset of *vpic.Client the API uses.
type Enricher interface {
	Decode(ctx context.Context, vin string, modelYear int) (vpic.Details, error)
}

// Deps holds the handler dependencies. Store and Enricher are optional.
type Deps struct {
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Store    VehicleStore
	Enricher Enricher
	// Options are the service-wide decode defaults.
	Options []vin.Option
}

type server struct {
	Deps
}

func newMux(deps Deps) *http.ServeMux {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	s := &server{Deps: deps}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/vin/decode", s.handleDecode)
	mux.HandleFunc("GET /api/vin/{vin}", s.handleLookup)
	mux.HandleFunc("GET /api/vin/{vin}/validate", s.handleValidate)
	mux.HandleFunc("POST /api/vin/batch", s.handleBatch)
	mux.HandleFunc("POST /api/vin/extract", s.handleExtract)
	mux.HandleFunc("GET /api/wmi", s.handleWMIs)
	mux.HandleFunc("GET /api/wmi/{wmi}", s.handleWMI)
	mux.HandleFunc("POST /api/vehicles/validate", s.handleValidateVehicle)
	mux.HandleFunc("GET /api/vehicles/{vin}", s.handleVehicle)
	mux.Handle("GET /metrics", deps.Metrics.Handler())
	return mux
}

// --- Responses ---

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

// statusOf maps a VIN error code to its HTTP status.
func statusOf(c vin.Code) int {
	switch c {
	case vin.CodeRequired, vin.CodeType:
		return http.StatusBadRequest
	case vin.CodeLength, vin.CodeChars, vin.CodeCheckDigit:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// asVINError extracts the *vin.Error behind err, defaulting to ErrUnknown.
func asVINError(err error) *vin.Error {
	var ve *vin.Error
	if !errors.As(err, &ve) {
		return vin.ErrUnknown
	}
	return ve
}

func writeVINError(w http.ResponseWriter, err error) {
	ve := asVINError(err)
	writeError(w, statusOf(ve.Code), string(ve.Code), ve.Message)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "ERR_BAD_REQUEST", "invalid request body")
		return false
	}
	return true
}

// --- Handlers ---

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"wmis":   len(vin.KnownWMIs()),
		"store":  s.Store != nil,
		"enrich": s.Enricher != nil,
	})
}

// DecodeOptions overrides the service defaults for one request.
type DecodeOptions struct {
	RequireValidCheckDigit *bool `json:"require_valid_check_digit,omitempty"`
	AssumeNACheckDigit     *bool `json:"assume_na_check_digit,omitempty"`
	CurrentYear            int   `json:"current_year,omitempty"`
	MinYear                int   `json:"min_year,omitempty"`
	MaxYear                int   `json:"max_year,omitempty"`
}

func (o *DecodeOptions) apply(base []vin.Option) []vin.Option {
	opts := append([]vin.Option(nil), base...)
	if o == nil {
		return opts
	}
	if o.RequireValidCheckDigit != nil {
		opts = append(opts, vin.WithRequireValidCheckDigit(*o.RequireValidCheckDigit))
	}
	if o.AssumeNACheckDigit != nil {
		opts = append(opts, vin.WithAssumeNACheckDigit(*o.AssumeNACheckDigit))
	}
	return append(opts, vin.WithCurrentYear(o.CurrentYear), vin.WithYearRange(o.MinYear, o.MaxYear))
}

// DecodeRequest is the JSON body for POST /api/vin/decode. VIN is left
// untyped so non-string input reports ERR_TYPE rather than a body error.
type DecodeRequest struct {
	VIN     any            `json:"vin"`
	Options *DecodeOptions `json:"options,omitempty"`
	// Save persists the decoded vehicle when a store is configured.
	Save bool `json:"save,omitempty"`
}

func (s *server) decode(raw any, opts []vin.Option) (vin.Result, error) {
	start := time.Now()
	r, err := vin.Decode(raw, opts...)
	outcome, verdict := "ok", ""
	if err != nil {
		outcome = string(vin.CodeOf(err))
		if vin.CodeOf(err) == vin.CodeCheckDigit {
			verdict = "invalid"
		}
	} else {
		verdict = scan.VerdictOf(r.CheckDigit)
	}
	s.Metrics.ObserveDecode(outcome, verdict, time.Since(start))
	return r, err
}

func (s *server) handleDecode(w http.ResponseWriter, r *http.Request) {
	var req DecodeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := s.decode(req.VIN, req.Options.apply(s.Options))
	if err != nil {
		writeVINError(w, err)
		return
	}
	if req.Save && s.Store != nil {
		if err := s.Store.SaveVehicle(r.Context(), res); err != nil {
			s.Logger.Error("save vehicle failed", "vin", res.VIN, "err", err)
			writeError(w, http.StatusInternalServerError, string(vin.CodeUnknown), "failed to save vehicle")
			return
		}
	}
	writeJSON(w, http.StatusOK, res)
}

// LookupResponse is returned by GET /api/vin/{vin}.
type LookupResponse struct {
	Result    vin.Result    `json:"result"`
	VPIC      *vpic.Details `json:"vpic,omitempty"`
	VPICError string        `json:"vpic_error,omitempty"`
}

func (s *server) handleLookup(w http.ResponseWriter, r *http.Request) {
	res, err := s.decode(r.PathValue("vin"), s.Options)
	if err != nil {
		writeVINError(w, err)
		return
	}
	resp := LookupResponse{Result: res}
	if enrich, _ := strconv.ParseBool(r.URL.Query().Get("enrich")); enrich {
		switch {
		case s.Enricher == nil:
			resp.VPICError = "enrichment disabled"
		default:
			d, err := s.Enricher.Decode(r.Context(), res.VIN, res.ModelYear)
			if err != nil {
				// The local decode stands on its own; enrichment is best effort.
				s.Logger.Warn("vpic enrichment failed", "vin", res.VIN, "err", err)
				resp.VPICError = err.Error()
			} else {
				resp.VPIC = &d
			}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleValidate(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, vin.Validate(r.PathValue("vin")))
}

// BatchRequest is the JSON body for POST /api/vin/batch.
type BatchRequest struct {
	VINs    []any          `json:"vins"`
	Options *DecodeOptions `json:"options,omitempty"`
}

// BatchItem is one entry of a batch response, in request order.
type BatchItem struct {
	Input  any            `json:"input"`
	Result *vin.Result    `json:"result,omitempty"`
	Error  *errorResponse `json:"error,omitempty"`
}

func (s *server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.VINs) == 0 || len(req.VINs) > maxBatch {
		writeError(w, http.StatusBadRequest, "ERR_BAD_REQUEST", "vins must hold between 1 and "+strconv.Itoa(maxBatch)+" entries")
		return
	}
	opts := req.Options.apply(s.Options)
	results := fn.ParMapResult(req.VINs, batchWorkers, func(raw any) fn.Result[vin.Result] {
		res, err := s.decode(raw, opts)
		return fn.FromPair(res, err)
	})

	valid := 0
	items := fn.Map(results, func(res fn.Result[vin.Result]) BatchItem {
		v, err := res.Unwrap()
		if err != nil {
			ve := asVINError(err)
			return BatchItem{Error: &errorResponse{Error: ve.Message, Code: string(ve.Code)}}
		}
		valid++
		return BatchItem{Result: &v}
	})
	for i := range items {
		items[i].Input = req.VINs[i]
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": items, "decoded": valid, "failed": len(items) - valid})
}

// ExtractRequest is the JSON body for POST /api/vin/extract.
type ExtractRequest struct {
	Text string `json:"text"`
}

func (s *server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if !decodeBody(w, r, &req) {
		return
	}
	cands := vinscan.Candidates(req.Text)
	if cands == nil {
		cands = []string{}
	}
	best, _ := vinscan.Best(req.Text)
	writeJSON(w, http.StatusOK, map[string]any{"candidates": cands, "best": best})
}

func (s *server) handleWMIs(w http.ResponseWriter, r *http.Request) {
	prefix := vin.Normalize(r.URL.Query().Get("prefix"))
	out := make(map[string]string)
	for k, v := range vin.KnownWMIs() {
		if strings.HasPrefix(k, prefix) {
			out[k] = v
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(out), "wmis": out})
}

// WMIResponse is returned by GET /api/wmi/{wmi}.
type WMIResponse struct {
	WMI          string `json:"wmi"`
	Manufacturer string `json:"manufacturer"`
	Exact        bool   `json:"exact"`
	Region       string `json:"region"`
	Country      string `json:"country,omitempty"`
}

func (s *server) handleWMI(w http.ResponseWriter, r *http.Request) {
	wmi := vin.Normalize(r.PathValue("wmi"))
	if len(wmi) != 3 {
		writeError(w, http.StatusBadRequest, "ERR_BAD_REQUEST", "WMI must be exactly 3 characters")
		return
	}
	_, exact := vin.LookupWMI(wmi)
	writeJSON(w, http.StatusOK, WMIResponse{
		WMI:          wmi,
		Manufacturer: vin.ResolveManufacturer(wmi),
		Exact:        exact,
		Region:       vin.RegionOf(wmi),
		Country:      vin.CountryOf(wmi),
	})
}

func (s *server) handleValidateVehicle(w http.ResponseWriter, r *http.Request) {
	var v domain.Vehicle
	if !decodeBody(w, r, &v) {
		return
	}
	if err := domain.ValidateVehicle(v); err != nil {
		resp := map[string]any{"valid": false, "error": err.Error()}
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			resp["field"] = ve.Field
		}
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"valid": true})
}

func (s *server) handleVehicle(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		writeError(w, http.StatusNotFound, "ERR_NOT_FOUND", "vehicle store disabled")
		return
	}
	v, err := s.Store.FindVehicle(r.Context(), r.PathValue("vin"))
	switch {
	case errors.Is(err, graph.ErrVehicleNotFound):
		writeError(w, http.StatusNotFound, "ERR_NOT_FOUND", "vehicle not found")
	case err != nil:
		s.Logger.Error("find vehicle failed", "err", err)
		writeError(w, http.StatusInternalServerError, string(vin.CodeUnknown), "internal server error")
	default:
		writeJSON(w, http.StatusOK, v)
	}
}
