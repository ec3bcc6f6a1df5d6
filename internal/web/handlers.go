package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/JonMunkholm/worldstats/internal/core"
	"github.com/JonMunkholm/worldstats/internal/dataset"
	"github.com/JonMunkholm/worldstats/internal/logging"
	"github.com/JonMunkholm/worldstats/internal/reconcile"
	"github.com/JonMunkholm/worldstats/internal/store"
	mw "github.com/JonMunkholm/worldstats/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// maxRunRequestSize bounds the POST /api/runs body.
const maxRunRequestSize = 64 << 10

// RunRequest is the optional body of POST /api/runs.
type RunRequest struct {
	Sources       []string `json:"sources" validate:"omitempty,dive,required"`
	MinNonMissing *int     `json:"min_non_missing" validate:"omitempty,gte=0"`
	Policy        string   `json:"policy" validate:"omitempty,oneof=coalesce last_writer_wins"`
	SkipSinks     bool     `json:"skip_sinks"`
}

// DatasetResponse is one page of the latest reconciled table.
type DatasetResponse struct {
	RunID   string                        `json:"run_id"`
	Columns []string                      `json:"columns"`
	Types   map[string]dataset.ColumnType `json:"types"`
	Total   int                           `json:"total"`
	Offset  int                           `json:"offset"`
	Rows    []dataset.Row                 `json:"rows"`
}

// CountryResponse is one row of the latest reconciled table.
type CountryResponse struct {
	RunID   string      `json:"run_id"`
	Country string      `json:"country"`
	Values  dataset.Row `json:"values"`
}

// HealthResponse reports liveness and run slot usage.
type HealthResponse struct {
	Status    string             `json:"status"`
	Sources   int                `json:"sources"`
	Runs      core.LimiterStatus `json:"runs"`
	LatestRun string             `json:"latest_run,omitempty"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// describeValidation turns validator errors into one readable line.
func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
		case "gte":
			parts = append(parts, fmt.Sprintf("%s must be >= %s", fe.Field(), fe.Param()))
		case "required":
			parts = append(parts, fmt.Sprintf("%s must not be empty", fe.Namespace()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

// parseIntParam parses a non-negative integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return defaultVal
	}
	return i
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		Sources: len(s.service.Sources()),
		Runs:    s.service.LimiterStatus(),
	}
	if latest, err := s.service.Latest(); err == nil {
		resp.LatestRun = latest.ID
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Sources())
}

// handleRun starts a run and answers once it has finished.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	body := http.MaxBytesReader(w, r.Body, maxRunRequestSize)
	if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.respondInvalid(w, r, "malformed JSON body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.respondInvalid(w, r, describeValidation(err))
		return
	}

	opts := core.RunOptions{
		Sources:       req.Sources,
		MinNonMissing: req.MinNonMissing,
		Policy:        reconcile.CollisionPolicy(req.Policy),
		SkipSinks:     req.SkipSinks,
	}

	ctx := WithRequestMetadata(r.Context(), r)
	res, err := s.service.Run(ctx, opts)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set(mw.RunIDHeader, res.ID)
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleRunHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.History())
}

func (s *Server) handleLatestRun(w http.ResponseWriter, r *http.Request) {
	latest, err := s.service.Latest()
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, latest)
}

// handleDataset returns the latest table, paged with offset and limit.
// A limit of 0 returns every row from offset on.
func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	latest, err := s.service.Latest()
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	t := latest.Table
	offset := min(parseIntParam(r, "offset", 0), t.Len())
	end := t.Len()
	if limit := parseIntParam(r, "limit", 0); limit > 0 {
		end = offset + min(limit, end-offset)
	}

	writeJSON(w, http.StatusOK, DatasetResponse{
		RunID:   latest.ID,
		Columns: t.Columns,
		Types:   dataset.InferColumnTypes(t, dataset.KeyColumn),
		Total:   t.Len(),
		Offset:  offset,
		Rows:    t.Rows[offset:end],
	})
}

// handleExportDataset streams the latest table as a CSV download.
func (s *Server) handleExportDataset(w http.ResponseWriter, r *http.Request) {
	latest, err := s.service.Latest()
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	timestamp := latest.StartedAt.UTC().Format("20060102_150405")
	filename := fmt.Sprintf("merged_dataset_%s.csv", timestamp)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Last-Modified", latest.StartedAt.Add(latest.Duration).UTC().Format(http.TimeFormat))

	if err := store.WriteCSV(w, latest.Table); err != nil {
		// Headers are already sent; log only
		logging.FromContext(r.Context()).Warn("csv export interrupted", "run_id", latest.ID, "error", err)
	}
}

// handleCountry returns one country's row. The path parameter goes through
// the normalizer, so any known alias resolves.
func (s *Server) handleCountry(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "country")
	name, err := url.PathUnescape(raw)
	if err != nil {
		s.respondInvalid(w, r, "malformed country name")
		return
	}

	latest, err := s.service.Latest()
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	row, err := s.service.Country(name)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, CountryResponse{
		RunID:   latest.ID,
		Country: row.Get(dataset.KeyColumn).String(),
		Values:  row,
	})
}
