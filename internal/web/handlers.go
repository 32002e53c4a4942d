package web

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/csvrecords/internal/config"
	"github.com/JonMunkholm/csvrecords/internal/core"
	"github.com/JonMunkholm/csvrecords/internal/web/templates"
	"github.com/go-chi/chi/v5"
)

// multipartOverhead is allowed on top of the input limit for form
// boundaries and fields.
const multipartOverhead = 1 << 20

// errBadRequest marks malformed request parameters.
var errBadRequest = errors.New("invalid request")

// parseResponse is the JSON body of a successful parse.
type parseResponse struct {
	Run        core.RunInfo `json:"run"`
	Records    any          `json:"records"`
	Persisted  bool         `json:"persisted"`
	DurationMs int64        `json:"durationMs"`
}

// healthResponse is the JSON body of /healthz.
type healthResponse struct {
	Status      string             `json:"status"`
	Persistence bool               `json:"persistence"`
	Parses      core.LimiterStatus `json:"parses"`
}

// handleHealth reports liveness and parse capacity.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, healthResponse{
		Status:      "ok",
		Persistence: s.service.PersistenceEnabled(),
		Parses:      s.service.LimiterStatus(),
	})
}

// handleIndex renders the upload form.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	form := templates.UploadForm(s.service.DefaultCoercion(), config.KnownEncodings, s.service.PersistenceEnabled())
	renderPage(w, r, form)
}

// handleParse parses a raw CSV body or a multipart "file" field and
// returns the records as JSON.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	req, cleanup, err := s.readParseRequest(w, r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	defer cleanup()

	result, err := s.service.Parse(WithRequestMetadata(r.Context(), r), req)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, parseResponse{
		Run:        result.Run,
		Records:    result.Records,
		Persisted:  result.Persisted,
		DurationMs: result.Duration.Milliseconds(),
	})
}

// handleParsePage is the form target. It renders the records as a table.
func (s *Server) handleParsePage(w http.ResponseWriter, r *http.Request) {
	req, cleanup, err := s.readParseRequest(w, r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	defer cleanup()

	result, err := s.service.Parse(WithRequestMetadata(r.Context(), r), req)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	body := templates.Join(
		templates.RunSummary(result.Run.ID, result.Run.Name, result.Run.RecordCount, result.Run.Coercion, result.Persisted),
		templates.RecordsTable(result.Run.Headers, result.Records),
	)
	renderPage(w, r, body)
}

// readParseRequest builds a ParseRequest from either a multipart form or
// the raw request body. Options come from form fields first, then the
// query string. cleanup must be called once the request has been parsed.
func (s *Server) readParseRequest(w http.ResponseWriter, r *http.Request) (core.ParseRequest, func(), error) {
	noop := func() {}
	maxSize := s.cfg.Parse.MaxInputSize

	var (
		req     core.ParseRequest
		cleanup = noop
	)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)
		if err := r.ParseMultipartForm(maxSize); err != nil {
			return req, noop, fmt.Errorf("%w: read form: %w", errBadRequest, err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return req, noop, core.ErrNoInput
		}
		req.Name = header.Filename
		req.Input = file
		cleanup = func() {
			file.Close()
			r.MultipartForm.RemoveAll()
		}
	} else {
		// One byte over the limit lets ReadInput report the size error.
		r.Body = http.MaxBytesReader(w, r.Body, maxSize+1)
		req.Name = r.URL.Query().Get("name")
		req.Input = r.Body
	}

	req.Coercion = formOrQuery(r, "coercion")
	req.Encoding = formOrQuery(r, "encoding")

	persist, err := parseBoolParam(formOrQuery(r, "persist"))
	if err != nil {
		cleanup()
		return core.ParseRequest{}, noop, err
	}
	req.Persist = persist

	return req, cleanup, nil
}

// handleListRuns lists stored runs, newest first.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.service.ListRuns(r.Context(), parseIntParam(r, "limit", core.DefaultListLimit))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, map[string]any{"runs": runs})
}

// handleGetRun returns one stored run.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.service.GetRun(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, run)
}

// handleListRecords returns a page of a stored run's records.
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	offset := parseIntParam(r, "offset", 0)
	limit := parseIntParam(r, "limit", core.DefaultListLimit)

	records, err := s.service.ListRecords(r.Context(), runID, offset, limit)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, map[string]any{
		"runId":   runID,
		"offset":  offset,
		"records": records,
	})
}

// handleDeleteRun removes a stored run.
func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteRun(r.Context(), chi.URLParam(r, "runID")); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseIntParam parses a non-negative integer query parameter with a
// default value.
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

// parseBoolParam returns nil for an empty value so the service default applies.
func parseBoolParam(val string) (*bool, error) {
	if val == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return nil, fmt.Errorf("%w: persist must be true or false, got %q", errBadRequest, val)
	}
	return &b, nil
}

func formOrQuery(r *http.Request, key string) string {
	if r.MultipartForm != nil {
		if v := r.MultipartForm.Value[key]; len(v) > 0 && v[0] != "" {
			return v[0]
		}
	}
	return r.URL.Query().Get(key)
}

