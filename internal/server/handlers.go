package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/koustreak/schemadiff/internal/compare"
	"github.com/koustreak/schemadiff/internal/ddl"
	"github.com/koustreak/schemadiff/internal/errs"
	"github.com/koustreak/schemadiff/internal/lcs"
	"github.com/koustreak/schemadiff/internal/preview"
	"github.com/koustreak/schemadiff/internal/snapshot"
)

// MaxTextDiffTokens bounds each side of /v1/textdiff; the LCS table grows
// with the product of both sides.
const MaxTextDiffTokens = 4000

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type compareRequest struct {
	// A and B are snapshot YAML documents.
	A            string `json:"a"`
	B            string `json:"b"`
	IncludeEqual bool   `json:"include_equal"`
}

type compareResponse struct {
	RunID     string          `json:"run_id,omitempty"`
	DatabaseA string          `json:"database_a"`
	DatabaseB string          `json:"database_b"`
	Counts    map[string]int  `json:"counts"`
	Diffs     []preview.Entry `json:"diffs"`
	Forward   string          `json:"forward_ddl"`
	Reverse   string          `json:"reverse_ddl"`
}

type textDiffRequest struct {
	A         string `json:"a"`
	B         string `json:"b"`
	Tokenizer string `json:"tokenizer"`
}

type textRun struct {
	Op   string `json:"op"`
	Text string `json:"text"`
}

type textDiffResponse struct {
	Tokenizer string    `json:"tokenizer"`
	Common    int       `json:"common"`
	Runs      []textRun `json:"runs"`
}

type historyRun struct {
	ID        string         `json:"id"`
	DatabaseA string         `json:"database_a"`
	DatabaseB string         `json:"database_b"`
	Counts    map[string]int `json:"counts"`
	DDL       string         `json:"ddl"`
	CreatedAt time.Time      `json:"created_at"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok"}
	code := http.StatusOK
	for name, p := range s.checks {
		if err := p.Ping(r.Context()); err != nil {
			status[name] = err.Error()
			status["status"] = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		status[name] = "ok"
	}
	s.writeJSON(w, code, status)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if !s.decode(w, r, &req) {
		return
	}

	a, err := snapshot.Decode(strings.NewReader(req.A))
	if err != nil {
		s.writeError(w, errs.Wrap(errs.KindOf(err), "side a", err))
		return
	}
	b, err := snapshot.Decode(strings.NewReader(req.B))
	if err != nil {
		s.writeError(w, errs.Wrap(errs.KindOf(err), "side b", err))
		return
	}

	res, err := s.comparer.Compare(a, b)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var fwd, rev ddl.Buffer
	ddl.Render(&fwd, res.Diffs, ddl.Forward)
	ddl.Render(&rev, res.Diffs, ddl.Reverse)

	diffs := res.Changes()
	if req.IncludeEqual {
		diffs = res.Diffs
	}
	resp := compareResponse{
		DatabaseA: res.DatabaseA,
		DatabaseB: res.DatabaseB,
		Counts:    modeCounts(res.CountByMode()),
		Diffs:     preview.Build(diffs),
		Forward:   fwd.String(),
		Reverse:   rev.String(),
	}

	if s.history != nil {
		run, err := s.history.Record(r.Context(), res, fwd.String())
		if err != nil {
			// History is best effort.
			s.log.ErrorWith("record comparison", err, map[string]interface{}{"database_a": res.DatabaseA})
		} else {
			resp.RunID = run.ID
		}
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTextDiff(w http.ResponseWriter, r *http.Request) {
	var req textDiffRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Tokenizer == "" {
		req.Tokenizer = "words"
	}
	tokenize, err := lcs.TokenizerByName(req.Tokenizer)
	if err != nil {
		s.writeError(w, err)
		return
	}

	a, b := tokenize(req.A), tokenize(req.B)
	if len(a) > MaxTextDiffTokens || len(b) > MaxTextDiffTokens {
		s.writeError(w, errs.Newf(errs.ErrKindInvalidInput,
			"inputs have %d and %d tokens, limit is %d", len(a), len(b), MaxTextDiffTokens))
		return
	}

	table := lcs.Compute(a, b)
	resp := textDiffResponse{Tokenizer: strings.ToLower(req.Tokenizer), Common: table.Len(), Runs: []textRun{}}
	for _, run := range table.Runs() {
		resp.Runs = append(resp.Runs, textRun{Op: run.Op.String(), Text: lcs.Glue(run.Tokens)})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.writeError(w, errs.New(errs.ErrKindNotFound, "history is not enabled"))
		return
	}

	limit, err := queryInt(r, "limit")
	if err != nil {
		s.writeError(w, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		s.writeError(w, err)
		return
	}

	runs, err := s.history.Recent(r.Context(), r.URL.Query().Get("database"), limit, offset)
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]historyRun, 0, len(runs))
	for _, run := range runs {
		out = append(out, historyRun{
			ID:        run.ID,
			DatabaseA: run.DatabaseA,
			DatabaseB: run.DatabaseB,
			Counts:    modeCounts(run.Counts),
			DDL:       run.DDL,
			CreatedAt: run.CreatedAt,
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

// queryInt reads a non-negative integer query parameter; absent means 0.
func queryInt(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errs.Newf(errs.ErrKindInvalidInput, "invalid %s %q", name, v)
	}
	return n, nil
}

func modeCounts(in map[compare.Mode]int) map[string]int {
	out := make(map[string]int, len(in))
	for m, n := range in {
		out[m.String()] = n
	}
	return out
}

// decode reads a JSON body into dst. On failure it writes the error response
// and returns false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{
				Error:   "request_too_large",
				Message: "request body exceeds " + strconv.FormatInt(tooLarge.Limit, 10) + " bytes",
			})
			return false
		}
		s.writeError(w, errs.Wrap(errs.ErrKindInvalidInput, "invalid JSON body", err))
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Errorf("failed to encode JSON response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	kind := errs.KindOf(err)
	status := statusFor(kind)
	if status >= http.StatusInternalServerError {
		s.log.ErrorWith("request failed", err, nil)
	}
	s.writeJSON(w, status, errorResponse{Error: kind.String(), Message: err.Error()})
}

func statusFor(kind errs.ErrKind) int {
	switch kind {
	case errs.ErrKindInvalidInput, errs.ErrKindUnparseableType:
		return http.StatusBadRequest
	case errs.ErrKindNotFound:
		return http.StatusNotFound
	case errs.ErrKindPermissionDenied:
		return http.StatusForbidden
	case errs.ErrKindTimeout:
		return http.StatusGatewayTimeout
	case errs.ErrKindConnectionFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
