package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/leapstack-labs/sqlbridge/internal/state"
	"github.com/leapstack-labs/sqlbridge/pkg/convert"
	"github.com/leapstack-labs/sqlbridge/pkg/core"
	"github.com/leapstack-labs/sqlbridge/pkg/dialect"
	"github.com/leapstack-labs/sqlbridge/pkg/validate"
)

// maxRequestBody caps request bodies at 10 MiB; conversion inputs beyond
// that belong on the CLI.
const maxRequestBody = 10 << 20

type convertRequest struct {
	SQL     string `json:"sql"`
	Source  string `json:"source"`
	Target  string `json:"target"`
	Profile string `json:"profile,omitempty"`
}

type validateRequest struct {
	Original  string `json:"original"`
	Converted string `json:"converted"`
	Profile   string `json:"profile,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req convertRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	src, err := dialect.Parse(req.Source)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	tgt, err := dialect.Parse(req.Target)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	cfg := s.profileConfig(r, req.Profile)

	res, err := s.engine.Convert(r.Context(), convert.Request{
		SQL:    req.SQL,
		Source: src,
		Target: tgt,
		Config: &cfg,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, dialect.ErrSameDialect) || errors.Is(err, dialect.ErrUnknownDialect) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err)
		return
	}

	if s.history != nil {
		entry := state.EntryFromResult(src.String(), tgt.String(), req.SQL, res.SQL,
			res.Warnings, res.AppliedRules, res.Elapsed, res.ID.String())
		if err := s.history.Save(r.Context(), entry); err != nil {
			// History is advisory; the conversion still succeeded.
			s.log.Warn("failed to record conversion", "id", res.ID, "error", err)
		}
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	cfg := s.profileConfig(r, req.Profile)
	warns := validate.Check(req.Original, req.Converted, validate.FromConfig(cfg))
	writeJSON(w, http.StatusOK, map[string]any{"warnings": warns})
}

func (s *Server) handleDialects(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"dialects": dialect.All})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"profile": string(s.sessionProfile(r))})
}

func (s *Server) handleSetProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Profile string `json:"profile"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	p := core.Profile(req.Profile)
	switch p {
	case core.ProfileDefault, core.ProfileMinimal, core.ProfileStrict:
	default:
		writeError(w, http.StatusBadRequest, errors.New("unknown profile: "+req.Profile))
		return
	}
	sess, _ := s.sessions.Get(r, profileSessionName)
	sess.Values["profile"] = string(p)
	if err := sess.Save(r, w); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"profile": string(p)})
}

// profileConfig resolves the rule configuration for a request: an explicit
// profile in the body wins, then the session-scoped profile, then default.
func (s *Server) profileConfig(r *http.Request, explicit string) core.RuleConfig {
	if explicit != "" {
		return core.ConfigForProfile(core.Profile(explicit))
	}
	return core.ConfigForProfile(s.sessionProfile(r))
}

func (s *Server) sessionProfile(r *http.Request) core.Profile {
	sess, err := s.sessions.Get(r, profileSessionName)
	if err != nil {
		return core.ProfileDefault
	}
	if p, ok := sess.Values["profile"].(string); ok && p != "" {
		return core.Profile(p)
	}
	return core.ProfileDefault
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
