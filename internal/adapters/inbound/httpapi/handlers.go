package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/charleschow/courtside/internal/core/roster"
	"github.com/charleschow/courtside/internal/core/rules"
	"github.com/charleschow/courtside/internal/core/scoreboard"
	"github.com/charleschow/courtside/internal/core/session"
	"github.com/charleschow/courtside/internal/telemetry"
)

type createSessionRequest struct {
	SportID    string          `json:"sport_id"`
	HomeTeamID string          `json:"home_team_id"`
	AwayTeamID string          `json:"away_team_id"`
	Settings   *rules.Settings `json:"settings,omitempty"`
}

type sessionResponse struct {
	scoreboard.Snapshot
	Config    rules.MatchConfig `json:"config"`
	CreatedAt time.Time         `json:"created_at"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"sessions":  s.deps.Sessions.Count(),
	})
}

func (s *Server) listSports(w http.ResponseWriter, r *http.Request) {
	sports, err := s.deps.Repo.Sports(r.Context())
	if err != nil {
		respondError(w, statusFor(err), "failed to list sports", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"sports": sports,
		"count":  len(sports),
	})
}

func (s *Server) getSport(w http.ResponseWriter, r *http.Request) {
	sport, err := s.deps.Repo.Sport(r.Context(), chi.URLParam(r, "sportID"))
	if err != nil {
		respondError(w, statusFor(err), "failed to load sport", err)
		return
	}
	respondJSON(w, http.StatusOK, sport)
}

func (s *Server) putSettings(w http.ResponseWriter, r *http.Request) {
	var settings rules.Settings
	if err := decodeBody(r, &settings); err != nil {
		respondError(w, http.StatusBadRequest, "invalid settings", err)
		return
	}
	sport, err := s.deps.Repo.PutSettings(r.Context(), chi.URLParam(r, "sportID"), settings)
	if err != nil {
		respondError(w, statusFor(err), "failed to save settings", err)
		return
	}
	respondJSON(w, http.StatusOK, sport)
}

func (s *Server) putTeam(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "teamID")

	var team roster.Team
	if err := decodeBody(r, &team); err != nil {
		respondError(w, http.StatusBadRequest, "invalid team", err)
		return
	}
	if team.ID == "" {
		team.ID = teamID
	}
	if team.ID != teamID {
		respondError(w, http.StatusBadRequest, "team id does not match path", nil)
		return
	}

	sport, err := s.deps.Repo.PutTeam(r.Context(), chi.URLParam(r, "sportID"), team)
	if err != nil {
		respondError(w, statusFor(err), "failed to save team", err)
		return
	}
	respondJSON(w, http.StatusOK, sport)
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid session request", err)
		return
	}
	if req.SportID == "" || req.HomeTeamID == "" || req.AwayTeamID == "" {
		respondError(w, http.StatusBadRequest, "sport_id, home_team_id and away_team_id are required", nil)
		return
	}

	m, err := s.deps.Repo.Matchup(r.Context(), req.SportID, req.HomeTeamID, req.AwayTeamID)
	if err != nil {
		respondError(w, statusFor(err), "failed to set up match", err)
		return
	}
	cfg := m.Settings.Merge(req.Settings).Resolve()

	sess := session.New("", m, cfg, session.Options{
		Scheduler: s.deps.Scheduler,
		Bus:       s.deps.Bus,
		Observers: s.deps.Observers,
	})
	s.deps.Sessions.Put(sess)

	s.respondSession(w, http.StatusCreated, sess)
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	all := s.deps.Sessions.All()
	out := make([]sessionResponse, 0, len(all))
	for _, sess := range all {
		snap, err := sess.Snapshot()
		if err != nil {
			// closed between listing and reading
			continue
		}
		out = append(out, sessionResponse{Snapshot: snap, Config: sess.Config(), CreatedAt: sess.CreatedAt()})
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"sessions": out,
		"count":    len(out),
	})
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.respondSession(w, http.StatusOK, sess)
}

func (s *Server) command(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if !s.limiters.Allow(sess.ID()) {
		telemetry.Metrics.RateLimited.Inc()
		respondError(w, http.StatusTooManyRequests, "too many commands for this session", nil)
		return
	}

	var cmd session.Command
	if err := decodeBody(r, &cmd); err != nil {
		respondError(w, http.StatusBadRequest, "invalid command", err)
		return
	}

	snap, err := sess.Apply(cmd)
	if err != nil {
		respondError(w, statusFor(err), "command failed", err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// deleteSession discards a session. A running clock means a match is in
// progress; the caller must confirm with ?force=true.
func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if sess.InProgress() && r.URL.Query().Get("force") != "true" {
		respondError(w, http.StatusConflict, "match in progress, retry with force=true to quit", nil)
		return
	}

	s.deps.Sessions.Delete(sess.ID())
	s.limiters.Forget(sess.ID())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := chi.URLParam(r, "sessionID")
	sess, ok := s.deps.Sessions.Get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "session not found", nil)
		return nil, false
	}
	return sess, true
}

func (s *Server) respondSession(w http.ResponseWriter, status int, sess *session.Session) {
	snap, err := sess.Snapshot()
	if err != nil {
		respondError(w, statusFor(err), "failed to read session", err)
		return
	}
	respondJSON(w, status, sessionResponse{Snapshot: snap, Config: sess.Config(), CreatedAt: sess.CreatedAt()})
}
