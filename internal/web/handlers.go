package web

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/emiliopalmerini/mfocus/internal/analytics"
	"github.com/emiliopalmerini/mfocus/internal/domain"
	"github.com/emiliopalmerini/mfocus/internal/eventstore"
	"github.com/emiliopalmerini/mfocus/internal/util"
)

const (
	defaultDisruptorLimit = 10
	defaultHeatmapDays    = 7
	maxHeatmapDays        = 366
)

// rangeFromQuery reads either from/to or a named period (default today).
func (s *Server) rangeFromQuery(r *http.Request) (domain.TimeRange, error) {
	q := r.URL.Query()
	loc := s.service.Location()

	from, to := q.Get("from"), q.Get("to")
	if from == "" && to == "" {
		return util.GetRangeForPeriod(q.Get("period"), s.now(), loc)
	}
	if from == "" || to == "" {
		return domain.TimeRange{}, badRequest{fmt.Errorf("both from and to are required")}
	}
	start, err := util.ParseTime(from, loc)
	if err != nil {
		return domain.TimeRange{}, badRequest{err}
	}
	end, err := util.ParseTime(to, loc)
	if err != nil {
		return domain.TimeRange{}, badRequest{err}
	}
	return domain.NewTimeRange(start, end)
}

func granularityFromQuery(r *http.Request, rng domain.TimeRange) (domain.Granularity, error) {
	g := r.URL.Query().Get("granularity")
	if g == "" {
		return util.DefaultGranularity(rng), nil
	}
	return domain.ParseGranularity(g)
}

func intFromQuery(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, badRequest{fmt.Errorf("%s must be an integer", name)}
	}
	return n, nil
}

func (s *Server) dayFromQuery(r *http.Request) (time.Time, error) {
	v := r.URL.Query().Get("day")
	if v == "" {
		return s.now(), nil
	}
	t, err := util.ParseDate(v, s.service.Location())
	if err != nil {
		return time.Time{}, badRequest{err}
	}
	return t, nil
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	rng, err := s.rangeFromQuery(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	g, err := granularityFromQuery(r, rng)
	if err != nil {
		respondError(w, r, err)
		return
	}
	ov, err := s.service.Overview(r.Context(), rng, g)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, ov)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	rng, err := s.rangeFromQuery(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	shares, err := s.service.CategoryBreakdown(r.Context(), rng)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, shares)
}

func (s *Server) handleDisruptors(w http.ResponseWriter, r *http.Request) {
	rng, err := s.rangeFromQuery(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	limit, err := intFromQuery(r, "limit", defaultDisruptorLimit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	only := true
	if v := r.URL.Query().Get("distraction_only"); v != "" {
		if only, err = strconv.ParseBool(v); err != nil {
			respondError(w, r, badRequest{fmt.Errorf("distraction_only must be a boolean")})
			return
		}
	}
	ranking, err := s.service.TopDisruptors(r.Context(), rng, limit, only)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, ranking)
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	day, err := s.dayFromQuery(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	segments, err := s.service.DailyTimeline(r.Context(), day)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, segments)
}

func (s *Server) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	last, err := s.dayFromQuery(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	days, err := intFromQuery(r, "days", defaultHeatmapDays)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if days > maxHeatmapDays {
		respondError(w, r, badRequest{fmt.Errorf("days must be at most %d", maxHeatmapDays)})
		return
	}
	heat, err := s.service.Heatmap(r.Context(), last, days, r.URL.Query().Get("category"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, heat)
}

func (s *Server) handleWeeks(w http.ResponseWriter, r *http.Request) {
	rng, err := s.rangeFromQuery(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	weeks, err := s.service.WeeklyBreakdown(r.Context(), rng)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, weeks)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	rng, err := s.rangeFromQuery(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	g, err := granularityFromQuery(r, rng)
	if err != nil {
		respondError(w, r, err)
		return
	}
	limit, err := intFromQuery(r, "limit", defaultDisruptorLimit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var day time.Time
	if r.URL.Query().Get("day") != "" {
		if day, err = s.dayFromQuery(r); err != nil {
			respondError(w, r, err)
			return
		}
	}
	d, err := s.service.Dashboard(r.Context(), analytics.DashboardQuery{
		Range:          rng,
		Granularity:    g,
		Day:            day,
		DisruptorLimit: limit,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, d)
}

func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	var rec eventstore.Record
	if err := decode(w, r, &rec); err != nil {
		respondError(w, r, err)
		return
	}
	if strings.TrimSpace(rec.Source) == "" {
		respondError(w, r, badRequest{fmt.Errorf("source is required")})
		return
	}
	obs, err := s.service.Record(r.Context(), rec.Observation())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, eventstore.NewRecord(obs))
}

type rulesResponse struct {
	domain.RuleTable
	Categories []domain.Category `json:"categories"`
}

type rulesRequest struct {
	ExpectedVersion uint64        `json:"expected_version"`
	Rules           []domain.Rule `json:"rules"`
}

func (s *Server) handleGetRules(w http.ResponseWriter, r *http.Request) {
	respond(w, r, http.StatusOK, rulesResponse{RuleTable: s.service.Rules(), Categories: s.service.Categories()})
}

func (s *Server) handlePutRules(w http.ResponseWriter, r *http.Request) {
	var req rulesRequest
	if err := decode(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	table, err := s.service.UpdateRules(r.Context(), req.ExpectedVersion, req.Rules)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, table)
}

type trackingBody struct {
	Enabled *bool `json:"enabled"`
}

func (s *Server) handleGetTracking(w http.ResponseWriter, r *http.Request) {
	enabled, err := s.service.Tracking(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, trackingBody{Enabled: &enabled})
}

func (s *Server) handlePutTracking(w http.ResponseWriter, r *http.Request) {
	var body trackingBody
	if err := decode(w, r, &body); err != nil {
		respondError(w, r, err)
		return
	}
	if body.Enabled == nil {
		respondError(w, r, badRequest{fmt.Errorf("enabled is required")})
		return
	}
	if err := s.service.SetTracking(r.Context(), *body.Enabled); err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, body)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.service.Settings(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, settings)
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var settings domain.Settings
	if err := decode(w, r, &settings); err != nil {
		respondError(w, r, err)
		return
	}
	saved, err := s.service.SaveSettings(r.Context(), settings)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, saved)
}
