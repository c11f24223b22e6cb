package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/kapu/ikusa-server/internal/constants"
	"github.com/kapu/ikusa-server/internal/domain"
	"github.com/kapu/ikusa-server/internal/roster"
	"github.com/kapu/ikusa-server/pkg/errors"
)

const healthCheckTimeout = 2 * time.Second

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status":   "healthy",
		"uploads":  s.uploads != nil,
		"profiles": s.profiles != nil,
	}

	if len(s.checks) > 0 {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		results := make(map[string]string, len(s.checks))
		for name, check := range s.checks {
			if err := check(ctx); err != nil {
				results[name] = err.Error()
				body["status"] = "degraded"
				continue
			}
			results[name] = "ok"
		}
		body["checks"] = results
	}

	respondOK(w, body, s.logger)
}

// handleScrape serves GET /api/scrape?url=...&nome=...
func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	sourceURL := strings.TrimSpace(query.Get("url"))
	if sourceURL == "" {
		respondError(w, http.StatusBadRequest, "url query parameter is required", s.logger)
		return
	}

	name := strings.TrimSpace(query.Get("nome"))
	if utf8.RuneCountInString(name) > constants.ProfileNameMaxRunes {
		respondErr(w, r, errors.NewValidationError(
			"nome must not exceed "+strconv.Itoa(constants.ProfileNameMaxRunes)+" characters", "nome", name), s.logger)
		return
	}

	profile, err := s.scraper.Scrape(r.Context(), sourceURL, name)
	if err != nil {
		respondErr(w, r, err, s.logger)
		return
	}
	respondOK(w, profile, s.logger)
}

func (s *Server) handleScrapeBatch(w http.ResponseWriter, r *http.Request) {
	var req domain.BatchScrapeRequest
	if err := s.validator.decodeAndValidate(r, &req); err != nil {
		respondErr(w, r, err, s.logger)
		return
	}

	respondOK(w, s.scraper.ScrapeMany(r.Context(), req.Targets), s.logger)
}

func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	if s.profiles == nil {
		respondErr(w, r, errors.NewUnavailableError("profile archive"), s.logger)
		return
	}

	profiles, err := s.profiles.ListRecent(r.Context(), parseLimit(r))
	if err != nil {
		respondErr(w, r, err, s.logger)
		return
	}
	respondOK(w, profiles, s.logger)
}

// handleLatestProfile serves GET /api/profiles/latest?url=...
func (s *Server) handleLatestProfile(w http.ResponseWriter, r *http.Request) {
	if s.profiles == nil {
		respondErr(w, r, errors.NewUnavailableError("profile archive"), s.logger)
		return
	}

	sourceURL := strings.TrimSpace(r.URL.Query().Get("url"))
	if sourceURL == "" {
		respondError(w, http.StatusBadRequest, "url query parameter is required", s.logger)
		return
	}

	profile, err := s.profiles.LatestByURL(r.Context(), sourceURL)
	if err != nil {
		respondErr(w, r, err, s.logger)
		return
	}
	respondOK(w, profile, s.logger)
}

func (s *Server) handleGearscore(w http.ResponseWriter, r *http.Request) {
	var req domain.GearscoreRequest
	if err := s.validator.decodeAndValidate(r, &req); err != nil {
		respondErr(w, r, err, s.logger)
		return
	}

	respondOK(w, map[string]float64{
		"gearscore": roster.ComputeGearscore(req.AP, req.AAP, req.DP),
	}, s.logger)
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var player domain.PlayerRecord
	if err := s.validator.decodeAndValidate(r, &player); err != nil {
		respondErr(w, r, err, s.logger)
		return
	}

	respondOK(w, roster.Classify(player), s.logger)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	var req domain.StatsRequest
	if err := s.validator.decodeAndValidate(r, &req); err != nil {
		respondErr(w, r, err, s.logger)
		return
	}

	respondOK(w, roster.BuildStats(req.Guild, req.Players), s.logger)
}

func (s *Server) handleCreateUpload(w http.ResponseWriter, r *http.Request) {
	if s.uploads == nil {
		respondErr(w, r, errors.NewUnavailableError("upload store"), s.logger)
		return
	}

	var req domain.UploadRequest
	if err := s.validator.decodeAndValidate(r, &req); err != nil {
		respondErr(w, r, err, s.logger)
		return
	}
	req.Guild = strings.TrimSpace(req.Guild)
	req.Label = strings.TrimSpace(req.Label)

	upload, stats, err := s.uploads.Create(r.Context(), req)
	if err != nil {
		respondErr(w, r, err, s.logger)
		return
	}

	respondCreated(w, map[string]any{
		"upload": upload,
		"stats":  stats,
	}, s.logger)
}

func (s *Server) handleListUploads(w http.ResponseWriter, r *http.Request) {
	if s.uploads == nil {
		respondErr(w, r, errors.NewUnavailableError("upload store"), s.logger)
		return
	}

	uploads, err := s.uploads.List(r.Context(), parseLimit(r))
	if err != nil {
		respondErr(w, r, err, s.logger)
		return
	}
	respondOK(w, uploads, s.logger)
}

func (s *Server) handleGetUpload(w http.ResponseWriter, r *http.Request) {
	if s.uploads == nil {
		respondErr(w, r, errors.NewUnavailableError("upload store"), s.logger)
		return
	}

	upload, err := s.uploads.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, r, err, s.logger)
		return
	}
	respondOK(w, upload, s.logger)
}

func (s *Server) handleUploadStats(w http.ResponseWriter, r *http.Request) {
	if s.uploads == nil {
		respondErr(w, r, errors.NewUnavailableError("upload store"), s.logger)
		return
	}

	stats, err := s.uploads.Stats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, r, err, s.logger)
		return
	}
	respondOK(w, stats, s.logger)
}

// handleCompare serves GET /api/compare?a={id}&b={id}
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	if s.uploads == nil {
		respondErr(w, r, errors.NewUnavailableError("upload store"), s.logger)
		return
	}

	idA := strings.TrimSpace(r.URL.Query().Get("a"))
	idB := strings.TrimSpace(r.URL.Query().Get("b"))
	if idA == "" || idB == "" {
		respondError(w, http.StatusBadRequest, "query parameters a and b are required", s.logger)
		return
	}

	cmp, err := s.uploads.Compare(r.Context(), idA, idB)
	if err != nil {
		respondErr(w, r, err, s.logger)
		return
	}
	respondOK(w, cmp, s.logger)
}

func parseLimit(r *http.Request) int {
	limit := constants.PaginationConfig.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > constants.PaginationConfig.MaxLimit {
		limit = constants.PaginationConfig.MaxLimit
	}
	return limit
}
