package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/studyhub/resource-aggregator/internal/aggregator"
	"github.com/studyhub/resource-aggregator/internal/domain"
	"github.com/studyhub/resource-aggregator/internal/provider"
)

// handleSearch serves GET /api/v1/search.
//
// With ?source= it searches that single source; with ?sources= (comma
// separated) it searches those; otherwise ?category= (default all)
// resolves the source list. The response is always 200-shaped except
// for input validation failures.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q, err := parseSearchQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid search request", err.Error())
		return
	}

	params := r.URL.Query()
	if source := strings.TrimSpace(params.Get("source")); source != "" {
		result := s.aggregator.Search(r.Context(), q, domain.SourceID(source))
		writeJSON(w, http.StatusOK, result)
		return
	}

	if raw := strings.TrimSpace(params.Get("sources")); raw != "" {
		var sources []domain.SourceID
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				sources = append(sources, domain.SourceID(part))
			}
		}
		writeJSON(w, http.StatusOK, s.aggregator.SearchMultiple(r.Context(), q, sources))
		return
	}

	category := aggregator.Category(params.Get("category"))
	if category == "" {
		category = aggregator.CategoryAll
	}
	writeJSON(w, http.StatusOK, s.aggregator.SearchAll(r.Context(), q, category))
}

// handleGetResource serves GET /api/v1/resources/{source}/{id}.
func (s *Server) handleGetResource(w http.ResponseWriter, r *http.Request) {
	source := chi.URLParam(r, "source")
	id := chi.URLParam(r, "id")
	if source == "" || id == "" {
		writeError(w, http.StatusBadRequest, "invalid resource request", "source and id are required")
		return
	}

	res, err := s.aggregator.GetByID(r.Context(), domain.SourceID(source), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "resource not found", "")
			return
		}
		writeError(w, http.StatusInternalServerError, "lookup failed", "")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// importRequest is the body of POST /api/v1/resources/import.
type importRequest struct {
	Source      string `json:"source" validate:"required"`
	ID          string `json:"id" validate:"required"`
	ContainerID string `json:"container_id" validate:"required"`
	UserID      string `json:"user_id"`
}

// handleImportResource serves POST /api/v1/resources/import. It fetches
// the resource from its source and hands it to the importer collaborator;
// the usage gate, when present, is consulted first.
func (s *Server) handleImportResource(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid import request", validationDetails(err))
		return
	}

	if s.collab.Importer == nil {
		writeError(w, http.StatusServiceUnavailable, "import is not configured", "")
		return
	}

	if s.collab.Gate != nil {
		if err := s.collab.Gate.CheckIndexing(r.Context(), req.UserID); err != nil {
			if errors.Is(err, domain.ErrUsageLimitExceeded) {
				writeError(w, http.StatusTooManyRequests, "usage limit exceeded", "")
				return
			}
			writeError(w, http.StatusInternalServerError, "usage check failed", "")
			return
		}
	}

	res, err := s.aggregator.GetByID(r.Context(), domain.SourceID(req.Source), req.ID)
	if err != nil {
		writeError(w, http.StatusNotFound, "resource not found", "")
		return
	}

	importedID, err := s.collab.Importer.Import(r.Context(), res, req.ContainerID)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("source", req.Source).
			Str("id", req.ID).
			Msg("import failed")
		writeError(w, http.StatusBadGateway, "import failed", "")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"imported_id": importedID,
		"resource":    res,
	})
}

// recommendationsRequest is the body of POST /api/v1/recommendations.
type recommendationsRequest struct {
	Topics     []string `json:"topics" validate:"max=25,dive,max=200"`
	Category   string   `json:"category" validate:"omitempty,oneof=all papers books videos courses medical"`
	Limit      int      `json:"limit" validate:"omitempty,min=1,max=50"`
	OpenAccess *bool    `json:"open_access"`
}

// handleRecommendations serves POST /api/v1/recommendations.
func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	var req recommendationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid recommendations request", validationDetails(err))
		return
	}

	items := s.aggregator.Recommendations(r.Context(), req.Topics, aggregator.RecommendationOptions{
		Category:   aggregator.Category(req.Category),
		Limit:      req.Limit,
		OpenAccess: req.OpenAccess,
	})
	writeJSON(w, http.StatusOK, map[string]interface{}{"recommendations": items})
}

// subjectRequest is the body of POST /api/v1/subjects/recommendations.
type subjectRequest struct {
	Subject string `json:"subject" validate:"required,min=1,max=200"`
}

// handleSubjectRecommendations serves POST /api/v1/subjects/recommendations.
func (s *Server) handleSubjectRecommendations(w http.ResponseWriter, r *http.Request) {
	var req subjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid subject request", validationDetails(err))
		return
	}

	writeJSON(w, http.StatusOK, s.recommend.ForSubject(r.Context(), req.Subject))
}

// sourceInfo describes one registered source.
type sourceInfo struct {
	ID      domain.SourceID `json:"id"`
	Name    string          `json:"name"`
	Enabled bool            `json:"enabled"`
}

// handleListSources serves GET /api/v1/sources.
func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	providers := s.registry.All()
	infos := make([]sourceInfo, 0, len(providers))
	for _, p := range providers {
		infos = append(infos, sourceInfo{
			ID:      p.Source(),
			Name:    p.Name(),
			Enabled: p.IsEnabled(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sources":    infos,
		"categories": aggregator.Categories(),
	})
}

// handleHealth serves GET /healthz.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// parseSearchQuery validates and converts query parameters. This is the
// only place caller input may turn into a 4xx.
func parseSearchQuery(r *http.Request) (provider.SearchQuery, error) {
	params := r.URL.Query()

	q := provider.SearchQuery{
		Query: strings.TrimSpace(params.Get("q")),
	}
	if q.Query == "" {
		return q, errors.New("query parameter q is required")
	}

	var err error
	if q.Page, err = positiveInt(params.Get("page"), "page"); err != nil {
		return q, err
	}
	if q.PerPage, err = positiveInt(params.Get("per_page"), "per_page"); err != nil {
		return q, err
	}

	switch sort := provider.SortOrder(params.Get("sort")); sort {
	case "", provider.SortRelevance, provider.SortDate, provider.SortCitations:
		q.Sort = sort
	default:
		return q, errors.New("sort must be relevance, date or citations")
	}

	if t := params.Get("type"); t != "" {
		q.Filters.Type = domain.ResourceType(t)
	}
	if q.Filters.Year, err = positiveInt(params.Get("year"), "year"); err != nil {
		return q, err
	}
	if q.Filters.YearFrom, err = positiveInt(params.Get("year_from"), "year_from"); err != nil {
		return q, err
	}
	if q.Filters.YearTo, err = positiveInt(params.Get("year_to"), "year_to"); err != nil {
		return q, err
	}
	if raw := params.Get("open_access"); raw != "" {
		open, err := strconv.ParseBool(raw)
		if err != nil {
			return q, errors.New("open_access must be a boolean")
		}
		q.Filters.OpenAccess = &open
	}
	if lang := params.Get("language"); lang != "" {
		q.Filters.Language = lang
	}

	return q, nil
}

func positiveInt(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, errors.New(name + " must be a positive integer")
	}
	return n, nil
}

func validationDetails(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		parts := make([]string, 0, len(verrs))
		for _, ve := range verrs {
			parts = append(parts, ve.Field()+" failed "+ve.Tag())
		}
		return strings.Join(parts, "; ")
	}
	return err.Error()
}
