// Package mockapi serves the property search API over an in-memory listing
// store, for local runs and tests.
package mockapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/spf13/cast"

	"staygrip/internal/domain"
	"staygrip/internal/gateway"
	"staygrip/internal/logging"
	"staygrip/internal/logic"
)

// Server is the fake backend
type Server struct {
	store  logic.PropertyStore
	logger logging.Logger

	mu       sync.Mutex
	requests map[string]int
	failures []int
	delay    time.Duration
	queries  []string

	viewTypes  []string
	categories []string
}

// New creates a server over store
func New(store logic.PropertyStore, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.Nop()
	}
	s := &Server{
		store:    store,
		logger:   logger.WithFields(logging.Fields{"component": "mockapi"}),
		requests: make(map[string]int),
	}
	seenView, seenCat := map[string]bool{}, map[string]bool{}
	for _, p := range store.GetAllProperties() {
		if !seenView[p.ViewType] {
			seenView[p.ViewType] = true
			s.viewTypes = append(s.viewTypes, p.ViewType)
		}
		if !seenCat[p.PropertyType] {
			seenCat[p.PropertyType] = true
			s.categories = append(s.categories, p.PropertyType)
		}
	}
	return s
}

// Handler returns the chi router
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP, s.loggerMiddleware, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Trace-ID"},
		MaxAge:         300,
	}))
	r.Use(s.faultMiddleware)

	r.Get(gateway.SearchPath, s.handleSearch)
	r.Get(gateway.ListIDPath, s.handleListID)
	r.Get(gateway.FilterOptionsPath, s.handleFilterOptions)
	return r
}

// FailNext makes the next len(statuses) requests fail with those statuses
func (s *Server) FailNext(statuses ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, statuses...)
}

// SetDelay slows every response down
func (s *Server) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// Requests returns how many requests reached path
func (s *Server) Requests(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[path]
}

// SearchQueries returns the raw query strings received by the search endpoint
func (s *Server) SearchQueries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}

func (s *Server) loggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = uuid.NewString()
		}
		httpLogger := s.logger.WithFields(logging.Fields{
			"trace_id":    traceID,
			"http_method": r.Method,
			"http_path":   r.URL.Path,
		})

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		httpLogger.Info("request finished", logging.Fields{
			"status_code": ww.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		})
	})
}

func (s *Server) faultMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests[r.URL.Path]++
		if r.URL.Path == gateway.SearchPath {
			s.queries = append(s.queries, r.URL.RawQuery)
		}
		delay := s.delay
		status := 0
		if len(s.failures) > 0 {
			status, s.failures = s.failures[0], s.failures[1:]
		}
		s.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		if status != 0 {
			http.Error(w, http.StatusText(status), status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := ParseQuery(r)
	props, info := s.store.Search(q)
	writeJSON(w, http.StatusOK, gateway.PropertyResponse{
		Success:    true,
		Data:       props,
		Message:    "ok",
		Pagination: toDTO(info),
	})
}

func (s *Server) handleListID(w http.ResponseWriter, r *http.Request) {
	id, err := cast.ToIntE(r.URL.Query().Get("list_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, gateway.PropertyResponse{Message: "invalid list_id"})
		return
	}
	p, ok := s.store.GetProperty(id)
	if !ok {
		writeJSON(w, http.StatusOK, gateway.PropertyResponse{Success: false, Data: []domain.Property{}, Message: "not found"})
		return
	}
	writeJSON(w, http.StatusOK, gateway.PropertyResponse{
		Success:    true,
		Data:       []domain.Property{p},
		Pagination: gateway.PaginationDTO{Page: 1, PageSize: 1, Total: 1, TotalPages: 1},
	})
}

func (s *Server) handleFilterOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"viewtypes":  s.viewTypes,
		"categories": s.categories,
	})
}

// ParseQuery reads the search parameters the gateway sends
func ParseQuery(r *http.Request) logic.Query {
	v := r.URL.Query()
	list := func(key string) []string {
		raw := strings.TrimSpace(v.Get(key))
		if raw == "" {
			return nil
		}
		var out []string
		for _, item := range strings.Split(raw, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		return out
	}
	price := func(key string) *float64 {
		f, err := cast.ToFloat64E(v.Get(key))
		if err != nil || v.Get(key) == "" {
			return nil
		}
		return &f
	}

	return logic.Query{
		City:          v.Get("city"),
		State:         v.Get("state"),
		Country:       v.Get("country"),
		SearchExact:   cast.ToBool(v.Get("searchExact")),
		MinBedrooms:   cast.ToInt(v.Get("minBedrooms")),
		MinBathrooms:  cast.ToFloat64(v.Get("minBathrooms")),
		MinGuests:     cast.ToInt(v.Get("minGuests")),
		MinPrice:      price("minPrice"),
		MaxPrice:      price("maxPrice"),
		Amenities:     list("amenities"),
		Providers:     list("providers"),
		PropertyTypes: list("propertyTypes"),
		ViewTypes:     list("viewTypes"),
		PetFriendly:   cast.ToBool(v.Get("petFriendly")),
		SortBy:        v.Get("sortBy"),
		Page:          cast.ToInt(v.Get("page")),
		PageSize:      cast.ToInt(v.Get("pageSize")),
	}
}

func toDTO(info domain.PageInfo) gateway.PaginationDTO {
	return gateway.PaginationDTO{
		Page:       info.Page,
		PageSize:   info.PageSize,
		Total:      info.Total,
		TotalPages: info.TotalPages,
		HasNext:    info.HasNext(),
		HasPrev:    info.HasPrev(),
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
