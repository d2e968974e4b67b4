package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"metagrip/internal/domain"
	"metagrip/internal/metadata"
)

// maxSearchLimit caps a single search page
const maxSearchLimit = 1000

// Server exposes a Store over HTTP
type Server struct {
	store  *Store
	logger *zap.Logger
	router chi.Router
}

// NewServer builds the router
func NewServer(store *Store, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{store: store, logger: logger.Named("devserver")}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v3", func(r chi.Router) {
		r.Get("/configuration/user", s.getPreferences)
		r.Put("/configuration/user", s.putPreferences)

		r.Route("/namespaces/{ns}", func(r chi.Router) {
			r.Get("/metadata/search", s.search)
			r.Get("/adapters", s.adapters)
			r.Get("/apps/{app}/{programType}/{program}/status", s.programStatus)
			r.Post("/apps/{app}/{programType}/{program}/{action}", s.programAction)
		})
	})

	s.router = r
	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx ends, then shuts down gracefully.
// ready, when non-nil, receives the bound address.
func (s *Server) Run(ctx context.Context, addr string, ready func(net.Addr)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	if ready != nil {
		ready(ln.Addr())
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("server starting", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

type searchResponse struct {
	Results []metadata.RawEntity `json:"results"`
	Total   int                  `json:"total"`
	Limit   int                  `json:"limit"`
	Offset  int                  `json:"offset"`
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	limit, err := queryInt(params.Get("limit"), maxSearchLimit)
	if err != nil || limit < 0 {
		writeText(w, http.StatusBadRequest, "'limit' must be a non-negative integer")
		return
	}
	offset, err := queryInt(params.Get("offset"), 0)
	if err != nil || offset < 0 {
		writeText(w, http.StatusBadRequest, "'offset' must be a non-negative integer")
		return
	}

	if _, err := parseSort(params.Get("sort")); err != nil {
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}

	var kinds []string
	for _, t := range params["target"] {
		kind, err := TargetKind(t)
		if err != nil {
			writeText(w, http.StatusBadRequest, err.Error())
			return
		}
		kinds = append(kinds, kind)
	}

	results, total, err := s.store.Search(r.Context(), SearchQuery{
		Namespace: chi.URLParam(r, "ns"),
		Query:     params.Get("query"),
		Targets:   kinds,
		Limit:     min(limit, maxSearchLimit),
		Offset:    offset,
		Sort:      params.Get("sort"),
	})
	if err != nil {
		s.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Results: results,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	})
}

func programRef(r *http.Request) domain.ProgramRef {
	return domain.ProgramRef{
		Namespace:   chi.URLParam(r, "ns"),
		AppID:       chi.URLParam(r, "app"),
		ProgramType: chi.URLParam(r, "programType"),
		ProgramID:   chi.URLParam(r, "program"),
	}
}

func (s *Server) programStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.store.ProgramStatus(r.Context(), programRef(r))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(status)})
}

func (s *Server) programAction(w http.ResponseWriter, r *http.Request) {
	action := domain.ProgramAction(chi.URLParam(r, "action"))
	if action != domain.ActionStart && action != domain.ActionStop {
		writeText(w, http.StatusNotFound, "unknown action "+string(action))
		return
	}
	ref := programRef(r)
	if err := s.store.Transition(r.Context(), ref, action); err != nil {
		s.fail(w, err)
		return
	}
	s.logger.Info("program transition",
		zap.String("app", ref.AppID),
		zap.String("program", ref.ProgramID),
		zap.String("action", string(action)))
	w.WriteHeader(http.StatusOK)
}

type propertyBag struct {
	Property map[string]any `json:"property"`
}

func (s *Server) getPreferences(w http.ResponseWriter, r *http.Request) {
	props, err := s.store.Preferences(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, propertyBag{Property: props})
}

func (s *Server) putPreferences(w http.ResponseWriter, r *http.Request) {
	var bag propertyBag
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&bag); err != nil {
		writeText(w, http.StatusBadRequest, "invalid configuration body: "+err.Error())
		return
	}
	if err := s.store.ReplacePreferences(r.Context(), bag.Property); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type adapterJSON struct {
	Name        string `json:"name"`
	Template    string `json:"template"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
}

func (s *Server) adapters(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.Adapters(r.Context(), chi.URLParam(r, "ns"), r.URL.Query().Get("template"))
	if err != nil {
		s.fail(w, err)
		return
	}
	out := make([]adapterJSON, 0, len(list))
	for _, a := range list {
		out = append(out, adapterJSON{Name: a.Name, Template: a.Template, Description: a.Description, Status: a.Status})
	}
	writeJSON(w, http.StatusOK, out)
}

// fail maps store errors to status codes
func (s *Server) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeText(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrConflict):
		writeText(w, http.StatusConflict, err.Error())
	default:
		s.logger.Error("request failed", zap.Error(err))
		writeText(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	w.Write([]byte(msg))
}

func queryInt(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}
