package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"vessel-ops/internal/model"
	"vessel-ops/internal/repository"
	"vessel-ops/internal/service"
)

// itemOps is the per-kind surface shared by tasks and yard jobs.
type itemOps[T model.Item[T]] interface {
	Get(ctx context.Context, id string) (T, error)
	Complete(ctx context.Context, id string, actor model.Actor, now time.Time) (service.CompletionResult[T], error)
	Delete(ctx context.Context, id string) error
}

// Server exposes the work item engine over HTTP.
type Server struct {
	tasks   *service.TaskService
	jobs    *service.YardJobService
	vessels *service.VesselService
	log     *zap.Logger
	now     func() time.Time
}

func New(tasks *service.TaskService, jobs *service.YardJobService, vessels *service.VesselService, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{tasks: tasks, jobs: jobs, vessels: vessels, log: log, now: time.Now}
}

// InLocation makes handlers evaluate urgency and cleanup periods in loc.
func (s *Server) InLocation(loc *time.Location) *Server {
	s.now = func() time.Time { return time.Now().In(loc) }
	return s
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/vessels", func(r chi.Router) {
		r.Get("/", s.listVessels)
		r.Post("/", s.registerVessel)
		r.Route("/{vesselID}", func(r chi.Router) {
			r.Get("/tasks", s.openTaskHub)
			r.Post("/tasks", s.createTask)
			r.Get("/yard-jobs", s.openYardJobHub)
			r.Post("/yard-jobs", s.createYardJob)
		})
	})

	r.Route("/tasks/{id}", func(r chi.Router) {
		r.Get("/", getHandler[model.Task](s, s.tasks))
		r.Post("/complete", completeHandler[model.Task](s, s.tasks))
		r.Delete("/", deleteHandler[model.Task](s, s.tasks))
	})
	r.Route("/yard-jobs/{id}", func(r chi.Router) {
		r.Get("/", getHandler[model.YardJob](s, s.jobs))
		r.Post("/complete", completeHandler[model.YardJob](s, s.jobs))
		r.Delete("/", deleteHandler[model.YardJob](s, s.jobs))
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

type itemView[T model.WorkItem] struct {
	Item      T               `json:"item"`
	Urgency   service.Urgency `json:"urgency"`
	Color     string          `json:"color"`
	Remaining *float64        `json:"remaining,omitempty"`
}

func viewOf[T model.WorkItem](item T, now time.Time) itemView[T] {
	return annotatedView(service.AnnotateItem(item, now))
}

func viewsOf[T model.WorkItem](items []service.Annotated[T]) []itemView[T] {
	out := make([]itemView[T], 0, len(items))
	for _, a := range items {
		out = append(out, annotatedView(a))
	}
	return out
}

// annotatedView reports the remaining share of the window only while the item has a deadline running.
func annotatedView[T model.WorkItem](a service.Annotated[T]) itemView[T] {
	view := itemView[T]{Item: a.Item, Urgency: a.Urgency, Color: a.Urgency.Color()}
	if a.Urgency != service.UrgencyNone {
		remaining := a.Remaining
		view.Remaining = &remaining
	}
	return view
}

type completeReq struct {
	ActorID   string `json:"actorId"`
	ActorName string `json:"actorName"`
}

type completeResp[T model.WorkItem] struct {
	Outcome   service.Outcome `json:"outcome"`
	Item      itemView[T]     `json:"item"`
	Successor *itemView[T]    `json:"successor,omitempty"`
	Warning   string          `json:"warning,omitempty"`
}

func getHandler[T model.Item[T]](s *Server, ops itemOps[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, err := ops.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, viewOf(item, s.now()))
	}
}

// completeHandler answers 200 for completed, already completed and lost races,
// and 207 when the completion was stored but the next occurrence was not.
func completeHandler[T model.Item[T]](s *Server, ops itemOps[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req completeReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `invalid body: {"actorId":"...","actorName":"..."}`, http.StatusBadRequest)
			return
		}

		now := s.now()
		res, err := ops.Complete(r.Context(), chi.URLParam(r, "id"), model.Actor{ID: req.ActorID, Name: req.ActorName}, now)
		var recErr *service.RecurrenceError
		if err != nil && !errors.As(err, &recErr) {
			s.writeError(w, err)
			return
		}

		resp := completeResp[T]{Outcome: res.Outcome, Item: viewOf(res.Item, now)}
		if res.Successor != nil {
			v := viewOf(*res.Successor, now)
			resp.Successor = &v
		}
		status := http.StatusOK
		if recErr != nil {
			resp.Warning = "marked complete, but could not schedule the next occurrence"
			status = http.StatusMultiStatus
		}
		writeJSON(w, status, resp)
	}
}

func deleteHandler[T model.Item[T]](s *Server, ops itemOps[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := ops.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			s.writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidActor), errors.Is(err, service.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, repository.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	default:
		s.log.Error("request failed", zap.Error(err))
		http.Error(w, "store unavailable, retry later", http.StatusServiceUnavailable)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
