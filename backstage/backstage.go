// Package backstage provides a localhost-only REST inspection endpoint
// for a running process, enabled only when the host binary is started
// with --backstage <port>. It exposes no API functionality beyond a
// thin read-only view of the object registry, module registry, and
// event loop, matching the original's documented scope exactly
// ("Backstage...does not expose any API functionality", see
// original_source/src/backstage/backstage.cpp).
package backstage

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kotuku-run/parasol/core/eventloop"
	"github.com/kotuku-run/parasol/core/log"
	"github.com/kotuku-run/parasol/core/module"
	"github.com/kotuku-run/parasol/core/object"
)

// Server is the Backstage REST host. It binds to 127.0.0.1 only: the
// original never exposed this beyond loopback either, leaving any
// wider exposure to a reverse proxy operated outside the process.
type Server struct {
	log      *log.Logger
	objects  *object.Registry
	modules  *module.Registry
	loop     *eventloop.Loop
	httpSrv  *http.Server
}

// Config wires the three subsystems Backstage reports on.
type Config struct {
	Port    int
	Objects *object.Registry
	Modules *module.Registry
	Loop    *eventloop.Loop
	Logger  *log.Logger
}

func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default("backstage")
	}
	s := &Server{log: logger, objects: cfg.Objects, modules: cfg.Modules, loop: cfg.Loop}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/", s.handleRoot)
	r.Get("/objects", s.handleObjects)
	r.Get("/objects/{id}", s.handleObject)
	r.Get("/modules", s.handleModules)
	r.Get("/eventloop", s.handleEventLoop)

	s.httpSrv = &http.Server{
		Addr:              net.JoinHostPort("127.0.0.1", strconv.Itoa(cfg.Port)),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Listen starts serving and blocks until ctx is cancelled, matching
// the original's "does nothing unless --backstage is present" design:
// callers only construct a Server and call Listen when the flag was
// actually supplied on the commandline.
func (s *Server) Listen(ctx context.Context) error {
	s.log.Info("backstage enabled", log.String("addr", s.httpSrv.Addr))
	errCh := make(chan error, 1)
	go func() { errCh <- s.httpSrv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"service": "backstage",
		"routes":  []string{"/objects", "/objects/{id}", "/modules", "/eventloop"},
	})
}

func (s *Server) handleObjects(w http.ResponseWriter, r *http.Request) {
	if s.objects == nil {
		writeJSON(w, []object.ObjectSummary{})
		return
	}
	writeJSON(w, s.objects.Snapshot())
}

func (s *Server) handleObject(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		http.Error(w, "invalid object id", http.StatusBadRequest)
		return
	}
	if s.objects == nil {
		http.NotFound(w, r)
		return
	}
	inst, err := s.objects.ByID(uint32(id))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, map[string]any{
		"id":       inst.Header.UniqueID,
		"ownerId":  inst.Header.OwnerID,
		"classId":  inst.Header.ClassID,
		"locked":   inst.Header.IsLocked(),
	})
}

func (s *Server) handleModules(w http.ResponseWriter, r *http.Request) {
	if s.modules == nil {
		writeJSON(w, []string{})
		return
	}
	order, err := s.modules.Order()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, order)
}

func (s *Server) handleEventLoop(w http.ResponseWriter, r *http.Request) {
	if s.loop == nil {
		writeJSON(w, eventloop.Stats{})
		return
	}
	writeJSON(w, s.loop.Stats())
}
