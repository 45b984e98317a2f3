package internal

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/tidwall/gjson"

	devtools "github.com/lambdaurora/lambdynamiclights-devtools"
)

//go:embed index.html
var site embed.FS

var pingInterval = 10 * time.Second

type Server struct {
	builder *Builder
	logger  *log.Logger
	port    int
	senders map[int]chan interface{}
	nextID  int
	lock    sync.Mutex
}

func NewServer(builder *Builder, logger *log.Logger, port int) (*Server, error) {
	if builder == nil {
		return nil, errors.New("server needs a builder")
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Server{
		builder: builder,
		logger:  logger,
		port:    port,
		senders: map[int]chan interface{}{},
	}, nil
}

type reloadEvent struct {
	Type   string   `json:"type"`
	Target string   `json:"target"`
	Files  []string `json:"files,omitempty"`
}

type buildErrorEvent struct {
	Type string `json:"type"`
	Out  string `json:"out"`
	Err  string `json:"err"`
}

type pingEvent struct {
	Type string `json:"type"`
}

type summary struct {
	ID      string            `json:"id"`
	Name    string            `json:"name"`
	Version string            `json:"version"`
	Depends map[string]string `json:"depends"`
	Nmt     string            `json:"nmt,omitempty"`
}

func (s *Server) subscribe() (int, chan interface{}) {
	s.lock.Lock()
	defer s.lock.Unlock()
	id := s.nextID
	s.nextID++
	c := make(chan interface{}, 10)
	s.senders[id] = c
	return id, c
}

func (s *Server) unsubscribe(id int) {
	s.lock.Lock()
	defer s.lock.Unlock()
	delete(s.senders, id)
}

// broadcast drops the event for subscribers whose buffer is full.
func (s *Server) broadcast(ev interface{}) {
	s.lock.Lock()
	defer s.lock.Unlock()
	for _, sender := range s.senders {
		select {
		case sender <- ev:
		default:
		}
	}
}

func (s *Server) Reload(kind ManifestKind, files []string) {
	s.broadcast(&reloadEvent{Type: "reload", Target: kind.String(), Files: files})
}

func (s *Server) BuildError(o, e string) {
	s.logger.Warn("sending build error")
	s.broadcast(&buildErrorEvent{Type: "buildError", Out: o, Err: e})
}

func (s *Server) pingLoop(ctx context.Context) {
	t := time.NewTicker(pingInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.broadcast(pingEvent{Type: "ping"})
		}
	}
}

func (s *Server) outputDir() (string, *Project, error) {
	p, err := s.builder.Project()
	if err != nil {
		return "", nil, err
	}
	return p.OutputPath(), p, nil
}

func (s *Server) fail(w http.ResponseWriter, status int, err error) {
	s.logger.Error("request failed", "err", err)
	http.Error(w, err.Error(), status)
}

func (s *Server) serveGenerated(w http.ResponseWriter, name, contentType string) {
	out, _, err := s.outputDir()
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	f, err := os.ReadFile(path.Join(out, name)) // #nosec G304
	if err != nil {
		if os.IsNotExist(err) {
			s.fail(w, http.StatusNotFound, fmt.Errorf("%s has not been generated", name))
			return
		}
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Add("Content-type", contentType)
	w.Header().Add("Cache-control", "no-store")
	if _, err := w.Write(f); err != nil {
		s.logger.Error("write response", "err", err)
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/events", func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "Streaming unsupported!", http.StatusInternalServerError)
			return
		}

		id, c := s.subscribe()
		defer s.unsubscribe(id)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		encoder := json.NewEncoder(w)
		for {
			select {
			case <-r.Context().Done():
				return
			case ev := <-c:
				if _, err := w.Write([]byte("data: ")); err != nil {
					return
				}
				if err := encoder.Encode(ev); err != nil {
					return
				}
				if _, err := w.Write([]byte("\n")); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	})

	r.Get("/"+devtools.FmjFileName, func(w http.ResponseWriter, r *http.Request) {
		s.serveGenerated(w, devtools.FmjFileName, "application/json")
	})

	r.Get("/META-INF/{file}", func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "file")
		if strings.ContainsAny(name, `/\`) || !strings.HasSuffix(name, ".mods.toml") {
			http.NotFound(w, r)
			return
		}
		s.serveGenerated(w, path.Join("META-INF", name), "application/toml")
	})

	r.Get("/summary", func(w http.ResponseWriter, r *http.Request) {
		out, p, err := s.outputDir()
		if err != nil {
			s.fail(w, http.StatusInternalServerError, err)
			return
		}
		data, err := os.ReadFile(path.Join(out, devtools.FmjFileName)) // #nosec G304
		if err != nil {
			s.fail(w, http.StatusNotFound, fmt.Errorf("%s has not been generated", devtools.FmjFileName))
			return
		}
		if !gjson.ValidBytes(data) {
			s.fail(w, http.StatusInternalServerError, fmt.Errorf("%s is not valid json", devtools.FmjFileName))
			return
		}
		fields := gjson.GetManyBytes(data, "id", "name", "version", "depends")
		sum := summary{
			ID:      fields[0].String(),
			Name:    fields[1].String(),
			Version: fields[2].String(),
			Depends: map[string]string{},
		}
		fields[3].ForEach(func(key, value gjson.Result) bool {
			if value.IsArray() {
				ranges := []string{}
				for _, v := range value.Array() {
					ranges = append(ranges, v.String())
				}
				sum.Depends[key.String()] = strings.Join(ranges, " || ")
				return true
			}
			sum.Depends[key.String()] = value.String()
			return true
		})
		if p.NeoForge.Enabled {
			sum.Nmt = devtools.NmtPath(p.NeoForge.Loader)
		}
		w.Header().Add("Content-type", "application/json")
		w.Header().Add("Cache-control", "no-store")
		if err := json.NewEncoder(w).Encode(sum); err != nil {
			s.logger.Error("write response", "err", err)
		}
	})

	r.Post("/regenerate", func(w http.ResponseWriter, r *http.Request) {
		res, err := s.builder.Generate(r.Context(), All)
		if err != nil {
			var stderr string
			if res != nil {
				stderr = string(res.Stderr)
			}
			s.BuildError(stderr, err.Error())
			s.fail(w, http.StatusInternalServerError, err)
			return
		}
		s.Reload(All, res.Files)
		w.Header().Add("Content-type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string][]string{"files": res.Files}); err != nil {
			s.logger.Error("write response", "err", err)
		}
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		f, err := site.ReadFile("index.html")
		if err != nil {
			s.fail(w, http.StatusInternalServerError, err)
			return
		}
		t, err := template.New("index.html").Parse(string(f))
		if err != nil {
			s.fail(w, http.StatusInternalServerError, err)
			return
		}
		p, err := s.builder.Project()
		if err != nil {
			s.fail(w, http.StatusInternalServerError, err)
			return
		}
		var data struct {
			Name        string
			Namespace   string
			FullVersion string
			VersionType string
			Fmj         string
			Nmt         string
		}
		data.Name = p.Name
		data.Namespace = p.Namespace
		data.FullVersion = p.FullVersion()
		data.VersionType = p.VersionType()
		data.Fmj = "/" + devtools.FmjFileName
		if p.NeoForge.Enabled {
			data.Nmt = "/" + devtools.NmtPath(p.NeoForge.Loader)
		}
		w.Header().Add("Content-type", "text/html")
		w.Header().Add("Cache-control", "no-store")
		if err := t.Execute(w, data); err != nil {
			s.logger.Error("render index", "err", err)
		}
	})

	return r
}

// Serve listens on the configured port until ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	go s.pingLoop(ctx)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Mount("/", s.Routes())

	srv := &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 200 * time.Millisecond,
		Addr:              fmt.Sprintf(":%d", s.port),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("shutdown", "err", err)
		}
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
