package demoserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/raysh454/vertex/internal/logging"
	"github.com/raysh454/vertex/internal/scanner"
)

const (
	versionBroken = 1
	versionFixed  = 2
)

var errUnknownPage = errors.New("unknown fixture page")

// DemoServer serves fixture pages whose version can be switched at runtime,
// so the same URL can be scanned before and after a fix.
type DemoServer struct {
	cfg    Config
	logger logging.Logger
	order  []string
	pages  map[string]PageDefinition

	mu       sync.RWMutex
	versions map[string]int
}

// PageState describes one fixture as served right now.
type PageState struct {
	Path        string             `json:"path"`
	Description string             `json:"description"`
	Categories  []scanner.Category `json:"categories"`
	Version     int                `json:"version"`
	Fixed       bool               `json:"fixed"`
	Versions    []int              `json:"versions"`
}

type versionRequest struct {
	Path    string `json:"path"`
	Version int    `json:"version"`
}

// NewDemoServer creates a demo server with every page at cfg.InitialVersion.
func NewDemoServer(cfg Config, logger logging.Logger) *DemoServer {
	if cfg.InitialVersion < versionBroken {
		cfg.InitialVersion = versionBroken
	}
	if logger == nil {
		logger = logging.NewStdoutLogger("demoserver")
	}
	s := &DemoServer{
		cfg:      cfg,
		logger:   logger.With(logging.Field{Key: "component", Value: "demoserver"}),
		pages:    make(map[string]PageDefinition),
		versions: make(map[string]int),
	}
	for _, p := range GetAllPages() {
		s.order = append(s.order, p.Path)
		s.pages[p.Path] = p
		s.versions[p.Path] = cfg.InitialVersion
	}
	return s
}

// Handler returns the fixture pages, the control panel and its JSON API.
func (s *DemoServer) Handler() http.Handler {
	r := chi.NewRouter()
	for _, path := range s.order {
		r.Get(path, s.handleFixture(path))
	}

	r.Get("/demo", s.handlePanel)
	r.Get("/demo/pages", s.handleListPages)
	r.Post("/demo/version", s.handleSetVersion)
	r.Post("/demo/fix-all", s.handleSetAll(latestVersion))
	r.Post("/demo/break-all", s.handleSetAll(func(PageDefinition) int { return versionBroken }))

	r.Get("/static/*", handleStatic)
	return r
}

// Start listens on cfg.Addr until the server fails.
func (s *DemoServer) Start() error {
	s.logger.Info("demo server listening",
		logging.Field{Key: "addr", Value: s.cfg.Addr},
		logging.Field{Key: "panel", Value: "/demo"},
		logging.Field{Key: "vertex", Value: s.cfg.VertexURL})
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

// States returns every fixture in registration order.
func (s *DemoServer) States() []PageState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]PageState, 0, len(s.order))
	for _, path := range s.order {
		out = append(out, s.stateLocked(path))
	}
	return out
}

// SetVersion switches the version served at path.
func (s *DemoServer) SetVersion(path string, version int) error {
	def, ok := s.pages[path]
	if !ok {
		return fmt.Errorf("%w: %s", errUnknownPage, path)
	}
	if _, ok := def.Versions[version]; !ok {
		return fmt.Errorf("%s has no version %d", path, version)
	}
	s.mu.Lock()
	s.versions[path] = version
	s.mu.Unlock()
	s.logger.Info("switched fixture version",
		logging.Field{Key: "path", Value: path},
		logging.Field{Key: "version", Value: version})
	return nil
}

func (s *DemoServer) stateLocked(path string) PageState {
	def := s.pages[path]
	versions := make([]int, 0, len(def.Versions))
	for v := range def.Versions {
		versions = append(versions, v)
	}
	sort.Ints(versions)
	current := s.versions[path]
	return PageState{
		Path:        path,
		Description: def.Description,
		Categories:  def.Categories,
		Version:     current,
		Fixed:       current >= versionFixed,
		Versions:    versions,
	}
}

func latestVersion(def PageDefinition) int {
	latest := versionBroken
	for v := range def.Versions {
		if v > latest {
			latest = v
		}
	}
	return latest
}

func (s *DemoServer) handleFixture(path string) http.HandlerFunc {
	def := s.pages[path]
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.RLock()
		pv := def.Versions[s.versions[path]]
		s.mu.RUnlock()

		for k, v := range pv.Headers {
			w.Header().Set(k, v)
		}
		contentType := pv.ContentType
		if contentType == "" {
			contentType = "text/html; charset=utf-8"
		}
		w.Header().Set("Content-Type", contentType)
		// Every scan must see the version selected at that moment.
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write([]byte(pv.HTML))
	}
}

func (s *DemoServer) handleListPages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.States())
}

func (s *DemoServer) handleSetVersion(w http.ResponseWriter, r *http.Request) {
	var req versionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := s.SetVersion(req.Path, req.Version); err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, errUnknownPage) {
			status = http.StatusNotFound
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	s.mu.RLock()
	state := s.stateLocked(req.Path)
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, state)
}

func (s *DemoServer) handleSetAll(pick func(PageDefinition) int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		for path, def := range s.pages {
			s.versions[path] = pick(def)
		}
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, s.States())
	}
}

// handleStatic serves placeholder assets so rendered scans do not wait on 404s.
func handleStatic(w http.ResponseWriter, r *http.Request) {
	switch {
	case strings.HasSuffix(r.URL.Path, ".vtt"):
		w.Header().Set("Content-Type", "text/vtt")
		_, _ = w.Write([]byte("WEBVTT\n\n00:00.000 --> 00:02.000\nDemo caption\n"))
	case strings.HasSuffix(r.URL.Path, ".png"), strings.HasSuffix(r.URL.Path, ".jpg"):
		w.Header().Set("Content-Type", "image/gif")
		_, _ = w.Write(placeholderGIF)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// placeholderGIF is a 1x1 transparent GIF.
var placeholderGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00, 0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00,
	0x01, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
