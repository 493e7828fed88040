package web

import (
	"context"
	"embed"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/velumi/img2svg/internal/config"
	"github.com/velumi/img2svg/internal/domain"
)

//go:embed templates/index.html
var templateFS embed.FS

// WorkflowRunner is the slice of the workflow service the handlers depend on.
type WorkflowRunner interface {
	GenerateAndVectorize(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, string, *domain.VectorizeResult, error)
	VectorizeBytes(ctx context.Context, filename string, data []byte) (string, *domain.VectorizeResult, error)
}

// Server serves the two-tab browser UI and its JSON API.
type Server struct {
	workflow       WorkflowRunner
	outputDir      string
	maxUploadBytes int64
	addr           string
	index          *template.Template
}

// NewServer creates a web server for the given workflow.
func NewServer(cfg *config.Config, workflow WorkflowRunner) (*Server, error) {
	index, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, err
	}

	return &Server{
		workflow:       workflow,
		outputDir:      cfg.OutputDir,
		maxUploadBytes: int64(cfg.MaxUploadSizeMB) << 20,
		addr:           cfg.WebAddr(),
		index:          index,
	}, nil
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/generate", s.handleGenerate)
	mux.HandleFunc("/api/vectorize", s.handleVectorize)
	mux.Handle("/files/", http.StripPrefix("/files/", http.FileServer(http.Dir(s.outputDir))))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

// ListenAndServe runs the server until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Printf("Web UI listening on http://%s", s.addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
