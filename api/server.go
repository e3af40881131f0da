package api

import (
	"net/http"

	"go.uber.org/zap"

	"websearch/search"
)

// Server exposes the search engine over HTTP to the agent layer.
type Server struct {
	engine search.Searcher
	logger *zap.Logger
	port   string
}

func NewServer(engine search.Searcher, logger *zap.Logger, port string) *Server {
	return &Server{
		engine: engine,
		logger: logger,
		port:   port,
	}
}

// Start starts the API server.
func (s *Server) Start() error {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/search", s.handleSearch)
	mux.HandleFunc("/api/news", s.handleNews)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/cache/clear", s.handleClearCache)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	s.logger.Info("starting api server", zap.String("port", s.port))
	return http.ListenAndServe(":"+s.port, mux)
}
