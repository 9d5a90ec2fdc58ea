package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"github.com/GavinMontross/CPH-CRC-Scanner/internal/api"
	"github.com/GavinMontross/CPH-CRC-Scanner/internal/batch"
	"github.com/GavinMontross/CPH-CRC-Scanner/internal/config"
	"github.com/GavinMontross/CPH-CRC-Scanner/internal/export"
	"github.com/GavinMontross/CPH-CRC-Scanner/internal/logging"
)

type apiServer struct {
	bind     string
	basePath string
	logger   *slog.Logger
	daemon   *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	if cfg == nil || d == nil {
		return nil, nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	srv := &apiServer{
		bind:     bind,
		basePath: cfg.Paths.BasePath,
		logger:   logger,
		daemon:   d,
	}

	token := strings.TrimSpace(cfg.Paths.APIToken)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", authMiddleware(token, srv.handleStatus))
	mux.HandleFunc("/api/lookup", authMiddleware(token, srv.handleLookup))
	mux.HandleFunc("/api/add", authMiddleware(token, srv.handleAdd))
	mux.HandleFunc("/api/recent", authMiddleware(token, srv.handleRecent))
	mux.HandleFunc("/api/finalize", authMiddleware(token, srv.handleFinalize))
	mux.HandleFunc("/api/reset", authMiddleware(token, srv.handleReset))
	mux.HandleFunc("/api/exports", authMiddleware(token, srv.handleExports))
	mux.HandleFunc("/api/files", authMiddleware(token, srv.handleFiles))
	mux.HandleFunc("/download/", authMiddleware(token, srv.handleDownload))

	srv.server = &http.Server{
		Handler:           requestIDMiddleware(srv.mount(mux), srv.log()),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

// mount places the route tree under the configured base path. Requests outside
// the prefix get a 404 so the daemon can sit behind a shared reverse proxy.
func (s *apiServer) mount(mux *http.ServeMux) http.Handler {
	base := s.basePath
	if base == "" || base == "/" {
		return mux
	}
	outer := http.NewServeMux()
	outer.Handle(base+"/", http.StripPrefix(base, mux))
	return outer
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening",
		logging.String("address", listener.Addr().String()),
		logging.String("base_path", s.basePath))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) address() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status(r.Context())
	s.writeJSON(w, http.StatusOK, api.StatusResponse{
		Running:      status.Running,
		BatchFile:    status.BatchFile,
		DataRows:     status.DataRows,
		SnipeEnabled: status.SnipeEnabled,
		ArchiveDir:   status.ArchiveDir,
		Version:      Version,
	})
}

func (s *apiServer) handleLookup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.LookupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, found := s.daemon.resolver.Resolve(r.Context(), req.Serial)
	s.writeJSON(w, http.StatusOK, api.LookupResponse{
		RecordPayload: recordPayload(rec),
		FoundInSnipe:  found,
	})
}

func (s *apiServer) handleAdd(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec := batch.Record{
		EquipmentType:   req.EquipmentType,
		ItemDescription: req.ItemDescription,
		SerialNumber:    req.SerialNumber,
		TempleTag:       req.TempleTag,
	}
	if err := s.daemon.store.Append(r.Context(), rec); err != nil {
		if errors.Is(err, batch.ErrDuplicateSerial) {
			s.writeJSON(w, http.StatusOK, api.AddResponse{OK: false, Error: err.Error()})
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.AddResponse{OK: true})
}

func (s *apiServer) handleRecent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	items, err := s.daemon.store.Recent(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.RecentResponse{Items: items})
}

func (s *apiServer) handleFinalize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	filename, err := s.daemon.Finalize(r.Context())
	if err != nil {
		if errors.Is(err, batch.ErrNoBatch) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.FinalizeResponse{OK: true, Filename: filename})
}

func (s *apiServer) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := s.daemon.store.Reset(r.Context()); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.ResetResponse{OK: true})
}

func (s *apiServer) handleExports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.daemon.history == nil {
		s.writeJSON(w, http.StatusOK, api.ExportsResponse{Exports: nil})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	exports, err := s.daemon.history.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	records := make([]api.ExportRecord, 0, len(exports))
	for _, exp := range exports {
		records = append(records, api.ExportRecord{
			ID:        exp.ID,
			Filename:  exp.Filename,
			DataRows:  exp.DataRows,
			CreatedAt: exp.CreatedAt.Format(time.RFC3339),
		})
	}
	s.writeJSON(w, http.StatusOK, api.ExportsResponse{Exports: records})
}

func (s *apiServer) handleFiles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	files, err := export.ListArchive(s.daemon.cfg.Paths.ArchiveDir)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.FilesResponse{Files: files})
}

func (s *apiServer) handleDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/download/")
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		s.writeError(w, http.StatusNotFound, "file not found")
		return
	}

	path := filepath.Join(s.daemon.cfg.Paths.ArchiveDir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		s.writeError(w, http.StatusNotFound, "file not found")
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeFile(w, r, path)
}

func recordPayload(rec batch.Record) api.RecordPayload {
	return api.RecordPayload{
		EquipmentType:   rec.EquipmentType,
		ItemDescription: rec.ItemDescription,
		SerialNumber:    rec.SerialNumber,
		TempleTag:       rec.TempleTag,
	}
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String(logging.FieldComponent, "api-server"))
	}
	return logging.NewNop()
}
