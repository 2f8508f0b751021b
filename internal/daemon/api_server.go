package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"edustream/internal/api"
	"edustream/internal/config"
	"edustream/internal/content"
	"edustream/internal/fileutil"
	"edustream/internal/logging"
	"edustream/internal/pipeline"
	"edustream/internal/publish"
	"edustream/internal/services"
	"edustream/internal/store"
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	srv := &apiServer{
		bind:   bind,
		logger: logging.WithComponent(logger, "api"),
		daemon: d,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/generate", srv.handleGenerate)
	mux.HandleFunc("/api/generate/batch", srv.handleGenerateBatch)
	mux.HandleFunc("/api/content", srv.handleContentList)
	mux.HandleFunc("/api/content/", srv.handleContentItem)
	mux.HandleFunc("/api/queue", srv.handleQueue)
	mux.HandleFunc("/api/queue/all", srv.handleQueueAll)
	mux.HandleFunc("/api/queue/status", srv.handleQueueStatus)
	mux.HandleFunc("/api/publish", srv.handlePublish)
	mux.HandleFunc("/api/settings/interval", srv.handleInterval)
	mux.HandleFunc("/api/platforms", srv.handlePlatforms)
	mux.HandleFunc("/api/status", srv.handleStatus)

	srv.server = &http.Server{
		Handler:           authMiddleware(strings.TrimSpace(cfg.Paths.APIToken), mux),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
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
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
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

func (s *apiServer) addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	item, err := s.daemon.pipeline.Request(r.Context(), pipeline.Request{
		Topic:       req.Topic,
		Category:    req.Category,
		Description: req.Description,
		ContentType: content.ParseType(req.ContentType),
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, convertItem(item))
}

func (s *apiServer) handleGenerateBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.BatchGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	reqs := make([]pipeline.Request, 0, len(req.Requests))
	for _, g := range req.Requests {
		reqs = append(reqs, pipeline.Request{
			Topic:       g.Topic,
			Category:    g.Category,
			Description: g.Description,
			ContentType: content.ParseType(g.ContentType),
		})
	}
	items, err := s.daemon.pipeline.RequestBatch(r.Context(), reqs)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	resp := api.BatchGenerateResponse{Items: make([]api.ContentItem, 0, len(items))}
	for _, item := range items {
		resp.Items = append(resp.Items, convertItem(item))
	}
	s.writeJSON(w, http.StatusAccepted, resp)
}

func (s *apiServer) handleContentList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var statuses []content.Status
	for _, value := range r.URL.Query()["status"] {
		parsed, ok := content.ParseStatus(value)
		if !ok {
			s.writeError(w, http.StatusBadRequest, "unknown status "+value)
			return
		}
		statuses = append(statuses, parsed)
	}
	items, err := s.daemon.store.ListItems(r.Context(), statuses...)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	resp := api.ContentListResponse{Items: make([]api.ContentItem, 0, len(items))}
	for _, item := range items {
		resp.Items = append(resp.Items, convertItem(item))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleContentItem serves /api/content/{id}, its /retry action and
// its /history sub-resource.
func (s *apiServer) handleContentItem(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/content/")
	idStr, action, _ := strings.Cut(rest, "/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid content id")
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		item, err := s.daemon.store.GetItem(r.Context(), id)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		if item == nil {
			s.writeError(w, http.StatusNotFound, "content item not found")
			return
		}
		s.writeJSON(w, http.StatusOK, convertItem(item))

	case action == "" && r.Method == http.MethodDelete:
		item, err := s.daemon.store.GetItem(r.Context(), id)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		deleted, err := s.daemon.store.DeleteItem(r.Context(), id)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		if !deleted {
			s.writeError(w, http.StatusNotFound, "content item not found")
			return
		}
		if item != nil {
			if err := fileutil.RemoveIfExists(item.DiagramPath); err != nil {
				s.logger.Warn("failed to remove diagram artifact",
					logging.Int64(logging.FieldItemID, id),
					logging.Error(err))
			}
		}
		w.WriteHeader(http.StatusNoContent)

	case action == "retry" && r.Method == http.MethodPost:
		item, err := s.daemon.pipeline.Retry(r.Context(), id)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusAccepted, convertItem(item))

	case action == "history" && r.Method == http.MethodGet:
		records, err := s.daemon.store.HistoryForContent(r.Context(), id)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		resp := api.HistoryResponse{Records: make([]api.HistoryRecord, 0, len(records))}
		for _, rec := range records {
			resp.Records = append(resp.Records, convertHistory(rec))
		}
		s.writeJSON(w, http.StatusOK, resp)

	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *apiServer) handleQueue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.QueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	var at *time.Time
	if req.ScheduledAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.ScheduledAt)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "scheduled_at must be RFC 3339")
			return
		}
		at = &parsed
	}
	entry, err := s.daemon.scheduler.Queue(r.Context(), req.ContentID, req.Platform, at)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, api.QueueResponse{Entry: convertEntry(entry)})
}

func (s *apiServer) handleQueueAll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.QueueAllRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	entries, err := s.daemon.scheduler.QueueAll(r.Context(), req.Platform)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	resp := api.QueueListResponse{Entries: make([]api.ScheduleEntry, 0, len(entries))}
	for _, entry := range entries {
		resp.Entries = append(resp.Entries, convertEntry(entry))
	}
	s.writeJSON(w, http.StatusCreated, resp)
}

func (s *apiServer) handleQueueStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status, err := s.daemon.scheduler.QueueStatus(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	resp := api.QueueStatusResponse{
		Pending:         make([]api.ScheduleEntry, 0, len(status.Pending)),
		IntervalMinutes: status.IntervalMinutes,
	}
	for _, entry := range status.Pending {
		resp.Pending = append(resp.Pending, convertEntry(entry))
	}
	if status.NextDue != nil {
		due := convertEntry(status.NextDue)
		resp.NextDue = &due
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handlePublish(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.PublishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	overrides := publish.CaptionOverrides{Caption: req.Caption, Hashtags: req.Hashtags}
	record, err := s.daemon.scheduler.PublishNow(r.Context(), req.ContentID, req.Platform, overrides)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, convertHistory(record))
}

func (s *apiServer) handleInterval(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.writeJSON(w, http.StatusOK, api.IntervalResponse{Minutes: s.daemon.scheduler.Interval(r.Context())})
	case http.MethodPut:
		var req api.IntervalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := s.daemon.scheduler.SetInterval(r.Context(), req.Minutes); err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, api.IntervalResponse{Minutes: req.Minutes})
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *apiServer) handlePlatforms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, api.PlatformsResponse{
		Platforms:  s.daemon.registry.Platforms(),
		Configured: s.daemon.registry.Configured(),
	})
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status(r.Context())

	counts := map[string]int{}
	if stats, err := s.daemon.store.Stats(r.Context()); err == nil {
		for st, n := range stats {
			counts[string(st)] = n
		}
	}
	stages := make([]api.StageHealth, 0)
	for _, h := range s.daemon.StageHealth(r.Context()) {
		stages = append(stages, api.StageHealth{Name: h.Name, Ready: h.Ready, Detail: h.Detail})
	}

	s.writeJSON(w, http.StatusOK, api.DaemonStatus{
		Running:      status.Running,
		PID:          status.PID,
		DBPath:       status.DBPath,
		LockFilePath: status.LockFilePath,
		ItemCounts:   counts,
		Stages:       stages,
	})
}

func convertItem(item *content.Item) api.ContentItem {
	return api.ContentItem{
		ID:           item.ID,
		TopicName:    item.TopicName,
		Category:     item.Category,
		Description:  item.Description,
		ContentType:  string(item.ContentType),
		TemplateID:   item.TemplateID,
		Status:       string(item.Status),
		DiagramPath:  item.DiagramPath,
		ErrorMessage: item.ErrorMessage,
		CreatedAt:    item.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    item.UpdatedAt.Format(time.RFC3339),
	}
}

func convertEntry(entry *store.ScheduleEntry) api.ScheduleEntry {
	return api.ScheduleEntry{
		ID:             entry.ID,
		ContentID:      entry.ContentID,
		Platform:       entry.Platform,
		ScheduledAt:    entry.ScheduledAt,
		PublishedAt:    entry.PublishedAt,
		Status:         string(entry.Status),
		PlatformPostID: entry.PlatformPostID,
		ErrorMessage:   entry.ErrorMessage,
	}
}

func convertHistory(record *store.HistoryRecord) api.HistoryRecord {
	return api.HistoryRecord{
		ID:             record.ID,
		ContentID:      record.ContentID,
		Platform:       record.Platform,
		Status:         string(record.Status),
		PlatformPostID: record.PlatformPostID,
		ErrorMessage:   record.ErrorMessage,
		AttemptKey:     record.AttemptKey,
		CreatedAt:      record.CreatedAt.Format(time.RFC3339),
	}
}

// writeServiceError maps service marker errors onto HTTP status codes.
func (s *apiServer) writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrInvalidState):
		status = http.StatusConflict
	case errors.Is(err, services.ErrDuplicateSchedule):
		status = http.StatusConflict
	case errors.Is(err, services.ErrNotConfigured):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrEmptyPool):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrPublishFailure):
		status = http.StatusBadGateway
	}
	s.writeError(w, status, err.Error())
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("encode api response", logging.Error(err))
	}
}
