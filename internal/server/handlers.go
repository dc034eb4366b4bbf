package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/hyperjump/kotae/internal/ingest"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/storage"
	"go.uber.org/zap"
)

type registerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Name == "" || req.Email == "" || !strings.Contains(req.Email, "@") {
		s.respondError(w, http.StatusBadRequest, "name and a valid email are required")
		return
	}
	user, err := s.storage.CreateUser(r.Context(), req.Name, req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrEmailTaken) {
			s.respondError(w, http.StatusConflict, "email already registered")
			return
		}
		s.logger.Error("register failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	s.logger.Info("registered user", zap.String("email", user.Email), zap.Int64("id", user.ID))
	s.respondJSON(w, http.StatusCreated, map[string]any{"id": user.ID, "name": user.Name, "email": user.Email})
}

type chatRequest struct {
	Email string `json:"email"`
	Query string `json:"query"`
	// Message is accepted as an alias for Query.
	Message string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		query = strings.TrimSpace(req.Message)
	}
	if query == "" {
		s.respondError(w, http.StatusBadRequest, "query is required")
		return
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))
	user, err := s.storage.GetUserByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			s.respondError(w, http.StatusForbidden, "please register before chatting")
			return
		}
		s.logger.Error("user lookup failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "lookup failed")
		return
	}

	history, err := s.storage.History(r.Context(), user.ID, s.config.Retrieval.HistoryLimit)
	if err != nil {
		s.logger.Warn("failed to load history, continuing without it", zap.Error(err))
		history = nil
	}

	contextBlocks := s.retriever.Retrieve(r.Context(), query)
	answer, err := s.answerer.Answer(r.Context(), query, contextBlocks, history)
	if err != nil {
		// The answerer degrades internally; an error here is unexpected.
		s.logger.Error("answer failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to generate answer")
		return
	}

	if err := s.storage.AppendMessage(r.Context(), user.ID, models.Message{Role: models.RoleUser, Content: query}); err != nil {
		s.logger.Warn("failed to persist user message", zap.Error(err))
	}
	if err := s.storage.AppendMessage(r.Context(), user.ID, models.Message{Role: models.RoleAssistant, Content: answer}); err != nil {
		s.logger.Warn("failed to persist assistant message", zap.Error(err))
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"response": answer})
}

type ingestRequest struct {
	Force bool `json:"force"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	s.logger.Info("ingest request", zap.Bool("force", req.Force))
	chunks, err := s.ingestor.TryRun(r.Context(), req.Force)
	if err != nil {
		if errors.Is(err, ingest.ErrBusy) {
			s.respondError(w, http.StatusConflict, "ingestion already running")
			return
		}
		s.logger.Error("ingestion failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"status": "ok", "chunks": chunks})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.Count(r.Context())
	if err != nil {
		s.logger.Error("status: count entries failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"config": map[string]any{
			"collection":           s.config.VectorDB.Collection,
			"embedding_provider":   s.config.Embedding.Provider,
			"embedding_dimensions": s.config.Embedding.Dimensions,
			"chunk_size":           s.config.Chunking.ChunkSize,
			"chunk_overlap":        s.config.Chunking.ChunkOverlap,
			"n_results":            s.config.Retrieval.NResults,
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
