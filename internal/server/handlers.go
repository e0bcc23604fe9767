// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/apex/log"
	"github.com/go-chi/chi/v5"

	"github.com/hopeline/sitectl/internal/content"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("failed to write response")
	}
}

// writeError maps content errors onto statuses. Anything unrecognised is
// reported as a failure of the upstream backend, and its details stay in the
// log.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, content.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, content.ErrInvalidComment):
		status = http.StatusBadRequest
	case errors.Is(err, content.ErrReadOnly):
		status = http.StatusMethodNotAllowed
	}

	msg := err.Error()
	if status >= http.StatusInternalServerError {
		log.WithError(err).Error("backend request failed")
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorBody{Error: msg})
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"backend": s.loader.Backend().Type(),
	})
}

func (s *Server) listArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := s.loader.Articles(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if articles == nil {
		articles = []*content.Article{}
	}
	writeJSON(w, http.StatusOK, articles)
}

func (s *Server) getArticle(w http.ResponseWriter, r *http.Request) {
	article, err := s.loader.Article(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.loader.ArticleStats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) listComments(w http.ResponseWriter, r *http.Request) {
	comments, err := s.loader.Comments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if comments == nil {
		comments = []*content.Comment{}
	}
	writeJSON(w, http.StatusOK, comments)
}

func (s *Server) postComment(w http.ResponseWriter, r *http.Request) {
	var in content.NewComment
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid comment body: " + err.Error()})
		return
	}

	created, err := s.loader.PostComment(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) cacheInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.loader.Info())
}

func (s *Server) cacheClear(w http.ResponseWriter, _ *http.Request) {
	s.loader.Refresh()
	log.Info("cache cleared")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) invalidateArticles(w http.ResponseWriter, _ *http.Request) {
	s.loader.InvalidateArticles()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) invalidateStats(w http.ResponseWriter, r *http.Request) {
	s.loader.InvalidateArticleStats(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) invalidateComments(w http.ResponseWriter, r *http.Request) {
	s.loader.InvalidateComments(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}
