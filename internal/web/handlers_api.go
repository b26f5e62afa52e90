package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/changelog/internal/client"
	"github.com/JonMunkholm/changelog/internal/logging"
	"github.com/JonMunkholm/changelog/internal/store"
)

type tableInfo struct {
	Key           string `json:"key"`
	Label         string `json:"label"`
	DataPath      string `json:"data_path"`
	IncludeExport bool   `json:"include_export"`
	Page          int    `json:"page"`
	PageSize      int    `json:"page_size"`
	Count         int    `json:"count"`
}

// handleListTables returns the mounted tables and their paging state.
func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	defs := s.tables.Definitions()
	out := make([]tableInfo, 0, len(defs))
	for _, def := range defs {
		t, _, _ := s.tables.Table(def.Key)
		out = append(out, tableInfo{
			Key:           def.Key,
			Label:         def.Label,
			DataPath:      def.DataPath,
			IncludeExport: def.IncludeExport,
			Page:          t.Page(),
			PageSize:      t.PageSize(),
			Count:         t.Count(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.notifier.List())
}

// handleDataset serves one page of a dataset in the {data, count} shape the
// tables consume.
func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	dataset := chi.URLParam(r, "dataset")

	p, err := store.ParsePage(r.URL.Query(), s.cfg.Database.MaxLimit)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	resp, err := s.store.Query(r.Context(), dataset, p)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Debug("dataset served",
		"dataset", dataset,
		"offset", p.Offset,
		"limit", p.Limit,
		"rows", len(resp.Data),
	)
	writeJSON(w, http.StatusOK, resp)
}

type healthResponse struct {
	Status   string                `json:"status"`
	Tables   int                   `json:"tables"`
	Datasets []string              `json:"datasets,omitempty"`
	Fetch    *client.LimiterStatus `json:"fetch,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Tables: s.tables.Len()}
	if s.store != nil {
		resp.Datasets = s.store.Datasets()
	}
	if s.limiter != nil {
		st := s.limiter.Status()
		resp.Fetch = &st
	}
	writeJSON(w, http.StatusOK, resp)
}
