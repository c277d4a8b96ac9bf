package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/Sternrassler/artwork-table/pkg/artwork"
	"github.com/Sternrassler/artwork-table/pkg/viewer"
)

type tablePage struct {
	ViewID   string
	State    viewer.State
	Links    []int
	LastPage int
}

type stateResponse struct {
	ViewID string `json:"view_id"`
	viewer.State
	SelectedRows []artwork.Artwork `json:"selected_rows"`
}

// handleMount creates a new view, loads its first page and redirects to it.
// A failed first load still mounts the view; it shows an empty table.
func (s *Server) handleMount(w http.ResponseWriter, r *http.Request) {
	p := viewer.New(s.fetcher, viewer.Config{PageSize: s.opts.PageSize})
	loaded := p.Mount(r.Context())
	id := s.views.Add(p)

	s.logger.Info().
		Str("view_id", id).
		Bool("loaded", loaded).
		Int("live", s.views.Len()).
		Msg("View mounted")

	http.Redirect(w, r, viewPath(id), http.StatusSeeOther)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	id, p, ok := s.lookup(w, r)
	if !ok {
		return
	}

	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid page %q", raw), http.StatusBadRequest)
			return
		}
		if err := p.ChangePage(r.Context(), page); err != nil {
			if errors.Is(err, viewer.ErrInvalidPage) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			s.logger.Error().Err(err).Str("view_id", id).Int("page", page).Msg("Page change failed")
			http.Error(w, "page change failed", http.StatusInternalServerError)
			return
		}
	}

	state := p.State()
	s.render(w, http.StatusOK, "table.html", tablePage{
		ViewID:   id,
		State:    state,
		Links:    state.PageLinks(PaginatorLinks),
		LastPage: state.TotalPages,
	})
}

// handleSelection applies the checkboxes of one page. The form carries the
// page it was rendered for; a form from a page the view has since left is
// ignored.
func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	id, p, ok := s.lookup(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form", http.StatusBadRequest)
		return
	}

	page, err := strconv.Atoi(r.PostForm.Get("page"))
	if err != nil {
		http.Error(w, "invalid page", http.StatusBadRequest)
		return
	}

	var applied bool
	if r.PostForm.Get("all") == "1" {
		_, applied = p.SelectPage(page)
	} else {
		ids, err := parseIDs(r.PostForm["id"])
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_, applied = p.SelectOnPage(page, ids)
	}

	if !applied {
		s.logger.Warn().Str("view_id", id).Int("page", page).Msg("Selection form not applied")
	}

	http.Redirect(w, r, viewPath(id), http.StatusSeeOther)
}

// handleBulk selects the first N rows of the listing. The selection keeps
// running if the client goes away.
func (s *Server) handleBulk(w http.ResponseWriter, r *http.Request) {
	id, p, ok := s.lookup(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form", http.StatusBadRequest)
		return
	}

	if !p.BulkSelect(context.WithoutCancel(r.Context()), r.PostForm.Get("rows")) {
		s.logger.Debug().Str("view_id", id).Msg("Bulk selection ignored")
	}

	http.Redirect(w, r, viewPath(id), http.StatusSeeOther)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	id, p, ok := s.lookup(w, r)
	if !ok {
		return
	}

	resp := stateResponse{
		ViewID:       id,
		State:        p.State(),
		SelectedRows: p.Selected(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error().Err(err).Str("view_id", id).Msg("Failed to encode state")
	}
}

func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.views.Remove(id) {
		s.handleNotFound(w, r)
		return
	}

	s.logger.Info().Str("view_id", id).Int("live", s.views.Len()).Msg("View closed")
	s.render(w, http.StatusOK, "closed.html", nil)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusNotFound, "not_found.html", nil)
}

// lookup resolves the view named in the URL, answering 404 when it is gone.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (string, *viewer.Presenter, bool) {
	id := chi.URLParam(r, "id")
	p, err := s.views.Get(id)
	if err != nil {
		s.handleNotFound(w, r)
		return id, nil, false
	}
	return id, p, true
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error().Err(err).Str("template", name).Msg("Template rendering failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Debug().Err(err).Msg("Failed to write response")
	}
}

func parseIDs(raw []string) ([]int, error) {
	ids := make([]int, 0, len(raw))
	for _, v := range raw {
		id, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", v)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func viewPath(id string) string {
	return "/views/" + id
}
