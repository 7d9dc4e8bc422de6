package server

import (
	_ "embed"
	"encoding/json"
	"html/template"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/reveal/pkg/errors"
	"github.com/matzehuels/reveal/pkg/graph"
	"github.com/matzehuels/reveal/pkg/render/svg"
	"github.com/matzehuels/reveal/pkg/store"
	"github.com/matzehuels/reveal/pkg/view"
)

//go:embed static/index.html
var pageHTML string

var pageTmpl = template.Must(template.New("page").Parse(pageHTML))

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := pageTmpl.Execute(w, struct {
		Title       string
		ContainerID string
	}{s.opts.Title, view.ContainerID})
	if err != nil {
		s.logger.Error("render page", "error", err)
	}
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(s.data)
}

func (s *Server) handleViewModel(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.model)
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	var f view.Frame
	if err := s.submit(r.Context(), func() { f = s.view.Frame() }); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	var l graph.Layout
	if err := s.submit(r.Context(), func() { l = s.view.Snapshot() }); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	var out []byte
	if err := s.submit(r.Context(), func() { out = svg.Render(s.view) }); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(out)
}

// handleRestart reheats the simulation to alpha 1.
func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	err := s.submit(r.Context(), func() {
		sim := s.view.Simulation()
		sim.SetAlpha(1)
		sim.Restart()
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	docHash := s.opts.DocumentHash
	if r.URL.Query().Get("all") == "true" {
		docHash = ""
	}
	snaps, err := s.store.List(r.Context(), docHash)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if snaps == nil {
		snaps = []*store.Snapshot{}
	}
	writeJSON(w, http.StatusOK, snaps)
}

type saveRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleSaveSnapshot(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil && err != io.EOF {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}

	var l graph.Layout
	if err := s.submit(r.Context(), func() { l = s.view.Snapshot() }); err != nil {
		s.writeError(w, r, err)
		return
	}
	snap := store.New(req.Name, s.opts.DocumentHash, l)
	if err := s.store.Save(r.Context(), snap); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("saved snapshot", "id", snap.ID, "name", snap.Name)
	writeJSON(w, http.StatusCreated, snap)
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRestoreSnapshot moves the nodes to a saved layout and pushes the
// result to every client. Nodes missing from the snapshot stay put.
func (s *Server) handleRestoreSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var restored int
	err = s.submit(r.Context(), func() {
		restored = s.view.Restore(snap.Layout)
		s.hub.broadcastFrame(s.view.Frame())
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"restored": restored})
}
