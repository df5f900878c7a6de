package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"path"

	"github.com/mahasiswa-app/mhs/internal/controller"
	"github.com/mahasiswa-app/mhs/internal/export"
	"github.com/mahasiswa-app/mhs/internal/types"
)

//go:embed templates/page.html
var templates embed.FS

var pageTemplate = template.Must(template.New("page.html").Funcs(template.FuncMap{
	"confirmDelete": controller.ConfirmDeleteMessage,
}).ParseFS(templates, "templates/page.html"))

// handleIndex renders the page. The first visit of a session, and any visit
// with ?refresh=1, loads the table first.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if !sess.loaded || r.URL.Query().Get("refresh") == "1" {
		sess.loaded = true
		_ = sess.ctrl.FetchData(r.Context(), types.Query{})
	}

	var buf bytes.Buffer
	if err := s.page.Execute(&buf, sess.view.snapshot(sess.origin)); err != nil {
		s.logger.Printf("Failed to render page: %v", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

// act runs one controller action for the caller's session and redirects
// back to the page. Errors the controller has not shown yet become alerts.
func (s *Server) act(w http.ResponseWriter, r *http.Request, fn func(context.Context, *session) error) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	sess := s.session(w, r)

	sess.mu.Lock()
	if err := fn(r.Context(), sess); err != nil && !errors.Is(err, controller.ErrReported) {
		s.logger.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		sess.view.Alert(err.Error())
	}
	sess.mu.Unlock()

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(ctx context.Context, sess *session) error {
		sess.view.controls = readControls(r, sess.view.controls)
		return sess.ctrl.Search(ctx)
	})
}

func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(ctx context.Context, sess *session) error {
		sess.view.controls = readControls(r, sess.view.controls)
		return sess.ctrl.Sort(ctx)
	})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(ctx context.Context, sess *session) error {
		sess.view.SetFormValues(controller.Form{
			NIM:     r.PostFormValue("nim"),
			Nama:    r.PostFormValue("nama"),
			Jurusan: r.PostFormValue("jurusan"),
			IPK:     r.PostFormValue("ipk"),
		})
		return sess.ctrl.Save(ctx)
	})
}

// handleRowAction is the target of the table's delegated click listener.
func (s *Server) handleRowAction(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(ctx context.Context, sess *session) error {
		a, err := controller.ParseAction(r.PostFormValue("action"), r.PostFormValue("nim"))
		if err != nil {
			return err
		}
		sess.view.answer = r.PostFormValue("confirmed") == "true"
		return sess.ctrl.Dispatch(ctx, a)
	})
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(ctx context.Context, sess *session) error {
		sess.ctrl.ResetForm()
		return nil
	})
}

// handleExport downloads the rows currently shown to the session.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.FormatFromPath(r.URL.Path)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	sess := s.session(w, r)

	sess.mu.Lock()
	records := sess.ctrl.Records()
	sess.mu.Unlock()

	var buf bytes.Buffer
	if err := export.Write(&buf, format, records); err != nil {
		s.logger.Printf("Export failed: %v", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	contentType := "text/csv; charset=utf-8"
	if format == export.FormatXLSX {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="mahasiswa`+path.Ext(r.URL.Path)+`"`)
	_, _ = w.Write(buf.Bytes())
}

// readControls takes the posted control values, keeping the current ones
// for anything missing or unknown.
func readControls(r *http.Request, cur controller.Controls) controller.Controls {
	if v, ok := r.PostForm["search"]; ok && len(v) > 0 {
		cur.Search = v[0]
	}
	cur.SearchMethod = pick(r.PostFormValue("search_method"), types.SearchMethods, cur.SearchMethod)
	cur.SortBy = pick(r.PostFormValue("sort_by"), types.SortKeys, cur.SortBy)
	cur.Order = pick(r.PostFormValue("order"), types.Orders, cur.Order)
	cur.Algo = pick(r.PostFormValue("algo"), types.SortAlgos, cur.Algo)
	return cur
}

func pick[T ~string](raw string, allowed []T, fallback T) T {
	for _, a := range allowed {
		if string(a) == raw {
			return a
		}
	}
	return fallback
}
