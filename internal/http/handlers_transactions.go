package http

import (
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/Cherval/me-my-cal/internal/core"
	"github.com/Cherval/me-my-cal/internal/store"
)

// recordsChangedTrigger tells the page to refresh the summary, list and
// chart partials after a successful write.
const recordsChangedTrigger = `{"records:changed": {}}`

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		s.logger.ErrorContext(r.Context(), "Parse form error", "error", err, "path", r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`<div class="error">คำขอไม่ถูกต้อง</div>`))
		return
	}

	entry, err := parseEntry(r.Form)
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">ข้อมูลไม่ถูกต้อง: ` + template.HTMLEscapeString(validationMessage(err)) + `</div>`))
		return
	}

	if err := sess.Store.Add(r.Context(), entry); err != nil {
		if errors.Is(err, store.ErrUnauthenticated) {
			w.Header().Set("HX-Redirect", "/")
			http.Error(w, "session expired", http.StatusUnauthorized)
			return
		}
		s.logger.ErrorContext(r.Context(), "Add transaction failed", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<div class="error">บันทึกไม่สำเร็จ กรุณาลองใหม่</div>`))
		return
	}

	w.Header().Set("HX-Trigger", recordsChangedTrigger)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">บันทึกแล้ว: ` +
		template.HTMLEscapeString(entry.Category) + ` ` +
		template.HTMLEscapeString(core.FormatBaht(entry.Amount)) + `</div>`))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`<div class="error">คำขอไม่ถูกต้อง</div>`))
		return
	}

	id := strings.TrimSpace(r.Form.Get("id"))
	if id == "" {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`<div class="error">ไม่พบรายการ</div>`))
		return
	}

	if err := sess.Store.Delete(r.Context(), id); err != nil {
		s.logger.ErrorContext(r.Context(), "Delete transaction failed", "error", err, "id", id)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<div class="error">ลบไม่สำเร็จ กรุณาลองใหม่</div>`))
		return
	}

	w.Header().Set("HX-Trigger", recordsChangedTrigger)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">ลบรายการแล้ว</div>`))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`<div class="error">คำขอไม่ถูกต้อง</div>`))
		return
	}

	id := strings.TrimSpace(r.Form.Get("id"))
	if id == "" {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`<div class="error">ไม่พบรายการ</div>`))
		return
	}

	// id is routing, not data
	form := r.Form
	form.Del("id")

	patch, err := parsePatch(form)
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">ข้อมูลไม่ถูกต้อง: ` + template.HTMLEscapeString(validationMessage(err)) + `</div>`))
		return
	}
	if patch.IsZero() {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<div class="success">ไม่มีการเปลี่ยนแปลง</div>`))
		return
	}

	if err := sess.Store.Update(r.Context(), id, patch); err != nil {
		s.logger.ErrorContext(r.Context(), "Update transaction failed", "error", err, "id", id)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<div class="error">แก้ไขไม่สำเร็จ กรุณาลองใหม่</div>`))
		return
	}

	w.Header().Set("HX-Trigger", recordsChangedTrigger)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">แก้ไขรายการแล้ว</div>`))
}

// validationMessage maps the handful of known input errors onto short
// user-facing text.
func validationMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidAmount):
		return "จำนวนเงินไม่ถูกต้อง"
	case errors.Is(err, core.ErrInvalidType):
		return "ประเภทรายการไม่ถูกต้อง"
	default:
		return err.Error()
	}
}
