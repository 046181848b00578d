package http

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"aptcost/internal/core"
)

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "path", r.URL.Path)
		NewHTMXResponse().
			Status(http.StatusBadRequest).
			ErrorMessage("Invalid request format").
			Write(w)
		return
	}

	in := recordInputFromForm(r.Form)
	if fieldErrors := in.Validate(); len(fieldErrors) > 0 {
		writeValidationErrors(w, fieldErrors)
		return
	}

	id, err := s.store.Create(r.Context(), in.Fields())
	if err != nil {
		slog.ErrorContext(r.Context(), "Expense create failed",
			"error", err,
			"description", in.Description)
		NewHTMXResponse().
			Status(http.StatusInternalServerError).
			ErrorMessage("Could not save the expense").
			Write(w)
		return
	}

	s.invalidateSnapshot()
	recordMutations.WithLabelValues("create").Inc()
	slog.InfoContext(r.Context(), "Expense created", "record_id", id)

	NewHTMXResponse().
		TriggerRecordChanged("created", id).
		SuccessMessage("Saved " + in.Description + " for " + formatRecordAmount(in.Amount)).
		Write(w)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "path", r.URL.Path)
		NewHTMXResponse().
			Status(http.StatusBadRequest).
			ErrorMessage("Invalid request format").
			Write(w)
		return
	}

	in := recordInputFromForm(r.Form)
	if fieldErrors := in.Validate(); len(fieldErrors) > 0 {
		writeValidationErrors(w, fieldErrors)
		return
	}

	if err := s.store.Update(r.Context(), id, in.Fields()); err != nil {
		if errors.Is(err, core.ErrRecordNotFound) {
			NewHTMXResponse().
				Status(http.StatusNotFound).
				ErrorMessage("Expense not found").
				Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Expense update failed", "error", err, "record_id", id)
		NewHTMXResponse().
			Status(http.StatusInternalServerError).
			ErrorMessage("Could not update the expense").
			Write(w)
		return
	}

	s.invalidateSnapshot()
	recordMutations.WithLabelValues("update").Inc()
	slog.InfoContext(r.Context(), "Expense updated", "record_id", id)

	NewHTMXResponse().
		TriggerRecordChanged("updated", id).
		SuccessMessage("Updated " + in.Description).
		Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, core.ErrRecordNotFound) {
			NewHTMXResponse().
				Status(http.StatusNotFound).
				ErrorMessage("Expense not found").
				Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Expense delete failed", "error", err, "record_id", id)
		NewHTMXResponse().
			Status(http.StatusInternalServerError).
			ErrorMessage("Could not delete the expense").
			Write(w)
		return
	}

	s.invalidateSnapshot()
	recordMutations.WithLabelValues("delete").Inc()
	slog.InfoContext(r.Context(), "Expense deleted", "record_id", id)

	NewHTMXResponse().
		TriggerRecordChanged("deleted", id).
		SuccessMessage("Expense deleted").
		Write(w)
}

// writeValidationErrors renders field errors as a fragment the form swaps
// into its message area. Field order is stable for test and display.
func writeValidationErrors(w http.ResponseWriter, fieldErrors map[string]string) {
	fields := make([]string, 0, len(fieldErrors))
	for field := range fieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var b strings.Builder
	b.WriteString(`<div class="message error"><ul>`)
	for _, field := range fields {
		b.WriteString(`<li data-field="` + template.HTMLEscapeString(field) + `">`)
		b.WriteString(template.HTMLEscapeString(fieldErrors[field]))
		b.WriteString(`</li>`)
	}
	b.WriteString(`</ul></div>`)

	NewHTMXResponse().
		Status(http.StatusUnprocessableEntity).
		HTML(b.String()).
		Write(w)
}
