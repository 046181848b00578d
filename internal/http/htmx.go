package http

import (
	"encoding/json"
	"html/template"
	"net/http"
)

// HTMXResponseBuilder accumulates HX-Trigger events and a body fragment,
// then writes them in the right order (headers before status before body).
type HTMXResponseBuilder struct {
	triggers   map[string]interface{}
	statusCode int
	body       []byte
}

func NewHTMXResponse() *HTMXResponseBuilder {
	return &HTMXResponseBuilder{
		triggers:   make(map[string]interface{}),
		statusCode: http.StatusOK,
	}
}

func (b *HTMXResponseBuilder) Status(code int) *HTMXResponseBuilder {
	b.statusCode = code
	return b
}

// Trigger adds a named client-side event to the HX-Trigger header.
func (b *HTMXResponseBuilder) Trigger(name string, data interface{}) *HTMXResponseBuilder {
	b.triggers[name] = data
	return b
}

// TriggerRecordChanged signals the dashboard and section partials to reload.
func (b *HTMXResponseBuilder) TriggerRecordChanged(action, id string) *HTMXResponseBuilder {
	return b.Trigger("record:changed", map[string]string{"action": action, "id": id})
}

// HTML sets a raw fragment body. Caller escapes interpolated values.
func (b *HTMXResponseBuilder) HTML(fragment string) *HTMXResponseBuilder {
	b.body = []byte(fragment)
	return b
}

// SuccessMessage sets a standard success fragment with the text escaped.
func (b *HTMXResponseBuilder) SuccessMessage(text string) *HTMXResponseBuilder {
	return b.HTML(`<div class="message success">` + template.HTMLEscapeString(text) + `</div>`)
}

// ErrorMessage sets a standard error fragment with the text escaped.
func (b *HTMXResponseBuilder) ErrorMessage(text string) *HTMXResponseBuilder {
	return b.HTML(`<div class="message error">` + template.HTMLEscapeString(text) + `</div>`)
}

func (b *HTMXResponseBuilder) Write(w http.ResponseWriter) {
	if len(b.triggers) > 0 {
		if payload, err := json.Marshal(b.triggers); err == nil {
			w.Header().Set("HX-Trigger", string(payload))
		}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}
