package http

import (
	"encoding/json"
	"html/template"
	"net/http"
	"strconv"

	"expns/internal/core"
)

// HTMXResponseBuilder provides a fluent API for building HTMX responses.
// It encapsulates the construction of HX-Trigger headers and response bodies.
type HTMXResponseBuilder struct {
	triggers   map[string]any
	statusCode int
	body       []byte
	headers    map[string]string
}

// NewHTMXResponse creates a new response builder with default 200 status.
func NewHTMXResponse() *HTMXResponseBuilder {
	return &HTMXResponseBuilder{
		triggers:   make(map[string]any),
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *HTMXResponseBuilder) Status(code int) *HTMXResponseBuilder {
	b.statusCode = code
	return b
}

// Trigger adds a named trigger with optional data to the HX-Trigger header.
func (b *HTMXResponseBuilder) Trigger(name string, data any) *HTMXResponseBuilder {
	b.triggers[name] = data
	return b
}

// TriggerTransactionAdded tells the page to refresh its title and chart.
func (b *HTMXResponseBuilder) TriggerTransactionAdded(count int) *HTMXResponseBuilder {
	return b.Trigger("transaction:added", map[string]any{
		"count":        count,
		"window_title": core.WindowTitle(count),
		"status":       core.StatusMessage(count),
	})
}

// TriggerFormReset adds the form:reset trigger.
func (b *HTMXResponseBuilder) TriggerFormReset() *HTMXResponseBuilder {
	return b.Trigger("form:reset", struct{}{})
}

// TriggerNotice mirrors a notice into the show-notification trigger.
func (b *HTMXResponseBuilder) TriggerNotice(n core.Notice) *HTMXResponseBuilder {
	duration := 3000
	if n.Level != core.LevelInfo {
		duration = 5000
	}
	return b.Trigger("show-notification", map[string]any{
		"type":     string(n.Level),
		"title":    n.Title,
		"message":  n.Message,
		"duration": duration,
	})
}

// Count sets the X-Transaction-Count header.
func (b *HTMXResponseBuilder) Count(n int) *HTMXResponseBuilder {
	return b.Header(TransactionCountHeader, strconv.Itoa(n))
}

// Header adds a custom header to the response.
func (b *HTMXResponseBuilder) Header(name, value string) *HTMXResponseBuilder {
	b.headers[name] = value
	return b
}

// BodyHTML sets the response body as HTML content.
func (b *HTMXResponseBuilder) BodyHTML(html []byte) *HTMXResponseBuilder {
	b.headers["Content-Type"] = "text/html; charset=utf-8"
	b.body = html
	return b
}

// BodyJSON sets the response body to v encoded as JSON.
func (b *HTMXResponseBuilder) BodyJSON(v any) *HTMXResponseBuilder {
	body, err := json.Marshal(v)
	if err != nil {
		b.statusCode = http.StatusInternalServerError
		body = []byte(`{"error":"encoding failed"}`)
	}
	b.headers["Content-Type"] = "application/json"
	b.body = append(body, '\n')
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *HTMXResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}

	if len(b.triggers) > 0 {
		triggerJSON, err := json.Marshal(b.triggers)
		if err == nil {
			w.Header().Set("HX-Trigger", string(triggerJSON))
		}
	}

	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// ErrorResponse creates a standard error response with HTML formatting.
// The message is HTML-escaped for safety.
func ErrorResponse(statusCode int, message string) *HTMXResponseBuilder {
	escapedMsg := template.HTMLEscapeString(message)
	return NewHTMXResponse().
		Status(statusCode).
		BodyHTML([]byte(`<div class="error">` + escapedMsg + `</div>`))
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}
