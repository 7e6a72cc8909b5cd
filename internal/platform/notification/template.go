// Package notification renders user-facing notifications from templates,
// persists them through a Saver and pushes them to the user's open
// WebSocket connections.
package notification

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Kind groups notifications for display.
type Kind string

const (
	KindAppointment  Kind = "appointment"
	KindPrescription Kind = "prescription"
	KindSystem       Kind = "system"
)

// Built-in template IDs.
const (
	AppointmentScheduled = "appointment-scheduled"
	AppointmentCompleted = "appointment-completed"
	PrescriptionIssued   = "prescription-issued"
)

// Template defines a reusable notification with {{key}} placeholders in
// its title and message.
type Template struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Kind    Kind   `json:"kind"`
	Link    string `json:"link"`
}

// Rendered is a template with its placeholders filled in.
type Rendered struct {
	Title   string
	Message string
	Kind    Kind
	Link    string
}

// TemplateEngine manages notification templates.
type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewTemplateEngine creates a TemplateEngine with the built-in templates
// registered.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{templates: make(map[string]*Template)}
	for _, t := range builtIn {
		e.RegisterTemplate(t)
	}
	return e
}

var builtIn = []Template{
	{
		ID:      AppointmentScheduled,
		Title:   "Appointment Scheduled",
		Message: "New appointment with Dr. {{doctor}} scheduled for {{date}}.",
		Kind:    KindAppointment,
		Link:    "/appointments",
	},
	{
		ID:      AppointmentCompleted,
		Title:   "Appointment Completed",
		Message: "Your appointment with Dr. {{doctor}} at {{clinic}} has been marked as completed.",
		Kind:    KindAppointment,
		Link:    "/history",
	},
	{
		ID:      PrescriptionIssued,
		Title:   "New Prescription",
		Message: "Dr. {{doctor}} has issued a new prescription for {{drug}}.",
		Kind:    KindPrescription,
		Link:    "/prescriptions",
	},
}

// RegisterTemplate adds or replaces a template.
func (e *TemplateEngine) RegisterTemplate(t Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[t.ID] = &t
}

// IDs lists the registered template IDs in sorted order.
func (e *TemplateEngine) IDs() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ids := make([]string, 0, len(e.templates))
	for id := range e.templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Render fills the template's placeholders from data. Placeholders with no
// matching key are left as-is.
func (e *TemplateEngine) Render(templateID string, data map[string]string) (Rendered, error) {
	e.mu.RLock()
	t, ok := e.templates[templateID]
	e.mu.RUnlock()
	if !ok {
		return Rendered{}, fmt.Errorf("template %q not found", templateID)
	}

	out := Rendered{Title: t.Title, Message: t.Message, Kind: t.Kind, Link: t.Link}
	for k, v := range data {
		placeholder := "{{" + k + "}}"
		out.Title = strings.ReplaceAll(out.Title, placeholder, v)
		out.Message = strings.ReplaceAll(out.Message, placeholder, v)
	}
	return out, nil
}
