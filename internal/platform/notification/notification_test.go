package notification

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestTemplateEngine_BuiltInTemplates(t *testing.T) {
	eng := NewTemplateEngine()

	tests := []struct {
		id          string
		data        map[string]string
		wantTitle   string
		wantMessage string
		wantLink    string
	}{
		{
			AppointmentScheduled,
			map[string]string{"doctor": "Ross", "date": "2026-03-01 09:30"},
			"Appointment Scheduled",
			"New appointment with Dr. Ross scheduled for 2026-03-01 09:30.",
			"/appointments",
		},
		{
			AppointmentCompleted,
			map[string]string{"doctor": "Ross", "clinic": "City Clinic"},
			"Appointment Completed",
			"Your appointment with Dr. Ross at City Clinic has been marked as completed.",
			"/history",
		},
		{
			PrescriptionIssued,
			map[string]string{"doctor": "Grey", "drug": "Metformin"},
			"New Prescription",
			"Dr. Grey has issued a new prescription for Metformin.",
			"/prescriptions",
		},
	}
	for _, tt := range tests {
		r, err := eng.Render(tt.id, tt.data)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.id, err)
		}
		if r.Title != tt.wantTitle {
			t.Errorf("%s: title = %q, want %q", tt.id, r.Title, tt.wantTitle)
		}
		if r.Message != tt.wantMessage {
			t.Errorf("%s: message = %q, want %q", tt.id, r.Message, tt.wantMessage)
		}
		if r.Link != tt.wantLink {
			t.Errorf("%s: link = %q, want %q", tt.id, r.Link, tt.wantLink)
		}
	}
}

func TestTemplateEngine_RenderMissing(t *testing.T) {
	if _, err := NewTemplateEngine().Render("nonexistent", nil); err == nil {
		t.Fatal("expected error for missing template, got nil")
	}
}

func TestTemplateEngine_UnfilledPlaceholderKept(t *testing.T) {
	r, err := NewTemplateEngine().Render(PrescriptionIssued, map[string]string{"doctor": "Grey"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(r.Message, "{{drug}}") {
		t.Errorf("expected placeholder to remain, got %q", r.Message)
	}
}

func TestTemplateEngine_RegisterAndIDs(t *testing.T) {
	eng := NewTemplateEngine()
	eng.RegisterTemplate(Template{ID: "lab-ready", Title: "Lab Result Ready", Message: "Your {{test}} results are in.", Kind: KindSystem})

	r, err := eng.Render("lab-ready", map[string]string{"test": "CBC"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Message != "Your CBC results are in." {
		t.Errorf("unexpected message %q", r.Message)
	}
	if got := eng.IDs(); len(got) != 4 || got[0] != AppointmentCompleted {
		t.Errorf("unexpected ids %v", got)
	}
}

type memSaver struct {
	saved []Rendered
	err   error
}

func (m *memSaver) SaveNotification(_ context.Context, userID string, r Rendered) (Payload, error) {
	if m.err != nil {
		return Payload{}, m.err
	}
	m.saved = append(m.saved, r)
	return Payload{ID: "n-1", Title: r.Title, Message: r.Message, Type: r.Kind, Link: r.Link, CreatedAt: time.Unix(0, 0).UTC()}, nil
}

type recordingPublisher struct {
	userID string
	frame  any
	err    error
}

func (p *recordingPublisher) PublishToUser(_ context.Context, userID string, frame any) error {
	p.userID, p.frame = userID, frame
	return p.err
}

func TestSender_NotifyStoresAndPushes(t *testing.T) {
	store := &memSaver{}
	pub := &recordingPublisher{}
	s := NewSender(NewTemplateEngine(), store, pub, zerolog.Nop())

	p, err := s.Notify(context.Background(), "user-1", PrescriptionIssued, map[string]string{"doctor": "Grey", "drug": "Metformin"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != "n-1" || len(store.saved) != 1 {
		t.Fatalf("expected notification to be stored, got %+v", p)
	}
	if pub.userID != "user-1" {
		t.Fatalf("expected push to user-1, got %q", pub.userID)
	}

	raw, err := json.Marshal(pub.frame)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var frame struct {
		Type         string         `json:"type"`
		Notification map[string]any `json:"notification"`
	}
	if err := json.Unmarshal(raw, &frame); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if frame.Type != "GENERAL_NOTIFICATION" {
		t.Errorf("type = %q", frame.Type)
	}
	for _, key := range []string{"id", "title", "message", "type", "is_read", "created_at", "link"} {
		if _, ok := frame.Notification[key]; !ok {
			t.Errorf("frame missing %q", key)
		}
	}
}

func TestSender_PushFailureIsNotFatal(t *testing.T) {
	s := NewSender(NewTemplateEngine(), &memSaver{}, &recordingPublisher{err: errors.New("closed")}, zerolog.Nop())
	if _, err := s.Notify(context.Background(), "u", AppointmentCompleted, map[string]string{"doctor": "A", "clinic": "B"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSender_StoreFailure(t *testing.T) {
	pub := &recordingPublisher{}
	s := NewSender(NewTemplateEngine(), &memSaver{err: errors.New("db down")}, pub, zerolog.Nop())
	if _, err := s.Notify(context.Background(), "u", AppointmentScheduled, nil); err == nil {
		t.Fatal("expected error")
	}
	if pub.frame != nil {
		t.Fatal("nothing should be pushed when the store fails")
	}
}

func TestSender_NilPublisher(t *testing.T) {
	s := NewSender(NewTemplateEngine(), &memSaver{}, nil, zerolog.Nop())
	if _, err := s.Notify(context.Background(), "u", AppointmentScheduled, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSender_UnknownTemplate(t *testing.T) {
	store := &memSaver{}
	s := NewSender(NewTemplateEngine(), store, nil, zerolog.Nop())
	if _, err := s.Notify(context.Background(), "u", "nope", nil); err == nil {
		t.Fatal("expected error")
	}
	if len(store.saved) != 0 {
		t.Fatal("nothing should be stored")
	}
}
