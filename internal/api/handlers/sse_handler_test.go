package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jmauas/consultorio-sub000/internal/api/handlers"
	"github.com/jmauas/consultorio-sub000/internal/domain/entities"
	"github.com/jmauas/consultorio-sub000/internal/domain/providers"
)

// MockEventBus for testing
type MockEventBus struct {
	mu          sync.RWMutex
	subscribers map[string][]chan *entities.TurnoEvent
	published   []*entities.TurnoEvent
}

func NewMockEventBus() *MockEventBus {
	return &MockEventBus{
		subscribers: make(map[string][]chan *entities.TurnoEvent),
		published:   make([]*entities.TurnoEvent, 0),
	}
}

func (m *MockEventBus) Publish(ctx context.Context, channel string, event *entities.TurnoEvent) error {
	m.mu.Lock()
	m.published = append(m.published, event)
	channels := append([]chan *entities.TurnoEvent(nil), m.subscribers[channel]...)
	m.mu.Unlock()

	for _, ch := range channels {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

func (m *MockEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.TurnoEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan *entities.TurnoEvent, 10)
	m.subscribers[channel] = append(m.subscribers[channel], ch)
	return ch, nil
}

func (m *MockEventBus) Unsubscribe(ctx context.Context, channel string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subscribers, channel)
	return nil
}

func (m *MockEventBus) Close() error {
	m.mu.Lock()
	subs := m.subscribers
	m.subscribers = make(map[string][]chan *entities.TurnoEvent)
	m.mu.Unlock()
	for _, channels := range subs {
		for _, ch := range channels {
			close(ch)
		}
	}
	return nil
}

func (m *MockEventBus) PublishedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.published)
}

func streamEvent(doctorID string, eventType entities.TurnoEventType) *entities.TurnoEvent {
	desde := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	return entities.NewTurnoEvent(&entities.Turno{
		ID:            "turno-1",
		DoctorID:      doctorID,
		ConsultorioID: "cons-1",
		Desde:         desde,
		Hasta:         desde.Add(30 * time.Minute),
		Status:        entities.TurnoStatusConfirmado,
	}, eventType)
}

func TestSSEHandler_StreamDoctorUpdates(t *testing.T) {
	eventBus := NewMockEventBus()
	handler := handlers.NewSSEHandler(eventBus)

	t.Run("should establish SSE connection", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		req := httptest.NewRequest("GET", "/api/stream/agenda/doc-1", nil)
		req.SetPathValue("doctorId", "doc-1")
		req = req.WithContext(ctx)
		w := httptest.NewRecorder()

		done := make(chan struct{})
		go func() {
			handler.StreamDoctorUpdates(w, req)
			close(done)
		}()

		// Wait a bit for connection to establish
		time.Sleep(100 * time.Millisecond)

		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("handler did not exit after cancel")
		}

		result := w.Result()
		if result.Header.Get("Content-Type") != "text/event-stream" {
			t.Errorf("Expected Content-Type text/event-stream, got %s", result.Header.Get("Content-Type"))
		}
		if result.Header.Get("Cache-Control") != "no-cache" {
			t.Errorf("Expected Cache-Control no-cache, got %s", result.Header.Get("Cache-Control"))
		}

	})

	t.Run("should receive turno events", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		req := httptest.NewRequest("GET", "/api/stream/agenda/doc-2", nil)
		req.SetPathValue("doctorId", "doc-2")
		req = req.WithContext(ctx)
		w := httptest.NewRecorder()

		done := make(chan struct{})
		go func() {
			handler.StreamDoctorUpdates(w, req)
			close(done)
		}()

		// Wait for connection
		time.Sleep(100 * time.Millisecond)

		// Publish event
		event := streamEvent("doc-2", entities.TurnoEventTypeCreado)

		channel := providers.GetDoctorChannel("doc-2")
		eventBus.Publish(context.Background(), channel, event)

		// Wait for event to be sent
		time.Sleep(200 * time.Millisecond)

		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("handler did not exit after cancel")
		}

		if eventBus.PublishedCount() == 0 {
			t.Error("Expected event to be published")
		}
	})

	t.Run("should return error for missing doctor ID", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/stream/agenda/", nil)
		w := httptest.NewRecorder()

		handler.StreamDoctorUpdates(w, req)

		result := w.Result()
		if result.StatusCode != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", result.StatusCode)
		}
	})
}

func TestSSEHandler_StreamTurnoUpdates(t *testing.T) {
	eventBus := NewMockEventBus()
	handler := handlers.NewSSEHandler(eventBus)

	t.Run("should establish global SSE connection", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		req := httptest.NewRequest("GET", "/api/stream/turnos", nil)
		req = req.WithContext(ctx)
		w := httptest.NewRecorder()

		done := make(chan struct{})
		go func() {
			handler.StreamTurnoUpdates(w, req)
			close(done)
		}()
		time.Sleep(100 * time.Millisecond)

		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("handler did not exit after cancel")
		}

		result := w.Result()
		if result.Header.Get("Content-Type") != "text/event-stream" {
			t.Errorf("Expected Content-Type text/event-stream, got %s", result.Header.Get("Content-Type"))
		}
	})

	t.Run("should receive events from every doctor", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		req := httptest.NewRequest("GET", "/api/stream/turnos", nil)
		req = req.WithContext(ctx)
		w := httptest.NewRecorder()

		done := make(chan struct{})
		go func() {
			handler.StreamTurnoUpdates(w, req)
			close(done)
		}()
		time.Sleep(100 * time.Millisecond)

		eventBus.Publish(context.Background(), providers.EventChannelTurnoUpdates, streamEvent("doc-1", entities.TurnoEventTypeCreado))
		eventBus.Publish(context.Background(), providers.EventChannelTurnoUpdates, streamEvent("doc-2", entities.TurnoEventTypeCancelado))

		time.Sleep(200 * time.Millisecond)

		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("handler did not exit after cancel")
		}

		if eventBus.PublishedCount() != 2 {
			t.Errorf("Expected 2 events published, got %d", eventBus.PublishedCount())
		}
	})
}

func TestSSEHandler_ClientCount(t *testing.T) {
	eventBus := NewMockEventBus()
	handler := handlers.NewSSEHandler(eventBus)

	// Initial count should be 0
	if count := handler.GetClientCount(); count != 0 {
		t.Errorf("Expected 0 clients, got %d", count)
	}

	// Start a connection
	req := httptest.NewRequest("GET", "/api/stream/agenda/doc-1", nil)
	req.SetPathValue("doctorId", "doc-1")
	w := httptest.NewRecorder()

	ctx, cancel := context.WithCancel(context.Background())
	req = req.WithContext(ctx)

	go handler.StreamDoctorUpdates(w, req)
	time.Sleep(100 * time.Millisecond)

	// Count should be 1
	if count := handler.GetClientCount(); count != 1 {
		t.Errorf("Expected 1 client, got %d", count)
	}

	// Cancel connection
	cancel()
	time.Sleep(100 * time.Millisecond)

	// Count should be 0 again
	if count := handler.GetClientCount(); count != 0 {
		t.Errorf("Expected 0 clients after disconnect, got %d", count)
	}
}
