package entities

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// TurnoEventType represents the type of turno event
type TurnoEventType string

const (
	TurnoEventTypeCreado    TurnoEventType = "creado"
	TurnoEventTypeCancelado TurnoEventType = "cancelado"
)

// TurnoEvent represents a booking change that invalidates cached
// availability for its doctor and consultorio
type TurnoEvent struct {
	ID            string         `json:"id"`
	TurnoID       string         `json:"turno_id"`
	DoctorID      string         `json:"doctor_id"`
	ConsultorioID string         `json:"consultorio_id"`
	EventType     TurnoEventType `json:"event_type"`
	Fecha         string         `json:"fecha"`
	Timestamp     time.Time      `json:"timestamp"`
}

// NewTurnoEvent creates a new turno event
func NewTurnoEvent(turno *Turno, eventType TurnoEventType) *TurnoEvent {
	return &TurnoEvent{
		ID:            generateEventID(),
		TurnoID:       turno.ID,
		DoctorID:      turno.DoctorID,
		ConsultorioID: turno.ConsultorioID,
		EventType:     eventType,
		Fecha:         turno.Desde.UTC().Format("2006-01-02"),
		Timestamp:     time.Now(),
	}
}

// generateEventID generates a unique event ID
func generateEventID() string {
	return time.Now().Format("20060102150405") + "-" + randomString(8)
}

// randomString generates a random string of specified length
func randomString(length int) string {
	bytes := make([]byte, length/2+1)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp-based if crypto/rand fails
		return time.Now().Format("150405.000")
	}
	return hex.EncodeToString(bytes)[:length]
}
