package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/jmauas/consultorio-sub000/internal/domain/entities"
	"github.com/jmauas/consultorio-sub000/internal/domain/providers"
	"github.com/jmauas/consultorio-sub000/internal/domain/repositories"
	apperrors "github.com/jmauas/consultorio-sub000/pkg/errors"
)

// TurnoService handles turno booking logic
type TurnoService struct {
	turnos        repositories.TurnoRepository
	doctores      repositories.DoctorRepository
	tipos         repositories.TipoDeTurnoRepository
	eventBus      providers.EventBus
	notifications *NotificationService
	logger        zerolog.Logger
}

// NewTurnoService creates a new turno service. The event bus is optional;
// without it bookings are still saved but no invalidation event is sent.
func NewTurnoService(
	turnos repositories.TurnoRepository,
	doctores repositories.DoctorRepository,
	tipos repositories.TipoDeTurnoRepository,
	eventBus providers.EventBus,
	logger zerolog.Logger,
) *TurnoService {
	return &TurnoService{
		turnos:   turnos,
		doctores: doctores,
		tipos:    tipos,
		eventBus: eventBus,
		logger:   logger,
	}
}

// SetNotificationService enables WhatsApp confirmations for bookings
// and cancellations
func (s *TurnoService) SetNotificationService(notifications *NotificationService) {
	s.notifications = notifications
}

// Reservar books a turno after checking the slot is still free
func (s *TurnoService) Reservar(ctx context.Context, turno *entities.Turno) error {
	if turno.DoctorID == "" || turno.ConsultorioID == "" {
		return apperrors.NewValidationError("doctor and consultorio are required")
	}
	if turno.PacienteNombre == "" {
		return apperrors.NewValidationError("patient name is required")
	}
	if !turno.Hasta.After(turno.Desde) {
		return apperrors.NewValidationError("turno end must be after its start")
	}
	if turno.Desde.Before(time.Now()) {
		return apperrors.NewValidationError("cannot book a turno in the past")
	}

	doctor, err := s.doctores.GetByID(ctx, turno.DoctorID)
	if err != nil {
		return err
	}

	var tipo *entities.TipoDeTurno
	if turno.TipoDeTurnoID != "" {
		tipo, err = s.tipos.GetByID(ctx, turno.TipoDeTurnoID)
		if err != nil {
			return err
		}
		if turno.Duracion <= 0 {
			turno.Duracion = tipo.Duracion
		}
	}
	if turno.Duracion <= 0 {
		turno.Duracion = turno.DuracionMinutos()
	}

	// Re-check occupancy right before writing. Two concurrent bookings
	// can still race here; the office tolerates the rare double booking
	// and resolves it by phone.
	ocupados, err := s.turnos.ListByRange(ctx, repositories.TurnoFilter{
		DoctorIDs:      []string{turno.DoctorID},
		ConsultorioIDs: []string{turno.ConsultorioID},
		From:           turno.Desde,
		To:             turno.Hasta,
	})
	if err != nil {
		return err
	}
	for _, existente := range ocupados {
		if existente.Status.Ocupa() {
			return apperrors.NewConflictError("the requested slot is no longer available")
		}
	}

	if turno.ID == "" {
		turno.ID = uuid.New().String()
	}
	if turno.Status == "" {
		turno.Status = entities.TurnoStatusConfirmado
	}
	turno.CreatedAt = time.Now()
	turno.UpdatedAt = time.Now()

	if err := s.turnos.Create(ctx, turno); err != nil {
		return err
	}

	s.publish(ctx, entities.NewTurnoEvent(turno, entities.TurnoEventTypeCreado))

	if s.notifications != nil && turno.PacienteTelefono != "" {
		reserved := *turno
		go func() {
			if err := s.notifications.SendBookingConfirmation(context.Background(), &reserved, doctor, tipo); err != nil {
				s.logger.Warn().Err(err).Str("turno_id", reserved.ID).Msg("failed to send booking confirmation")
			}
		}()
	}
	return nil
}

// Cancelar cancels a turno, freeing its slot
func (s *TurnoService) Cancelar(ctx context.Context, id string) error {
	turno, err := s.turnos.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if turno.Status == entities.TurnoStatusCancelado {
		return apperrors.NewValidationError("turno is already cancelled")
	}

	if err := s.turnos.Cancel(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, entities.NewTurnoEvent(turno, entities.TurnoEventTypeCancelado))

	if s.notifications != nil && turno.PacienteTelefono != "" {
		cancelled := *turno
		go func() {
			doctor, err := s.doctores.GetByID(context.Background(), cancelled.DoctorID)
			if err != nil {
				return
			}
			if err := s.notifications.SendCancellationNotice(context.Background(), &cancelled, doctor, nil); err != nil {
				s.logger.Warn().Err(err).Str("turno_id", cancelled.ID).Msg("failed to send cancellation notice")
			}
		}()
	}
	return nil
}

// GetByID retrieves a turno by ID
func (s *TurnoService) GetByID(ctx context.Context, id string) (*entities.Turno, error) {
	return s.turnos.GetByID(ctx, id)
}

// TurnosDelDia lists one day's turnos for a doctor, sorted by start time
func (s *TurnoService) TurnosDelDia(ctx context.Context, doctorID, consultorioID, fecha string) ([]entities.Turno, error) {
	dia, err := time.Parse("2006-01-02", fecha)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid fecha, expected YYYY-MM-DD: " + fecha)
	}

	filter := repositories.TurnoFilter{
		DoctorIDs: []string{doctorID},
		From:      dia,
		To:        dia.AddDate(0, 0, 1),
	}
	if consultorioID != "" {
		filter.ConsultorioIDs = []string{consultorioID}
	}

	return s.turnos.ListByRange(ctx, filter)
}

func (s *TurnoService) publish(ctx context.Context, event *entities.TurnoEvent) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(ctx, providers.EventChannelTurnoUpdates, event); err != nil {
		// The booking itself succeeded; stale caches expire on their own.
		s.logger.Warn().Err(err).Str("turno_id", event.TurnoID).Msg("failed to publish turno event")
	}
	if err := s.eventBus.Publish(ctx, providers.GetDoctorChannel(event.DoctorID), event); err != nil {
		s.logger.Warn().Err(err).Str("turno_id", event.TurnoID).Msg("failed to publish doctor channel event")
	}
}
