package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/jmauas/consultorio-sub000/internal/domain/availability"
	"github.com/jmauas/consultorio-sub000/internal/domain/entities"
	"github.com/jmauas/consultorio-sub000/internal/domain/providers"
	"github.com/jmauas/consultorio-sub000/internal/domain/repositories"
	apperrors "github.com/jmauas/consultorio-sub000/pkg/errors"
)

const (
	// Availability answers are cached briefly; booking events invalidate
	// them before the TTL in the common case.
	availabilityCacheTTLSeconds = 60

	availabilityCachePrefix = "disponibilidad:"
)

// AvailabilityService computes free slots and gap analyses from the
// agenda, the booked turnos and the office configuration
type AvailabilityService struct {
	doctores repositories.DoctorRepository
	agenda   repositories.AgendaRepository
	turnos   repositories.TurnoRepository
	tipos    repositories.TipoDeTurnoRepository
	config   repositories.ConfigRepository
	cache    providers.CacheProvider
	logger   zerolog.Logger
}

// NewAvailabilityService creates a new availability service. The cache
// provider is optional; a nil cache disables response caching.
func NewAvailabilityService(
	doctores repositories.DoctorRepository,
	agenda repositories.AgendaRepository,
	turnos repositories.TurnoRepository,
	tipos repositories.TipoDeTurnoRepository,
	config repositories.ConfigRepository,
	cache providers.CacheProvider,
	logger zerolog.Logger,
) *AvailabilityService {
	return &AvailabilityService{
		doctores: doctores,
		agenda:   agenda,
		turnos:   turnos,
		tipos:    tipos,
		config:   config,
		cache:    cache,
		logger:   logger,
	}
}

// DisponibilidadRequest describes one availability query
type DisponibilidadRequest struct {
	// DoctorID restricts the search to one doctor. Empty or "any"
	// searches every active doctor.
	DoctorID string

	// TipoDeTurnoID selects the appointment type, which supplies the
	// slot duration and the consultorios where it may be booked.
	TipoDeTurnoID string

	// ConsultorioIDs optionally narrows the tipo's consultorios.
	ConsultorioIDs []string

	// Duracion overrides the tipo's duration when positive.
	Duracion int

	// Penalty flags of the requesting patient.
	ASA bool
	CCR bool

	// Desde is the earliest acceptable slot start. Zero means now.
	Desde time.Time

	// Fecha bounds the search to one calendar date ("2006-01-02").
	Fecha string

	// Now is injectable for deterministic tests. Zero means time.Now.
	Now time.Time
}

// GetDisponibilidad returns every free slot matching the request
func (s *AvailabilityService) GetDisponibilidad(ctx context.Context, req DisponibilidadRequest) (*availability.ScanResult, error) {
	if req.Now.IsZero() {
		req.Now = time.Now().UTC()
	}

	cacheKey := s.cacheKey(req)
	if cached := s.fromCache(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	cfg, err := s.config.GetScheduling(ctx)
	if err != nil {
		return nil, err
	}

	engine, err := availability.NewEngine(cfg)
	if err != nil {
		return nil, err
	}

	scanReq, err := s.buildScanRequest(ctx, req, cfg)
	if err != nil {
		return nil, err
	}

	var result *availability.ScanResult
	if req.Fecha != "" {
		fecha, err := time.Parse("2006-01-02", req.Fecha)
		if err != nil {
			return nil, apperrors.NewValidationError("invalid fecha, expected YYYY-MM-DD: " + req.Fecha)
		}
		result, err = engine.ScanDate(*scanReq, fecha)
		if err != nil {
			return nil, err
		}
	} else {
		result, err = engine.Scan(*scanReq)
		if err != nil {
			return nil, err
		}
	}

	s.toCache(ctx, cacheKey, result)
	return result, nil
}

// AnalizarTurnos annotates one day's turnos of a doctor at a consultorio
// with the closest free slot before and after each one
func (s *AvailabilityService) AnalizarTurnos(ctx context.Context, doctorID, consultorioID, fecha string) ([]entities.TurnoDisponibilidad, error) {
	dia, err := time.Parse("2006-01-02", fecha)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid fecha, expected YYYY-MM-DD: " + fecha)
	}

	cfg, err := s.config.GetScheduling(ctx)
	if err != nil {
		return nil, err
	}

	engine, err := availability.NewEngine(cfg)
	if err != nil {
		return nil, err
	}

	doctor, err := s.doctores.GetByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	rules, err := s.agenda.ListByDoctor(ctx, doctorID, []string{consultorioID})
	if err != nil {
		return nil, err
	}

	resolved, err := availability.NewResolvedDoctor(doctor, rules)
	if err != nil {
		return nil, err
	}

	turnos, err := s.turnos.ListByRange(ctx, repositories.TurnoFilter{
		DoctorIDs:      []string{doctorID},
		ConsultorioIDs: []string{consultorioID},
		From:           dia,
		To:             dia.AddDate(0, 0, 1),
	})
	if err != nil {
		return nil, err
	}

	return engine.Analyze(availability.GapRequest{
		Doctor:        resolved,
		ConsultorioID: consultorioID,
		Turnos:        turnos,
	})
}

func (s *AvailabilityService) buildScanRequest(ctx context.Context, req DisponibilidadRequest, cfg *entities.SchedulingConfig) (*availability.ScanRequest, error) {
	duracion := req.Duracion
	consultorios := req.ConsultorioIDs

	if req.TipoDeTurnoID != "" {
		tipo, err := s.tipos.GetByID(ctx, req.TipoDeTurnoID)
		if err != nil {
			return nil, err
		}
		if !tipo.Habilitado {
			return nil, apperrors.NewValidationError("tipo de turno is disabled: " + tipo.Nombre)
		}
		if duracion <= 0 {
			duracion = tipo.Duracion
		}
		if len(consultorios) == 0 {
			consultorios = tipo.ConsultorioIDs
		}
	}

	if duracion <= 0 {
		return nil, apperrors.NewValidationError("a positive slot duration is required")
	}
	if len(consultorios) == 0 {
		return nil, apperrors.NewValidationError("at least one consultorio is required")
	}

	doctores, err := s.resolveDoctors(ctx, req.DoctorID, consultorios)
	if err != nil {
		return nil, err
	}

	doctorIDs := make([]string, 0, len(doctores))
	for _, d := range doctores {
		doctorIDs = append(doctorIDs, d.Doctor.ID)
	}

	from := req.Desde
	if from.IsZero() || from.Before(req.Now) {
		from = req.Now
	}

	turnos, err := s.turnos.ListByRange(ctx, repositories.TurnoFilter{
		DoctorIDs:      doctorIDs,
		ConsultorioIDs: consultorios,
		From:           from,
		To:             cfg.Limite,
	})
	if err != nil {
		return nil, err
	}

	return &availability.ScanRequest{
		Doctors:        doctores,
		ConsultorioIDs: consultorios,
		TipoDeTurnoID:  req.TipoDeTurnoID,
		Duracion:       duracion,
		ASA:            req.ASA,
		CCR:            req.CCR,
		Desde:          req.Desde,
		Now:            req.Now,
		Turnos:         turnos,
	}, nil
}

// resolveDoctors loads the doctors in scope and pre-parses their agendas.
// Doctors whose agenda fails validation are skipped, not fatal: one
// misconfigured rule must not blank out the whole office.
func (s *AvailabilityService) resolveDoctors(ctx context.Context, doctorID string, consultorios []string) ([]*availability.ResolvedDoctor, error) {
	scopeAll := doctorID == "" || strings.EqualFold(doctorID, "any")

	var candidatos []entities.Doctor
	if scopeAll {
		list, err := s.doctores.List(ctx)
		if err != nil {
			return nil, err
		}
		candidatos = list
	} else {
		doctor, err := s.doctores.GetByID(ctx, doctorID)
		if err != nil {
			return nil, err
		}
		candidatos = []entities.Doctor{*doctor}
	}

	var resolved []*availability.ResolvedDoctor
	for i := range candidatos {
		doctor := candidatos[i]
		rules, err := s.agenda.ListByDoctor(ctx, doctor.ID, consultorios)
		if err != nil {
			return nil, err
		}
		if len(rules) == 0 {
			continue
		}

		rd, err := availability.NewResolvedDoctor(&doctor, rules)
		if err != nil {
			if !scopeAll {
				return nil, err
			}
			s.logger.Warn().Err(err).Str("doctor_id", doctor.ID).Msg("skipping doctor with invalid agenda")
			continue
		}
		resolved = append(resolved, rd)
	}

	return resolved, nil
}

func (s *AvailabilityService) cacheKey(req DisponibilidadRequest) string {
	// Results are relative to the current day, and a request with an
	// explicit start must never be served another request's slots.
	desde := ""
	if !req.Desde.IsZero() {
		desde = req.Desde.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("%s%s:%s:%s:%d:%t:%t:%s:%s:%s",
		availabilityCachePrefix,
		req.DoctorID,
		req.TipoDeTurnoID,
		strings.Join(req.ConsultorioIDs, ","),
		req.Duracion,
		req.ASA,
		req.CCR,
		req.Fecha,
		desde,
		req.Now.UTC().Format("2006-01-02"),
	)
}

func (s *AvailabilityService) fromCache(ctx context.Context, key string) *availability.ScanResult {
	if s.cache == nil {
		return nil
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil
	}
	var result availability.ScanResult
	if err := json.Unmarshal(data, &result); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("discarding corrupt cached availability")
		return nil
	}
	return &result
}

func (s *AvailabilityService) toCache(ctx context.Context, key string, result *availability.ScanResult) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, availabilityCacheTTLSeconds); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to cache availability")
	}
}
