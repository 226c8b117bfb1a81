package availability

import (
	"time"

	"github.com/jmauas/consultorio-sub000/internal/domain/entities"
)

// GapRequest is one gap analysis over a single day's turnos for one
// doctor and consultorio, sorted by start time ascending.
type GapRequest struct {
	Doctor        *ResolvedDoctor
	ConsultorioID string
	Turnos        []entities.Turno
}

// Analyze annotates each turno with the free slot of its own duration found
// immediately before and after it, if any. A cancelled turno is annotated
// with its own interval as a replacement slot. This is a "closest slot to
// the appointment" view, not an exhaustive gap listing.
func (e *Engine) Analyze(req GapRequest) ([]entities.TurnoDisponibilidad, error) {
	out := make([]entities.TurnoDisponibilidad, 0, len(req.Turnos))

	for i := range req.Turnos {
		t := req.Turnos[i]
		anotado := entities.TurnoDisponibilidad{Turno: t}

		win := e.resolver.Resolve(req.Doctor, req.ConsultorioID, t.Desde)
		if !win.Atiende {
			out = append(out, anotado)
			continue
		}

		dur := t.DuracionMinutos()
		desde := minuteOfDay(t.Desde)
		hasta := minuteOfDay(t.Hasta)

		if t.Status == entities.TurnoStatusCancelado {
			// The freed interval is itself bookable.
			if win.contiene(desde, hasta) && !win.overlapsCorte(desde, hasta) {
				anotado.DisponibilidadAnterior = e.disponibilidad(req, t.Desde, t.Hasta, dur)
			}
			out = append(out, anotado)
			continue
		}

		// Gap before: from the previous occupied turno's end, or the
		// window start. The offered slot hugs the turno, it does not
		// fill the whole gap.
		limiteAnterior := win.Desde
		if prev := prevOcupado(req.Turnos, i); prev != nil {
			limiteAnterior = minuteOfDay(prev.Hasta)
		}
		if desde-limiteAnterior >= dur && win.contiene(limiteAnterior, desde) && !win.overlapsCorte(limiteAnterior, desde) {
			anotado.DisponibilidadAnterior = e.disponibilidad(req, t.Desde.Add(-time.Duration(dur)*time.Minute), t.Desde, dur)
		}

		// Gap after: up to the next occupied turno's start, or the
		// window end.
		limitePosterior := win.Hasta
		if next := nextOcupado(req.Turnos, i); next != nil {
			limitePosterior = minuteOfDay(next.Desde)
		}
		if limitePosterior-hasta >= dur && win.contiene(hasta, limitePosterior) && !win.overlapsCorte(hasta, limitePosterior) {
			anotado.DisponibilidadPosterior = e.disponibilidad(req, t.Hasta, t.Hasta.Add(time.Duration(dur)*time.Minute), dur)
		}

		out = append(out, anotado)
	}

	return out, nil
}

func (e *Engine) disponibilidad(req GapRequest, desde, hasta time.Time, dur int) *entities.Disponibilidad {
	return &entities.Disponibilidad{
		Desde:         desde,
		Hasta:         hasta,
		Duracion:      dur,
		Doctor:        req.Doctor.Doctor,
		ConsultorioID: req.ConsultorioID,
	}
}

func prevOcupado(turnos []entities.Turno, i int) *entities.Turno {
	for j := i - 1; j >= 0; j-- {
		if turnos[j].Status.Ocupa() {
			return &turnos[j]
		}
	}
	return nil
}

func nextOcupado(turnos []entities.Turno, i int) *entities.Turno {
	for j := i + 1; j < len(turnos); j++ {
		if turnos[j].Status.Ocupa() {
			return &turnos[j]
		}
	}
	return nil
}
