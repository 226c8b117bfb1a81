package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/jmauas/consultorio-sub000/internal/infrastructure/clients/postgres"
	"github.com/jmauas/consultorio-sub000/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	ctx := context.Background()
	db := pgClient.DB()

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, truncating tables before seeding")
		_, err := db.ExecContext(ctx, `
			TRUNCATE TABLE
				turno_notifications,
				turnos,
				agenda,
				tipos_de_turno,
				doctores,
				configuracion
			RESTART IDENTITY CASCADE
		`)
		if err != nil {
			log.Fatalf("Failed to reset tables: %v", err)
		}
	}

	// 1. Seed Doctores
	type doctorSeed struct {
		ID       string
		Nombre   string
		Emoji    string
		Feriados []string
	}
	doctores := []doctorSeed{
		{ID: uuid.New().String(), Nombre: "Dra. García", Emoji: "🩺", Feriados: []string{}},
		{ID: uuid.New().String(), Nombre: "Dr. Fernández", Emoji: "🦷", Feriados: []string{"2025-12-24", "2025-12-31"}},
		{ID: uuid.New().String(), Nombre: "Dra. Rodríguez", Emoji: "👶", Feriados: []string{}},
	}

	for _, d := range doctores {
		_, err := db.ExecContext(ctx,
			`INSERT INTO doctores (id, nombre, emoji, feriados, activo, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, true, NOW(), NOW())`,
			d.ID, d.Nombre, d.Emoji, pq.Array(d.Feriados),
		)
		if err != nil {
			log.Printf("Failed to create doctor %s: %v", d.Nombre, err)
		}
	}

	// 2. Seed Agenda (weekly rules, Monday through Friday)
	type agendaSeed struct {
		doctorID      string
		consultorioID string
		dia           int
		desde, hasta  string
		corteDesde    string
		corteHasta    string
	}
	var rules []agendaSeed
	for i, d := range doctores {
		consultorio := "cons-1"
		if i%2 == 1 {
			consultorio = "cons-2"
		}
		for dia := 1; dia <= 5; dia++ {
			rules = append(rules, agendaSeed{
				doctorID:      d.ID,
				consultorioID: consultorio,
				dia:           dia,
				desde:         "09:00",
				hasta:         "18:00",
				corteDesde:    "13:00",
				corteHasta:    "14:00",
			})
		}
	}

	for _, r := range rules {
		_, err := db.ExecContext(ctx,
			`INSERT INTO agenda (id, doctor_id, consultorio_id, kind, dia, atiende, desde, hasta, corte_desde, corte_hasta)
			 VALUES ($1, $2, $3, 'semanal', $4, true, $5, $6, $7, $8)`,
			uuid.New().String(), r.doctorID, r.consultorioID, r.dia,
			r.desde, r.hasta, r.corteDesde, r.corteHasta,
		)
		if err != nil {
			log.Printf("Failed to create agenda rule for doctor %s: %v", r.doctorID, err)
		}
	}

	// 3. Seed Tipos de Turno
	type tipoSeed struct {
		Nombre       string
		Duracion     int
		Consultorios []string
	}
	tipos := []tipoSeed{
		{Nombre: "Primera consulta", Duracion: 45, Consultorios: []string{"cons-1", "cons-2"}},
		{Nombre: "Consulta", Duracion: 30, Consultorios: []string{"cons-1", "cons-2"}},
		{Nombre: "Control", Duracion: 15, Consultorios: []string{"cons-1"}},
		{Nombre: "Limpieza", Duracion: 60, Consultorios: []string{"cons-2"}},
	}

	for _, tp := range tipos {
		_, err := db.ExecContext(ctx,
			`INSERT INTO tipos_de_turno (id, nombre, duracion, consultorios, habilitado)
			 VALUES ($1, $2, $3, $4, true)`,
			uuid.New().String(), tp.Nombre, tp.Duracion, pq.Array(tp.Consultorios),
		)
		if err != nil {
			log.Printf("Failed to create tipo de turno %s: %v", tp.Nombre, err)
		}
	}

	// 4. Seed Configuracion
	limite := time.Now().UTC().AddDate(0, 3, 0).Format(time.RFC3339)
	configEntries := map[string]string{
		"limite":   limite,
		"dias_asa": "30",
		"dias_ccr": "15",
		"feriados": "2025-12-25,2026-01-01",
	}

	for clave, valor := range configEntries {
		_, err := db.ExecContext(ctx,
			`INSERT INTO configuracion (clave, valor)
			 VALUES ($1, $2)
			 ON CONFLICT (clave) DO UPDATE SET valor = EXCLUDED.valor`,
			clave, valor,
		)
		if err != nil {
			log.Printf("Failed to set configuracion %s: %v", clave, err)
		}
	}

	log.Println("Seeding completed successfully")
}
