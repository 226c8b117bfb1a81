package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jmauas/consultorio-sub000/internal/domain/entities"
	"github.com/jmauas/consultorio-sub000/internal/infrastructure/notifications"
)

// NotificationService handles sending notifications
type NotificationService struct {
	db             *sqlx.DB
	whatsappSender *notifications.WhatsAppCloudSender
}

// NewNotificationService creates a new notification service
func NewNotificationService(db *sqlx.DB) (*NotificationService, error) {
	whatsappSender, err := notifications.NewWhatsAppCloudSender()
	if err != nil {
		return nil, fmt.Errorf("failed to create WhatsApp sender: %w", err)
	}

	return &NotificationService{
		db:             db,
		whatsappSender: whatsappSender,
	}, nil
}

// NotificationContext contains all data needed for notification rendering
type NotificationContext struct {
	TurnoID          string
	PacienteNombre   string
	PacienteEmail    string
	PacienteTelefono string
	DoctorNombre     string
	TipoDeTurno      string
	Fecha            string
	Hora             string
	Notas            string
}

func buildNotificationContext(turno *entities.Turno, doctor *entities.Doctor, tipo *entities.TipoDeTurno) *NotificationContext {
	tipoNombre := ""
	if tipo != nil {
		tipoNombre = tipo.Nombre
	}
	return &NotificationContext{
		TurnoID:          turno.ID,
		PacienteNombre:   turno.PacienteNombre,
		PacienteEmail:    turno.PacienteEmail,
		PacienteTelefono: turno.PacienteTelefono,
		DoctorNombre:     doctor.Nombre,
		TipoDeTurno:      tipoNombre,
		Fecha:            turno.Desde.Format("02/01/2006"),
		Hora:             turno.Desde.Format("15:04"),
		Notas:            turno.Notas,
	}
}

// SendBookingConfirmation sends a booking confirmation notification
func (n *NotificationService) SendBookingConfirmation(ctx context.Context, turno *entities.Turno, doctor *entities.Doctor, tipo *entities.TipoDeTurno) error {
	// Get notification preferences
	prefs, err := n.getNotificationPreferences(ctx, turno.PacienteTelefono)
	if err != nil {
		// If no preferences, use defaults (WhatsApp enabled)
		prefs = &entities.NotificationPreference{
			Phone:           &turno.PacienteTelefono,
			Email:           &turno.PacienteEmail,
			WhatsAppEnabled: true,
			EmailEnabled:    true,
		}
	}

	notifCtx := buildNotificationContext(turno, doctor, tipo)

	// Send WhatsApp notification if enabled
	if prefs.WhatsAppEnabled && prefs.Phone != nil && *prefs.Phone != "" {
		if err := n.sendWhatsAppNotification(ctx, entities.NotificationBookingConfirmation, notifCtx); err != nil {
			// Log error but don't fail - try other channels
			fmt.Printf("Failed to send WhatsApp notification: %v\n", err)
		}
	}

	return nil
}

// SendCancellationNotice sends a cancellation notice
func (n *NotificationService) SendCancellationNotice(ctx context.Context, turno *entities.Turno, doctor *entities.Doctor, tipo *entities.TipoDeTurno) error {
	prefs, err := n.getNotificationPreferences(ctx, turno.PacienteTelefono)
	if err != nil {
		prefs = &entities.NotificationPreference{
			Phone:           &turno.PacienteTelefono,
			WhatsAppEnabled: true,
		}
	}

	notifCtx := buildNotificationContext(turno, doctor, tipo)

	if prefs.WhatsAppEnabled && prefs.Phone != nil {
		if err := n.sendWhatsAppNotification(ctx, entities.NotificationCancellation, notifCtx); err != nil {
			fmt.Printf("Failed to send WhatsApp cancellation: %v\n", err)
		}
	}

	return nil
}

// SendReminder sends a reminder notification
func (n *NotificationService) SendReminder(ctx context.Context, turno *entities.Turno, doctor *entities.Doctor, tipo *entities.TipoDeTurno, reminderType entities.NotificationType) error {
	prefs, err := n.getNotificationPreferences(ctx, turno.PacienteTelefono)
	if err != nil {
		prefs = &entities.NotificationPreference{
			Phone:              &turno.PacienteTelefono,
			WhatsAppEnabled:    true,
			Reminder24hEnabled: true,
			Reminder1hEnabled:  true,
		}
	}

	// Check if this reminder type is enabled
	if reminderType == entities.NotificationReminder24h && !prefs.Reminder24hEnabled {
		return nil
	}
	if reminderType == entities.NotificationReminder1h && !prefs.Reminder1hEnabled {
		return nil
	}

	notifCtx := buildNotificationContext(turno, doctor, tipo)

	if prefs.WhatsAppEnabled && prefs.Phone != nil {
		if err := n.sendWhatsAppNotification(ctx, reminderType, notifCtx); err != nil {
			fmt.Printf("Failed to send WhatsApp reminder: %v\n", err)
		}
	}

	return nil
}

// sendWhatsAppNotification sends a WhatsApp notification
func (n *NotificationService) sendWhatsAppNotification(ctx context.Context, notifType entities.NotificationType, notifCtx *NotificationContext) error {
	// Get template
	template, err := n.getTemplate(ctx, entities.ChannelWhatsApp, notifType)
	if err != nil {
		return fmt.Errorf("failed to get template: %w", err)
	}

	// Render message body
	body := n.renderTemplate(template.Body, notifCtx)

	// Create notification record
	notification := &entities.TurnoNotification{
		ID:               uuid.New().String(),
		TurnoID:          notifCtx.TurnoID,
		NotificationType: notifType,
		Channel:          entities.ChannelWhatsApp,
		Recipient:        notifCtx.PacienteTelefono,
		Status:           entities.NotificationStatusPending,
		RetryCount:       0,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	// Save notification record
	if err := n.createNotification(ctx, notification); err != nil {
		return fmt.Errorf("failed to create notification record: %w", err)
	}

	// Send via WhatsApp
	var messageID string
	var sendErr error

	if template.WhatsAppTemplateName != nil && *template.WhatsAppTemplateName != "" {
		// Use approved template
		parameters := n.extractTemplateParameters(notifCtx)
		messageID, sendErr = n.whatsappSender.SendTemplate(
			notifCtx.PacienteTelefono,
			*template.WhatsAppTemplateName,
			template.WhatsAppTemplateLang,
			parameters,
		)
	} else {
		// Use freeform text (for testing or if template not approved)
		messageID, sendErr = n.whatsappSender.SendText(notifCtx.PacienteTelefono, body)
	}

	// Update notification status
	if sendErr != nil {
		now := time.Now()
		errMsg := sendErr.Error()
		notification.Status = entities.NotificationStatusFailed
		notification.FailedAt = &now
		notification.ErrorMessage = &errMsg
		notification.UpdatedAt = now
	} else {
		now := time.Now()
		notification.Status = entities.NotificationStatusSent
		notification.MessageID = &messageID
		notification.SentAt = &now
		notification.UpdatedAt = now
	}

	if err := n.updateNotification(ctx, notification); err != nil {
		return fmt.Errorf("failed to update notification: %w", err)
	}

	return sendErr
}

// renderTemplate replaces placeholders in template
func (n *NotificationService) renderTemplate(template string, ctx *NotificationContext) string {
	replacements := map[string]string{
		"{{paciente_nombre}}": ctx.PacienteNombre,
		"{{doctor_nombre}}":   ctx.DoctorNombre,
		"{{tipo_de_turno}}":   ctx.TipoDeTurno,
		"{{fecha}}":           ctx.Fecha,
		"{{hora}}":            ctx.Hora,
		"{{notas}}":           ctx.Notas,
	}

	result := template
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	return result
}

// extractTemplateParameters extracts parameters for WhatsApp template
func (n *NotificationService) extractTemplateParameters(ctx *NotificationContext) []string {
	params := []string{
		ctx.Fecha,
		ctx.Hora,
		ctx.DoctorNombre,
	}

	if ctx.TipoDeTurno != "" {
		params = append(params, ctx.TipoDeTurno)
	}

	return params
}

// Database operations
func (n *NotificationService) getNotificationPreferences(ctx context.Context, phone string) (*entities.NotificationPreference, error) {
	var prefs entities.NotificationPreference
	query := `SELECT * FROM notification_preferences WHERE phone = $1 LIMIT 1`
	err := n.db.GetContext(ctx, &prefs, query, phone)
	if err != nil {
		return nil, err
	}
	return &prefs, nil
}

func (n *NotificationService) getTemplate(ctx context.Context, channel entities.NotificationChannel, notifType entities.NotificationType) (*entities.NotificationTemplate, error) {
	var template entities.NotificationTemplate
	query := `SELECT * FROM notification_templates WHERE channel = $1 AND template_type = $2 AND is_active = true LIMIT 1`
	err := n.db.GetContext(ctx, &template, query, string(channel), string(notifType))
	if err != nil {
		return nil, err
	}
	return &template, nil
}

func (n *NotificationService) createNotification(ctx context.Context, notification *entities.TurnoNotification) error {
	query := `
		INSERT INTO turno_notifications
		(id, turno_id, notification_type, channel, recipient, status, message_id,
		 sent_at, delivered_at, read_at, failed_at, error_message, retry_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := n.db.ExecContext(ctx, query,
		notification.ID, notification.TurnoID, notification.NotificationType, notification.Channel,
		notification.Recipient, notification.Status, notification.MessageID, notification.SentAt,
		notification.DeliveredAt, notification.ReadAt, notification.FailedAt, notification.ErrorMessage,
		notification.RetryCount, notification.CreatedAt, notification.UpdatedAt,
	)
	return err
}

func (n *NotificationService) updateNotification(ctx context.Context, notification *entities.TurnoNotification) error {
	query := `
		UPDATE turno_notifications
		SET status = $1, message_id = $2, sent_at = $3, delivered_at = $4, read_at = $5,
		    failed_at = $6, error_message = $7, retry_count = $8, updated_at = $9
		WHERE id = $10
	`
	_, err := n.db.ExecContext(ctx, query,
		notification.Status, notification.MessageID, notification.SentAt, notification.DeliveredAt,
		notification.ReadAt, notification.FailedAt, notification.ErrorMessage, notification.RetryCount,
		notification.UpdatedAt, notification.ID,
	)
	return err
}
