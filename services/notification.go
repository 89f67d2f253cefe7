package services

import (
	"fmt"
	"os"
	"strings"
	"time"

	"wellness-backend/models"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"gorm.io/gorm"
)

// Notification kinds recorded in the delivery log.
const (
	KindConfirmation = "confirmation"
	KindReminder     = "reminder"
	KindCancellation = "cancellation"
	KindCompletion   = "completion"
)

// NotificationGateway is the best-effort side channel invoked on reservation
// transitions. Implementations record every attempt in the delivery log;
// failures must never affect reservation or ledger state.
type NotificationGateway interface {
	SendConfirmation(reservation *models.Reservation) error
	SendReminder(reservation *models.Reservation) error
	SendCancellation(reservation *models.Reservation) error
	SendCompletion(reservation *models.Reservation) error
}

// NewGateway picks the Twilio gateway when credentials are configured and a
// log-only gateway otherwise (local development, tests).
func NewGateway(db *gorm.DB) NotificationGateway {
	if os.Getenv("TWILIO_ACCOUNT_SID") != "" {
		return NewTwilioGateway(db)
	}
	return NewLogGateway(db)
}

// TwilioGateway delivers messages over SMS or WhatsApp.
type TwilioGateway struct {
	db     *gorm.DB
	client *twilio.RestClient
}

func NewTwilioGateway(db *gorm.DB) *TwilioGateway {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")

	return &TwilioGateway{
		db: db,
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
	}
}

func (g *TwilioGateway) SendConfirmation(reservation *models.Reservation) error {
	return g.send(reservation, KindConfirmation,
		fmt.Sprintf("Your %s appointment on %s at %s is confirmed. See you soon!",
			g.serviceName(reservation), reservation.ReservationDate.Format("2006-01-02"), reservation.ReservationTime))
}

func (g *TwilioGateway) SendReminder(reservation *models.Reservation) error {
	return g.send(reservation, KindReminder,
		fmt.Sprintf("Reminder: your %s appointment is tomorrow at %s.",
			g.serviceName(reservation), reservation.ReservationTime))
}

func (g *TwilioGateway) SendCancellation(reservation *models.Reservation) error {
	return g.send(reservation, KindCancellation,
		fmt.Sprintf("Your %s appointment on %s at %s has been cancelled.",
			g.serviceName(reservation), reservation.ReservationDate.Format("2006-01-02"), reservation.ReservationTime))
}

func (g *TwilioGateway) SendCompletion(reservation *models.Reservation) error {
	return g.send(reservation, KindCompletion,
		fmt.Sprintf("Thank you for visiting us today for your %s session!",
			g.serviceName(reservation)))
}

func (g *TwilioGateway) serviceName(reservation *models.Reservation) string {
	var serviceType models.ServiceType
	if err := g.db.First(&serviceType, "id = ?", reservation.ServiceTypeID).Error; err != nil {
		return "wellness"
	}
	return serviceType.Name
}

func (g *TwilioGateway) send(reservation *models.Reservation, kind, message string) error {
	var customer models.Customer
	if err := g.db.First(&customer, "id = ?", reservation.CustomerID).Error; err != nil {
		return err
	}

	// WhatsApp for E.164 numbers, plain SMS otherwise.
	channel := "sms"
	to := customer.Phone
	if strings.HasPrefix(customer.Phone, "+") {
		to = "whatsapp:" + customer.Phone
		channel = "whatsapp"
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetBody(message)
	if channel == "whatsapp" {
		params.SetFrom("whatsapp:" + os.Getenv("TWILIO_WHATSAPP_NUMBER"))
	} else {
		params.SetFrom(os.Getenv("TWILIO_PHONE_NUMBER"))
	}

	_, sendErr := g.client.Api.CreateMessage(params)
	status := "sent"
	errorMsg := ""
	if sendErr != nil {
		status = "failed"
		errorMsg = sendErr.Error()
	}

	entry := models.DeliveryLog{
		ReservationID: reservation.ID,
		CustomerID:    customer.ID,
		Kind:          kind,
		Channel:       channel,
		Message:       message,
		Status:        status,
		ErrorMessage:  errorMsg,
		SentAt:        time.Now(),
	}
	if err := g.db.Create(&entry).Error; err != nil {
		return err
	}
	return sendErr
}

// LogGateway records delivery-log entries without contacting a provider.
type LogGateway struct {
	db *gorm.DB
}

func NewLogGateway(db *gorm.DB) *LogGateway {
	return &LogGateway{db: db}
}

func (g *LogGateway) SendConfirmation(reservation *models.Reservation) error {
	return g.record(reservation, KindConfirmation)
}

func (g *LogGateway) SendReminder(reservation *models.Reservation) error {
	return g.record(reservation, KindReminder)
}

func (g *LogGateway) SendCancellation(reservation *models.Reservation) error {
	return g.record(reservation, KindCancellation)
}

func (g *LogGateway) SendCompletion(reservation *models.Reservation) error {
	return g.record(reservation, KindCompletion)
}

func (g *LogGateway) record(reservation *models.Reservation, kind string) error {
	entry := models.DeliveryLog{
		ReservationID: reservation.ID,
		CustomerID:    reservation.CustomerID,
		Kind:          kind,
		Channel:       "log",
		Status:        "sent",
		SentAt:        time.Now(),
	}
	return g.db.Create(&entry).Error
}
