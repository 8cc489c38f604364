package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/room-reservation/internal/calendar"
	"github.com/iliyamo/room-reservation/internal/email"
)

// StartConfirmationConsumer connects to RabbitMQ, declares the durable
// reservation.confirmed queue and starts consuming events.  Each event
// is appended to logs/reservation.log and, depending on what is
// configured, triggers the confirmation email to the booking user and
// mirrors the reservation into the shared Google Calendar.  Delivery
// failures are logged and the message is still acked: notification
// delivery is best-effort and must never wedge the queue.  The function
// runs a reconnect loop with exponential backoff and keeps running for
// the lifetime of the process.
func StartConfirmationConsumer(mailer *email.Service, cal *calendar.Service) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(brokerURL())
		if err != nil {
			log.Printf("reservation-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, mailer, cal); err != nil {
			log.Printf("reservation-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
			continue
		}
	}
}

func consumeLoop(conn *amqp.Connection, mailer *email.Service, cal *calendar.Service) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("reservation-consumer: set QoS failed: %v", err)
	}

	if _, err := ch.QueueDeclare(ConfirmedQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(ConfirmedQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body, mailer, cal); err != nil {
			log.Printf("reservation-consumer: handle message failed: %v", err)
			_ = d.Nack(false, false) // drop; the event is also in the log file
			continue
		}
		_ = d.Ack(false)
	}
	return fmt.Errorf("delivery channel closed")
}

func handleMessage(body []byte, mailer *email.Service, cal *calendar.Service) error {
	var ev ReservationConfirmedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal event: %w", err)
	}

	if err := appendLog(ev); err != nil {
		log.Printf("reservation-consumer: write log failed: %v", err)
	}

	if mailer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := mailer.SendConfirmation(ctx, ev.UserEmail, ev.RoomName, ev.StartsAt, ev.EndsAt); err != nil {
			log.Printf("reservation-consumer: confirmation email to %s failed: %v", ev.UserEmail, err)
		}
	}

	if cal != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		eventID, err := cal.CreateEvent(ctx, calendar.Event{
			RoomName:  ev.RoomName,
			CreatedBy: ev.UserName,
			StartTime: ev.StartTime,
			EndTime:   ev.EndTime,
		})
		if err != nil {
			log.Printf("reservation-consumer: calendar event for reservation %d failed: %v", ev.ReservationID, err)
		} else {
			log.Printf("reservation-consumer: calendar event %s created for reservation %d", eventID, ev.ReservationID)
		}
	}
	return nil
}

// appendLog writes a single human-friendly line per event to
// logs/reservation.log, creating the directory on first use.
func appendLog(ev ReservationConfirmedEvent) error {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join("logs", "reservation.log"),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	line := fmt.Sprintf("%s reservation=%d room=%q user=%q window=%q..%q\n",
		ev.ConfirmedAt, ev.ReservationID, ev.RoomName, ev.UserEmail, ev.StartsAt, ev.EndsAt)
	_, err = f.WriteString(line)
	return err
}
