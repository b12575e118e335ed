package events

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Routing keys published by the wallet
const (
	RouteOTPIssued            = "otp.issued"
	RouteTransactionCommitted = "transaction.committed"
	RouteRecurringDue         = "recurring.due"
)

// Publisher is implemented by anything that can emit wallet events.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, body any) error
	Close()
}

// OTPIssued asks the delivery service to send a code by SMS
type OTPIssued struct {
	Phone     string    `json:"phone"`
	Code      string    `json:"code"`
	Purpose   string    `json:"purpose"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type TransactionCommitted struct {
	AccountNumber string    `json:"accountNumber"`
	Reference     string    `json:"reference"`
	Direction     string    `json:"direction"`
	Amount        int64     `json:"amount"`
	Service       string    `json:"service"`
	Description   string    `json:"description"`
	Timestamp     time.Time `json:"timestamp"`
}

type RecurringDue struct {
	AccountNumber string    `json:"accountNumber"`
	Phone         string    `json:"phone"`
	InstructionID string    `json:"instructionId"`
	Service       string    `json:"service"`
	Amount        int64     `json:"amount"`
	Description   string    `json:"description"`
	DueAt         time.Time `json:"dueAt"`
}

// Fallback logs events instead of publishing when no broker is configured.
type Fallback struct{}

func (Fallback) Publish(_ context.Context, routingKey string, body any) error {
	if e, ok := body.(OTPIssued); ok {
		// never log the code itself
		e.Code = "******"
		body = e
	}
	log.Printf("[EVENTS-FALLBACK] Would publish routingKey='%s' body=%+v", routingKey, body)
	return nil
}

func (Fallback) Close() {}

// channel is the subset of *amqp.Channel the producer needs
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Producer publishes JSON events to a durable topic exchange.
type Producer struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  channel
	exchange string
	declared bool
}

func sanitizeAMQPURL(raw string) (string, error) {
	clean := strings.Trim(strings.TrimSpace(raw), "\"'")
	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}
	return clean, nil
}

// NewProducer dials the broker with a bounded timeout and opens a channel.
func NewProducer(amqpURL, exchange string) (*Producer, error) {
	cleanURL, err := sanitizeAMQPURL(amqpURL)
	if err != nil {
		return nil, err
	}

	conn, err := amqp.DialConfig(cleanURL, amqp.Config{Dial: amqp.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &Producer{conn: conn, channel: ch, exchange: exchange}, nil
}

func newProducerWithChannel(ch channel, exchange string) *Producer {
	return &Producer{channel: ch, exchange: exchange}
}

func (p *Producer) Publish(ctx context.Context, routingKey string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.declared {
		if err := p.channel.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
			log.Printf("[EVENTS] Failed to declare exchange '%s': %v", p.exchange, err)
			return err
		}
		p.declared = true
	}

	err = p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         payload,
	})
	if err != nil {
		log.Printf("[EVENTS] Failed to publish to '%s' (%s): %v", p.exchange, routingKey, err)
		return err
	}
	return nil
}

func (p *Producer) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

// Connect returns a broker-backed producer, or the logging fallback when the
// URL is empty or the broker is unreachable.
func Connect(amqpURL, exchange string) Publisher {
	if strings.TrimSpace(amqpURL) == "" {
		log.Println("[EVENTS] No AMQP URL configured, events will be logged")
		return Fallback{}
	}
	p, err := NewProducer(amqpURL, exchange)
	if err != nil {
		log.Printf("[EVENTS] Broker unavailable, continuing with log fallback: %v", err)
		return Fallback{}
	}
	log.Println("[EVENTS] Connected to message broker")
	return p
}
