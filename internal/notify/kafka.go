package notify

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/IBM/sarama"

	"github.com/feiralivre/fulfillment/internal/domain"
	"github.com/feiralivre/fulfillment/internal/logx"
)

// StatusEventDTO is the wire format of a published status change. The
// tracking and wa.me links let the messaging subscriber notify the customer
// without a second lookup.
type StatusEventDTO struct {
	OrderID       string    `json:"order_id"`
	OrderCode     string    `json:"order_code"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	Note          string    `json:"note,omitempty"`
	TrackingURL   string    `json:"tracking_url,omitempty"`
	WhatsAppURL   string    `json:"whatsapp_url,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// KafkaSink publishes status changes for downstream read models (tracking
// page, messaging). Publish failures are logged and dropped.
type KafkaSink struct {
	producer     sarama.SyncProducer
	topic        string
	trackingBase string
	logger       logx.Logger
	now          func() time.Time
}

// NewKafkaSink creates a Kafka publishing sink. Returns nil when brokers or
// topic are not configured. trackingBase is the public storefront URL used
// to build customer-facing links; empty leaves the links out.
func NewKafkaSink(brokers []string, topic, trackingBase string, logger logx.Logger) (*KafkaSink, error) {
	if len(brokers) == 0 || strings.TrimSpace(topic) == "" {
		return nil, nil
	}

	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForLocal

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return &KafkaSink{
		producer:     producer,
		topic:        topic,
		trackingBase: strings.TrimSpace(trackingBase),
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}, nil
}

func (k *KafkaSink) event(o *domain.Order, status domain.OrderStatus, paymentStatus domain.PaymentStatus, note string) StatusEventDTO {
	ev := StatusEventDTO{
		OrderID:       o.ID.String(),
		OrderCode:     o.Code,
		Status:        string(status),
		PaymentStatus: string(paymentStatus),
		Note:          note,
		OccurredAt:    k.now(),
	}
	if k.trackingBase != "" {
		ev.TrackingURL = TrackingLink(k.trackingBase, o.Code)
		ev.WhatsAppURL = WhatsAppLink(o.Customer.Phone, o.Code, ev.TrackingURL)
	}
	return ev
}

// OrderStatusChanged publishes one status event keyed by order id.
func (k *KafkaSink) OrderStatusChanged(_ context.Context, o *domain.Order, status domain.OrderStatus, note string) {
	if k == nil || o == nil {
		return
	}
	k.publish(k.event(o, status, o.PaymentStatus, note))
}

// PaymentConfirmed publishes the payment confirmation as a status event.
func (k *KafkaSink) PaymentConfirmed(_ context.Context, o *domain.Order) {
	if k == nil || o == nil {
		return
	}
	k.publish(k.event(o, o.Status, domain.PaymentStatusPaid, "pagamento confirmado"))
}

func (k *KafkaSink) publish(ev StatusEventDTO) {
	value, err := json.Marshal(ev)
	if err != nil {
		k.logger.Error("status event encode failed", logx.Any("err", err))
		return
	}
	_, _, err = k.producer.SendMessage(&sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(ev.OrderID),
		Value: sarama.ByteEncoder(value),
	})
	if err != nil {
		k.logger.Error("status event publish failed",
			logx.String("order_id", ev.OrderID),
			logx.Any("err", err),
		)
	}
}

// Close shuts the underlying producer down.
func (k *KafkaSink) Close() error {
	if k == nil {
		return nil
	}
	return k.producer.Close()
}
