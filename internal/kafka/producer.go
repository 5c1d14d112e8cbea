package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"promotion-console/internal/config"
	"promotion-console/internal/logger"
	"promotion-console/internal/models"

	"github.com/IBM/sarama"
)

// Producer публикует события о действиях консоли в Kafka.
type Producer struct {
	producer sarama.SyncProducer
	log      *logger.Logger
	topic    string
}

// NewProducer создает синхронного продюсера для топика действий.
func NewProducer(cfg *config.KafkaConfig, log *logger.Logger) (*Producer, error) {
	saramaCfg := sarama.NewConfig()
	saramaCfg.ClientID = cfg.ClientID
	saramaCfg.Producer.Return.Successes = true
	saramaCfg.Producer.RequiredAcks = sarama.WaitForAll
	saramaCfg.Producer.Retry.Max = 3
	saramaCfg.Net.DialTimeout = 3 * time.Second
	saramaCfg.Net.ReadTimeout = 5 * time.Second
	saramaCfg.Net.WriteTimeout = 5 * time.Second
	saramaCfg.Metadata.Retry.Max = 1
	saramaCfg.Metadata.Retry.Backoff = 500 * time.Millisecond

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	log.WithField("brokers", cfg.Brokers).Debug("Kafka producer created")

	return WithSyncProducer(producer, cfg.Topic, log), nil
}

// WithSyncProducer оборачивает готового sarama продюсера.
func WithSyncProducer(producer sarama.SyncProducer, topic string, log *logger.Logger) *Producer {
	return &Producer{
		producer: producer,
		log:      log,
		topic:    topic,
	}
}

// PublishAction отправляет событие; ключ сообщения - id промоакции.
func (p *Producer) PublishAction(ctx context.Context, event models.ActionEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Value: sarama.ByteEncoder(data),
		Headers: []sarama.RecordHeader{
			{Key: []byte("action"), Value: []byte(event.Action)},
		},
	}
	if event.PromotionID != "" {
		msg.Key = sarama.StringEncoder(event.PromotionID)
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to send event %s: %w", event.ID, err)
	}

	p.log.WithFields(map[string]interface{}{
		"event_id":  event.ID,
		"action":    event.Action,
		"topic":     p.topic,
		"partition": partition,
		"offset":    offset,
	}).Debug("Action event published")

	return nil
}

// Close закрывает продюсера
func (p *Producer) Close() error {
	if p == nil || p.producer == nil {
		return nil
	}
	return p.producer.Close()
}
