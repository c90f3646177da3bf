package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/IBM/sarama"
)

type Kafka struct {
	producer sarama.SyncProducer
}

func producerConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	return config
}

// NewKafka dials the brokers, retrying up to attempts times with wait in between.
func NewKafka(brokers []string, attempts int, wait time.Duration) (*Kafka, error) {
	if attempts < 1 {
		attempts = 1
	}
	var (
		producer sarama.SyncProducer
		err      error
	)
	for i := 1; i <= attempts; i++ {
		producer, err = sarama.NewSyncProducer(brokers, producerConfig())
		if err == nil {
			log.Println("Kafka producer initialized")
			return &Kafka{producer: producer}, nil
		}
		log.Printf("Waiting for Kafka... (%d/%d) Error: %v", i, attempts, err)
		if i < attempts {
			time.Sleep(wait)
		}
	}
	return nil, fmt.Errorf("failed to start Kafka producer after %d attempts: %w", attempts, err)
}

func NewKafkaWithProducer(p sarama.SyncProducer) *Kafka {
	return &Kafka{producer: p}
}

// Publish sends ev to the topic named by its type, keyed by the row id so every change
// to a row lands on the same partition.
func (k *Kafka) Publish(ctx context.Context, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	msg := &sarama.ProducerMessage{
		Topic:     ev.Type,
		Key:       sarama.StringEncoder(strconv.FormatUint(uint64(ev.ID), 10)),
		Value:     sarama.ByteEncoder(data),
		Timestamp: ev.OccurredAt,
	}
	if _, _, err := k.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("failed to send Kafka message: %w", err)
	}
	return nil
}

func (k *Kafka) Close() error {
	return k.producer.Close()
}
