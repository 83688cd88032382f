package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	kafkaGo "github.com/segmentio/kafka-go"
)

type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisSink publishes JSON instructions on a Redis pub/sub channel.
type RedisSink struct {
	client  publisher
	channel string
}

// NewRedisSink constructs a Redis sink.
func NewRedisSink(client publisher, channel string) *RedisSink {
	return &RedisSink{client: client, channel: channel}
}

// Send publishes the instruction.
func (s *RedisSink) Send(ctx context.Context, ins Instruction) error {
	payload, err := json.Marshal(ins)
	if err != nil {
		return fmt.Errorf("marshal instruction: %w", err)
	}
	if err := s.client.Publish(ctx, s.channel, payload).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", s.channel, err)
	}
	return nil
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkaGo.Message) error
	Close() error
}

// KafkaSink writes JSON instructions to a Kafka topic keyed by applicant.
type KafkaSink struct {
	writer messageWriter
}

// NewKafkaSink builds a sink over a kafka-go writer.
func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	return &KafkaSink{writer: &kafkaGo.Writer{
		Addr:                   kafkaGo.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkaGo.Hash{},
		AllowAutoTopicCreation: true,
	}}
}

// Send writes the instruction.
func (s *KafkaSink) Send(ctx context.Context, ins Instruction) error {
	value, err := json.Marshal(ins)
	if err != nil {
		return fmt.Errorf("marshal instruction: %w", err)
	}
	msg := kafkaGo.Message{
		Key:   []byte(ins.ApplicantID),
		Value: value,
		Headers: []kafkaGo.Header{
			{Key: "kind", Value: []byte(ins.Kind)},
		},
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

// Close flushes and closes the writer.
func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
