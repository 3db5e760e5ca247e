package kafka

import "time"

// ProducerConfig holds configuration for the Kafka producer.
type ProducerConfig struct {
	Brokers         string
	Acks            string
	Retries         int
	DeliveryTimeout time.Duration
}

// DefaultProducerConfig returns durable defaults: all in-sync replicas must ack.
func DefaultProducerConfig(brokers string) ProducerConfig {
	return ProducerConfig{
		Brokers:         brokers,
		Acks:            "all",
		Retries:         3,
		DeliveryTimeout: 30 * time.Second,
	}
}
