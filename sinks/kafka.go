package sinks

import (
	"crypto/sha256"
	"crypto/sha512"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/xdg-go/scram"

	"github.com/corelogio/corelog/core"
	"github.com/corelogio/corelog/internal/formatters"
)

// KafkaOptions configures the Kafka delivery sink.
type KafkaOptions struct {
	Brokers []string
	Topic   string

	// SASL/SCRAM credentials. Auth is skipped when Username is empty.
	Username string
	Password string
	// SHA512 selects SCRAM-SHA-512 instead of the default SCRAM-SHA-256.
	SHA512 bool

	Batched BatchedOptions
}

// scramClient adapts xdg-go/scram's conversation state machine to
// sarama.SCRAMClient.
type scramClient struct {
	*scram.Client
	*scram.ClientConversation
	scram.HashGeneratorFcn
}

func (c *scramClient) Begin(userName, password, authzID string) error {
	client, err := c.HashGeneratorFcn.NewClient(userName, password, authzID)
	if err != nil {
		return err
	}
	c.Client = client
	c.ClientConversation = c.Client.NewConversation()
	return nil
}

func (c *scramClient) Step(challenge string) (string, error) {
	return c.ClientConversation.Step(challenge)
}

func (c *scramClient) Done() bool {
	return c.ClientConversation.Done()
}

// NewKafkaSink builds a sink that delivers formatted entries as Kafka
// messages. Delivery uses a sarama SyncProducer (batched send, retried by
// the BatchedSink wrapper) and is formatted with CLEF by default — the
// compact, single-line shape Kafka consumers generally expect.
func NewKafkaSink(opts KafkaOptions) (*KafkaSink, error) {
	return NewKafkaSinkWithFormatter(opts, formatters.NewCLEF())
}

// KafkaSink is a BatchedSink whose Close also shuts down the underlying
// sarama producer.
type KafkaSink struct {
	*BatchedSink
	producer sarama.SyncProducer
}

// Close flushes any buffered entries, then closes the sarama producer.
func (k *KafkaSink) Close() error {
	if err := k.BatchedSink.Close(); err != nil {
		return err
	}
	return k.producer.Close()
}

func NewKafkaSinkWithFormatter(opts KafkaOptions, formatter core.Formatter) (*KafkaSink, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForLocal

	if opts.Username != "" {
		cfg.Net.SASL.Enable = true
		cfg.Net.SASL.User = opts.Username
		cfg.Net.SASL.Password = opts.Password
		cfg.Net.SASL.Handshake = true
		if opts.SHA512 {
			cfg.Net.SASL.Mechanism = sarama.SASLTypeSCRAMSHA512
			cfg.Net.SASL.SCRAMClientGeneratorFunc = func() sarama.SCRAMClient {
				return &scramClient{HashGeneratorFcn: scram.HashGeneratorFcn(sha512.New)}
			}
		} else {
			cfg.Net.SASL.Mechanism = sarama.SASLTypeSCRAMSHA256
			cfg.Net.SASL.SCRAMClientGeneratorFunc = func() sarama.SCRAMClient {
				return &scramClient{HashGeneratorFcn: scram.HashGeneratorFcn(sha256.New)}
			}
		}
	}

	producer, err := sarama.NewSyncProducer(opts.Brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("corelog: kafka producer: %w", err)
	}

	writeBatch := func(batch []*core.LogEntry) error {
		msgs := make([]*sarama.ProducerMessage, len(batch))
		for i, entry := range batch {
			msgs[i] = &sarama.ProducerMessage{
				Topic: opts.Topic,
				Value: sarama.StringEncoder(formatter.Format(entry)),
			}
		}
		return producer.SendMessages(msgs)
	}

	sink := NewBatchedSink(opts.Batched, writeBatch)
	return &KafkaSink{BatchedSink: sink, producer: producer}, nil
}
