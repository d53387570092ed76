package queue

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/gradix/gradix/internal/repository"
)

// Message is a broker delivery with its acknowledgement hooks.
type Message struct {
	Body      []byte
	Timestamp time.Time
	Ack       func(multiple bool) error
	Nack      func(multiple bool, requeue bool) error
}

type Consumer interface {
	Consume(ctx context.Context) (<-chan Message, error)
	Close() error
}

type consumer struct {
	broker      repository.RabbitMQRepository
	queue       string
	consumerTag string
	prefetch    int
	logger      zerolog.Logger
}

func NewConsumer(broker repository.RabbitMQRepository, queue, consumerTag string, prefetch int, logger zerolog.Logger) Consumer {
	return &consumer{
		broker:      broker,
		queue:       queue,
		consumerTag: consumerTag,
		prefetch:    prefetch,
		logger:      logger,
	}
}

func (c *consumer) Consume(ctx context.Context) (<-chan Message, error) {
	deliveries, err := c.broker.Consume(ctx, c.queue, c.consumerTag, c.prefetch)
	if err != nil {
		return nil, err
	}

	output := make(chan Message)

	go func() {
		defer close(output)

		for {
			select {
			case <-ctx.Done():
				c.logger.Info().Msg("Stopping queue consumer")
				return
			case msg, ok := <-deliveries:
				if !ok {
					c.logger.Warn().Msg("Delivery channel closed")
					return
				}

				out := Message{
					Body:      msg.Body,
					Timestamp: msg.Timestamp,
					Ack:       msg.Ack,
					Nack:      msg.Nack,
				}

				select {
				case output <- out:
				case <-ctx.Done():
					msg.Nack(false, true)
					return
				}
			}
		}
	}()

	c.logger.Info().
		Str("queue", c.queue).
		Str("consumer_tag", c.consumerTag).
		Msg("Queue consumer started")

	return output, nil
}

func (c *consumer) Close() error {
	c.logger.Info().Msg("Queue consumer closed")
	return nil
}
