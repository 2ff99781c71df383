package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/MIgor26/explore-with-me/stats-service/internal/models"
	"github.com/MIgor26/explore-with-me/stats-service/internal/service"
	"github.com/MIgor26/explore-with-me/stats-service/pkg/statsclient"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Acknowledger is the part of amqp.Delivery the consumer settles messages with.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

type HitConsumer struct {
	svc     service.StatsService
	timeout time.Duration
}

func NewHitConsumer(svc service.StatsService) *HitConsumer {
	return &HitConsumer{svc: svc, timeout: 5 * time.Second}
}

// Start stores hits published by the main service until msgs is closed.
func (hc *HitConsumer) Start(msgs <-chan amqp.Delivery) {
	go func() {
		for msg := range msgs {
			hc.handle(msg.Body, &msg)
		}
		log.Println("[HitConsumer] channel closed, stopping consumer")
	}()
}

func (hc *HitConsumer) handle(body []byte, ack Acknowledger) {
	var dto statsclient.EndpointHit
	if err := json.Unmarshal(body, &dto); err != nil {
		log.Printf("[HitConsumer] failed to unmarshal: %v", err)
		ack.Nack(false, false)
		return
	}

	hit := &models.EndpointHit{
		App:       dto.App,
		URI:       dto.URI,
		IP:        dto.IP,
		Timestamp: dto.Timestamp.Time,
	}

	ctx, cancel := context.WithTimeout(context.Background(), hc.timeout)
	defer cancel()

	if err := hc.svc.AddHit(ctx, hit); err != nil {
		if errors.Is(err, service.ErrValidation) {
			log.Printf("[HitConsumer] dropping invalid hit: %v", err)
			ack.Nack(false, false)
			return
		}
		log.Printf("[HitConsumer] failed to store hit %s: %v", dto.URI, err)
		ack.Nack(false, true) // requeue
		return
	}

	ack.Ack(false)
}
