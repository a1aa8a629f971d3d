package producer

import (
	"context"
	"encoding/json"

	"github.com/premierpredict/jackpot-core/internal/shared/kafka"
	"github.com/premierpredict/jackpot-core/pkg/contracts/events"
)

type KafkaPublisher struct {
	Writer *kafka.Writer
}

func NewKafkaPublisher(w *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{Writer: w}
}

func (p *KafkaPublisher) PublishTicketSettled(ctx context.Context, e events.TicketSettled) error {
	b, _ := json.Marshal(e)
	return kafka.WriteJSON(ctx, p.Writer, e.TicketID, b)
}
