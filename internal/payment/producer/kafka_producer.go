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

func (p *KafkaPublisher) PublishDepositCredited(ctx context.Context, e events.DepositCredited) error {
	b, _ := json.Marshal(e)
	return kafka.WriteJSON(ctx, p.Writer, e.Reference, b)
}
