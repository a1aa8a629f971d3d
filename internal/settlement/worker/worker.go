package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/premierpredict/jackpot-core/internal/settlement/repo"
	"github.com/premierpredict/jackpot-core/pkg/contracts/events"
)

// Settler é a superfície do serviço de liquidação usada pelo worker.
type Settler interface {
	Settle(ctx context.Context, ticketID string) (*repo.Outcome, error)
	SettleRound(ctx context.Context, roundID string) (int, error)
}

// Worker consome round_closed do Kafka e liquida os tickets pendentes da rodada
// Mensagens indecifráveis vão para a DLQ; erro de banco gera retry com backoff
type Worker struct {
	Log     *zap.Logger
	Reader  *kafka.Reader
	Settler Settler
	DLQ     *kafka.Writer // opcional

	OnConsumed func()       // métricas (counter++)
	OnError    func(string) // métricas por fase
}

// Run inicia o loop principal de consumo e liquidação
func (w *Worker) Run(ctx context.Context) error {
	for {
		m, err := w.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			w.Log.Warn("kafka read failed", zap.Error(err))
			if w.OnError != nil {
				w.OnError("read")
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if w.OnConsumed != nil {
			w.OnConsumed()
		}

		var ev events.RoundClosed
		if err := json.Unmarshal(m.Value, &ev); err != nil || ev.RoundID == "" {
			w.Log.Warn("invalid round_closed message", zap.Error(err))
			if w.OnError != nil {
				w.OnError("decode")
			}
			w.toDLQ(ctx, m)
			continue
		}

		n, err := w.Settler.SettleRound(ctx, ev.RoundID)
		if err != nil {
			// liquidação é idempotente: reprocessar a mesma rodada é seguro
			w.Log.Error("settle round failed", zap.String("roundId", ev.RoundID), zap.Int("settled", n), zap.Error(err))
			if w.OnError != nil {
				w.OnError("settle")
			}
			time.Sleep(time.Second)
			continue
		}

		w.Log.Info("round settled", zap.String("roundId", ev.RoundID), zap.Int("tickets", n))
	}
}

func (w *Worker) toDLQ(ctx context.Context, m kafka.Message) {
	if w.DLQ == nil {
		return
	}
	if err := w.DLQ.WriteMessages(ctx, kafka.Message{Key: m.Key, Value: m.Value, Time: time.Now()}); err != nil {
		w.Log.Error("dlq write failed", zap.Error(err))
	}
}
