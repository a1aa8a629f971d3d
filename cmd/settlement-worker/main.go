package main

import (
	"context"

	"go.uber.org/zap"

	sproducer "github.com/premierpredict/jackpot-core/internal/settlement/producer"
	srepo "github.com/premierpredict/jackpot-core/internal/settlement/repo"
	sservice "github.com/premierpredict/jackpot-core/internal/settlement/service"
	"github.com/premierpredict/jackpot-core/internal/settlement/worker"
	"github.com/premierpredict/jackpot-core/internal/shared/config"
	"github.com/premierpredict/jackpot-core/internal/shared/db"
	"github.com/premierpredict/jackpot-core/internal/shared/kafka"
	"github.com/premierpredict/jackpot-core/internal/shared/logger"
	"github.com/premierpredict/jackpot-core/internal/shared/metrics"
)

func main() {
	cfg := config.Load()

	log, err := logger.New("settlement-worker", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Conexão com banco: leitura de seleções/resultados e gravação de vereditos
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	// Kafka consumer: eventos round_closed disparam a liquidação da rodada
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicRoundClosed, "settlement")
	defer reader.Close()

	// Kafka producer: ticket_settled para consumidores downstream (premiação etc.)
	settledWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicTicketSettled)
	defer settledWriter.Close()

	var dlqWriter *kafka.Writer
	if cfg.TopicRoundClosedDLQ != "" {
		dlqWriter = kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicRoundClosedDLQ)
		defer dlqWriter.Close()
	}

	svc := sservice.New(log, srepo.NewPostgres(pg), sproducer.NewKafkaPublisher(settledWriter))

	// Servidor de métricas e health check
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})
	log.Info("metrics/health listening", zap.String("addr", metricsSrv.Addr))

	log.Info("settlement-worker started", zap.String("consume", cfg.TopicRoundClosed))

	w := &worker.Worker{
		Log:        log,
		Reader:     reader,
		Settler:    svc,
		DLQ:        dlqWriter,
		OnConsumed: metrics.RoundClosedConsumed.Inc,
		OnError: func(stage string) {
			metrics.SettlementWorkerErrors.WithLabelValues(stage).Inc()
		},
	}
	if err := w.Run(context.Background()); err != nil {
		log.Fatal("worker stopped", zap.Error(err))
	}
}
