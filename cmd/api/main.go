package main

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	pgateway "github.com/premierpredict/jackpot-core/internal/payment/gateway"
	phttp "github.com/premierpredict/jackpot-core/internal/payment/http"
	pproducer "github.com/premierpredict/jackpot-core/internal/payment/producer"
	prepo "github.com/premierpredict/jackpot-core/internal/payment/repo"
	pservice "github.com/premierpredict/jackpot-core/internal/payment/service"
	rcache "github.com/premierpredict/jackpot-core/internal/rounds/cache"
	rhttp "github.com/premierpredict/jackpot-core/internal/rounds/http"
	rproducer "github.com/premierpredict/jackpot-core/internal/rounds/producer"
	rrepo "github.com/premierpredict/jackpot-core/internal/rounds/repo"
	"github.com/premierpredict/jackpot-core/internal/shared/cache"
	"github.com/premierpredict/jackpot-core/internal/shared/config"
	"github.com/premierpredict/jackpot-core/internal/shared/db"
	"github.com/premierpredict/jackpot-core/internal/shared/kafka"
	"github.com/premierpredict/jackpot-core/internal/shared/logger"
	"github.com/premierpredict/jackpot-core/internal/shared/metrics"
	thttp "github.com/premierpredict/jackpot-core/internal/ticket/http"
	tproducer "github.com/premierpredict/jackpot-core/internal/ticket/producer"
	trepo "github.com/premierpredict/jackpot-core/internal/ticket/repo"
	tservice "github.com/premierpredict/jackpot-core/internal/ticket/service"
	whttp "github.com/premierpredict/jackpot-core/internal/wallet/http"
	wrepo "github.com/premierpredict/jackpot-core/internal/wallet/repo"
)

func main() {
	cfg := config.Load()

	// Inicializa logger estruturado
	log, err := logger.New("api", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("starting service", zap.String("env", cfg.Env))

	// Conexão com Postgres: único datastore de todos os componentes do core
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	// Redis: cache da rodada ativa no caminho de leitura
	rdb, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer rdb.Close()

	// Kafka writers por tópico
	ticketWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicTicketPlaced)
	defer ticketWriter.Close()
	roundWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicRoundClosed)
	defer roundWriter.Close()
	depositWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicDepositCredited)
	defer depositWriter.Close()

	// Repositórios
	walletRepo := wrepo.NewPostgres(pg)
	roundsRepo := rrepo.NewPostgres(pg)
	ticketRepo := trepo.NewPostgres(pg, walletRepo)
	paymentRepo := prepo.NewPostgres(pg, walletRepo)

	// Serviços do core
	roundCache := rcache.NewRoundCache(rdb, cfg.ActiveRoundCacheTTL)
	ticketSvc := tservice.New(log, ticketRepo, roundsRepo,
		tproducer.NewKafkaPublisher(ticketWriter), cfg.StakeKobo, cfg.TicketSelections)
	paymentSvc := pservice.New(log, paymentRepo,
		pgateway.New(cfg.PaystackBaseURL, cfg.PaystackSecretKey),
		pproducer.NewKafkaPublisher(depositWriter), cfg.PaystackSecretKey)

	// Rotas num mux compartilhado
	mux := http.NewServeMux()
	whttp.NewServer(log, walletRepo).Register(mux)
	rhttp.NewServer(log, roundsRepo, roundCache, rproducer.NewKafkaPublisher(roundWriter)).Register(mux)
	thttp.NewServer(log, ticketSvc, ticketRepo).Register(mux)
	phttp.NewServer(log, paymentSvc).Register(mux)

	// Toda operação tem prazo; expirar aborta a transação e devolve erro retryável
	apiSrv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: withTimeout(cfg, mux),
	}

	// Servidor de métricas e health check
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})
	log.Info("metrics/health listening", zap.String("addr", metricsSrv.Addr))

	// Inicia servidor principal da API
	log.Info("api listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api srv", zap.Error(err))
	}
}

// withTimeout limita o tempo de cada request; locks de linha não ficam presos indefinidamente
func withTimeout(cfg config.Config, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), cfg.OperationTimeout)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
