package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/premierpredict/jackpot-core/internal/rounds/repo"
)

// RoundCache guarda a rodada ativa com seus jogos no Redis
// Client: cliente Redis
// TTL: tempo de expiração do registro
type RoundCache struct {
	Client *redis.Client
	TTL    time.Duration
}

// NewRoundCache cria o cache da rodada ativa com TTL configurável
func NewRoundCache(c *redis.Client, ttl time.Duration) *RoundCache {
	return &RoundCache{Client: c, TTL: ttl}
}

const activeKey = "round:active"

// Get retorna a rodada ativa do cache; ok=false quando frio ou ilegível
func (r *RoundCache) Get(ctx context.Context) (*repo.RoundWithMatches, bool) {
	b, err := r.Client.Get(ctx, activeKey).Bytes()
	if err != nil {
		return nil, false
	}
	var rwm repo.RoundWithMatches
	if err := json.Unmarshal(b, &rwm); err != nil {
		return nil, false
	}
	return &rwm, true
}

// Set armazena a rodada ativa no Redis com o TTL definido
func (r *RoundCache) Set(ctx context.Context, rwm *repo.RoundWithMatches) error {
	b, err := json.Marshal(rwm)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, activeKey, b, r.TTL).Err()
}

// Invalidate descarta o cache; chamada após ativar, encerrar ou gravar resultado
func (r *RoundCache) Invalidate(ctx context.Context) error {
	return r.Client.Del(ctx, activeKey).Err()
}
