package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client fala com a API REST do Paystack
type Client struct {
	BaseURL string
	Secret  string
	HTTP    *http.Client
}

func New(baseURL, secret string) *Client {
	return &Client{
		BaseURL: baseURL,
		Secret:  secret,
		HTTP:    &http.Client{Timeout: 5 * time.Second},
	}
}

// VerifyData é o recorte da resposta de verificação que interessa ao core.
type VerifyData struct {
	Reference  string
	Status     string // "success" quando o pagamento confirmou
	AmountKobo int64
	AccountID  string // vem no metadata enviado na inicialização
}

type verifyResponse struct {
	Status bool `json:"status"`
	Data   struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
		Amount    int64  `json:"amount"`
		Metadata  struct {
			AccountID string `json:"account_id"`
		} `json:"metadata"`
	} `json:"data"`
}

// VerifyTransaction consulta o status real da transação no gateway
// É o oráculo de verdade do caminho síncrono (retorno do pagador)
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*VerifyData, error) {
	url := fmt.Sprintf("%s/transaction/verify/%s", c.BaseURL, reference)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.Secret)

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return nil, fmt.Errorf("paystack verify http %d", res.StatusCode)
	}

	var out verifyResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, err
	}

	return &VerifyData{
		Reference:  out.Data.Reference,
		Status:     out.Data.Status,
		AmountKobo: out.Data.Amount,
		AccountID:  out.Data.Metadata.AccountID,
	}, nil
}
