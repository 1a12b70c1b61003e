package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/operadash/betting-ops-core/internal/game"
	"github.com/operadash/betting-ops-core/internal/stats"
)

// Client consulta o backend da plataforma, dono autoritativo dos pedidos e
// das estatísticas pré-agregadas. Usado para conferir os agregados
// recomputados localmente.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(base string) *Client {
	return &Client{
		BaseURL: base,
		HTTP:    &http.Client{Timeout: 2 * time.Second},
	}
}

// GetBettingStatistics busca as estatísticas pré-agregadas do backend para
// um escopo (cliente + família + estilo de jogada).
func (c *Client) GetBettingStatistics(ctx context.Context, customerID string, f stats.Filter) (stats.Statistics, error) {
	q := url.Values{}
	if f.Family != "" {
		q.Set("gameType", string(f.Family))
	}
	if f.PlayStyle != "" {
		q.Set("gamePlayStyle", string(f.PlayStyle))
	}
	u := c.BaseURL + "/v1/customers/" + url.PathEscape(customerID) + "/statistics"
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return stats.Statistics{}, err
	}
	res, err := c.HTTP.Do(req)
	if err != nil {
		return stats.Statistics{}, err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return stats.Statistics{}, fmt.Errorf("platform statistics http %d", res.StatusCode)
	}

	var out stats.Statistics
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return stats.Statistics{}, err
	}
	return out, nil
}

// GetBettingHistory busca uma página de pedidos direto do backend.
// Caminho alternativo ao Postgres de leitura, usado em ambientes sem réplica.
func (c *Client) GetBettingHistory(ctx context.Context, customerID string, family game.GameFamily, page, limit int) ([]game.Order, int, error) {
	q := url.Values{}
	if family != "" {
		q.Set("gameType", string(family))
	}
	q.Set("page", fmt.Sprint(page))
	q.Set("limit", fmt.Sprint(limit))
	u := c.BaseURL + "/v1/customers/" + url.PathEscape(customerID) + "/orders?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, err
	}
	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return nil, 0, fmt.Errorf("platform history http %d", res.StatusCode)
	}

	var out struct {
		Data  []game.Order `json:"data"`
		Total int          `json:"total"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, 0, err
	}
	return out.Data, out.Total, nil
}
