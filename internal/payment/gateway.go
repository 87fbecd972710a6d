package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mllanos/park-ticket-orders/internal/domain"
)

// Gateway starts card flows against the external checkout provider. The
// provider returns an opaque redirect handle; no charge happens here.
type Gateway struct {
	baseURL string
	client  *http.Client
}

func NewGateway(baseURL string) *Gateway {
	return &Gateway{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type preferenceRequest struct {
	ExternalReference string  `json:"external_reference"`
	Amount            float64 `json:"amount"`
	Currency          string  `json:"currency"`
}

type preferenceResponse struct {
	InitPoint string `json:"init_point"`
}

func (g *Gateway) StartCardFlow(ctx context.Context, order domain.Order) (string, error) {
	currency := ""
	if len(order.Lines) > 0 {
		currency = order.Lines[0].Price.Currency
	}
	body, err := json.Marshal(preferenceRequest{
		ExternalReference: order.ID.String(),
		Amount:            order.Total,
		Currency:          currency,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/checkout/preferences", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "checkout preference request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", errors.Newf("checkout preference: unexpected status %d", resp.StatusCode)
	}

	var pref preferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&pref); err != nil {
		return "", errors.Wrap(err, "decode checkout preference")
	}
	if pref.InitPoint == "" {
		return "", errors.New("checkout preference: empty init_point")
	}
	return pref.InitPoint, nil
}
