package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"time"
)

const DefaultAuctionDuration = 3 * time.Minute

// HTTPProvider fetches quotes from an external pricing service.
type HTTPProvider struct {
	client *http.Client
	url    string
}

func NewHTTPProvider(baseURL string) *HTTPProvider {
	return &HTTPProvider{
		client: new(http.Client),
		url:    baseURL,
	}
}

type quoteResponse struct {
	DestinationAmount string `json:"destination_amount"`
	Auction           *struct {
		StartAmount     string `json:"start_amount"`
		FloorAmount     string `json:"floor_amount"`
		DurationSeconds int64  `json:"duration_seconds"`
	} `json:"auction"`
}

func (p *HTTPProvider) Quote(ctx context.Context, pair Pair, sourceAmount *big.Int) (Quote, error) {
	values := url.Values{}
	values.Set("source_chain", string(pair.SourceChain))
	values.Set("destination_chain", string(pair.DestinationChain))
	values.Set("source_asset", string(pair.SourceAsset))
	values.Set("destination_asset", string(pair.DestinationAsset))
	values.Set("amount", sourceAmount.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/quote?%s", p.url, values.Encode()), nil)
	if err != nil {
		return Quote{}, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return Quote{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Quote{}, fmt.Errorf("quote service returned %v", resp.StatusCode)
	}

	var body quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Quote{}, err
	}

	amount, ok := new(big.Int).SetString(body.DestinationAmount, 10)
	if !ok {
		return Quote{}, fmt.Errorf("malformed destination amount %q", body.DestinationAmount)
	}
	q := Quote{DestinationAmount: amount}
	if body.Auction != nil {
		start, ok := new(big.Int).SetString(body.Auction.StartAmount, 10)
		if !ok {
			return Quote{}, fmt.Errorf("malformed auction start amount %q", body.Auction.StartAmount)
		}
		floor, ok := new(big.Int).SetString(body.Auction.FloorAmount, 10)
		if !ok {
			return Quote{}, fmt.Errorf("malformed auction floor amount %q", body.Auction.FloorAmount)
		}
		duration := time.Duration(body.Auction.DurationSeconds) * time.Second
		if duration <= 0 {
			duration = DefaultAuctionDuration
		}
		q.Auction = &Auction{StartAmount: start, FloorAmount: floor, Duration: duration}
	}
	return q, nil
}
