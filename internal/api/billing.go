package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Balance fetches the current account balance.
func (c *Client) Balance(ctx context.Context) (*UserCredits, error) {
	var credits UserCredits
	if err := c.do(ctx, http.MethodGet, "/billing/balance", nil, nil, &credits, true); err != nil {
		return nil, err
	}
	return &credits, nil
}

// Pricing fetches the per-minute sandbox pricing. This endpoint is
// public; no bearer token is required.
func (c *Client) Pricing(ctx context.Context) (*PricingInfo, error) {
	var pricing PricingInfo
	if err := c.do(ctx, http.MethodGet, "/billing/pricing", nil, nil, &pricing, false); err != nil {
		return nil, err
	}
	return &pricing, nil
}

// CreateDeposit starts a Stripe checkout session for the given amount.
func (c *Client) CreateDeposit(ctx context.Context, amountCents int64) (*DepositResponse, error) {
	req := DepositRequest{AmountCents: amountCents, Currency: "usd"}
	var resp DepositResponse
	if err := c.do(ctx, http.MethodPost, "/billing/deposit", nil, req, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UsageHistory fetches the paginated transaction ledger.
func (c *Client) UsageHistory(ctx context.Context, page, limit int) (*UsageHistory, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))

	var history UsageHistory
	if err := c.do(ctx, http.MethodGet, "/billing/usage", query, nil, &history, true); err != nil {
		return nil, err
	}
	return &history, nil
}
