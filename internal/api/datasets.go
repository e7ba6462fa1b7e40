package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Datasets lists the available dataset catalog. The backend returns a
// bare JSON array, not an envelope.
func (c *Client) Datasets(ctx context.Context) ([]Dataset, error) {
	var datasets []Dataset
	if err := c.do(ctx, http.MethodGet, "/datasets", nil, nil, &datasets, true); err != nil {
		return nil, err
	}
	return datasets, nil
}

// Samples fetches one page of samples from a dataset, optionally
// filtered by a search term matched against sample ids.
func (c *Client) Samples(ctx context.Context, dataset, search string, page, pageSize int) (*SamplePage, error) {
	query := url.Values{}
	query.Set("dataset", dataset)
	query.Set("page", strconv.Itoa(page))
	query.Set("page_size", strconv.Itoa(pageSize))
	if search != "" {
		query.Set("search", search)
	}

	var resp SamplePage
	if err := c.do(ctx, http.MethodGet, "/samples", query, nil, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}
