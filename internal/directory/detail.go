package directory

import (
	"context"

	"go.uber.org/zap"

	"github.com/HaritsAcheiz/kontakte-extractor/internal/crawler"
	"github.com/HaritsAcheiz/kontakte-extractor/internal/models"
)

// FetchDetails fetches the raw markup of every detail link concurrently.
// Outcomes come back in the order of links.
func (c *Client) FetchDetails(ctx context.Context, links []string) []models.Outcome[models.DetailPage] {
	zap.L().Info("fetching detail pages", zap.Int("pages", len(links)))
	return crawler.Gather(ctx, c.concurrency, links, c.FetchDetail)
}

// FetchDetail fetches one detail page. Any non-2xx status is an error.
func (c *Client) FetchDetail(ctx context.Context, link string) (models.DetailPage, error) {
	resp, err := c.client.Post(ctx, link)
	if err != nil {
		return models.DetailPage{}, err
	}
	if err := resp.Err(); err != nil {
		return models.DetailPage{}, err
	}
	return models.DetailPage{URL: link, ContentType: resp.ContentType, Body: resp.Body}, nil
}
