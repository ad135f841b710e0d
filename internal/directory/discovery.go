package directory

import (
	"bytes"
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/HaritsAcheiz/kontakte-extractor/internal/models"
)

// Categories fetches the landing page of location and returns the category
// links found on it, in document order.
func (c *Client) Categories(ctx context.Context, location string) ([]models.CategoryLink, error) {
	pageURL, err := c.LocationURL(location)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Get(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}

	base, err := url.Parse(resp.FinalURL)
	if err != nil {
		return nil, eris.Wrap(err, "directory: parse final url")
	}
	links, err := parseCategories(resp.Body, base)
	if err != nil {
		return nil, err
	}
	zap.L().Info("discovered categories",
		zap.String("location", location),
		zap.String("url", pageURL),
		zap.Int("categories", len(links)),
	)
	return links, nil
}

func parseCategories(body []byte, base *url.URL) ([]models.CategoryLink, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "directory: parse landing page")
	}
	var links []models.CategoryLink
	doc.Find(categorySelector).Each(func(i int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			zap.L().Debug("skipping bad category href", zap.String("href", href), zap.Error(err))
			return
		}
		links = append(links, models.CategoryLink(base.ResolveReference(ref).String()))
	})
	return links, nil
}
