package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/HaritsAcheiz/kontakte-extractor/internal/crawler"
	"github.com/HaritsAcheiz/kontakte-extractor/internal/models"
)

// MissingFieldError reports a listing response without a field the run
// depends on.
type MissingFieldError struct {
	URL   string
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: missing field %q", e.URL, e.Field)
}

// decodeResults parses a listing body and returns its "results" object.
// Only invalid JSON is an error; any other shape yields ok=false.
func decodeResults(body []byte) (results map[string]any, ok bool, err error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false, err
	}
	top, _ := v.(map[string]any)
	results, ok = top["results"].(map[string]any)
	return results, ok, nil
}

// pageCount reads a numeric or numeric-string totalPages.
func pageCount(v any) (int, bool) {
	var raw string
	switch t := v.(type) {
	case json.Number:
		raw = t.String()
	case string:
		raw = t
	default:
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	return n, err == nil
}

// ProbePages asks each category for its first listing page and records the
// total page count. Categories are probed one after another; the first
// failure aborts the probe.
func (c *Client) ProbePages(ctx context.Context, links []models.CategoryLink) ([]models.CategoryPages, error) {
	out := make([]models.CategoryPages, 0, len(links))
	for _, link := range links {
		u, err := ListingURL(string(link), 1)
		if err != nil {
			return nil, err
		}
		resp, err := c.client.Post(ctx, u)
		if err != nil {
			return nil, err
		}
		if err := resp.Err(); err != nil {
			return nil, err
		}
		total, err := decodeTotalPages(u, resp.Body)
		if err != nil {
			return nil, err
		}
		zap.L().Debug("probed category", zap.String("category", string(link)), zap.Int("total_pages", total))
		out = append(out, models.CategoryPages{Link: link, TotalPages: total})
	}
	return out, nil
}

func decodeTotalPages(u string, body []byte) (int, error) {
	results, ok, err := decodeResults(body)
	if err != nil {
		return 0, eris.Wrapf(err, "directory: decode listing %s", u)
	}
	if !ok {
		return 0, &MissingFieldError{URL: u, Field: "results.totalPages"}
	}
	n, ok := pageCount(results["totalPages"])
	if !ok {
		return 0, &MissingFieldError{URL: u, Field: "results.totalPages"}
	}
	return n, nil
}

// ListingURLs expands every category into one listing URL per page,
// 1..TotalPages inclusive, category by category.
func ListingURLs(pages []models.CategoryPages) ([]string, error) {
	var urls []string
	for _, p := range pages {
		for i := 1; i <= p.TotalPages; i++ {
			u, err := ListingURL(string(p.Link), i)
			if err != nil {
				return nil, err
			}
			urls = append(urls, u)
		}
	}
	return urls, nil
}

// FetchListings fetches every listing page of every category concurrently.
// Outcomes come back in the order of ListingURLs.
func (c *Client) FetchListings(ctx context.Context, pages []models.CategoryPages) ([]models.Outcome[models.ListingPage], error) {
	urls, err := ListingURLs(pages)
	if err != nil {
		return nil, err
	}
	zap.L().Info("fetching listing pages", zap.Int("categories", len(pages)), zap.Int("pages", len(urls)))
	return crawler.Gather(ctx, c.concurrency, urls, c.fetchListing), nil
}

func (c *Client) fetchListing(ctx context.Context, u string) (models.ListingPage, error) {
	resp, err := c.client.Post(ctx, u)
	if err != nil {
		return models.ListingPage{}, err
	}
	switch resp.StatusCode {
	case http.StatusOK:
		return decodeListing(u, resp.Body)
	case http.StatusNotFound:
		return models.ListingPage{NotFound: true}, nil
	default:
		return models.ListingPage{}, &crawler.HTTPError{Method: resp.Method, URL: u, StatusCode: resp.StatusCode}
	}
}

// decodeListing is lenient: a body without a results object, or with an
// item that has no string detailLink, yields a page without items. Relative
// detail links are resolved against u.
func decodeListing(u string, body []byte) (models.ListingPage, error) {
	results, ok, err := decodeResults(body)
	if err != nil {
		return models.ListingPage{}, eris.Wrapf(err, "directory: decode listing %s", u)
	}
	var page models.ListingPage
	if !ok {
		zap.L().Debug("listing without results", zap.String("url", u))
		return page, nil
	}
	page.TotalPages, _ = pageCount(results["totalPages"])

	raw, _ := results["items"].([]any)
	base, _ := url.Parse(u)
	items := make([]models.ListingItem, 0, len(raw))
	for _, it := range raw {
		obj, _ := it.(map[string]any)
		link, ok := obj["detailLink"].(string)
		if !ok {
			zap.L().Debug("listing item without detailLink", zap.String("url", u))
			return page, nil
		}
		items = append(items, models.ListingItem{DetailLink: resolveLink(base, link)})
	}
	page.Items = items
	return page, nil
}

func resolveLink(base *url.URL, link string) string {
	if base == nil {
		return link
	}
	ref, err := url.Parse(link)
	if err != nil {
		return link
	}
	return base.ResolveReference(ref).String()
}

// AggregateLinks flattens the detail links of all listing outcomes in order.
// Failed and not-found listings contribute nothing. Duplicates are kept.
func AggregateLinks(outcomes []models.Outcome[models.ListingPage]) []string {
	var links []string
	for _, o := range outcomes {
		if o.Err != nil || o.Value.NotFound {
			continue
		}
		for _, it := range o.Value.Items {
			links = append(links, it.DetailLink)
		}
	}
	return links
}
