// Package directory talks to the business directory site: it discovers the
// categories of a location, probes their page counts, fetches the ajax
// listing pages and the business detail pages.
package directory

import (
	"fmt"
	"net/url"

	"github.com/rotisserie/eris"

	"github.com/HaritsAcheiz/kontakte-extractor/internal/crawler"
)

const (
	categorySelector = `a[data-component="iconTile"]`
	listingQuery     = "service=ajaxPoiCategory&sort=distance&page=%d&size=20&radius=30&offset=0&orderBy=distance&userModified=true"
)

type Client struct {
	client      *crawler.HTTPClient
	baseURL     *url.URL
	concurrency int
}

// New returns a Client for the directory at baseURL. concurrency caps the
// in-flight requests of each listing or detail batch.
func New(client *crawler.HTTPClient, baseURL string, concurrency int) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, eris.Errorf("directory: invalid base url %q", baseURL)
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Client{client: client, baseURL: u, concurrency: concurrency}, nil
}

// LocationURL joins location onto the base URL.
func (c *Client) LocationURL(location string) (string, error) {
	ref, err := url.Parse(location)
	if err != nil {
		return "", eris.Wrapf(err, "directory: invalid location %q", location)
	}
	return c.baseURL.ResolveReference(ref).String(), nil
}

// ListingURL returns the ajax listing URL for one page of a category. Any
// query already on the category link is replaced.
func ListingURL(link string, page int) (string, error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", eris.Wrapf(err, "directory: invalid category link %q", link)
	}
	u.RawQuery = fmt.Sprintf(listingQuery, page)
	u.Fragment = ""
	return u.String(), nil
}
