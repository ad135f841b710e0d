// Package pipeline runs one extraction job: category discovery, page-count
// probing, listing and detail fetches, record extraction and export.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/HaritsAcheiz/kontakte-extractor/internal/classifier"
	"github.com/HaritsAcheiz/kontakte-extractor/internal/config"
	"github.com/HaritsAcheiz/kontakte-extractor/internal/crawler"
	"github.com/HaritsAcheiz/kontakte-extractor/internal/directory"
	"github.com/HaritsAcheiz/kontakte-extractor/internal/ioformats"
	"github.com/HaritsAcheiz/kontakte-extractor/internal/models"
	"github.com/HaritsAcheiz/kontakte-extractor/internal/parser"
)

// Stage names used in failures and logs.
const (
	StageListing = "listing"
	StageDetail  = "detail"
	StageExtract = "extract"
)

// Source is the part of the directory client the pipeline drives.
type Source interface {
	Categories(ctx context.Context, location string) ([]models.CategoryLink, error)
	ProbePages(ctx context.Context, links []models.CategoryLink) ([]models.CategoryPages, error)
	FetchListings(ctx context.Context, pages []models.CategoryPages) ([]models.Outcome[models.ListingPage], error)
	FetchDetails(ctx context.Context, links []string) []models.Outcome[models.DetailPage]
}

// Options tune a Pipeline.
type Options struct {
	// Strict aborts on the first failed listing, detail or extraction item.
	Strict bool
}

type Pipeline struct {
	src        Source
	extractor  *parser.Extractor
	classifier *classifier.Classifier
	opts       Options
}

// Result is the outcome of one job.
type Result struct {
	RunID        string           `json:"runId"`
	Location     string           `json:"location,omitempty"`
	Categories   int              `json:"categories"`
	ListingPages int              `json:"listingPages"`
	DetailLinks  int              `json:"detailLinks"`
	Schema       []string         `json:"schema"`
	Records      []models.Record  `json:"records"`
	Failures     []models.Failure `json:"failures,omitempty"`
	Labels       map[string]int   `json:"labels"`
	Elapsed      time.Duration    `json:"elapsedNs"`
}

func New(src Source, extractor *parser.Extractor, opts Options) *Pipeline {
	return &Pipeline{
		src:        src,
		extractor:  extractor,
		classifier: classifier.New(),
		opts:       opts,
	}
}

// NewFromConfig wires the HTTP client, directory client, template schema and
// extractor from cfg. The template is read here, once.
func NewFromConfig(cfg *config.Config) (*Pipeline, error) {
	hc := crawler.NewHTTPClient(crawler.Options{
		UserAgent:  cfg.Fetch.UserAgent,
		Timeout:    cfg.Fetch.Timeout(),
		SizeCap:    cfg.Fetch.MaxBodyBytes,
		RatePerSec: cfg.Fetch.RatePerSec,
	})
	dir, err := directory.New(hc, cfg.Directory.BaseURL, cfg.Fetch.Concurrency)
	if err != nil {
		return nil, err
	}
	schema, err := ioformats.LoadTemplate(cfg.Export.TemplatePath, firstRune(cfg.Export.TemplateDelimiter))
	if err != nil {
		return nil, err
	}
	ex := parser.New(schema, parser.DefaultRules(cfg.Directory.Country))
	return New(dir, ex, Options{Strict: cfg.Fetch.Strict}), nil
}

// Collect runs every stage for location and returns the records without
// writing them anywhere. Discovery and probe failures are always fatal.
func (p *Pipeline) Collect(ctx context.Context, location string) (*Result, error) {
	res := p.newResult()
	res.Location = location
	log := zap.L().With(zap.String("run_id", res.RunID), zap.String("location", location))
	start := time.Now()

	links, err := p.src.Categories(ctx, location)
	if err != nil {
		return nil, eris.Wrap(err, "category discovery")
	}
	res.Categories = len(links)

	pages, err := p.src.ProbePages(ctx, links)
	if err != nil {
		return nil, eris.Wrap(err, "pagination probe")
	}
	for _, pg := range pages {
		res.ListingPages += pg.TotalPages
	}
	log.Info("probed categories", zap.Int("categories", len(pages)), zap.Int("listing_pages", res.ListingPages))

	listings, err := p.src.FetchListings(ctx, pages)
	if err != nil {
		return nil, eris.Wrap(err, "listing fetch")
	}
	if err := check(p, log, res, StageListing, listings); err != nil {
		return nil, err
	}
	detailLinks := directory.AggregateLinks(listings)
	log.Info("aggregated detail links", zap.Int("links", len(detailLinks)))

	if err := p.details(ctx, log, res, detailLinks); err != nil {
		return nil, err
	}
	res.Elapsed = time.Since(start)
	p.summarize(log, res)
	return res, nil
}

// CollectLinks skips discovery and listing and extracts the given detail
// links directly.
func (p *Pipeline) CollectLinks(ctx context.Context, links []string) (*Result, error) {
	res := p.newResult()
	log := zap.L().With(zap.String("run_id", res.RunID))
	start := time.Now()

	if err := p.details(ctx, log, res, links); err != nil {
		return nil, err
	}
	res.Elapsed = time.Since(start)
	p.summarize(log, res)
	return res, nil
}

// ExtractPages extracts already fetched pages.
func (p *Pipeline) ExtractPages(pages []models.DetailPage) (*Result, error) {
	res := p.newResult()
	log := zap.L().With(zap.String("run_id", res.RunID))

	outcomes := make([]models.Outcome[models.DetailPage], len(pages))
	for i, pg := range pages {
		outcomes[i] = models.Outcome[models.DetailPage]{Index: i, URL: pg.URL, Value: pg}
	}
	res.DetailLinks = len(pages)
	if err := p.extract(log, res, outcomes); err != nil {
		return nil, err
	}
	p.summarize(log, res)
	return res, nil
}

// Run collects location and exports the records.
func (p *Pipeline) Run(ctx context.Context, location string, exp ExportOptions) (*Result, error) {
	res, err := p.Collect(ctx, location)
	if err != nil {
		return nil, err
	}
	if err := Export(res, exp); err != nil {
		return nil, err
	}
	return res, nil
}

func (p *Pipeline) newResult() *Result {
	return &Result{
		RunID:   uuid.NewString(),
		Schema:  p.extractor.Schema(),
		Records: []models.Record{},
		Labels:  map[string]int{},
	}
}

func (p *Pipeline) details(ctx context.Context, log *zap.Logger, res *Result, links []string) error {
	res.DetailLinks = len(links)
	pages := p.src.FetchDetails(ctx, links)
	if err := check(p, log, res, StageDetail, pages); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return eris.Wrap(err, "detail fetch")
	}
	// fetch failures were recorded by check; extract only the pages we have
	var fetched []models.Outcome[models.DetailPage]
	for _, o := range pages {
		if o.Err == nil {
			fetched = append(fetched, o)
		}
	}
	return p.extract(log, res, fetched)
}

func (p *Pipeline) extract(log *zap.Logger, res *Result, pages []models.Outcome[models.DetailPage]) error {
	records := p.extractor.ExtractAll(pages)
	if err := check(p, log, res, StageExtract, records); err != nil {
		return err
	}
	for _, o := range records {
		if o.Err == nil {
			res.Records = append(res.Records, o.Value)
		}
	}
	return nil
}

// check records the failed items of a batch. In strict mode the first
// failure aborts the job.
func check[T any](p *Pipeline, log *zap.Logger, res *Result, stage string, outcomes []models.Outcome[T]) error {
	fails := crawler.Failures(stage, outcomes)
	for _, f := range fails {
		log.Warn("item failed", zap.String("stage", stage), zap.String("url", f.URL), zap.String("error", f.Error))
	}
	if p.opts.Strict {
		if err := crawler.FirstError(outcomes); err != nil {
			return eris.Wrapf(err, "%s stage", stage)
		}
	}
	res.Failures = append(res.Failures, fails...)
	return nil
}

func (p *Pipeline) summarize(log *zap.Logger, res *Result) {
	res.Labels = p.classifier.Tally(res.Records)
	log.Info("extraction complete",
		zap.Int("detail_links", res.DetailLinks),
		zap.Int("records", len(res.Records)),
		zap.Int("failures", len(res.Failures)),
		zap.Any("labels", res.Labels),
		zap.Duration("elapsed", res.Elapsed),
	)
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return ','
}
