package source

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"surveyhub/internal/metrics"
	"surveyhub/internal/model"
)

// Endpoints are the feed URLs, one per source
type Endpoints struct {
	First  string
	Second string
	Third  string
}

// Fetcher downloads and decodes all three feeds
type Fetcher struct {
	client    *Client
	endpoints Endpoints
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

func NewFetcher(client *Client, endpoints Endpoints, m *metrics.Metrics, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		client:    client,
		endpoints: endpoints,
		metrics:   m,
		logger:    logger.Named("fetcher"),
	}
}

type decodeFunc func([]byte) ([]map[string]any, error)

// FetchAll fetches the feeds concurrently. Any failure cancels the other
// requests and no partial payload is returned.
func (f *Fetcher) FetchAll(ctx context.Context) (*model.Payloads, error) {
	p := &model.Payloads{}

	jobs := []struct {
		src    model.Source
		url    string
		decode decodeFunc
		out    *[]map[string]any
	}{
		{model.SourceFirst, f.endpoints.First, DecodeFirst, &p.First},
		{model.SourceSecond, f.endpoints.Second, DecodeSecond, &p.Second},
		{model.SourceThird, f.endpoints.Third, DecodeThird, &p.Third},
	}

	g, gCtx := errgroup.WithContext(ctx)
	for _, job := range jobs {
		g.Go(func() error {
			entries, err := f.fetch(gCtx, job.src, job.url, job.decode)
			if err != nil {
				return fmt.Errorf("failed to fetch %s: %w", job.src, err)
			}
			*job.out = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	f.logger.Info("sources fetched",
		zap.Int("source1", len(p.First)),
		zap.Int("source2", len(p.Second)),
		zap.Int("source3", len(p.Third)))
	return p, nil
}

func (f *Fetcher) fetch(ctx context.Context, src model.Source, url string, decode decodeFunc) (entries []map[string]any, err error) {
	start := time.Now()
	defer func() {
		f.metrics.SourceFetch(src.String(), time.Since(start), err)
	}()

	body, err := f.client.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	return decode(body)
}
