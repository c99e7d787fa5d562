package blobprovider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultHeadStart is the primary URL's configurable advantage before
// the secondary URL is raced against it (spec.md §6).
const DefaultHeadStart = 10 * time.Second

// HttpProvider fetches an archive blob over HTTP, optionally racing a
// primary URL against a secondary: the primary starts immediately and
// gets HeadStart before the secondary is even dispatched; whichever
// returns a 2xx response with a non-empty body first wins, and the
// loser is cancelled. If both fail, the primary's error is surfaced
// (spec.md §6, §9's "bounded task set with cooperative cancel").
type HttpProvider struct {
	PrimaryURL   string
	SecondaryURL string // empty disables the race entirely
	HeadStart    time.Duration
	Client       *http.Client
}

func (p *HttpProvider) client() *http.Client {
	if p.Client != nil {
		return p.Client
	}
	return http.DefaultClient
}

func (p *HttpProvider) headStart() time.Duration {
	if p.HeadStart > 0 {
		return p.HeadStart
	}
	return DefaultHeadStart
}

type fetchResult struct {
	data      []byte
	err       error
	isPrimary bool
}

// Get races PrimaryURL against SecondaryURL per the provider's doc
// comment: each racer GETs configName/version itself, and the first
// non-empty 2xx body is returned.
func (p *HttpProvider) Get(ctx context.Context, configName, version string) ([]byte, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan fetchResult, 2)
	var g errgroup.Group
	total := 1

	launch := func(url string, isPrimary bool, delay time.Duration) {
		g.Go(func() error {
			if delay > 0 {
				select {
				case <-time.After(delay):
				case <-ctx.Done():
					results <- fetchResult{err: ctx.Err(), isPrimary: isPrimary}
					return nil
				}
			}
			data, err := p.fetch(ctx, url, configName, version)
			results <- fetchResult{data: data, err: err, isPrimary: isPrimary}
			return nil
		})
	}

	launch(p.PrimaryURL, true, 0)
	if p.SecondaryURL != "" {
		total = 2
		launch(p.SecondaryURL, false, p.headStart())
	}
	go func() {
		g.Wait()
		close(results)
	}()

	var primaryErr error
	received := 0
	for r := range results {
		received++
		if r.err == nil && len(r.data) > 0 {
			cancel() // the loser's in-flight request is abandoned
			return r.data, nil
		}
		if r.isPrimary {
			primaryErr = r.err
		}
		if received == total {
			break
		}
	}

	if primaryErr != nil {
		return nil, primaryErr
	}
	return nil, &NotFoundError{ConfigName: configName, Version: version}
}

func (p *HttpProvider) fetch(ctx context.Context, baseURL, configName, version string) ([]byte, error) {
	url := fmt.Sprintf("%s?config=%s&version=%s", baseURL, configName, version)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{URL: url, Cause: err}
	}
	resp, err := p.client().Do(req)
	if err != nil {
		return nil, &TransportError{URL: url, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode == http.StatusNotFound {
			return nil, &NotFoundError{ConfigName: configName, Version: version}
		}
		return nil, &TransportError{URL: url, Cause: fmt.Errorf("status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: url, Cause: err}
	}
	return body, nil
}

// Put is unsupported on a plain HttpProvider: publishing an archive to
// a CDN is an out-of-band operation, not a write this provider performs.
func (p *HttpProvider) Put(ctx context.Context, configName, version string, data []byte) error {
	return &UnsupportedError{Op: "HttpProvider.Put"}
}
