package source

import (
	"context"
	"encoding/json"
	"net"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/uyouii/eco-indicator/common"
	"github.com/uyouii/eco-indicator/config"
	"github.com/uyouii/eco-indicator/model"
	"github.com/uyouii/eco-indicator/utils"
	"go.uber.org/zap"
)

const (
	// MaxRetries bounds the attempts per request. With the default backoff the
	// last wait is 2^14s, so a failing API is retried for about nine hours.
	MaxRetries     = 15
	DefaultBackoff = time.Second
	RequestTimeout = 5 * time.Second
)

// Fetcher pulls rates from the Octopus and carbon intensity APIs.
type Fetcher struct {
	client     *resty.Client
	AgileBase  string
	CarbonBase string
	Backoff    time.Duration
	MaxRetries int
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		client:     resty.New().SetTimeout(RequestTimeout),
		AgileBase:  DefaultAgileBase,
		CarbonBase: DefaultCarbonBase,
		Backoff:    DefaultBackoff,
		MaxRetries: MaxRetries,
	}
}

// Fetch returns the rates the configured mode needs. Tracker mode yields both
// electricity and gas rates.
func (f *Fetcher) Fetch(ctx context.Context, cfg *config.Config, now time.Time) ([]model.Rate, error) {
	logger := utils.GetLogger(ctx)
	logger.Info("selected region", zap.String("region", cfg.DNORegion), zap.String("mode", string(cfg.Mode)))

	switch {
	case cfg.Mode == config.ModeAgileImport, cfg.Mode == config.ModeAgilePrice:
		uri, err := agileImportURL(f.AgileBase, cfg.DNORegion, cfg.AgileCap)
		if err != nil {
			return nil, err
		}
		return f.fetchAgile(ctx, uri, model.FieldPrice)

	case cfg.Mode == config.ModeAgileExport:
		uri, err := agileExportURL(f.AgileBase, cfg.DNORegion)
		if err != nil {
			return nil, err
		}
		return f.fetchAgile(ctx, uri, model.FieldPrice)

	case cfg.Mode == config.ModeTracker:
		electricity, gas, err := trackerURLs(f.AgileBase, cfg.DNORegion, now)
		if err != nil {
			return nil, err
		}
		rates, err := f.fetchAgile(ctx, electricity, model.FieldPrice)
		if err != nil {
			return nil, err
		}
		gasRates, err := f.fetchAgile(ctx, gas, model.FieldGasPrice)
		if err != nil {
			return nil, err
		}
		return append(rates, gasRates...), nil

	case cfg.Mode == config.ModeCarbon:
		uri, err := carbonURL(f.CarbonBase, cfg.DNORegion, now)
		if err != nil {
			return nil, err
		}
		return f.fetchCarbon(ctx, uri, cfg.DNORegion == "Z")
	}
	return nil, errors.Wrapf(common.ErrorUnknownMode, "Mode %q", cfg.Mode)
}

type agileResponse struct {
	Results []struct {
		ValidFrom   string  `json:"valid_from"`
		ValidTo     string  `json:"valid_to"`
		ValueIncVat float64 `json:"value_inc_vat"`
	} `json:"results"`
}

func (f *Fetcher) fetchAgile(ctx context.Context, uri string, field model.Field) ([]model.Rate, error) {
	body, err := f.get(ctx, uri)
	if err != nil {
		return nil, err
	}
	resp := agileResponse{}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.Wrap(err, "decode Octopus response")
	}

	rates := make([]model.Rate, 0, len(resp.Results))
	for _, r := range resp.Results {
		t, err := time.Parse(time.RFC3339, r.ValidFrom)
		if err != nil {
			return nil, errors.Wrapf(err, "bad valid_from %q", r.ValidFrom)
		}
		rates = append(rates, model.Rate{ValidFrom: t, Value: r.ValueIncVat, Field: field})
	}
	return rates, nil
}

type carbonPeriod struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Intensity struct {
		Forecast float64 `json:"forecast"`
	} `json:"intensity"`
}

type nationalCarbonResponse struct {
	Data []carbonPeriod `json:"data"`
}

type regionalCarbonResponse struct {
	Data struct {
		RegionID int            `json:"regionid"`
		Data     []carbonPeriod `json:"data"`
	} `json:"data"`
}

// The national endpoint returns the periods directly under data, the regional
// one nests them one level deeper.
func (f *Fetcher) fetchCarbon(ctx context.Context, uri string, national bool) ([]model.Rate, error) {
	body, err := f.get(ctx, uri)
	if err != nil {
		return nil, err
	}

	var periods []carbonPeriod
	if national {
		resp := nationalCarbonResponse{}
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, errors.Wrap(err, "decode carbon response")
		}
		periods = resp.Data
	} else {
		resp := regionalCarbonResponse{}
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, errors.Wrap(err, "decode carbon response")
		}
		periods = resp.Data.Data
	}

	rates := make([]model.Rate, 0, len(periods))
	for _, p := range periods {
		t, err := time.Parse(carbonTimeLayout, p.From)
		if err != nil {
			return nil, errors.Wrapf(err, "bad from %q", p.From)
		}
		rates = append(rates, model.Rate{ValidFrom: t, Value: p.Intensity.Forecast, Field: model.FieldCarbon})
	}
	return rates, nil
}

// get retries HTTP error statuses, connection errors and timeouts with an
// exponential backoff. Any other request error is returned straight away.
func (f *Fetcher) get(ctx context.Context, uri string) ([]byte, error) {
	logger := utils.GetLogger(ctx)

	for attempt := 0; attempt < f.MaxRetries; attempt++ {
		wait := f.backoff(attempt)

		resp, err := f.client.R().SetContext(ctx).Get(uri)
		switch {
		case err != nil && ctx.Err() != nil:
			return nil, ctx.Err()
		case err != nil && isRetryable(err):
			logger.Warn("API request failed, retrying", zap.Error(err), zap.Duration("wait", wait))
		case err != nil:
			return nil, errors.Wrap(err, "API request error")
		case resp.IsError():
			logger.Warn("API HTTP error, retrying", zap.Int("status", resp.StatusCode()), zap.Duration("wait", wait))
		default:
			logger.Info("API request successful", zap.Int("status", resp.StatusCode()), zap.String("uri", uri))
			return resp.Body(), nil
		}

		if attempt == f.MaxRetries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, errors.Wrapf(common.ErrorRetryLimit, "%d attempts on %s", f.MaxRetries, uri)
}

// backoff is the wait after a failed attempt: Backoff doubled per attempt,
// with no jitter.
func (f *Fetcher) backoff(attempt int) time.Duration {
	return f.Backoff * time.Duration(1<<uint(attempt))
}

func isRetryable(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
