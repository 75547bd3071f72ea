package app

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/uyouii/eco-indicator/common"
	"github.com/uyouii/eco-indicator/config"
	"github.com/uyouii/eco-indicator/display"
	"github.com/uyouii/eco-indicator/display/blinkt"
	"github.com/uyouii/eco-indicator/display/inky"
	"github.com/uyouii/eco-indicator/model"
	"github.com/uyouii/eco-indicator/publish"
	"github.com/uyouii/eco-indicator/stats"
	"github.com/uyouii/eco-indicator/store"
	"github.com/uyouii/eco-indicator/utils"
	"go.uber.org/zap"
)

// Fetcher supplies rates for the configured mode.
type Fetcher interface {
	Fetch(ctx context.Context, cfg *config.Config, now time.Time) ([]model.Rate, error)
}

// Publisher receives the statistics of each display update.
type Publisher interface {
	Publish(ctx context.Context, msg *publish.Message) error
}

type Displays struct {
	Strip display.Strip
	Panel display.Panel
}

// StoreData fetches the latest rates, writes them to the store and prunes
// slots older than the retention period.
func StoreData(ctx context.Context, cfg *config.Config, st *store.Store, fetcher Fetcher, now time.Time) error {
	logger := utils.GetLogger(ctx)

	rates, err := fetcher.Fetch(ctx, cfg, now)
	if err != nil {
		logger.Error("Fetch failed", zap.Error(err))
		return err
	}

	inserted, err := st.Upsert(ctx, rates)
	if err != nil {
		logger.Error("Upsert failed", zap.Error(err))
		return err
	}
	if inserted > 0 {
		logger.Info("values were inserted", zap.Int("count", inserted),
			zap.Time("lastSlot", lastSlot(rates)))
	} else {
		logger.Info("no values were inserted, maybe the API is late with its update")
	}

	pruned, err := st.Prune(ctx, now, store.DefaultRetention)
	if err != nil {
		// the new data is already stored, a failed prune can wait for the next run
		logger.Error("Prune failed", zap.Error(err))
		return nil
	}
	logger.Info("old data points deleted", zap.Int64("count", pruned))
	return nil
}

func lastSlot(rates []model.Rate) time.Time {
	last := time.Time{}
	for _, r := range rates {
		if r.ValidFrom.After(last) {
			last = r.ValidFrom
		}
	}
	return last
}

// UpdateDisplay renders the stored series on the configured display and, when
// a publisher is given, sends the derived statistics.
func UpdateDisplay(ctx context.Context, cfg *config.Config, st *store.Store, displays Displays,
	pub Publisher, now time.Time, loc *time.Location, demo bool) error {
	logger := utils.GetLogger(ctx)

	field := cfg.Mode.Field()
	if field == model.FieldUndefined {
		return errors.Wrapf(common.ErrorUnknownMode, "Mode %q", cfg.Mode)
	}

	// Tracker rates are daily, today's row started long before now.
	if cfg.DisplayType == config.DisplayInkyPHAT && cfg.Mode == config.ModeTracker {
		rows, err := st.AllDescending(ctx)
		if err != nil {
			logger.Error("AllDescending failed", zap.Error(err))
			return err
		}
		return inky.UpdateTracker(ctx, displays.Panel, rows, now, loc)
	}

	rows, err := st.Upcoming(ctx, field, now)
	if err != nil {
		logger.Error("Upcoming failed", zap.Error(err))
		return err
	}
	if len(rows) == 0 && !demo {
		return errors.Wrap(common.ErrorNoData, "perhaps you need to run the store command")
	}
	series := model.SeriesOf(rows, field)

	switch cfg.DisplayType {
	case config.DisplayBlinkt:
		err = blinkt.Update(ctx, displays.Strip, cfg, series, demo)
	case config.DisplayInkyPHAT:
		err = inky.Update(ctx, displays.Panel, cfg, series, now, loc, demo)
	default:
		err = errors.Wrapf(common.ErrorUnknownDisplay, "DisplayType %q", cfg.DisplayType)
	}
	if err != nil {
		return err
	}

	if pub != nil && !demo {
		publishSummary(ctx, cfg, displays.Panel, pub, series, now)
	}
	return nil
}

// publishSummary never fails the update, the display is already drawn.
func publishSummary(ctx context.Context, cfg *config.Config, panel display.Panel, pub Publisher,
	series model.Series, now time.Time) {
	logger := utils.GetLogger(ctx)

	if panel == nil {
		panel = display.NewPNGPanel("", inky.DefaultWidth, inky.DefaultHeight)
	}
	opts := inky.SummaryOptions(cfg, panel)
	if opts.WindowSlots < 1 {
		opts.WindowSlots = int(2 * config.DefaultLowSlotDuration)
	}
	summary, err := stats.Summarize(series, opts)
	if err != nil {
		logger.Warn("Summarize failed, nothing to publish", zap.Error(err))
		return
	}

	msg := &publish.Message{
		Mode:    string(cfg.Mode),
		Region:  cfg.DNORegion,
		Summary: summary,
		Sent:    now.UTC(),
	}
	if err := pub.Publish(ctx, msg); err != nil {
		logger.Warn("Publish failed", zap.Error(err))
	}
}
