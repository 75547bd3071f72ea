package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/google/subcommands"
	"github.com/uyouii/eco-indicator/app"
	"github.com/uyouii/eco-indicator/display"
	"github.com/uyouii/eco-indicator/display/inky"
	"github.com/uyouii/eco-indicator/publish"
	"github.com/uyouii/eco-indicator/source"
	"github.com/uyouii/eco-indicator/store"
	"github.com/uyouii/eco-indicator/utils"
	"go.uber.org/zap"
)

// panelFlags describe the headless stand-in for the e-paper panel.
type panelFlags struct {
	png    string
	width  int
	height int
}

func (p *panelFlags) set(f *flag.FlagSet) {
	f.StringVar(&p.png, "png", "eco_indicator.png", "file the Inky pHAT frame is written to")
	f.IntVar(&p.width, "width", inky.DefaultWidth, "panel width in pixels")
	f.IntVar(&p.height, "height", inky.DefaultHeight, "panel height in pixels")
}

func (p *panelFlags) displays(ctx context.Context) app.Displays {
	return app.Displays{
		Strip: display.NewLogStrip(ctx),
		Panel: display.NewPNGPanel(p.png, p.width, p.height),
	}
}

type storeCmd struct{}

func (*storeCmd) Name() string     { return "store" }
func (*storeCmd) Synopsis() string { return "fetch the latest data and save it in the database" }
func (*storeCmd) Usage() string {
	return `store:
  Fetch prices or carbon intensity for the configured mode and region, store
  them and prune slots older than three days.
`
}
func (*storeCmd) SetFlags(*flag.FlagSet) {}

func (*storeCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, p, ok := loadConfig(ctx)
	if !ok {
		return subcommands.ExitFailure
	}
	logger := utils.GetLogger(ctx)

	st, err := store.Open(ctx, p.DB, true)
	if err != nil {
		logger.Error("open database failed", zap.Error(err))
		return subcommands.ExitFailure
	}
	defer st.Close()

	if err := app.StoreData(ctx, cfg, st, source.NewFetcher(), time.Now()); err != nil {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type updateCmd struct {
	demo  bool
	panel panelFlags
}

func (*updateCmd) Name() string     { return "update" }
func (*updateCmd) Synopsis() string { return "show the stored data on the configured display" }
func (*updateCmd) Usage() string {
	return `update [-demo] [-png file]:
  Render upcoming slots on the display and publish a summary when MQTT is
  configured.
`
}

func (c *updateCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.demo, "demo", false, "show the configured colour levels instead of data")
	c.panel.set(f)
}

func (c *updateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, p, ok := loadConfig(ctx)
	if !ok {
		return subcommands.ExitFailure
	}
	logger := utils.GetLogger(ctx)

	st, err := store.Open(ctx, p.DB, false)
	if err != nil {
		logger.Error("open database failed", zap.Error(err))
		return subcommands.ExitFailure
	}
	defer st.Close()

	var pub app.Publisher
	if cfg.MQTT != nil && !c.demo {
		mq, err := publish.Connect(ctx, cfg.MQTT)
		if err != nil {
			logger.Warn("MQTT unavailable, not publishing", zap.Error(err))
		} else {
			defer mq.Close()
			pub = mq
		}
	}

	err = app.UpdateDisplay(ctx, cfg, st, c.panel.displays(ctx), pub, time.Now(), time.Local, c.demo)
	if err != nil {
		logger.Error("update failed", zap.Error(err))
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type clearCmd struct {
	panel panelFlags
}

func (*clearCmd) Name() string     { return "clear" }
func (*clearCmd) Synopsis() string { return "blank the configured display" }
func (*clearCmd) Usage() string    { return "clear [-png file]:\n  Blank the display.\n" }

func (c *clearCmd) SetFlags(f *flag.FlagSet) {
	c.panel.set(f)
}

func (c *clearCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, _, ok := loadConfig(ctx)
	if !ok {
		return subcommands.ExitFailure
	}
	d := c.panel.displays(ctx)
	if err := display.Clear(ctx, cfg, d.Strip, d.Panel); err != nil {
		utils.GetLogger(ctx).Error("clear failed", zap.Error(err))
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type dumpCmd struct{}

func (*dumpCmd) Name() string           { return "dump" }
func (*dumpCmd) Synopsis() string       { return "print the database as SQL" }
func (*dumpCmd) Usage() string          { return "dump:\n  Print an SQL dump of the database.\n" }
func (*dumpCmd) SetFlags(*flag.FlagSet) {}

func (*dumpCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	p := paths(ctx)
	logger := utils.GetLogger(ctx)

	st, err := store.Open(ctx, p.DB, false)
	if err != nil {
		logger.Error("open database failed", zap.Error(err))
		return subcommands.ExitFailure
	}
	defer st.Close()

	dump, err := st.Dump()
	if err != nil {
		logger.Error("dump failed", zap.Error(err))
		return subcommands.ExitFailure
	}
	fmt.Print(dump)
	return subcommands.ExitSuccess
}
