// eco-indicator fetches Octopus Agile prices or grid carbon intensity into a
// local database and renders them on a Blinkt! strip or an Inky pHAT panel.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
	"github.com/uyouii/eco-indicator/config"
	"github.com/uyouii/eco-indicator/utils"
	"go.uber.org/zap"
)

var (
	confFlag = flag.String("conf", "", "config file, default $ECO_INDICATOR_CONFIG or "+config.DefaultConfigFile)
	dbFlag   = flag.String("db", "", "database file, default $ECO_INDICATOR_DB or "+config.DefaultDBFile)
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(&storeCmd{}, "")
	subcommands.Register(&updateCmd{}, "")
	subcommands.Register(&clearCmd{}, "")
	subcommands.Register(&dumpCmd{}, "")

	flag.Parse()
	ctx := context.Background()
	status := subcommands.Execute(ctx)
	utils.GetLogger(ctx).Sync()
	os.Exit(int(status))
}

// paths resolves the files a command works with: flags win over the
// environment, which wins over the defaults.
func paths(ctx context.Context) config.Paths {
	p := config.LoadEnv(ctx, config.DefaultConfigFile, config.DefaultDBFile)
	if *confFlag != "" {
		p.Config = *confFlag
	}
	if *dbFlag != "" {
		p.DB = *dbFlag
	}
	if p.LogLevel != "" {
		if err := utils.InitLogger(p.LogLevel); err != nil {
			utils.GetLogger(ctx).Warn("init logger failed", zap.String("level", p.LogLevel), zap.Error(err))
		}
	}
	return p
}

func loadConfig(ctx context.Context) (*config.Config, config.Paths, bool) {
	p := paths(ctx)
	cfg, err := config.Load(ctx, p.Config)
	if err != nil {
		utils.GetLogger(ctx).Error("load config failed", zap.String("path", p.Config), zap.Error(err))
		return nil, p, false
	}
	return cfg, p, true
}
