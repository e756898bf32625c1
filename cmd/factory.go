package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/marcinmaslon/wolf-comm/internal/config"
	"github.com/marcinmaslon/wolf-comm/internal/core"
	"github.com/marcinmaslon/wolf-comm/internal/filter"
	"github.com/marcinmaslon/wolf-comm/pkg/smartset"
)

// Factory builds the configured client for subcommands.
type Factory struct {
	cfg *config.Config
}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) LoadConfig() (*config.Config, error) {
	if f.cfg != nil {
		return f.cfg, nil
	}

	path := viper.GetString(CredentialsKey) // flag, then WOLF_CREDENTIALS
	if path == "" {
		return nil, fmt.Errorf("credentials file not specified (use --credentials or set WOLF_CREDENTIALS)")
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	f.cfg = cfg
	return cfg, nil
}

// GetClient builds a portal client from the credentials file and flags.
func (f *Factory) GetClient() (*smartset.Client, error) {
	cfg, err := f.LoadConfig()
	if err != nil {
		return nil, err
	}

	opts := []smartset.Option{
		smartset.WithExpertMode(viper.GetBool(ExpertModeKey)),
	}
	if u := viper.GetString(BaseURLKey); u != "" {
		opts = append(opts, smartset.WithBaseURL(u))
	}
	if path := viper.GetString(TokenCacheKey); path != "" {
		opts = append(opts, smartset.WithTokenCachePath(path))
	}
	opts = append(opts, smartset.WithSystemContextCache(viper.GetString(ContextCacheKey)))

	return smartset.New(cfg.Username, cfg.Password, opts...), nil
}

// GetFilter compiles the configured parameter filter, preferring the
// command-line expression over the credentials file.
func (f *Factory) GetFilter(override string) (*filter.Filter, error) {
	expression := override
	if expression == "" {
		if cfg, err := f.LoadConfig(); err == nil {
			expression = cfg.Filter
		}
	}
	return filter.Compile(expression)
}

// RefreshInterval resolves the polling interval: flag, then credentials
// file, then the 60s default.
func (f *Factory) RefreshInterval(flagSeconds int) time.Duration {
	if flagSeconds > 0 {
		return time.Duration(flagSeconds) * time.Second
	}
	if cfg, err := f.LoadConfig(); err == nil {
		return cfg.RefreshInterval(smartset.DefaultSessionRefreshInterval)
	}
	return smartset.DefaultSessionRefreshInterval
}

// firstSystem resolves the installation all commands operate on. Accounts
// in this setup monitor exactly one heating system.
func firstSystem(ctx context.Context, cli *smartset.Client) (core.System, error) {
	systems, err := cli.FetchSystemList(ctx)
	if err != nil {
		return core.System{}, err
	}
	return systems[0], nil
}

func valuesToList(values map[int64]core.Value) []core.Value {
	list := make([]core.Value, 0, len(values))
	for _, v := range values {
		list = append(list, v)
	}
	return list
}
