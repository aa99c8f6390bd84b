package server

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Listen       string
	DecayK       float64
	TickInterval time.Duration
	ReadLimit    int64
}

func DefaultConfig() Config {
	return Config{
		Listen:       ":8080",
		DecayK:       0.1,
		TickInterval: 5 * time.Millisecond,
		ReadLimit:    1 << 20,
	}
}

// LoadConfig merges defaults, an optional yaml file and HEATGRID_* env vars.
// A missing file is not an error; the defaults stand.
func LoadConfig(path string) (Config, error) {
	def := DefaultConfig()

	v := viper.New()
	v.SetDefault("listen", def.Listen)
	v.SetDefault("simulation.decay_k", def.DecayK)
	v.SetDefault("simulation.tick_interval", def.TickInterval.String())
	v.SetDefault("transport.read_limit", def.ReadLimit)
	v.SetEnvPrefix("heatgrid")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil && !os.IsNotExist(err) {
			return def, fmt.Errorf("read config %q: %w", path, err)
		}
	}

	cfg := Config{
		Listen:       v.GetString("listen"),
		DecayK:       v.GetFloat64("simulation.decay_k"),
		TickInterval: v.GetDuration("simulation.tick_interval"),
		ReadLimit:    v.GetInt64("transport.read_limit"),
	}
	if cfg.DecayK < 0 {
		return def, fmt.Errorf("config: decay_k must not be negative, got %f", cfg.DecayK)
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = def.TickInterval
	}
	return cfg, nil
}
