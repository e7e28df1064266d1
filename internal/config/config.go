package config

import (
	"math"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"cardialink-engine/internal/composite"
	"cardialink-engine/internal/model"
	"cardialink-engine/internal/premium"
)

const envPrefix = "CARDIALINK"

type Config struct {
	Port     string         `mapstructure:"port"`
	Log      LogConfig      `mapstructure:"log"`
	Weights  WeightsConfig  `mapstructure:"weights"`
	Override OverrideConfig `mapstructure:"override"`
	Jitter   JitterConfig   `mapstructure:"jitter"`
	Model    ModelConfig    `mapstructure:"model"`
	Premium  PremiumConfig  `mapstructure:"premium"`
	Session  SessionConfig  `mapstructure:"session"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type WeightsConfig struct {
	Cardiac   float64 `mapstructure:"cardiac"`
	Renal     float64 `mapstructure:"renal"`
	Metabolic float64 `mapstructure:"metabolic"`
}

type OverrideConfig struct {
	Threshold float64 `mapstructure:"threshold"`
	Floor     float64 `mapstructure:"floor"`
}

type JitterConfig struct {
	// Seed 0 seeds from the clock.
	Seed      int64   `mapstructure:"seed"`
	Cardiac   float64 `mapstructure:"cardiac"`
	Renal     float64 `mapstructure:"renal"`
	Metabolic float64 `mapstructure:"metabolic"`
}

type ModelConfig struct {
	// URL of the trained-model service; empty means heuristics only.
	URL        string           `mapstructure:"url"`
	Timeout    time.Duration    `mapstructure:"timeout"`
	Conditions []string         `mapstructure:"conditions"`
	Correction CorrectionConfig `mapstructure:"correction"`
}

type CorrectionConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Threshold   float64 `mapstructure:"threshold"`
	ModelWeight float64 `mapstructure:"model_weight"`
}

type PremiumConfig struct {
	Table string `mapstructure:"table"`
}

type SessionConfig struct {
	Backend string        `mapstructure:"backend"`
	TTL     time.Duration `mapstructure:"ttl"`
	Cookie  string        `mapstructure:"cookie"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("weights.cardiac", 0.5)
	v.SetDefault("weights.renal", 0.3)
	v.SetDefault("weights.metabolic", 0.2)

	v.SetDefault("override.threshold", 0.9)
	v.SetDefault("override.floor", 0.9)

	v.SetDefault("jitter.seed", 0)
	v.SetDefault("jitter.cardiac", 0.1)
	v.SetDefault("jitter.renal", 0.1)
	v.SetDefault("jitter.metabolic", 0.05)

	v.SetDefault("model.url", "")
	v.SetDefault("model.timeout", 2*time.Second)
	v.SetDefault("model.conditions", []string{"cardiac", "renal", "metabolic"})
	v.SetDefault("model.correction.enabled", true)
	v.SetDefault("model.correction.threshold", 0.8)
	v.SetDefault("model.correction.model_weight", 0.3)

	v.SetDefault("premium.table", premium.TableExtended)

	v.SetDefault("session.backend", BackendMemory)
	v.SetDefault("session.ttl", 30*time.Minute)
	v.SetDefault("session.cookie", "cardialink_session")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
}

// Load reads configuration from defaults, an optional YAML file and the
// environment, in increasing precedence. A .env file in the working
// directory is loaded into the environment first. With an empty path,
// ./cardialink.yaml is used when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("port", envPrefix+"_PORT", "PORT"); err != nil {
		return nil, errors.Wrap(err, "bind port env")
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	} else {
		v.SetConfigName("cardialink")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, errors.Wrap(err, "read config")
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := c.CompositeWeights().Validate(); err != nil {
		return err
	}

	for name, f := range map[string]float64{
		"jitter.cardiac":                c.Jitter.Cardiac,
		"jitter.renal":                  c.Jitter.Renal,
		"jitter.metabolic":              c.Jitter.Metabolic,
		"override.threshold":            c.Override.Threshold,
		"override.floor":                c.Override.Floor,
		"model.correction.threshold":    c.Model.Correction.Threshold,
		"model.correction.model_weight": c.Model.Correction.ModelWeight,
	} {
		if math.IsNaN(f) || f < 0 || f > 1 {
			return errors.Errorf("%s must be within [0,1], got %g", name, f)
		}
	}

	if _, ok := premium.GetTable(c.Premium.Table); !ok {
		return errors.Errorf("unknown premium.table %q (want one of %v)", c.Premium.Table, premium.TableNames())
	}

	switch c.Session.Backend {
	case BackendMemory, BackendRedis:
	default:
		return errors.Errorf("unknown session.backend %q (want memory or redis)", c.Session.Backend)
	}
	if c.Session.Cookie == "" {
		return errors.New("session.cookie must not be empty")
	}

	switch c.Log.Format {
	case "json", "console":
	default:
		return errors.Errorf("unknown log.format %q (want json or console)", c.Log.Format)
	}

	if _, err := c.ModelConditions(); err != nil {
		return err
	}
	return nil
}

// ModelConditions resolves model.conditions to condition values. Page slugs
// are accepted.
func (c *Config) ModelConditions() ([]model.Condition, error) {
	out := make([]model.Condition, 0, len(c.Model.Conditions))
	for _, name := range c.Model.Conditions {
		cond, ok := model.ParseCondition(name)
		if !ok {
			return nil, errors.Errorf("unknown condition %q in model.conditions", name)
		}
		out = append(out, cond)
	}
	return out, nil
}

func (c *Config) Jitters() map[model.Condition]float64 {
	return map[model.Condition]float64{
		model.ConditionCardiac:   c.Jitter.Cardiac,
		model.ConditionRenal:     c.Jitter.Renal,
		model.ConditionMetabolic: c.Jitter.Metabolic,
	}
}

func (c *Config) CompositeWeights() composite.Weights {
	return composite.Weights{Cardiac: c.Weights.Cardiac, Renal: c.Weights.Renal, Metabolic: c.Weights.Metabolic}
}
