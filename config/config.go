package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/offlayer/dispatch/fabric"
)

// Config holds every device mode-selection parameter (spec §6), resolved
// through Resolve's three-layer precedence: compiled-in Defaults, an
// optional YAML topology file, then DP_* environment variables.
type Config struct {
	Mode          string   `yaml:"mode"`
	Rank          int      `yaml:"rank"`
	Size          int      `yaml:"size"`
	Host          string   `yaml:"host"`
	Port          int      `yaml:"port"`
	WorkerAddrs   []string `yaml:"workerAddrs"`
	LaunchCommand []string `yaml:"launchCommand"`

	DynamicLoadBalancer bool    `yaml:"dynamicLoadBalancer"`
	PreallocatedTiles   int     `yaml:"preallocatedTiles"`
	WriteBufferScale    float64 `yaml:"writeBufferScale"`
	ForceCompression    bool    `yaml:"forceCompression"`
	LoadModules         []string `yaml:"loadModules"`
	LogLevel            string  `yaml:"logLevel"`
	Device              string  `yaml:"device"`

	DialTimeout time.Duration `yaml:"-"`
}

// Defaults returns the compiled-in baseline every device starts from
// before a topology file or environment overrides are applied.
func Defaults() Config {
	return Config{
		Mode:                "collocated",
		Size:                1,
		Port:                29900,
		DynamicLoadBalancer: false,
		PreallocatedTiles:   4,
		WriteBufferScale:    1.0,
		ForceCompression:    false,
		LogLevel:            "warn",
		Device:              "offload",
		DialTimeout:         10 * time.Second,
	}
}

// LoadYAMLFile overlays the topology described by the YAML file at path
// onto cfg. A missing file is not an error — the YAML layer is optional
// (spec §10 configuration).
func LoadYAMLFile(cfg Config, path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadEnv overlays DP_* environment variables onto cfg, the highest
// precedence config layer below an explicit SetParam override (spec
// §6). A .env file in the working directory, if present, is loaded
// before the process environment is read.
func LoadEnv(cfg Config) Config {
	_ = godotenv.Load()

	if v, ok := os.LookupEnv("DP_DEVICE"); ok {
		cfg.Device = v
	}
	if v, ok := os.LookupEnv("DP_LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := os.LookupEnv("DP_FORCE_COMPRESSION"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.ForceCompression = b
		}
	}
	if v, ok := os.LookupEnv("DP_WRITE_BUFFER_SCALE"); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.WriteBufferScale = f
		}
	}
	if v, ok := os.LookupEnv("DP_DYNAMIC_LOAD_BALANCER"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.DynamicLoadBalancer = b
		}
	}
	if v, ok := os.LookupEnv("DP_PREALLOCATED_TILES"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.PreallocatedTiles = n
		}
	}
	if v, ok := os.LookupEnv("DP_LOAD_MODULES"); ok && v != "" {
		cfg.LoadModules = strings.Split(v, ",")
	}

	return cfg
}

// Resolve runs the full three-layer precedence: Defaults, then
// yamlPath (if non-empty), then the environment.
func Resolve(yamlPath string) (Config, error) {
	cfg := Defaults()
	if yamlPath != "" {
		var err error
		cfg, err = LoadYAMLFile(cfg, yamlPath)
		if err != nil {
			return cfg, err
		}
	}
	return LoadEnv(cfg), nil
}

// FabricMode maps the resolved Mode string to a fabric.Mode, defaulting
// to fabric.ModeCollocated on an unrecognized value.
func (c Config) FabricMode() fabric.Mode {
	switch strings.ToLower(c.Mode) {
	case "listen":
		return fabric.ModeListen
	case "connect":
		return fabric.ModeConnect
	case "launch":
		return fabric.ModeLaunch
	default:
		return fabric.ModeCollocated
	}
}

// FabricConfig projects the device parameters relevant to bootstrap into
// a fabric.Config.
func (c Config) FabricConfig() fabric.Config {
	return fabric.Config{
		Mode:          c.FabricMode(),
		Rank:          c.Rank,
		Size:          c.Size,
		Host:          c.Host,
		Port:          c.Port,
		WorkerAddrs:   c.WorkerAddrs,
		LaunchCommand: c.LaunchCommand,
		DialTimeout:   c.DialTimeout,
	}
}
