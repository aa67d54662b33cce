package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sparkbench/airplane-sim/internal/physics"
)

// Config holds all application configuration.
type Config struct {
	Bench    BenchConfig
	Sim      SimConfig
	Aircraft physics.Parameters
}

// BenchConfig holds SparkBench connection settings.
type BenchConfig struct {
	URL              string
	HandshakeTimeout time.Duration
}

// SimConfig holds simulation loop settings.
type SimConfig struct {
	TickInterval   time.Duration
	TelemetryEvery int // ticks between telemetry samples
	PitotPartID    string
	StaticPartID   string
	AltitudeFt     int // cosmetic, banner only
}

// Load reads configuration from environment variables, falling back to
// defaults. SIM_AIRCRAFT_FILE, when set, points at a YAML file
// overriding the aircraft parameters.
func Load() (Config, error) {
	cfg := Config{
		Bench: BenchConfig{
			URL:              getEnvString("SPARKBENCH_URL", "ws://localhost:8765"),
			HandshakeTimeout: getEnvDuration("SPARKBENCH_HANDSHAKE_TIMEOUT", 5*time.Second),
		},
		Sim: SimConfig{
			TickInterval:   getEnvDuration("SIM_TICK_INTERVAL", 50*time.Millisecond),
			TelemetryEvery: getEnvInt("SIM_TELEMETRY_EVERY", 20),
			PitotPartID:    getEnvString("SIM_PITOT_PART", "pitot"),
			StaticPartID:   getEnvString("SIM_STATIC_PART", "static"),
			AltitudeFt:     getEnvInt("SIM_ALTITUDE_FT", 3000),
		},
		Aircraft: physics.DefaultParameters(),
	}

	if path := os.Getenv("SIM_AIRCRAFT_FILE"); path != "" {
		params, err := LoadAircraft(path)
		if err != nil {
			return Config{}, err
		}
		cfg.Aircraft = params
	}
	return cfg, nil
}

// LoadAircraft reads aircraft parameters from a YAML file. Fields not
// present keep their defaults.
func LoadAircraft(path string) (physics.Parameters, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return physics.Parameters{}, fmt.Errorf("aircraft file: %w", err)
	}
	params := physics.DefaultParameters()
	if err := yaml.Unmarshal(data, &params); err != nil {
		return physics.Parameters{}, fmt.Errorf("aircraft file %s: %w", path, err)
	}
	return params, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
