package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/DoyleJ11/kungfu-chess/internal/engine"
	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

// Prefix is put in front of every environment key.
const Prefix = "KFCHESS_"

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Addr         string // relay listen address
	RelayURL     string // websocket endpoint a peer dials
	Room         string // empty: the peer creates one
	Side         string
	FrameRate    int
	PingInterval time.Duration
	LogLevel     string
	LogDev       bool
	PrefsApp     string
	Color        bool
}

// Load layers flags over KFCHESS_* environment variables over an optional
// .env file over defaults. KFCHESS_ENV_FILE picks another file.
func Load(name string, args []string) (Config, error) {
	file, err := readEnvFile(getenv("ENV_FILE", nil, ".env"))
	if err != nil {
		return Config{}, err
	}

	frameRate, err := getint("FRAME_RATE", file, 60)
	if err != nil {
		return Config{}, err
	}
	ping, err := getduration("PING_INTERVAL", file, 5*time.Second)
	if err != nil {
		return Config{}, err
	}
	logDev, err := getbool("LOG_DEV", file, false)
	if err != nil {
		return Config{}, err
	}
	color, err := getbool("COLOR", file, true)
	if err != nil {
		return Config{}, err
	}

	var c Config
	fset := flag.NewFlagSet(name, flag.ContinueOnError)
	fset.StringVar(&c.Addr, "addr", getenv("ADDR", file, ":8080"), "relay listen address")
	fset.StringVar(&c.RelayURL, "relay", getenv("RELAY_URL", file, "ws://localhost:8080/ws"), "relay websocket url")
	fset.StringVar(&c.Room, "room", getenv("ROOM", file, ""), "room code to join (empty creates one)")
	fset.StringVar(&c.Side, "side", getenv("SIDE", file, "white"), "white or black")
	fset.IntVar(&c.FrameRate, "fps", frameRate, "simulation frames per second")
	fset.DurationVar(&c.PingInterval, "ping", ping, "ping interval, 0 disables")
	fset.StringVar(&c.LogLevel, "log-level", getenv("LOG_LEVEL", file, "info"), "debug, info, warn or error")
	fset.BoolVar(&c.LogDev, "log-dev", logDev, "console logging")
	fset.StringVar(&c.PrefsApp, "prefs-app", getenv("PREFS_APP", file, "kfchess"), "name of the preferences store")
	fset.BoolVar(&c.Color, "color", color, "colored board output")
	if err := fset.Parse(args); err != nil {
		return Config{}, err
	}
	return c, c.Validate()
}

func (c Config) Validate() error {
	if c.FrameRate <= 0 {
		return fmt.Errorf("%w: frame rate %d", ErrInvalid, c.FrameRate)
	}
	if c.PingInterval < 0 {
		return fmt.Errorf("%w: ping interval %s", ErrInvalid, c.PingInterval)
	}
	if _, ok := engine.ParseSide(c.Side); !ok {
		return fmt.Errorf("%w: side %q", ErrInvalid, c.Side)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// PlayAs is the parsed Side. Only meaningful after Validate.
func (c Config) PlayAs() engine.Side {
	s, _ := engine.ParseSide(c.Side)
	return s
}

func (c Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.FrameRate)
}

func readEnvFile(path string) (map[string]string, error) {
	m, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
	}
	return m, nil
}

func getenv(key string, file map[string]string, def string) string {
	if v := os.Getenv(Prefix + key); v != "" {
		return v
	}
	if v := file[Prefix+key]; v != "" {
		return v
	}
	return def
}

func getint(key string, file map[string]string, def int) (int, error) {
	v := getenv(key, file, "")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s%s=%q", ErrInvalid, Prefix, key, v)
	}
	return n, nil
}

func getbool(key string, file map[string]string, def bool) (bool, error) {
	v := getenv(key, file, "")
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s%s=%q", ErrInvalid, Prefix, key, v)
	}
	return b, nil
}

func getduration(key string, file map[string]string, def time.Duration) (time.Duration, error) {
	v := getenv(key, file, "")
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s%s=%q", ErrInvalid, Prefix, key, v)
	}
	return d, nil
}
