package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/aptible/supercronic/cronexpr"
	"github.com/joho/godotenv"
)

// Defaults for tunables
const (
	DefaultPort              = 3318
	DefaultSweepSchedule     = "* * * * *"
	DefaultVoterCodeLength   = 7
	DefaultVoterCodeBatch    = 100
	DefaultVoterCodeAttempts = 5
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	AdminKeySalt string

	// Cron expression driving the election status sweep
	SweepSchedule string

	VoterCodeLength      int
	VoterCodeBatchSize   int
	VoterCodeMaxAttempts int
}

// ParseFlags reads flags, then environment variables, then a .env file.
// Flags win over env; env wins over .env.
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	// Missing .env is fine; Load never overrides variables already set
	_ = godotenv.Load()

	fs := flag.NewFlagSet("closed-ballot", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminKeySalt, "admin-salt", "", "Admin key salt (prefer env)")

	// Election core tuning
	fs.StringVar(&cfg.SweepSchedule, "sweep", "", "Cron schedule for the election status sweep")
	fs.IntVar(&cfg.VoterCodeLength, "code-length", 0, "Voter code length")
	fs.IntVar(&cfg.VoterCodeBatchSize, "code-batch", 0, "Voter codes inserted per batch")
	fs.IntVar(&cfg.VoterCodeMaxAttempts, "code-attempts", 0, "Attempts per voter code batch before giving up")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	var err error
	if cfg.Port, err = intSetting(cfg.Port, "PORT", DefaultPort); err != nil {
		return Config{}, err
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	// Secrets - MUST be provided
	if cfg.AdminKeySalt == "" {
		cfg.AdminKeySalt = os.Getenv("ADMIN_KEY_SALT")
	}
	if cfg.AdminKeySalt == "" {
		return Config{}, errors.New("ADMIN_KEY_SALT required")
	}

	if cfg.SweepSchedule == "" {
		cfg.SweepSchedule = os.Getenv("SWEEP_SCHEDULE")
		if cfg.SweepSchedule == "" {
			cfg.SweepSchedule = DefaultSweepSchedule
		}
	}
	if _, err := cronexpr.Parse(cfg.SweepSchedule); err != nil {
		return Config{}, fmt.Errorf("invalid sweep schedule %q: %w", cfg.SweepSchedule, err)
	}

	if cfg.VoterCodeLength, err = intSetting(cfg.VoterCodeLength, "VOTER_CODE_LENGTH", DefaultVoterCodeLength); err != nil {
		return Config{}, err
	}
	if cfg.VoterCodeBatchSize, err = intSetting(cfg.VoterCodeBatchSize, "VOTER_CODE_BATCH_SIZE", DefaultVoterCodeBatch); err != nil {
		return Config{}, err
	}
	if cfg.VoterCodeMaxAttempts, err = intSetting(cfg.VoterCodeMaxAttempts, "VOTER_CODE_MAX_ATTEMPTS", DefaultVoterCodeAttempts); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// intSetting returns the flag value if set, else the env value, else def.
// Values must be positive.
func intSetting(flagValue int, env string, def int) (int, error) {
	if flagValue != 0 {
		if flagValue < 0 {
			return 0, fmt.Errorf("%s must be positive", env)
		}
		return flagValue, nil
	}
	s := os.Getenv(env)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s env variable", env)
	}
	return v, nil
}
