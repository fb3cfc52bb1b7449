package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/payroll"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type Config struct {
	Database  DatabaseConfig
	JWT       JWTConfig
	App       AppConfig
	Storage   StorageConfig
	Events    EventsConfig
	Scheduler SchedulerConfig
	Policy    PolicyConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

// StorageConfig selects the repository backend. ProfilesFile seeds the
// memory driver with employee profiles.
type StorageConfig struct {
	Driver       string
	AutoMigrate  bool
	ProfilesFile string
}

// EventsConfig selects where leave transitions are published. Without a NATS
// URL they stay in the in-process hub.
type EventsConfig struct {
	NATSURL       string
	SubjectPrefix string
}

type SchedulerConfig struct {
	Enabled      bool
	Interval     time.Duration
	LookbackDays int
}

// PolicyConfig holds the work-time and payroll constants. Env values are
// overlaid by POLICY_FILE when it is set.
type PolicyConfig struct {
	Timezone            string
	LateAfterHour       int
	StandardHours       float64
	EndOfDayHour        int
	WorkWeekdays        []string
	WorkingDaysInPeriod int
	OvertimeRatePerHour string
	DeductUnpaidLeave   bool
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	maxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "hris_timekeeping"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(maxConns),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}
	if len(config.App.AllowedOrigins) == 0 {
		config.App.AllowedOrigins = []string{"http://localhost:3000"}
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	autoMigrate, err := strconv.ParseBool(getEnv("DB_AUTO_MIGRATE", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_AUTO_MIGRATE: %w", err)
	}

	config.Storage = StorageConfig{
		Driver:       getEnv("STORAGE_DRIVER", StorageDriverPostgres),
		AutoMigrate:  autoMigrate,
		ProfilesFile: getEnv("PROFILES_FILE", ""),
	}

	config.Events = EventsConfig{
		NATSURL:       getEnv("NATS_URL", ""),
		SubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "hris"),
	}

	// Scheduler configuration
	interval, err := time.ParseDuration(getEnv("SCHEDULER_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_INTERVAL: %w", err)
	}
	lookback, err := strconv.Atoi(getEnv("SCHEDULER_LOOKBACK_DAYS", "1"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_LOOKBACK_DAYS: %w", err)
	}
	enabled, err := strconv.ParseBool(getEnv("SCHEDULER_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_ENABLED: %w", err)
	}

	config.Scheduler = SchedulerConfig{
		Enabled:      enabled,
		Interval:     interval,
		LookbackDays: lookback,
	}

	// Policy configuration
	policy, err := loadPolicyFromEnv()
	if err != nil {
		return nil, err
	}
	if path := getEnv("POLICY_FILE", ""); path != "" {
		if err := policy.overlayFile(path); err != nil {
			return nil, err
		}
	}
	config.Policy = policy

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func loadPolicyFromEnv() (PolicyConfig, error) {
	lateAfter, err := strconv.Atoi(getEnv("LATE_AFTER_HOUR", "9"))
	if err != nil {
		return PolicyConfig{}, fmt.Errorf("invalid LATE_AFTER_HOUR: %w", err)
	}
	standardHours, err := strconv.ParseFloat(getEnv("STANDARD_HOURS", "8"), 64)
	if err != nil {
		return PolicyConfig{}, fmt.Errorf("invalid STANDARD_HOURS: %w", err)
	}
	endOfDay, err := strconv.Atoi(getEnv("END_OF_DAY_HOUR", "18"))
	if err != nil {
		return PolicyConfig{}, fmt.Errorf("invalid END_OF_DAY_HOUR: %w", err)
	}
	workingDays, err := strconv.Atoi(getEnv("PAYROLL_WORKING_DAYS", "26"))
	if err != nil {
		return PolicyConfig{}, fmt.Errorf("invalid PAYROLL_WORKING_DAYS: %w", err)
	}
	deductUnpaid, err := strconv.ParseBool(getEnv("PAYROLL_DEDUCT_UNPAID_LEAVE", "true"))
	if err != nil {
		return PolicyConfig{}, fmt.Errorf("invalid PAYROLL_DEDUCT_UNPAID_LEAVE: %w", err)
	}

	weekdays := getEnvSlice("WORK_WEEKDAYS")
	if len(weekdays) == 0 {
		weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}
	}

	return PolicyConfig{
		Timezone:            getEnv("TIMEZONE", "UTC"),
		LateAfterHour:       lateAfter,
		StandardHours:       standardHours,
		EndOfDayHour:        endOfDay,
		WorkWeekdays:        weekdays,
		WorkingDaysInPeriod: workingDays,
		OvertimeRatePerHour: getEnv("PAYROLL_OVERTIME_RATE", "200"),
		DeductUnpaidLeave:   deductUnpaid,
	}, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageDriverPostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q", StorageDriverPostgres, StorageDriverMemory)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("SCHEDULER_INTERVAL must be positive")
	}
	if _, err := c.AttendancePolicy(); err != nil {
		return err
	}
	rates, err := c.PayrollRates()
	if err != nil {
		return err
	}
	return rates.Validate()
}

// AttendancePolicy builds the attendance rules from the policy settings.
func (c *Config) AttendancePolicy() (attendance.Policy, error) {
	p := c.Policy

	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return attendance.Policy{}, fmt.Errorf("invalid TIMEZONE %q: %w", p.Timezone, err)
	}
	if p.LateAfterHour < 0 || p.LateAfterHour > 23 {
		return attendance.Policy{}, fmt.Errorf("late_after_hour must be between 0 and 23")
	}
	if p.EndOfDayHour < 0 || p.EndOfDayHour > 23 {
		return attendance.Policy{}, fmt.Errorf("end_of_day_hour must be between 0 and 23")
	}
	if p.StandardHours <= 0 {
		return attendance.Policy{}, fmt.Errorf("standard_hours must be positive")
	}

	weekdays := make([]time.Weekday, 0, len(p.WorkWeekdays))
	for _, name := range p.WorkWeekdays {
		day, ok := parseWeekday(name)
		if !ok {
			return attendance.Policy{}, fmt.Errorf("invalid work weekday %q", name)
		}
		weekdays = append(weekdays, day)
	}

	return attendance.Policy{
		Location:      loc,
		LateAfterHour: p.LateAfterHour,
		StandardHours: p.StandardHours,
		WorkWeekdays:  weekdays,
		EndOfDayHour:  p.EndOfDayHour,
	}, nil
}

// PayrollRates builds the payroll constants from the policy settings.
func (c *Config) PayrollRates() (payroll.Rates, error) {
	rate, err := decimal.NewFromString(c.Policy.OvertimeRatePerHour)
	if err != nil {
		return payroll.Rates{}, fmt.Errorf("invalid overtime rate %q: %w", c.Policy.OvertimeRatePerHour, err)
	}
	return payroll.Rates{
		WorkingDaysInPeriod: c.Policy.WorkingDaysInPeriod,
		OvertimeRatePerHour: rate,
		DeductUnpaidLeave:   c.Policy.DeductUnpaidLeave,
	}, nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// LogLevel maps App.LogLevel to a slog level, defaulting to info.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseWeekday(name string) (time.Weekday, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if name == full || name == full[:3] {
			return d, true
		}
	}
	return 0, false
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
