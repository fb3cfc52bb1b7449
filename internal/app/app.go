package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/config"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/adjustment"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/leave"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/report"
	appHTTP "github.com/cmlabs-hris/hris-timekeeping/internal/handler/http"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/database"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/events"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-timekeeping/internal/repository/memory"
	"github.com/cmlabs-hris/hris-timekeeping/internal/repository/postgresql"
	adjustmentService "github.com/cmlabs-hris/hris-timekeeping/internal/service/adjustment"
	attendanceService "github.com/cmlabs-hris/hris-timekeeping/internal/service/attendance"
	leaveService "github.com/cmlabs-hris/hris-timekeeping/internal/service/leave"
	payrollService "github.com/cmlabs-hris/hris-timekeeping/internal/service/payroll"
	reportService "github.com/cmlabs-hris/hris-timekeeping/internal/service/report"
	"github.com/go-chi/chi/v5"
)

// App holds the wired services shared by the API server and timectl.
type App struct {
	Config *config.Config
	Clock  clock.Clock
	Policy attendance.Policy

	JWT        jwt.Service
	Hub        *events.Hub
	Attendance attendance.AttendanceService
	Adjustment adjustment.AdjustmentService
	Leave      leave.LeaveService
	Report     report.ReportService
	Payroll    payroll.PayrollService
	Scheduler  *cron.Scheduler

	closers []func()
}

type repositories struct {
	tx          database.Transactor
	attendances attendance.AttendanceRepository
	adjustments adjustment.AdjustmentRepository
	leaves      leave.LeaveRequestRepository
	profiles    employee.ProfileRepository
}

// New connects the configured storage and event transport and wires every service.
func New(ctx context.Context, cfg *config.Config, clk clock.Clock) (*App, error) {
	policy, err := cfg.AttendancePolicy()
	if err != nil {
		return nil, err
	}
	rates, err := cfg.PayrollRates()
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Clock: clk, Policy: policy, Hub: events.NewHub()}

	repos, err := a.openStorage(ctx, cfg, clk)
	if err != nil {
		a.Close()
		return nil, err
	}

	publisher := events.Multi{a.Hub}
	if cfg.Events.NATSURL != "" {
		natsPublisher, err := events.ConnectNATS(cfg.Events.NATSURL, cfg.Events.SubjectPrefix)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, func() {
			if err := natsPublisher.Close(); err != nil {
				slog.Warn("Failed to drain NATS connection", "error", err)
			}
		})
		publisher = append(publisher, natsPublisher)
		slog.Info("Publishing leave transitions to NATS", "url", cfg.Events.NATSURL, "prefix", cfg.Events.SubjectPrefix)
	}

	a.JWT, err = jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}

	a.Attendance = attendanceService.NewAttendanceService(repos.attendances, policy, clk)
	a.Adjustment = adjustmentService.NewAdjustmentService(repos.tx, repos.attendances, repos.adjustments, clk)
	a.Leave = leaveService.NewLeaveService(repos.tx, repos.leaves, repos.attendances, repos.adjustments, policy, publisher, clk)
	a.Report = reportService.NewReportService(repos.attendances, repos.profiles, policy, clk)
	a.Payroll = payrollService.NewPayrollService(a.Report, repos.profiles, rates, clk)

	a.Scheduler = cron.NewScheduler(clk)
	cron.NewAttendanceJobs(repos.attendances, repos.profiles, a.Adjustment, policy, clk, cfg.Scheduler.LookbackDays).
		RegisterJobs(a.Scheduler, cfg.Scheduler.Interval)

	return a, nil
}

func (a *App) openStorage(ctx context.Context, cfg *config.Config, clk clock.Clock) (repositories, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		store := memory.NewStore(clk)
		if cfg.Storage.ProfilesFile != "" {
			n, err := seedProfiles(store, cfg.Storage.ProfilesFile)
			if err != nil {
				return repositories{}, err
			}
			slog.Info("Seeded employee profiles", "count", n, "file", cfg.Storage.ProfilesFile)
		}
		slog.Warn("Using in-memory storage; data is lost on exit")
		return repositories{
			tx:          store,
			attendances: memory.NewAttendanceRepository(store),
			adjustments: memory.NewAdjustmentRepository(store),
			leaves:      memory.NewLeaveRequestRepository(store),
			profiles:    memory.NewProfileRepository(store),
		}, nil

	default:
		db, err := database.NewPostgreSQLDBWithConfig(cfg.DatabaseURL(), database.PoolConfig{
			MaxConns:       cfg.Database.MaxConns,
			ConnectTimeout: 5 * time.Second,
		})
		if err != nil {
			return repositories{}, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.closers = append(a.closers, db.Close)

		if cfg.Storage.AutoMigrate {
			if err := postgresql.Migrate(ctx, db); err != nil {
				return repositories{}, err
			}
		}
		return repositories{
			tx:          postgresql.NewTransactor(db),
			attendances: postgresql.NewAttendanceRepository(db),
			adjustments: postgresql.NewAdjustmentRepository(db),
			leaves:      postgresql.NewLeaveRequestRepository(db),
			profiles:    postgresql.NewProfileRepository(db),
		}, nil
	}
}

// Router builds the HTTP surface over the wired services.
func (a *App) Router(logger *slog.Logger) *chi.Mux {
	return appHTTP.NewRouter(
		appHTTP.RouterConfig{Logger: logger, AllowedOrigins: a.Config.App.AllowedOrigins},
		a.JWT,
		appHTTP.NewAttendanceHandler(a.Attendance, a.Adjustment),
		appHTTP.NewLeaveHandler(a.Leave),
		appHTTP.NewReportHandler(a.Report),
		appHTTP.NewPayrollHandler(a.Payroll),
	)
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
