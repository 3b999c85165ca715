package steward

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/hay-kot/steward/internal/core/approval"
	"github.com/hay-kot/steward/internal/core/classify"
	"github.com/hay-kot/steward/internal/core/config"
	"github.com/hay-kot/steward/internal/core/dispatch"
	"github.com/hay-kot/steward/internal/core/ledger"
	"github.com/hay-kot/steward/internal/store/filestore"
	"github.com/hay-kot/steward/pkg/executil"
)

// App is the central entry point for all steward operations. Commands
// consume App instead of cherry-picking raw dependencies.
type App struct {
	Controller *Controller
	Gate       *Gate
	Review     *ReviewService
	Status     *StatusService
	Doctor     *DoctorService

	Store  *filestore.Store
	Ledger *ledger.Ledger
	Config *config.Config

	log zerolog.Logger
}

// NewApp builds every service from the configuration. exec runs the
// configured executor commands.
func NewApp(cfg *config.Config, store *filestore.Store, exec executil.Executor, log zerolog.Logger) *App {
	var (
		classifier = classify.New(cfg.Policy.PaymentThreshold)
		policy     = PolicyFrom(cfg)
		l          = ledger.New(cfg.LogsDir())
		dispatcher = dispatch.New(DispatchOptions(cfg, exec), log.With().Str("component", "dispatch").Logger())
		gate       = NewGate(store, dispatcher, l, policy, cfg.Reviewer, log)
		status     = NewStatusService(store)
	)

	return &App{
		Controller: NewController(store, classifier, policy, gate, l, cfg.Reviewer, cfg.Loop.Interval, log),
		Gate:       gate,
		Review:     NewReviewService(store, log),
		Status:     status,
		Doctor:     NewDoctorService(store, status, cfg),
		Store:      store,
		Ledger:     l,
		Config:     cfg,
		log:        log,
	}
}

// Intake opens the intake service for a named producer. Each producer keeps
// its own processed set.
func (a *App) Intake(ctx context.Context, producer string) (*IntakeService, error) {
	processed := filestore.NewProcessedFile(a.Config.ProcessedFile(producer))
	return OpenIntake(ctx, a.Store, processed, a.log)
}

// Watcher builds the inbox watcher around an intake service.
func (a *App) Watcher(intake *IntakeService) *Watcher {
	cfg := a.Config
	return NewWatcher(intake, a.Controller, WatcherOptions{
		Inbox:         cfg.InboxPath(),
		Matcher:       Matcher{Patterns: cfg.Intake.Patterns, Ignore: cfg.Intake.Ignore},
		Debounce:      cfg.Intake.Debounce,
		Interval:      cfg.Loop.WatchInterval,
		MaxIterations: cfg.Loop.MaxIterations,
	}, a.log)
}

// PolicyFrom maps configuration onto the routing policy.
func PolicyFrom(cfg *config.Config) approval.Policy {
	return approval.Policy{
		PaymentThreshold:     cfg.Policy.PaymentThreshold,
		ApproveBusinessLeads: cfg.Policy.ApproveBusinessLeadsOrDefault(),
		ApproveUrgent:        cfg.Policy.ApproveUrgentOrDefault(),
		MaxAttempts:          cfg.Policy.MaxAttempts,
	}
}

// DispatchOptions builds command collaborators for every configured executor.
func DispatchOptions(cfg *config.Config, exec executil.Executor) dispatch.Options {
	opts := dispatch.Options{Threshold: cfg.Policy.PaymentThreshold}

	command := func(template string) dispatch.Command {
		return dispatch.Command{
			Template: template,
			Timeout:  cfg.Executors.Timeout,
			Dir:      cfg.Workspace,
			Exec:     exec,
		}
	}

	if cfg.Executors.MessageSend != "" {
		opts.Sender = &dispatch.CommandSender{Command: command(cfg.Executors.MessageSend)}
	}
	if cfg.Executors.SocialPost != "" {
		opts.Publisher = &dispatch.CommandPublisher{Command: command(cfg.Executors.SocialPost)}
	}
	if cfg.Executors.Payment != "" {
		opts.Payer = &dispatch.CommandPayer{Command: command(cfg.Executors.Payment)}
	}

	return opts
}
