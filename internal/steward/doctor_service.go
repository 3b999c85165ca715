package steward

import (
	"context"

	"github.com/hay-kot/steward/internal/core/config"
	"github.com/hay-kot/steward/internal/core/doctor"
	"github.com/hay-kot/steward/internal/core/record"
	"github.com/hay-kot/steward/internal/store/filestore"
)

// DoctorService runs health checks on the steward workspace.
type DoctorService struct {
	store  *filestore.Store
	status *StatusService
	config *config.Config
}

// NewDoctorService creates a new DoctorService.
func NewDoctorService(store *filestore.Store, status *StatusService, cfg *config.Config) *DoctorService {
	return &DoctorService{
		store:  store,
		status: status,
		config: cfg,
	}
}

// RunChecks executes all doctor checks and returns results. With autofix,
// fixable checks are repaired before they run.
func (d *DoctorService) RunChecks(ctx context.Context, configPath string, autofix bool) []doctor.Result {
	workspace := doctor.NewWorkspaceCheck(d.dirs())
	if autofix {
		_ = workspace.Fix(ctx)
	}

	checks := []doctor.Check{
		doctor.NewConfigCheck(d.config, configPath),
		workspace,
		doctor.NewExecutorsCheck([]doctor.Executor{
			{Name: "message_send", Template: d.config.Executors.MessageSend, Unset: "messages are reported, not sent"},
			{Name: "social_post", Template: d.config.Executors.SocialPost, Unset: "approved posts fail"},
			{Name: "payment", Template: d.config.Executors.Payment, Unset: "payments are reported, not paid"},
		}),
	}

	if st, err := d.status.Get(ctx); err == nil {
		checks = append(checks, doctor.NewRecordsCheck(st.Stuck, st.Flagged))
	}

	return doctor.RunAll(ctx, checks)
}

func (d *DoctorService) dirs() []doctor.Dir {
	dirs := make([]doctor.Dir, 0, len(record.States())+2)
	for _, state := range record.States() {
		dirs = append(dirs, doctor.Dir{Label: state.String(), Path: d.store.Dir(state)})
	}
	dirs = append(dirs,
		doctor.Dir{Label: record.LogsDir, Path: d.config.LogsDir()},
		doctor.Dir{Label: "inbox", Path: d.config.InboxPath()},
	)
	return dirs
}
