package doctor

import (
	"context"
	"fmt"
	"os"
)

// Dir is a directory the workspace needs.
type Dir struct {
	Label string
	Path  string
}

// WorkspaceCheck verifies that the workspace state directories exist. Missing
// directories are fixable by creating them.
type WorkspaceCheck struct {
	dirs []Dir
}

// NewWorkspaceCheck creates a new workspace check.
func NewWorkspaceCheck(dirs []Dir) *WorkspaceCheck {
	return &WorkspaceCheck{dirs: dirs}
}

func (c *WorkspaceCheck) Name() string {
	return "Workspace"
}

func (c *WorkspaceCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	for _, dir := range c.dirs {
		info, err := os.Stat(dir.Path)
		switch {
		case os.IsNotExist(err):
			result.Items = append(result.Items, CheckItem{
				Label:   dir.Label,
				Status:  StatusWarn,
				Detail:  "directory does not exist",
				Fixable: true,
			})
		case err != nil:
			result.Items = append(result.Items, CheckItem{
				Label:  dir.Label,
				Status: StatusFail,
				Detail: fmt.Sprintf("inaccessible: %v", err),
			})
		case !info.IsDir():
			result.Items = append(result.Items, CheckItem{
				Label:  dir.Label,
				Status: StatusFail,
				Detail: "path is not a directory",
			})
		default:
			result.Items = append(result.Items, CheckItem{
				Label:  dir.Label,
				Status: StatusPass,
				Detail: dir.Path,
			})
		}
	}

	return result
}

// Fix creates the missing directories.
func (c *WorkspaceCheck) Fix(_ context.Context) error {
	for _, dir := range c.dirs {
		if _, err := os.Stat(dir.Path); os.IsNotExist(err) {
			if err := os.MkdirAll(dir.Path, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", dir.Path, err)
			}
		}
	}
	return nil
}
