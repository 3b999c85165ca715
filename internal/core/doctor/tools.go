package doctor

import (
	"context"
	"os/exec"
	"strings"

	"github.com/hay-kot/steward/pkg/tmpl"
)

// lookPathFunc is the function used to find executables on PATH.
// Package-level variable to allow test overrides.
var lookPathFunc = exec.LookPath

// Executor is a configured action command.
type Executor struct {
	Name     string
	Template string
	// Unset describes what happens when no command is configured.
	Unset string
}

// ExecutorsCheck verifies that configured executor commands parse and that
// their programs are on $PATH.
type ExecutorsCheck struct {
	executors []Executor
}

// NewExecutorsCheck creates a new executors check.
func NewExecutorsCheck(executors []Executor) *ExecutorsCheck {
	return &ExecutorsCheck{executors: executors}
}

func (c *ExecutorsCheck) Name() string {
	return "Executors"
}

func (c *ExecutorsCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	for _, e := range c.executors {
		if strings.TrimSpace(e.Template) == "" {
			result.Items = append(result.Items, CheckItem{
				Label:  e.Name,
				Status: StatusWarn,
				Detail: "not configured (" + e.Unset + ")",
			})
			continue
		}

		if _, err := tmpl.Parse(e.Template); err != nil {
			result.Items = append(result.Items, CheckItem{
				Label:  e.Name,
				Status: StatusFail,
				Detail: "template error: " + err.Error(),
			})
			continue
		}

		program := programOf(e.Template)
		if program == "" {
			// program name is templated; nothing to resolve
			result.Items = append(result.Items, CheckItem{Label: e.Name, Status: StatusPass})
			continue
		}

		if path, err := lookPathFunc(program); err != nil {
			result.Items = append(result.Items, CheckItem{
				Label:  e.Name,
				Status: StatusFail,
				Detail: program + " not found on PATH",
			})
		} else {
			result.Items = append(result.Items, CheckItem{
				Label:  e.Name,
				Status: StatusPass,
				Detail: path,
			})
		}
	}

	return result
}

func programOf(cmd string) string {
	fields := strings.Fields(cmd)
	if len(fields) == 0 || strings.Contains(fields[0], "{{") {
		return ""
	}
	return fields[0]
}
