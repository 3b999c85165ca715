package doctor

import "context"

// RecordsCheck reports records parked in pending-approval that need a human.
type RecordsCheck struct {
	stuck   []string
	flagged []string
}

// NewRecordsCheck creates a records check from the ids of stuck and flagged
// records.
func NewRecordsCheck(stuck, flagged []string) *RecordsCheck {
	return &RecordsCheck{stuck: stuck, flagged: flagged}
}

func (c *RecordsCheck) Name() string {
	return "Records"
}

func (c *RecordsCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	if len(c.stuck) == 0 && len(c.flagged) == 0 {
		result.Items = append(result.Items, CheckItem{
			Label:  "pending-approval",
			Status: StatusPass,
			Detail: "no stuck or flagged records",
		})
		return result
	}

	for _, id := range c.stuck {
		result.Items = append(result.Items, CheckItem{
			Label:  id,
			Status: StatusWarn,
			Detail: "stuck: dispatch attempts exhausted",
		})
	}
	for _, id := range c.flagged {
		result.Items = append(result.Items, CheckItem{
			Label:  id,
			Status: StatusWarn,
			Detail: "flagged: policy blocked execution",
		})
	}

	return result
}
