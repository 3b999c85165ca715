package steward

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/steward/internal/core/dispatch"
	"github.com/hay-kot/steward/internal/core/record"
)

func TestServiceAndBenefit(t *testing.T) {
	tests := []struct {
		text    string
		service string
		benefit string
	}{
		{"Looking for a developer", "development services", "your business needs"},
		{"Need a new logo design for a client", "design services", "client satisfaction"},
		{"Our sales team wants a solution", "tailored solutions", "business growth"},
		{"Product inquiry for a project", "quality products", "your project success"},
		{"Hello there", "professional services", "your business needs"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			service, benefit := ServiceAndBenefit(tt.text)
			assert.Equal(t, tt.service, service)
			assert.Equal(t, tt.benefit, benefit)
		})
	}
}

func TestAttachDraft_RenamesLeadContent(t *testing.T) {
	rec := record.New("lead.md", record.NewHeader("type", "email"), "## Content\n\nWe need a designer.\n")

	assert.True(t, AttachDraft(rec))

	post, ok := dispatch.Section([]byte(rec.Body), "Content")
	assert.True(t, ok)
	assert.Contains(t, post, "Excited to offer design services")
	assert.Contains(t, rec.Body, "## Lead Content\n\nWe need a designer.")
}

func TestAttachDraft_KeepsExistingPostDraft(t *testing.T) {
	body := "## Content\n\nHand written post.\n"
	rec := record.New("post.md", record.NewHeader("type", "linkedin_draft"), body)

	assert.False(t, AttachDraft(rec))
	assert.Equal(t, body, rec.Body)
}

func TestAttachDraft_SecondPassIsNoop(t *testing.T) {
	rec := record.New("lead.md", record.NewHeader("type", "email"), "## Content\n\nWe need a designer.\n")

	require.True(t, AttachDraft(rec))
	drafted := rec.Body

	assert.False(t, AttachDraft(rec))
	assert.Equal(t, drafted, rec.Body)
}
