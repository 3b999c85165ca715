package steward

import (
	"fmt"
	"strings"

	"github.com/hay-kot/steward/internal/core/classify"
	"github.com/hay-kot/steward/internal/core/dispatch"
	"github.com/hay-kot/steward/internal/core/record"
)

var (
	services = []struct{ keyword, service string }{
		{"developer", "development services"},
		{"design", "design services"},
		{"solution", "tailored solutions"},
		{"product", "quality products"},
	}
	benefits = []struct{ keyword, benefit string }{
		{"project", "your project success"},
		{"client", "client satisfaction"},
		{"sales", "business growth"},
	}
)

// ServiceAndBenefit picks the service offered and the benefit promised in a
// lead post from keywords in the lead text.
func ServiceAndBenefit(text string) (service, benefit string) {
	text = strings.ToLower(text)

	service = "professional services"
	for _, s := range services {
		if strings.Contains(text, s.keyword) {
			service = s.service
			break
		}
	}

	benefit = "your business needs"
	for _, b := range benefits {
		if strings.Contains(text, b.keyword) {
			benefit = b.benefit
			break
		}
	}

	return service, benefit
}

// DraftPost returns the social post text for a business lead.
func DraftPost(rec *record.Record) string {
	service, benefit := ServiceAndBenefit(classify.Text(rec))
	return fmt.Sprintf("Excited to offer %s for %s! DM for more.\n\n#BusinessGrowth #ProfessionalServices #Opportunity", service, benefit)
}

// AttachDraft gives a business lead the Content section the social post
// capability publishes. Records that are already post drafts keep their
// content. Any other Content section holds the lead itself and is renamed to
// Lead Content before the draft is appended. It reports whether a draft was
// added.
func AttachDraft(rec *record.Record) bool {
	if strings.Contains(strings.ToLower(rec.Type()), "draft") {
		if _, ok := dispatch.Section([]byte(rec.Body), "Content"); ok {
			return false
		}
	}

	// Already drafted on an earlier pass.
	if _, ok := dispatch.Section([]byte(rec.Body), "Lead Content"); ok {
		if _, ok := dispatch.Section([]byte(rec.Body), "Content"); ok {
			return false
		}
	}

	lines := strings.Split(rec.Body, "\n")
	for i, line := range lines {
		if strings.EqualFold(strings.TrimSpace(line), "## Content") {
			lines[i] = "## Lead Content"
		}
	}
	rec.Body = strings.Join(lines, "\n")

	rec.AppendBody("## Content\n\n" + DraftPost(rec) + "\n")
	return true
}
