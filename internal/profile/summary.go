package profile

import (
	"strings"

	"github.com/hsiehbocheng/hAIre-ai-recruiter-assistent/internal/document"
)

// UnknownCandidate is the display name used when a profile has no name parts.
const UnknownCandidate = "Unknown"

// Summary holds the denormalized fields stored next to a profile for listing.
type Summary struct {
	CandidateName  string
	CandidateEmail *string
	CurrentTitle   string
}

// Summarize extracts the quick-lookup fields from a validated profile.
func Summarize(p document.Map) Summary {
	basics, _ := p.GetMap(FieldBasics)

	first, _ := basics.GetString(FieldFirstName)
	last, _ := basics.GetString(FieldLastName)
	name := strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
	if name == "" {
		name = UnknownCandidate
	}

	s := Summary{CandidateName: name, CurrentTitle: currentTitle(p, basics)}
	if emails, ok := basics.GetList(FieldEmails); ok {
		for _, e := range emails {
			if addr, ok := e.(document.String); ok && strings.TrimSpace(string(addr)) != "" {
				email := strings.TrimSpace(string(addr))
				s.CandidateEmail = &email
				break
			}
		}
	}
	return s
}

// currentTitle falls back from basics.current_title to the title of the
// current job, then to the first listed job.
func currentTitle(p, basics document.Map) string {
	if t, _ := basics.GetString(FieldCurrentTitle); strings.TrimSpace(t) != "" {
		return strings.TrimSpace(t)
	}
	exps, _ := p.GetList(FieldExperiences)
	var first string
	for _, e := range exps {
		exp, ok := e.(document.Map)
		if !ok {
			continue
		}
		title, _ := exp.GetString(FieldExperienceTitle)
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}
		if isTrue(exp[FieldIsCurrent]) {
			return title
		}
		if first == "" {
			first = title
		}
	}
	return first
}
