package notify

import "github.com/iridescentding/memoq-tickets-system/internal/domain"

// ResolveTemplates picks, per channel, the template that should fire for a
// company: a company-specific template overrides the global one on the same
// channel, and a global template applies only when the company has no
// override. A nil companyID selects global templates only.
//
// The input is expected pre-filtered to a single event type and active
// templates; order does not matter.
func ResolveTemplates(templates []domain.NotificationTemplate, companyID *int64) []domain.NotificationTemplate {
	byChannel := make(map[domain.Channel]domain.NotificationTemplate)
	for _, tpl := range templates {
		if tpl.CompanyID != nil {
			if companyID == nil || *tpl.CompanyID != *companyID {
				continue
			}
			byChannel[tpl.Channel] = tpl
			continue
		}
		// A global template never shadows a company override already seen.
		if existing, ok := byChannel[tpl.Channel]; ok && existing.CompanyID != nil {
			continue
		}
		byChannel[tpl.Channel] = tpl
	}

	resolved := make([]domain.NotificationTemplate, 0, len(byChannel))
	for _, tpl := range byChannel {
		resolved = append(resolved, tpl)
	}
	return resolved
}
