package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iridescentding/memoq-tickets-system/internal/domain"
)

func int64Ptr(v int64) *int64 { return &v }

func tpl(id int64, companyID *int64, channel domain.Channel) domain.NotificationTemplate {
	return domain.NotificationTemplate{
		ID:        id,
		CompanyID: companyID,
		EventType: domain.EventTicketCreated,
		Channel:   channel,
		IsActive:  true,
	}
}

func TestResolveTemplatesCompanyOverridesGlobal(t *testing.T) {
	templates := []domain.NotificationTemplate{
		tpl(1, nil, domain.ChannelEmail),
		tpl(2, int64Ptr(10), domain.ChannelEmail),
	}

	resolved := ResolveTemplates(templates, int64Ptr(10))
	require.Len(t, resolved, 1)
	assert.Equal(t, int64(2), resolved[0].ID)

	// A different company only sees the global template.
	resolved = ResolveTemplates(templates, int64Ptr(99))
	require.Len(t, resolved, 1)
	assert.Equal(t, int64(1), resolved[0].ID)
}

func TestResolveTemplatesOrderIndependent(t *testing.T) {
	// Company override listed before the global template must still win.
	templates := []domain.NotificationTemplate{
		tpl(2, int64Ptr(10), domain.ChannelEmail),
		tpl(1, nil, domain.ChannelEmail),
	}

	resolved := ResolveTemplates(templates, int64Ptr(10))
	require.Len(t, resolved, 1)
	assert.Equal(t, int64(2), resolved[0].ID)
}

func TestResolveTemplatesPerChannel(t *testing.T) {
	templates := []domain.NotificationTemplate{
		tpl(1, nil, domain.ChannelEmail),
		tpl(2, nil, domain.ChannelFeishu),
		tpl(3, int64Ptr(10), domain.ChannelFeishu),
	}

	resolved := ResolveTemplates(templates, int64Ptr(10))
	require.Len(t, resolved, 2)

	byChannel := map[domain.Channel]int64{}
	for _, r := range resolved {
		byChannel[r.Channel] = r.ID
	}
	assert.Equal(t, int64(1), byChannel[domain.ChannelEmail], "email falls back to global")
	assert.Equal(t, int64(3), byChannel[domain.ChannelFeishu], "feishu uses company override")
}

func TestResolveTemplatesNilCompanySelectsGlobalOnly(t *testing.T) {
	templates := []domain.NotificationTemplate{
		tpl(1, nil, domain.ChannelEmail),
		tpl(2, int64Ptr(10), domain.ChannelFeishu),
	}

	resolved := ResolveTemplates(templates, nil)
	require.Len(t, resolved, 1)
	assert.Equal(t, int64(1), resolved[0].ID)
}

func TestResolveTemplatesEmpty(t *testing.T) {
	assert.Empty(t, ResolveTemplates(nil, int64Ptr(10)))
}
