package policy

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miguelmarques1/church-web/pkg/permission"
)

const smallPolicy = `
roles:
  Member:
    news: [read]
    chat: [create, read, update]
    settings: []
  admin:
    news: ["*"]
    chat: ["*"]
    settings: ["*"]
pages:
  public: [/, /news]
navigation:
  management: []
`

func TestParse(t *testing.T) {
	doc, err := Parse(strings.NewReader(smallPolicy))
	require.NoError(t, err)

	p, ok := doc.Table.Lookup(permission.RoleMember, "chat")
	require.True(t, ok)
	assert.Equal(t, permission.Grant(permission.ActionCreate, permission.ActionRead, permission.ActionUpdate), p)

	p, ok = doc.Table.Lookup(permission.RoleMember, "settings")
	require.True(t, ok)
	assert.Equal(t, permission.None, p)

	p, ok = doc.Table.Lookup(permission.RoleAdmin, "news")
	require.True(t, ok)
	assert.Equal(t, permission.All, p)

	assert.False(t, doc.Table.HasRole(permission.RoleLeader))
}

func TestParsePagesDefaults(t *testing.T) {
	doc, err := Parse(strings.NewReader(smallPolicy))
	require.NoError(t, err)

	defaults := permission.DefaultPages()
	assert.Equal(t, []string{"/", "/news"}, doc.Pages.Public)
	assert.Equal(t, defaults.RequiresLogin, doc.Pages.RequiresLogin)
	assert.Equal(t, defaults.AdminOnly, doc.Pages.AdminOnly)
	assert.Empty(t, doc.Pages.Management)
	assert.NotNil(t, doc.Pages.Management, "an explicit empty list must not fall back to the default")
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			name:    "empty",
			input:   "",
			wantErr: "policy document is empty",
		},
		{
			name:    "no roles",
			input:   "pages:\n  public: [/]\n",
			wantErr: "policy defines no roles",
		},
		{
			name:    "unknown role",
			input:   "roles:\n  deacon:\n    news: [read]\n",
			wantErr: `unknown role "deacon"`,
		},
		{
			name:    "duplicate role",
			input:   "roles:\n  admin:\n    news: [read]\n  ADMIN:\n    news: [read]\n",
			wantErr: `role "admin" is defined more than once`,
		},
		{
			name:    "unknown action",
			input:   "roles:\n  member:\n    news: [read, publish]\n",
			wantErr: `role "member", resource "news": unknown action "publish"`,
		},
		{
			name:    "unknown field",
			input:   "roles:\n  member:\n    news: [read]\nextras: true\n",
			wantErr: "field extras not found",
		},
		{
			name:    "malformed",
			input:   "roles: [",
			wantErr: "failed to parse policy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	table := permission.DefaultTable()
	pages := permission.DefaultPages()

	out, err := Marshal(table, pages)
	require.NoError(t, err)

	doc, err := Parse(strings.NewReader(string(out)))
	require.NoError(t, err)

	assert.True(t, table.Equal(doc.Table), "table differs after round trip:\n%s", cmp.Diff(table.String(), doc.Table.String()))
	if diff := cmp.Diff(pages, doc.Pages); diff != "" {
		t.Errorf("pages differ after round trip (-want +got):\n%s", diff)
	}
}

func TestMarshalFormat(t *testing.T) {
	table := permission.NewTable(map[permission.Role]map[string]permission.Permission{
		permission.RoleAdmin:  {"news": permission.All},
		permission.RoleMember: {"news": permission.Grant(permission.ActionRead), "settings": permission.None},
	})
	pages := permission.Pages{
		Public:        []string{"/"},
		RequiresLogin: []string{"/chat"},
		AdminOnly:     []string{"/settings"},
		Management:    []string{},
	}

	out, err := Marshal(table, pages)
	require.NoError(t, err)

	want := `roles:
    member:
        news: [read]
        settings: []
    admin:
        news: [create, read, update, delete]
pages:
    public: [/]
    requires_login: [/chat]
navigation:
    admin_only: [/settings]
    management: []
`
	assert.Equal(t, want, string(out))
}

func TestDefault(t *testing.T) {
	doc := Default()
	assert.True(t, permission.DefaultTable().Equal(doc.Table))
	assert.Empty(t, doc.Validate())
	assert.Len(t, doc.SHA256(), 64)
	assert.Contains(t, doc.Text(), "prayer-requests: [create, read, update]")
}

func TestValidate(t *testing.T) {
	doc, err := Parse(strings.NewReader(`
roles:
  member:
    news: [read]
  leader:
    news: [read]
    events: [read]
  pastor:
    news: [read]
    events: [read]
  admin:
    news: ["*"]
    events: ["*"]
`))
	require.NoError(t, err)

	gaps := doc.Validate()
	require.Len(t, gaps, 1)
	assert.Equal(t, permission.Gap{Kind: permission.GapUnknownResource, Role: "member", Resource: "events"}, gaps[0])
}

func TestBuild(t *testing.T) {
	doc, err := Parse(strings.NewReader(smallPolicy))
	require.NoError(t, err)

	var gaps []permission.Gap
	svc, err := doc.Build(permission.WithDiagnostics(permission.DiagnosticsFunc(func(g permission.Gap) {
		gaps = append(gaps, g)
	})))
	require.NoError(t, err)

	assert.True(t, svc.HasPermission("member", "chat", permission.ActionUpdate))
	assert.False(t, svc.HasPermission("member", "settings", permission.ActionRead))
	assert.False(t, svc.HasPermission("leader", "news", permission.ActionRead))
	require.Len(t, gaps, 1)
	assert.Equal(t, permission.GapUnknownRole, gaps[0].Kind)

	assert.False(t, svc.CanAccessPage("", "/chat"))
	assert.True(t, svc.CanAccessPage("", "/news/1"))
}

func TestBuildEmptyDocument(t *testing.T) {
	_, err := (&Document{}).Build()
	assert.Error(t, err)
}
