package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miguelmarques1/church-web/pkg/permission"
)

func defaultService() *permission.Service {
	return permission.NewService(permission.DefaultTable(), permission.DefaultPages())
}

func TestRunCheck(t *testing.T) {
	tests := []struct {
		role     string
		resource string
		action   string
		expected bool
		output   string
	}{
		{role: "leader", resource: "members", action: "update", expected: true, output: "allowed\n"},
		{role: "member", resource: "news", action: "create", expected: false, output: "denied\n"},
		{role: "ADMIN", resource: "visitors", action: "delete", expected: true, output: "allowed\n"},
		{role: "", resource: "news", action: "read", expected: false, output: "denied\n"},
	}

	for _, tt := range tests {
		t.Run(tt.role+" "+tt.resource+" "+tt.action, func(t *testing.T) {
			var buf bytes.Buffer
			allowed, err := runCheck(&buf, defaultService(), tt.role, tt.resource, tt.action)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, allowed)
			assert.Equal(t, tt.output, buf.String())
		})
	}

	t.Run("invalid action", func(t *testing.T) {
		var buf bytes.Buffer
		_, err := runCheck(&buf, defaultService(), "admin", "news", "publish")

		require.Error(t, err)
		assert.Contains(t, err.Error(), `invalid action "publish"`)
		assert.Empty(t, buf.String())
	})
}

func TestRoleArg(t *testing.T) {
	assert.Equal(t, "", roleArg("-"))
	assert.Equal(t, "member", roleArg("member"))
}

func TestRunPage(t *testing.T) {
	var buf bytes.Buffer
	allowed := runPage(&buf, defaultService(), "", "/members")

	assert.False(t, allowed)
	assert.Equal(t, "class:      requires-login\naccessible: false\nnavigation: login\nin menu:    false\n", buf.String())

	buf.Reset()
	assert.True(t, runPage(&buf, defaultService(), "member", "/members"))
	assert.Contains(t, buf.String(), "in menu:    false")
}

func TestRunNav(t *testing.T) {
	var buf bytes.Buffer
	runNav(&buf, defaultService(), "")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 6)
	assert.Contains(t, string(lines[0]), "/ ")
	assert.Contains(t, string(lines[1]), "/news")
}

func TestLoadService(t *testing.T) {
	t.Run("built-in policy", func(t *testing.T) {
		svc, err := loadService("")
		require.NoError(t, err)
		assert.True(t, svc.HasPermission("leader", permission.ResourceNews, permission.ActionDelete))
	})

	t.Run("policy file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "policy.yml")
		require.NoError(t, os.WriteFile(path, []byte(`roles:
  member: {news: [read]}
  leader: {news: [read]}
  pastor: {news: ["*"]}
  admin: {news: ["*"]}
`), 0o600))

		svc, err := loadService(path)
		require.NoError(t, err)
		assert.False(t, svc.HasPermission("leader", permission.ResourceNews, permission.ActionDelete))
		assert.True(t, svc.HasPermission("pastor", permission.ResourceNews, permission.ActionDelete))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadService(filepath.Join(t.TempDir(), "missing.yml"))
		require.Error(t, err)
	})
}
