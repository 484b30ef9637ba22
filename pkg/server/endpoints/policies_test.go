package endpoints

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miguelmarques1/church-web/pkg/server/store"
)

func TestCurrentPolicy(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		role     string
		expected int
	}{
		{role: "", expected: http.StatusUnauthorized},
		{role: "member", expected: http.StatusForbidden},
		{role: "leader", expected: http.StatusForbidden},
		{role: "pastor", expected: http.StatusOK},
		{role: "admin", expected: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run("role "+tt.role, func(t *testing.T) {
			rec := ts.do(t, "GET", "/policy", tt.role, nil)
			assert.Equal(t, tt.expected, rec.Code)
		})
	}

	rec := ts.do(t, "GET", "/policy", "admin", nil)
	var resp PolicyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Version)
	assert.Equal(t, "abc123", resp.SHA256)
	assert.Equal(t, "default", resp.Source)
}

func TestPolicyVersions(t *testing.T) {
	created := time.Date(2024, 4, 30, 12, 0, 0, 0, time.UTC)

	t.Run("list", func(t *testing.T) {
		ts := newTestServer(t)
		ts.policies.On("ListPolicyVersions").Return([]store.PolicyVersion{
			{Version: 2, PolicySHA256: "bbb", Source: "/etc/church/policy.yml", CreatedAt: created},
			{Version: 1, PolicySHA256: "aaa", Source: "/etc/church/policy.yml", CreatedAt: created.Add(-time.Hour)},
		}, nil)

		rec := ts.do(t, "GET", "/policy/versions", "admin", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp []PolicyVersionResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp, 2)
		assert.Equal(t, 2, resp[0].Version)
		assert.Empty(t, resp[0].PolicyText)
	})

	t.Run("get", func(t *testing.T) {
		ts := newTestServer(t)
		ts.policies.On("GetPolicyVersion", 2).Return(&store.PolicyVersion{
			Version: 2, PolicySHA256: "bbb", PolicyText: "roles: {}\n", CreatedAt: created,
		}, nil)

		rec := ts.do(t, "GET", "/policy/versions/2", "pastor", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp PolicyVersionResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "roles: {}\n", resp.PolicyText)
	})

	t.Run("not found", func(t *testing.T) {
		ts := newTestServer(t)
		ts.policies.On("GetPolicyVersion", 9).Return(nil, store.ErrPolicyVersionNotFound)

		rec := ts.do(t, "GET", "/policy/versions/9", "admin", nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("member is forbidden", func(t *testing.T) {
		ts := newTestServer(t)

		rec := ts.do(t, "GET", "/policy/versions", "member", nil)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		ts.policies.AssertNotCalled(t, "ListPolicyVersions")
	})
}
