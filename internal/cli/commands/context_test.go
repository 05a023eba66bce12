package commands

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/tenantgate/tenantgate/internal/cli/credentials"
)

func TestContextCmd_UsesSavedSession(t *testing.T) {
	keyring.MockInit()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer saved-session" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/api/auth/context":
			_, _ = w.Write([]byte(`{"data":{"tenant_id":2,"user_id":5},"message":"ok"}`))
		case "/api/user-products":
			_, _ = w.Write([]byte(`{"data":[{"product_id":4,"product_name":"crm"}],"message":"ok"}`))
		}
	}))
	defer srv.Close()

	require.NoError(t, credentials.Default.SaveSession(srv.URL, "saved-session"))

	var out bytes.Buffer
	cmd := NewContextCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--server", srv.URL, "--products"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Tenant: 2")
	assert.Contains(t, out.String(), "User:   5")
	assert.Contains(t, out.String(), "4  crm")
}

func TestContextCmd_NoSavedSession(t *testing.T) {
	keyring.MockInit()

	cmd := NewContextCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--server", "http://127.0.0.1:1"})

	err := cmd.Execute()
	assert.ErrorIs(t, err, credentials.ErrNoSession)
}
