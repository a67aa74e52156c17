package service_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/tastybytes/backend/internal/service"
)

func tokenInfoServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := map[string]string{
			"sub":            "1234",
			"email":          "gina@gmail.com",
			"email_verified": "true",
			"name":           "Gina",
		}
		switch r.URL.Query().Get("id_token") {
		case "valid":
			info["aud"] = "client-id"
		case "other-client":
			info["aud"] = "someone-else"
		case "unverified":
			info["aud"] = "client-id"
			info["email_verified"] = "false"
		default:
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_token"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(info)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGoogleTokenVerifier(t *testing.T) {
	srv := tokenInfoServer(t)
	v := service.NewGoogleTokenVerifier("client-id", srv.URL)
	ctx := context.Background()

	identity, err := v.Verify(ctx, "valid")
	require.NoError(t, err)
	assert.Equal(t, &service.GoogleIdentity{Subject: "1234", Email: "gina@gmail.com", Name: "Gina"}, identity)

	for _, token := range []string{"other-client", "unverified", "expired", ""} {
		_, err := v.Verify(ctx, token)
		assert.Error(t, err, token)
	}
}

func TestGoogleTokenVerifierRequiresClientID(t *testing.T) {
	srv := tokenInfoServer(t)
	v := service.NewGoogleTokenVerifier("", srv.URL)

	_, err := v.Verify(context.Background(), "valid")
	assert.Error(t, err)
}
