package auth

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MattThePandah/RA-Tracker/pkg/errors"
	"github.com/MattThePandah/RA-Tracker/pkg/logger"
)

const testTokenURL = "https://id.example.test/oauth2/token"

func newTestTokenSource(t *testing.T, transport *httpmock.MockTransport) *TokenSource {
	t.Helper()
	src, err := NewTokenSource(&Credentials{ClientID: "cid", ClientSecret: "secret"}, TokenOptions{
		TokenURL:   testTokenURL,
		HTTPClient: &http.Client{Transport: transport},
		Logger:     logger.NewNopLogger(),
	})
	require.NoError(t, err)
	return src
}

func TestNewTokenSourceRequiresCredentials(t *testing.T) {
	for _, creds := range []*Credentials{nil, {ClientID: "cid"}, {ClientSecret: "secret"}} {
		_, err := NewTokenSource(creds, TokenOptions{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrorTypeCredentials))
	}
}

func TestTokenExchangeSendsClientCredentials(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("POST", testTokenURL, func(req *http.Request) (*http.Response, error) {
		if err := req.ParseForm(); err != nil {
			return nil, err
		}
		assert.Equal(t, "cid", req.PostForm.Get("client_id"))
		assert.Equal(t, "secret", req.PostForm.Get("client_secret"))
		assert.Equal(t, "client_credentials", req.PostForm.Get("grant_type"))
		assert.Equal(t, "application/x-www-form-urlencoded", req.Header.Get("Content-Type"))
		return httpmock.NewStringResponse(200, `{"access_token":"tok-1","expires_in":3600,"token_type":"bearer"}`), nil
	})

	src := newTestTokenSource(t, transport)
	token, err := src.Token(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
	assert.Equal(t, "cid", src.ClientID())
}

func TestTokenIsCachedUntilNearExpiry(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("POST", testTokenURL,
		httpmock.NewStringResponder(200, `{"access_token":"tok","expires_in":3600}`))

	src := newTestTokenSource(t, transport)
	current := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	src.now = func() time.Time { return current }

	_, err := src.Token(context.Background())
	require.NoError(t, err)
	_, err = src.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, transport.GetTotalCallCount())

	// inside the refresh margin
	current = current.Add(3600*time.Second - 30*time.Second)
	_, err = src.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, transport.GetTotalCallCount())
}

func TestTokenWithoutExpiryIsKept(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("POST", testTokenURL,
		httpmock.NewStringResponder(200, `{"access_token":"tok"}`))

	src := newTestTokenSource(t, transport)
	for i := 0; i < 3; i++ {
		_, err := src.Token(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 1, transport.GetTotalCallCount())

	src.Invalidate()
	_, err := src.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, transport.GetTotalCallCount())
}

func TestTokenFailuresAreAuthenticationErrors(t *testing.T) {
	tests := []struct {
		name      string
		responder httpmock.Responder
		code      int
	}{
		{"rejected", httpmock.NewStringResponder(401, `{"message":"invalid client"}`), 401},
		{"bad json", httpmock.NewStringResponder(200, `not json`), 0},
		{"missing token", httpmock.NewStringResponder(200, `{"expires_in":10}`), 0},
		{"network", httpmock.NewErrorResponder(assert.AnError), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := httpmock.NewMockTransport()
			transport.RegisterResponder("POST", testTokenURL, tt.responder)

			_, err := newTestTokenSource(t, transport).Token(context.Background())

			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrorTypeAuthentication), "got %v", err)
			if tt.code != 0 {
				var typed *errors.Error
				require.ErrorAs(t, err, &typed)
				assert.Equal(t, tt.code, typed.Code)
			}
		})
	}
}
