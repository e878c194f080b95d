package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler func(method string, body map[string]interface{}) (int, string)) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		status, resp := handler(r.URL.Path, body)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(resp))
	}))
	t.Cleanup(srv.Close)
	return NewClient("test-key").WithBaseURL(srv.URL + "/")
}

func TestSignUpTrimsEmail(t *testing.T) {
	client := newTestServer(t, func(path string, body map[string]interface{}) (int, string) {
		assert.Equal(t, "/accounts:signUp", path)
		assert.Equal(t, "ana@mail.com", body["email"])
		assert.Equal(t, true, body["returnSecureToken"])
		return 200, `{"idToken":"tok","localId":"uid-1","email":"ana@mail.com","refreshToken":"r","expiresIn":"3600"}`
	})

	res, err := client.SignUp(context.Background(), "  ana@mail.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", res.LocalID)
	assert.Equal(t, "tok", res.IDToken)
	assert.Equal(t, "3600", res.ExpiresIn)
}

func TestSignInMapsErrors(t *testing.T) {
	cases := []struct {
		code    string
		message string
		status  int
	}{
		{"EMAIL_NOT_FOUND", "Email not found.", http.StatusUnauthorized},
		{"INVALID_PASSWORD", "Invalid password.", http.StatusUnauthorized},
		{"USER_DISABLED", "This account has been disabled.", http.StatusUnauthorized},
		{"WEAK_PASSWORD : Password should be at least 6 characters", "Weak password (at least 6 characters).", http.StatusBadRequest},
		{"TOO_MANY_ATTEMPTS_TRY_LATER", "Too many attempts. Try again later.", http.StatusTooManyRequests},
		{"SOMETHING_NEW", "Firebase error: SOMETHING_NEW", http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			client := newTestServer(t, func(string, map[string]interface{}) (int, string) {
				return 400, `{"error":{"code":400,"message":"` + tc.code + `"}}`
			})

			_, err := client.SignIn(context.Background(), "a@b.c", "x")
			var idErr *Error
			require.True(t, errors.As(err, &idErr))
			assert.Equal(t, tc.code, idErr.Code)
			assert.Equal(t, tc.message, idErr.Message)
			assert.Equal(t, tc.status, idErr.HTTPStatus())
		})
	}
}

func TestUnparseableErrorBody(t *testing.T) {
	client := newTestServer(t, func(string, map[string]interface{}) (int, string) {
		return 502, "<html>bad gateway</html>"
	})

	_, err := client.SignUp(context.Background(), "a@b.c", "secret1")
	var idErr *Error
	require.True(t, errors.As(err, &idErr))
	assert.Equal(t, "Could not reach the authentication service.", idErr.Message)
	assert.Equal(t, http.StatusBadGateway, idErr.HTTPStatus())
}

func TestSendPasswordReset(t *testing.T) {
	client := newTestServer(t, func(path string, body map[string]interface{}) (int, string) {
		assert.Equal(t, "/accounts:sendOobCode", path)
		assert.Equal(t, "PASSWORD_RESET", body["requestType"])
		assert.Equal(t, "ana@mail.com", body["email"])
		return 200, `{"email":"ana@mail.com"}`
	})

	require.NoError(t, client.SendPasswordReset(context.Background(), "ana@mail.com "))
}
