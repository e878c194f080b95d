package identity

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Error is a failed identitytoolkit call. Message is safe to show to users.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// HTTPStatus picks the status the API should answer with
func (e *Error) HTTPStatus() int {
	switch {
	case e.Code == "EMAIL_EXISTS":
		return http.StatusConflict
	case e.Code == "TOO_MANY_ATTEMPTS_TRY_LATER":
		return http.StatusTooManyRequests
	case e.Code == "EMAIL_NOT_FOUND", e.Code == "INVALID_PASSWORD",
		e.Code == "INVALID_LOGIN_CREDENTIALS", e.Code == "USER_DISABLED":
		return http.StatusUnauthorized
	case e.Code == "OPERATION_NOT_ALLOWED":
		return http.StatusForbidden
	case strings.HasPrefix(e.Code, "WEAK_PASSWORD"), e.Code == "INVALID_EMAIL",
		e.Code == "MISSING_PASSWORD", e.Code == "MISSING_EMAIL":
		return http.StatusBadRequest
	case e.Code == "":
		return http.StatusBadGateway
	}
	return http.StatusBadRequest
}

func parseError(status int, raw []byte) *Error {
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || body.Error.Message == "" {
		return &Error{Status: status, Message: "Could not reach the authentication service."}
	}

	code := body.Error.Message
	return &Error{Status: status, Code: code, Message: messageFor(code)}
}

func messageFor(code string) string {
	switch {
	case code == "EMAIL_EXISTS":
		return "This email is already in use."
	case code == "OPERATION_NOT_ALLOWED":
		return "Password sign-in is not enabled for this project."
	case code == "TOO_MANY_ATTEMPTS_TRY_LATER":
		return "Too many attempts. Try again later."
	case code == "EMAIL_NOT_FOUND":
		return "Email not found."
	case code == "INVALID_PASSWORD":
		return "Invalid password."
	case code == "INVALID_LOGIN_CREDENTIALS":
		return "Invalid email or password."
	case code == "USER_DISABLED":
		return "This account has been disabled."
	case strings.HasPrefix(code, "WEAK_PASSWORD"):
		return "Weak password (at least 6 characters)."
	case code == "INVALID_EMAIL":
		return "Invalid email."
	}
	return "Firebase error: " + code
}
