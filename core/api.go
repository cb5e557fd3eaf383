package core

import (
	"context"
	"net/http"
)

type (
	// Request describes a single backend call.
	Request struct {
		Method string
		Path   string            // relative to the backend base URL, e.g. "/teachers"
		Query  map[string]string // optional
		Body   interface{}       // JSON encoded when not nil
		Public bool              // sent without a bearer token (login)
	}

	// APIClient issues authenticated REST requests to the backend.
	// out, when not nil, receives the decoded JSON response body.
	APIClient interface {
		Do(ctx context.Context, req Request, out interface{}) error
	}

	// Credential is what the TokenStore keeps: the bearer token and the user the login returned.
	// The token is opaque; the user fields let the session be restored without reading it.
	Credential struct {
		Token  string `json:"token"`
		Role   string `json:"role,omitempty"`
		Name   string `json:"name,omitempty"`
		Email  string `json:"email,omitempty"`
		UserID string `json:"userId,omitempty"`
	}

	// TokenStore is the persistent storage of the auth token.
	// Token returns an empty string when no token is stored.
	// SetToken stores a bare token, without user fields.
	TokenStore interface {
		Token() (string, error)
		SetToken(token string) error
		Credential() (Credential, error)
		SetCredential(cred Credential) error
		Clear() error
	}
)

func Get(path string) Request { return Request{Method: http.MethodGet, Path: path} }

func Post(path string, body interface{}) Request {
	return Request{Method: http.MethodPost, Path: path, Body: body}
}

func Put(path string, body interface{}) Request {
	return Request{Method: http.MethodPut, Path: path, Body: body}
}

func Delete(path string) Request { return Request{Method: http.MethodDelete, Path: path} }
