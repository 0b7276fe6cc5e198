package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "github.com/AlibekovAA/fadechat/internal/common/errors"
)

type sampleRequest struct {
	Username  string `json:"username" form:"username" validate:"max=8"`
	MessageID string `json:"messageId" form:"message-id"`
	Ignored   string `json:"-" form:"-"`
}

func TestDecodeRequest_Form(t *testing.T) {
	form := url.Values{"username": {"alice"}, "message-id": {"m-1"}, "-": {"x"}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var dst sampleRequest
	require.NoError(t, DecodeRequest(req, &dst))
	assert.Equal(t, sampleRequest{Username: "alice", MessageID: "m-1"}, dst)
}

func TestDecodeRequest_JSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":"bob","messageId":"m-2"}`))
	req.Header.Set("Content-Type", "application/json")

	var dst sampleRequest
	require.NoError(t, DecodeRequest(req, &dst))
	assert.Equal(t, "bob", dst.Username)
	assert.Equal(t, "m-2", dst.MessageID)
}

func TestDecodeRequest_EmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/json")

	var dst sampleRequest
	assert.NoError(t, DecodeRequest(req, &dst))
}

func TestDecodeRequest_Invalid(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
	}{
		{"broken json", "not json", "application/json"},
		{"too long", `{"username":"abcdefghij"}`, "application/json"},
		{"too long form", "username=abcdefghij", "application/x-www-form-urlencoded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)

			var dst sampleRequest
			assert.ErrorIs(t, DecodeRequest(req, &dst), commonerrors.ErrInvalidPayload)
		})
	}
}
