package msal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	msalerrors "github.com/AzureAD/microsoft-authentication-library-for-go/apps/errors"
	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/graph-cli/internal/core/domain"
)

func callErr(status int, body string) error {
	return msalerrors.CallErr{
		Resp: &http.Response{StatusCode: status},
		Err:  fmt.Errorf("http call: reply status code was %d:\n%s", status, body),
	}
}

func TestClassifySilent(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		interaction bool
	}{
		{"cache miss", errors.New("no token found"), true},
		{"invalid grant", callErr(400, `{"error":"invalid_grant"}`), true},
		{"interaction required", callErr(400, `{"error":"interaction_required"}`), true},
		{"consent required", callErr(400, `{"suberror":"consent_required"}`), true},
		{"other client error", callErr(400, `{"error":"invalid_client"}`), false},
		{"server error", callErr(503, `{"error":"invalid_grant"}`), false},
		{"cancelled", context.Canceled, false},
		{"deadline", fmt.Errorf("refresh: %w", context.DeadlineExceeded), false},
		{"transport", &url.Error{Op: "Post", URL: "https://login", Err: errors.New("dial tcp: refused")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifySilent(tt.err)

			assert.Equal(t, tt.interaction, errors.Is(got, domain.ErrInteractionRequired))
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestClassifySilent_Nil(t *testing.T) {
	assert.NoError(t, classifySilent(nil))
}
