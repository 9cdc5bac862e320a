package result

import (
	"errors"
	"fmt"
	"testing"

	"github.com/GioMjds/commitly/internal/daykey"
	"github.com/GioMjds/commitly/internal/github"
	"github.com/GioMjds/commitly/internal/identity"
	"github.com/GioMjds/commitly/internal/storage"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"not authenticated", identity.ErrNotAuthenticated, CodeNotAuthenticated},
		{"token expired", fmt.Errorf("fetch: %w", github.ErrTokenExpired), CodeReauthRequired},
		{"not found", fmt.Errorf("%w: entry x", storage.ErrNotFound), CodeNotFound},
		{"validation", fmt.Errorf("%w: bad", storage.ErrValidation), CodeInvalid},
		{"malformed day", fmt.Errorf("%w: 2024-1-1", daykey.ErrMalformedKey), CodeInvalid},
		{"other", errors.New("disk full"), CodeFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := FromError("doing it", tt.err)
			if r.Success {
				t.Fatal("expected failure")
			}
			if r.Code != tt.want {
				t.Errorf("code = %s, want %s", r.Code, tt.want)
			}
		})
	}
}

func TestFromErrorPrefix(t *testing.T) {
	r := FromError("deleting entry", errors.New("disk full"))
	if r.Message != "deleting entry: disk full" {
		t.Errorf("unexpected message %q", r.Message)
	}
	if r := FromError("", errors.New("disk full")); r.Message != "disk full" {
		t.Errorf("unexpected message %q", r.Message)
	}
}

func TestConstructors(t *testing.T) {
	ok := OK("done", 3)
	if !ok.Success || ok.Code != CodeOK || ok.Data != 3 {
		t.Errorf("unexpected OK result %+v", ok)
	}
	info := Info(CodeAlreadyClosed, "closed")
	if info.Success || !info.Is(CodeAlreadyClosed) {
		t.Errorf("unexpected Info result %+v", info)
	}
	if NotAuthenticated().Code != CodeNotAuthenticated {
		t.Error("NotAuthenticated should carry its code")
	}
}
