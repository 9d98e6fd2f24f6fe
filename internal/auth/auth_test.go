package auth

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
)

func TestTokenResolver(t *testing.T) {
	r := NewTokenResolver(map[string]Identity{
		"secret-1": {UserID: "u1", Role: RoleCandidate},
		"secret-2": {UserID: "r1", Role: RoleRecruiter},
	})
	ctx := context.Background()

	id, err := r.Resolve(ctx, "secret-2")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if id.UserID != "r1" || !id.IsRecruiter() {
		t.Errorf("id = %+v", id)
	}

	for _, bad := range []string{"", "secret-3", HashToken("secret-1")} {
		if _, err := r.Resolve(ctx, bad); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Resolve(%q) err = %v, want ErrInvalidCredentials", bad, err)
		}
	}
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"Bearer abc", "abc", false},
		{"bearer  abc ", "abc", false},
		{"abc", "abc", false},
		{"Basic dXNlcjpwYXNz", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("GET", "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		got, err := ExtractToken(req)
		if (err != nil) != tt.wantErr {
			t.Errorf("ExtractToken(%q) err = %v, wantErr %v", tt.header, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ExtractToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestIdentityContext(t *testing.T) {
	if _, ok := FromContext(context.Background()); ok {
		t.Error("empty context must not carry an identity")
	}
	want := Identity{UserID: "u1", Role: RoleCandidate}
	got, ok := FromContext(WithIdentity(context.Background(), want))
	if !ok || got != want {
		t.Errorf("FromContext = %+v, %v", got, ok)
	}
	if Role("admin").Valid() {
		t.Error("admin must not be a valid role")
	}
}
