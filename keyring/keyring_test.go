package keyring

import (
	"errors"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestHasCredentials(t *testing.T) {
	keyring.MockInit()

	if err := keyring.Set(ServiceName, "dbid:1", "token"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		accountID string
		want      bool
		wantErr   error
	}{
		{"stored", "dbid:1", true, nil},
		{"missing", "dbid:2", false, nil},
		{"empty", "", false, ErrNoAccount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := HasCredentials(tt.accountID)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("HasCredentials() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("HasCredentials() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKeyringUnavailable(t *testing.T) {
	keyring.MockInitWithError(errors.New("dbus: no secret service"))

	if _, err := HasCredentials("dbid:1"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("HasCredentials() error = %v, want ErrUnavailable", err)
	}
	if got := Describe("dbid:1"); got != "keyring unavailable" {
		t.Errorf("Describe() = %q, want keyring unavailable", got)
	}

	keyring.MockInit()
	if got := Describe(""); got != "not linked" {
		t.Errorf("Describe() = %q, want not linked", got)
	}
	if got := Describe("dbid:9"); got != "missing" {
		t.Errorf("Describe() = %q, want missing", got)
	}
}
