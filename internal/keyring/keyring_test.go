package keyring

import (
	"errors"
	"testing"

	gokeyring "github.com/zalando/go-keyring"
)

func TestSetAndGetToken(t *testing.T) {
	gokeyring.MockInit()

	if err := SetToken("abc.def.ghi"); err != nil {
		t.Fatalf("SetToken failed: %v", err)
	}

	got, err := GetToken()
	if err != nil {
		t.Fatalf("GetToken failed: %v", err)
	}
	if got != "abc.def.ghi" {
		t.Errorf("expected stored token, got %q", got)
	}
}

func TestSetTokenEmpty(t *testing.T) {
	gokeyring.MockInit()

	if err := SetToken(""); err == nil {
		t.Error("expected error for empty token")
	}
}

func TestGetTokenNotFound(t *testing.T) {
	gokeyring.MockInit()
	_ = DeleteToken()

	if _, err := GetToken(); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteToken(t *testing.T) {
	gokeyring.MockInit()

	if err := SetToken("tok"); err != nil {
		t.Fatalf("SetToken failed: %v", err)
	}
	if err := DeleteToken(); err != nil {
		t.Fatalf("DeleteToken failed: %v", err)
	}
	if err := DeleteToken(); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestIsAvailableWithMock(t *testing.T) {
	gokeyring.MockInit()

	if !IsAvailable() {
		t.Error("expected mock keyring to be available")
	}
}

func TestUnavailableKeyring(t *testing.T) {
	gokeyring.MockInitWithError(errors.New("no dbus"))
	defer gokeyring.MockInit()

	if _, err := GetToken(); !errors.Is(err, ErrKeyringUnavailable) {
		t.Errorf("expected ErrKeyringUnavailable, got %v", err)
	}
	if IsAvailable() {
		t.Error("expected keyring to report unavailable")
	}
}
