package tokenpkg

import (
	"testing"
	"time"

	"github.com/kodbank/kodbank/pkg/randompkg"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestNewPasetoMaker(t *testing.T) {
	t.Parallel()

	// OK
	symmetricKey := randompkg.String(32)

	_, err := NewPasetoMaker(symmetricKey)
	if err != nil {
		t.Errorf("NewPasetoMaker(%v) returned error: %v", symmetricKey, err)
	}

	// invalidKeySize
	shortKey := randompkg.String(31)

	got, err := NewPasetoMaker(shortKey)
	if err == nil {
		t.Errorf("NewPasetoMaker(%v) returned nil error", shortKey)
	}

	if got != nil {
		t.Errorf("PasetoMaker = %+v, want nil", got)
	}
}

func TestPasetoMaker(t *testing.T) {
	t.Parallel()

	symmetricKey := randompkg.String(32)

	maker, err := NewPasetoMaker(symmetricKey)
	if err != nil {
		t.Fatalf("NewPasetoMaker(%v) returned error: %v", symmetricKey, err)
	}

	userID := int64(randompkg.IntBetween(1, 1000))
	duration := time.Minute

	token, payload, err := maker.CreateToken(userID, duration)
	if err != nil {
		t.Errorf("maker.CreateToken(%v, %v) returned error: %v", userID, duration, err)
	}

	_, err = maker.VerifyToken(token)
	if err != nil {
		t.Errorf("maker.VerifyToken(%v) returned error: %v", token, err)
	}

	want := &Payload{
		UserID:    userID,
		IssuedAt:  time.Now(),
		ExpiredAt: time.Now().Add(duration),
	}

	ignore := cmpopts.IgnoreFields(Payload{}, "ID")
	delta := cmpopts.EquateApproxTime(time.Minute)

	if diff := cmp.Diff(payload, want, ignore, delta); diff != "" {
		t.Errorf("maker.CreateToken(%v, %v) returned unexpected diff: %v", userID, duration, diff)
	}
}

func TestExpiredPasetoToken(t *testing.T) {
	t.Parallel()

	symmetricKey := randompkg.String(32)

	maker, err := NewPasetoMaker(symmetricKey)
	if err != nil {
		t.Fatalf("NewPasetoMaker(%v) returned error: %v", symmetricKey, err)
	}

	userID := int64(randompkg.IntBetween(1, 1000))
	duration := -time.Minute

	token, _, err := maker.CreateToken(userID, duration)
	if err != nil {
		t.Errorf("maker.CreateToken(%v, %v) returned error: %v", userID, duration, err)
	}

	_, err = maker.VerifyToken(token)
	if err != ErrExpiredToken {
		t.Errorf("maker.VerifyToken(%v) returned unexpected error: %v", token, err)
	}
}
