package sender_test

import (
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"smishguard/internal/analysis/sender"
	"smishguard/internal/domain/models"
	"smishguard/pkg/logger"
)

// signedPack marshals pack, signs its canonical form with priv and returns
// the payload with the signature embedded.
func signedPack(t *testing.T, pack models.SenderPack, priv ed25519.PrivateKey) []byte {
	t.Helper()

	raw, err := json.Marshal(pack)
	if err != nil {
		t.Fatalf("marshal pack: %v", err)
	}
	canonical, err := sender.CanonicalBytes(raw)
	if err != nil {
		t.Fatalf("canonical bytes: %v", err)
	}
	pack.Signature = sender.EncodeSignature(ed25519.Sign(priv, canonical))

	signed, err := json.Marshal(pack)
	if err != nil {
		t.Fatalf("marshal signed pack: %v", err)
	}
	return signed
}

func testPack() models.SenderPack {
	return models.SenderPack{
		Region:  "IN",
		Version: 3,
		Entries: []models.SenderPackEntry{
			{Pattern: "AIRTEL|AD-AIRTEL|AX-AIRTEL", Brand: "Airtel", Type: models.BrandTypeCarrier, Keywords: []string{"airtel"}},
			{Pattern: "HDFCBK|HD-HDFCBK", Brand: "HDFC Bank", Type: models.BrandTypeBank, Keywords: []string{"hdfc"}},
			{Pattern: "VICARE", Brand: "Vi", Type: models.BrandTypeCarrier, Keywords: []string{"vi"}},
		},
		Timestamp: time.Now().UTC().Truncate(time.Second),
		Signature: strings.Repeat("0", 128),
	}
}

func newKeyedStore(t *testing.T, allowDevSig bool) (*sender.PackStore, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return sender.NewPackStore(pub, allowDevSig, logger.NewDefault()), priv
}

func TestLoadValidPack(t *testing.T) {
	store, priv := newKeyedStore(t, false)

	pack, err := store.Load(signedPack(t, testPack(), priv))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if pack.Region != "IN" || pack.Version != 3 {
		t.Fatalf("unexpected pack identity: %s v%d", pack.Region, pack.Version)
	}

	if store.Active("IN") == nil {
		t.Fatal("pack must be active after load")
	}
	if store.Active("in") == nil {
		t.Fatal("region lookup must be case-insensitive")
	}
	if store.Active("GB") != nil {
		t.Fatal("unrelated region must have no pack")
	}
}

func TestLoadRejectsWrongKey(t *testing.T) {
	store, _ := newKeyedStore(t, false)
	_, otherPriv, _ := ed25519.GenerateKey(nil)

	if _, err := store.Load(signedPack(t, testPack(), otherPriv)); err == nil {
		t.Fatal("pack signed with a different key must be rejected")
	}
	if store.Active("IN") != nil {
		t.Fatal("rejected pack must not become active")
	}
}

func TestLoadRejectsTamperedPayload(t *testing.T) {
	store, priv := newKeyedStore(t, false)

	payload := signedPack(t, testPack(), priv)
	tampered := []byte(strings.Replace(string(payload), "AIRTEL", "EVIL-1", 1))

	if _, err := store.Load(tampered); err == nil {
		t.Fatal("tampered payload must be rejected")
	}
}

func TestRejectionKeepsPreviousPack(t *testing.T) {
	store, priv := newKeyedStore(t, false)

	if _, err := store.Load(signedPack(t, testPack(), priv)); err != nil {
		t.Fatalf("load: %v", err)
	}

	next := testPack()
	next.Version = 4
	payload := signedPack(t, next, priv)
	tampered := []byte(strings.Replace(string(payload), "HDFCBK", "FRAUDX", 1))

	if _, err := store.Load(tampered); err == nil {
		t.Fatal("tampered update must be rejected")
	}
	if got := store.Active("IN"); got == nil || got.Version != 3 {
		t.Fatalf("previous pack must stay active, got %+v", got)
	}
}

func TestLoadRejectsStaleVersion(t *testing.T) {
	store, priv := newKeyedStore(t, false)

	if _, err := store.Load(signedPack(t, testPack(), priv)); err != nil {
		t.Fatalf("load: %v", err)
	}

	older := testPack()
	older.Version = 2
	if _, err := store.Load(signedPack(t, older, priv)); !errors.Is(err, sender.ErrStaleVersion) {
		t.Fatalf("validly signed older pack must be rejected as stale, got %v", err)
	}

	same := testPack()
	if _, err := store.Load(signedPack(t, same, priv)); !errors.Is(err, sender.ErrStaleVersion) {
		t.Fatalf("re-upload of the active version must be rejected, got %v", err)
	}

	if got := store.Active("IN"); got == nil || got.Version != 3 {
		t.Fatalf("active pack must stay at version 3, got %+v", got)
	}

	newer := testPack()
	newer.Version = 4
	if _, err := store.Load(signedPack(t, newer, priv)); err != nil {
		t.Fatalf("newer version must be accepted: %v", err)
	}
	if got := store.Active("IN"); got == nil || got.Version != 4 {
		t.Fatalf("active pack must advance to version 4, got %+v", got)
	}
}

func TestDevSentinelSignature(t *testing.T) {
	pack := testPack() // carries the all-zero sentinel signature
	payload, err := json.Marshal(pack)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	strict, _ := newKeyedStore(t, false)
	if _, err := strict.Load(payload); err == nil {
		t.Fatal("sentinel signature must be rejected in strict mode")
	}

	dev, _ := newKeyedStore(t, true)
	if _, err := dev.Load(payload); err != nil {
		t.Fatalf("sentinel signature must be accepted in dev mode: %v", err)
	}
}

func TestLoadRejectsDuplicatePatterns(t *testing.T) {
	store, priv := newKeyedStore(t, false)

	pack := testPack()
	pack.Entries = append(pack.Entries, models.SenderPackEntry{
		Pattern: "vicare", Brand: "Vi Clone", Type: models.BrandTypeCarrier,
	})

	if _, err := store.Load(signedPack(t, pack, priv)); err == nil {
		t.Fatal("duplicate patterns must be rejected")
	}
}

func TestSignatureEncoding(t *testing.T) {
	sig := []byte{0xde, 0xad, 0xbe, 0xef}
	encoded := sender.EncodeSignature(sig)
	decoded, err := sender.DecodeSignature(encoded)
	if err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if string(decoded) != string(sig) {
		t.Fatalf("round trip mismatch: %x", decoded)
	}

	if _, err := sender.DecodeSignature("abc"); err == nil {
		t.Fatal("odd-length hex must be rejected")
	}
	if _, err := sender.DecodeSignature("zz"); err == nil {
		t.Fatal("non-hex input must be rejected")
	}

	empty, err := sender.DecodeSignature("")
	if err != nil {
		t.Fatalf("empty string decodes to empty bytes: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty signature, got %d bytes", len(empty))
	}
}
