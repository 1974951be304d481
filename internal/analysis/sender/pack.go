package sender

import (
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"smishguard/internal/domain/models"
	"smishguard/pkg/logger"
)

// ErrBadSignature reports a pack whose signature failed verification
var ErrBadSignature = errors.New("pack signature verification failed")

// ErrStaleVersion reports a pack whose version does not advance the active
// pack for its region. Re-activating an older pack would reopen whatever
// hole the newer pack closed.
var ErrStaleVersion = errors.New("pack version is not newer than the active pack")

// releasePublicKeyHex is the embedded verification key for production
// sender packs. Rotated together with the pack publishing pipeline.
const releasePublicKeyHex = "3b6a27bcceb6a42d62a3a8d02a6f0d73653215771de243a63ac048a18b59da29"

// ReleasePublicKey returns the embedded production verification key
func ReleasePublicKey() ed25519.PublicKey {
	key, err := hex.DecodeString(releasePublicKeyHex)
	if err != nil {
		panic("sender: malformed embedded public key")
	}
	return ed25519.PublicKey(key)
}

// EncodeSignature hex-encodes a detached signature for transport
func EncodeSignature(sig []byte) string {
	return hex.EncodeToString(sig)
}

// DecodeSignature decodes a hex signature, rejecting odd-length input
func DecodeSignature(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid signature encoding: %w", err)
	}
	return b, nil
}

// CanonicalBytes produces the canonical JSON a pack signature covers: the
// payload re-marshaled with keys sorted and the signature field removed.
func CanonicalBytes(payload []byte) ([]byte, error) {
	var doc map[string]any
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("unparseable pack payload: %w", err)
	}
	delete(doc, "signature")
	return json.Marshal(doc) // encoding/json sorts map keys
}

// brandEntry is the per-brand view of a compiled pack
type brandEntry struct {
	name      string
	brandType models.BrandType
	aliasRe   *regexp.Regexp   // whole-word matcher over message text
	patterns  []*regexp.Regexp // legitimate sender-id patterns
}

// CompiledPack is an immutable snapshot of one region's sender pack with
// all matchers precompiled. Replaced wholesale, never mutated.
type CompiledPack struct {
	Region   string
	Version  int
	LoadedAt time.Time
	brands   map[string]*brandEntry
}

// Brands returns the distinct brand names in the pack
func (p *CompiledPack) Brands() []string {
	names := make([]string, 0, len(p.brands))
	for name := range p.brands {
		names = append(names, name)
	}
	return names
}

// packSet maps region -> active compiled pack
type packSet map[string]*CompiledPack

// PackStore holds the active sender packs, swapped atomically on load so
// concurrent readers never observe a half-updated pack.
type PackStore struct {
	publicKey   ed25519.PublicKey
	allowDevSig bool
	active      atomic.Pointer[packSet]
	logger      *logger.Logger
}

// NewPackStore creates a store verifying against key. allowDevSig permits
// the all-zero development sentinel signature and must stay false in
// production builds.
func NewPackStore(key ed25519.PublicKey, allowDevSig bool, log *logger.Logger) *PackStore {
	s := &PackStore{
		publicKey:   key,
		allowDevSig: allowDevSig,
		logger:      log.WithComponent("pack-store"),
	}
	empty := make(packSet)
	s.active.Store(&empty)
	return s
}

// Active returns the compiled pack for region, or nil when none is loaded
func (s *PackStore) Active(region string) *CompiledPack {
	set := *s.active.Load()
	return set[strings.ToUpper(region)]
}

// Load verifies and activates a signed pack payload. Any verification or
// parse failure rejects the pack wholesale, as does a version at or below
// the active pack's; the previously active pack for the region remains
// authoritative.
func (s *PackStore) Load(payload []byte) (*CompiledPack, error) {
	var pack models.SenderPack
	if err := json.Unmarshal(payload, &pack); err != nil {
		return nil, fmt.Errorf("unparseable pack payload: %w", err)
	}
	if pack.Region == "" {
		return nil, fmt.Errorf("pack has no region")
	}

	if err := s.verify(payload, pack.Signature); err != nil {
		s.logger.Warn().Err(err).Str("region", pack.Region).Int("version", pack.Version).Msg("rejecting sender pack")
		return nil, err
	}

	compiled, err := compile(&pack)
	if err != nil {
		return nil, err
	}

	// Copy-on-write swap of the region map. The version check lives inside
	// the loop so a concurrent load cannot slip an older pack past it.
	for {
		old := s.active.Load()
		if cur := (*old)[compiled.Region]; cur != nil && pack.Version <= cur.Version {
			s.logger.Warn().
				Str("region", pack.Region).
				Int("version", pack.Version).
				Int("active_version", cur.Version).
				Msg("rejecting sender pack")
			return nil, fmt.Errorf("pack version %d for %s does not advance active version %d: %w",
				pack.Version, compiled.Region, cur.Version, ErrStaleVersion)
		}
		next := make(packSet, len(*old)+1)
		for region, p := range *old {
			next[region] = p
		}
		next[strings.ToUpper(pack.Region)] = compiled
		if s.active.CompareAndSwap(old, &next) {
			break
		}
	}

	s.logger.Info().
		Str("region", pack.Region).
		Int("version", pack.Version).
		Int("entries", len(pack.Entries)).
		Msg("activated sender pack")

	return compiled, nil
}

// verify checks the detached Ed25519 signature over the canonical payload
func (s *PackStore) verify(payload []byte, signature string) error {
	sig, err := DecodeSignature(signature)
	if err != nil {
		return err
	}
	if len(sig) != ed25519.SignatureSize {
		return fmt.Errorf("signature has %d bytes, want %d", len(sig), ed25519.SignatureSize)
	}

	if isAllZero(sig) {
		if s.allowDevSig {
			s.logger.Warn().Msg("accepting development sentinel signature")
			return nil
		}
		return fmt.Errorf("development sentinel signature not accepted: %w", ErrBadSignature)
	}

	canonical, err := CanonicalBytes(payload)
	if err != nil {
		return err
	}
	if !ed25519.Verify(s.publicKey, canonical, sig) {
		return ErrBadSignature
	}
	return nil
}

func isAllZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// compile validates entries and precompiles every matcher
func compile(pack *models.SenderPack) (*CompiledPack, error) {
	compiled := &CompiledPack{
		Region:   strings.ToUpper(pack.Region),
		Version:  pack.Version,
		LoadedAt: time.Now(),
		brands:   make(map[string]*brandEntry),
	}

	seenPatterns := make(map[string]bool)
	aliases := make(map[string][]string)

	for _, entry := range pack.Entries {
		if entry.Pattern == "" || entry.Brand == "" {
			return nil, fmt.Errorf("pack entry missing pattern or brand")
		}
		key := strings.ToLower(entry.Pattern)
		if seenPatterns[key] {
			return nil, fmt.Errorf("duplicate pack pattern %q", entry.Pattern)
		}
		seenPatterns[key] = true

		// Patterns anchor the whole sender id, case-insensitively.
		re, err := regexp.Compile(`(?i)^(?:` + entry.Pattern + `)$`)
		if err != nil {
			return nil, fmt.Errorf("invalid pack pattern %q: %w", entry.Pattern, err)
		}

		be, ok := compiled.brands[entry.Brand]
		if !ok {
			be = &brandEntry{name: entry.Brand, brandType: entry.Type}
			compiled.brands[entry.Brand] = be
			aliases[entry.Brand] = append(aliases[entry.Brand], entry.Brand)
		}
		be.patterns = append(be.patterns, re)
		aliases[entry.Brand] = append(aliases[entry.Brand], entry.Keywords...)
	}

	for brand, words := range aliases {
		quoted := make([]string, 0, len(words))
		dedup := make(map[string]bool)
		for _, w := range words {
			w = strings.TrimSpace(w)
			if w == "" || dedup[strings.ToLower(w)] {
				continue
			}
			dedup[strings.ToLower(w)] = true
			quoted = append(quoted, regexp.QuoteMeta(w))
		}
		// Whole-word anchoring is the primary false-positive defense: a
		// two-letter alias must never match inside an ordinary word.
		re, err := regexp.Compile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
		if err != nil {
			return nil, fmt.Errorf("brand %q alias matcher: %w", brand, err)
		}
		compiled.brands[brand].aliasRe = re
	}

	return compiled, nil
}

// claimedBrands returns the distinct brands whose name or alias appears as
// a whole word in text.
func (p *CompiledPack) claimedBrands(text string) []*brandEntry {
	var claimed []*brandEntry
	for _, be := range p.brands {
		if be.aliasRe != nil && be.aliasRe.MatchString(text) {
			claimed = append(claimed, be)
		}
	}
	return claimed
}

// brand returns the entry for an exactly named brand, if present
func (p *CompiledPack) brand(name string) *brandEntry {
	return p.brands[name]
}

// senderMatches reports whether senderID matches any legitimate pattern
// registered to the brand.
func (be *brandEntry) senderMatches(senderID string) bool {
	for _, re := range be.patterns {
		if re.MatchString(senderID) {
			return true
		}
	}
	return false
}
