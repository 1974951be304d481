package sender

import (
	"sort"
	"strings"

	"github.com/nyaruka/phonenumbers"

	"smishguard/internal/domain/models"
	"smishguard/pkg/logger"
)

// Detector flags messages whose text claims a brand identity the sender id
// is not registered for.
type Detector struct {
	store  *PackStore
	logger *logger.Logger
}

// NewDetector creates a Detector reading packs from store
func NewDetector(store *PackStore, log *logger.Logger) *Detector {
	return &Detector{
		store:  store,
		logger: log.WithComponent("sender-detector"),
	}
}

// Detect returns one mismatch signal per distinct claimed brand whose
// registered sender patterns do not cover senderID. With no pack loaded
// for the region it returns nothing: absence of data is not a signal.
func (d *Detector) Detect(region, senderID, body string, profiles []models.DomainProfile) []models.Signal {
	pack := d.store.Active(region)
	if pack == nil {
		return nil
	}

	claimed := pack.claimedBrands(body)

	// A linked domain impersonating a brand is an implied brand claim even
	// when the text never names it.
	for _, prof := range profiles {
		if prof.BrandImpersonation == nil {
			continue
		}
		if be := pack.brand(prof.BrandImpersonation.Brand); be != nil {
			claimed = append(claimed, be)
		}
	}

	if len(claimed) == 0 {
		return nil
	}

	canonical, isPhone := canonicalSender(senderID, region)

	var signals []models.Signal
	seen := make(map[string]bool)
	for _, be := range claimed {
		if seen[be.name] {
			continue
		}
		seen[be.name] = true

		// A phone-number sender is matched by its E.164 form as well, so a
		// registered long code is recognized however the carrier formats it.
		// It can never satisfy an alphanumeric header pattern.
		if be.senderMatches(senderID) || (isPhone && be.senderMatches(canonical)) {
			continue
		}

		d.logger.Debug().
			Str("brand", be.name).
			Str("sender", senderID).
			Bool("sender_is_phone", isPhone).
			Msg("sender does not match any registered pattern for claimed brand")

		signals = append(signals, models.Signal{
			Code:   models.SignalSenderMismatch,
			Weight: be.brandType.MismatchWeight(),
			Meta: models.SignalMeta{
				Brand:     be.name,
				BrandType: be.brandType,
				SenderID:  senderID,
			},
		})
	}

	// Deterministic output order for stable verdict reasons.
	sort.Slice(signals, func(i, j int) bool {
		if signals[i].Weight != signals[j].Weight {
			return signals[i].Weight > signals[j].Weight
		}
		return signals[i].Meta.Brand < signals[j].Meta.Brand
	})

	return signals
}

// canonicalSender normalizes a phone-number sender to its E.164 form for
// the region, collapsing formatting variants before pattern matching.
// Alphanumeric sender headers (e.g. "HDFCBK") pass through unchanged.
func canonicalSender(senderID, region string) (string, bool) {
	trimmed := strings.TrimSpace(senderID)
	if trimmed == "" {
		return senderID, false
	}
	num, err := phonenumbers.Parse(trimmed, strings.ToUpper(region))
	if err != nil || !phonenumbers.IsPossibleNumber(num) {
		return senderID, false
	}
	return phonenumbers.Format(num, phonenumbers.E164), true
}
