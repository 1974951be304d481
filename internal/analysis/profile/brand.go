package profile

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"smishguard/internal/domain/models"
)

// Brand is one entry in the curated impersonation watch-list
type Brand struct {
	Name     string
	Type     models.BrandType
	Domains  []string // official registrable domains
	Keywords []string // tokens attackers embed in lookalike domains
}

// BrandTable matches registrable domains against known brands
type BrandTable struct {
	brands []Brand
}

// defaultBrands is tuned for the Indian regional pack plus globally abused
// brands. Keywords are matched against the second-level label only.
var defaultBrands = []Brand{
	{Name: "HDFC Bank", Type: models.BrandTypeBank, Domains: []string{"hdfcbank.com"}, Keywords: []string{"hdfc", "hdfcbank"}},
	{Name: "ICICI Bank", Type: models.BrandTypeBank, Domains: []string{"icicibank.com"}, Keywords: []string{"icici", "icicibank"}},
	{Name: "State Bank of India", Type: models.BrandTypeBank, Domains: []string{"sbi.co.in", "onlinesbi.sbi"}, Keywords: []string{"onlinesbi", "sbi"}},
	{Name: "Axis Bank", Type: models.BrandTypeBank, Domains: []string{"axisbank.com"}, Keywords: []string{"axisbank"}},
	{Name: "Airtel", Type: models.BrandTypeCarrier, Domains: []string{"airtel.in"}, Keywords: []string{"airtel"}},
	{Name: "Jio", Type: models.BrandTypeCarrier, Domains: []string{"jio.com"}, Keywords: []string{"jio", "myjio"}},
	{Name: "Vi", Type: models.BrandTypeCarrier, Domains: []string{"myvi.in"}, Keywords: []string{"myvi"}},
	{Name: "Paytm", Type: models.BrandTypePayment, Domains: []string{"paytm.com"}, Keywords: []string{"paytm"}},
	{Name: "PhonePe", Type: models.BrandTypePayment, Domains: []string{"phonepe.com"}, Keywords: []string{"phonepe"}},
	{Name: "PayPal", Type: models.BrandTypePayment, Domains: []string{"paypal.com"}, Keywords: []string{"paypal"}},
	{Name: "Income Tax Department", Type: models.BrandTypeGovernment, Domains: []string{"incometax.gov.in"}, Keywords: []string{"incometax"}},
	{Name: "India Post", Type: models.BrandTypeGovernment, Domains: []string{"indiapost.gov.in"}, Keywords: []string{"indiapost"}},
	{Name: "Amazon", Type: models.BrandTypeEcommerce, Domains: []string{"amazon.in", "amazon.com"}, Keywords: []string{"amazon"}},
	{Name: "Flipkart", Type: models.BrandTypeEcommerce, Domains: []string{"flipkart.com"}, Keywords: []string{"flipkart"}},
	{Name: "Google", Type: models.BrandTypeService, Domains: []string{"google.com"}, Keywords: []string{"google"}},
	{Name: "Apple", Type: models.BrandTypeService, Domains: []string{"apple.com", "icloud.com"}, Keywords: []string{"icloud"}},
	{Name: "Microsoft", Type: models.BrandTypeService, Domains: []string{"microsoft.com"}, Keywords: []string{"microsoft"}},
	{Name: "Netflix", Type: models.BrandTypeService, Domains: []string{"netflix.com"}, Keywords: []string{"netflix"}},
	{Name: "WhatsApp", Type: models.BrandTypeService, Domains: []string{"whatsapp.com"}, Keywords: []string{"whatsapp"}},
	{Name: "DHL", Type: models.BrandTypeService, Domains: []string{"dhl.com"}, Keywords: []string{"dhl"}},
}

// NewBrandTable builds a table from the given brands
func NewBrandTable(brands []Brand) *BrandTable {
	return &BrandTable{brands: brands}
}

// DefaultBrandTable returns the bundled brand watch-list
func DefaultBrandTable() *BrandTable {
	return NewBrandTable(defaultBrands)
}

// Brands returns the underlying entries
func (t *BrandTable) Brands() []Brand {
	return t.brands
}

// OfficialHosts returns every official domain across the table, used as the
// homoglyph watch-list.
func (t *BrandTable) OfficialHosts() []string {
	var hosts []string
	for _, b := range t.brands {
		hosts = append(hosts, b.Domains...)
	}
	return hosts
}

// Match checks registeredDomain against every brand and returns the first
// impersonation found, or nil. An exact official domain is never flagged.
func (t *BrandTable) Match(registeredDomain string) *models.BrandImpersonation {
	registeredDomain = strings.ToLower(registeredDomain)
	sld := secondLevelLabel(registeredDomain)

	for _, brand := range t.brands {
		for _, official := range brand.Domains {
			if registeredDomain == official {
				return nil
			}
		}
	}

	for _, brand := range t.brands {
		for _, official := range brand.Domains {
			// Edit distance 1-3 on domains of comparable length: typosquat.
			dist := fuzzy.LevenshteinDistance(registeredDomain, official)
			lenDiff := len(registeredDomain) - len(official)
			if lenDiff < 0 {
				lenDiff = -lenDiff
			}
			if dist >= 1 && dist <= 3 && lenDiff <= 3 {
				return &models.BrandImpersonation{
					Brand:           brand.Name,
					AttemptedDomain: registeredDomain,
					OfficialDomain:  official,
					Type:            models.ImpersonationTyposquat,
				}
			}
		}

		for _, keyword := range brand.Keywords {
			if sld == keyword {
				return &models.BrandImpersonation{
					Brand:           brand.Name,
					AttemptedDomain: registeredDomain,
					OfficialDomain:  brand.Domains[0],
					Type:            models.ImpersonationWrongTLD,
				}
			}
			if len(keyword) >= 4 && strings.Contains(sld, keyword) {
				return &models.BrandImpersonation{
					Brand:           brand.Name,
					AttemptedDomain: registeredDomain,
					OfficialDomain:  brand.Domains[0],
					Type:            models.ImpersonationKeywordAbuse,
				}
			}
		}
	}

	return nil
}

// secondLevelLabel returns the label left of the public suffix, e.g.
// "hdfc-bank" for "hdfc-bank.xyz".
func secondLevelLabel(registeredDomain string) string {
	if i := strings.Index(registeredDomain, "."); i > 0 {
		return registeredDomain[:i]
	}
	return registeredDomain
}
