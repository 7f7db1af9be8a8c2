package revenue

import (
	"github.com/shopspring/decimal"

	"linkfly/internal/config"
	"linkfly/internal/device"
)

// precision is the number of decimal places every resolved rate is
// rounded to before it is stored or accrued. Rounding here keeps
// floating-point drift out of the earnings accumulators.
const precision = 4

// Calculator resolves the per-click rate for a device profile and
// country. It is a pure lookup with a fallback chain and never fails:
// unmapped inputs fall through to the floor rate, because monetization
// accuracy must never block a redirect.
type Calculator struct {
	osRates     map[string]map[string]decimal.Decimal
	deviceRates map[string]map[string]decimal.Decimal
	floor       decimal.Decimal
	bonus       decimal.Decimal
}

func NewCalculator(cfg config.RevenueConfig) *Calculator {
	return &Calculator{
		osRates:     toDecimalTable(cfg.OSRates),
		deviceRates: toDecimalTable(cfg.DeviceRates),
		floor:       decimal.NewFromFloat(cfg.FloorRate),
		bonus:       decimal.NewFromFloat(cfg.MobileBonus),
	}
}

// Calculate resolves the rate in three steps: the OS-family bucket,
// then the device-type bucket, then the floor. OS-specific economics
// outweigh form-factor economics, so the OS bucket always wins when
// both have an entry. The mobile bonus is applied after bucket
// selection, independent of which bucket resolved the rate.
func (c *Calculator) Calculate(p device.Profile, country string) decimal.Decimal {
	rate, ok := c.lookup(c.osRates, osBucket(p), country)
	if !ok {
		rate, ok = c.lookup(c.deviceRates, deviceBucket(p), country)
	}
	if !ok {
		rate = c.floor
	}

	if p.IsMobile {
		rate = rate.Mul(c.bonus)
	}
	return rate.Round(precision)
}

func (c *Calculator) lookup(table map[string]map[string]decimal.Decimal, bucket, country string) (decimal.Decimal, bool) {
	countries, ok := table[bucket]
	if !ok {
		return decimal.Decimal{}, false
	}
	rate, ok := countries[country]
	return rate, ok
}

// osBucket maps any non-android, non-ios platform to the generic
// mobile row; desktop OSes simply miss the table and fall through.
func osBucket(p device.Profile) string {
	switch family := p.OSFamily(); family {
	case "android", "ios":
		return family
	default:
		return "mobile"
	}
}

func deviceBucket(p device.Profile) string {
	switch {
	case p.IsPhone:
		return "mobile"
	case p.IsTablet:
		return "tablet"
	default:
		return "desktop"
	}
}

func toDecimalTable(src map[string]map[string]float64) map[string]map[string]decimal.Decimal {
	out := make(map[string]map[string]decimal.Decimal, len(src))
	for bucket, countries := range src {
		row := make(map[string]decimal.Decimal, len(countries))
		for country, rate := range countries {
			row[country] = decimal.NewFromFloat(rate)
		}
		out[bucket] = row
	}
	return out
}
