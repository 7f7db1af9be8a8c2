package revenue

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"linkfly/internal/config"
	"linkfly/internal/device"
)

func defaultConfig() config.RevenueConfig {
	return config.RevenueConfig{
		OSRates: map[string]map[string]float64{
			"android": {"US": 0.08, "UK": 0.07, "CA": 0.06, "AU": 0.06, "DE": 0.05, "FR": 0.05},
			"ios":     {"US": 0.10, "UK": 0.09, "CA": 0.08, "AU": 0.08, "DE": 0.07, "FR": 0.07},
			"mobile":  {"US": 0.06, "UK": 0.05, "CA": 0.04},
		},
		DeviceRates: map[string]map[string]float64{
			"mobile": {"US": 0.06, "UK": 0.05, "CA": 0.04},
			"tablet": {"US": 0.05, "UK": 0.04, "CA": 0.03},
		},
		FloorRate:   0.02,
		MobileBonus: 1.2,
	}
}

func phone(os string) device.Profile {
	return device.Profile{IsMobile: true, IsPhone: true, DeviceType: device.TypeMobile, OS: os}
}

func tablet(os string) device.Profile {
	return device.Profile{IsMobile: true, IsTablet: true, DeviceType: device.TypeTablet, OS: os}
}

func desktop(os string) device.Profile {
	return device.Profile{DeviceType: device.TypeDesktop, OS: os}
}

func TestCalculateRates(t *testing.T) {
	calc := NewCalculator(defaultConfig())

	tests := []struct {
		name    string
		profile device.Profile
		country string
		want    string
	}{
		// OS bucket hit, then the 20% mobile bonus on top.
		{"android phone US", phone("Android"), "US", "0.0960"},
		{"ios phone US", phone("iOS"), "US", "0.1200"},
		{"android tablet DE", tablet("Android"), "DE", "0.0600"},
		// Unrecognized mobile OS lands in the generic mobile row.
		{"blackberry phone US", phone("BlackBerry"), "US", "0.0720"},
		// Desktop also resolves through the generic mobile OS row, no bonus.
		{"windows desktop US", desktop("Windows"), "US", "0.0600"},
		// Nothing matches: floor rate.
		{"desktop unknown country", desktop("Windows"), "XX", "0.0200"},
		{"android phone unknown country", phone("Android"), "XX", "0.0240"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.Calculate(tt.profile, tt.country)
			assert.Equal(t, tt.want, got.StringFixed(4))
		})
	}
}

// The OS-family bucket outranks the device-type bucket whenever both
// could resolve; the device bucket only fires when the OS row misses.
func TestCalculateFallbackChain(t *testing.T) {
	cfg := config.RevenueConfig{
		OSRates: map[string]map[string]float64{
			"android": {"US": 0.08},
		},
		DeviceRates: map[string]map[string]float64{
			"tablet": {"US": 0.05},
			"mobile": {"US": 0.03},
		},
		FloorRate:   0.02,
		MobileBonus: 1.2,
	}
	calc := NewCalculator(cfg)

	// Android tablet: OS row wins over the tablet row.
	assert.Equal(t, "0.0960", calc.Calculate(tablet("Android"), "US").StringFixed(4))
	// iOS tablet: no ios row here, falls to the tablet device row.
	assert.Equal(t, "0.0600", calc.Calculate(tablet("iOS"), "US").StringFixed(4))
	// iOS phone: no ios row, mobile device row.
	assert.Equal(t, "0.0360", calc.Calculate(phone("iOS"), "US").StringFixed(4))
	// Desktop: nothing at all, floor without bonus.
	assert.Equal(t, "0.0200", calc.Calculate(desktop("Linux"), "US").StringFixed(4))
}

// Whatever the inputs, the result is at least the bonus-adjusted floor
// and the calculator never panics.
func TestCalculateNeverBelowFloor(t *testing.T) {
	calc := NewCalculator(defaultConfig())
	profiles := []device.Profile{
		phone("Android"), phone("iOS"), phone(""), tablet("Android"),
		tablet("weirdOS"), desktop("Windows"), desktop(""),
	}
	countries := []string{"US", "UK", "CA", "XX", "", "ZZ"}

	for _, p := range profiles {
		for _, country := range countries {
			got := calc.Calculate(p, country)
			floor := decimal.NewFromFloat(0.02)
			if p.IsMobile {
				floor = floor.Mul(decimal.NewFromFloat(1.2))
			}
			assert.True(t, got.GreaterThanOrEqual(floor), "profile %+v country %q got %s", p, country, got)
			assert.True(t, got.Equal(got.Round(4)), "rate must carry at most 4 decimal places")
		}
	}
}
