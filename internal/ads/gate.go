package ads

import (
	"math/rand"

	"linkfly/internal/config"
	"linkfly/internal/device"
)

// Gate decides per request whether to interpose an interstitial ad
// before redirecting. Each request draws independently; there is no
// session memory and no frequency capping.
type Gate struct {
	pMobile  float64
	pDesktop float64
	roll     func() float64
}

// NewGate builds a gate with the configured probabilities. roll must
// return values in [0, 1); pass nil for the production source. Tests
// inject a fixed roll to pin the outcome.
func NewGate(cfg config.AdsConfig, roll func() float64) *Gate {
	if roll == nil {
		roll = rand.Float64
	}
	return &Gate{
		pMobile:  cfg.MobileProbability,
		pDesktop: cfg.DesktopProbability,
		roll:     roll,
	}
}

func (g *Gate) ShouldInterpose(p device.Profile) bool {
	threshold := g.pDesktop
	if p.IsMobile {
		threshold = g.pMobile
	}
	return g.roll() < threshold
}

// Interstitial template names. Selection mirrors the device-type
// precedence (phone > tablet > generic mobile) but stays a separate
// decision: the right template must hold even if gating probabilities
// are retuned independently.
const (
	TemplatePhone  = "interstitial-phone"
	TemplateTablet = "interstitial-tablet"
	TemplateMobile = "interstitial-mobile"
)

func TemplateFor(p device.Profile) string {
	switch {
	case p.IsPhone:
		return TemplatePhone
	case p.IsTablet:
		return TemplateTablet
	default:
		return TemplateMobile
	}
}

// Content is the ad block embedded in the interstitial page.
type Content struct {
	Type  string
	Text  string
	Image string
}

// ContentFor picks OS-targeted ad content: app-install promos for the
// two big mobile platforms, a generic block for everything else.
func ContentFor(p device.Profile) Content {
	switch p.OSFamily() {
	case "android":
		return Content{
			Type:  "android_app",
			Text:  "Download our Android app for better experience!",
			Image: "/static/ads/android-banner.jpg",
		}
	case "ios":
		return Content{
			Type:  "ios_app",
			Text:  "Available on the App Store",
			Image: "/static/ads/ios-banner.jpg",
		}
	default:
		return Content{
			Type:  "mobile_web",
			Text:  "Mobile-optimized content",
			Image: "/static/ads/mobile-banner.jpg",
		}
	}
}
