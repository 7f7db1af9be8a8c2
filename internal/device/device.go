package device

import (
	"strings"
)

// Type is the coarse device bucket derived from the user agent.
type Type string

const (
	TypeMobile  Type = "mobile"
	TypeTablet  Type = "tablet"
	TypeDesktop Type = "desktop"
)

// UnknownScreen is stored when the client never sent viewport headers.
// It marks "not collected", not an error.
const UnknownScreen = "unknown"

// Profile describes the requesting device. It is derived per request
// and never persisted as a whole; ClickEvent keeps the fields that
// matter for reporting.
type Profile struct {
	IsMobile       bool
	IsTablet       bool
	IsPhone        bool
	DeviceType     Type
	OS             string
	OSVersion      string
	Browser        string
	BrowserVersion string
	ScreenWidth    string
	ScreenHeight   string
}

// OSFamily collapses the platform to the coarse bucket the revenue
// tables are keyed by: android, ios, windows, or the lowercased raw
// platform for everything else.
func (p Profile) OSFamily() string {
	os := strings.ToLower(p.OS)
	switch {
	case strings.Contains(os, "android"):
		return "android"
	case strings.Contains(os, "ios"):
		return "ios"
	case strings.Contains(os, "windows"):
		return "windows"
	default:
		return os
	}
}

// Classification runs off ordered substring tables rather than exact
// matches: user agents vary combinatorially and only capability
// signatures are stable. Tablet signatures are checked before generic
// mobile ones so that tablets are never downgraded to phones.
var tabletSignatures = []string{
	"ipad",
	"tablet",
	"kindle",
	"silk/",
	"playbook",
	"nexus 7",
	"nexus 9",
	"nexus 10",
	"sm-t",
}

var mobileSignatures = []string{
	"iphone",
	"ipod",
	"windows phone",
	"blackberry",
	"bb10",
	"opera mini",
	"mobi",
	"webos",
	"android",
}

type osRule struct {
	token   string
	name    string
	version string // token preceding the version digits, empty = none
}

// Ordered: more specific tokens first (Windows Phone before Windows,
// iDevices before the generic Mac token they also carry).
var osRules = []osRule{
	{token: "windows phone", name: "Windows Phone", version: "windows phone "},
	{token: "ipad", name: "iOS", version: "os "},
	{token: "iphone", name: "iOS", version: "os "},
	{token: "ipod", name: "iOS", version: "os "},
	{token: "android", name: "Android", version: "android "},
	{token: "windows nt", name: "Windows", version: "windows nt "},
	{token: "mac os x", name: "OS X", version: "mac os x "},
	{token: "cros", name: "ChromeOS", version: ""},
	{token: "linux", name: "Linux", version: ""},
}

type browserRule struct {
	token   string
	name    string
	version string
}

// Ordered: Chromium-family browsers advertise each other's tokens, so
// the derivative browsers must be matched before Chrome, and Chrome
// before Safari.
var browserRules = []browserRule{
	{token: "edg/", name: "Edge", version: "edg/"},
	{token: "edge/", name: "Edge", version: "edge/"},
	{token: "opr/", name: "Opera", version: "opr/"},
	{token: "opera mini", name: "Opera Mini", version: "opera mini/"},
	{token: "samsungbrowser/", name: "Samsung Internet", version: "samsungbrowser/"},
	{token: "firefox/", name: "Firefox", version: "firefox/"},
	{token: "fxios/", name: "Firefox", version: "fxios/"},
	{token: "crios/", name: "Chrome", version: "crios/"},
	{token: "chrome/", name: "Chrome", version: "chrome/"},
	{token: "safari/", name: "Safari", version: "version/"},
	{token: "msie ", name: "Internet Explorer", version: "msie "},
	{token: "trident/", name: "Internet Explorer", version: "rv:"},
}

// Classify derives a Profile from the raw User-Agent string and the
// optional viewport headers. It is pure: same inputs, same profile.
// It never fails; anything unrecognized degrades to a desktop profile
// with empty platform fields.
func Classify(userAgent, viewportWidth, viewportHeight string) Profile {
	ua := strings.ToLower(userAgent)

	p := Profile{
		ScreenWidth:  orUnknown(viewportWidth),
		ScreenHeight: orUnknown(viewportHeight),
	}

	p.IsTablet = matchesAny(ua, tabletSignatures)
	if !p.IsTablet && strings.Contains(ua, "android") && !strings.Contains(ua, "mobile") {
		// Android tablets drop the "Mobile" token from the UA.
		p.IsTablet = true
	}
	p.IsMobile = p.IsTablet || matchesAny(ua, mobileSignatures)
	p.IsPhone = p.IsMobile && !p.IsTablet

	switch {
	case p.IsTablet:
		p.DeviceType = TypeTablet
	case p.IsMobile:
		p.DeviceType = TypeMobile
	default:
		p.DeviceType = TypeDesktop
	}

	for _, r := range osRules {
		if strings.Contains(ua, r.token) {
			p.OS = r.name
			if r.version != "" {
				p.OSVersion = extractVersion(ua, r.version)
			}
			break
		}
	}

	for _, r := range browserRules {
		if strings.Contains(ua, r.token) {
			p.Browser = r.name
			p.BrowserVersion = extractVersion(ua, r.version)
			break
		}
	}

	return p
}

func matchesAny(ua string, signatures []string) bool {
	for _, s := range signatures {
		if strings.Contains(ua, s) {
			return true
		}
	}
	return false
}

func orUnknown(s string) string {
	if s == "" {
		return UnknownScreen
	}
	return s
}

// extractVersion reads the dotted version following the given prefix.
// Apple UAs separate version components with underscores.
func extractVersion(ua, prefix string) string {
	idx := strings.Index(ua, prefix)
	if idx < 0 {
		return ""
	}
	rest := ua[idx+len(prefix):]
	end := 0
	for end < len(rest) {
		c := rest[end]
		if (c < '0' || c > '9') && c != '.' && c != '_' {
			break
		}
		end++
	}
	return strings.ReplaceAll(rest[:end], "_", ".")
}
