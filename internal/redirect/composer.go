package redirect

import (
	"errors"
	"net/url"

	"linkfly/internal/device"
)

// ErrMalformedDestinationURL means the stored destination cannot be
// parsed into something safe to redirect to. It must be caught before
// any Location header is written; a half-parsed URL is never sent.
var ErrMalformedDestinationURL = errors.New("malformed destination url")

// Composer rewrites destination URLs with tracking parameters before
// the final redirect.
type Composer struct {
	utmSource string
}

func NewComposer(utmSource string) *Composer {
	return &Composer{utmSource: utmSource}
}

// Compose merges the tracking parameters into the destination's query
// string. Pre-existing parameters survive, but the tracking keys win
// on collision, so composing twice yields the same URL.
func (c *Composer) Compose(destination string, p device.Profile) (string, error) {
	u, err := url.Parse(destination)
	if err != nil {
		return "", ErrMalformedDestinationURL
	}
	if u.Scheme == "" || u.Host == "" {
		return "", ErrMalformedDestinationURL
	}

	medium := "desktop"
	if p.IsMobile {
		medium = "mobile"
	}

	q := u.Query()
	q.Set("utm_source", c.utmSource)
	q.Set("utm_medium", medium)
	q.Set("utm_device", string(p.DeviceType))
	u.RawQuery = q.Encode()

	return u.String(), nil
}
