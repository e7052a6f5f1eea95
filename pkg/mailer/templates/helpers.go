package templates

import (
	"context"
	"strings"
	"time"
)

// Option pattern
type Option func(*EmailData)

func WithIP(ip string) Option        { return func(d *EmailData) { d.IP = ip } }
func WithUserAgent(ua string) Option { return func(d *EmailData) { d.UserAgent = ua } }
func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}
func WithEntriesCount(n int64) Option { return func(d *EmailData) { d.EntriesCount = n } }

func setLocation(d *EmailData, loc string) {
	if s := strings.TrimSpace(loc); s != "" {
		d.Location = s
	}
}

func WithLocation(loc string) Option {
	return func(d *EmailData) { setLocation(d, loc) }
}

func WithGeoFromIP(ctx context.Context, r GeoResolver, ip string) Option {
	return func(d *EmailData) {
		if r == nil || strings.TrimSpace(ip) == "" {
			return
		}
		if g, err := r.Lookup(ctx, ip); err == nil {
			setLocation(d, FormatGeo(g))
		}
	}
}

// NewEmailData fills the shared fields from b, then applies opts.
func NewEmailData(b Branding, typ, name, email string, opts ...Option) map[string]any {
	d := EmailData{
		Name:           name,
		Email:          email,
		RecipientEmail: email,
		Type:           typ,

		CompanyName:    b.CompanyName,
		CompanyAddress: b.CompanyAddress,
		AppName:        b.AppName,

		LogoURL:        b.LogoURL,
		SupportURL:     b.SupportURL,
		PrivacyURL:     b.PrivacyURL,
		UnsubscribeURL: b.UnsubscribeURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return ToMap(d)
}
