package helpers

import (
	"context"
	"strings"
	"time"

	mailtpl "github.com/oksasatya/narrative-weaver/pkg/mailer/templates"
)

// LocalizeTimesIfPossible rewrites Time in the recipient's timezone, derived
// from the IP geolocation. Data is left untouched on any lookup failure.
func LocalizeTimesIfPossible(ctx context.Context, resolver mailtpl.GeoResolver, data map[string]any) {
	ip := dataString(data, "IP")
	if resolver == nil || ip == "" {
		return
	}
	g, err := resolver.Lookup(ctx, ip)
	if err != nil || strings.TrimSpace(g.Timezone) == "" {
		return
	}
	loc, err := time.LoadLocation(g.Timezone)
	if err != nil {
		return
	}
	if t, ok := parseTimeAny(dataString(data, "TimeAt")); ok {
		data["Time"] = t.In(loc).Format("02 January 2006, 15:04 MST")
	}
}

func parseTimeAny(s string) (time.Time, bool) {
	layouts := []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05 -0700 MST",
		"2006-01-02 15:04:05 -0700",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil && !t.IsZero() {
			return t, true
		}
	}
	return time.Time{}, false
}
