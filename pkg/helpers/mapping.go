package helpers

import (
	"context"
	"fmt"
	"strings"

	"github.com/oksasatya/narrative-weaver/pkg/mailer"
	mailtpl "github.com/oksasatya/narrative-weaver/pkg/mailer/templates"
)

func dataString(data map[string]any, key string) string {
	v, ok := data[key]
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprintf("%v", v))
}

// EnsureRecipientAndEmail defaults Email and RecipientEmail to the job recipient.
func EnsureRecipientAndEmail(job *mailer.EmailJob) {
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	if dataString(job.Data, "Email") == "" {
		job.Data["Email"] = job.To
	}
	if dataString(job.Data, "RecipientEmail") == "" {
		job.Data["RecipientEmail"] = job.To
	}
}

// FillLocation resolves Location from IP when the producer left it empty.
func FillLocation(ctx context.Context, resolver mailtpl.GeoResolver, data map[string]any) {
	if resolver == nil || dataString(data, "Location") != "" {
		return
	}
	ip := dataString(data, "IP")
	if ip == "" {
		return
	}
	if g, err := resolver.Lookup(ctx, ip); err == nil {
		if loc := mailtpl.FormatGeo(g); loc != "" {
			data["Location"] = loc
		}
	}
}
