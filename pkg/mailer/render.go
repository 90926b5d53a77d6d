package mailer

import (
	"context"
	"fmt"
	"strings"

	mailtpl "github.com/AdityaShome/Secondhome-sub002/pkg/mailer/templates"
)

// Prepare turns a queued job into subject, text and html bodies.
// Login notifications get their Location filled from the IP when missing.
func Prepare(ctx context.Context, job *EmailJob, resolver mailtpl.GeoResolver) (subject, text, html string, err error) {
	if err := job.Validate(); err != nil {
		return "", "", "", err
	}
	if job.Template == "" {
		return job.Subject, job.Text, job.HTML, nil
	}

	job.EnsureRecipient()
	if job.Template == mailtpl.LoginNotification && resolver != nil {
		if loc := fmt.Sprintf("%v", job.Data["Location"]); loc == "" || loc == "<nil>" {
			if ip, ok := job.Data["IP"].(string); ok && strings.TrimSpace(ip) != "" {
				if g, gerr := resolver.Lookup(ctx, ip); gerr == nil {
					job.Data["Location"] = mailtpl.FormatGeo(g)
				}
			}
		}
	}

	subject, text, html, err = mailtpl.Render(job.Template, job.Data)
	if err != nil {
		return "", "", "", err
	}
	if job.Subject != "" {
		subject = job.Subject
	}
	return subject, text, html, nil
}
