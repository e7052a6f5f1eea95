package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/narrative-weaver/pkg/helpers"
	"github.com/oksasatya/narrative-weaver/pkg/mailer"
	mailtpl "github.com/oksasatya/narrative-weaver/pkg/mailer/templates"
)

const sendTimeout = 15 * time.Second

// Sender delivers one rendered email.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

type outcome int

const (
	ack     outcome = iota
	drop            // malformed or unrenderable, never retried
	requeue         // transient send failure
)

type worker struct {
	Resolver mailtpl.GeoResolver
	Sender   Sender
	Logger   *logrus.Logger
}

// handle decodes, enriches, renders and sends one queued job.
func (w *worker) handle(ctx context.Context, body []byte) outcome {
	var job mailer.EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		helpers.LogError(w.Logger, "bad message", err, nil)
		return drop
	}
	if err := job.Validate(); err != nil {
		helpers.LogError(w.Logger, "invalid job", err, logrus.Fields{"to": job.To})
		return drop
	}

	helpers.EnsureRecipientAndEmail(&job)
	helpers.FillLocation(ctx, w.Resolver, job.Data)
	helpers.LocalizeTimesIfPossible(ctx, w.Resolver, job.Data)

	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		s, t, h, err := mailtpl.Render(job.Template, job.Data)
		if err != nil {
			helpers.LogError(w.Logger, "render failed", err, logrus.Fields{"template": job.Template})
			return drop
		}
		subject, text, html = s, t, h
	}

	c, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	if err := w.Sender.Send(c, job.To, subject, text, html); err != nil {
		helpers.LogError(w.Logger, "send failed", err, logrus.Fields{"to": job.To, "template": job.Template})
		return requeue
	}
	helpers.LogInfo(w.Logger, "email sent", logrus.Fields{"to": job.To, "template": job.Template})
	return ack
}
