package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/narrative-weaver/internal/domain/entity"
	"github.com/oksasatya/narrative-weaver/pkg/mailer"
	"github.com/oksasatya/narrative-weaver/pkg/mailer/templates"
)

const publishTimeout = 5 * time.Second

// Notifier enqueues account emails. A nil Notifier or one without a
// publisher drops every job silently.
type Notifier struct {
	Pub      Publisher
	Branding templates.Branding
	Logger   *logrus.Logger
}

func NewNotifier(pub Publisher, b templates.Branding, logger *logrus.Logger) *Notifier {
	return &Notifier{Pub: pub, Branding: b, Logger: logger}
}

func (n *Notifier) Welcome(ctx context.Context, u *entity.User) {
	n.publish(ctx, u.Email, templates.Welcome,
		templates.NewEmailData(n.Branding, templates.Welcome, u.Name, u.Email, templates.WithTime(time.Now())))
}

func (n *Notifier) PasswordChanged(ctx context.Context, u *entity.User, meta RequestMeta) {
	n.publish(ctx, u.Email, templates.PasswordChanged,
		templates.NewEmailData(n.Branding, templates.PasswordChanged, u.Name, u.Email,
			templates.WithTime(time.Now()),
			templates.WithIP(meta.IP),
			templates.WithUserAgent(meta.UserAgent),
		))
}

func (n *Notifier) AccountDeleted(ctx context.Context, u *entity.User, entries int64) {
	n.publish(ctx, u.Email, templates.AccountDeleted,
		templates.NewEmailData(n.Branding, templates.AccountDeleted, u.Name, u.Email,
			templates.WithTime(time.Now()),
			templates.WithEntriesCount(entries),
		))
}

func (n *Notifier) publish(ctx context.Context, to, tmpl string, data map[string]any) {
	if n == nil || n.Pub == nil {
		return
	}
	c, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	job := mailer.EmailJob{To: to, Template: tmpl, Data: data}
	if err := n.Pub.PublishJSON(c, job); err != nil && n.Logger != nil {
		n.Logger.WithError(err).WithFields(logrus.Fields{"template": tmpl, "to": to}).Warn("enqueue email failed")
	}
}
