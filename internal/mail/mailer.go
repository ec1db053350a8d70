package mail

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/Capstone-project-team7/Back/internal/config"
	"github.com/Capstone-project-team7/Back/internal/errs"
	"github.com/Capstone-project-team7/Back/internal/model"
	"github.com/Capstone-project-team7/Back/internal/storage"
)

const timeDisplayLayout = "2006-01-02 15:04:05"

// Sender is the slice of the SMTP dialer the dispatcher needs.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Dispatcher sends anomaly notification mails. Sending is best-effort; a
// transport failure never unwinds committed pipeline stages.
type Dispatcher struct {
	sender Sender
	from   string
	addr   *storage.Addressing
	log    *zap.Logger
}

// NewDispatcher creates a mail dispatcher over plain SMTP with the
// configured credentials.
func NewDispatcher(cfg *config.Config, addr *storage.Addressing, log *zap.Logger) *Dispatcher {
	dialer := gomail.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password)
	return &Dispatcher{sender: dialer, from: cfg.SMTP.From, addr: addr, log: log}
}

// NewDispatcherWithSender creates a dispatcher over a custom transport.
func NewDispatcherWithSender(sender Sender, from string, addr *storage.Addressing, log *zap.Logger) *Dispatcher {
	return &Dispatcher{sender: sender, from: from, addr: addr, log: log}
}

// Notify mails the user about a detected anomaly. sent=false without error
// means the user has notifications disabled. The clip link is presigned when
// possible and falls back to the raw URL.
func (d *Dispatcher) Notify(ctx context.Context, user *model.User, ev *model.AnomalyEvent) (sent bool, err error) {
	if !user.NotifyStatus {
		d.log.Info("notifications disabled, skipping mail", zap.Int64("user_id", user.ID))
		return false, nil
	}

	link := d.addr.MaterializeURL(ctx, ev.VideoURL)

	m := gomail.NewMessage()
	m.SetHeader("From", d.from)
	m.SetHeader("To", user.Email)
	m.SetHeader("Subject", fmt.Sprintf("[Anomaly Detected] %s", ev.AnomalyType))
	m.SetBody("text/html", renderBody(user, ev, link))

	if err := d.sender.DialAndSend(m); err != nil {
		return false, fmt.Errorf("%w: %v", errs.ErrNotifyFailed, err)
	}
	d.log.Info("notification mail sent",
		zap.Int64("user_id", user.ID), zap.String("anomaly_type", ev.AnomalyType))
	return true, nil
}

func renderBody(user *model.User, ev *model.AnomalyEvent, link string) string {
	name := user.Name
	if name == "" {
		name = user.Email
	}
	return fmt.Sprintf(`<html><body>
<p>Hello %s,</p>
<p>An anomaly was detected on your camera.</p>
<ul>
  <li>Type: <b>%s</b></li>
  <li>Time: %s</li>
</ul>
<p><a href="%s">View the recorded clip</a></p>
<p>If the link has expired, open the dashboard to review the event.</p>
</body></html>`,
		name, ev.AnomalyType, ev.Timestamp.Format(timeDisplayLayout), link)
}
