package email

import (
	"fmt"
	"strings"

	"github.com/examforge/examforge/internal/application/notification"
	"github.com/examforge/examforge/internal/shared/biztime"
	"github.com/examforge/examforge/internal/shared/services/markdown"
	"github.com/examforge/examforge/internal/shared/utils"
)

// Composer renders notifications as markdown; the markdown source doubles as
// the plain-text part.
type Composer struct {
	renderer markdown.Renderer
	baseURL  string
}

func NewComposer(renderer markdown.Renderer, baseURL string) *Composer {
	return &Composer{renderer: renderer, baseURL: strings.TrimRight(baseURL, "/")}
}

func (c *Composer) Welcome(msg notification.WelcomeMessage) (Message, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", greetingName(msg.Name))
	fmt.Fprintf(&b, "Thank you for subscribing to **%s**. Your access is now active.\n\n", msg.PlanTitle)
	fmt.Fprintf(&b, "- Amount paid: %s\n", utils.FormatMinorAmount(msg.AmountMinor, msg.Currency))
	fmt.Fprintf(&b, "- Valid until: %s\n", biztime.FormatDate(msg.Expire))
	if msg.AutoPay {
		b.WriteString("- Renewal: automatic\n")
	} else {
		b.WriteString("- Renewal: manual\n")
	}
	fmt.Fprintf(&b, "\nStart practising at %s\n", c.link("/dashboard"))

	return c.compose(msg.Email, msg.Name, "Your "+msg.PlanTitle+" subscription is active", b.String())
}

func (c *Composer) Expired(msg notification.ExpiryMessage) (Message, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", greetingName(msg.Name))
	plan := msg.PlanTitle
	if plan == "" {
		plan = "subscription"
	}
	fmt.Fprintf(&b, "Your **%s** expired on %s.\n\n", plan, biztime.FormatDate(msg.ExpiredAt))
	fmt.Fprintf(&b, "Renew any time at %s to keep your progress going.\n", c.link("/plans"))

	return c.compose(msg.Email, msg.Name, "Your subscription has expired", b.String())
}

func (c *Composer) compose(to, name, subject, body string) (Message, error) {
	htmlBody, err := c.renderer.ToHTMLSanitized(body)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:        to,
		ToName:    c.renderer.PlainText(name),
		Subject:   c.renderer.PlainText(subject),
		HTMLBody:  htmlBody,
		PlainBody: body,
	}, nil
}

func (c *Composer) link(path string) string {
	if c.baseURL == "" {
		return path
	}
	return c.baseURL + path
}

func greetingName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "there"
	}
	return name
}
