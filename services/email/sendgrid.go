package emailsvc

import (
	"fmt"
	"net/http"
	"net/mail"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/PARTHSHARMA4010/ClarityAI/core"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// sendgridService sends one v3 mail per message. The template name becomes the
// sendgrid category, so welcome mails & submission notices can be tracked apart.
type sendgridService struct {
	key        string
	from       *sgmail.Email
	subjPrefix string
	appName    string
	logger     core.Logger
	api        func(rest.Request) (*rest.Response, error)
}

var _ core.EmailService = (*sendgridService)(nil)

func NewSendgridService(logger core.Logger, conf *core.Config) *sendgridService {
	from := conf.DefaultFromEmail()
	return &sendgridService{
		key:        conf.Mail.SendgridAPIKey,
		from:       sgmail.NewEmail(from.Name, from.Address),
		subjPrefix: "[" + conf.AppName + "] ",
		appName:    conf.AppName,
		logger:     logger,
		api:        sendgrid.API,
	}
}

// SendMessages renders the batch then sends it from a single goroutine.
func (svc *sendgridService) SendMessages(messages ...*core.EmailMessage) {
	batch := make([]core.EmailMessage, 0, len(messages))
	for _, msg := range messages {
		if err := msg.Render(); err != nil {
			svc.logger.Error(fmt.Sprintf("rendering email %q: %v", msg.TemplateName, err), err)
			continue
		}
		if msg.HasRecipients() && msg.HasContent() {
			batch = append(batch, *msg)
		}
	}
	if len(batch) == 0 {
		return
	}
	go svc.sendAll(batch)
}

func (svc *sendgridService) sendAll(batch []core.EmailMessage) {
	for _, msg := range batch {
		if err := svc.send(msg); err != nil {
			svc.logger.Error(fmt.Sprintf("sending %q email: %v", msg.Subject, err), err)
		}
	}
}

func (svc *sendgridService) prepare(msg core.EmailMessage) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = svc.subjPrefix + msg.Subject
	p.AddTos(toSGEmails(msg.To)...)

	m := sgmail.NewV3Mail()
	m.SetFrom(svc.from)
	if msg.ReplyTo != nil {
		m.SetReplyTo(sgmail.NewEmail(msg.ReplyTo.Name, msg.ReplyTo.Address))
	}
	if msg.TemplateName != "" {
		m.AddCategories(svc.appName, msg.TemplateName)
	}
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", msg.TextContent))
	return m
}

func (svc *sendgridService) send(msg core.EmailMessage) error {
	req := sendgrid.GetRequest(svc.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(svc.prepare(msg))

	res, err := svc.api(req)
	if err != nil {
		return err
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

func toSGEmails(addrs []mail.Address) []*sgmail.Email {
	emails := make([]*sgmail.Email, 0, len(addrs))
	for _, addr := range addrs {
		emails = append(emails, sgmail.NewEmail(addr.Name, addr.Address))
	}
	return emails
}
