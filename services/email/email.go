package emailsvc

import (
	"log"

	"github.com/PARTHSHARMA4010/ClarityAI/core"
)

// New returns the sendgrid service when an API key is configured, the console service otherwise.
func New(std *log.Logger, logger core.Logger, conf *core.Config) core.EmailService {
	if conf.Mail.SendgridAPIKey != "" {
		return NewSendgridService(logger, conf)
	}
	return NewConsoleService(std, logger, conf)
}
