package notifysvc

import (
	"log"

	"github.com/sarvodaya/feedesk/core"
)

// New returns the SendGrid gateway notifier when it is configured, the console one otherwise.
func New(conf *core.Config, std *log.Logger, logger core.Logger) core.Notifier {
	if conf.TestMode {
		return NewConsoleServiceMock()
	}
	if conf.SendgridApiKey == "" || conf.SMSGatewayDomain == "" {
		return NewConsoleService(std)
	}
	return NewSendgridService(conf, logger)
}
