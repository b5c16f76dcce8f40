package notifysvc

import (
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/sarvodaya/feedesk/core"
)

var (
	host     = "https://api.sendgrid.com"
	endpoint = "/v3/mail/send"
)

// sendgridService delivers SMS through an email-to-SMS gateway: mail to <mobile>@<gatewayDomain>.
type sendgridService struct {
	key           string
	from          *sgmail.Email
	subject       string
	gatewayDomain string
	logger        core.Logger
}

var _ core.Notifier = (*sendgridService)(nil)

func NewSendgridService(conf *core.Config, logger core.Logger) core.Notifier {
	from := conf.DefaultFromEmail()
	return &sendgridService{
		key:           conf.SendgridApiKey,
		from:          sgmail.NewEmail(from.Name, from.Address),
		subject:       "[" + conf.AppName + "] Payment received",
		gatewayDomain: conf.SMSGatewayDomain,
		logger:        logger,
	}
}

func (svc sendgridService) SendNotification(mobile, message string) {
	if mobile == "" {
		svc.logger.Warn("sending SMS: no mobile number", map[string]interface{}{"message": message})
		return
	}
	go svc.send(mobile, message)
}

func (svc sendgridService) prepare(mobile, message string) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = svc.subject
	p.AddTos(sgmail.NewEmail("", mobile+"@"+svc.gatewayDomain))

	m := sgmail.NewV3Mail()
	m.SetFrom(svc.from)
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", message))
	return m
}

func (svc sendgridService) send(mobile, message string) {
	req := sendgrid.GetRequest(svc.key, endpoint, host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(svc.prepare(mobile, message))

	res, err := sendgrid.API(req)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("sending SMS: %v", err), err)
	} else if res.StatusCode >= http.StatusBadRequest {
		svc.logger.Error(fmt.Sprintf("sending SMS - status: %d - Body: %s", res.StatusCode, res.Body))
	}
}
