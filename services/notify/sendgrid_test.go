package notifysvc

import (
	"encoding/json"
	"testing"

	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/sarvodaya/feedesk/core"
)

func Test_sendgridService_prepare(t *testing.T) {
	conf := core.NewTestConfig()
	conf.SendgridApiKey = "key"
	conf.SMSGatewayDomain = "sms.example.com"
	svc := NewSendgridService(conf, nil).(*sendgridService)

	body := sgmail.GetRequestBody(svc.prepare("9876543210", "Dear Parent"))

	var got struct {
		From struct {
			Email string `json:"email"`
		} `json:"from"`
		Personalizations []struct {
			To []struct {
				Email string `json:"email"`
			} `json:"to"`
			Subject string `json:"subject"`
		} `json:"personalizations"`
		Content []struct {
			Type  string `json:"type"`
			Value string `json:"value"`
		} `json:"content"`
	}
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if got.From.Email != "noreply@localhost" {
		t.Errorf("from = %q", got.From.Email)
	}
	if len(got.Personalizations) != 1 || len(got.Personalizations[0].To) != 1 {
		t.Fatalf("personalizations = %+v", got.Personalizations)
	}
	if to := got.Personalizations[0].To[0].Email; to != "9876543210@sms.example.com" {
		t.Errorf("to = %q, want 9876543210@sms.example.com", to)
	}
	if subj := got.Personalizations[0].Subject; subj != "[FeeDesk] Payment received" {
		t.Errorf("subject = %q", subj)
	}
	if len(got.Content) != 1 || got.Content[0].Type != "text/plain" || got.Content[0].Value != "Dear Parent" {
		t.Errorf("content = %+v", got.Content)
	}
}

func TestNew(t *testing.T) {
	conf := core.NewTestConfig()
	if _, ok := New(conf, nil, nil).(*consoleServiceMock); !ok {
		t.Error("New() in test mode should return the console mock")
	}
	conf.TestMode = false
	if _, ok := New(conf, nil, nil).(*consoleService); !ok {
		t.Error("New() without gateway should return the console service")
	}
	conf.SendgridApiKey = "key"
	conf.SMSGatewayDomain = "sms.example.com"
	if _, ok := New(conf, nil, nil).(*sendgridService); !ok {
		t.Error("New() with gateway should return the sendgrid service")
	}
}

func TestConsoleServiceMock(t *testing.T) {
	ResetSentMessages()
	svc := NewConsoleServiceMock()
	svc.SendNotification("9876543210", "hello")

	msgs := LastMessages()
	if len(msgs) != 1 || msgs[0].Mobile != "9876543210" || msgs[0].Text != "hello" {
		t.Errorf("SentMessages = %+v", msgs)
	}
}
