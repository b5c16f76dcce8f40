package notifysvc

import (
	"log"
	"sync"
	"time"

	"github.com/sarvodaya/feedesk/core"
)

type Message struct {
	Mobile string
	Text   string
	SentAt time.Time
}

var (
	SentMessages = make([]Message, 0)
	mu           sync.Mutex
)

// ResetSentMessages empties SentMessages.
func ResetSentMessages() {
	mu.Lock()
	defer mu.Unlock()
	SentMessages = make([]Message, 0)
}

// LastMessages returns a copy of SentMessages.
func LastMessages() []Message {
	mu.Lock()
	defer mu.Unlock()
	msgs := make([]Message, len(SentMessages))
	copy(msgs, SentMessages)
	return msgs
}

type consoleService struct {
	std           *log.Logger
	disableOutput bool
}

var _ core.Notifier = (*consoleService)(nil)

// NewConsoleService returns a Notifier printing messages to std instead of delivering them.
func NewConsoleService(std *log.Logger) core.Notifier {
	return &consoleService{std: std}
}

func (svc consoleService) SendNotification(mobile, message string) {
	go svc.send(mobile, message)
}

func (svc consoleService) send(mobile, message string) {
	msg := Message{Mobile: mobile, Text: message, SentAt: time.Now()}
	if !svc.disableOutput {
		svc.std.Printf("SMS to: %s\n%s\n", msg.Mobile, msg.Text)
	}
	mu.Lock()
	SentMessages = append(SentMessages, msg)
	mu.Unlock()
}

type consoleServiceMock struct {
	consoleService
}

func NewConsoleServiceMock() core.Notifier {
	return &consoleServiceMock{
		consoleService: consoleService{disableOutput: true},
	}
}

func (svc *consoleServiceMock) SendNotification(mobile, message string) {
	// run synchronously
	svc.send(mobile, message)
}
