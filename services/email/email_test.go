package emailsvc

import (
	"encoding/json"
	"log"
	"net/mail"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sendgrid/rest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academia/core"
	appfs "github.com/trezcool/academia/fs"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func testConfig() *core.Config {
	return &core.Config{
		AppName:          "Academia",
		TestMode:         true,
		FrontendBaseURL:  "http://localhost:3000",
		DefaultFromEmail: "noreply@academia.test",
		SendgridAPIKey:   "SG.test",
	}
}

func testTemplates(t *testing.T, conf *core.Config) *core.EmailTemplates {
	t.Helper()
	tmpls, err := core.ParseEmailTemplates(appfs.Templates, appfs.EmailTemplatesDir, conf)
	require.NoError(t, err)
	return tmpls
}

func TestServiceMock_SendMessages(t *testing.T) {
	conf := testConfig()
	svc := NewServiceMock(conf, testTemplates(t, conf), nopLogger{})
	to := []mail.Address{{Name: "Ada", Address: "ada@academia.test"}}

	tests := []struct {
		name     string
		msg      core.EmailMessage
		wantSent bool
	}{
		{name: "plain body", msg: core.EmailMessage{To: to, Subject: "Hi", BodyStr: "hello"}, wantSent: true},
		{name: "no recipients", msg: core.EmailMessage{Subject: "Hi", BodyStr: "hello"}},
		{name: "no content", msg: core.EmailMessage{To: to, Subject: "Hi"}},
		{name: "unknown template", msg: core.EmailMessage{To: to, Subject: "Hi", TemplateName: "nope"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc.Reset()
			msg := tc.msg
			svc.SendMessages(&msg)
			assert.Equal(t, tc.wantSent, len(svc.Sent()) == 1)
		})
	}
}

func TestServiceMock_RendersScheduleConfirmed(t *testing.T) {
	conf := testConfig()
	svc := NewServiceMock(conf, testTemplates(t, conf), nopLogger{})

	type mtg struct {
		MeetingNumber int
		Date          string
		StartTime     string
		EndTime       string
		Location      string
	}
	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: "Ada", Address: "ada@academia.test"}},
		Subject:      "Schedule confirmed",
		TemplateName: "schedule_confirmed",
		TemplateData: map[string]interface{}{
			"InstructorName": "Ada",
			"CourseCode":     "GO101",
			"CourseName":     "Go basics",
			"SectionNumber":  2,
			"Meetings":       []mtg{{1, "2024-03-04", "09:00", "11:00", "Room A"}},
		},
	}
	svc.SendMessages(msg)

	sent := svc.Sent()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].TextContent, "GO101")
	assert.Contains(t, sent[0].TextContent, "2024-03-04")
	assert.Contains(t, sent[0].HTMLContent, "Room A")
	assert.Contains(t, sent[0].TextContent, "Academia")
}

func TestConsoleService_compose(t *testing.T) {
	conf := testConfig()
	svc := consoleService{
		defaultFromEmail: mail.Address{Name: conf.AppName, Address: conf.DefaultFromEmail},
		subjPrefix:       "[Academia] ",
		logger:           nopLogger{},
	}
	msg := core.EmailMessage{
		To:          []mail.Address{{Address: "ada@academia.test"}},
		Subject:     "Calendar",
		TextContent: "see attached",
	}
	require.NoError(t, msg.Attach(strings.NewReader("BEGIN:VCALENDAR"), "section.ics", "text/calendar"))

	body, err := svc.compose(msg)
	require.NoError(t, err)
	assert.Contains(t, body, "Subject: [Academia] Calendar")
	assert.Contains(t, body, "multipart/mixed")
	assert.Contains(t, body, "filename=section.ics")
	assert.Contains(t, body, "see attached")
}

func TestSendgridService_send(t *testing.T) {
	conf := testConfig()

	var (
		mu   sync.Mutex
		reqs []rest.Request
		done = make(chan struct{}, 1)
	)
	orig := sendRequest
	sendRequest = func(req rest.Request) (*rest.Response, error) {
		mu.Lock()
		reqs = append(reqs, req)
		mu.Unlock()
		done <- struct{}{}
		return &rest.Response{StatusCode: 202}, nil
	}
	defer func() { sendRequest = orig }()

	svc := NewSendgridService(conf, testTemplates(t, conf), nopLogger{})
	svc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: "Ada", Address: "ada@academia.test"}},
		Subject: "Hello",
		BodyStr: "hi there",
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("email was not sent")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, reqs, 1)
	assert.Equal(t, rest.Post, reqs[0].Method)
	assert.Equal(t, host+endpoint, reqs[0].BaseURL)

	var payload struct {
		Personalizations []struct {
			Subject string `json:"subject"`
		} `json:"personalizations"`
		Content []struct {
			Type string `json:"type"`
		} `json:"content"`
	}
	require.NoError(t, json.Unmarshal(reqs[0].Body, &payload))
	require.Len(t, payload.Personalizations, 1)
	assert.Equal(t, "[Academia] Hello", payload.Personalizations[0].Subject)
	require.Len(t, payload.Content, 1)
	assert.Equal(t, "text/plain", payload.Content[0].Type)
}

func init() {
	log.SetFlags(0)
}
