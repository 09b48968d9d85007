package services

import (
	"context"
	"sync"

	"github.com/yungbote/veriflow-backend/internal/clients/agent"
	"github.com/yungbote/veriflow-backend/internal/clients/sendgrid"
	"github.com/yungbote/veriflow-backend/internal/clients/twilio"
)

type sentSMS struct {
	To   string
	Body string
}

type fakeSMS struct {
	mu   sync.Mutex
	sent []sentSMS
	err  error
}

func (f *fakeSMS) SendSMS(ctx context.Context, to string, body string) (*twilio.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, sentSMS{To: to, Body: body})
	return &twilio.Message{SID: "SM_fake", Status: "queued"}, nil
}

func (f *fakeSMS) sentMessages() []sentSMS {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sentSMS, len(f.sent))
	copy(out, f.sent)
	return out
}

type fakeEmail struct {
	mu   sync.Mutex
	sent []sendgrid.Email
	err  error
}

func (f *fakeEmail) SendEmail(ctx context.Context, msg sendgrid.Email) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeAgent struct {
	mu    sync.Mutex
	calls []agent.ProcessRequest
	err   error
}

func (f *fakeAgent) ProcessContract(ctx context.Context, req agent.ProcessRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	return f.err
}

func (f *fakeAgent) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeObjects struct {
	exists bool
	err    error
}

func (f *fakeObjects) Exists(ctx context.Context, gcsPath string) (bool, error) {
	return f.exists, f.err
}
