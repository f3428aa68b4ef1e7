package mailer

import (
	"strings"
	"testing"
)

func TestNewSMTPSender(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     SMTPConfig
		wantErr bool
	}{
		{
			name:    "valid config",
			cfg:     SMTPConfig{Host: "smtp.example.com", Port: 587, From: "noreply@example.com"},
			wantErr: false,
		},
		{
			name:    "defaults port",
			cfg:     SMTPConfig{Host: "smtp.example.com", From: "noreply@example.com"},
			wantErr: false,
		},
		{
			name:    "missing host",
			cfg:     SMTPConfig{From: "noreply@example.com"},
			wantErr: true,
		},
		{
			name:    "missing from",
			cfg:     SMTPConfig{Host: "smtp.example.com"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewSMTPSender(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewSMTPSender() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBuildMessage(t *testing.T) {
	t.Parallel()

	msg := string(buildMessage("noreply@example.com", "student@example.com", "Task due soon", "Your task is due."))

	for _, want := range []string{
		"From: noreply@example.com\r\n",
		"To: student@example.com\r\n",
		"Subject: Task due soon\r\n",
		"Content-Type: text/plain; charset=utf-8\r\n",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q", want)
		}
	}
	if !strings.HasSuffix(msg, "\r\n\r\nYour task is due.") {
		t.Errorf("body not separated from headers: %q", msg)
	}
}

func TestSanitizeHeader(t *testing.T) {
	t.Parallel()

	got := sanitizeHeader("due\r\nBcc: evil@example.com")
	if strings.ContainsAny(got, "\r\n") {
		t.Errorf("header still contains CRLF: %q", got)
	}
}
