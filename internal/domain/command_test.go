package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestNormalizeLine(t *testing.T) {
	sessionID := uuid.New()
	tests := []struct {
		name       string
		line       string
		wantRaw    string
		wantNorm   string
		wantSudo   bool
		wantReject bool
	}{
		{name: "plain command", line: "mkdir demo", wantRaw: "mkdir demo", wantNorm: "mkdir demo"},
		{name: "surrounding whitespace", line: "  ls -la  ", wantRaw: "ls -la", wantNorm: "ls -la"},
		{name: "sudo prefix", line: "sudo apt install nginx", wantRaw: "sudo apt install nginx", wantNorm: "apt install nginx", wantSudo: true},
		{name: "color codes stripped", line: "\x1b[32mgit status\x1b[0m", wantRaw: "git status", wantNorm: "git status"},
		{name: "empty line", line: "   ", wantReject: true},
		{name: "dollar prompt", line: "user@host:~$", wantReject: true},
		{name: "hash prompt", line: "root@host:~#", wantReject: true},
		{name: "bare sudo", line: "sudo  ", wantReject: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, ok := NormalizeLine(sessionID, tt.line, 1.5)
			if tt.wantReject {
				if ok {
					t.Fatalf("expected rejection, got %+v", cmd)
				}
				return
			}
			if !ok {
				t.Fatalf("expected a command for %q", tt.line)
			}
			if cmd.Raw != tt.wantRaw || cmd.Normalized != tt.wantNorm || cmd.Sudo != tt.wantSudo {
				t.Fatalf("NormalizeLine(%q) = %+v", tt.line, cmd)
			}
			if cmd.SessionID != sessionID || cmd.Timestamp != 1.5 {
				t.Fatalf("session/timestamp not carried: %+v", cmd)
			}
			if cmd.Cwd != "/" || cmd.User != "root" {
				t.Fatalf("unexpected defaults: %+v", cmd)
			}
		})
	}
}
