package scraper

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/use-agent/clipper/config"
	"github.com/use-agent/clipper/models"
)

func TestLaunchConfigArgs(t *testing.T) {
	lc := NewLaunchConfig(config.BrowserConfig{
		Headless:      true,
		NoSandbox:     true,
		SingleProcess: true,
	})
	args := lc.Args()
	for _, want := range []string{
		"--single-process",
		"--no-zygote",
		"--disable-gpu",
		"--disable-dev-shm-usage",
		"--no-sandbox",
		"--disable-blink-features=AutomationControlled",
	} {
		if !slices.Contains(args, want) {
			t.Errorf("Args() missing %s: %v", want, args)
		}
	}
	if args[0] != "--single-process" {
		t.Errorf("first flag = %s, want --single-process", args[0])
	}
	if !lc.Headless() {
		t.Error("Headless() = false")
	}
}

func TestLaunchConfigSandboxed(t *testing.T) {
	args := NewLaunchConfig(config.BrowserConfig{}).Args()
	for _, unwanted := range []string{"--no-sandbox", "--single-process", "--no-zygote"} {
		if slices.Contains(args, unwanted) {
			t.Errorf("Args() unexpectedly contains %s", unwanted)
		}
	}
	if !slices.Contains(args, "--disable-gpu") {
		t.Errorf("Args() missing --disable-gpu: %v", args)
	}
}

func TestIsAdDomain(t *testing.T) {
	tests := []struct {
		host string
		want bool
	}{
		{"doubleclick.net", true},
		{"securepubads.g.doubleclick.net", true},
		{"PAGEAD2.GOOGLESYNDICATION.COM", true},
		{"api.dable.io", true},
		{"gfp.veta.naver.com", true},
		{"cdn.acecounter.com", true},
		{"news.naver.com", false},
		{"imgnews.pstatic.net", false},
		{"example.com", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isAdDomain(tt.host); got != tt.want {
			t.Errorf("isAdDomain(%q) = %v, want %v", tt.host, got, tt.want)
		}
	}
}

func TestCategorizeError(t *testing.T) {
	err := categorizeError(context.DeadlineExceeded, "navigation failed")
	if err.Code != models.ErrCodeRenderFailed {
		t.Errorf("Code = %s", err.Code)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("deadline not reachable through errors.Is")
	}
	if err.Message != "render timed out: navigation failed" {
		t.Errorf("Message = %q", err.Message)
	}
}

type fakeBrowser struct{ err error }

func (b fakeBrowser) Connect() error { return b.err }

type fakeLauncher struct{ killed int }

func (l *fakeLauncher) Kill() { l.killed++ }

func TestConnectKillsOnFailure(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantKilled int
	}{
		{"connected", nil, 0},
		{"refused", errors.New("websocket: bad handshake"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &fakeLauncher{}
			err := connect(fakeBrowser{tt.err}, l)
			if !errors.Is(err, tt.err) {
				t.Errorf("connect error = %v, want %v", err, tt.err)
			}
			if l.killed != tt.wantKilled {
				t.Errorf("Kill called %d times, want %d", l.killed, tt.wantKilled)
			}
		})
	}
}
