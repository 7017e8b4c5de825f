package scraper

import (
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/use-agent/clipper/config"
)

// launchFlag is one Chromium command-line switch. An empty value means a
// bare switch.
type launchFlag struct {
	name  string
	value string
}

// LaunchConfig is the browser launch configuration. It is built once at
// start-up and only read afterwards.
type LaunchConfig struct {
	headless bool
	bin      string
	proxy    string
	flags    []launchFlag
}

// stealthFlags hide the usual automation fingerprints.
var stealthFlags = []launchFlag{
	{"disable-blink-features", "AutomationControlled"},
	{"disable-features", "AudioServiceOutOfProcess,TranslateUI"},
	{"disable-ipc-flooding-protection", ""},
	{"disable-popup-blocking", ""},
	{"disable-prompt-on-repost", ""},
	{"disable-renderer-backgrounding", ""},
	{"disable-background-timer-throttling", ""},
	{"disable-backgrounding-occluded-windows", ""},
	{"disable-component-update", ""},
	{"disable-default-apps", ""},
	{"disable-extensions", ""},
	{"no-first-run", ""},
	{"mute-audio", ""},
}

// NewLaunchConfig derives the launch configuration from cfg.
func NewLaunchConfig(cfg config.BrowserConfig) LaunchConfig {
	lc := LaunchConfig{
		headless: cfg.Headless,
		bin:      cfg.BrowserBin,
		proxy:    cfg.DefaultProxy,
	}
	if cfg.SingleProcess {
		lc.flags = append(lc.flags, launchFlag{"single-process", ""}, launchFlag{"no-zygote", ""})
	}
	lc.flags = append(lc.flags,
		launchFlag{"disable-gpu", ""},
		launchFlag{"disable-dev-shm-usage", ""},
	)
	if cfg.NoSandbox {
		lc.flags = append(lc.flags, launchFlag{"no-sandbox", ""})
	}
	lc.flags = append(lc.flags, stealthFlags...)
	return lc
}

// Args renders the switches in launch order, e.g. "--disable-gpu".
func (lc LaunchConfig) Args() []string {
	out := make([]string, len(lc.flags))
	for i, f := range lc.flags {
		out[i] = "--" + f.name
		if f.value != "" {
			out[i] += "=" + f.value
		}
	}
	return out
}

// Headless reports whether the browser runs without a window.
func (lc LaunchConfig) Headless() bool { return lc.headless }

func (lc LaunchConfig) launcher() *launcher.Launcher {
	l := launcher.New().Headless(lc.headless)
	if lc.bin != "" {
		l = l.Bin(lc.bin)
	}
	if lc.proxy != "" {
		l = l.Proxy(lc.proxy)
	}
	l.Delete(flags.Flag("enable-automation"))
	for _, f := range lc.flags {
		if f.value == "" {
			l.Set(flags.Flag(f.name))
		} else {
			l.Set(flags.Flag(f.name), f.value)
		}
	}
	return l
}
