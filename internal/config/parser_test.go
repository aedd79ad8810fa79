package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sampleRC = `
# appearance
borderwidth 4
mfact 0.5
nmaster 2
snapdist 16
gap 10 10 5 5
color selborder #00ff00
fontname fixed

terminal st -e tmux
autostart sh -c "xsetroot -name dynamd"

rule class URxvt terminal
rule title "Event Tester" noswallow tag=3 monitor=1

bind 4-t "set-layout tile"
bind 4-Return unmap
mousebind 4-2 unmap
`

func TestParse(t *testing.T) {
	cfg, err := Parse(strings.NewReader(sampleRC))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.BorderWidth != 4 {
		t.Errorf("BorderWidth = %d, want 4", cfg.BorderWidth)
	}
	if cfg.MFact != 0.5 {
		t.Errorf("MFact = %v, want 0.5", cfg.MFact)
	}
	if cfg.NMaster != 2 {
		t.Errorf("NMaster = %d, want 2", cfg.NMaster)
	}
	if cfg.Snapdist != 16 {
		t.Errorf("Snapdist = %d, want 16", cfg.Snapdist)
	}
	if want := (Gap{OuterH: 10, OuterV: 10, InnerH: 5, InnerV: 5}); cfg.Gap != want {
		t.Errorf("Gap = %+v, want %+v", cfg.Gap, want)
	}
	if cfg.Colors["selborder"] != "#00ff00" {
		t.Errorf("selborder = %q", cfg.Colors["selborder"])
	}
	if cfg.Colors["normbg"] != "#222222" {
		t.Errorf("normbg default lost: %q", cfg.Colors["normbg"])
	}
	if cfg.Font != "fixed" {
		t.Errorf("Font = %q", cfg.Font)
	}
	if diff := cmp.Diff([]string{"st", "-e", "tmux"}, cfg.Terminal); diff != "" {
		t.Errorf("Terminal mismatch (-want +got):\n%s", diff)
	}

	last := cfg.Autostart[len(cfg.Autostart)-1]
	if diff := cmp.Diff([]string{"sh", "-c", "xsetroot -name dynamd"}, last); diff != "" {
		t.Errorf("Autostart mismatch (-want +got):\n%s", diff)
	}

	rules := cfg.Rules[len(cfg.Rules)-2:]
	wantRules := []Rule{
		{Class: "URxvt", IsTerminal: true, Monitor: -1},
		{Title: "Event Tester", NoSwallow: true, Tags: 1 << 2, Monitor: 1},
	}
	if diff := cmp.Diff(wantRules, rules); diff != "" {
		t.Errorf("Rules mismatch (-want +got):\n%s", diff)
	}

	if got := cfg.Binds[KeySpec{Mods: "4", Key: "t"}]; got != "set-layout tile" {
		t.Errorf("bind 4-t = %q", got)
	}
	if _, ok := cfg.Binds[KeySpec{Mods: "4", Key: "Return"}]; ok {
		t.Error("bind unmap left the default in place")
	}
	if _, ok := cfg.MouseBinds[KeySpec{Mods: "4", Key: "2"}]; ok {
		t.Error("mousebind unmap left the default in place")
	}
}

func TestParseNoTrailingNewline(t *testing.T) {
	cfg, err := Parse(strings.NewReader("borderwidth 3"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.BorderWidth != 3 {
		t.Errorf("BorderWidth = %d, want 3", cfg.BorderWidth)
	}
}

var parseErrTests = []struct {
	name string
	rc   string
}{
	{"unknown keyword", "frobnicate 1\n"},
	{"missing argument", "borderwidth\n"},
	{"surplus argument", "borderwidth 1 2\n"},
	{"mfact out of range", "mfact 2\n"},
	{"negative gap", "gap 1 2 -3 4\n"},
	{"gap arity", "gap 1 2 3\n"},
	{"bad modifier", "bind 4X-a spawn\n"},
	{"empty key", "bind 4- spawn\n"},
	{"bad button", "mousebind 4-9 move-mouse\n"},
	{"bad rule field", "rule color x\n"},
	{"bad rule option", "rule class St frobnicate\n"},
	{"bad rule tag", "rule class St tag=40\n"},
	{"bare rule", "rule class\n"},
	{"unknown color role", "color accent #123456\n"},
}

func TestParseErrors(t *testing.T) {
	for _, tt := range parseErrTests {
		if _, err := Parse(strings.NewReader(tt.rc)); err == nil {
			t.Errorf("%s: Parse(%q) succeeded, want error", tt.name, tt.rc)
		}
	}
}

var toXGBTests = []struct {
	spec KeySpec
	want string
}{
	{KeySpec{Mods: "4", Key: "Return"}, "Mod4-Return"},
	{KeySpec{Mods: "4S", Key: "Right"}, "Mod4-Shift-Right"},
	{KeySpec{Mods: "CM4", Key: "x"}, "Control-Mod1-Mod4-x"},
	{KeySpec{Key: "space"}, "space"},
}

func TestKeySpecToXGB(t *testing.T) {
	for _, tt := range toXGBTests {
		if got := tt.spec.ToXGB(); got != tt.want {
			t.Errorf("%+v.ToXGB() = %q, want %q", tt.spec, got, tt.want)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "no-such-rc"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MFact != 0.56 || cfg.NMaster != 1 || len(cfg.Tags) != 25 {
		t.Errorf("defaults not applied: mfact=%v nmaster=%d tags=%d",
			cfg.MFact, cfg.NMaster, len(cfg.Tags))
	}
	if cfg.Binds[KeySpec{Mods: "4", Key: "Return"}] != "spawn-terminal" {
		t.Error("default binds missing")
	}
}
