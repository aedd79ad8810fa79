// Package config holds the compiled-in defaults and the rc-file parser
// that overrides them. The rc format is word based: one statement per
// line, double quotes around arguments that contain spaces, # comments.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

type Gap struct {
	OuterH, OuterV, InnerH, InnerV int
}

// Rule matches freshly managed clients by class, instance or title
// substring and applies placement overrides.
type Rule struct {
	Class    string
	Instance string
	Title    string

	Tags       uint32
	IsFloating bool
	IsTerminal bool
	NoSwallow  bool
	Monitor    int // -1 keeps the focused monitor
}

// KeySpec is a parsed key or button chord. Mods uses the house letters:
// C control, M mod1, S shift, 4 super.
type KeySpec struct {
	Mods string
	Key  string
}

func (k KeySpec) ToXGB() string {
	var out []string
	for _, c := range k.Mods {
		switch c {
		case 'C':
			out = append(out, "Control")
		case 'M':
			out = append(out, "Mod1")
		case 'S':
			out = append(out, "Shift")
		case '4':
			out = append(out, "Mod4")
		}
	}
	out = append(out, k.Key)
	return strings.Join(out, "-")
}

type Config struct {
	BorderWidth int
	Snapdist    int
	MFact       float64
	NMaster     int
	Gap         Gap
	GapsOn      bool
	Colors      map[string]string
	Font        string
	Tags        []string
	Rules       []Rule
	Binds       map[KeySpec]string
	MouseBinds  map[KeySpec]string
	Autostart   [][]string
	Terminal    []string
	TopBar      bool
	TopTab      bool
}

// Default returns the compiled-in configuration.
func Default() *Config {
	cfg := &Config{
		BorderWidth: 2,
		Snapdist:    32,
		MFact:       0.56,
		NMaster:     1,
		Gap:         Gap{OuterH: 10, OuterV: 10, InnerH: 10, InnerV: 10},
		GapsOn:      true,
		Colors: map[string]string{
			"normfg":     "#ababab",
			"normbg":     "#222222",
			"normborder": "#222222",
			"selfg":      "#eeeeee",
			"selbg":      "#222222",
			"selborder":  "#ff4545",
		},
		// Core font XLFD; the window manager falls back to "fixed"
		// when the pattern does not resolve.
		Font: "-*-monolisa-medium-r-*--15-*-*-*-*-*-*-*",
		Tags: []string{
			"1", "2", "3", "4", "5", "6", "7", "8", "9", "10",
			"11", "12", "13", "14", "15", "16", "17", "18", "19", "20",
			"21", "22", "23", "24", "25",
		},
		Rules: []Rule{
			{Class: "Alacritty", IsTerminal: true, Monitor: -1},
			{Class: "St", IsTerminal: true, Monitor: -1},
			{Class: "kitty", IsTerminal: true, Monitor: -1},
			{Title: "Event Tester", NoSwallow: true, Monitor: -1},
		},
		Terminal: []string{"alacritty"},
		TopBar:   true,
		TopTab:   false,
	}
	cfg.Binds = map[KeySpec]string{
		{Mods: "4", Key: "Return"}:  "spawn-terminal",
		{Mods: "4", Key: "space"}:   "spawn flameshot gui",
		{Mods: "4", Key: "d"}:       "spawn dmenu_run -nb black -sb white -nf #858585 -sf black -fn MonoLisa-18",
		{Mods: "4", Key: "r"}:       "spawn rofi -modi drun -show drun -theme sidetab -matching fuzzy",
		{Mods: "4", Key: "e"}:       "spawn pcmanfm",
		{Mods: "4", Key: "Right"}:   "focus-next",
		{Mods: "4", Key: "Left"}:    "focus-prev",
		{Mods: "4S", Key: "Right"}:  "move-next",
		{Mods: "4S", Key: "Left"}:   "move-prev",
		{Mods: "4C", Key: "Right"}:  "set-mfact +0.05",
		{Mods: "4C", Key: "Left"}:   "set-mfact -0.05",
		{Mods: "4", Key: "equal"}:   "gaps +1",
		{Mods: "4", Key: "minus"}:   "gaps -1",
		{Mods: "4C", Key: "period"}: "focus-mon +1",
		{Mods: "4C", Key: "comma"}:  "focus-mon -1",
		{Mods: "4S", Key: "period"}: "tag-mon +1",
		{Mods: "4S", Key: "comma"}:  "tag-mon -1",
		{Mods: "4S", Key: "Return"}: "zoom",
		{Mods: "4", Key: "f"}:       "toggle-fullscreen",
		{Mods: "4", Key: "q"}:       "kill",
		{Mods: "4", Key: "b"}:       "toggle-bar",
		{Mods: "4", Key: "g"}:       "toggle-gaps",
		{Mods: "4S", Key: "f"}:      "toggle-floating",
		{Mods: "4", Key: "s"}:       "shift-view +1",
		{Mods: "4", Key: "a"}:       "shift-view -1",
		{Mods: "4S", Key: "r"}:      "organize-tags",
		{Mods: "4", Key: "x"}:       "cycle-layout +1",
		{Mods: "4", Key: "z"}:       "cycle-layout -1",
		{Mods: "4", Key: "Tab"}:     "view-prev",
		{Mods: "4", Key: "0"}:       "view-all",
	}
	for i := 1; i <= 9; i++ {
		n := string(rune('0' + i))
		cfg.Binds[KeySpec{Mods: "4", Key: n}] = "view " + n
		cfg.Binds[KeySpec{Mods: "4S", Key: n}] = "tag " + n
	}
	cfg.MouseBinds = map[KeySpec]string{
		{Mods: "4", Key: "1"}: "move-mouse",
		{Mods: "4", Key: "2"}: "toggle-floating",
		{Mods: "4", Key: "3"}: "resize-mouse",
	}
	return cfg
}

// DefaultPath returns the rc file location under the user's config
// directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "dynamd", "dynamdrc")
}

// Load reads the rc file at path on top of the defaults. A missing file
// is not an error; the defaults stand.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}
