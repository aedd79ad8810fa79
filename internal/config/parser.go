package config

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

type parseDecl struct {
	// num is the argument count; negative means the rest of the line
	// (at least one argument).
	num int
	fn  func(cfg *Config, in []string) error
}

var parseMap = map[string]parseDecl{
	"autostart": {-1, func(cfg *Config, in []string) error {
		cfg.Autostart = append(cfg.Autostart, in)
		return nil
	}},

	"bind": {2, func(cfg *Config, in []string) error {
		key, err := parseKeySpec(in[0])
		if err != nil {
			return err
		}
		if in[1] == "unmap" {
			delete(cfg.Binds, key)
		} else {
			cfg.Binds[key] = in[1]
		}
		return nil
	}},

	"borderwidth": {1, func(cfg *Config, in []string) error {
		i, err := strconv.Atoi(in[0])
		if err != nil || i < 0 {
			return fmt.Errorf("invalid borderwidth %q", in[0])
		}
		cfg.BorderWidth = i
		return nil
	}},

	"color": {2, func(cfg *Config, in []string) error {
		if _, ok := cfg.Colors[in[0]]; !ok {
			return fmt.Errorf("unknown color role %q", in[0])
		}
		cfg.Colors[in[0]] = in[1]
		return nil
	}},

	"fontname": {1, func(cfg *Config, in []string) error {
		cfg.Font = in[0]
		return nil
	}},

	"gap": {4, func(cfg *Config, in []string) error {
		i, err := parseInts(in)
		if err != nil {
			return err
		}
		for _, v := range i {
			if v < 0 {
				return fmt.Errorf("negative gap %d", v)
			}
		}
		cfg.Gap.OuterH = i[0]
		cfg.Gap.OuterV = i[1]
		cfg.Gap.InnerH = i[2]
		cfg.Gap.InnerV = i[3]
		return nil
	}},

	"mfact": {1, func(cfg *Config, in []string) error {
		f, err := strconv.ParseFloat(in[0], 64)
		if err != nil || f < 0.05 || f > 0.95 {
			return fmt.Errorf("mfact %q outside [0.05, 0.95]", in[0])
		}
		cfg.MFact = f
		return nil
	}},

	"mousebind": {2, func(cfg *Config, in []string) error {
		key, err := parseKeySpec(in[0])
		if err != nil {
			return err
		}
		if len(key.Key) != 1 || key.Key[0] < '1' || key.Key[0] > '5' {
			return fmt.Errorf("invalid button %q", in[0])
		}
		if in[1] == "unmap" {
			delete(cfg.MouseBinds, key)
		} else {
			cfg.MouseBinds[key] = in[1]
		}
		return nil
	}},

	"nmaster": {1, func(cfg *Config, in []string) error {
		i, err := strconv.Atoi(in[0])
		if err != nil || i < 0 {
			return fmt.Errorf("invalid nmaster %q", in[0])
		}
		cfg.NMaster = i
		return nil
	}},

	"rule": {-1, func(cfg *Config, in []string) error {
		if len(in) < 2 {
			return errors.New("rule needs a field and a substring")
		}
		r := Rule{Monitor: -1}
		switch in[0] {
		case "class":
			r.Class = in[1]
		case "instance":
			r.Instance = in[1]
		case "title":
			r.Title = in[1]
		default:
			return fmt.Errorf("invalid rule field %q", in[0])
		}
		for _, opt := range in[2:] {
			switch {
			case opt == "float":
				r.IsFloating = true
			case opt == "terminal":
				r.IsTerminal = true
			case opt == "noswallow":
				r.NoSwallow = true
			case strings.HasPrefix(opt, "tag="):
				n, err := strconv.Atoi(opt[len("tag="):])
				if err != nil || n < 1 || n > len(cfg.Tags) {
					return fmt.Errorf("invalid rule tag %q", opt)
				}
				r.Tags |= 1 << (n - 1)
			case strings.HasPrefix(opt, "monitor="):
				n, err := strconv.Atoi(opt[len("monitor="):])
				if err != nil || n < 0 {
					return fmt.Errorf("invalid rule monitor %q", opt)
				}
				r.Monitor = n
			default:
				return fmt.Errorf("invalid rule option %q", opt)
			}
		}
		cfg.Rules = append(cfg.Rules, r)
		return nil
	}},

	"snapdist": {1, func(cfg *Config, in []string) error {
		i, err := strconv.Atoi(in[0])
		if err != nil || i < 0 {
			return fmt.Errorf("invalid snapdist %q", in[0])
		}
		cfg.Snapdist = i
		return nil
	}},

	"terminal": {-1, func(cfg *Config, in []string) error {
		cfg.Terminal = in
		return nil
	}},
}

func parseKeySpec(s string) (KeySpec, error) {
	parts := strings.SplitN(s, "-", 2)
	var key KeySpec
	switch len(parts) {
	case 1:
		key = KeySpec{Key: parts[0]}
	case 2:
		key = KeySpec{Mods: parts[0], Key: parts[1]}
	}
	if key.Key == "" {
		return key, fmt.Errorf("invalid keyspec %q", s)
	}
	for _, c := range key.Mods {
		switch c {
		case 'C', 'M', 'S', '4':
		default:
			return key, fmt.Errorf("invalid modifier %q in %q", string(c), s)
		}
	}
	return key, nil
}

// Parse reads rc statements from r on top of the defaults.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()

	cnt, _ := io.ReadAll(r)
	_, ch := lex(string(cnt))
	for {
		command, ok := <-ch
		if !ok {
			return cfg, errors.New("internal error")
		}

		if command.typ == itemEOF {
			return cfg, nil
		}
		if command.typ == itemTerminator {
			continue
		}
		if command.typ != itemString {
			return cfg, errors.New("unexpected token " + command.String())
		}
		decl, ok := parseMap[command.val]
		if !ok {
			return cfg, errors.New("unknown option " + command.val)
		}
		in, err := expect(ch, decl.num)
		if err != nil {
			return cfg, fmt.Errorf("%s: %v", command.val, err)
		}
		err = decl.fn(cfg, in)
		if err != nil {
			return cfg, fmt.Errorf("%s: %v", command.val, err)
		}
	}
}

func parseInts(in []string) ([]int, error) {
	out := make([]int, len(in))
	var err error
	for i, s := range in {
		out[i], err = strconv.Atoi(s)
		if err != nil {
			return out, err
		}
	}
	return out, nil
}

func expect(ch chan item, num int) ([]string, error) {
	if num < 0 {
		var ret []string
		for {
			val := <-ch
			switch val.typ {
			case itemError:
				return ret, errors.New(val.val)
			case itemTerminator, itemEOF:
				if len(ret) == 0 {
					return ret, io.EOF
				}
				return ret, nil
			}
			ret = append(ret, val.val)
		}
	}

	var ret []string
	for i := 0; i < num; i++ {
		val := <-ch
		if val.typ == itemError {
			return ret, errors.New(val.val)
		}

		if val.typ == itemTerminator || val.typ == itemEOF {
			return ret, io.EOF
		}

		ret = append(ret, val.val)
	}

	val := <-ch
	if val.typ != itemTerminator {
		return ret, errors.New("unexpected token " + val.typ.String())
	}

	return ret, nil
}

type lexer struct {
	input             string
	start             int
	pos               int
	width             int
	items             chan item
	lastWasTerminator bool
}
type itemType int

const (
	itemError itemType = iota
	itemString
	itemTerminator
	itemEOF
)

func (i itemType) String() string {
	switch i {
	case itemError:
		return "error"
	case itemString:
		return "string"
	case itemTerminator:
		return "terminator"
	case itemEOF:
		return "eof"
	default:
		return ""
	}
}

const eof = -1

type item struct {
	typ itemType
	val string
}

func (i item) String() string {
	switch i.typ {
	case itemEOF:
		return "EOF"
	case itemError:
		return i.val
	}
	return fmt.Sprintf("(%s) %q", i.typ, i.val)
}

type stateFn func(*lexer) stateFn

func lex(input string) (*lexer, chan item) {
	l := &lexer{
		input: input,
		items: make(chan item),
	}
	go l.run()
	return l, l.items
}

func (l *lexer) run() {
	for state := lexText; state != nil; {
		state = state(l)
	}
	close(l.items)
}

func (l *lexer) emit(t itemType) {
	l.lastWasTerminator = t == itemTerminator
	l.items <- item{t, l.input[l.start:l.pos]}
	l.start = l.pos
}

func (l *lexer) next() (rune rune) {
	if l.pos >= len(l.input) {
		l.width = 0
		return eof
	}
	rune, l.width = utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += l.width
	return rune
}

func (l *lexer) ignore() {
	l.start = l.pos
}

func (l *lexer) backup() {
	l.pos -= l.width
}

func lexText(l *lexer) stateFn {
	for {
		r := l.next()
		if r == eof {
			break
		}

		if r == '#' {
			return lexComment
		}

		if r == ' ' || r == '\t' {
			l.ignore()
			continue
		}

		if r == '\n' {
			if l.lastWasTerminator {
				l.ignore()
			} else {
				l.emit(itemTerminator)
			}
		}

		return lexString

	}
	if !l.lastWasTerminator {
		// close the last statement even without a trailing newline
		l.emit(itemTerminator)
	}
	l.emit(itemEOF)
	return nil
}

func lexString(l *lexer) stateFn {
	quoted := false
	defer func() {
		if l.input[l.start:l.pos] != "" {
			if quoted {
				l.start++
				l.pos--
			}
			l.emit(itemString)
			if quoted {
				l.pos++
				l.start = l.pos
			}
		}
	}()
	if l.input[l.pos-1] == '"' {
		quoted = true
	}
	escape := false
	multiline := false

	var r rune
loop:
	for r != eof {
		r = l.next()
		switch r {
		case '\\':
			if quoted {
				escape = !escape
			} else {
				multiline = true
			}
		case '"':
			if quoted && !escape {
				break loop
			}
		case ' ', '\t':
			if !quoted {
				l.backup()
				break loop
			}
		case '\n':
			if quoted || multiline {
				multiline = false
			} else {
				l.backup()
				break loop
			}
		case '#':
			if !quoted {
				l.backup()

				return lexComment
			}
		}
	}

	return lexText
}

func lexComment(l *lexer) stateFn {
	for {
		r := l.next()
		if r == eof || r == '\n' {
			l.backup()
			break
		}
	}
	l.ignore()
	return lexText
}
