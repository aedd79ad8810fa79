package wm

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/mousebind"
	"github.com/BurntSushi/xgbutil/xcursor"
	"github.com/BurntSushi/xgbutil/xinerama"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
	"github.com/charmbracelet/log"

	"github.com/loannaflip/dynamd/internal/config"
	"github.com/loannaflip/dynamd/internal/draw"
	"github.com/loannaflip/dynamd/internal/geom"
	"github.com/loannaflip/dynamd/internal/layout"
)

type atoms struct {
	utf8            xproto.Atom
	wmProtocols     xproto.Atom
	wmDelete        xproto.Atom
	wmState         xproto.Atom
	wmTakeFocus     xproto.Atom
	netActiveWindow xproto.Atom
	netSupported    xproto.Atom
	netWMName       xproto.Atom
	netWMState      xproto.Atom
	netWMCheck      xproto.Atom
	netWMFullscreen xproto.Atom
	netWMWindowType xproto.Atom
	netWMTypeDialog xproto.Atom
	netClientList   xproto.Atom
}

// New connects to the X server, claims substructure redirect on the
// root window and prepares all window manager state. It fails when
// another window manager is running or the rc contains key specs or
// actions that do not parse.
func New(cfg *config.Config, logger *log.Logger) (*WM, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connect to X: %w", err)
	}
	wm := &WM{
		X:          xu,
		conn:       xu.Conn(),
		root:       xu.RootWin(),
		log:        logger,
		cfg:        cfg,
		sw:         int(xu.Screen().WidthInPixels),
		sh:         int(xu.Screen().HeightInPixels),
		bh:         barHeight,
		th:         tabHeight,
		stext:      "dynamd",
		tagmask:    1<<uint(len(cfg.Tags)) - 1,
		enablegaps: cfg.GapsOn,
		running:    true,
	}
	if err := wm.claimWM(); err != nil {
		return nil, err
	}
	keybind.Initialize(xu)
	mousebind.Initialize(xu)
	if err := wm.parseBindings(); err != nil {
		return nil, err
	}
	wm.setup()
	return wm, nil
}

// Run launches autostart commands, adopts windows that already exist
// and services events until quit. It returns after cleanup.
func (wm *WM) Run() error {
	wm.reap()
	wm.execAutostart()
	wm.scan()
	err := wm.loop()
	wm.cleanup()
	return err
}

// claimWM selects substructure redirect on the root window; only one
// client at a time may hold it.
func (wm *WM) claimWM() error {
	err := xproto.ChangeWindowAttributesChecked(wm.conn, wm.root,
		xproto.CwEventMask, []uint32{xproto.EventMaskSubstructureRedirect}).Check()
	if err != nil {
		return errors.New("another window manager is already running")
	}
	return nil
}

func (wm *WM) setup() {
	wm.loadFont()
	wm.updateGeom()
	wm.internAtoms()
	wm.loadCursors()
	wm.loadSchemes()
	wm.updateBars()
	wm.updateStatus()
	wm.createCheckWindow()
	must(ewmh.SupportedSet(wm.X, []string{
		"_NET_SUPPORTED", "_NET_WM_NAME", "_NET_WM_STATE",
		"_NET_SUPPORTING_WM_CHECK", "_NET_WM_STATE_FULLSCREEN",
		"_NET_ACTIVE_WINDOW", "_NET_WM_WINDOW_TYPE",
		"_NET_WM_WINDOW_TYPE_DIALOG", "_NET_CLIENT_LIST",
	}))
	xproto.DeleteProperty(wm.conn, wm.root, wm.atoms.netClientList)

	rootMask := uint32(xproto.EventMaskSubstructureRedirect |
		xproto.EventMaskSubstructureNotify |
		xproto.EventMaskButtonPress |
		xproto.EventMaskPointerMotion |
		xproto.EventMaskEnterWindow |
		xproto.EventMaskLeaveWindow |
		xproto.EventMaskStructureNotify |
		xproto.EventMaskPropertyChange)
	xproto.ChangeWindowAttributes(wm.conn, wm.root,
		xproto.CwEventMask|xproto.CwCursor,
		[]uint32{rootMask, uint32(wm.cursors["normal"])})

	wm.grabKeys()
	wm.focus(nil)
}

func (wm *WM) loadFont() {
	font, err := draw.OpenFont(wm.X, wm.cfg.Font)
	if err != nil {
		wm.log.Warn("cannot open font, falling back to fixed", "font", wm.cfg.Font)
		font, err = draw.OpenFont(wm.X, "fixed")
		must(err)
	}
	wm.font = font
	ascent, descent, err := draw.FontHeight(wm.X, font)
	must(err)
	wm.lrpad = ascent + descent
}

func (wm *WM) internAtoms() {
	atm := func(name string) xproto.Atom {
		a, err := xprop.Atm(wm.X, name)
		must(err)
		return a
	}
	wm.atoms = atoms{
		utf8:            atm("UTF8_STRING"),
		wmProtocols:     atm("WM_PROTOCOLS"),
		wmDelete:        atm("WM_DELETE_WINDOW"),
		wmState:         atm("WM_STATE"),
		wmTakeFocus:     atm("WM_TAKE_FOCUS"),
		netActiveWindow: atm("_NET_ACTIVE_WINDOW"),
		netSupported:    atm("_NET_SUPPORTED"),
		netWMName:       atm("_NET_WM_NAME"),
		netWMState:      atm("_NET_WM_STATE"),
		netWMCheck:      atm("_NET_SUPPORTING_WM_CHECK"),
		netWMFullscreen: atm("_NET_WM_STATE_FULLSCREEN"),
		netWMWindowType: atm("_NET_WM_WINDOW_TYPE"),
		netWMTypeDialog: atm("_NET_WM_WINDOW_TYPE_DIALOG"),
		netClientList:   atm("_NET_CLIENT_LIST"),
	}
}

func (wm *WM) loadCursors() {
	wm.cursors = map[string]xproto.Cursor{}
	for name, shape := range map[string]uint16{
		"normal": xcursor.LeftPtr,
		"resize": xcursor.Sizing,
		"move":   xcursor.Fleur,
	} {
		cu, err := xcursor.CreateCursor(wm.X, shape)
		must(err)
		wm.cursors[name] = cu
	}
}

func (wm *WM) loadSchemes() {
	pixel := func(key string) uint32 {
		v, err := draw.ParseColor(wm.cfg.Colors[key])
		must(err)
		return v
	}
	wm.scheme = schemes{
		norm: colorScheme{fg: pixel("normfg"), bg: pixel("normbg"), border: pixel("normborder")},
		sel:  colorScheme{fg: pixel("selfg"), bg: pixel("selbg"), border: pixel("selborder")},
	}
}

func (wm *WM) createCheckWindow() {
	win, err := xwindow.Generate(wm.X)
	must(err)
	must(win.CreateChecked(wm.root, 0, 0, 1, 1, 0))
	wm.checkwin = win.Id
	must(ewmh.SupportingWmCheckSet(wm.X, wm.root, win.Id))
	must(ewmh.SupportingWmCheckSet(wm.X, win.Id, win.Id))
	must(ewmh.WmNameSet(wm.X, win.Id, "dynamd"))
}

// screens returns the deduplicated Xinerama head geometries, falling
// back to the root window when the extension is unavailable.
func (wm *WM) screens() []geom.Rect {
	heads, err := xinerama.PhysicalHeads(wm.X)
	if len(heads) == 0 || err != nil {
		return []geom.Rect{{X: 0, Y: 0, Width: wm.sw, Height: wm.sh}}
	}
	rects := make([]geom.Rect, 0, len(heads))
	for _, h := range heads {
		rects = append(rects, geom.Rect{X: h.X(), Y: h.Y(), Width: h.Width(), Height: h.Height()})
	}
	return geom.Unique(rects)
}

// scan adopts windows that were mapped before we started, transients
// after everything else so their parents resolve.
func (wm *WM) scan() {
	tree, err := xproto.QueryTree(wm.conn, wm.root).Reply()
	if err != nil {
		should(err)
		return
	}
	var transients []xproto.Window
	for _, w := range tree.Children {
		attrs, err := xproto.GetWindowAttributes(wm.conn, w).Reply()
		if err != nil || attrs.OverrideRedirect {
			continue
		}
		if _, err := icccm.WmTransientForGet(wm.X, w); err == nil {
			transients = append(transients, w)
			continue
		}
		if attrs.MapState == xproto.MapStateViewable || wm.wmState(w) == icccm.StateIconic {
			wm.manage(w)
		}
	}
	for _, w := range transients {
		attrs, err := xproto.GetWindowAttributes(wm.conn, w).Reply()
		if err != nil {
			continue
		}
		if attrs.MapState == xproto.MapStateViewable || wm.wmState(w) == icccm.StateIconic {
			wm.manage(w)
		}
	}
}

func (wm *WM) wmState(w xproto.Window) int {
	state, err := icccm.WmStateGet(wm.X, w)
	if err != nil {
		return -1
	}
	return int(state.State)
}

func (wm *WM) cleanup() {
	wm.view(^uint32(0))
	wm.selmon.lt[wm.selmon.sellt] = layout.Floating
	for _, m := range wm.mons {
		for len(m.stack) > 0 {
			wm.unmanage(m.stack[0], false)
		}
	}
	xproto.UngrabKey(wm.conn, xproto.Keycode(xproto.GrabAny), wm.root, xproto.ModMaskAny)
	for len(wm.mons) > 0 {
		wm.cleanupMon(wm.mons[0])
	}
	xproto.DestroyWindow(wm.conn, wm.checkwin)
	xproto.SetInputFocus(wm.conn, xproto.InputFocusPointerRoot,
		xproto.Window(xproto.InputFocusPointerRoot), xproto.TimeCurrentTime)
	xproto.DeleteProperty(wm.conn, wm.root, wm.atoms.netActiveWindow)
	wm.killAutostart()
	wm.conn.Close()
}

// spawn starts argv in its own session so children survive us and never
// end up in our process group.
func (wm *WM) spawn(argv []string) {
	if len(argv) == 0 {
		return
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		wm.log.Error("spawn", "cmd", argv[0], "err", err)
		return
	}
	should(cmd.Process.Release())
}

func (wm *WM) execAutostart() {
	for _, argv := range wm.cfg.Autostart {
		if len(argv) == 0 {
			continue
		}
		cmd := exec.Command(argv[0], argv[1:]...)
		cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
		if err := cmd.Start(); err != nil {
			wm.log.Error("autostart", "cmd", argv[0], "err", err)
			continue
		}
		wm.pidmu.Lock()
		wm.autostartPids = append(wm.autostartPids, cmd.Process.Pid)
		wm.pidmu.Unlock()
		should(cmd.Process.Release())
	}
}

// reap drains SIGCHLD so spawned children never linger as zombies.
// Reaped autostart pids are forgotten.
func (wm *WM) reap() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGCHLD)
	go func() {
		for range ch {
			for {
				pid, err := syscall.Wait4(-1, nil, syscall.WNOHANG, nil)
				if pid <= 0 || err != nil {
					break
				}
				wm.forgetAutostartPid(pid)
			}
		}
	}()
}

func (wm *WM) forgetAutostartPid(pid int) {
	wm.pidmu.Lock()
	defer wm.pidmu.Unlock()
	for i, p := range wm.autostartPids {
		if p == pid {
			wm.autostartPids[i] = 0
		}
	}
}

func (wm *WM) killAutostart() {
	wm.pidmu.Lock()
	defer wm.pidmu.Unlock()
	for _, pid := range wm.autostartPids {
		if pid > 0 {
			should(syscall.Kill(pid, syscall.SIGTERM))
		}
	}
}

// parseBindings compiles the rc's key and mouse bindings. Key grabs are
// issued later by grabKeys; mouse bindings apply per client window.
func (wm *WM) parseBindings() error {
	for spec, action := range wm.cfg.Binds {
		act, err := wm.parseAction(action)
		if err != nil {
			return fmt.Errorf("bind %s: %w", spec.ToXGB(), err)
		}
		wm.keyActs = append(wm.keyActs, keyBinding{spec: spec.ToXGB(), act: act})
	}
	for spec, action := range wm.cfg.MouseBinds {
		act, err := wm.parseAction(action)
		if err != nil {
			return fmt.Errorf("mousebind %s: %w", spec.ToXGB(), err)
		}
		mods, button, err := mousebind.ParseString(wm.X, spec.ToXGB())
		if err != nil {
			return fmt.Errorf("mousebind %s: %w", spec.ToXGB(), err)
		}
		wm.buttons = append(wm.buttons, buttonBinding{mods: mods, button: button, act: act})
	}
	return nil
}
