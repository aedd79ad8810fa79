package wm

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/keybind"
)

const buttonMask = xproto.EventMaskButtonPress | xproto.EventMaskButtonRelease

// grabKeys re-resolves every binding's keycode and grabs it on the
// root window under each lock modifier combination. Bindings whose key
// vanished from the current keyboard mapping are skipped with a warning
// and come back on the next mapping change.
func (wm *WM) grabKeys() {
	wm.updateNumlockMask()
	modifiers := [...]uint16{0, xproto.ModMaskLock, wm.numlockmask,
		wm.numlockmask | xproto.ModMaskLock}
	xproto.UngrabKey(wm.conn, xproto.GrabAny, wm.root, xproto.ModMaskAny)
	wm.keys = wm.keys[:0]
	for _, b := range wm.keyActs {
		mods, codes, err := keybind.ParseString(wm.X, b.spec)
		if err != nil || len(codes) == 0 {
			wm.log.Warn("key does not resolve", "key", b.spec)
			continue
		}
		wm.keys = append(wm.keys, keyBinding{
			spec: b.spec, mods: mods, code: codes[0], act: b.act,
		})
		for _, mod := range modifiers {
			xproto.GrabKey(wm.conn, true, wm.root, mods|mod, codes[0],
				xproto.GrabModeAsync, xproto.GrabModeAsync)
		}
	}
}

// grabButtons installs the button grabs on a client window: every bound
// chord and, on unfocused clients, a blanket synchronous grab so the
// click that focuses them can be replayed to the application.
func (wm *WM) grabButtons(c *Client, focused bool) {
	wm.updateNumlockMask()
	modifiers := [...]uint16{0, xproto.ModMaskLock, wm.numlockmask,
		wm.numlockmask | xproto.ModMaskLock}
	xproto.UngrabButton(wm.conn, xproto.ButtonIndexAny, c.surface(), xproto.ModMaskAny)
	if !focused {
		xproto.GrabButton(wm.conn, false, c.surface(), buttonMask,
			xproto.GrabModeSync, xproto.GrabModeSync,
			xproto.WindowNone, xproto.CursorNone,
			xproto.ButtonIndexAny, xproto.ModMaskAny)
	}
	for _, b := range wm.buttons {
		for _, mod := range modifiers {
			xproto.GrabButton(wm.conn, false, c.surface(), buttonMask,
				xproto.GrabModeAsync, xproto.GrabModeSync,
				xproto.WindowNone, xproto.CursorNone,
				byte(b.button), b.mods|mod)
		}
	}
}

// updateNumlockMask finds the modifier bit Num_Lock currently occupies.
func (wm *WM) updateNumlockMask() {
	wm.numlockmask = 0
	nlCodes := keybind.StrToKeycodes(wm.X, "Num_Lock")
	if len(nlCodes) == 0 {
		return
	}
	reply, err := xproto.GetModifierMapping(wm.conn).Reply()
	if err != nil {
		should(err)
		return
	}
	per := int(reply.KeycodesPerModifier)
	for i := 0; i < 8; i++ {
		for j := 0; j < per; j++ {
			code := reply.Keycodes[i*per+j]
			if code == 0 {
				continue
			}
			for _, nl := range nlCodes {
				if code == nl {
					wm.numlockmask = 1 << uint(i)
				}
			}
		}
	}
}

// cleanMask strips the lock modifiers and anything beyond the plain
// modifier bits from an event state.
func (wm *WM) cleanMask(m uint16) uint16 {
	return m &^ (wm.numlockmask | xproto.ModMaskLock) &
		(xproto.ModMaskShift | xproto.ModMaskControl | xproto.ModMask1 |
			xproto.ModMask2 | xproto.ModMask3 | xproto.ModMask4 | xproto.ModMask5)
}
