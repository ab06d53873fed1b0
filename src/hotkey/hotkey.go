// Package hotkey fires a callback when a global key combination is pressed.
package hotkey

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	gohook "github.com/robotn/gohook"

	"quiz-ocr-llm/src/logutil"
)

var hkLog = logutil.Module("hotkey")

var ErrNoKeys = errors.New("hotkey has no usable keys")

// Combo tracks the held state of every key of one combination.
type Combo struct {
	Spec string

	mu    sync.Mutex
	keys  []comboKey
	fired bool
}

type comboKey struct {
	name     string
	rawcodes []uint16
	held     bool
}

// ParseCombo builds a Combo from "Ctrl+Alt+Q" style text.
func ParseCombo(spec string) (*Combo, error) {
	c := &Combo{Spec: spec}
	for _, name := range parseHotkey(spec) {
		codes := keyNameToRawcodes(name)
		if len(codes) == 0 {
			return nil, fmt.Errorf("hotkey %q: unknown key %q", spec, name)
		}
		c.keys = append(c.keys, comboKey{name: name, rawcodes: codes})
	}
	if len(c.keys) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoKeys, spec)
	}
	return c, nil
}

// Press records a key-down and reports whether it completed the combo.
// Auto-repeated key-downs while the combo stays held do not fire again;
// releasing any key of the combo re-arms it.
func (c *Combo) Press(rawcode uint16) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mark(rawcode, true)
	if c.fired {
		return false
	}
	for i := range c.keys {
		if !c.keys[i].held {
			return false
		}
	}
	c.fired = true
	return true
}

// Release records a key-up.
func (c *Combo) Release(rawcode uint16) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mark(rawcode, false) {
		c.fired = false
	}
}

// mark reports whether rawcode belongs to the combo.
func (c *Combo) mark(rawcode uint16, held bool) bool {
	matched := false
	for i := range c.keys {
		for _, code := range c.keys[i].rawcodes {
			if code == rawcode {
				c.keys[i].held = held
				matched = true
				break
			}
		}
	}
	return matched
}

// Listen hooks the keyboard and calls fire on every completed press of the
// combo until ctx is done. fire runs on the hook goroutine and must not block.
func Listen(ctx context.Context, spec string, fire func()) error {
	combo, err := ParseCombo(spec)
	if err != nil {
		return err
	}

	evChan := gohook.Start()
	if evChan == nil {
		return errors.New("hotkey: keyboard hook failed to start")
	}
	hkLog.Info().Str("hotkey", spec).Msg("hotkey listener started")

	go func() {
		defer func() {
			if r := recover(); r != nil {
				hkLog.Error().Interface("panic", r).Msg("hotkey goroutine panicked")
			}
		}()
		<-ctx.Done()
		gohook.End()
	}()

	go func() {
		for ev := range evChan {
			switch ev.Kind {
			case gohook.KeyDown:
				if combo.Press(ev.Rawcode) {
					hkLog.Debug().Str("hotkey", spec).Msg("hotkey pressed")
					if fire != nil {
						fire()
					}
				}
			case gohook.KeyUp:
				combo.Release(ev.Rawcode)
			}
		}
		hkLog.Debug().Msg("hook event channel closed")
	}()
	return nil
}

// parseHotkey converts a hotkey string like "Ctrl+Alt+q" to normalized key names
func parseHotkey(spec string) []string {
	var keys []string
	for _, part := range strings.Split(strings.ToLower(spec), "+") {
		part = strings.TrimSpace(part)
		switch part {
		case "":
			continue
		case "control":
			part = "ctrl"
		case "win", "super", "meta":
			part = "cmd"
		}
		keys = append(keys, part)
	}
	return keys
}

// namedKeys holds Windows virtual key codes for non-alphanumeric keys.
// Modifiers list both the left and right variants.
var namedKeys = map[string][]uint16{
	"ctrl":  {162, 163}, // VK_LCONTROL, VK_RCONTROL
	"alt":   {164, 165}, // VK_LMENU, VK_RMENU
	"shift": {160, 161}, // VK_LSHIFT, VK_RSHIFT
	"cmd":   {91, 92},   // VK_LWIN, VK_RWIN

	"space":     {32},
	"enter":     {13},
	"return":    {13},
	"esc":       {27},
	"escape":    {27},
	"tab":       {9},
	"backspace": {8},
	"delete":    {46},
	"del":       {46},
	"insert":    {45},
	"ins":       {45},
	"home":      {36},
	"end":       {35},
	"pageup":    {33},
	"pgup":      {33},
	"pagedown":  {34},
	"pgdn":      {34},
	"left":      {37},
	"up":        {38},
	"right":     {39},
	"down":      {40},
}

// keyNameToRawcodes maps a key name to its virtual key code rawcodes.
func keyNameToRawcodes(name string) []uint16 {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "win" || name == "super" {
		name = "cmd"
	}
	if codes, ok := namedKeys[name]; ok {
		return codes
	}
	if len(name) == 1 {
		switch ch := name[0]; {
		case ch >= 'a' && ch <= 'z':
			return []uint16{uint16('A' + ch - 'a')}
		case ch >= '0' && ch <= '9':
			return []uint16{uint16(ch)}
		}
	}
	// F1-F24 are VK 112-135.
	var n int
	if _, err := fmt.Sscanf(name, "f%d", &n); err == nil && n >= 1 && n <= 24 && name == fmt.Sprintf("f%d", n) {
		return []uint16{uint16(111 + n)}
	}
	hkLog.Warn().Str("key", name).Msg("unknown key name, cannot map to rawcode")
	return nil
}
