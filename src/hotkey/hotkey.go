package hotkey

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	gohook "github.com/robotn/gohook"
)

// Listen registers a global key combination such as "Ctrl+Alt+V" and calls
// callback each time all of its keys are held down together. It returns an
// error when no key of the combination can be mapped. The hook is released
// when ctx is done.
func Listen(ctx context.Context, combo string, callback func()) error {
	tracker, err := newComboTracker(combo)
	if err != nil {
		return err
	}
	log.Printf("Hotkey listener configured for: %s", combo)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("PANIC in hotkey goroutine: %v", r)
			}
		}()

		evChan := gohook.Start()
		if evChan == nil {
			log.Printf("ERROR: gohook.Start() returned nil channel")
			return
		}
		defer gohook.End()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-evChan:
				if !ok {
					log.Printf("Hotkey event channel closed")
					return
				}
				switch ev.Kind {
				case gohook.KeyDown:
					if tracker.press(ev.Rawcode) {
						log.Printf("Hotkey %s activated", combo)
						if callback != nil {
							callback()
						}
					}
				case gohook.KeyUp:
					tracker.release(ev.Rawcode)
				}
			}
		}
	}()
	return nil
}

// comboTracker remembers which keys of a combination are currently held.
type comboTracker struct {
	mu   sync.Mutex
	keys []trackedKey
}

type trackedKey struct {
	name     string
	rawcodes []uint16
	pressed  bool
}

func newComboTracker(combo string) (*comboTracker, error) {
	t := &comboTracker{}
	for _, name := range parseHotkey(combo) {
		codes := keyNameToRawcodes(name)
		if len(codes) == 0 {
			log.Printf("WARNING: Unknown key name '%s' in hotkey %q", name, combo)
			continue
		}
		t.keys = append(t.keys, trackedKey{name: name, rawcodes: codes})
	}
	if len(t.keys) == 0 {
		return nil, fmt.Errorf("no valid keys in hotkey configuration %q", combo)
	}
	return t, nil
}

// press marks the key down and reports whether the whole combination is
// now held. A completed combination resets, so holding it fires once.
func (t *comboTracker) press(code uint16) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.keys {
		if t.keys[i].matches(code) {
			t.keys[i].pressed = true
		}
	}
	for _, k := range t.keys {
		if !k.pressed {
			return false
		}
	}
	for i := range t.keys {
		t.keys[i].pressed = false
	}
	return true
}

func (t *comboTracker) release(code uint16) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.keys {
		if t.keys[i].matches(code) {
			t.keys[i].pressed = false
		}
	}
}

func (k trackedKey) matches(code uint16) bool {
	for _, c := range k.rawcodes {
		if c == code {
			return true
		}
	}
	return false
}

// parseHotkey converts a hotkey string like "Ctrl+Alt+v" to normalized key names
func parseHotkey(hotkeyConfig string) []string {
	var keys []string
	for _, part := range strings.Split(strings.ToLower(hotkeyConfig), "+") {
		part = strings.TrimSpace(part)
		switch part {
		case "":
			continue
		case "control":
			part = "ctrl"
		case "win", "super":
			part = "cmd"
		}
		keys = append(keys, part)
	}
	return keys
}

// namedKeys maps non-alphanumeric key names to Windows virtual key codes.
// Modifiers list both left and right variants.
var namedKeys = map[string][]uint16{
	"ctrl":      {162, 163}, // VK_LCONTROL, VK_RCONTROL
	"alt":       {164, 165}, // VK_LMENU, VK_RMENU
	"shift":     {160, 161}, // VK_LSHIFT, VK_RSHIFT
	"cmd":       {91, 92},   // VK_LWIN, VK_RWIN
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

// keyNameToRawcodes maps a key name to its Windows virtual key code rawcodes.
func keyNameToRawcodes(keyName string) []uint16 {
	keyName = strings.ToLower(strings.TrimSpace(keyName))
	if keyName == "win" || keyName == "super" {
		keyName = "cmd"
	}
	if codes, ok := namedKeys[keyName]; ok {
		return codes
	}

	if len(keyName) == 1 {
		c := keyName[0]
		switch {
		case c >= 'a' && c <= 'z':
			return []uint16{uint16('A') + uint16(c-'a')} // VK_A..VK_Z
		case c >= '0' && c <= '9':
			return []uint16{uint16('0') + uint16(c-'0')} // VK_0..VK_9
		}
	}

	if strings.HasPrefix(keyName, "f") {
		if n, err := strconv.Atoi(keyName[1:]); err == nil && n >= 1 && n <= 24 {
			return []uint16{uint16(111 + n)} // VK_F1 = 112
		}
	}
	return nil
}
