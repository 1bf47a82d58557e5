//go:build windows

package hotkeys

import (
	"fmt"
	"log/slog"
	"runtime"
	"syscall"
	"unsafe"
)

var (
	user32                = syscall.NewLazyDLL("user32.dll")
	procRegisterHotKey    = user32.NewProc("RegisterHotKey")
	procUnregisterHotKey  = user32.NewProc("UnregisterHotKey")
	procGetMessageW       = user32.NewProc("GetMessageW")
	procPostThreadMessage = user32.NewProc("PostThreadMessageW")
)

var kernel32 = syscall.NewLazyDLL("kernel32.dll")
var procGetCurrentThreadId = kernel32.NewProc("GetCurrentThreadId")

const (
	wmHotkey = 0x0312
	wmQuit   = 0x0012
)

// virtual-key codes for the named keys a binding may use. Single letters
// and digits map directly to their ASCII uppercase code.
var namedKeys = map[string]uint32{
	"equal":  0xBB, // VK_OEM_PLUS
	"plus":   0xBB,
	"minus":  0xBD, // VK_OEM_MINUS
	"space":  0x20,
	"tab":    0x09,
	"escape": 0x1B,
	"up":     0x26,
	"down":   0x28,
	"left":   0x25,
	"right":  0x27,
	"f1":     0x70, "f2": 0x71, "f3": 0x72, "f4": 0x73,
	"f5": 0x74, "f6": 0x75, "f7": 0x76, "f8": 0x77,
	"f9": 0x78, "f10": 0x79, "f11": 0x7A, "f12": 0x7B,
}

func virtualKey(key string) (uint32, error) {
	if vk, ok := namedKeys[key]; ok {
		return vk, nil
	}
	if len(key) == 1 {
		c := key[0]
		if c >= 'a' && c <= 'z' {
			return uint32(c - 'a' + 'A'), nil
		}
		if c >= '0' && c <= '9' {
			return uint32(c), nil
		}
	}
	return 0, fmt.Errorf("unsupported hotkey key %q", key)
}

type msg struct {
	HWND   uintptr
	UINT   uintptr
	WPARAM uintptr
	LPARAM uintptr
	DWORD  uintptr
	POINT  struct{ X, Y int32 }
}

// Source owns the registered global hotkeys and the message loop that
// receives them. RegisterHotKey binds hotkeys to the registering thread, so
// registration and the GetMessage pump share one locked OS thread.
type Source struct {
	threadID uintptr
	done     chan struct{}
}

// StartSource registers the bindings and begins dispatching their actions
// to the handler on a dedicated thread. The returned Source stops the loop.
func StartSource(bindings map[Action]Binding, handler *Handler, logger *slog.Logger) (*Source, error) {
	if logger == nil {
		logger = slog.Default()
	}

	type reg struct {
		action Action
		mods   uint16
		vk     uint32
	}
	regs := make([]reg, 0, len(bindings))
	for action, b := range bindings {
		vk, err := virtualKey(b.Key)
		if err != nil {
			return nil, fmt.Errorf("hotkey %s: %w", action, err)
		}
		regs = append(regs, reg{action: action, mods: b.Mods, vk: vk})
	}

	s := &Source{done: make(chan struct{})}
	ready := make(chan error, 1)

	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer close(s.done)

		tid, _, _ := procGetCurrentThreadId.Call()
		s.threadID = tid

		// Hotkey ids are the slice index + 1; id 0 is reserved.
		actions := make(map[uintptr]Action, len(regs))
		registered := 0
		var regErr error
		for i, r := range regs {
			id := uintptr(i + 1)
			ok, _, callErr := procRegisterHotKey.Call(0, id, uintptr(r.mods), uintptr(r.vk))
			if ok == 0 {
				regErr = fmt.Errorf("failed to register hotkey %s: %v", r.action, callErr)
				break
			}
			actions[id] = r.action
			registered++
		}
		if regErr != nil {
			for id := uintptr(1); id <= uintptr(registered); id++ {
				procUnregisterHotKey.Call(0, id)
			}
			ready <- regErr
			return
		}
		ready <- nil

		defer func() {
			for id := uintptr(1); id <= uintptr(registered); id++ {
				procUnregisterHotKey.Call(0, id)
			}
		}()

		var m msg
		for {
			ret, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
			if ret == 0 || int32(ret) == -1 {
				return
			}
			if m.UINT != wmHotkey {
				continue
			}
			action, ok := actions[m.WPARAM]
			if !ok {
				continue
			}
			logger.Debug("hotkey pressed", "action", action.String())
			handler.Dispatch(action)
		}
	}()

	if err := <-ready; err != nil {
		return nil, err
	}
	return s, nil
}

// Stop posts WM_QUIT to the hotkey thread and waits for it to exit.
func (s *Source) Stop() {
	if s.threadID != 0 {
		procPostThreadMessage.Call(s.threadID, wmQuit, 0, 0)
	}
	<-s.done
}
