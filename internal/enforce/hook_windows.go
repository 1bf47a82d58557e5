//go:build windows

package enforce

import (
	"fmt"
	"runtime"
	"syscall"
	"unsafe"

	"github.com/1broseidon/pintop/internal/platform"
)

var (
	user32                = syscall.NewLazyDLL("user32.dll")
	procSetWinEventHook   = user32.NewProc("SetWinEventHook")
	procUnhookWinEvent    = user32.NewProc("UnhookWinEvent")
	procGetMessage        = user32.NewProc("GetMessageW")
	procPostThreadMessage = user32.NewProc("PostThreadMessageW")

	kernel32               = syscall.NewLazyDLL("kernel32.dll")
	procGetCurrentThreadId = kernel32.NewProc("GetCurrentThreadId")
)

const (
	eventSystemForeground  = 0x0003
	eventSystemMoveSizeEnd = 0x000B
	eventSystemMinimizeEnd = 0x0017
	eventObjectDestroy     = 0x8001
	eventObjectShow        = 0x8002
	eventObjectHide        = 0x8003
	eventObjectFocus       = 0x8005

	winEventOutOfContext   = 0x0000
	winEventSkipOwnProcess = 0x0002

	wmQuit = 0x0012
)

// hookEvents are the notifications the engine subscribes to.
var hookEvents = []uint32{
	eventSystemForeground,
	eventSystemMoveSizeEnd,
	eventSystemMinimizeEnd,
	eventObjectDestroy,
	eventObjectShow,
	eventObjectHide,
	eventObjectFocus,
}

type winMsg struct {
	hwnd    uintptr
	message uint32
	wParam  uintptr
	lParam  uintptr
	time    uint32
	pt      struct{ x, y int32 }
}

// Hook owns the native SetWinEventHook registrations and the OS thread that
// pumps their message queue. Callbacks only translate the native event into
// a WinEvent and enqueue it on the engine; all registry work happens on the
// engine's consumer goroutine.
type Hook struct {
	threadID uint32
	done     chan struct{}
}

// StartHook installs the event hooks on a dedicated locked OS thread and
// begins pumping messages.
func StartHook(engine *Engine) (*Hook, error) {
	h := &Hook{done: make(chan struct{})}
	ready := make(chan error, 1)

	cb := syscall.NewCallback(func(hook, event, hwnd, idObject, idChild, thread, eventTime uintptr) uintptr {
		// Window-level events only.
		if int32(idObject) != 0 || hwnd == 0 {
			return 0
		}
		id := platform.WindowID(hwnd)
		switch uint32(event) {
		case eventObjectDestroy:
			engine.Submit(WinEvent{Kind: KindDestroy, Window: id})
		case eventSystemMoveSizeEnd:
			engine.Submit(WinEvent{Kind: KindMoveSizeEnd, Window: id})
		case eventSystemForeground, eventObjectFocus:
			engine.Submit(WinEvent{Kind: KindForeground, Window: id})
		case eventSystemMinimizeEnd, eventObjectShow, eventObjectHide:
			engine.Submit(WinEvent{Kind: KindShowHide, Window: id})
		}
		return 0
	})

	go func() {
		// SetWinEventHook delivers to the installing thread's message
		// queue; keep that thread fixed for the hook's lifetime.
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer close(h.done)

		tid, _, _ := procGetCurrentThreadId.Call()
		h.threadID = uint32(tid)

		var handles []uintptr
		for _, ev := range hookEvents {
			hh, _, _ := procSetWinEventHook.Call(
				uintptr(ev), uintptr(ev),
				0, cb, 0, 0,
				winEventOutOfContext|winEventSkipOwnProcess)
			if hh != 0 {
				handles = append(handles, hh)
			}
		}
		if len(handles) == 0 {
			ready <- fmt.Errorf("SetWinEventHook failed for all %d events", len(hookEvents))
			return
		}
		ready <- nil

		var m winMsg
		for {
			r, _, _ := procGetMessage.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
			// 0 = WM_QUIT, -1 = error; either ends the pump.
			if r == 0 || int32(r) == -1 {
				break
			}
		}

		for _, hh := range handles {
			procUnhookWinEvent.Call(hh)
		}
	}()

	if err := <-ready; err != nil {
		return nil, err
	}
	return h, nil
}

// Stop unhooks and shuts down the pump thread.
func (h *Hook) Stop() {
	procPostThreadMessage.Call(uintptr(h.threadID), wmQuit, 0, 0)
	<-h.done
}
