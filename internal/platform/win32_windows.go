//go:build windows

package platform

import (
	"syscall"
	"unsafe"

	ps "github.com/mitchellh/go-ps"
)

var (
	user32 = syscall.NewLazyDLL("user32.dll")

	procEnumWindows                = user32.NewProc("EnumWindows")
	procGetForegroundWindow        = user32.NewProc("GetForegroundWindow")
	procSetForegroundWindow        = user32.NewProc("SetForegroundWindow")
	procGetWindowText              = user32.NewProc("GetWindowTextW")
	procGetWindowTextLength        = user32.NewProc("GetWindowTextLengthW")
	procGetWindowThreadProcessId   = user32.NewProc("GetWindowThreadProcessId")
	procIsWindow                   = user32.NewProc("IsWindow")
	procIsWindowVisible            = user32.NewProc("IsWindowVisible")
	procSetWindowPos               = user32.NewProc("SetWindowPos")
	procGetWindowLong              = user32.NewProc("GetWindowLongW")
	procSetWindowLong              = user32.NewProc("SetWindowLongW")
	procGetLayeredWindowAttributes = user32.NewProc("GetLayeredWindowAttributes")
	procSetLayeredWindowAttributes = user32.NewProc("SetLayeredWindowAttributes")
)

const (
	gwlExStyle = 0xFFFFFFEC // GWL_EXSTYLE (-20)

	wsExTopmost    = 0x00000008
	wsExLayered    = 0x00080000
	wsExToolWindow = 0x00000080

	swpNoSize     = 0x0001
	swpNoMove     = 0x0002
	swpNoActivate = 0x0010

	lwaAlpha = 0x2
)

var (
	hwndTopmost   = ^uintptr(0) // HWND_TOPMOST (-1)
	hwndNoTopmost = ^uintptr(1) // HWND_NOTOPMOST (-2)
)

// win32API implements WindowAPI against user32.dll.
type win32API struct{}

// New returns the native window backend.
func New() (WindowAPI, error) {
	return &win32API{}, nil
}

func (w *win32API) Exists(id WindowID) bool {
	r, _, _ := procIsWindow.Call(uintptr(id))
	return r != 0
}

func (w *win32API) Title(id WindowID) (string, error) {
	if !w.Exists(id) {
		return "", ErrInvalidHandle
	}
	tlen, _, _ := procGetWindowTextLength.Call(uintptr(id))
	if tlen == 0 {
		return "", nil
	}
	buf := make([]uint16, tlen+1)
	procGetWindowText.Call(uintptr(id), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return syscall.UTF16ToString(buf), nil
}

func (w *win32API) ProcessName(id WindowID) (string, error) {
	if !w.Exists(id) {
		return "", ErrInvalidHandle
	}
	var pid uint32
	procGetWindowThreadProcessId.Call(uintptr(id), uintptr(unsafe.Pointer(&pid)))
	if pid == 0 {
		return "", &OSCallError{Call: "GetWindowThreadProcessId", Err: syscall.EINVAL}
	}
	proc, err := ps.FindProcess(int(pid))
	if err != nil {
		return "", &OSCallError{Call: "FindProcess", Err: err}
	}
	if proc == nil {
		return "", ErrInvalidHandle
	}
	return NormalizeProcessName(proc.Executable()), nil
}

func (w *win32API) IsTopmost(id WindowID) (bool, error) {
	if !w.Exists(id) {
		return false, ErrInvalidHandle
	}
	style, _, _ := procGetWindowLong.Call(uintptr(id), gwlExStyle)
	return style&wsExTopmost != 0, nil
}

func (w *win32API) SetTopmost(id WindowID, on bool) error {
	if !w.Exists(id) {
		return ErrInvalidHandle
	}
	insertAfter := hwndTopmost
	if !on {
		insertAfter = hwndNoTopmost
	}
	r, _, errno := procSetWindowPos.Call(
		uintptr(id), insertAfter, 0, 0, 0, 0, swpNoSize|swpNoMove|swpNoActivate)
	if r == 0 {
		if !w.Exists(id) {
			return ErrInvalidHandle
		}
		return &OSCallError{Call: "SetWindowPos", Err: errno}
	}
	return nil
}

func (w *win32API) Alpha(id WindowID) (uint8, error) {
	if !w.Exists(id) {
		return 0, ErrInvalidHandle
	}
	style, _, _ := procGetWindowLong.Call(uintptr(id), gwlExStyle)
	if style&wsExLayered == 0 {
		// Not layered: fully opaque.
		return 255, nil
	}
	var (
		color uint32
		alpha uint8
		flags uint32
	)
	r, _, _ := procGetLayeredWindowAttributes.Call(
		uintptr(id),
		uintptr(unsafe.Pointer(&color)),
		uintptr(unsafe.Pointer(&alpha)),
		uintptr(unsafe.Pointer(&flags)))
	if r == 0 || flags&lwaAlpha == 0 {
		return 255, nil
	}
	return alpha, nil
}

func (w *win32API) SetAlpha(id WindowID, alpha uint8) error {
	if !w.Exists(id) {
		return ErrInvalidHandle
	}
	style, _, _ := procGetWindowLong.Call(uintptr(id), gwlExStyle)
	if style&wsExLayered == 0 {
		procSetWindowLong.Call(uintptr(id), gwlExStyle, style|wsExLayered)
	}
	r, _, errno := procSetLayeredWindowAttributes.Call(uintptr(id), 0, uintptr(alpha), lwaAlpha)
	if r == 0 {
		if !w.Exists(id) {
			return ErrInvalidHandle
		}
		return &OSCallError{Call: "SetLayeredWindowAttributes", Err: errno}
	}
	if alpha == 255 {
		// Fully opaque again: drop the layered style so the compositor
		// stops treating the window specially.
		procSetWindowLong.Call(uintptr(id), gwlExStyle, style&^uintptr(wsExLayered))
	}
	return nil
}

func (w *win32API) Foreground() (WindowID, error) {
	hwnd, _, _ := procGetForegroundWindow.Call()
	if hwnd == 0 {
		return 0, ErrInvalidHandle
	}
	return WindowID(hwnd), nil
}

func (w *win32API) Raise(id WindowID) error {
	if !w.Exists(id) {
		return ErrInvalidHandle
	}
	r, _, errno := procSetForegroundWindow.Call(uintptr(id))
	if r == 0 {
		return &OSCallError{Call: "SetForegroundWindow", Err: errno}
	}
	return nil
}

func (w *win32API) List() ([]WindowInfo, error) {
	var wins []WindowInfo
	cb := syscall.NewCallback(func(hwnd uintptr, lparam uintptr) uintptr {
		if r, _, _ := procIsWindowVisible.Call(hwnd); r == 0 {
			return 1
		}
		style, _, _ := procGetWindowLong.Call(hwnd, gwlExStyle)
		if style&wsExToolWindow != 0 {
			return 1
		}
		id := WindowID(hwnd)
		title, err := w.Title(id)
		if err != nil || title == "" {
			return 1
		}
		process, err := w.ProcessName(id)
		if err != nil {
			return 1
		}
		wins = append(wins, WindowInfo{ID: id, Title: title, Process: process})
		return 1
	})
	if r, _, errno := procEnumWindows.Call(cb, 0); r == 0 {
		return nil, &OSCallError{Call: "EnumWindows", Err: errno}
	}
	return wins, nil
}
