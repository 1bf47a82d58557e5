package platform

import "sync"

// simWindow is the simulator's backing record for one window.
type simWindow struct {
	title   string
	process string
	topmost bool
	alpha   uint8
}

// Simulator is an in-memory WindowAPI. It backs the daemon's --sim mode on
// platforms without a native backend and serves as the test double for every
// package that consumes WindowAPI.
type Simulator struct {
	mu         sync.Mutex
	nextID     WindowID
	windows    map[WindowID]*simWindow
	order      []WindowID
	foreground WindowID
}

// NewSimulator returns an empty simulated window system.
func NewSimulator() *Simulator {
	return &Simulator{
		nextID:  1,
		windows: make(map[WindowID]*simWindow),
	}
}

// AddWindow creates a simulated top-level window and returns its id.
// The process name is normalized the same way the native backend does.
func (s *Simulator) AddWindow(title, process string) WindowID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.windows[id] = &simWindow{
		title:   title,
		process: NormalizeProcessName(process),
		alpha:   255,
	}
	s.order = append(s.order, id)
	s.foreground = id
	return id
}

// Destroy removes a simulated window; subsequent calls on its id report
// ErrInvalidHandle, mirroring a destroyed native handle.
func (s *Simulator) Destroy(id WindowID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.windows, id)
	for i, wid := range s.order {
		if wid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.foreground == id {
		s.foreground = 0
	}
}

// SetForeground marks a window as having input focus.
func (s *Simulator) SetForeground(id WindowID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.windows[id]; ok {
		s.foreground = id
	}
}

// StripTopmost silently clears the topmost style, the way a compositor does
// after minimize/restore cycles.
func (s *Simulator) StripTopmost(id WindowID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if win, ok := s.windows[id]; ok {
		win.topmost = false
	}
}

// SetTitle changes a window's title, as a document switch would.
func (s *Simulator) SetTitle(id WindowID, title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if win, ok := s.windows[id]; ok {
		win.title = title
	}
}

func (s *Simulator) Exists(id WindowID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.windows[id]
	return ok
}

func (s *Simulator) Title(id WindowID) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	win, ok := s.windows[id]
	if !ok {
		return "", ErrInvalidHandle
	}
	return win.title, nil
}

func (s *Simulator) ProcessName(id WindowID) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	win, ok := s.windows[id]
	if !ok {
		return "", ErrInvalidHandle
	}
	return win.process, nil
}

func (s *Simulator) IsTopmost(id WindowID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	win, ok := s.windows[id]
	if !ok {
		return false, ErrInvalidHandle
	}
	return win.topmost, nil
}

func (s *Simulator) SetTopmost(id WindowID, on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	win, ok := s.windows[id]
	if !ok {
		return ErrInvalidHandle
	}
	win.topmost = on
	return nil
}

func (s *Simulator) Alpha(id WindowID) (uint8, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	win, ok := s.windows[id]
	if !ok {
		return 0, ErrInvalidHandle
	}
	return win.alpha, nil
}

func (s *Simulator) SetAlpha(id WindowID, alpha uint8) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	win, ok := s.windows[id]
	if !ok {
		return ErrInvalidHandle
	}
	win.alpha = alpha
	return nil
}

func (s *Simulator) Foreground() (WindowID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.foreground == 0 {
		return 0, ErrInvalidHandle
	}
	return s.foreground, nil
}

func (s *Simulator) Raise(id WindowID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.windows[id]; !ok {
		return ErrInvalidHandle
	}
	s.foreground = id
	return nil
}

func (s *Simulator) List() ([]WindowInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wins := make([]WindowInfo, 0, len(s.order))
	for _, id := range s.order {
		win := s.windows[id]
		wins = append(wins, WindowInfo{ID: id, Title: win.title, Process: win.process})
	}
	return wins, nil
}
