package rod

import (
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
)

// DefaultRecycleAfter is the number of rendered listing pages after which
// the browser process is replaced.
const DefaultRecycleAfter = 75

// launchFlags keep background tabs rendering at full speed so that
// concurrent category crawls do not starve each other.
var launchFlags = []flags.Flag{
	"disable-background-timer-throttling",
	"disable-backgrounding-occluded-windows",
	"disable-renderer-backgrounding",
	"disable-dev-shm-usage",
	"disable-hang-monitor",
}

// generation is one launched Chrome process and the pages open on it.
type generation struct {
	browser  *rod.Browser
	pid      int
	shutdown func() error

	open    int
	retired bool
	done    bool
}

// stop shuts the process down once. Must be called with session.mu held.
func (g *generation) stop() error {
	if g.done {
		return nil
	}
	g.done = true
	return g.shutdown()
}

// session hands out the current browser generation. Chrome memory grows
// with every rendered page, so after recycleAfter pages a fresh generation
// is launched for new pages. The retired one keeps serving the pages still
// open on it and is shut down when the last of them is released. A failed
// relaunch keeps the current generation.
type session struct {
	mu           sync.Mutex
	current      *generation
	retired      map[*generation]struct{}
	rendered     int
	recycleAfter int
	closed       bool
	launch       func() (*generation, error)
}

func newSession(recycleAfter int, launch func() (*generation, error)) (*session, error) {
	if recycleAfter <= 0 {
		recycleAfter = DefaultRecycleAfter
	}
	g, err := launch()
	if err != nil {
		return nil, err
	}
	return &session{
		current:      g,
		retired:      make(map[*generation]struct{}),
		recycleAfter: recycleAfter,
		launch:       launch,
	}, nil
}

// acquire returns the generation to open the next page on. Every
// successful acquire must be paired with a release.
func (s *session) acquire() (*generation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, fmt.Errorf("browser session closed")
	}
	if s.rendered >= s.recycleAfter {
		if g, err := s.launch(); err == nil {
			old := s.current
			s.current = g
			s.rendered = 0
			old.retired = true
			if old.open == 0 {
				_ = old.stop()
			} else {
				s.retired[old] = struct{}{}
			}
		}
	}
	s.current.open++
	return s.current, nil
}

// release records that a page opened on g has been closed.
func (s *session) release(g *generation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g.open--
	if g == s.current {
		s.rendered++
		return
	}
	if g.retired && g.open == 0 {
		delete(s.retired, g)
		_ = g.stop()
	}
}

func (s *session) pid() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0
	}
	return s.current.pid
}

// close shuts down every generation, including retired ones with pages
// still open.
func (s *session) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	err := s.current.stop()
	for g := range s.retired {
		_ = g.stop()
	}
	s.retired = nil
	return err
}

// launchChrome starts a headless Chrome process.
func launchChrome() (*generation, error) {
	l := launcher.New().Leakless(true).Headless(true)
	for _, flag := range launchFlags {
		l = l.Set(flag)
	}
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}
	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}
	return &generation{
		browser: b,
		pid:     l.PID(),
		shutdown: func() error {
			err := b.Close()
			l.Kill()
			return err
		},
	}, nil
}
