package browser

import (
	"fmt"

	"github.com/farrandale/plscrape/internal/utils"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Session owns the single controlled browser. Navigation is strictly
// sequential over one session: concurrent sessions amplify detection
// risk and the session's state (current page, open modals) is not
// shareable. Only the Navigator may drive it.
type Session struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rod.Page
}

// NewSession launches a browser and connects to it. The caller must
// Close the session on every exit path.
func NewSession(headless bool) (*Session, error) {
	l := launcher.New().Headless(headless)

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	utils.Debugf("browser launched: %s", controlURL)
	return &Session{browser: b, launcher: l}, nil
}

// Page returns the session's single page, creating it on first use.
func (s *Session) Page() (*rod.Page, error) {
	if s.page != nil {
		return s.page, nil
	}
	page, err := s.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	s.page = page
	return page, nil
}

// Close tears the browser down. Safe to call more than once.
func (s *Session) Close() {
	if s.browser != nil {
		s.browser.MustClose()
		s.browser = nil
		utils.Debugf("browser closed")
	}
	if s.launcher != nil {
		s.launcher.Cleanup()
		s.launcher = nil
	}
}
