package browser

import (
	"regexp"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// pageDriver is the slice of the browser page the navigator drives.
// Production code binds rod through rodPage; tests substitute a
// scripted page.
type pageDriver interface {
	// navigate loads a URL and waits for the load event.
	navigate(url string, timeout time.Duration) error
	// has reports marker presence without waiting.
	has(selector string) (bool, pageElement, error)
	// element waits for a selector up to the timeout.
	element(selector string, timeout time.Duration) (pageElement, error)
	// elementLink waits for the anchor whose visible text matches
	// exactly, modulo surrounding whitespace.
	elementLink(text string, timeout time.Duration) (pageElement, error)
	// html returns the rendered document.
	html() (string, error)
}

// pageElement is a located DOM element.
type pageElement interface {
	visible() (bool, error)
	click() error
	html() (string, error)
}

type rodPage struct {
	page *rod.Page
}

func (p rodPage) navigate(url string, timeout time.Duration) error {
	page := p.page.Timeout(timeout)
	if err := page.Navigate(url); err != nil {
		return err
	}
	return page.WaitLoad()
}

func (p rodPage) has(selector string) (bool, pageElement, error) {
	has, el, err := p.page.Has(selector)
	if !has || el == nil {
		return has, nil, err
	}
	return true, rodElement{el: el}, err
}

func (p rodPage) element(selector string, timeout time.Duration) (pageElement, error) {
	el, err := p.page.Timeout(timeout).Element(selector)
	if err != nil {
		return nil, err
	}
	return rodElement{el: el}, nil
}

func (p rodPage) elementLink(text string, timeout time.Duration) (pageElement, error) {
	pattern := `^\s*` + regexp.QuoteMeta(text) + `\s*$`
	el, err := p.page.Timeout(timeout).ElementR("a", pattern)
	if err != nil {
		return nil, err
	}
	return rodElement{el: el}, nil
}

func (p rodPage) html() (string, error) {
	return p.page.HTML()
}

type rodElement struct {
	el *rod.Element
}

func (e rodElement) visible() (bool, error) { return e.el.Visible() }

func (e rodElement) click() error { return e.el.Click(proto.InputMouseButtonLeft, 1) }

func (e rodElement) html() (string, error) { return e.el.HTML() }
