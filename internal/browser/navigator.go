package browser

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/farrandale/plscrape/internal/models"
	"github.com/farrandale/plscrape/internal/utils"
)

// NavigatorConfig bounds the navigator's waits.
type NavigatorConfig struct {
	// NavTimeout bounds Open: navigation plus load event.
	NavTimeout time.Duration
	// ReadyTimeout bounds ReadyCheck polling for a DOM marker.
	ReadyTimeout time.Duration
	// PollInterval is the ReadyCheck polling period.
	PollInterval time.Duration
	// InterstitialTimeout is how long to wait for a modal that may not
	// show up at all.
	InterstitialTimeout time.Duration
	// PaginateRetries is the retry budget for unverified pagination.
	PaginateRetries int
}

// DefaultNavigatorConfig mirrors the waits the site has historically
// needed: modals can take tens of seconds to render.
func DefaultNavigatorConfig() NavigatorConfig {
	return NavigatorConfig{
		NavTimeout:          60 * time.Second,
		ReadyTimeout:        30 * time.Second,
		PollInterval:        500 * time.Millisecond,
		InterstitialTimeout: 5 * time.Second,
		PaginateRetries:     3,
	}
}

// Navigator drives the session's page to states where a target's
// data-bearing DOM subtree is fully present, handling interstitial UI on
// the way. Every simulated action goes through the pacer first.
type Navigator struct {
	page  pageDriver
	pacer Pacer
	cfg   NavigatorConfig
}

// NewNavigator binds a navigator to the session's page.
func NewNavigator(session *Session, pacer Pacer, cfg NavigatorConfig) (*Navigator, error) {
	page, err := session.Page()
	if err != nil {
		return nil, err
	}
	return &Navigator{page: rodPage{page: page}, pacer: pacer, cfg: cfg}, nil
}

// Open loads a URL and waits for the load event within the bounded
// timeout.
func (n *Navigator) Open(url string) error {
	n.pacer.Wait()

	if err := n.page.navigate(url, n.cfg.NavTimeout); err != nil {
		return &NavigationError{URL: url, Err: err}
	}

	utils.Debugf("opened %s", url)
	return nil
}

// DismissInterstitials closes the cookie-consent banner and the
// promotional overlay when present. The site does not show either every
// session, so absence is not an error. Call after every navigation and
// after any in-page action that can re-trigger a modal.
func (n *Navigator) DismissInterstitials() {
	if n.dismiss(models.SelectorCookieAccept) {
		utils.Info("cookie consent dismissed")
	} else {
		utils.Debug("no cookie consent modal")
	}

	if n.dismiss(models.SelectorAdvertClose) {
		utils.Info("advert overlay dismissed")
	} else {
		utils.Debug("no advert overlay")
	}
}

// dismiss clicks a modal control if it renders within the interstitial
// grace period. Reports whether a click happened.
func (n *Navigator) dismiss(selector string) bool {
	el, err := n.page.element(selector, n.cfg.InterstitialTimeout)
	if err != nil {
		return false
	}
	visible, err := el.visible()
	if err != nil || !visible {
		return false
	}

	n.pacer.Wait()
	if err := el.click(); err != nil {
		utils.Warnf("dismiss %q: click failed: %v", selector, err)
		return false
	}
	return true
}

// ReadyCheck polls for a DOM marker up to the ready timeout. A missing
// marker means the page layout is not what the caller expects.
func (n *Navigator) ReadyCheck(selector string) error {
	deadline := time.Now().Add(n.cfg.ReadyTimeout)
	for {
		has, _, err := n.page.has(selector)
		if err == nil && has {
			utils.Debugf("marker ready: %s", selector)
			return nil
		}
		if time.Now().After(deadline) {
			return &ContentNotFoundError{Marker: selector, Timeout: n.cfg.ReadyTimeout}
		}
		time.Sleep(n.cfg.PollInterval)
	}
}

// Click waits for an element and clicks it, paced.
func (n *Navigator) Click(selector string) error {
	el, err := n.page.element(selector, n.cfg.ReadyTimeout)
	if err != nil {
		return &ContentNotFoundError{Marker: selector, Timeout: n.cfg.ReadyTimeout}
	}

	n.pacer.Wait()
	if err := el.click(); err != nil {
		return fmt.Errorf("click %q: %w", selector, err)
	}
	return nil
}

// ClickLinkText clicks the anchor whose visible text matches exactly,
// modulo surrounding whitespace. The statistics hub links metrics by
// their display label.
func (n *Navigator) ClickLinkText(text string) error {
	el, err := n.page.elementLink(text, n.cfg.ReadyTimeout)
	if err != nil {
		return &ContentNotFoundError{Marker: "link " + text, Timeout: n.cfg.ReadyTimeout}
	}

	n.pacer.Wait()
	if err := el.click(); err != nil {
		return fmt.Errorf("click link %q: %w", text, err)
	}
	return nil
}

// HasPagination reports whether the statistics listing offers a next
// page control.
func (n *Navigator) HasPagination() bool {
	has, el, err := n.page.has(models.SelectorPaginationNext)
	if err != nil || !has {
		return false
	}
	visible, err := el.visible()
	return err == nil && visible
}

// Paginate advances the statistics listing to the given page and
// verifies the content actually changed before returning. The site swaps
// the table body in place, so verification compares a fingerprint of the
// marker subtree before and after the click. On verification failure it
// retries within the budget, pacing between attempts, then fails with
// StalePageError so a stale snapshot is never captured.
func (n *Navigator) Paginate(pageNumber int) error {
	before, err := n.Fingerprint(models.SelectorStatsTableBody)
	if err != nil {
		return err
	}

	attempts := 0
	for attempts < n.cfg.PaginateRetries {
		attempts++

		if err := n.Click(models.SelectorPaginationNext); err != nil {
			return fmt.Errorf("paginate to %d: %w", pageNumber, err)
		}
		if err := n.ReadyCheck(models.SelectorStatsTableBody); err != nil {
			return fmt.Errorf("paginate to %d: %w", pageNumber, err)
		}

		after, err := n.Fingerprint(models.SelectorStatsTableBody)
		if err != nil {
			return err
		}
		if after != before {
			utils.Debugf("pagination to %d verified (attempt %d)", pageNumber, attempts)
			return nil
		}

		utils.Warnf("pagination to %d not verified, retrying (%d/%d)",
			pageNumber, attempts, n.cfg.PaginateRetries)
		n.pacer.Wait()
	}

	return &StalePageError{Page: pageNumber, Attempts: attempts}
}

// Fingerprint hashes the rendered HTML of the subtree at selector.
func (n *Navigator) Fingerprint(selector string) (string, error) {
	el, err := n.page.element(selector, n.cfg.ReadyTimeout)
	if err != nil {
		return "", &ContentNotFoundError{Marker: selector, Timeout: n.cfg.ReadyTimeout}
	}
	html, err := el.html()
	if err != nil {
		return "", fmt.Errorf("fingerprint %q: %w", selector, err)
	}
	return ContentFingerprint(html), nil
}

// HTML returns the page's current rendered document.
func (n *Navigator) HTML() (string, error) {
	html, err := n.page.html()
	if err != nil {
		return "", fmt.Errorf("read page html: %w", err)
	}
	return html, nil
}

// ContentFingerprint is the hash used for pagination verification.
func ContentFingerprint(html string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(html)))
}
