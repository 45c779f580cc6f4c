package browser

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/farrandale/plscrape/internal/models"
)

// stubPage scripts the page driver: content maps selectors to subtree
// HTML, clicks counts clicks per selector, onClick mutates content to
// simulate the page reacting.
type stubPage struct {
	content map[string]string
	clicks  map[string]int
	onClick func(selector string)
}

func newStubPage(content map[string]string) *stubPage {
	return &stubPage{content: content, clicks: make(map[string]int)}
}

func (p *stubPage) navigate(string, time.Duration) error { return nil }

func (p *stubPage) has(selector string) (bool, pageElement, error) {
	if _, ok := p.content[selector]; !ok {
		return false, nil, nil
	}
	return true, stubElement{page: p, selector: selector}, nil
}

func (p *stubPage) element(selector string, _ time.Duration) (pageElement, error) {
	if _, ok := p.content[selector]; !ok {
		return nil, fmt.Errorf("no element %q", selector)
	}
	return stubElement{page: p, selector: selector}, nil
}

func (p *stubPage) elementLink(text string, _ time.Duration) (pageElement, error) {
	key := "link " + text
	if _, ok := p.content[key]; !ok {
		return nil, fmt.Errorf("no link %q", text)
	}
	return stubElement{page: p, selector: key}, nil
}

func (p *stubPage) html() (string, error) { return p.content["__document__"], nil }

type stubElement struct {
	page     *stubPage
	selector string
}

func (e stubElement) visible() (bool, error) { return true, nil }

func (e stubElement) click() error {
	e.page.clicks[e.selector]++
	if e.page.onClick != nil {
		e.page.onClick(e.selector)
	}
	return nil
}

func (e stubElement) html() (string, error) { return e.page.content[e.selector], nil }

func newTestNavigator(page pageDriver) *Navigator {
	return &Navigator{
		page:  page,
		pacer: ZeroPacer{},
		cfg: NavigatorConfig{
			NavTimeout:          time.Second,
			ReadyTimeout:        50 * time.Millisecond,
			PollInterval:        5 * time.Millisecond,
			InterstitialTimeout: 10 * time.Millisecond,
			PaginateRetries:     3,
		},
	}
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name        string
		changeAfter int // clicks until the table body re-renders; 0 = never
		wantClicks  int
		wantStale   bool
	}{
		{"verified first try", 1, 1, false},
		{"verified on retry", 2, 2, false},
		{"stale after budget", 0, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := newStubPage(map[string]string{
				models.SelectorStatsTableBody: "<tr>page one</tr>",
				models.SelectorPaginationNext: "<svg/>",
			})
			page.onClick = func(selector string) {
				if selector != models.SelectorPaginationNext {
					return
				}
				if tt.changeAfter > 0 && page.clicks[selector] >= tt.changeAfter {
					page.content[models.SelectorStatsTableBody] = "<tr>page two</tr>"
				}
			}

			err := newTestNavigator(page).Paginate(2)

			if got := page.clicks[models.SelectorPaginationNext]; got != tt.wantClicks {
				t.Errorf("next control clicked %d times, want %d", got, tt.wantClicks)
			}

			if !tt.wantStale {
				if err != nil {
					t.Fatalf("Paginate() error = %v", err)
				}
				return
			}
			var stale *StalePageError
			if !errors.As(err, &stale) {
				t.Fatalf("Paginate() error = %v, want StalePageError", err)
			}
			if stale.Page != 2 || stale.Attempts != 3 {
				t.Errorf("StalePageError = %+v, want page 2 after 3 attempts", stale)
			}
		})
	}
}

func TestPaginateMissingNextControl(t *testing.T) {
	page := newStubPage(map[string]string{
		models.SelectorStatsTableBody: "<tr>page one</tr>",
	})

	err := newTestNavigator(page).Paginate(2)

	var notFound *ContentNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Paginate() error = %v, want ContentNotFoundError", err)
	}
	if notFound.Marker != models.SelectorPaginationNext {
		t.Errorf("ContentNotFoundError.Marker = %q", notFound.Marker)
	}
}

func TestReadyCheck(t *testing.T) {
	page := newStubPage(map[string]string{"tbody.ready": "<tr/>"})
	nav := newTestNavigator(page)

	if err := nav.ReadyCheck("tbody.ready"); err != nil {
		t.Errorf("ReadyCheck(present) error = %v", err)
	}

	err := nav.ReadyCheck("tbody.absent")
	var notFound *ContentNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("ReadyCheck(absent) error = %v, want ContentNotFoundError", err)
	}
}

func TestClickLinkText(t *testing.T) {
	page := newStubPage(map[string]string{"link Shots": "<a>Shots</a>"})
	nav := newTestNavigator(page)

	if err := nav.ClickLinkText("Shots"); err != nil {
		t.Errorf("ClickLinkText(known) error = %v", err)
	}
	if page.clicks["link Shots"] != 1 {
		t.Errorf("link clicked %d times, want 1", page.clicks["link Shots"])
	}

	var notFound *ContentNotFoundError
	if err := nav.ClickLinkText("Expected Goals"); !errors.As(err, &notFound) {
		t.Errorf("ClickLinkText(unknown) error = %v, want ContentNotFoundError", err)
	}
}

func TestContentFingerprint(t *testing.T) {
	a := ContentFingerprint("<tbody><tr>page one</tr></tbody>")
	b := ContentFingerprint("<tbody><tr>page two</tr></tbody>")

	if a == b {
		t.Error("different content produced identical fingerprints")
	}
	if a != ContentFingerprint("<tbody><tr>page one</tr></tbody>") {
		t.Error("identical content produced different fingerprints")
	}
}

func TestErrorTypes(t *testing.T) {
	cause := errors.New("timeout")
	nav := error(&NavigationError{URL: "https://example.com", Err: cause})
	if !errors.Is(nav, cause) {
		t.Error("NavigationError does not unwrap its cause")
	}

	var stale *StalePageError
	err := error(&StalePageError{Page: 2, Attempts: 3})
	if !errors.As(err, &stale) {
		t.Fatal("StalePageError not matchable with errors.As")
	}
	if stale.Page != 2 || stale.Attempts != 3 {
		t.Errorf("StalePageError fields = %+v", stale)
	}

	var notFound *ContentNotFoundError
	err = error(&ContentNotFoundError{Marker: "tbody.league-table__tbody", Timeout: 30 * time.Second})
	if !errors.As(err, &notFound) {
		t.Fatal("ContentNotFoundError not matchable with errors.As")
	}
}
