package browser

import (
	"fmt"
	"time"
)

// NavigationError reports a page that never reached a loaded state
// within the bounded timeout.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigation failed for %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// StalePageError reports a pagination action whose content fingerprint
// never changed, after the retry budget was exhausted. Returning the
// previous page's content as if it were the new one would poison the
// snapshot, so this is surfaced instead.
type StalePageError struct {
	Page     int
	Attempts int
}

func (e *StalePageError) Error() string {
	return fmt.Sprintf("page did not advance to %d after %d attempts", e.Page, e.Attempts)
}

// ContentNotFoundError reports an expected DOM marker that never
// appeared: the layout is not what the caller expects, likely drift.
// Fatal for the one target, not for the run.
type ContentNotFoundError struct {
	Marker  string
	Timeout time.Duration
}

func (e *ContentNotFoundError) Error() string {
	return fmt.Sprintf("marker %q not found within %s", e.Marker, e.Timeout)
}
