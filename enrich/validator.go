package enrich

import (
	"net/url"
	"sync"
)

const minURLLength = 8

// URLValidator reports whether a string is a fetchable absolute http(s)
// URL. Validation runs on every candidate link during fan-out, so
// results are memoized in a bounded FIFO table.
type URLValidator struct {
	mu      sync.Mutex
	memo    map[string]bool
	order   []string
	maxSize int
}

func NewURLValidator(maxSize int) *URLValidator {
	return &URLValidator{
		memo:    make(map[string]bool),
		maxSize: maxSize,
	}
}

func (v *URLValidator) IsValid(raw string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if ok, cached := v.memo[raw]; cached {
		return ok
	}

	ok := validateURL(raw)

	if len(v.memo) >= v.maxSize && len(v.order) > 0 {
		delete(v.memo, v.order[0])
		v.order = v.order[1:]
	}
	v.memo[raw] = ok
	v.order = append(v.order, raw)

	return ok
}

// Reset empties the memo table.
func (v *URLValidator) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.memo = make(map[string]bool)
	v.order = nil
}

func validateURL(raw string) bool {
	if len(raw) < minURLLength {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Host != "" && (u.Scheme == "http" || u.Scheme == "https")
}
