package enrich

import "sync"

// FailedSet remembers URLs whose fetch or extraction failed, so the same
// URL is not retried for the remainder of the process lifetime.
type FailedSet struct {
	mu   sync.RWMutex
	urls map[string]struct{}
}

func NewFailedSet() *FailedSet {
	return &FailedSet{urls: make(map[string]struct{})}
}

func (f *FailedSet) Mark(url string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urls[url] = struct{}{}
}

func (f *FailedSet) Contains(url string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.urls[url]
	return ok
}

func (f *FailedSet) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.urls)
}

func (f *FailedSet) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urls = make(map[string]struct{})
}
