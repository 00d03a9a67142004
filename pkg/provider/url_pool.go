package provider

import (
	"strings"
	"sync/atomic"
)

// URLPool rotates through provider endpoints round-robin. A single endpoint
// takes the fast path with no atomic traffic.
type URLPool struct {
	urls    []string
	current int64
}

// NewURLPool builds a pool from a comma-separated endpoint list.
func NewURLPool(endpoints string) *URLPool {
	parts := strings.Split(endpoints, ",")
	urls := make([]string, 0, len(parts))
	for _, part := range parts {
		if cleaned := strings.TrimSpace(part); cleaned != "" {
			urls = append(urls, strings.TrimRight(cleaned, "/"))
		}
	}
	return &URLPool{urls: urls, current: -1}
}

// Next returns the next endpoint, or "" when the pool is empty. The modulo
// is normalized so counter overflow cannot produce a negative index.
func (p *URLPool) Next() string {
	switch len(p.urls) {
	case 0:
		return ""
	case 1:
		return p.urls[0]
	}

	next := atomic.AddInt64(&p.current, 1)
	size := int64(len(p.urls))
	return p.urls[((next%size)+size)%size]
}

// Size returns the number of endpoints in the pool.
func (p *URLPool) Size() int {
	return len(p.urls)
}
