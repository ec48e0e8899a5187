// Package dnscache binds domain names observed in DNS responses to the
// addresses they resolved to, for policies that target a symbolic
// destination rather than a static address.
//
// The cache has no internal lock, matching the original hashmap-backed
// design: callers that can be invoked from more than one queue worker must
// serialize writes themselves, typically through the owning interaction's
// mutex (see internal/interaction). There is no TTL eviction; entries live
// for the process lifetime.
package dnscache

import "grimm.is/glacic/internal/netutil"

// Cache maps a fully-qualified domain name to the addresses observed for it.
type Cache struct {
	entries map[string][]netutil.IPAddress
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[string][]netutil.IPAddress)}
}

// Add records addrs under name. If name is already present, addrs is
// appended after the existing addresses, preserving insertion order;
// duplicates are never deduplicated.
func (c *Cache) Add(name string, addrs []netutil.IPAddress) {
	if existing, ok := c.entries[name]; ok {
		c.entries[name] = append(existing, addrs...)
		return
	}
	combined := make([]netutil.IPAddress, len(addrs))
	copy(combined, addrs)
	c.entries[name] = combined
}

// Remove deletes the entry for name, if present.
func (c *Cache) Remove(name string) {
	delete(c.entries, name)
}

// Get returns the addresses recorded for name and whether an entry exists.
// The returned slice is a borrowed view; callers must not mutate it.
func (c *Cache) Get(name string) ([]netutil.IPAddress, bool) {
	addrs, ok := c.entries[name]
	return addrs, ok
}

// Pop returns and removes the entry for name, transferring ownership of the
// backing slice to the caller.
func (c *Cache) Pop(name string) ([]netutil.IPAddress, bool) {
	addrs, ok := c.entries[name]
	if ok {
		delete(c.entries, name)
	}
	return addrs, ok
}

// Contains reports whether addr appears among the addresses recorded for
// name.
func (c *Cache) Contains(name string, addr netutil.IPAddress) bool {
	addrs, ok := c.entries[name]
	if !ok {
		return false
	}
	for _, a := range addrs {
		if a.Equal(addr) {
			return true
		}
	}
	return false
}

// Len returns the number of distinct domain names currently cached.
func (c *Cache) Len() int {
	return len(c.entries)
}
