package registry

import "sync/atomic"

// Cache is a single-slot holder of the current ContractAddresses.
// Any number of readers may call Get concurrently with one writer calling Set.
type Cache struct {
	current atomic.Pointer[ContractAddresses]
}

// Get returns a snapshot of the cached addresses, if any were ever set.
func (c *Cache) Get() (ContractAddresses, bool) {
	p := c.current.Load()
	if p == nil {
		return ContractAddresses{}, false
	}
	return *p, true
}

// Set publishes addrs for subsequent readers.
func (c *Cache) Set(addrs ContractAddresses) {
	c.current.Store(&addrs)
}
