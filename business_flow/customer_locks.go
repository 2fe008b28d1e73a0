package businessflow

import "sync"

// customerLocks serializes suspend/reactivate per customer id so a
// payment-triggered reactivate cannot interleave with an operator suspend.
// Cross-customer operations need no coordination.
var customerLocks = struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}{locks: make(map[uint]*sync.Mutex)}

func lockCustomer(customerID uint) *sync.Mutex {
	customerLocks.mu.Lock()
	m, ok := customerLocks.locks[customerID]
	if !ok {
		m = &sync.Mutex{}
		customerLocks.locks[customerID] = m
	}
	customerLocks.mu.Unlock()

	m.Lock()
	return m
}
