package jsonrpc

import (
	"fmt"
	"sync"
)

// MismatchedIDError reports a response whose id is not the one awaited.
type MismatchedIDError struct {
	Want int64
	Got  int64
}

func (e *MismatchedIDError) Error() string {
	return fmt.Sprintf("response id %d does not match pending request id %d", e.Got, e.Want)
}

// Correlator allocates request ids and matches responses to them.
//
// The client is lock-step: one request is written and its response read
// before the next request goes out, so at most one id is pending. Any
// response for a different id is a protocol violation and is never matched,
// even if that id was used earlier. A Correlator lives as long as one child
// process; a fresh one starts at id 1 again.
type Correlator struct {
	mu      sync.Mutex
	next    int64
	pending map[int64]string
}

// NewCorrelator creates a correlator whose first id is 1.
func NewCorrelator() *Correlator {
	return &Correlator{
		next:    1,
		pending: make(map[int64]string),
	}
}

// NextID returns a fresh id, monotonically increasing for this correlator.
func (c *Correlator) NextID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.next
	c.next++
	return id
}

// Begin allocates an id for method, encodes the request and records it as pending.
func (c *Correlator) Begin(method string, params any) (int64, []byte, error) {
	id := c.NextID()

	line, err := EncodeRequest(method, params, id)
	if err != nil {
		return 0, nil, err
	}

	c.mu.Lock()
	c.pending[id] = method
	c.mu.Unlock()

	return id, line, nil
}

// Match consumes the pending request id if resp answers it.
func (c *Correlator) Match(resp *Response, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.pending[id]; !ok {
		return fmt.Errorf("no pending request with id %d", id)
	}

	if resp.ID != id {
		return &MismatchedIDError{Want: id, Got: resp.ID}
	}

	delete(c.pending, id)
	return nil
}

// Abandon forgets a pending id whose response will never be read.
func (c *Correlator) Abandon(id int64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// Pending returns the number of requests awaiting a response.
func (c *Correlator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
