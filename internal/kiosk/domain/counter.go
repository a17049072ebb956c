package domain

import "sync/atomic"

// TicketCounter hands out ticket sequence numbers. NextID is an atomic
// fetch-and-add, so concurrent callers never receive the same number.
type TicketCounter struct {
	n atomic.Uint32
}

func (c *TicketCounter) NextID() uint32 {
	return c.n.Add(1)
}

// Current is the last number handed out, 0 before the first call.
func (c *TicketCounter) Current() uint32 {
	return c.n.Load()
}

var processCounter TicketCounter

// ProcessCounter is the counter shared by every factory that is not given its own.
func ProcessCounter() *TicketCounter {
	return &processCounter
}
