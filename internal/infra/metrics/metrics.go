package metrics

import "sync/atomic"

type Counters struct {
	EventsReceived      uint64
	EventsDuplicate     uint64
	EventsProcessed     uint64
	EventsFailed        uint64
	CheckoutsCreated    uint64
	TransfersCreated    uint64
	TransfersReversed   uint64
	PayoutsReconciled   uint64
	PayoutDiscrepancies uint64
}

func (c *Counters) IncEventsReceived()      { atomic.AddUint64(&c.EventsReceived, 1) }
func (c *Counters) IncEventsDuplicate()     { atomic.AddUint64(&c.EventsDuplicate, 1) }
func (c *Counters) IncEventsProcessed()     { atomic.AddUint64(&c.EventsProcessed, 1) }
func (c *Counters) IncEventsFailed()        { atomic.AddUint64(&c.EventsFailed, 1) }
func (c *Counters) IncCheckoutsCreated()    { atomic.AddUint64(&c.CheckoutsCreated, 1) }
func (c *Counters) IncTransfersCreated()    { atomic.AddUint64(&c.TransfersCreated, 1) }
func (c *Counters) IncTransfersReversed()   { atomic.AddUint64(&c.TransfersReversed, 1) }
func (c *Counters) IncPayoutsReconciled()   { atomic.AddUint64(&c.PayoutsReconciled, 1) }
func (c *Counters) IncPayoutDiscrepancies() { atomic.AddUint64(&c.PayoutDiscrepancies, 1) }
