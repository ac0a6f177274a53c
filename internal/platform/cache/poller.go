package cache

import "time"

// poll drives background refetches for one observed entry. The interval is
// re-read every iteration and the next tick is due one interval after the
// previous fetch started.
func (c *Client) poll(e *entry, stop <-chan struct{}, wake <-chan struct{}) {
	c.logger.Debug("poller started", "key", e.key)
	defer c.logger.Debug("poller stopped", "key", e.key)

	for {
		c.mu.Lock()
		optsFn := e.optsFn
		c.mu.Unlock()
		opts := resolve(optsFn)

		c.mu.Lock()
		if e.kick && e.inflight == nil {
			job := c.maybeFetchLocked(e, opts)
			e.kick = false
			c.mu.Unlock()
			c.dispatch(job)
			continue
		}
		fl := e.inflight
		halted := e.halted
		lastStart := e.lastFetchStart
		c.mu.Unlock()

		if fl != nil {
			select {
			case <-stop:
				return
			case <-fl.done:
				continue
			}
		}

		var tick <-chan time.Time
		var timer *time.Timer
		if opts.Enabled && !halted && opts.RefetchInterval > 0 {
			wait := lastStart.Add(opts.RefetchInterval).Sub(c.now())
			if wait < 0 {
				wait = 0
			}
			timer = time.NewTimer(wait)
			tick = timer.C
		}

		select {
		case <-stop:
			stopTimer(timer)
			return
		case <-wake:
			stopTimer(timer)
		case <-tick:
			c.tick(e, optsFn)
		}
	}
}

func (c *Client) tick(e *entry, optsFn OptionsFunc) {
	opts := resolve(optsFn)

	c.mu.Lock()
	if c.closed || !opts.Enabled || e.halted || e.inflight != nil || e.fetcher == nil {
		c.mu.Unlock()
		return
	}
	job := c.beginFetchLocked(e, opts)
	c.mu.Unlock()

	c.dispatch(job)
}

func stopTimer(timer *time.Timer) {
	if timer != nil {
		timer.Stop()
	}
}
