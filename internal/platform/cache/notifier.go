package cache

import "sync"

// notifier delivers events to listeners from a single goroutine so they are
// observed in the order fetches completed.
type notifier struct {
	mu        sync.Mutex
	queue     []Event
	listeners map[int]Listener
	nextID    int
	signal    chan struct{}
	done      chan struct{}
	closed    bool
}

func newNotifier() *notifier {
	return &notifier{
		listeners: make(map[int]Listener),
		signal:    make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
}

func (n *notifier) add(l Listener) func() {
	if l == nil {
		return func() {}
	}
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.listeners[id] = l
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		delete(n.listeners, id)
		n.mu.Unlock()
	}
}

func (n *notifier) push(ev Event) {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.queue = append(n.queue, ev)
	n.mu.Unlock()

	select {
	case n.signal <- struct{}{}:
	default:
	}
}

func (n *notifier) run() {
	for {
		select {
		case <-n.done:
			return
		case <-n.signal:
		}

		for {
			n.mu.Lock()
			if len(n.queue) == 0 {
				n.mu.Unlock()
				break
			}
			batch := n.queue
			n.queue = nil
			listeners := make([]Listener, 0, len(n.listeners))
			for id := 0; id < n.nextID; id++ {
				if l, ok := n.listeners[id]; ok {
					listeners = append(listeners, l)
				}
			}
			n.mu.Unlock()

			for _, ev := range batch {
				for _, l := range listeners {
					l(ev)
				}
			}
		}
	}
}

func (n *notifier) close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.closed = true
	n.queue = nil
	close(n.done)
}
