package broker

import (
	"errors"
	"sync"

	"github.com/ETCLabs/rdmnet-go/pkg/wire"
)

// Poll pool errors.
var (
	errPoolFull   = errors.New("poll pool full")
	errPoolClosed = errors.New("poll pool closed")
)

const (
	workerInboxSize = 64
	maxPollBatch    = 64
)

// incoming is one read result handed from a connection reader to its
// poll worker.
type incoming struct {
	client *brokerClient
	msgs   []wire.Message
	err    error
}

// pollWorker owns up to maxPerWorker connections. Their readers feed the
// inbox; the worker sleeps until something arrives and then hands
// everything queued, up to maxPollBatch, to the shared poll handler.
// Messages of one connection are processed in arrival order.
type pollWorker struct {
	id    int
	inbox chan incoming
	stop  chan struct{}
	count int
}

// pollPool sizes the set of poll workers to the number of open sockets.
type pollPool struct {
	maxPerWorker int
	maxWorkers   int
	handler      func([]incoming)

	mu      sync.Mutex
	workers []*pollWorker
	nextID  int
	closed  bool
	wg      sync.WaitGroup
}

func newPollPool(maxPerWorker, maxWorkers int, handler func([]incoming)) *pollPool {
	return &pollPool{
		maxPerWorker: maxPerWorker,
		maxWorkers:   maxWorkers,
		handler:      handler,
	}
}

// add assigns c to a worker with spare capacity, starting a new worker if
// needed, and starts the connection's reader.
func (p *pollPool) add(c *brokerClient) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return errPoolClosed
	}

	var w *pollWorker
	for _, cand := range p.workers {
		if cand.count < p.maxPerWorker {
			w = cand
			break
		}
	}
	if w == nil {
		if len(p.workers) >= p.maxWorkers {
			return errPoolFull
		}
		w = &pollWorker{
			id:    p.nextID,
			inbox: make(chan incoming, workerInboxSize),
			stop:  make(chan struct{}),
		}
		p.nextID++
		p.workers = append(p.workers, w)
		p.wg.Add(1)
		go p.run(w)
	}

	w.count++
	c.worker = w
	p.wg.Add(1)
	go p.read(c, w)
	return nil
}

// remove releases c's worker slot. A worker left without connections
// exits.
func (p *pollPool) remove(c *brokerClient) {
	p.mu.Lock()
	defer p.mu.Unlock()

	w := c.worker
	if w == nil {
		return
	}
	c.worker = nil
	w.count--
	if w.count > 0 {
		return
	}
	close(w.stop)
	for i, cand := range p.workers {
		if cand == w {
			p.workers = append(p.workers[:i], p.workers[i+1:]...)
			break
		}
	}
}

// workerCount returns the number of running workers.
func (p *pollPool) workerCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.workers)
}

// close stops every worker and waits for workers and readers. Connections
// must already be closed so that readers return.
func (p *pollPool) close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		for _, w := range p.workers {
			close(w.stop)
		}
		p.workers = nil
	}
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *pollPool) read(c *brokerClient, w *pollWorker) {
	defer p.wg.Done()
	for {
		msgs, err := c.conn.Receive(0)
		select {
		case w.inbox <- incoming{client: c, msgs: msgs, err: err}:
		case <-w.stop:
			return
		}
		if err != nil && !isDecodeError(err) {
			return
		}
	}
}

func (p *pollPool) run(w *pollWorker) {
	defer p.wg.Done()

	batch := make([]incoming, 0, maxPollBatch)
	for {
		batch = batch[:0]
		select {
		case <-w.stop:
			return
		case in := <-w.inbox:
			batch = append(batch, in)
		}
	drain:
		for len(batch) < maxPollBatch {
			select {
			case in := <-w.inbox:
				batch = append(batch, in)
			default:
				break drain
			}
		}
		p.handler(batch)
	}
}
