package broker

// brokerSource is the queue source used for messages the broker itself
// generates (connect replies, client lists, statuses).
const brokerSource = 0

// outboundQueue holds packed messages waiting for the service loop.
// Implementations are not safe for concurrent use; brokerClient guards them.
type outboundQueue interface {
	// push appends a packet queued on behalf of source. It returns false
	// when the queue is full.
	push(source int, packet []byte) bool

	// pop removes the next packet to send.
	pop() ([]byte, bool)

	// removeSource drops everything queued on behalf of source.
	removeSource(source int)

	len() int
}

// controllerQueue is the single FIFO of an RPT Controller.
type controllerQueue struct {
	max     int
	packets [][]byte
}

func newControllerQueue(max int) *controllerQueue {
	return &controllerQueue{max: max}
}

func (q *controllerQueue) push(_ int, packet []byte) bool {
	if len(q.packets) >= q.max {
		return false
	}
	q.packets = append(q.packets, packet)
	return true
}

func (q *controllerQueue) pop() ([]byte, bool) {
	if len(q.packets) == 0 {
		return nil, false
	}
	p := q.packets[0]
	q.packets[0] = nil
	q.packets = q.packets[1:]
	return p, true
}

func (q *controllerQueue) removeSource(int) {}

func (q *controllerQueue) len() int {
	return len(q.packets)
}

// deviceQueue keeps one FIFO per requesting controller so that a busy
// controller cannot starve the others. Sources are serviced round robin
// starting after the one serviced last; total bounds all FIFOs together.
type deviceQueue struct {
	max          int
	total        int
	order        []int
	fifos        map[int][][]byte
	lastServiced int
}

func newDeviceQueue(max int) *deviceQueue {
	return &deviceQueue{max: max, fifos: make(map[int][][]byte), lastServiced: -1}
}

func (q *deviceQueue) push(source int, packet []byte) bool {
	if q.total >= q.max {
		return false
	}
	fifo, ok := q.fifos[source]
	if !ok {
		q.order = append(q.order, source)
	}
	q.fifos[source] = append(fifo, packet)
	q.total++
	return true
}

func (q *deviceQueue) pop() ([]byte, bool) {
	if q.total == 0 {
		return nil, false
	}
	start := 0
	for i, src := range q.order {
		if src == q.lastServiced {
			start = i + 1
			break
		}
	}
	n := len(q.order)
	for i := 0; i < n; i++ {
		src := q.order[(start+i)%n]
		fifo := q.fifos[src]
		if len(fifo) == 0 {
			continue
		}
		p := fifo[0]
		fifo[0] = nil
		q.fifos[src] = fifo[1:]
		q.total--
		q.lastServiced = src
		return p, true
	}
	return nil, false
}

func (q *deviceQueue) removeSource(source int) {
	fifo, ok := q.fifos[source]
	if !ok {
		return
	}
	q.total -= len(fifo)
	delete(q.fifos, source)
	for i, src := range q.order {
		if src == source {
			q.order = append(q.order[:i], q.order[i+1:]...)
			break
		}
	}
}

func (q *deviceQueue) len() int {
	return q.total
}
