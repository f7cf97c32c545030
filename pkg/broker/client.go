package broker

import (
	"net"
	"net/netip"
	"sync"

	"github.com/ETCLabs/rdmnet-go/pkg/transport"
	"github.com/ETCLabs/rdmnet-go/pkg/wire"
	"github.com/google/uuid"
)

// brokerClient is one accepted socket. Until ClientConnect succeeds it has
// no entry and a small controller-style queue.
type brokerClient struct {
	handle int
	conn   *transport.Conn
	addr   netip.AddrPort

	// worker is owned by the poll pool.
	worker *pollWorker

	mu          sync.RWMutex
	connected   bool
	entry       wire.ClientEntry
	incremental bool
	view        map[uuid.UUID]wire.ClientEntry
	queue       outboundQueue
}

func newBrokerClient(handle int, conn *transport.Conn) *brokerClient {
	c := &brokerClient{
		handle: handle,
		conn:   conn,
		queue:  newControllerQueue(1),
	}
	if ta, ok := conn.RemoteAddr().(*net.TCPAddr); ok {
		ap := ta.AddrPort()
		c.addr = netip.AddrPortFrom(ap.Addr().Unmap(), ap.Port())
	}
	return c
}

// isConnected reports whether ClientConnect was accepted.
func (c *brokerClient) isConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// rptType returns the client's RPT type, or RPTClientTypeUnknown before
// it connected.
func (c *brokerClient) rptType() wire.RPTClientType {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.connected || c.entry.RPT == nil {
		return wire.RPTClientTypeUnknown
	}
	return c.entry.RPT.Type
}

func (c *brokerClient) isController() bool {
	return c.rptType() == wire.RPTClientTypeController
}

func (c *brokerClient) isDevice() bool {
	return c.rptType() == wire.RPTClientTypeDevice
}

func (c *brokerClient) push(source int, packet []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.push(source, packet)
}

func (c *brokerClient) pop() ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.pop()
}

func (c *brokerClient) removeSource(source int) {
	c.mu.Lock()
	c.queue.removeSource(source)
	c.mu.Unlock()
}

func (c *brokerClient) info() ClientInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return ClientInfo{
		Handle:             c.handle,
		Entry:              c.entry,
		Addr:               c.addr,
		IncrementalUpdates: c.incremental,
		QueuedMessages:     c.queue.len(),
	}
}
