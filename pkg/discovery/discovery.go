package discovery

import "context"

// MonitorHandler receives broker discovery events for monitored scopes.
// Methods may be called from any goroutine.
type MonitorHandler interface {
	// BrokerFound reports a broker seen for the first time on scope.
	BrokerFound(scope string, info *BrokerInfo)

	// BrokerUpdated reports changed addresses or TXT data of a known broker.
	BrokerUpdated(scope string, info *BrokerInfo)

	// BrokerLost reports that a broker registration went away.
	BrokerLost(scope string, serviceName string)
}

// Monitor watches the network for brokers serving particular scopes.
type Monitor interface {
	// SetHandler sets the receiver of discovery events.
	SetHandler(h MonitorHandler)

	// StartMonitoring begins browsing for brokers on scope within the
	// given search domain.
	StartMonitoring(scope, searchDomain string) error

	// StopMonitoring stops browsing for scope. Unknown scopes are ignored.
	StopMonitoring(scope string)

	// StopAll stops every active browse.
	StopAll()
}

// Advertiser registers a broker service instance.
type Advertiser interface {
	// RegisterBroker starts advertising the broker. A second call replaces
	// the previous registration.
	RegisterBroker(ctx context.Context, info *RegisterInfo) error

	// UnregisterBroker withdraws the registration.
	UnregisterBroker() error

	// IsRegistered reports whether a registration is active.
	IsRegistered() bool
}
