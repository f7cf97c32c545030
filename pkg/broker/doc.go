// Package broker implements an RDMnet broker.
//
// A Broker accepts TCP connections from RPT controllers and devices on one
// scope. Each accepted socket gets a reader goroutine feeding one of a
// bounded set of poll workers; the workers run the protocol handling for
// their connections in arrival order. A single service goroutine drains
// the per-client outbound queues, sends heartbeats and destroys clients
// that were marked for destruction, so no client is torn down from inside
// its own message handling.
//
// Controllers have one FIFO. Devices have one FIFO per requesting
// controller, serviced round robin, so one busy controller cannot starve
// the others. A push onto a full queue disconnects that client with
// CapacityExhausted.
//
// Basic usage:
//
//	cfg := broker.DefaultConfig()
//	cfg.UID = rdm.UID{Manufacturer: 0x6574, Device: 1}
//	b, err := broker.New(cfg)
//	if err != nil {
//		return err
//	}
//	b.OnEvent(func(ev broker.Event) {
//		fmt.Println(ev.Type, ev.Client.Entry.UID())
//	})
//	if err := b.Start(ctx); err != nil {
//		return err
//	}
//	defer b.Stop()
package broker
