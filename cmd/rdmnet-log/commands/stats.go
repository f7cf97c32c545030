package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/ETCLabs/rdmnet-go/pkg/log"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	Sessions          []log.CaptureHeader
	TotalEvents       int
	EventsByLayer     map[log.Layer]int
	EventsByCategory  map[log.Category]int
	EventsByDirection map[log.Direction]int
	Messages          map[string]int
	Connections       map[string]*ConnectionStats
	HeartbeatTimeouts int
	Errors            int
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// ConnectionStats holds statistics for a single connection.
type ConnectionStats struct {
	FirstSeen  time.Time
	LastSeen   time.Time
	Events     int
	Scope      string
	PeerUID    string
	RemoteAddr string
}

func newStats() *Stats {
	return &Stats{
		EventsByLayer:     make(map[log.Layer]int),
		EventsByCategory:  make(map[log.Category]int),
		EventsByDirection: make(map[log.Direction]int),
		Messages:          make(map[string]int),
		Connections:       make(map[string]*ConnectionStats),
	}
}

func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByLayer[event.Layer]++
	s.EventsByCategory[event.Category]++
	s.EventsByDirection[event.Direction]++

	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	conn, ok := s.Connections[event.ConnectionID]
	if !ok {
		conn = &ConnectionStats{FirstSeen: event.Timestamp, LastSeen: event.Timestamp}
		s.Connections[event.ConnectionID] = conn
	}
	conn.Events++
	if event.Timestamp.After(conn.LastSeen) {
		conn.LastSeen = event.Timestamp
	}
	// The peer UID of a dynamic client is only known after the connect
	// reply, so later values win.
	if event.PeerUID != "" {
		conn.PeerUID = event.PeerUID
	}
	if event.Scope != "" && conn.Scope == "" {
		conn.Scope = event.Scope
	}
	if event.RemoteAddr != "" && conn.RemoteAddr == "" {
		conn.RemoteAddr = event.RemoteAddr
	}

	if event.Message != nil {
		s.Messages[event.Message.Name]++
	}
	if event.Heartbeat != nil && event.Heartbeat.Type == log.HeartbeatTimeout {
		s.HeartbeatTimeouts++
	}
	if event.Error != nil {
		s.Errors++
	}
}

// RunStats analyzes the matching events of path and prints statistics.
func RunStats(path string, filter log.Filter, w io.Writer) error {
	stats := newStats()
	session := func(h log.CaptureHeader) error {
		stats.Sessions = append(stats.Sessions, h)
		return nil
	}
	err := eachEvent(path, filter, session, func(event log.Event) error {
		stats.add(event)
		return nil
	})
	if err != nil {
		return err
	}
	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== RDMnet Protocol Log Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	if len(stats.Sessions) > 0 {
		fmt.Fprintf(w, "Sessions: %d\n", len(stats.Sessions))
		for _, h := range stats.Sessions {
			fmt.Fprintf(w, "  %s\n", sessionLabel(h))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Layer:")
	for _, layer := range []log.Layer{log.LayerTransport, log.LayerBroker, log.LayerRPT, log.LayerRDM} {
		if count := stats.EventsByLayer[layer]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", layer.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryMessage, log.CategoryHeartbeat, log.CategoryState, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Direction:")
	for _, dir := range []log.Direction{log.DirectionIn, log.DirectionOut} {
		if count := stats.EventsByDirection[dir]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", dir.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	if len(stats.Messages) > 0 {
		names := make([]string, 0, len(stats.Messages))
		for name := range stats.Messages {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool {
			ci, cj := stats.Messages[names[i]], stats.Messages[names[j]]
			if ci != cj {
				return ci > cj
			}
			return names[i] < names[j]
		})
		fmt.Fprintln(w, "Messages:")
		for _, name := range names {
			fmt.Fprintf(w, "  %-24s %d\n", name+":", stats.Messages[name])
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Connections: %d\n", len(stats.Connections))
	if len(stats.Connections) > 0 {
		type connInfo struct {
			id    string
			stats *ConnectionStats
		}
		conns := make([]connInfo, 0, len(stats.Connections))
		for id, cs := range stats.Connections {
			conns = append(conns, connInfo{id, cs})
		}
		sort.Slice(conns, func(i, j int) bool {
			return conns[i].stats.FirstSeen.Before(conns[j].stats.FirstSeen)
		})

		fmt.Fprintln(w)
		for _, c := range conns {
			duration := c.stats.LastSeen.Sub(c.stats.FirstSeen).Round(time.Millisecond)
			fmt.Fprintf(w, "  [%s] %d events, duration %s\n", shortenConnID(c.id), c.stats.Events, duration)
			if c.stats.RemoteAddr != "" {
				fmt.Fprintf(w, "           Peer: %s\n", c.stats.RemoteAddr)
			}
			if c.stats.PeerUID != "" {
				fmt.Fprintf(w, "           UID: %s\n", c.stats.PeerUID)
			}
			if c.stats.Scope != "" {
				fmt.Fprintf(w, "           Scope: %s\n", c.stats.Scope)
			}
		}
	}

	if stats.HeartbeatTimeouts > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Heartbeat Timeouts: %d\n", stats.HeartbeatTimeouts)
	}
	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
