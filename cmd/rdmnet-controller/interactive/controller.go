// Package interactive provides the interactive command-line interface
// for the RDMnet controller.
package interactive

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/chzyer/readline"

	"github.com/ETCLabs/rdmnet-go/pkg/client"
	"github.com/ETCLabs/rdmnet-go/pkg/rdm"
	"github.com/ETCLabs/rdmnet-go/pkg/wire"
)

// Session is the part of client.Client the shell drives.
type Session interface {
	Scopes() []client.ScopeInfo
	Clients(h client.ScopeHandle) ([]wire.ClientEntry, error)
	AddScope(cfg client.ScopeConfig) (client.ScopeHandle, error)
	RemoveScope(h client.ScopeHandle, reason wire.DisconnectReason) error
	SendGet(h client.ScopeHandle, dest rdm.UID, pid uint16, data []byte) (uint32, error)
	SendSet(h client.ScopeHandle, dest rdm.UID, pid uint16, data []byte) (uint32, error)
	FetchClientList(h client.ScopeHandle) error
}

var _ Session = (*client.Client)(nil)

// Controller runs the command loop and prints client events.
type Controller struct {
	rl  *readline.Instance
	out io.Writer

	mu      sync.Mutex
	session Session
	current client.ScopeHandle
	hasCur  bool
}

// New creates the shell with a readline prompt.
func New() (*Controller, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "rdmnet> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &Controller{rl: rl, out: rl.Stdout()}, nil
}

func newWithWriter(out io.Writer) *Controller {
	return &Controller{out: out}
}

// Attach sets the client the commands operate on. Events may arrive
// before Attach.
func (c *Controller) Attach(s Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = s
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (c *Controller) Stdout() io.Writer {
	return c.rl.Stdout()
}

// Stderr returns a writer that properly coordinates with the readline input.
func (c *Controller) Stderr() io.Writer {
	return c.rl.Stderr()
}

// Run reads commands until quit, EOF or ctx is done.
func (c *Controller) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.rl.Close()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			fmt.Fprintln(c.out, "Exiting...")
			cancel()
			return
		}
		if !c.exec(line) {
			cancel()
			return
		}
	}
}

// exec runs one command line and returns false on quit.
func (c *Controller) exec(line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return true
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	var err error
	switch cmd {
	case "help", "?":
		c.printHelp()
	case "scopes", "s":
		c.cmdScopes()
	case "use":
		err = c.cmdUse(args)
	case "add":
		err = c.cmdAdd(args)
	case "remove", "rm":
		err = c.cmdRemove(args)
	case "clients", "ls":
		err = c.cmdClients()
	case "refresh":
		err = c.withScope(func(s Session, h client.ScopeHandle) error { return s.FetchClientList(h) })
	case "get", "g":
		err = c.cmdSend(args, false)
	case "set":
		err = c.cmdSend(args, true)
	case "quit", "exit", "q":
		fmt.Fprintln(c.out, "Exiting...")
		return false
	default:
		fmt.Fprintf(c.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
	}
	return true
}

func (c *Controller) printHelp() {
	fmt.Fprintln(c.out, `
RDMnet Controller Commands:
  Scopes:
    scopes                      - List scopes and their connection state
    use <handle>                - Select the scope for later commands
    add <scope> [host:port]     - Add a scope, optionally with a static broker
    remove <handle>             - Remove a scope

  Clients:
    clients                     - List clients of the selected scope
    refresh                     - Fetch the client list again

  RDM:
    get <uid> <pid> [hex]       - Send a GET command
    set <uid> <pid> [hex]       - Send a SET command
    (pid is a name such as DEVICE_LABEL or a number such as 0x0082)

  Other:
    help                        - Show this help
    quit                        - Exit`)
}

func (c *Controller) sessionOrErr() (Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil, errors.New("not attached to a client")
	}
	return c.session, nil
}

// withScope runs fn against the selected scope, defaulting to the first.
func (c *Controller) withScope(fn func(Session, client.ScopeHandle) error) error {
	s, err := c.sessionOrErr()
	if err != nil {
		return err
	}
	c.mu.Lock()
	h, ok := c.current, c.hasCur
	c.mu.Unlock()
	if !ok {
		scopes := s.Scopes()
		if len(scopes) == 0 {
			return errors.New("no scopes; use 'add'")
		}
		h = scopes[0].Handle
	}
	return fn(s, h)
}

func (c *Controller) cmdScopes() {
	s, err := c.sessionOrErr()
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	scopes := s.Scopes()
	if len(scopes) == 0 {
		fmt.Fprintln(c.out, "No scopes.")
		return
	}
	c.mu.Lock()
	cur, hasCur := c.current, c.hasCur
	c.mu.Unlock()

	for i, info := range scopes {
		mark := " "
		if (hasCur && info.Handle == cur) || (!hasCur && i == 0) {
			mark = "*"
		}
		line := fmt.Sprintf("%s %d  %-20s %-12s", mark, int(info.Handle), info.Config.Scope, info.State)
		if info.BrokerAddr.IsValid() {
			line += fmt.Sprintf(" broker=%s uid=%s", info.BrokerAddr, info.ClientUID)
		}
		fmt.Fprintln(c.out, line)
	}
}

func (c *Controller) cmdUse(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: use <handle>")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid handle %q", args[0])
	}
	s, err := c.sessionOrErr()
	if err != nil {
		return err
	}
	h := client.ScopeHandle(n)
	for _, info := range s.Scopes() {
		if info.Handle == h {
			c.mu.Lock()
			c.current, c.hasCur = h, true
			c.mu.Unlock()
			fmt.Fprintf(c.out, "Using scope %q\n", info.Config.Scope)
			return nil
		}
	}
	return client.ErrScopeNotFound
}

func (c *Controller) cmdAdd(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errors.New("usage: add <scope> [host:port]")
	}
	s, err := c.sessionOrErr()
	if err != nil {
		return err
	}
	cfg := client.ScopeConfig{Scope: args[0]}
	if len(args) == 2 {
		ap, err := netip.ParseAddrPort(args[1])
		if err != nil {
			return fmt.Errorf("invalid broker address: %w", err)
		}
		cfg.StaticBroker = ap
	}
	h, err := s.AddScope(cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Added scope %q as %d\n", cfg.Scope, int(h))
	return nil
}

func (c *Controller) cmdRemove(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: remove <handle>")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid handle %q", args[0])
	}
	s, err := c.sessionOrErr()
	if err != nil {
		return err
	}
	h := client.ScopeHandle(n)
	if err := s.RemoveScope(h, wire.DisconnectUserReconfigure); err != nil {
		return err
	}
	c.mu.Lock()
	if c.hasCur && c.current == h {
		c.hasCur = false
	}
	c.mu.Unlock()
	return nil
}

func (c *Controller) cmdClients() error {
	return c.withScope(func(s Session, h client.ScopeHandle) error {
		entries, err := s.Clients(h)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(c.out, "No clients.")
			return nil
		}
		for _, e := range entries {
			c.printEntry("", e)
		}
		return nil
	})
}

func (c *Controller) cmdSend(args []string, set bool) error {
	if len(args) < 2 || len(args) > 3 {
		return errors.New("usage: get|set <uid> <pid> [hex]")
	}
	dest, err := rdm.ParseUID(args[0])
	if err != nil {
		return err
	}
	pid, err := rdm.ParsePID(args[1])
	if err != nil {
		return err
	}
	var data []byte
	if len(args) == 3 {
		data, err = hex.DecodeString(args[2])
		if err != nil {
			return fmt.Errorf("invalid parameter data: %w", err)
		}
	}

	return c.withScope(func(s Session, h client.ScopeHandle) error {
		send := s.SendGet
		if set {
			send = s.SendSet
		}
		seq, err := send(h, dest, pid, data)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Sent %s to %s (seq %d)\n", rdm.PIDName(pid), dest, seq)
		return nil
	})
}

func (c *Controller) printEntry(prefix string, e wire.ClientEntry) {
	if e.RPT == nil {
		fmt.Fprintf(c.out, "%s  %s %s\n", prefix, e.Protocol, e.CID)
		return
	}
	fmt.Fprintf(c.out, "%s  %s %-10s %s\n", prefix, e.RPT.UID, e.RPT.Type, e.CID)
}

// Connected implements client.EventHandler.
func (c *Controller) Connected(_ client.ScopeHandle, ev client.ConnectedEvent) {
	fmt.Fprintf(c.out, "[%s] connected to %s (broker %s), our UID %s\n", ev.Scope, ev.Addr, ev.BrokerUID, ev.ClientUID)
}

// ConnectFailed implements client.EventHandler.
func (c *Controller) ConnectFailed(_ client.ScopeHandle, ev client.ConnectFailedEvent) {
	msg := fmt.Sprintf("[%s] connect failed: %s", ev.Scope, ev.Event)
	if ev.Event == client.ConnectFailRejected {
		msg += fmt.Sprintf(" (%s)", ev.Code)
	}
	if ev.Err != nil {
		msg += fmt.Sprintf(": %v", ev.Err)
	}
	if ev.WillRetry {
		msg += fmt.Sprintf(", retrying in %s (attempt %d)", ev.RetryIn.Round(time.Millisecond), ev.Attempt)
	}
	fmt.Fprintln(c.out, msg)
}

// Disconnected implements client.EventHandler.
func (c *Controller) Disconnected(_ client.ScopeHandle, ev client.DisconnectedEvent) {
	msg := fmt.Sprintf("[%s] disconnected: %s", ev.Scope, ev.Event)
	if ev.Event == client.DisconnectGracefulRemote || ev.Event == client.DisconnectGracefulLocal {
		msg += fmt.Sprintf(" (%s)", ev.Reason)
	}
	if ev.Err != nil {
		msg += fmt.Sprintf(": %v", ev.Err)
	}
	fmt.Fprintln(c.out, msg)
}

// ClientListUpdate implements client.EventHandler.
func (c *Controller) ClientListUpdate(_ client.ScopeHandle, action wire.ClientListAction, entries []wire.ClientEntry) {
	fmt.Fprintf(c.out, "client list %s (%d)\n", action, len(entries))
	for _, e := range entries {
		c.printEntry(" ", e)
	}
}

// DynamicUIDsAssigned implements client.EventHandler.
func (c *Controller) DynamicUIDsAssigned(_ client.ScopeHandle, mappings []wire.DynamicUIDMapping) {
	for _, m := range mappings {
		fmt.Fprintf(c.out, "dynamic UID %s for %s: %s\n", m.UID, m.RID, m.Status)
	}
}

// RDMResponse implements client.EventHandler.
func (c *Controller) RDMResponse(_ client.ScopeHandle, res *client.ResponseResult) {
	kind := "response"
	if res.Unsolicited {
		kind = "unsolicited"
	}
	head := fmt.Sprintf("%s from %s: %s %s %s", kind, res.Source, res.CommandClass, rdm.PIDName(res.ParamID), res.ResponseType)
	if reason, ok := res.NackReason(); ok {
		fmt.Fprintf(c.out, "%s (%s)\n", head, reason)
		return
	}
	if res.Partial {
		head += fmt.Sprintf(" [partial: %v]", res.Err)
	}
	fmt.Fprintf(c.out, "%s %s\n", head, formatData(res.Data))
}

// RPTStatus implements client.EventHandler.
func (c *Controller) RPTStatus(_ client.ScopeHandle, st *client.StatusResult) {
	msg := fmt.Sprintf("status from %s (seq %d): %s", st.Header.SourceUID, st.Seqnum, st.Code)
	if st.Text != "" {
		msg += ": " + st.Text
	}
	fmt.Fprintln(c.out, msg)
}

// RDMCommand implements client.EventHandler. Controllers never receive
// commands.
func (c *Controller) RDMCommand(client.ScopeHandle, *rdm.Command, wire.RPTHeader) {}

// formatData prints printable data as a quoted string and anything else
// as hex.
func formatData(data []byte) string {
	if len(data) == 0 {
		return "(no data)"
	}
	printable := true
	for _, b := range data {
		if b > unicode.MaxASCII || !unicode.IsPrint(rune(b)) {
			printable = false
			break
		}
	}
	if printable {
		return strconv.Quote(string(data))
	}
	return hex.EncodeToString(data)
}
