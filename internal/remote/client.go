package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	api "github.com/oshokin/chessclock/internal/api/grpc/clock"
	"github.com/oshokin/chessclock/internal/codec"
	"github.com/oshokin/chessclock/internal/domain/clock"
	"github.com/oshokin/chessclock/internal/session"
)

// DefaultCallTimeout bounds a single remote call.
const DefaultCallTimeout = 5 * time.Second

// Client wraps the gRPC ClockService client with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the clock.
	conn *grpc.ClientConn
	// api is the ClockService client.
	api *api.ClockServiceClient

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// ConfigChange lists the time-control fields to change; nil fields are kept.
type ConfigChange struct {
	MinutesPlayer1         *int
	MinutesPlayer2         *int
	IncrementSeconds       *int
	DifferentTimePerPlayer *bool
	SoundEnabled           *bool
}

var (
	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("address must be provided")
	// errEmptyChange is returned by Configure when nothing would change.
	errEmptyChange = errors.New("no settings to change")
	// ErrNoAddress indicates that neither a flag nor the settings name the clock.
	ErrNoAddress = errors.New("no remote address: pass --address or set listen_address in the settings")
)

// Dial creates a client for the clock listening at address.
// The connection uses insecure transport credentials.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial chess clock: %w", err)
	}

	client := newClient(conn, opts...)

	return client, nil
}

// DialAddress turns the clock's listen address into one a client can dial.
// A listen address without a host (":50051") means the local machine.
func DialAddress(listenAddress string) (string, error) {
	if listenAddress == "" {
		return "", ErrNoAddress
	}

	host, port, err := net.SplitHostPort(listenAddress)
	if err != nil {
		return "", fmt.Errorf("invalid address format %q: %w", listenAddress, err)
	}

	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
	}

	return net.JoinHostPort(host, port), nil
}

func newClient(conn *grpc.ClientConn, opts ...Option) *Client {
	client := &Client{
		conn:        conn,
		api:         api.NewClockServiceClient(conn),
		callTimeout: DefaultCallTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// Status returns the current session update.
func (c *Client) Status(ctx context.Context) (session.Update, error) {
	return c.call(ctx, "get state", func(ctx context.Context) (*structpb.Struct, error) {
		return c.api.GetState(ctx)
	})
}

// Select presses the given side.
func (c *Client) Select(ctx context.Context, side clock.Side) (session.Update, error) {
	return c.call(ctx, "select side", func(ctx context.Context) (*structpb.Struct, error) {
		return c.api.Select(ctx, side.String())
	})
}

// Switch ends the active player's turn.
func (c *Client) Switch(ctx context.Context) (session.Update, error) {
	return c.call(ctx, "switch turn", func(ctx context.Context) (*structpb.Struct, error) {
		return c.api.Switch(ctx)
	})
}

// TogglePause pauses or resumes the clock.
func (c *Client) TogglePause(ctx context.Context) (session.Update, error) {
	return c.call(ctx, "toggle pause", func(ctx context.Context) (*structpb.Struct, error) {
		return c.api.TogglePause(ctx)
	})
}

// Reset starts a new session.
func (c *Client) Reset(ctx context.Context) (session.Update, error) {
	return c.call(ctx, "reset", func(ctx context.Context) (*structpb.Struct, error) {
		return c.api.Reset(ctx)
	})
}

// Configure changes the time control of the remote clock.
func (c *Client) Configure(ctx context.Context, change ConfigChange) (session.Update, error) {
	msg := change.toStruct()
	if len(msg.GetFields()) == 0 {
		return session.Update{}, errEmptyChange
	}

	return c.call(ctx, "configure", func(ctx context.Context) (*structpb.Struct, error) {
		return c.api.Configure(ctx, msg)
	})
}

// Watch calls fn with every update until ctx is cancelled, the clock exits
// or fn returns an error. The call timeout does not apply.
func (c *Client) Watch(ctx context.Context, fn func(session.Update) error) error {
	stream, err := c.api.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	for {
		msg, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			return fmt.Errorf("watch: %w", err)
		}

		update, err := codec.UpdateFromStruct(msg)
		if err != nil {
			return fmt.Errorf("decode update: %w", err)
		}

		if err := fn(update); err != nil {
			return err
		}
	}
}

func (c *Client) call(
	ctx context.Context,
	name string,
	invoke func(context.Context) (*structpb.Struct, error),
) (session.Update, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := invoke(callCtx)
	if err != nil {
		return session.Update{}, fmt.Errorf("%s: %w", name, err)
	}

	update, err := codec.UpdateFromStruct(resp)
	if err != nil {
		return session.Update{}, fmt.Errorf("decode %s response: %w", name, err)
	}

	return update, nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}

func (change ConfigChange) toStruct() *structpb.Struct {
	msg := &structpb.Struct{Fields: make(map[string]*structpb.Value)}

	setInt := func(name string, v *int) {
		if v != nil {
			msg.Fields[name] = structpb.NewNumberValue(float64(*v))
		}
	}

	setBool := func(name string, v *bool) {
		if v != nil {
			msg.Fields[name] = structpb.NewBoolValue(*v)
		}
	}

	setInt(codec.FieldMinutes1, change.MinutesPlayer1)
	setInt(codec.FieldMinutes2, change.MinutesPlayer2)
	setInt(codec.FieldIncrement, change.IncrementSeconds)
	setBool(codec.FieldDifferentTime, change.DifferentTimePerPlayer)
	setBool(codec.FieldSoundEnabled, change.SoundEnabled)

	return msg
}

// FormatUpdate renders an update as a single human-readable line.
func FormatUpdate(u session.Update) string {
	var b strings.Builder

	fmt.Fprintf(&b, "player1 %s | player2 %s | %s",
		clock.FormatRemaining(u.State.Remaining1),
		clock.FormatRemaining(u.State.Remaining2),
		u.State.Phase,
	)

	if u.State.Phase == clock.Running || u.State.Phase == clock.Paused {
		fmt.Fprintf(&b, " (%s to move)", u.State.ActiveSide)
	}

	fmt.Fprintf(&b, " | moves %d", u.State.Moves)

	if u.Pending {
		b.WriteString(" | new settings after reset")
	}

	return b.String()
}
