// Package grpc provides the gRPC transport adapter for the test-jig
// engine: a single bidirectional streaming service exchanging
// google.protobuf.Struct payloads shaped like spec.md §6's JSON command
// and tc-data messages. It is peripheral to the engine itself (the
// engine package never imports this one); it exists so the repository
// is runnable end-to-end.
package grpc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/kodflow/testjig/internal/application/dispatcher"
	"github.com/kodflow/testjig/internal/application/state"
	"github.com/kodflow/testjig/internal/domain/logging"
	"github.com/kodflow/testjig/internal/domain/run"
)

// streamBufferSize bounds each connected session's outbound queue.
const streamBufferSize = 64

// SessionManager is the slice of the application state manager the
// transport needs: registering/unregistering a connection and finding
// the current controller (UI prompts are routed to it alone, since a
// ViewSession is read-only per spec.md §3).
type SessionManager interface {
	AddSession(ctx context.Context, handle string, panelLimit int) (bool, error)
	RemoveSession(handle string) error
	ControlSession() (*run.ControlSession, error)
}

// Server implements the TestJigService bidirectional stream: inbound
// messages are decoded into dispatcher.Command and dispatched; outbound
// tc-data messages are broadcast to every connected session, and
// outbound UI prompts are routed to the controller alone.
type Server struct {
	dispatcher *dispatcher.Dispatcher
	sessions   SessionManager
	tcData     <-chan state.TCDataMessage
	uiRequest  <-chan state.UIPromptMessage
	logger     logging.Logger

	spawned sync.WaitGroup

	mu      sync.RWMutex
	streams map[string]chan *structpb.Struct
}

// NewServer constructs a Server. tcData and uiRequest are the output
// channels the application state manager (C6) publishes onto; Run must
// be called to start draining them.
//
// d and sessions may be nil at construction: the state manager needs a
// Transport (this Server's Send method, which touches neither field) to
// be constructed first, and the dispatcher needs the state manager as
// its ControlSessionProvider. SetDispatcher/SetSessions break that
// cycle, the way the teacher's bootstrap wires a supervisor's prober
// factory and metrics tracker in after construction.
func NewServer(d *dispatcher.Dispatcher, sessions SessionManager, tcData <-chan state.TCDataMessage, uiRequest <-chan state.UIPromptMessage, logger logging.Logger) *Server {
	return &Server{
		dispatcher: d,
		sessions:   sessions,
		tcData:     tcData,
		uiRequest:  uiRequest,
		logger:     logger,
		streams:    make(map[string]chan *structpb.Struct),
	}
}

// SetDispatcher wires the command dispatcher in after construction.
// Must be called before Stream is invoked on any connection.
func (s *Server) SetDispatcher(d *dispatcher.Dispatcher) { s.dispatcher = d }

// SetSessions wires the session manager in after construction. Must be
// called before Run or Stream is invoked.
func (s *Server) SetSessions(sessions SessionManager) { s.sessions = sessions }

// Run starts the broadcast pumps that forward tcData/uiRequest to
// connected streams. It returns immediately; call Wait to block for
// both pumps to exit (on ctx cancellation or channel close).
func (s *Server) Run(ctx context.Context) {
	s.spawned.Add(2)
	go func() {
		defer s.spawned.Done()
		s.pumpTCData(ctx)
	}()
	go func() {
		defer s.spawned.Done()
		s.pumpUIRequest(ctx)
	}()
}

// Wait blocks until both broadcast pumps started by Run have exited.
func (s *Server) Wait() { s.spawned.Wait() }

func (s *Server) pumpTCData(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-s.tcData:
			if !ok {
				return
			}
			s.broadcast(msg)
		}
	}
}

func (s *Server) pumpUIRequest(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-s.uiRequest:
			if !ok {
				return
			}
			cs, err := s.sessions.ControlSession()
			if err != nil {
				s.logWarn("", "ui_prompt", "no control session to route prompt to, dropping", nil)
				continue
			}
			if err := s.Send(cs.ID(), msg); err != nil {
				s.logError(cs.ID(), "ui_prompt", "routing prompt to controller failed", map[string]any{"error": err.Error()})
			}
		}
	}
}

func (s *Server) broadcast(msg any) {
	st, err := toStruct(msg)
	if err != nil {
		s.logError("", "broadcast", "encoding outbound message failed", map[string]any{"error": err.Error()})
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for handle, out := range s.streams {
		select {
		case out <- st:
		default:
			s.logWarn(handle, "broadcast", "outbound buffer full, dropping message", nil)
		}
	}
}

// Send implements state.Transport: delivers message to the session
// identified by handle only.
func (s *Server) Send(handle string, message any) error {
	st, err := toStruct(message)
	if err != nil {
		return err
	}

	s.mu.RLock()
	out, ok := s.streams[handle]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("grpc: unknown session handle %q", handle)
	}

	select {
	case out <- st:
		return nil
	default:
		return fmt.Errorf("grpc: outbound buffer full for handle %q", handle)
	}
}

// Stream implements the bidirectional TestJigService RPC: one transport
// handle per connection, a read loop dispatching inbound commands, and
// a write loop draining this connection's outbound queue.
func (s *Server) Stream(stream grpc.ServerStream) error {
	ctx := stream.Context()
	handle := uuid.NewString()

	out := make(chan *structpb.Struct, streamBufferSize)
	s.registerStream(handle, out)
	defer s.unregisterStream(handle)

	if _, err := s.sessions.AddSession(ctx, handle, 0); err != nil {
		return fmt.Errorf("grpc: adding session: %w", err)
	}
	defer func() {
		if err := s.sessions.RemoveSession(handle); err != nil {
			s.logError(handle, "stream", "remove_session failed on disconnect", map[string]any{"error": err.Error()})
		}
	}()

	errCh := make(chan error, 2)
	go s.readLoop(ctx, handle, stream, errCh)
	go s.writeLoop(ctx, stream, out, errCh)
	return <-errCh
}

func (s *Server) readLoop(ctx context.Context, handle string, stream grpc.ServerStream, errCh chan<- error) {
	for {
		in := new(structpb.Struct)
		if err := stream.RecvMsg(in); err != nil {
			if errors.Is(err, io.EOF) {
				errCh <- nil
			} else {
				errCh <- err
			}
			return
		}

		cmd, err := commandFromStruct(in)
		if err != nil {
			s.logError(handle, "stream", "decoding inbound command failed", map[string]any{"error": err.Error()})
			continue
		}
		if err := s.dispatcher.Dispatch(ctx, cmd); err != nil {
			s.logWarn(handle, "stream", "command dispatch reported a recoverable condition", map[string]any{
				"command_type": cmd.CommandType,
				"error":        err.Error(),
			})
		}
	}
}

func (s *Server) writeLoop(ctx context.Context, stream grpc.ServerStream, out <-chan *structpb.Struct, errCh chan<- error) {
	for {
		select {
		case <-ctx.Done():
			errCh <- ctx.Err()
			return
		case msg, ok := <-out:
			if !ok {
				errCh <- nil
				return
			}
			if err := stream.SendMsg(msg); err != nil {
				errCh <- err
				return
			}
		}
	}
}

func (s *Server) registerStream(handle string, out chan *structpb.Struct) {
	s.mu.Lock()
	s.streams[handle] = out
	s.mu.Unlock()
}

func (s *Server) unregisterStream(handle string) {
	s.mu.Lock()
	delete(s.streams, handle)
	s.mu.Unlock()
}

func (s *Server) logWarn(service, eventType, message string, meta map[string]any) {
	if s.logger == nil {
		return
	}
	s.logger.Warn(service, eventType, message, meta)
}

func (s *Server) logError(service, eventType, message string, meta map[string]any) {
	if s.logger == nil {
		return
	}
	s.logger.Error(service, eventType, message, meta)
}

var _ testJigServer = (*Server)(nil)
