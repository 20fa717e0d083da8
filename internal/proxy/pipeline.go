package proxy

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"sync"
	"sync/atomic"

	"tibiaproxy/internal/frame"
)

// readChunk is what a direction's reader goroutine pushes onto its
// channel: either a slice of freshly read bytes, or a terminal error
// (io.EOF on a clean close).
type readChunk struct {
	data []byte
	err  error
}

// Pipeline owns one listener, a fixed upstream address, and a read-only,
// shared-by-reference list of EventHandlers. It accepts client
// connections and runs the two-FrameCodec forwarding loop described by
// the design for each one, on its own goroutine.
type Pipeline struct {
	Name         string
	ListenAddr   string
	UpstreamAddr string
	Handlers     []EventHandler

	nextID   uint64
	mu       sync.Mutex
	listener net.Listener
	wg       sync.WaitGroup
	shutdown chan struct{}
}

// New builds a Pipeline bound to listenAddr, forwarding to upstreamAddr,
// running handlers in the given order for every connection.
func New(name, listenAddr, upstreamAddr string, handlers ...EventHandler) *Pipeline {
	return &Pipeline{
		Name:         name,
		ListenAddr:   listenAddr,
		UpstreamAddr: upstreamAddr,
		Handlers:     handlers,
		shutdown:     make(chan struct{}),
	}
}

// Run binds the listener and accepts connections until Stop is called.
func (p *Pipeline) Run() error {
	listener, err := net.Listen("tcp", p.ListenAddr)
	if err != nil {
		return fmt.Errorf("%s: failed to listen on %s: %w", p.Name, p.ListenAddr, err)
	}

	p.mu.Lock()
	p.listener = listener
	p.mu.Unlock()

	log.Printf("[%s] listening on %s, forwarding to %s", p.Name, p.ListenAddr, p.UpstreamAddr)

	for {
		select {
		case <-p.shutdown:
			return nil
		default:
		}

		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-p.shutdown:
				return nil
			default:
				log.Printf("[%s] accept error: %v", p.Name, err)
				continue
			}
		}

		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.handleConnection(conn)
		}()
	}
}

// Addr reports the listener's bound address, or nil if Run has not yet
// bound it. Useful when ListenAddr uses port 0 and the caller needs to
// learn which port was actually chosen.
func (p *Pipeline) Addr() net.Addr {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.listener == nil {
		return nil
	}
	return p.listener.Addr()
}

// Stop closes the listener and blocks until every in-flight connection's
// goroutine has returned.
func (p *Pipeline) Stop() {
	log.Printf("[%s] shutting down", p.Name)
	close(p.shutdown)

	p.mu.Lock()
	if p.listener != nil {
		p.listener.Close()
	}
	p.mu.Unlock()

	p.wg.Wait()
	log.Printf("[%s] shutdown complete", p.Name)
}

func (p *Pipeline) handleConnection(clientConn net.Conn) {
	defer clientConn.Close()

	id := atomic.AddUint64(&p.nextID, 1)
	conn := &Connection{
		ID:         id,
		ClientAddr: clientConn.RemoteAddr(),
		FrameType:  frame.Raw(),
	}

	log.Printf("[%s] #%d new connection from %s", p.Name, conn.ID, conn.ClientAddr)

	for _, h := range p.Handlers {
		if err := h.OnNewConnection(conn); err != nil {
			p.runDisconnect(conn, DisconnectReason{Kind: DisconnectError, Err: err})
			return
		}
	}

	upstreamConn, err := net.Dial("tcp", p.UpstreamAddr)
	if err != nil {
		p.runDisconnect(conn, DisconnectReason{Kind: DisconnectError, Err: fmt.Errorf("dial upstream: %w", err)})
		return
	}
	defer upstreamConn.Close()
	conn.ServerAddr = upstreamConn.RemoteAddr()

	if tc, ok := clientConn.(*net.TCPConn); ok {
		tc.SetNoDelay(true)
	}
	if tc, ok := upstreamConn.(*net.TCPConn); ok {
		tc.SetNoDelay(true)
	}

	for _, h := range p.Handlers {
		if err := h.OnReady(conn); err != nil {
			p.runDisconnect(conn, DisconnectReason{Kind: DisconnectError, Err: err})
			return
		}
	}

	reason := p.forward(conn, clientConn, upstreamConn)
	p.runDisconnect(conn, reason)
}

func (p *Pipeline) runDisconnect(conn *Connection, reason DisconnectReason) {
	log.Printf("[%s] #%d disconnected: %s", p.Name, conn.ID, reason)
	for _, h := range p.Handlers {
		h.OnDisconnect(conn, reason)
	}
}

func readerLoop(conn net.Conn, out chan<- readChunk) {
	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			out <- readChunk{data: chunk}
		}
		if err != nil {
			out <- readChunk{err: err}
			return
		}
	}
}

// forward runs the bidirectional frame loop: decode whatever is already
// buffered from both directions (fairly — every iteration checks both,
// so neither direction can starve the other), dispatch any decoded frame
// through the handler chain and onward to the opposite endpoint, and only
// block in a select over both directions' reader channels once neither
// buffer yields a frame.
func (p *Pipeline) forward(conn *Connection, clientConn, upstreamConn net.Conn) DisconnectReason {
	clientCodec := frame.NewCodec()
	serverCodec := frame.NewCodec()
	clientCodec.SetFrameType(conn.FrameType)
	serverCodec.SetFrameType(conn.FrameType)

	clientCh := make(chan readChunk, 1)
	serverCh := make(chan readChunk, 1)
	go readerLoop(clientConn, clientCh)
	go readerLoop(upstreamConn, serverCh)

	var clientBuf, serverBuf []byte

	dispatch := func(origin Origin, payload []byte, destConn net.Conn, destCodec *frame.Codec) error {
		for _, h := range p.Handlers {
			rewritten, err := h.OnFrame(conn, origin, payload)
			if err != nil {
				return err
			}
			payload = rewritten
		}

		encoded, err := destCodec.Encode(payload)
		if err != nil {
			return err
		}
		if _, err := destConn.Write(encoded); err != nil {
			return err
		}

		conn.FrameCounter++
		return nil
	}

	// Which direction gets decoded first this iteration. Priority hands
	// over after every dispatched frame so a backlog on one side cannot
	// starve the other.
	first := OriginClient

	for {
		if conn.FrameType != clientCodec.FrameType() {
			clientCodec.SetFrameType(conn.FrameType)
		}
		if conn.FrameType != serverCodec.FrameType() {
			serverCodec.SetFrameType(conn.FrameType)
		}

		dispatched := false
		for _, origin := range [2]Origin{first, first.opposite()} {
			buf := &clientBuf
			srcCodec, destCodec := clientCodec, serverCodec
			destConn := upstreamConn
			if origin == OriginServer {
				buf = &serverBuf
				srcCodec, destCodec = serverCodec, clientCodec
				destConn = clientConn
			}

			payload, consumed, err := srcCodec.Decode(*buf)
			if err != nil {
				return DisconnectReason{Kind: DisconnectError, Err: fmt.Errorf("%s decode: %w", origin, err)}
			}
			if consumed > 0 {
				*buf = (*buf)[consumed:]
			}
			if payload != nil {
				if err := dispatch(origin, payload, destConn, destCodec); err != nil {
					return DisconnectReason{Kind: DisconnectError, Err: err}
				}
				dispatched = true
				first = origin.opposite()
				break
			}
		}
		if dispatched {
			// A handler may have replaced the FrameType; loop back so the
			// switch is propagated before any further decode or encode.
			continue
		}

		// Neither direction had a full frame already buffered: block,
		// fairly, on whichever side produces bytes (or terminates) first.
		select {
		case chunk := <-clientCh:
			if chunk.err != nil {
				if errors.Is(chunk.err, io.EOF) {
					return DisconnectReason{Kind: DisconnectClosed, Origin: OriginClient}
				}
				return DisconnectReason{Kind: DisconnectError, Err: chunk.err}
			}
			clientBuf = append(clientBuf, chunk.data...)
		case chunk := <-serverCh:
			if chunk.err != nil {
				if errors.Is(chunk.err, io.EOF) {
					return DisconnectReason{Kind: DisconnectClosed, Origin: OriginServer}
				}
				return DisconnectReason{Kind: DisconnectError, Err: chunk.err}
			}
			serverBuf = append(serverBuf, chunk.data...)
		}
	}
}
