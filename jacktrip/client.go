// SPDX-License-Identifier: EPL-2.0

package jacktrip

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Config describes one client link.
type Config struct {
	Server      string // hub server host
	ServerPort  int    // TCP handshake port, DefaultServerPort when zero
	LocalPort   int    // UDP receive port; zero picks a free port
	Channels    int
	BlockSize   int
	SampleRate  int
	IdleTimeout time.Duration
	// QueueDepth is the number of blocks buffered in each direction.
	QueueDepth int
}

// Client is a JackTrip link and an audio graph node with Channels inputs
// and outputs. Received blocks come out of its outputs; whatever reaches
// its inputs is sent to the server.
type Client struct {
	cfg      Config
	rateCode uint8

	mtx     sync.Mutex // serialises Connect and Close
	session atomic.Pointer[session]

	rx     chan [][]float32
	rxFree chan [][]float32
	tx     chan []byte
	txFree chan []byte

	seq     uint16
	started time.Time

	stats stats
}

type session struct {
	conn   *net.UDPConn
	remote *net.UDPAddr
	lastRx atomic.Int64
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(cfg Config) (*Client, error) {
	if cfg.ServerPort == 0 {
		cfg.ServerPort = DefaultServerPort
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.QueueDepth <= 0 {
		cfg.QueueDepth = 4
	}
	if cfg.Channels <= 0 || cfg.Channels > 255 {
		return nil, fmt.Errorf("jacktrip: invalid channel count %d", cfg.Channels)
	}
	if cfg.BlockSize <= 0 || cfg.BlockSize > 0xffff {
		return nil, fmt.Errorf("jacktrip: invalid block size %d", cfg.BlockSize)
	}
	code, err := RateCode(cfg.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("jacktrip: %w", err)
	}

	c := &Client{
		cfg:      cfg,
		rateCode: code,
		rx:       make(chan [][]float32, cfg.QueueDepth+1),
		rxFree:   make(chan [][]float32, cfg.QueueDepth+1),
		tx:       make(chan []byte, cfg.QueueDepth+1),
		txFree:   make(chan []byte, cfg.QueueDepth+1),
		started:  time.Now(),
	}
	for range cfg.QueueDepth + 1 {
		block := make([][]float32, cfg.Channels)
		for i := range block {
			block[i] = make([]float32, cfg.BlockSize)
		}
		c.rxFree <- block
		c.txFree <- make([]byte, PacketSize(cfg.Channels, cfg.BlockSize))
	}

	return c, nil
}

func (c *Client) Channels() int { return c.cfg.Channels }

// Connect exchanges UDP ports with the server over TCP and starts
// streaming. The whole exchange is bounded by timeout.
func (c *Client) Connect(ctx context.Context, timeout time.Duration) error {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	c.stop(false)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: c.cfg.LocalPort})
	if err != nil {
		return fmt.Errorf("jacktrip: listen udp :%d: %w", c.cfg.LocalPort, err)
	}
	local := conn.LocalAddr().(*net.UDPAddr).Port

	remote, err := c.handshake(ctx, local)
	if err != nil {
		conn.Close()
		return err
	}

	sctx, scancel := context.WithCancel(context.Background())
	s := &session{conn: conn, remote: remote, cancel: scancel}
	s.lastRx.Store(time.Now().UnixNano())
	c.drain()
	c.session.Store(s)

	s.wg.Add(2)
	go c.receive(sctx, s)
	go c.send(sctx, s)

	logrus.WithFields(logrus.Fields{
		"function":   "Client.Connect",
		"server":     remote.String(),
		"local_port": local,
	}).Info("JackTrip link connected")

	return nil
}

func (c *Client) handshake(ctx context.Context, localPort int) (*net.UDPAddr, error) {
	var d net.Dialer
	addr := net.JoinHostPort(c.cfg.Server, strconv.Itoa(c.cfg.ServerPort))
	tcp, err := d.DialContext(ctx, "tcp4", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %w", ErrHandshake, addr, err)
	}
	defer tcp.Close()

	if dl, ok := ctx.Deadline(); ok {
		_ = tcp.SetDeadline(dl)
	}

	if err := binary.Write(tcp, binary.LittleEndian, int32(localPort)); err != nil {
		return nil, fmt.Errorf("%w: send port: %w", ErrHandshake, err)
	}
	var port int32
	if err := binary.Read(tcp, binary.LittleEndian, &port); err != nil {
		return nil, fmt.Errorf("%w: read port: %w", ErrHandshake, err)
	}
	if port <= 0 || port > 0xffff {
		return nil, fmt.Errorf("%w: server port %d", ErrHandshake, port)
	}

	return &net.UDPAddr{IP: tcp.RemoteAddr().(*net.TCPAddr).IP, Port: int(port)}, nil
}

// Connected reports whether a session is up and a packet arrived within the
// idle timeout. An idle session is torn down.
func (c *Client) Connected() bool {
	s := c.session.Load()
	if s == nil {
		return false
	}

	idle := time.Since(time.Unix(0, s.lastRx.Load()))
	if idle < c.cfg.IdleTimeout {
		return true
	}

	logrus.WithFields(logrus.Fields{
		"function": "Client.Connected",
		"idle":     idle.String(),
	}).Warn("JackTrip link timed out")

	c.mtx.Lock()
	if c.session.Load() == s {
		c.stop(false)
	}
	c.mtx.Unlock()

	return false
}

// Close sends the exit packet and stops streaming.
func (c *Client) Close() error {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	c.stop(true)

	return nil
}

func (c *Client) stop(sayGoodbye bool) {
	s := c.session.Swap(nil)
	if s == nil {
		return
	}

	if sayGoodbye {
		if _, err := s.conn.WriteToUDP(exitPacket, s.remote); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Client.Close",
				"error":    err.Error(),
			}).Debug("Failed to send exit packet")
		}
	}
	s.cancel()
	s.conn.Close()
	s.wg.Wait()
}

// drain returns queued blocks to their free lists.
func (c *Client) drain() {
	for {
		select {
		case b := <-c.rx:
			c.rxFree <- b
		case p := <-c.tx:
			c.txFree <- p
		default:
			return
		}
	}
}

func (c *Client) receive(ctx context.Context, s *session) {
	defer s.wg.Done()

	buf := make([]byte, 65536)
	for ctx.Err() == nil {
		_ = s.conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
		n, _, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) || ctx.Err() != nil {
				continue
			}
			logrus.WithFields(logrus.Fields{
				"function": "Client.receive",
				"error":    err.Error(),
			}).Warn("JackTrip receive failed")
			return
		}

		pkt := buf[:n]
		if IsExitPacket(pkt) {
			logrus.WithFields(logrus.Fields{
				"function": "Client.receive",
			}).Info("JackTrip server ended the session")
			s.lastRx.Store(0)
			return
		}
		s.lastRx.Store(time.Now().UnixNano())
		c.accept(pkt)
	}
}

func (c *Client) accept(pkt []byte) {
	var block [][]float32
	select {
	case block = <-c.rxFree:
	default:
		// renderer is behind; reuse the oldest queued block
		select {
		case block = <-c.rx:
			c.stats.overruns.Add(1)
		default:
			c.stats.dropped.Add(1)
			return
		}
	}

	if _, err := DecodePacket(pkt, block); err != nil {
		c.rxFree <- block
		c.stats.dropped.Add(1)
		logrus.WithFields(logrus.Fields{
			"function": "Client.receive",
			"size":     len(pkt),
			"error":    err.Error(),
		}).Debug("Dropped JackTrip packet")
		return
	}

	c.stats.received.Add(1)
	c.stats.measure(block)
	c.rx <- block
}

func (c *Client) send(ctx context.Context, s *session) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case pkt := <-c.tx:
			if _, err := s.conn.WriteToUDP(pkt, s.remote); err != nil {
				logrus.WithFields(logrus.Fields{
					"function": "Client.send",
					"error":    err.Error(),
				}).Debug("JackTrip send failed")
			} else {
				c.stats.sent.Add(1)
			}
			c.txFree <- pkt
		}
	}
}

// Process emits the oldest received block, or silence on underrun, and
// queues the inputs for sending. It never blocks.
func (c *Client) Process(in, out [][]float32) {
	if c.session.Load() == nil {
		return
	}

	select {
	case block := <-c.rx:
		for i := range out {
			if i < len(block) {
				copy(out[i], block[i])
			}
		}
		c.rxFree <- block
	default:
		c.stats.underruns.Add(1)
	}

	select {
	case pkt := <-c.txFree:
		c.seq++
		h := Header{
			Timestamp:     uint64(time.Since(c.started).Microseconds()),
			Seq:           c.seq,
			RateCode:      c.rateCode,
			BitResolution: bitResolution,
			InChannels:    uint8(c.cfg.Channels),
			OutChannels:   uint8(c.cfg.Channels),
		}
		EncodePacket(pkt, h, in)
		c.tx <- pkt
	default:
		c.stats.dropped.Add(1)
	}
}
