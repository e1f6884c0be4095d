package gps

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// ServiceConfig controls the background acquisition worker.
type ServiceConfig struct {
	// Addr is the gpsd endpoint. Empty uses DefaultGpsdAddr.
	Addr string

	// ReconnectDelay is the initial backoff after a failed connection; it
	// doubles up to ReconnectMax.
	ReconnectDelay time.Duration
	ReconnectMax   time.Duration
}

// Update is one position report (or failure) delivered to the consumer.
type Update struct {
	Position Position
	Err      error
}

// Service owns a long-lived gpsd stream on a background goroutine and hands
// completed Position values to the consumer over a channel. Only the worker
// touches the connection; consumers use Updates and Last.
type Service struct {
	cfg ServiceConfig

	updates chan Update
	last    atomic.Value // Position

	mu     sync.Mutex
	cancel context.CancelFunc
	conn   io.Closer
	wg     sync.WaitGroup
}

func NewService(cfg ServiceConfig) *Service {
	if strings.TrimSpace(cfg.Addr) == "" {
		cfg.Addr = DefaultGpsdAddr
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = 250 * time.Millisecond
	}
	if cfg.ReconnectMax <= 0 {
		cfg.ReconnectMax = 10 * time.Second
	}
	return &Service{cfg: cfg, updates: make(chan Update, 16)}
}

// Updates is the single-consumer stream of position reports. Slow consumers
// lose older updates rather than blocking the worker.
func (s *Service) Updates() <-chan Update {
	return s.updates
}

// Last returns the most recent fixed position, if any.
func (s *Service) Last() (Position, bool) {
	v := s.last.Load()
	if v == nil {
		return Position{}, false
	}
	return v.(Position), true
}

// Start launches the worker. Safe to call once; subsequent calls are no-ops.
func (s *Service) Start(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("ctx is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return nil
	}
	childCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.run(childCtx)
	return nil
}

func (s *Service) run(ctx context.Context) {
	defer s.wg.Done()

	backoff := s.cfg.ReconnectDelay
	for {
		if ctx.Err() != nil {
			return
		}

		d := &net.Dialer{Timeout: 2 * time.Second}
		conn, err := d.DialContext(ctx, "tcp", s.cfg.Addr)
		if err != nil {
			s.publish(Update{Err: fmt.Errorf("%w: dial %s: %v", ErrUnavailable, s.cfg.Addr, err)})
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < s.cfg.ReconnectMax {
				backoff *= 2
			}
			continue
		}
		backoff = s.cfg.ReconnectDelay

		s.mu.Lock()
		// Swap the closer so Close can interrupt an active read.
		s.conn = conn
		s.mu.Unlock()

		s.stream(ctx, conn)
		_ = conn.Close()
	}
}

// stream consumes one gpsd connection until it ends or ctx is canceled.
func (s *Service) stream(ctx context.Context, conn net.Conn) {
	if _, err := conn.Write([]byte("?WATCH={\"enable\":true,\"json\":true,\"scaled\":true}\n")); err != nil {
		s.publish(Update{Err: fmt.Errorf("%w: watch failed: %v", ErrUnavailable, err)})
		return
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), 256*1024)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		rep, ok, perr := parseReport(line)
		if perr != nil || !ok {
			continue
		}
		if pos, fixed := rep.position(); fixed {
			s.last.Store(pos)
			s.publish(Update{Position: pos})
		}
	}
	if ctx.Err() == nil {
		err := scanner.Err()
		if err == nil {
			err = io.EOF
		}
		s.publish(Update{Err: fmt.Errorf("%w: gpsd stream ended: %v", ErrUnavailable, err)})
	}
}

func (s *Service) publish(u Update) {
	select {
	case s.updates <- u:
	default:
		// Drop the oldest update to keep the newest flowing.
		select {
		case <-s.updates:
		default:
		}
		select {
		case s.updates <- u:
		default:
		}
	}
}

// Close stops the worker, releases the connection, and waits for the
// goroutine to exit. Safe to call multiple times.
func (s *Service) Close() {
	s.mu.Lock()
	cancel := s.cancel
	conn := s.conn
	s.cancel = nil
	s.conn = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			log.Printf("gps: close: %v", err)
		}
	}
	s.wg.Wait()
}
