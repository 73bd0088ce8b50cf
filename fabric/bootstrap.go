package fabric

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"os/exec"
	"strings"
	"time"
)

// Mode selects how the group's TCP connections are established (spec §4.1,
// §6 "mode-selection parameters").
type Mode int

const (
	// ModeCollocated assumes every rank is started by a common external
	// launcher that already told each process the host's address; every
	// non-host rank dials the host directly.
	ModeCollocated Mode = iota
	// ModeListen has the host listen for incoming worker connections.
	ModeListen
	// ModeConnect has the host actively dial each worker's known,
	// already-listening address.
	ModeConnect
	// ModeLaunch has the host execute a launch command per worker; the
	// launched process must print a port string on stdout, which the
	// host parses and connects to.
	ModeLaunch
)

// Config parameterizes Bootstrap. Only the fields relevant to Mode need be
// set; see spec §6 for the full device-configuration parameter list this is
// drawn from.
type Config struct {
	Mode Mode
	Rank int
	Size int

	// Host is the address workers dial in ModeCollocated and ModeListen.
	// The host itself does not read it: it listens on Port on every
	// interface.
	Host string
	// Port is the host's listen port and the workers' dial port in
	// ModeCollocated and ModeListen, and each worker's own listen port in
	// ModeConnect and ModeLaunch.
	Port int

	// WorkerAddrs is used by ModeConnect: one dial address per worker
	// rank (1..Size-1), in rank order.
	WorkerAddrs []string

	// LaunchCommand is executed once per worker rank in ModeLaunch. It
	// must print "PORT <n>\n" on stdout before blocking.
	LaunchCommand []string

	DialTimeout time.Duration
}

func (c Config) dialTimeout() time.Duration {
	if c.DialTimeout > 0 {
		return c.DialTimeout
	}
	return 10 * time.Second
}

// Bootstrap establishes this process's group connections per cfg.Mode and
// returns a ready-to-use Group: *Host if cfg.Rank == 0, *Worker otherwise.
func Bootstrap(ctx context.Context, cfg Config) (Group, error) {
	if cfg.Rank == 0 {
		return bootstrapHost(ctx, cfg)
	}
	return bootstrapWorker(ctx, cfg)
}

func bootstrapHost(ctx context.Context, cfg Config) (*Host, error) {
	peers := make(map[int]*peer, cfg.Size-1)

	switch cfg.Mode {
	case ModeListen, ModeCollocated:
		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
		if err != nil {
			return nil, fmt.Errorf("fabric: host listen: %w", err)
		}
		defer ln.Close()
		for len(peers) < cfg.Size-1 {
			conn, err := acceptWithContext(ctx, ln)
			if err != nil {
				return nil, err
			}
			rank, err := acceptHandshake(conn)
			if err != nil {
				conn.Close()
				return nil, err
			}
			peers[rank] = newPeer(conn, rank)
		}

	case ModeConnect:
		if len(cfg.WorkerAddrs) != cfg.Size-1 {
			return nil, fmt.Errorf("fabric: ModeConnect needs %d worker addresses, got %d", cfg.Size-1, len(cfg.WorkerAddrs))
		}
		for i, addr := range cfg.WorkerAddrs {
			rank := i + 1
			conn, err := net.DialTimeout("tcp", addr, cfg.dialTimeout())
			if err != nil {
				return nil, fmt.Errorf("fabric: dial worker %d at %s: %w", rank, addr, err)
			}
			if err := dialHandshake(conn, cfg.Rank); err != nil {
				conn.Close()
				return nil, err
			}
			peers[rank] = newPeer(conn, rank)
		}

	case ModeLaunch:
		for i := 0; i < cfg.Size-1; i++ {
			rank := i + 1
			addr, err := launchAndReadPort(cfg.LaunchCommand)
			if err != nil {
				return nil, fmt.Errorf("fabric: launch worker %d: %w", rank, err)
			}
			conn, err := net.DialTimeout("tcp", addr, cfg.dialTimeout())
			if err != nil {
				return nil, fmt.Errorf("fabric: dial launched worker %d at %s: %w", rank, addr, err)
			}
			if err := dialHandshake(conn, cfg.Rank); err != nil {
				conn.Close()
				return nil, err
			}
			peers[rank] = newPeer(conn, rank)
		}

	default:
		return nil, fmt.Errorf("fabric: unknown mode %d", cfg.Mode)
	}

	return &Host{size: cfg.Size, peers: peers}, nil
}

func bootstrapWorker(ctx context.Context, cfg Config) (*Worker, error) {
	switch cfg.Mode {
	case ModeListen, ModeCollocated:
		addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
		conn, err := net.DialTimeout("tcp", addr, cfg.dialTimeout())
		if err != nil {
			return nil, fmt.Errorf("fabric: worker dial host at %s: %w", addr, err)
		}
		if err := dialHandshake(conn, cfg.Rank); err != nil {
			conn.Close()
			return nil, err
		}
		return &Worker{rank: cfg.Rank, size: cfg.Size, hostPeer: newPeer(conn, 0)}, nil

	case ModeConnect, ModeLaunch:
		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
		if err != nil {
			return nil, fmt.Errorf("fabric: worker listen: %w", err)
		}
		// Launch mode expects this process to have already printed its
		// port on stdout before this call; ModeConnect callers bind a
		// fixed, pre-agreed port instead.
		defer ln.Close()
		conn, err := acceptWithContext(ctx, ln)
		if err != nil {
			return nil, err
		}
		if _, err := acceptHandshake(conn); err != nil {
			conn.Close()
			return nil, err
		}
		return &Worker{rank: cfg.Rank, size: cfg.Size, hostPeer: newPeer(conn, 0)}, nil

	default:
		return nil, fmt.Errorf("fabric: unknown mode %d", cfg.Mode)
	}
}

func acceptWithContext(ctx context.Context, ln net.Listener) (net.Conn, error) {
	type result struct {
		conn net.Conn
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		conn, err := ln.Accept()
		ch <- result{conn, err}
	}()
	select {
	case <-ctx.Done():
		ln.Close()
		return nil, ctx.Err()
	case r := <-ch:
		return r.conn, r.err
	}
}

// launchAndReadPort runs cmd and reads the first "PORT <n>" line from its
// stdout, per spec §4.1: "the host executes a user-supplied launch command,
// which must print a port string on its standard output."
func launchAndReadPort(cmd []string) (string, error) {
	if len(cmd) == 0 {
		return "", fmt.Errorf("fabric: empty launch command")
	}
	c := exec.Command(cmd[0], cmd[1:]...)
	stdout, err := c.StdoutPipe()
	if err != nil {
		return "", err
	}
	if err := c.Start(); err != nil {
		return "", err
	}
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if port, ok := strings.CutPrefix(line, "PORT "); ok {
			return fmt.Sprintf("127.0.0.1:%s", port), nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("fabric: launch command exited without printing a port")
}
