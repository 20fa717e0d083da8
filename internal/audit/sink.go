// Package audit implements an optional MySQL-backed EventHandler that
// records one row per completed login handshake. The core proxy has no
// persisted state; this sink is entirely optional and, when no DSN is
// configured, is a no-op that never touches the network.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"tibiaproxy/internal/packet"
	"tibiaproxy/internal/proxy"
)

// Sink records completed AccountLogin handshakes to a MySQL table. The
// zero value is a valid, inert Sink (every method is a no-op) so a
// Pipeline's handler list can always include one unconditionally.
type Sink struct {
	db *sql.DB
}

// Config describes how to reach the audit database.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// Open establishes the MySQL connection pool and verifies it with a ping
// so misconfiguration fails at startup rather than on the first login.
func Open(cfg Config) (*Sink, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("audit: open: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("audit: ping: %w", err)
	}

	log.Printf("[Audit] connected to MySQL at %s:%d/%s", cfg.Host, cfg.Port, cfg.Database)
	return &Sink{db: db}, nil
}

// Close releases the connection pool.
func (s *Sink) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Sink) OnNewConnection(c *proxy.Connection) error { return nil }
func (s *Sink) OnReady(c *proxy.Connection) error         { return nil }

// OnFrame records the account name the moment an AccountLogin frame is
// observed on a login connection; it never rewrites the frame. The insert
// runs on its own goroutine, so the forwarding loop never waits on the
// database.
func (s *Sink) OnFrame(c *proxy.Connection, origin proxy.Origin, payload []byte) ([]byte, error) {
	if s == nil || s.db == nil {
		return payload, nil
	}
	if origin != proxy.OriginClient || len(payload) == 0 || payload[0] != packet.ClientAccountLogin {
		return payload, nil
	}

	login, err := packet.ParseAccountLogin(payload[1:])
	if err != nil {
		// Not our job to fail the connection over a parse error another
		// handler will already have reported.
		return payload, nil
	}

	id, remoteAddr, loggedAt := c.ID, c.ClientAddr.String(), time.Now().UTC()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_, execErr := s.db.ExecContext(ctx,
			`INSERT INTO login_audit (connection_id, remote_addr, account_name, logged_at) VALUES (?, ?, ?, ?)`,
			id, remoteAddr, login.AccountName, loggedAt)
		if execErr != nil {
			log.Printf("[Audit] #%d failed to record login: %v", id, execErr)
		}
	}()

	return payload, nil
}

func (s *Sink) OnDisconnect(c *proxy.Connection, reason proxy.DisconnectReason) {}
