// Command tibiaproxy runs the intercepting login and game proxies for
// the legacy client protocol. It binds two listeners — a login proxy and
// a game proxy — and injects the configured [Inject] endpoint (by default
// the game proxy's own listen address) into every CharacterList response
// so the client's game connection is steered back through this process. Each pipeline gets a
// DebugEventHandler plus its role-specific handshake handlers; both
// pipelines run concurrently and a shared signal channel drives graceful
// shutdown.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"tibiaproxy/internal/audit"
	"tibiaproxy/internal/config"
	"tibiaproxy/internal/frame"
	"tibiaproxy/internal/handshake"
	"tibiaproxy/internal/proxy"
	"tibiaproxy/internal/wire"
)

func main() {
	configPath := flag.String("config", "tibiaproxy.ini", "path to the INI configuration file")
	selftest := flag.Bool("selftest", false, "run the codec/crypto round-trip self-check and exit")
	flag.Parse()

	if *selftest {
		if err := runSelftest(); err != nil {
			log.Fatalf("[tibiaproxy] selftest failed: %v", err)
		}
		fmt.Println("[tibiaproxy] selftest passed")
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("[tibiaproxy] failed to load config: %v", err)
	}

	var auditSink *audit.Sink
	if cfg.Audit.Enabled {
		auditSink, err = audit.Open(audit.Config{
			Host:     cfg.Audit.Host,
			Port:     cfg.Audit.Port,
			User:     cfg.Audit.User,
			Password: cfg.Audit.Password,
			Database: cfg.Audit.Database,
		})
		if err != nil {
			log.Fatalf("[tibiaproxy] failed to open audit sink: %v", err)
		}
		defer auditSink.Close()
	}

	loginHandlers := []proxy.EventHandler{
		&handshake.DebugEventHandler{},
		&handshake.LoginHandshaker{},
		&handshake.GameServerInjector{
			Host: cfg.Inject.GameHost,
			Port: cfg.Inject.GamePort,
		},
	}
	if auditSink != nil {
		loginHandlers = append(loginHandlers, auditSink)
	}

	gameHandlers := []proxy.EventHandler{
		&handshake.DebugEventHandler{},
		&handshake.GameHandshaker{},
	}

	loginProxy := proxy.New("Login", cfg.Login.ListenAddr, cfg.Login.UpstreamAddr, loginHandlers...)
	gameProxy := proxy.New("Game", cfg.Game.ListenAddr, cfg.Game.UpstreamAddr, gameHandlers...)

	var wg sync.WaitGroup
	runErrs := make(chan error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := loginProxy.Run(); err != nil {
			runErrs <- fmt.Errorf("login proxy: %w", err)
		}
	}()
	go func() {
		defer wg.Done()
		if err := gameProxy.Run(); err != nil {
			runErrs <- fmt.Errorf("game proxy: %w", err)
		}
	}()

	fmt.Printf("[tibiaproxy] login proxy %s -> %s\n", cfg.Login.ListenAddr, cfg.Login.UpstreamAddr)
	fmt.Printf("[tibiaproxy] game proxy %s -> %s\n", cfg.Game.ListenAddr, cfg.Game.UpstreamAddr)
	fmt.Printf("[tibiaproxy] injecting game endpoint %s:%d into CharacterList responses\n", cfg.Inject.GameHost, cfg.Inject.GamePort)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sig:
		fmt.Println("\n[tibiaproxy] shutting down...")
		loginProxy.Stop()
		gameProxy.Stop()
	case err := <-runErrs:
		log.Printf("[tibiaproxy] %v", err)
		loginProxy.Stop()
		gameProxy.Stop()
		os.Exit(1)
	}

	wg.Wait()
}

// runSelftest exercises the RSA encrypt/decrypt round trip and a Raw/XTEA
// frame round trip without binding any listener. It exists to give an
// operator a quick way to confirm a build's codec and crypto constants are
// intact before pointing it at a real client; the proxy's own decode path
// never calls wire.RSAEncrypt, so this is the only place that round trip is
// exercised outside the test suite.
func runSelftest() error {
	block := make([]byte, wire.RSABlockSize)
	block[1] = 0x01 // keep the plaintext well below the modulus
	if err := wire.RSAEncrypt(block); err != nil {
		return fmt.Errorf("rsa encrypt: %w", err)
	}
	if err := wire.RSADecrypt(block); err != nil {
		return fmt.Errorf("rsa decrypt: %w", err)
	}

	key := wire.XTEAKey{0x1, 0x2, 0x3, 0x4}
	codec := frame.NewCodec()
	codec.SetFrameType(frame.XTEA(key))
	payload := []byte("selftest payload")
	encoded, err := codec.Encode(payload)
	if err != nil {
		return fmt.Errorf("frame encode: %w", err)
	}

	decodeCodec := frame.NewCodec()
	decodeCodec.SetFrameType(frame.XTEA(key))
	decoded, consumed, err := decodeCodec.Decode(encoded)
	if err != nil {
		return fmt.Errorf("frame decode: %w", err)
	}
	if consumed != len(encoded) || string(decoded) != string(payload) {
		return fmt.Errorf("frame round trip mismatch")
	}

	return nil
}
