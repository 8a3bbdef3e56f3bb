// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

// Package testredis is package for starting a redis test server.
package testredis

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

const (
	fallbackAddr = "localhost:6379"
	fallbackPort = 6379
)

// Server represents a redis server.
type Server interface {
	Addr() string
	// URL returns a redis:// address for the given database.
	URL(db int) string
	Close() error
}

func freeport() (addr string, port int) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fallbackAddr, fallbackPort
	}

	addr = listener.Addr().String()
	port = listener.Addr().(*net.TCPAddr).Port

	_ = listener.Close()
	return addr, port
}

// Start starts a redis-server when available, otherwise falls back to miniredis.
func Start(ctx context.Context) (Server, error) {
	server, err := Process(ctx)
	if err != nil {
		log.Println("failed to start redis-server: ", err)
		return Mini(ctx)
	}
	return server, err
}

// Process starts a redis-server test process.
func Process(ctx context.Context) (Server, error) {
	tmpdir, err := os.MkdirTemp("", "bloomgate-redis")
	if err != nil {
		return nil, err
	}

	// find a suitable port for listening
	addr, port := freeport()

	// write a configuration file, because redis doesn't support flags
	confpath := filepath.Join(tmpdir, "test.conf")
	arguments := []string{
		"daemonize no",
		"bind 127.0.0.1",
		"port " + strconv.Itoa(port),
		"timeout 0",
		"databases 2",
		"dbfilename dump.rdb",
		"dir " + tmpdir,
	}
	conf := strings.Join(arguments, "\n") + "\n"
	err = os.WriteFile(confpath, []byte(conf), 0755)
	if err != nil {
		return nil, err
	}

	// start the process
	cmd := exec.Command("redis-server", confpath)
	read, write, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	cmd.Stdout = write
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	cleanup := func() {
		processgroup(cmd)
		_ = write.Close()
		_ = read.Close()
		_ = os.RemoveAll(tmpdir)
	}

	// wait for redis to become ready
	waitForReady := make(chan struct{})
	go func() {
		// wait for the message that looks like
		//   "The server is now ready to accept connections on port 6379"
		scanner := bufio.NewScanner(read)
		for scanner.Scan() {
			line := scanner.Text()
			if strings.Contains(line, "eady to accept") {
				break
			}
		}
		close(waitForReady)
		_, _ = io.Copy(io.Discard, read)
	}()

	select {
	case <-waitForReady:
	case <-time.After(3 * time.Second):
		cleanup()
		return nil, errors.New("redis timeout")
	}

	// test whether we can actually connect
	if err := pingServer(ctx, addr); err != nil {
		cleanup()
		return nil, err
	}

	return &process{addr: addr, cleanup: cleanup}, nil
}

func processgroup(cmd *exec.Cmd) {
	_ = cmd.Process.Kill()
	_ = cmd.Wait()
}

type process struct {
	addr  string
	close sync.Once

	cleanup func()
}

func (process *process) Addr() string { return process.addr }

func (process *process) URL(db int) string {
	return "redis://" + process.addr + "?db=" + strconv.Itoa(db)
}

func (process *process) Close() error {
	process.close.Do(process.cleanup)
	return nil
}

func pingServer(ctx context.Context, addr string) error {
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 1})
	defer func() { _ = client.Close() }()
	return client.Ping(ctx).Err()
}

// MiniServer is a miniredis server.
//
// Unlike a real redis-server it allows tests to inject failures with SetError.
type MiniServer struct {
	*miniredis.Miniredis
}

// Mini starts miniredis server.
func Mini(ctx context.Context) (*MiniServer, error) {
	server, err := miniredis.Run()
	if err != nil {
		return nil, err
	}

	return &MiniServer{server}, nil
}

// URL returns a redis:// address for the given database.
func (server *MiniServer) URL(db int) string {
	return "redis://" + server.Addr() + "?db=" + strconv.Itoa(db)
}

// Close closes the underlying miniredis server.
func (server *MiniServer) Close() error {
	server.Miniredis.Close()
	return nil
}
