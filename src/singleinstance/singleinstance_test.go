package singleinstance

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"
)

// useFreePortRange points the range at a single port that is free right now.
func useFreePortRange(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("loopback unavailable: %v", err)
	}
	port := l.Addr().(*net.TCPAddr).Port
	l.Close()
	t.Setenv(PortStartEnvVar, fmt.Sprint(port))
	t.Setenv(PortEndEnvVar, fmt.Sprint(port))
	return port
}

func TestServerClientRoundTrip(t *testing.T) {
	useFreePortRange(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	srv := NewServer()
	if err := srv.Start(ctx); err != nil {
		t.Skipf("tcp listener unavailable in this environment: %v", err)
	}
	defer srv.Close()

	if _, ok := DetectResidentPort(ctx); !ok {
		t.Fatal("expected resident to answer PING")
	}

	client := NewClient()
	type reply struct {
		delegated bool
		text      string
		err       error
	}
	replyCh := make(chan reply, 1)
	go func() {
		d, text, err := client.Send(ctx, CommandToggle)
		replyCh <- reply{d, text, err}
	}()

	conn, err := srv.Next(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if conn.Request().Command != CommandToggle {
		t.Errorf("expected TOGGLE, got %q", conn.Request().Command)
	}
	if err := conn.RespondSuccess("Capturing\n"); err != nil {
		t.Fatalf("respond: %v", err)
	}
	conn.Close()

	r := <-replyCh
	if r.err != nil || !r.delegated {
		t.Fatalf("expected delegation, got %+v", r)
	}
	if r.text != "Capturing" {
		t.Fatalf("expected status text, got %q", r.text)
	}
}

func TestClientErrorReply(t *testing.T) {
	useFreePortRange(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	srv := NewServer()
	if err := srv.Start(ctx); err != nil {
		t.Skipf("tcp listener unavailable in this environment: %v", err)
	}
	defer srv.Close()

	go func() {
		conn, err := srv.Next(ctx)
		if err != nil {
			return
		}
		_ = conn.RespondError("no window selected")
		conn.Close()
	}()

	delegated, _, err := NewClient().Send(ctx, CommandStart)
	if !delegated {
		t.Fatal("expected delegation")
	}
	if err == nil || err.Error() != "no window selected" {
		t.Fatalf("expected resident error, got %v", err)
	}
}

func TestSendWithoutResident(t *testing.T) {
	useFreePortRange(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	delegated, _, err := NewClient().Send(ctx, CommandStatus)
	if err != nil || delegated {
		t.Fatalf("expected no delegation and no error, got delegated=%v err=%v", delegated, err)
	}
}

func TestSecondServerFails(t *testing.T) {
	useFreePortRange(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := NewServer()
	if err := first.Start(ctx); err != nil {
		t.Skipf("tcp listener unavailable in this environment: %v", err)
	}
	defer first.Close()

	if err := NewServer().Start(ctx); err == nil {
		t.Fatal("expected second server to fail binding the same port")
	}
}

func TestParseCommand(t *testing.T) {
	for in, want := range map[string]Command{"start": CommandStart, " STOP\n": CommandStop, "Toggle": CommandToggle, "status": CommandStatus} {
		got, err := ParseCommand(in)
		if err != nil || got != want {
			t.Errorf("ParseCommand(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseCommand("quit"); err == nil {
		t.Error("expected error for unknown command")
	}
}

func TestPortRange(t *testing.T) {
	t.Setenv(PortStartEnvVar, "80")
	t.Setenv(PortEndEnvVar, "70000")
	start, end := PortRange()
	if start != 1024 || end != 65535 {
		t.Fatalf("expected clamped range, got %d-%d", start, end)
	}

	t.Setenv(PortStartEnvVar, "50010")
	t.Setenv(PortEndEnvVar, "50000")
	start, end = PortRange()
	if start != 50000 || end != 50010 {
		t.Fatalf("expected swapped range, got %d-%d", start, end)
	}

	t.Setenv(PortStartEnvVar, "abc")
	t.Setenv(PortEndEnvVar, "")
	start, end = PortRange()
	if start != defaultPortStart || end != defaultPortEnd {
		t.Fatalf("expected defaults, got %d-%d", start, end)
	}
}
