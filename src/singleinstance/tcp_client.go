package singleinstance

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"time"
)

type tcpClient struct{}

func newTcpClient() Client { return &tcpClient{} }

func (c *tcpClient) Send(ctx context.Context, cmd Command) (bool, string, error) {
	deadline := 2 * time.Second
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 {
			deadline = d
		}
	}
	port, ok := DetectResidentPort(ctx)
	if !ok {
		return false, "", nil
	}

	addr := net.JoinHostPort(residentHost, strconv.Itoa(port))
	conn, err := net.DialTimeout("tcp", addr, deadline)
	if err != nil {
		return false, "", nil
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(deadline))

	w := bufio.NewWriter(conn)
	if _, err := w.WriteString(string(cmd) + "\n"); err != nil {
		return true, "", err
	}
	if err := w.Flush(); err != nil {
		return true, "", err
	}

	br := bufio.NewReader(conn)
	status, err := br.ReadString('\n')
	if err != nil {
		return true, "", err
	}
	body, _ := io.ReadAll(br)
	switch status {
	case successResponse:
		return true, string(body), nil
	case errorResponse:
		return true, "", errors.New(string(body))
	}
	return true, "", errors.New("unexpected response from resident: " + status)
}
