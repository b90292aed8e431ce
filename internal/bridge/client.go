package bridge

import (
	"bufio"
	"encoding/json"
	"net"
	"time"

	"github.com/pkg/errors"
)

// Client sends requests to a running bridge server.
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for socketPath.
func NewClient(socketPath string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		socketPath: socketPath,
		timeout:    timeout,
	}
}

var typingCommands = map[string]bool{
	CommandSendString: true,
	CommandPostString: true,
}

// Send delivers req and returns the raw response.
func (c *Client) Send(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to bridge (is `deskbridge serve` running?)")
	}
	defer conn.Close()

	conn.SetWriteDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal request")
	}
	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, errors.Wrap(err, "failed to send request")
	}

	// Typing commands run for as long as the text takes, so only bounded
	// commands get a read deadline.
	if !typingCommands[req.Command] {
		conn.SetReadDeadline(time.Now().Add(c.timeout))
	}
	respData, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response")
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, errors.Wrap(err, "failed to parse response")
	}
	return &resp, nil
}

// Call runs command with args and returns the response data. ERROR responses
// come back as *RemoteError.
func (c *Client) Call(command string, args ...interface{}) (json.RawMessage, error) {
	req, err := NewRequest(command, args...)
	if err != nil {
		return nil, err
	}
	resp, err := c.Send(req)
	if err != nil {
		return nil, err
	}
	if resp.Status != StatusOK {
		return nil, &RemoteError{Kind: resp.ErrorKind, Message: resp.Error}
	}
	return resp.Data, nil
}

// CallInto runs command and decodes the response data into out.
func (c *Client) CallInto(out interface{}, command string, args ...interface{}) error {
	data, err := c.Call(command, args...)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "failed to decode %s result", command)
	}
	return nil
}

// Ping checks if the server is running
func (c *Client) Ping() error {
	_, err := c.Call(CommandPing)
	return err
}
