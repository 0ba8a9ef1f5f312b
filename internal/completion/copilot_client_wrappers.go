package completion

import (
	"context"

	copilot "github.com/github/copilot-sdk/go"
)

//go:generate go tool mockgen -source=copilot_client_wrappers.go -destination=copilot_client_mocks_test.go -package=completion

// copilotSession is the part of [*copilot.Session] a completion needs: one
// prompt, one reply, the event stream for debug logging, and release of the
// server-side session afterwards.
type copilotSession interface {
	On(handler copilot.SessionEventHandler) func()
	SendAndWait(ctx context.Context, options copilot.MessageOptions) (*copilot.SessionEvent, error)
	Disconnect() error
}

// copilotClient is the lifecycle of [*copilot.Client]. Each completion opens
// its own session so stages never share conversation history.
type copilotClient interface {
	CreateSession(ctx context.Context, config *copilot.SessionConfig) (copilotSession, error)
	Start(ctx context.Context) error
	Stop() error
}

var (
	_ copilotSession = (*copilot.Session)(nil)
	_ copilotClient  = sdkClient{}
)

func newCopilotClient(clientOptions *copilot.ClientOptions) copilotClient {
	return sdkClient{copilot.NewClient(clientOptions)}
}

// sdkClient narrows CreateSession to return the interface.
type sdkClient struct {
	*copilot.Client
}

func (c sdkClient) CreateSession(ctx context.Context, config *copilot.SessionConfig) (copilotSession, error) {
	s, err := c.Client.CreateSession(ctx, config)
	if err != nil {
		return nil, err
	}
	return s, nil
}
