package chathub_test

import "chatwave/backend/internal/models"

// MockClient implements chathub.Client; RecvChannel captures everything
// the hub sends to this connection.
type MockClient struct {
	userID      string
	RecvChannel chan models.ServerEvent
}

func newMockClient(userID string) *MockClient {
	return &MockClient{
		userID:      userID,
		RecvChannel: make(chan models.ServerEvent, 32),
	}
}

func (c *MockClient) GetUserID() string { return c.userID }

func (c *MockClient) SetUserID(id string) { c.userID = id }

func (c *MockClient) GetSendChannel() chan<- models.ServerEvent { return c.RecvChannel }

func (c *MockClient) Run() {
	// Not needed for testing
}

func (c *MockClient) Close() {
	close(c.RecvChannel)
}

// received drains everything currently queued for the client.
func (c *MockClient) received() []models.ServerEvent {
	var out []models.ServerEvent
	for {
		select {
		case ev, ok := <-c.RecvChannel:
			if !ok {
				return out
			}
			out = append(out, ev)
		default:
			return out
		}
	}
}
