package judge

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Name() string {
	return "fake"
}

func (m *MockProvider) Complete(ctx context.Context, req Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func drawing(playerID, name string, size int) Entry {
	image := make([]byte, size)
	for i := range image {
		image[i] = byte(i % 251)
	}
	return Entry{PlayerID: playerID, Name: name, MIME: "image/png", Image: image}
}

func imageCount(n int) any {
	return mock.MatchedBy(func(req Request) bool {
		return len(req.Images) == n
	})
}
