package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/codetrail/internal/sandbox"
)

// MockExecutor is a mock implementation of sandbox.Executor
type MockExecutor struct {
	mock.Mock
}

func (m *MockExecutor) Execute(ctx context.Context, req sandbox.Request) sandbox.Result {
	args := m.Called(ctx, req)
	return args.Get(0).(sandbox.Result)
}
