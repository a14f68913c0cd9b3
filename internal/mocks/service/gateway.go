package service

import (
	"context"

	"pickup/internal/domain/service"

	"github.com/stretchr/testify/mock"
)

// MockGateway is a mock of service.Gateway.
type MockGateway struct {
	mock.Mock
}

type MockGateway_Expecter struct {
	mock *mock.Mock
}

func (_m *MockGateway) EXPECT() *MockGateway_Expecter {
	return &MockGateway_Expecter{mock: &_m.Mock}
}

// Do provides a mock function with given fields: ctx, req
func (_m *MockGateway) Do(ctx context.Context, req *service.Request) (*service.Response, error) {
	ret := _m.Called(ctx, req)

	if rf, ok := ret.Get(0).(func(context.Context, *service.Request) (*service.Response, error)); ok {
		return rf(ctx, req)
	}

	var r0 *service.Response
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*service.Response)
	}

	return r0, ret.Error(1)
}

// MockGateway_Do_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Do'
type MockGateway_Do_Call struct {
	*mock.Call
}

// Do is a helper method to define mock.On call
func (_e *MockGateway_Expecter) Do(ctx interface{}, req interface{}) *MockGateway_Do_Call {
	return &MockGateway_Do_Call{Call: _e.mock.On("Do", ctx, req)}
}

func (_c *MockGateway_Do_Call) Run(run func(ctx context.Context, req *service.Request)) *MockGateway_Do_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(*service.Request))
	})

	return _c
}

func (_c *MockGateway_Do_Call) Return(resp *service.Response, err error) *MockGateway_Do_Call {
	_c.Call.Return(resp, err)

	return _c
}

func (_c *MockGateway_Do_Call) RunAndReturn(run func(context.Context, *service.Request) (*service.Response, error)) *MockGateway_Do_Call {
	_c.Call.Return(run)

	return _c
}

// NewMockGateway creates a new instance of MockGateway. It also registers a
// cleanup function to assert the mocks expectations.
func NewMockGateway(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockGateway {
	m := &MockGateway{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
