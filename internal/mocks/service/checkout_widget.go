package service

import (
	"context"

	"pickup/internal/domain/entity"
	"pickup/internal/domain/service"

	"github.com/stretchr/testify/mock"
)

// MockCheckoutWidget is a mock of service.CheckoutWidget.
type MockCheckoutWidget struct {
	mock.Mock
}

type MockCheckoutWidget_Expecter struct {
	mock *mock.Mock
}

func (_m *MockCheckoutWidget) EXPECT() *MockCheckoutWidget_Expecter {
	return &MockCheckoutWidget_Expecter{mock: &_m.Mock}
}

// Open provides a mock function with given fields: ctx, req
func (_m *MockCheckoutWidget) Open(ctx context.Context, req *service.CheckoutRequest) (*entity.CheckoutProof, error) {
	ret := _m.Called(ctx, req)

	if rf, ok := ret.Get(0).(func(context.Context, *service.CheckoutRequest) (*entity.CheckoutProof, error)); ok {
		return rf(ctx, req)
	}

	var r0 *entity.CheckoutProof
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*entity.CheckoutProof)
	}

	return r0, ret.Error(1)
}

// MockCheckoutWidget_Open_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Open'
type MockCheckoutWidget_Open_Call struct {
	*mock.Call
}

// Open is a helper method to define mock.On call
func (_e *MockCheckoutWidget_Expecter) Open(ctx interface{}, req interface{}) *MockCheckoutWidget_Open_Call {
	return &MockCheckoutWidget_Open_Call{Call: _e.mock.On("Open", ctx, req)}
}

func (_c *MockCheckoutWidget_Open_Call) Run(run func(ctx context.Context, req *service.CheckoutRequest)) *MockCheckoutWidget_Open_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(*service.CheckoutRequest))
	})

	return _c
}

func (_c *MockCheckoutWidget_Open_Call) Return(proof *entity.CheckoutProof, err error) *MockCheckoutWidget_Open_Call {
	_c.Call.Return(proof, err)

	return _c
}

func (_c *MockCheckoutWidget_Open_Call) RunAndReturn(run func(context.Context, *service.CheckoutRequest) (*entity.CheckoutProof, error)) *MockCheckoutWidget_Open_Call {
	_c.Call.Return(run)

	return _c
}

// NewMockCheckoutWidget creates a new instance of MockCheckoutWidget. It also
// registers a cleanup function to assert the mocks expectations.
func NewMockCheckoutWidget(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockCheckoutWidget {
	m := &MockCheckoutWidget{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
