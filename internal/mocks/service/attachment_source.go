package service

import (
	"context"

	"pickup/internal/domain/service"

	"github.com/stretchr/testify/mock"
)

// MockAttachmentSource is a mock of service.AttachmentSource.
type MockAttachmentSource struct {
	mock.Mock
}

type MockAttachmentSource_Expecter struct {
	mock *mock.Mock
}

func (_m *MockAttachmentSource) EXPECT() *MockAttachmentSource_Expecter {
	return &MockAttachmentSource_Expecter{mock: &_m.Mock}
}

// Open provides a mock function with given fields: ctx, location
func (_m *MockAttachmentSource) Open(ctx context.Context, location string) (*service.Attachment, error) {
	ret := _m.Called(ctx, location)

	var r0 *service.Attachment
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*service.Attachment)
	}

	return r0, ret.Error(1)
}

// MockAttachmentSource_Open_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Open'
type MockAttachmentSource_Open_Call struct {
	*mock.Call
}

// Open is a helper method to define mock.On call
func (_e *MockAttachmentSource_Expecter) Open(ctx interface{}, location interface{}) *MockAttachmentSource_Open_Call {
	return &MockAttachmentSource_Open_Call{Call: _e.mock.On("Open", ctx, location)}
}

func (_c *MockAttachmentSource_Open_Call) Return(a *service.Attachment, err error) *MockAttachmentSource_Open_Call {
	_c.Call.Return(a, err)

	return _c
}

// NewMockAttachmentSource creates a new instance of MockAttachmentSource. It
// also registers a cleanup function to assert the mocks expectations.
func NewMockAttachmentSource(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockAttachmentSource {
	m := &MockAttachmentSource{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
