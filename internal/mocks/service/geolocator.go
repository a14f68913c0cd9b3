package service

import (
	"context"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/mock"
)

// MockGeolocator is a mock of service.Geolocator.
type MockGeolocator struct {
	mock.Mock
}

type MockGeolocator_Expecter struct {
	mock *mock.Mock
}

func (_m *MockGeolocator) EXPECT() *MockGeolocator_Expecter {
	return &MockGeolocator_Expecter{mock: &_m.Mock}
}

// Locate provides a mock function with given fields: ctx
func (_m *MockGeolocator) Locate(ctx context.Context) (orb.Point, error) {
	ret := _m.Called(ctx)

	if rf, ok := ret.Get(0).(func(context.Context) (orb.Point, error)); ok {
		return rf(ctx)
	}

	return ret.Get(0).(orb.Point), ret.Error(1)
}

// MockGeolocator_Locate_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Locate'
type MockGeolocator_Locate_Call struct {
	*mock.Call
}

// Locate is a helper method to define mock.On call
func (_e *MockGeolocator_Expecter) Locate(ctx interface{}) *MockGeolocator_Locate_Call {
	return &MockGeolocator_Locate_Call{Call: _e.mock.On("Locate", ctx)}
}

func (_c *MockGeolocator_Locate_Call) Return(p orb.Point, err error) *MockGeolocator_Locate_Call {
	_c.Call.Return(p, err)

	return _c
}

func (_c *MockGeolocator_Locate_Call) RunAndReturn(run func(context.Context) (orb.Point, error)) *MockGeolocator_Locate_Call {
	_c.Call.Return(run)

	return _c
}

// Fallback provides a mock function with no fields
func (_m *MockGeolocator) Fallback() orb.Point {
	ret := _m.Called()

	return ret.Get(0).(orb.Point)
}

// MockGeolocator_Fallback_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Fallback'
type MockGeolocator_Fallback_Call struct {
	*mock.Call
}

// Fallback is a helper method to define mock.On call
func (_e *MockGeolocator_Expecter) Fallback() *MockGeolocator_Fallback_Call {
	return &MockGeolocator_Fallback_Call{Call: _e.mock.On("Fallback")}
}

func (_c *MockGeolocator_Fallback_Call) Return(p orb.Point) *MockGeolocator_Fallback_Call {
	_c.Call.Return(p)

	return _c
}

// NewMockGeolocator creates a new instance of MockGeolocator. It also
// registers a cleanup function to assert the mocks expectations.
func NewMockGeolocator(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockGeolocator {
	m := &MockGeolocator{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
