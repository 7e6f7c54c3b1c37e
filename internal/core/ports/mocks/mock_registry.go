// Code generated by MockGen. DO NOT EDIT.
// Source: registry.go
//
// Generated by this command:
//
//	mockgen -source=registry.go -destination=mocks/mock_registry.go -package=mocks
//

// Package mocks is a generated GoMock package.
package mocks

import (
	context "context"
	reflect "reflect"

	ports "go.trai.ch/rsx/internal/core/ports"
	gomock "go.uber.org/mock/gomock"
)

// MockRegistry is a mock of Registry interface.
type MockRegistry struct {
	ctrl     *gomock.Controller
	recorder *MockRegistryMockRecorder
	isgomock struct{}
}

// MockRegistryMockRecorder is the mock recorder for MockRegistry.
type MockRegistryMockRecorder struct {
	mock *MockRegistry
}

// NewMockRegistry creates a new mock instance.
func NewMockRegistry(ctrl *gomock.Controller) *MockRegistry {
	mock := &MockRegistry{ctrl: ctrl}
	mock.recorder = &MockRegistryMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockRegistry) EXPECT() *MockRegistryMockRecorder {
	return m.recorder
}

// Releases mocks base method.
func (m *MockRegistry) Releases(ctx context.Context, name string) ([]ports.Release, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Releases", ctx, name)
	ret0, _ := ret[0].([]ports.Release)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Releases indicates an expected call of Releases.
func (mr *MockRegistryMockRecorder) Releases(ctx, name any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Releases", reflect.TypeOf((*MockRegistry)(nil).Releases), ctx, name)
}

// MockVersionResolver is a mock of VersionResolver interface.
type MockVersionResolver struct {
	ctrl     *gomock.Controller
	recorder *MockVersionResolverMockRecorder
	isgomock struct{}
}

// MockVersionResolverMockRecorder is the mock recorder for MockVersionResolver.
type MockVersionResolverMockRecorder struct {
	mock *MockVersionResolver
}

// NewMockVersionResolver creates a new mock instance.
func NewMockVersionResolver(ctrl *gomock.Controller) *MockVersionResolver {
	mock := &MockVersionResolver{ctrl: ctrl}
	mock.recorder = &MockVersionResolverMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockVersionResolver) EXPECT() *MockVersionResolverMockRecorder {
	return m.recorder
}

// Resolve mocks base method.
func (m *MockVersionResolver) Resolve(ctx context.Context, name, constraint string) (string, string, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Resolve", ctx, name, constraint)
	ret0, _ := ret[0].(string)
	ret1, _ := ret[1].(string)
	ret2, _ := ret[2].(error)
	return ret0, ret1, ret2
}

// Resolve indicates an expected call of Resolve.
func (mr *MockVersionResolverMockRecorder) Resolve(ctx, name, constraint any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Resolve", reflect.TypeOf((*MockVersionResolver)(nil).Resolve), ctx, name, constraint)
}
