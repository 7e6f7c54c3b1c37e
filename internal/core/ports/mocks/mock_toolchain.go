// Code generated by MockGen. DO NOT EDIT.
// Source: toolchain.go
//
// Generated by this command:
//
//	mockgen -source=toolchain.go -destination=mocks/mock_toolchain.go -package=mocks
//

// Package mocks is a generated GoMock package.
package mocks

import (
	context "context"
	reflect "reflect"

	ports "go.trai.ch/rsx/internal/core/ports"
	gomock "go.uber.org/mock/gomock"
)

// MockToolchain is a mock of Toolchain interface.
type MockToolchain struct {
	ctrl     *gomock.Controller
	recorder *MockToolchainMockRecorder
	isgomock struct{}
}

// MockToolchainMockRecorder is the mock recorder for MockToolchain.
type MockToolchainMockRecorder struct {
	mock *MockToolchain
}

// NewMockToolchain creates a new mock instance.
func NewMockToolchain(ctrl *gomock.Controller) *MockToolchain {
	mock := &MockToolchain{ctrl: ctrl}
	mock.recorder = &MockToolchainMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockToolchain) EXPECT() *MockToolchainMockRecorder {
	return m.recorder
}

// Build mocks base method.
func (m *MockToolchain) Build(ctx context.Context, req ports.BuildRequest) (string, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Build", ctx, req)
	ret0, _ := ret[0].(string)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Build indicates an expected call of Build.
func (mr *MockToolchainMockRecorder) Build(ctx, req any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Build", reflect.TypeOf((*MockToolchain)(nil).Build), ctx, req)
}
