// Code generated by MockGen. DO NOT EDIT.
// Source: cache.go
//
// Generated by this command:
//
//	mockgen -source=cache.go -destination=mocks/mock_cache.go -package=mocks
//

// Package mocks is a generated GoMock package.
package mocks

import (
	context "context"
	reflect "reflect"

	domain "go.trai.ch/rsx/internal/core/domain"
	gomock "go.uber.org/mock/gomock"
)

// MockBuildCache is a mock of BuildCache interface.
type MockBuildCache struct {
	ctrl     *gomock.Controller
	recorder *MockBuildCacheMockRecorder
	isgomock struct{}
}

// MockBuildCacheMockRecorder is the mock recorder for MockBuildCache.
type MockBuildCacheMockRecorder struct {
	mock *MockBuildCache
}

// NewMockBuildCache creates a new mock instance.
func NewMockBuildCache(ctrl *gomock.Controller) *MockBuildCache {
	mock := &MockBuildCache{ctrl: ctrl}
	mock.recorder = &MockBuildCacheMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockBuildCache) EXPECT() *MockBuildCacheMockRecorder {
	return m.recorder
}

// BuildOnce mocks base method.
func (m *MockBuildCache) BuildOnce(ctx context.Context, fp domain.Fingerprint, name string, force bool, build func() (string, error)) (string, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "BuildOnce", ctx, fp, name, force, build)
	ret0, _ := ret[0].(string)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// BuildOnce indicates an expected call of BuildOnce.
func (mr *MockBuildCacheMockRecorder) BuildOnce(ctx, fp, name, force, build any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "BuildOnce", reflect.TypeOf((*MockBuildCache)(nil).BuildOnce), ctx, fp, name, force, build)
}

// BuildTreeDir mocks base method.
func (m *MockBuildCache) BuildTreeDir(fp domain.Fingerprint) (string, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "BuildTreeDir", fp)
	ret0, _ := ret[0].(string)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// BuildTreeDir indicates an expected call of BuildTreeDir.
func (mr *MockBuildCacheMockRecorder) BuildTreeDir(fp any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "BuildTreeDir", reflect.TypeOf((*MockBuildCache)(nil).BuildTreeDir), fp)
}

// Clean mocks base method.
func (m *MockBuildCache) Clean(deps, bin bool) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Clean", deps, bin)
	ret0, _ := ret[0].(error)
	return ret0
}

// Clean indicates an expected call of Clean.
func (mr *MockBuildCacheMockRecorder) Clean(deps, bin any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Clean", reflect.TypeOf((*MockBuildCache)(nil).Clean), deps, bin)
}

// DepsTargetDir mocks base method.
func (m *MockBuildCache) DepsTargetDir(fp domain.Fingerprint) (string, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "DepsTargetDir", fp)
	ret0, _ := ret[0].(string)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// DepsTargetDir indicates an expected call of DepsTargetDir.
func (mr *MockBuildCacheMockRecorder) DepsTargetDir(fp any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "DepsTargetDir", reflect.TypeOf((*MockBuildCache)(nil).DepsTargetDir), fp)
}

// Lookup mocks base method.
func (m *MockBuildCache) Lookup(fp domain.Fingerprint) (string, bool, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Lookup", fp)
	ret0, _ := ret[0].(string)
	ret1, _ := ret[1].(bool)
	ret2, _ := ret[2].(error)
	return ret0, ret1, ret2
}

// Lookup indicates an expected call of Lookup.
func (mr *MockBuildCacheMockRecorder) Lookup(fp any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Lookup", reflect.TypeOf((*MockBuildCache)(nil).Lookup), fp)
}

// MockEntryStore is a mock of EntryStore interface.
type MockEntryStore struct {
	ctrl     *gomock.Controller
	recorder *MockEntryStoreMockRecorder
	isgomock struct{}
}

// MockEntryStoreMockRecorder is the mock recorder for MockEntryStore.
type MockEntryStoreMockRecorder struct {
	mock *MockEntryStore
}

// NewMockEntryStore creates a new mock instance.
func NewMockEntryStore(ctrl *gomock.Controller) *MockEntryStore {
	mock := &MockEntryStore{ctrl: ctrl}
	mock.recorder = &MockEntryStoreMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockEntryStore) EXPECT() *MockEntryStoreMockRecorder {
	return m.recorder
}

// Get mocks base method.
func (m *MockEntryStore) Get(fp domain.Fingerprint) (*domain.CacheEntry, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Get", fp)
	ret0, _ := ret[0].(*domain.CacheEntry)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Get indicates an expected call of Get.
func (mr *MockEntryStoreMockRecorder) Get(fp any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Get", reflect.TypeOf((*MockEntryStore)(nil).Get), fp)
}

// Put mocks base method.
func (m *MockEntryStore) Put(entry domain.CacheEntry) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Put", entry)
	ret0, _ := ret[0].(error)
	return ret0
}

// Put indicates an expected call of Put.
func (mr *MockEntryStoreMockRecorder) Put(entry any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Put", reflect.TypeOf((*MockEntryStore)(nil).Put), entry)
}

// Remove mocks base method.
func (m *MockEntryStore) Remove(fp domain.Fingerprint) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Remove", fp)
	ret0, _ := ret[0].(error)
	return ret0
}

// Remove indicates an expected call of Remove.
func (mr *MockEntryStoreMockRecorder) Remove(fp any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Remove", reflect.TypeOf((*MockEntryStore)(nil).Remove), fp)
}
