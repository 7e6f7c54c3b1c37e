// Code generated by MockGen. DO NOT EDIT.
// Source: analyzer.go
//
// Generated by this command:
//
//	mockgen -source=analyzer.go -destination=mocks/mock_analyzer.go -package=mocks
//

// Package mocks is a generated GoMock package.
package mocks

import (
	reflect "reflect"

	domain "go.trai.ch/rsx/internal/core/domain"
	gomock "go.uber.org/mock/gomock"
)

// MockClassifier is a mock of Classifier interface.
type MockClassifier struct {
	ctrl     *gomock.Controller
	recorder *MockClassifierMockRecorder
	isgomock struct{}
}

// MockClassifierMockRecorder is the mock recorder for MockClassifier.
type MockClassifierMockRecorder struct {
	mock *MockClassifier
}

// NewMockClassifier creates a new mock instance.
func NewMockClassifier(ctrl *gomock.Controller) *MockClassifier {
	mock := &MockClassifier{ctrl: ctrl}
	mock.recorder = &MockClassifierMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockClassifier) EXPECT() *MockClassifierMockRecorder {
	return m.recorder
}

// Classify mocks base method.
func (m *MockClassifier) Classify(name string, raw []byte, multiMain bool) (*domain.SourceUnit, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Classify", name, raw, multiMain)
	ret0, _ := ret[0].(*domain.SourceUnit)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Classify indicates an expected call of Classify.
func (mr *MockClassifierMockRecorder) Classify(name, raw, multiMain any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Classify", reflect.TypeOf((*MockClassifier)(nil).Classify), name, raw, multiMain)
}

// MockDependencyInferencer is a mock of DependencyInferencer interface.
type MockDependencyInferencer struct {
	ctrl     *gomock.Controller
	recorder *MockDependencyInferencerMockRecorder
	isgomock struct{}
}

// MockDependencyInferencerMockRecorder is the mock recorder for MockDependencyInferencer.
type MockDependencyInferencerMockRecorder struct {
	mock *MockDependencyInferencer
}

// NewMockDependencyInferencer creates a new mock instance.
func NewMockDependencyInferencer(ctrl *gomock.Controller) *MockDependencyInferencer {
	mock := &MockDependencyInferencer{ctrl: ctrl}
	mock.recorder = &MockDependencyInferencerMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockDependencyInferencer) EXPECT() *MockDependencyInferencerMockRecorder {
	return m.recorder
}

// Infer mocks base method.
func (m *MockDependencyInferencer) Infer(unit *domain.SourceUnit) (*domain.DependencySet, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Infer", unit)
	ret0, _ := ret[0].(*domain.DependencySet)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Infer indicates an expected call of Infer.
func (mr *MockDependencyInferencerMockRecorder) Infer(unit any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Infer", reflect.TypeOf((*MockDependencyInferencer)(nil).Infer), unit)
}

// MockMetadataExtractor is a mock of MetadataExtractor interface.
type MockMetadataExtractor struct {
	ctrl     *gomock.Controller
	recorder *MockMetadataExtractorMockRecorder
	isgomock struct{}
}

// MockMetadataExtractorMockRecorder is the mock recorder for MockMetadataExtractor.
type MockMetadataExtractorMockRecorder struct {
	mock *MockMetadataExtractor
}

// NewMockMetadataExtractor creates a new mock instance.
func NewMockMetadataExtractor(ctrl *gomock.Controller) *MockMetadataExtractor {
	mock := &MockMetadataExtractor{ctrl: ctrl}
	mock.recorder = &MockMetadataExtractorMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockMetadataExtractor) EXPECT() *MockMetadataExtractorMockRecorder {
	return m.recorder
}

// Extract mocks base method.
func (m *MockMetadataExtractor) Extract(unit *domain.SourceUnit) (*domain.EmbeddedMetadata, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Extract", unit)
	ret0, _ := ret[0].(*domain.EmbeddedMetadata)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Extract indicates an expected call of Extract.
func (mr *MockMetadataExtractorMockRecorder) Extract(unit any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Extract", reflect.TypeOf((*MockMetadataExtractor)(nil).Extract), unit)
}
