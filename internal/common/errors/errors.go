// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidInput      ErrorCode = "INVALID_INPUT"
	ErrCodeInvalidReportType ErrorCode = "INVALID_REPORT_TYPE"

	ErrCodeTemplateLoadFailed   ErrorCode = "TEMPLATE_LOAD_FAILED"
	ErrCodeTemplateRenderFailed ErrorCode = "TEMPLATE_RENDER_FAILED"

	ErrCodeReportImportFailed ErrorCode = "REPORT_IMPORT_FAILED"
	ErrCodeRecordNotFound     ErrorCode = "RECORD_NOT_FOUND"
	ErrCodeRecordStoreFailed  ErrorCode = "RECORD_STORE_FAILED"

	ErrCodeDocumentDeliveryFailed ErrorCode = "DOCUMENT_DELIVERY_FAILED"
	ErrCodeExportCancelled        ErrorCode = "EXPORT_CANCELLED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata attaches a key/value pair that is forwarded as a job variable.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidInputError reports job variables that cannot be used.
func NewInvalidInputError(details string) *StandardError {
	return newError(ErrCodeInvalidInput, "Invalid job input", details, false)
}

// NewInvalidReportTypeError reports an unknown report type tag.
func NewInvalidReportTypeError(reportType string) *StandardError {
	return newError(ErrCodeInvalidReportType, "Unsupported report type",
		fmt.Sprintf("reportType: %s", reportType), false)
}

// NewTemplateLoadFailedError is retryable: the source may be back shortly.
func NewTemplateLoadFailedError(reportType string, err error) *StandardError {
	return newError(ErrCodeTemplateLoadFailed, "Document template could not be loaded",
		fmt.Sprintf("reportType: %s, error: %s", reportType, err.Error()), true)
}

// NewTemplateRenderFailedError reports a data/template mismatch. Not retryable.
func NewTemplateRenderFailedError(tags []string, err error) *StandardError {
	return newError(ErrCodeTemplateRenderFailed, "Document template could not be rendered",
		err.Error(), false).WithMetadata("tags", tags)
}

// NewReportImportFailedError reports an unusable JSON payload.
func NewReportImportFailedError(err error) *StandardError {
	return newError(ErrCodeReportImportFailed, "Report JSON could not be imported", err.Error(), false)
}

// NewRecordNotFoundError reports a missing stored record.
func NewRecordNotFoundError(reportType string) *StandardError {
	return newError(ErrCodeRecordNotFound, "No stored record for report type",
		fmt.Sprintf("reportType: %s", reportType), false)
}

// NewRecordStoreFailedError wraps key-value store failures.
func NewRecordStoreFailedError(err error) *StandardError {
	return newError(ErrCodeRecordStoreFailed, "Record store operation failed", err.Error(), true)
}

// NewDocumentDeliveryFailedError wraps blob sink failures.
func NewDocumentDeliveryFailedError(fileName string, err error) *StandardError {
	return newError(ErrCodeDocumentDeliveryFailed, "Document could not be delivered",
		fmt.Sprintf("fileName: %s, error: %s", fileName, err.Error()), true)
}

// NewExportCancelledError reports an export abandoned by its deadline.
func NewExportCancelledError(err error) *StandardError {
	return newError(ErrCodeExportCancelled, "Export cancelled before completion", err.Error(), true)
}

// NewInternalError wraps anything unexpected.
func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to the codes caught by boundary
// events in the inspection process models.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidInput:           "INVALID_INPUT",
	ErrCodeInvalidReportType:      "INVALID_REPORT_TYPE",
	ErrCodeTemplateLoadFailed:     "TEMPLATE_MISSING",
	ErrCodeTemplateRenderFailed:   "TEMPLATE_DATA_MISMATCH",
	ErrCodeReportImportFailed:     "IMPORT_REJECTED",
	ErrCodeRecordNotFound:         "RECORD_NOT_FOUND",
	ErrCodeRecordStoreFailed:      "RECORD_STORE_FAILED",
	ErrCodeDocumentDeliveryFailed: "DELIVERY_FAILED",
	ErrCodeExportCancelled:        "EXPORT_CANCELLED",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeTemplateLoadFailed,
		ErrCodeRecordStoreFailed,
		ErrCodeDocumentDeliveryFailed:
		return 3

	case ErrCodeExportCancelled:
		return 2

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "TEMPLATE"):
		return "TEMPLATE"
	case strings.Contains(codeStr, "IMPORT"):
		return "IMPORT"
	case strings.Contains(codeStr, "RECORD"):
		return "STORAGE"
	case strings.Contains(codeStr, "DELIVERY"):
		return "DELIVERY"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
