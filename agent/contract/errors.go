package contract

import "errors"

var (
	ErrConfiguration       = errors.New("configuration error")
	ErrService             = errors.New("service failure")
	ErrStepBudgetExhausted = errors.New("step budget exhausted")
	ErrToolExecution       = errors.New("tool execution failed")
	ErrStorage             = errors.New("storage failure")
	ErrNotFound            = errors.New("not found")
	ErrExecution           = errors.New("statement execution failed")
	ErrPromptMissing       = errors.New("required prompt is missing")
	ErrValidation          = errors.New("validation failed")
)
