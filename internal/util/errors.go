package util

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailRegistered     = errors.New("email already registered")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrDayNotConfigured    = errors.New("day not configured")
	ErrDayDisabled         = errors.New("day disabled")
	ErrDayLocked           = errors.New("day not yet unlocked")
	ErrTaskNotFound        = errors.New("task not found in day")
	ErrTestNotConfigured   = errors.New("day has no dynamic test")
	ErrDuplicateSubmission = errors.New("assessment already submitted")
	ErrValidationFailure   = errors.New("validation failure")
	ErrProgramNotFound     = errors.New("caregiver program not found")
)
