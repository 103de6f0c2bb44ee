package errors

import (
	"fmt"
)

type ErrSourceUnavailable struct {
	Reason string
	Cause  error
}

func (e *ErrSourceUnavailable) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("menu source unavailable: %s: %v", e.Reason, e.Cause)
	}

	return "menu source unavailable: " + e.Reason
}

func (e *ErrSourceUnavailable) Unwrap() error {
	return e.Cause
}

func (e *ErrSourceUnavailable) Is(target error) bool {
	_, ok := target.(*ErrSourceUnavailable)
	return ok
}

type ErrSelectionNotFound struct {
	Field string
	Value string
}

func (e *ErrSelectionNotFound) Error() string {
	return fmt.Sprintf("no %s option matches %q on the menu page", e.Field, e.Value)
}

func (e *ErrSelectionNotFound) Is(target error) bool {
	_, ok := target.(*ErrSelectionNotFound)
	return ok
}

type ErrDeliveryFailed struct {
	ChatID int64
	Cause  error
}

func (e *ErrDeliveryFailed) Error() string {
	return fmt.Sprintf("message delivery to chat %d failed: %v", e.ChatID, e.Cause)
}

func (e *ErrDeliveryFailed) Unwrap() error {
	return e.Cause
}

func (e *ErrDeliveryFailed) Is(target error) bool {
	_, ok := target.(*ErrDeliveryFailed)
	return ok
}

type ErrStoreCorrupt struct {
	Path  string
	Cause error
}

func (e *ErrStoreCorrupt) Error() string {
	return fmt.Sprintf("subscriber store %s is unreadable: %v", e.Path, e.Cause)
}

func (e *ErrStoreCorrupt) Unwrap() error {
	return e.Cause
}

func (e *ErrStoreCorrupt) Is(target error) bool {
	_, ok := target.(*ErrStoreCorrupt)
	return ok
}

type ErrUnknownCommand struct {
	Command string
}

func (e *ErrUnknownCommand) Error() string {
	return "unknown command: " + e.Command
}

func (e *ErrUnknownCommand) Is(target error) bool {
	_, ok := target.(*ErrUnknownCommand)
	return ok
}

type ErrUnknownChatState struct {
	State int
}

func (e *ErrUnknownChatState) Error() string {
	return fmt.Sprintf("unknown chat state: %d", e.State)
}

type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error: %d", e.StatusCode)
}
