package store

import (
	"encoding/json"
	"errors"
	"fmt"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// IStore is the generic interface for interacting with a key–value store.
// Values are schema-less JSON documents. All write operations return only an error
// (nil on success), while read operations return the requested data along with an error.
type IStore interface {
	// Set inserts or updates a key–value pair and stamps it with the current time.
	// The value must be valid JSON. Subscribers of the key are notified after the write.
	Set(key string, value json.RawMessage) (err error)
	// Get returns the value for a key. A missing key yields an error with code RetCNotFound,
	// a stored payload that is not valid JSON yields RetCDecodeError.
	Get(key string) (value json.RawMessage, err error)
	// Delete deletes a key–value pair. Deleting a missing key is not an error.
	Delete(key string) (err error)
	// List returns all keys.
	List() (keys []string, err error)
	// GetAll returns all key–value pairs. Entries whose payload can not be decoded are omitted.
	GetAll() (values map[string]json.RawMessage, err error)
	// Exists returns whether a key exists in the store.
	Exists(key string) (ok bool, err error)
	// Clear removes all keys.
	Clear() (err error)
	// Count returns the number of keys.
	Count() (n int, err error)
}

// INotifier is informed about every successful Set.
// Notify must not block the caller; oldValue is nil if the key had no (decodable) value.
type INotifier interface {
	Notify(key string, oldValue, newValue json.RawMessage)
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("KVStoreError (code %s): %s", e.Code, e.Msg)
}

// NewError creates a new KVStoreError with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// CodeOf returns the RetCode carried by err, RetCSuccess for nil
// and RetCInternalError for errors that are not a *Error.
func CodeOf(err error) RetCode {
	if err == nil {
		return RetCSuccess
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return RetCInternalError
}

// IsNotFound reports whether err signals a missing key.
func IsNotFound(err error) bool {
	return err != nil && CodeOf(err) == RetCNotFound
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess       RetCode = iota // 0: Command executed successfully.
	RetCInternalError                // 1: Command failed due to an internal error.
	RetCNotFound                     // 2: The key does not exist.
	RetCDecodeError                  // 3: The stored payload could not be decoded.
	RetCInvalidValue                 // 4: The given value is not valid JSON.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCInternalError:
		return "InternalError"
	case RetCNotFound:
		return "NotFound"
	case RetCDecodeError:
		return "DecodeError"
	case RetCInvalidValue:
		return "InvalidValue"
	default:
		return "Unknown"
	}
}
