package core

import (
	"fmt"
	"strings"
)

// AuthenticationError covers rejected credentials and unreachable identity
// endpoints. It aborts the current poll cycle; the next cycle re-logs-in.
type AuthenticationError struct {
	Err error
}

func (e AuthenticationError) Error() string {
	if e.Err == nil {
		return "authentication failed: please check username and password"
	}
	return fmt.Sprintf("authentication failed: %v", e.Err)
}

func (e AuthenticationError) Unwrap() error {
	return e.Err
}

// FetchFailedError reports a read-path failure outside a specific bundle,
// e.g. a session refresh that died while fetching.
type FetchFailedError struct {
	Op  string
	Err error
}

func (e FetchFailedError) Error() string {
	return fmt.Sprintf("fetch failed (%s): %v", e.Op, e.Err)
}

func (e FetchFailedError) Unwrap() error {
	return e.Err
}

// WriteFailedError reports a write-path failure. It is surfaced to the
// caller and never retried internally.
type WriteFailedError struct {
	Op  string
	Err error
}

func (e WriteFailedError) Error() string {
	return fmt.Sprintf("write failed (%s): %v", e.Op, e.Err)
}

func (e WriteFailedError) Unwrap() error {
	return e.Err
}

// ParameterReadError scopes a read failure to one bundle. Values from other
// bundles are still usable.
type ParameterReadError struct {
	BundleID int64
	ValueIDs []int64
	Err      error
}

func (e ParameterReadError) Error() string {
	ids := make([]string, len(e.ValueIDs))
	for i, id := range e.ValueIDs {
		ids[i] = fmt.Sprintf("%d", id)
	}
	return fmt.Sprintf("reading bundle %d (values %s): %v", e.BundleID, strings.Join(ids, ","), e.Err)
}

func (e ParameterReadError) Unwrap() error {
	return e.Err
}

// ParameterWriteError scopes a write failure to one parameter.
type ParameterWriteError struct {
	ValueID int64
	Name    string
	Err     error
}

func (e ParameterWriteError) Error() string {
	return fmt.Sprintf("writing parameter %q (value id %d): %v", e.Name, e.ValueID, e.Err)
}

func (e ParameterWriteError) Unwrap() error {
	return e.Err
}
