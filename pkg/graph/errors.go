package graph

import (
	"errors"
	"fmt"
	"strings"
)

// Errors returned by Store and Session operations. Extension failures
// wrap ErrExtension and keep the raw Postgres message, which is the only
// useful debugging signal for malformed Cypher.
var (
	ErrGraphNotFound     = errors.New("graph not found")
	ErrDuplicateGraph    = errors.New("graph already exists")
	ErrNodeNotFound      = errors.New("node not found")
	ErrEdgeNotFound      = errors.New("edge not found")
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrExtension         = errors.New("extension error")
)

func extensionErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrExtension, err)
}

// createGraphErr classifies create_graph failures. The catalog check in
// CreateGraph can race with a concurrent creation, in which case the
// extension reports the duplicate itself; map that onto the taxonomy so
// callers can test with errors.Is. Only create_graph failures pass
// through here, so arbitrary statements mentioning "already exists"
// (index DDL via Execute, say) stay plain extension errors.
func createGraphErr(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "already exists") {
		return fmt.Errorf("%w: %v", ErrDuplicateGraph, err)
	}
	return extensionErr(err)
}
