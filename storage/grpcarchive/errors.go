package grpcarchive

import (
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"xdao.co/roasort/storage"
)

// mapRPC folds a gRPC error back into the storage sentinel space so
// callers can keep using errors.Is across local and remote archives.
func mapRPC(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.NotFound:
		return storage.ErrNotFound
	case codes.InvalidArgument:
		return storage.ErrInvalidCID
	case codes.DataLoss:
		return storage.ErrCIDMismatch
	}

	// Some intermediaries flatten codes; fall back on the message.
	msg := st.Message()
	switch {
	case strings.Contains(msg, storage.ErrNotFound.Error()):
		return storage.ErrNotFound
	case strings.Contains(msg, storage.ErrInvalidCID.Error()):
		return storage.ErrInvalidCID
	case strings.Contains(msg, storage.ErrCIDMismatch.Error()):
		return storage.ErrCIDMismatch
	}
	return err
}
