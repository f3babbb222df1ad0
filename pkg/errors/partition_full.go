package errors

// errorBase lets PartitionFullError embed *Error without a field named
// Error, which would hide the promoted Error() method.
type errorBase = Error

// PartitionFullError is raised when a non-growable partition has no free
// page to hand out. It carries the FSIP page buffer that reported FULL and
// that FSIP's index. A growable partition never raises it: it grows the
// file and retries the allocation itself.
type PartitionFullError struct {
	*errorBase
	Buffer    []byte
	FSIPIndex uint32
}

// NewPartitionFull builds a PartitionFullError for the given FSIP.
func NewPartitionFull(buf []byte, fsipIndex uint32) *PartitionFullError {
	return &PartitionFullError{
		errorBase: newAt(nil, CodePartitionFull, "partition has no free page", 2),
		Buffer:    buf,
		FSIPIndex: fsipIndex,
	}
}
