package errors

// Code categorizes an Error programmatically, mirroring the taxonomy the
// storage engine's C++ ancestor expressed as exception subclasses.
type Code string

const (
	// CodeFile wraps an OS-level I/O failure on the partition file.
	CodeFile Code = "FILE_ERROR"

	// CodePartitionExists is returned when creating a partition over a
	// file that already exists on disk.
	CodePartitionExists Code = "PARTITION_EXISTS"

	// CodePartitionFull is returned when no FSIP has a free page and the
	// partition cannot (or, for a raw partition, will not) grow.
	CodePartitionFull Code = "PARTITION_FULL"

	// CodeKeyNotInWriteManager signals a write-manager buffer miss; the
	// facade treats this as "fall through to the storage manager".
	CodeKeyNotInWriteManager Code = "KEY_NOT_IN_WRITE_MANAGER"

	// CodeKeyDeletedInWriteManager signals that the most recent write
	// entry for a key in the write manager is a delete.
	CodeKeyDeletedInWriteManager Code = "KEY_DELETED_IN_WRITE_MANAGER"

	// CodeKeyNotInStorage signals a miss in the storage manager's index.
	CodeKeyNotInStorage Code = "KEY_NOT_IN_STORAGE"

	// CodeInvalidRequest names a request line that does not parse into one
	// of GET/PUT/DEL/FLUSH. kv.Facade.RequestHandler reports such a line as
	// a plain ("ERROR", "INVALID REQUEST: ...") pair and does not build an
	// Error with this code.
	CodeInvalidRequest Code = "INVALID_REQUEST"
)
