package fsutil

// File and directory permission constants.
const (
	FileModeDefault = 0o644 // -rw-r--r--: Default for regular files

	DirModeDefault = 0o755 // drwxr-xr-x: Default for directories
	DirModePrivate = 0o700 // drwx------: For private directories (owner only)
)

// TempDirPattern is the os.MkdirTemp pattern used for archive working directories.
const TempDirPattern = "s3cache-*"
