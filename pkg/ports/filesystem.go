package ports

// FileSystem gives engines access to clip assets and lets sinks write
// reports. Implementations resolve relative paths, typically against the
// asset root.
type FileSystem interface {
	// ReadFile returns a whole asset. MP4 sample tables index into it.
	ReadFile(path string) ([]byte, error)

	// WriteFile creates parent directories as needed.
	WriteFile(path string, data []byte) error

	MkdirAll(path string) error

	// Exists lets engine factories fail fast on missing assets.
	Exists(path string) (bool, error)
}
