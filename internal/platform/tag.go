package platform

// Tag is the logical platform a process runs on.
type Tag string

const (
	MacOS   Tag = "macos"
	Windows Tag = "windows"
	Linux   Tag = "linux"
	Other   Tag = "other"
)

// Classify maps a raw OS identifier (runtime.GOOS or a Node-style
// process.platform value) to a Tag. Android runs a Linux kernel and
// satisfies the linux build constraint, so it classifies as Linux.
func Classify(raw string) Tag {
	switch raw {
	case "darwin":
		return MacOS
	case "win32", "windows":
		return Windows
	case "linux", "android":
		return Linux
	default:
		return Other
	}
}

// Select returns the entry for tag, or def when the table has none.
func Select[T any](tag Tag, entries map[Tag]T, def T) T {
	if v, ok := entries[tag]; ok {
		return v
	}
	return def
}

// SelectFunc resolves the producer for tag (falling back to def) and returns
// its result. With neither present it returns the zero value of T.
func SelectFunc[T any](tag Tag, entries map[Tag]func() T, def func() T) T {
	fn, ok := entries[tag]
	if !ok || fn == nil {
		fn = def
	}
	if fn == nil {
		var zero T
		return zero
	}
	return fn()
}
