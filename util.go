package pagecache

import "strconv"

func pageIDString(id PageID) string { return strconv.Itoa(int(id)) }

// discardWriter is a no-op io.Writer, used as the default logrus output
// when callers don't supply a logger.
type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
