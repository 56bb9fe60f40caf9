package agent

// SetMaxResponseBytes lowers the response size limit of t.
func SetMaxResponseBytes(t *HTTPTransport, n int64) {
	t.maxBytes = n
}
