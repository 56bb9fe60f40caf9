package serializer

// StdoutURI is the output path meaning stdout.
const StdoutURI = "-"
