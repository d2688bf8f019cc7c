package common

// AccessKeyHeaderName is the HTTP header that carries the device access key
// on every request to the summary server.
const AccessKeyHeaderName = "X-API-Key"

// DateLayout is the calendar date format used for expense dates and range
// bounds. Values in this layout sort lexicographically.
const DateLayout = "2006-01-02"
