package kernel

import "errors"

// ErrReportSave is returned by Run when the conversation finished but its
// report could not be persisted. The report is still returned.
var ErrReportSave = errors.New("failed to save report")
