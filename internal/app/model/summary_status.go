package model

// SummaryStatus is the summarization state of an audio record.
// Status: none, queued, processing, completed, failed
type SummaryStatus string

const (
	SummaryNone       SummaryStatus = "none"
	SummaryQueued     SummaryStatus = "queued"
	SummaryProcessing SummaryStatus = "processing"
	SummaryCompleted  SummaryStatus = "completed"
	SummaryFailed     SummaryStatus = "failed"
)

// ParseSummaryStatus maps a persisted value to a status. Unknown and empty
// values read as SummaryNone.
func ParseSummaryStatus(s string) SummaryStatus {
	switch SummaryStatus(s) {
	case SummaryQueued, SummaryProcessing, SummaryCompleted, SummaryFailed:
		return SummaryStatus(s)
	default:
		return SummaryNone
	}
}

// InFlight reports whether the status belongs to a running enqueue attempt.
func (s SummaryStatus) InFlight() bool {
	return s == SummaryQueued || s == SummaryProcessing
}

// Terminal reports whether the status ends an enqueue attempt.
func (s SummaryStatus) Terminal() bool {
	return s == SummaryCompleted || s == SummaryFailed
}

func (s SummaryStatus) String() string {
	return string(s)
}
