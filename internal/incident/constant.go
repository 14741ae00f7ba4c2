package incident

type Severity string
type Status string
type Kind string

const (
	INFO Severity = "INFO"
	LOW  Severity = "LOW"
	HIGH Severity = "HIGH"
)

// Endpoint health states.
const (
	Unknown        Status = "Unknown"
	OK             Status = "OK"
	AssertFailed   Status = "Assert Failed"
	HTTPError      Status = "ERROR"
	TransportError Status = "Transport Error"
)

// Notification kinds, used for subjects, webhook events and the delivery journal.
const (
	Alert     Kind = "alert"
	Recovery  Kind = "recovery"
	Heartbeat Kind = "heartbeat"
	Startup   Kind = "startup"
)

// Severity maps a notification kind to the severity reported to webhooks.
func (k Kind) Severity() Severity {
	switch k {
	case Alert:
		return HIGH
	case Recovery:
		return LOW
	default:
		return INFO
	}
}
