package config

import (
	"time"
)

type OutcomeKind int

const (
	Success OutcomeKind = iota
	TransportFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case Success:
		return "success"
	case TransportFailure:
		return "transport_failure"
	default:
		return "unknown"
	}
}

// Outcome is the raw result of a single probe. A Success only means an HTTP
// response arrived; status code and body are judged by the caller.
type Outcome struct {
	Kind         OutcomeKind
	URL          string
	CheckedAt    time.Time     // when the attempt started
	ResponseTime time.Duration // time until the body was read or the attempt failed
	StatusCode   int
	Body         string
	Description  string // set for TransportFailure
}

func Succeeded(url string, checkedAt time.Time, responseTime time.Duration, statusCode int, body string) Outcome {
	return Outcome{
		Kind:         Success,
		URL:          url,
		CheckedAt:    checkedAt,
		ResponseTime: responseTime,
		StatusCode:   statusCode,
		Body:         body,
	}
}

func Failed(url string, checkedAt time.Time, responseTime time.Duration, description string) Outcome {
	return Outcome{
		Kind:         TransportFailure,
		URL:          url,
		CheckedAt:    checkedAt,
		ResponseTime: responseTime,
		Description:  description,
	}
}
