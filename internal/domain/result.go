package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type Status string

const (
	StatusUp   Status = "UP"
	StatusDown Status = "DOWN"
)

// Outcome is the immutable result of probing one URL at one instant.
//
// Invariants:
//   - UP: status code present and 2xx, no error.
//   - DOWN: error present; status code present only when a non-2xx
//     response was received.
//
// The zero value is not a valid Outcome; build one with FromResponse,
// FromError or FromRecord.
type Outcome struct {
	url          string
	status       Status
	statusCode   int // 0 = no response
	responseTime int64
	timestamp    time.Time
	err          string
}

// Record is the wire shape of an Outcome. Absent fields are nil so they
// encode as JSON null.
type Record struct {
	URL            string    `json:"url"`
	Status         Status    `json:"status"`
	StatusCode     *int      `json:"status_code"`
	ResponseTimeMS int64     `json:"response_time_ms"`
	Timestamp      time.Time `json:"timestamp"`
	Error          *string   `json:"error"`
}

// FromResponse classifies an HTTP response code. 2xx is UP, anything else
// is DOWN with an "HTTP <code>" error. A code outside [100, 599] is not a
// usable response and yields a DOWN outcome without a status code.
func FromResponse(url string, code int, elapsed time.Duration) Outcome {
	if !ValidStatusCode(code) {
		return FromError(url, fmt.Errorf("malformed HTTP status code %d", code), elapsed)
	}
	o := Outcome{
		url:          url,
		statusCode:   code,
		responseTime: millis(elapsed),
		timestamp:    time.Now().UTC(),
	}
	if IsSuccess(code) {
		o.status = StatusUp
	} else {
		o.status = StatusDown
		o.err = fmt.Sprintf("HTTP %d", code)
	}
	return o
}

// FromError records a probe that never got a response.
func FromError(url string, err error, elapsed time.Duration) Outcome {
	msg := "unknown error"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return Outcome{
		url:          url,
		status:       StatusDown,
		responseTime: millis(elapsed),
		timestamp:    time.Now().UTC(),
		err:          msg,
	}
}

// FromRecord rebuilds an Outcome from its wire shape, rejecting records that
// break the invariants.
func FromRecord(r Record) (Outcome, error) {
	if err := r.validate(); err != nil {
		return Outcome{}, err
	}
	o := Outcome{
		url:          r.URL,
		status:       r.Status,
		responseTime: r.ResponseTimeMS,
		timestamp:    r.Timestamp.UTC(),
	}
	if r.StatusCode != nil {
		o.statusCode = *r.StatusCode
	}
	if r.Error != nil {
		o.err = *r.Error
	}
	return o, nil
}

var (
	ErrInvalidStatus       = errors.New("status must be UP or DOWN")
	ErrInvalidStatusCode   = errors.New("status_code out of range")
	ErrInvalidResponseTime = errors.New("response_time_ms must be >= 0")
	ErrUpWithError         = errors.New("UP outcome must not carry an error")
	ErrUpWithoutSuccess    = errors.New("UP outcome requires a 2xx status_code")
	ErrDownWithoutError    = errors.New("DOWN outcome requires an error")
	ErrDownWithSuccess     = errors.New("DOWN outcome cannot carry a 2xx status_code")
)

func (r Record) validate() error {
	if r.ResponseTimeMS < 0 {
		return ErrInvalidResponseTime
	}
	if r.StatusCode != nil && !ValidStatusCode(*r.StatusCode) {
		return fmt.Errorf("%w: %d", ErrInvalidStatusCode, *r.StatusCode)
	}
	switch r.Status {
	case StatusUp:
		if r.Error != nil {
			return ErrUpWithError
		}
		if r.StatusCode == nil || !IsSuccess(*r.StatusCode) {
			return ErrUpWithoutSuccess
		}
	case StatusDown:
		if r.Error == nil || *r.Error == "" {
			return ErrDownWithoutError
		}
		if r.StatusCode != nil && IsSuccess(*r.StatusCode) {
			return ErrDownWithSuccess
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStatus, r.Status)
	}
	return nil
}

// ValidStatusCode reports whether code is in [100, 599].
func ValidStatusCode(code int) bool { return code >= 100 && code <= 599 }

// IsSuccess reports whether code is in [200, 299].
func IsSuccess(code int) bool { return code >= 200 && code <= 299 }

func millis(d time.Duration) int64 {
	if d < 0 {
		return 0
	}
	return d.Milliseconds()
}

func (o Outcome) URL() string           { return o.url }
func (o Outcome) Status() Status        { return o.status }
func (o Outcome) Up() bool              { return o.status == StatusUp }
func (o Outcome) ResponseTimeMS() int64 { return o.responseTime }
func (o Outcome) Timestamp() time.Time  { return o.timestamp }

// StatusCode returns the HTTP status code and whether a response was received.
func (o Outcome) StatusCode() (int, bool) { return o.statusCode, o.statusCode != 0 }

// ErrorMessage returns the failure description for DOWN outcomes.
func (o Outcome) ErrorMessage() (string, bool) { return o.err, o.status == StatusDown }

// Record returns a copy of the outcome in wire shape.
func (o Outcome) Record() Record {
	r := Record{
		URL:            o.url,
		Status:         o.status,
		ResponseTimeMS: o.responseTime,
		Timestamp:      o.timestamp,
	}
	if code, ok := o.StatusCode(); ok {
		r.StatusCode = &code
	}
	if msg, ok := o.ErrorMessage(); ok {
		r.Error = &msg
	}
	return r
}

// Equal compares field by field, using time.Time.Equal for the timestamp.
func (o Outcome) Equal(other Outcome) bool {
	return o.url == other.url &&
		o.status == other.status &&
		o.statusCode == other.statusCode &&
		o.responseTime == other.responseTime &&
		o.err == other.err &&
		o.timestamp.Equal(other.timestamp)
}

func (o Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Record())
}

func (o *Outcome) UnmarshalJSON(b []byte) error {
	var r Record
	if err := json.Unmarshal(b, &r); err != nil {
		return err
	}
	out, err := FromRecord(r)
	if err != nil {
		return fmt.Errorf("outcome %q: %w", r.URL, err)
	}
	*o = out
	return nil
}
