package executor

import "fmt"

// TransportError is a mart call that failed before producing a usable
// payload: network trouble or a non-2xx status.
type TransportError struct {
	Call   string
	Status int
	Body   string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s call failed: %v", e.Call, e.Err)
	}
	return fmt.Sprintf("%s call failed: upstream status %d: %s", e.Call, e.Status, e.Body)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServiceError is an in-band rejection: the service answered 200 but
// the payload carries its error text instead of data.
type ServiceError struct {
	Call    string
	Message string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("service rejected %s call: %s", e.Call, e.Message)
}
