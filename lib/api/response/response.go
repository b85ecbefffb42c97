package response

import "invitetracker/lib/clock"

// Response is the envelope every API endpoint returns: {success, data} on
// success, {success:false, error} on failure.
type Response struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp string      `json:"timestamp"`
}

func Ok(data interface{}) Response {
	return Response{
		Success:   true,
		Data:      data,
		Timestamp: clock.Now(),
	}
}

func Error(message string) Response {
	return Response{
		Success:   false,
		Error:     message,
		Timestamp: clock.Now(),
	}
}
