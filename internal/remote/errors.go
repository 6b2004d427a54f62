package remote

import (
	"strings"

	"github.com/Amnesthesia/dz-app/internal/domain"
)

// fieldKeyMap translates the server's field error keys to the local form
// field names the presentation layer corrects against.
var fieldKeyMap = map[string]string{
	"jump_type":             "jumpType",
	"ticket_type":           "ticketType",
	"load":                  "load",
	"extras":                "extras",
	"extra_ids":             "extras",
	"credits":               "credits",
	"user_role":             "role",
	"expires_at":            "membership",
	"passenger_name":        "passengerName",
	"passenger_exit_weight": "passengerExitWeight",
}

// ServerError is a non-field failure reported by the remote service,
// surfaced to the caller as a single top-level message.
type ServerError struct {
	Status   int
	Messages []string
}

func (e ServerError) Error() string {
	if len(e.Messages) == 0 {
		return "remote service error"
	}
	return e.Messages[0]
}

// errorFromEnvelope converts a response envelope's error payload. Field
// errors with recognized keys map to local fields; unknown keys join the
// general error list. Returns nil when the envelope carries no errors.
func errorFromEnvelope(status int, env envelope) error {
	var fieldErrs domain.FieldErrors
	general := append([]string(nil), env.Errors...)

	for _, fe := range env.FieldErrors {
		if local, ok := fieldKeyMap[fe.Field]; ok {
			fieldErrs = append(fieldErrs, domain.FieldError{Field: local, Message: fe.Message})
		} else {
			general = append(general, fe.Field+": "+fe.Message)
		}
	}

	if len(fieldErrs) > 0 {
		return fieldErrs
	}
	if len(general) > 0 {
		if err := sentinelFor(general); err != nil {
			return err
		}
		return ServerError{Status: status, Messages: general}
	}
	return nil
}

// sentinelFor maps well-known server messages onto the local domain
// sentinels so callers can branch with errors.Is regardless of which side
// detected the violation first.
func sentinelFor(messages []string) error {
	for _, m := range messages {
		switch {
		case strings.Contains(m, "capacity"):
			return domain.ErrCapacityExceeded
		case strings.Contains(m, "not accepting"), strings.Contains(m, "landed"):
			return domain.ErrLoadClosed
		case strings.Contains(m, "forbidden"), strings.Contains(m, "not permitted"):
			return domain.ErrForbidden
		}
	}
	return nil
}
