package payment

// TerminalError is a classified card-terminal failure. Code is stable for
// clients, Message is what the register screen shows the cashier, and
// Retryable tells the client whether re-presenting the same card can work.
type TerminalError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

func (e *TerminalError) Error() string {
	return e.Code + ": " + e.Message
}

var (
	// ErrSessionExpired: the terminal pairing session lapsed mid-charge.
	// Re-presenting the same card cannot help until the terminal is
	// re-paired, so this is a terminal failure, not a retryable one.
	ErrSessionExpired = &TerminalError{
		Code:      "session_expired",
		Message:   "Terminal session expired. Re-pair the terminal before taking another card payment.",
		Retryable: false,
	}
	// ErrTerminalOffline: the gateway rejected the connection outright.
	ErrTerminalOffline = &TerminalError{
		Code:      "terminal_offline",
		Message:   "Card terminal is offline. Check the terminal and retry, or take another tender.",
		Retryable: true,
	}
	// ErrTerminalTimeout: no approval within the charge deadline.
	ErrTerminalTimeout = &TerminalError{
		Code:      "terminal_timeout",
		Message:   "Card terminal did not respond in time. Confirm the charge on the terminal before retrying.",
		Retryable: true,
	}
	// ErrNetwork: transport failed partway; the charge state is unknown.
	ErrNetwork = &TerminalError{
		Code:      "network_error",
		Message:   "Network error during payment. Confirm the charge on the terminal before retrying.",
		Retryable: true,
	}
	// ErrDeclined: the issuer said no. Retrying the same card will not help.
	ErrDeclined = &TerminalError{
		Code:      "card_declined",
		Message:   "Card declined. Ask for another card or tender.",
		Retryable: false,
	}
	// ErrInvalidResponse: the gateway answered with something unparseable.
	ErrInvalidResponse = &TerminalError{
		Code:      "invalid_response",
		Message:   "Unexpected response from the card terminal. Retry or take another tender.",
		Retryable: true,
	}
)

// classify maps a gateway error code to a typed terminal error. Unknown
// codes are treated as invalid responses rather than guessed at.
func classify(code string) *TerminalError {
	switch code {
	case "session_expired", "pairing_expired":
		return ErrSessionExpired
	case "offline", "terminal_offline":
		return ErrTerminalOffline
	case "timeout":
		return ErrTerminalTimeout
	case "declined", "card_declined", "insufficient_funds":
		return ErrDeclined
	case "network_error":
		return ErrNetwork
	default:
		return ErrInvalidResponse
	}
}
