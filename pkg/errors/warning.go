package errors

import "fmt"

// Warning is a non-fatal condition recorded while a request keeps going.
// Subject names the module identifier or page the warning is about.
type Warning struct {
	Code    Code   `json:"code"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// NewWarning creates a Warning with a formatted message.
func NewWarning(code Code, subject, format string, args ...any) Warning {
	return Warning{
		Code:    code,
		Subject: subject,
		Message: fmt.Sprintf(format, args...),
	}
}

// String formats the warning the same way Error formats errors.
func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Code, w.Message)
}

// Warnings is an ordered warning collection.
type Warnings []Warning

// Add appends a warning.
func (ws *Warnings) Add(w Warning) {
	*ws = append(*ws, w)
}

// Has reports whether any warning carries the given code.
func (ws Warnings) Has(code Code) bool {
	for _, w := range ws {
		if w.Code == code {
			return true
		}
	}
	return false
}

// Strings returns the formatted warnings.
func (ws Warnings) Strings() []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.String()
	}
	return out
}
