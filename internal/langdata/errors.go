package langdata

import "fmt"

// UnsupportedLanguageError reports a language code without a deep pack.
type UnsupportedLanguageError struct {
	Code string
}

func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("language %q has no dedicated pack; universal stages only", e.Code)
}

// Lookup returns the pack for code, or the universal pack together with an UnsupportedLanguageError.
// Callers usually report the error as a warning and continue with the returned pack.
func (r *Registry) Lookup(code string) (*Pack, error) {
	p, ok := r.Pack(code)
	if !ok {
		return p, &UnsupportedLanguageError{Code: code}
	}
	return p, nil
}
