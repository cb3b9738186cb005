package state

import "fmt"

// Validator decides whether a captured value may be restored.
// A nil Validator accepts everything.
type Validator func(value string) error

// RejectValue returns a Validator that rejects the sentinel value.
func RejectValue(sentinel string) Validator {
	return func(value string) error {
		if value == sentinel {
			return fmt.Errorf("%w: %q", ErrRejectedState, value)
		}
		return nil
	}
}

// RejectEmpty returns a Validator that rejects the empty string.
func RejectEmpty() Validator {
	return func(value string) error {
		if value == "" {
			return fmt.Errorf("%w: empty state", ErrRejectedState)
		}
		return nil
	}
}

// All combines validators; the first failure wins.
func All(validators ...Validator) Validator {
	return func(value string) error {
		for _, v := range validators {
			if v == nil {
				continue
			}
			if err := v(value); err != nil {
				return err
			}
		}
		return nil
	}
}
