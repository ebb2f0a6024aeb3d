package errs

import "fmt"

// RegistryError wraps a failure of the asset registry observed by the ledger.
type RegistryError struct {
	Op  string
	Err error
}

func NewRegistryError(op string, err error) *RegistryError {
	return &RegistryError{Op: op, Err: err}
}

func (e *RegistryError) Error() string {
	return fmt.Sprintf("registry %s: %v", e.Op, e.Err)
}

func (e *RegistryError) Unwrap() error {
	return e.Err
}

// TreasuryError wraps a failure to move external funds.
type TreasuryError struct {
	Op  string
	Err error
}

func NewTreasuryError(op string, err error) *TreasuryError {
	return &TreasuryError{Op: op, Err: err}
}

func (e *TreasuryError) Error() string {
	return fmt.Sprintf("treasury %s: %v", e.Op, e.Err)
}

func (e *TreasuryError) Unwrap() error {
	return e.Err
}
