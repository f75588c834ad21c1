// Package shared holds types common to every ledger package: the error
// taxonomy and money rounding rules.
package shared

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation indicates malformed or missing posting input.
	ErrValidation = errors.New("ledger: invalid input")
	// ErrAccountNotFound indicates a code or id does not resolve to an active account.
	ErrAccountNotFound = errors.New("ledger: account not found")
	// ErrUnbalanced indicates total debits differ from total credits beyond tolerance.
	ErrUnbalanced = errors.New("ledger: journal lines must balance")
	// ErrGuardViolation indicates an illegal mutation or deletion of an account.
	ErrGuardViolation = errors.New("ledger: account guard violation")
	// ErrPeriodClosed indicates a posting attempt inside a closed or locked fiscal period.
	ErrPeriodClosed = errors.New("ledger: fiscal period is not open")
	// ErrJournalNotFound indicates a missing journal entry.
	ErrJournalNotFound = errors.New("ledger: journal entry not found")
)

// ValidationError carries field-level detail for rejected input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("ledger: %s", e.Reason)
	}
	return fmt.Sprintf("ledger: %s: %s", e.Field, e.Reason)
}

// Is makes ValidationError match ErrValidation.
func (e ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// AccountNotFoundError lists every identifier that failed to resolve in one
// lookup, so batch callers see all misses at once instead of the first.
type AccountNotFoundError struct {
	BusinessID int64
	Missing    []string
}

func (e AccountNotFoundError) Error() string {
	return fmt.Sprintf("ledger: business %d: no account for %s", e.BusinessID, strings.Join(e.Missing, ", "))
}

// Is makes AccountNotFoundError match ErrAccountNotFound.
func (e AccountNotFoundError) Is(target error) bool {
	return target == ErrAccountNotFound
}

// DoubleEntryError reports an unbalanced posting with both totals and the difference.
type DoubleEntryError struct {
	TotalDebit  float64
	TotalCredit float64
	Difference  float64
}

func (e DoubleEntryError) Error() string {
	return fmt.Sprintf("ledger: debits (%.2f) != credits (%.2f), difference %.2f", e.TotalDebit, e.TotalCredit, e.Difference)
}

// Is makes DoubleEntryError match ErrUnbalanced.
func (e DoubleEntryError) Is(target error) bool {
	return target == ErrUnbalanced
}

// GuardError explains which mutation rule was violated. AccountID is set
// for account guards and zero for fiscal period transitions.
type GuardError struct {
	AccountID int64
	Reason    string
}

func (e GuardError) Error() string {
	if e.AccountID == 0 {
		return fmt.Sprintf("ledger: %s", e.Reason)
	}
	return fmt.Sprintf("ledger: account %d: %s", e.AccountID, e.Reason)
}

// Is makes GuardError match ErrGuardViolation.
func (e GuardError) Is(target error) bool {
	return target == ErrGuardViolation
}

// PeriodClosedError names the period that blocked a posting.
type PeriodClosedError struct {
	PeriodName string
	Status     string
}

func (e PeriodClosedError) Error() string {
	return fmt.Sprintf("ledger: fiscal period %q is %s", e.PeriodName, e.Status)
}

// Is makes PeriodClosedError match ErrPeriodClosed.
func (e PeriodClosedError) Is(target error) bool {
	return target == ErrPeriodClosed
}
