package trade

import (
	"errors"
	"fmt"
)

// Step names the orchestration stage that produced an error.
type Step string

const (
	StepResolveToken    Step = "resolve token"
	StepResolveTokenIn  Step = "resolve tokenIn"
	StepResolveTokenOut Step = "resolve tokenOut"
	StepQuerySupply     Step = "query supply"
	StepExecuteSwap     Step = "execute swap"
	StepParseAmount     Step = "parse amount"
)

var (
	ErrResolution    = errors.New("token resolution failed")
	ErrProvider      = errors.New("provider query failed")
	ErrSwapExecution = errors.New("swap execution failed")
	ErrInvalidInput  = errors.New("invalid input")
)

// ResolutionError reports that a token could not be found or validated.
type ResolutionError struct {
	Step    Step
	ChainID uint64
	Address string
	Err     error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("%s: %s on chain %d: %v", e.Step, e.Address, e.ChainID, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

func (e *ResolutionError) Is(target error) bool { return target == ErrResolution }

// ProviderError reports a provider fault unrelated to resolution.
type ProviderError struct {
	Step    Step
	ChainID uint64
	Address string
	Err     error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s on chain %d: %v", e.Step, e.Address, e.ChainID, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func (e *ProviderError) Is(target error) bool { return target == ErrProvider }

// SwapExecutionError reports that the provider rejected a trade.
type SwapExecutionError struct {
	Step    Step
	ChainID uint64
	Err     error
}

func (e *SwapExecutionError) Error() string {
	return fmt.Sprintf("%s on chain %d: %v", e.Step, e.ChainID, e.Err)
}

func (e *SwapExecutionError) Unwrap() error { return e.Err }

func (e *SwapExecutionError) Is(target error) bool { return target == ErrSwapExecution }

// InvalidInputError reports malformed caller input.
type InvalidInputError struct {
	Step   Step
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("%s: invalid %s: %s", e.Step, e.Field, e.Reason)
}

func (e *InvalidInputError) Is(target error) bool { return target == ErrInvalidInput }
