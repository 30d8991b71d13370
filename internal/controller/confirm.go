package controller

import "context"

// Confirmer asks the user to approve a destructive action
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

// Confirm calls f
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// AutoConfirm approves every prompt
var AutoConfirm = ConfirmFunc(func(context.Context, string) (bool, error) {
	return true, nil
})

// AutoDecline rejects every prompt
var AutoDecline = ConfirmFunc(func(context.Context, string) (bool, error) {
	return false, nil
})
