package journey

import "errors"

var (
	ErrUnknownStep          = errors.New("unknown step")
	ErrStepNotCurrent       = errors.New("step is not the current step")
	ErrStepNotConfigured    = errors.New("step is not part of this journey")
	ErrTransitionNotAllowed = errors.New("step transition not allowed")
	ErrInvalidRegistration  = errors.New("email and name are required")
	ErrWalletConnecting     = errors.New("wallet connection already in progress")
	ErrNoAnswerSelected     = errors.New("no answer selected")
	ErrAnswerOutOfRange     = errors.New("answer index out of range")
	ErrQuizCompleted        = errors.New("quiz already completed")
	ErrMintInProgress       = errors.New("badge mint already in progress")
	ErrMintFailed           = errors.New("failed to mint badge")
	ErrNotMinted            = errors.New("badge has not been minted")
	ErrSessionReset         = errors.New("session was reset")
	ErrSessionClosed        = errors.New("session is closed")
	ErrSessionNotFound      = errors.New("session not found")
)
