package translate

import "errors"

var (
	ErrNoProgram          = errors.New("no .PROGRAM declared yet")
	ErrAlreadyConfigured  = errors.New("already configured")
	ErrMisplaced          = errors.New("directive not allowed here")
	ErrDuplicateProcessor = errors.New("user processor declared twice")
	ErrNoPrimary          = errors.New("user processor 1 needs user processor 0 to launch it")
	ErrTooManyProcessors  = errors.New("too many user processors")
	ErrUnresolved         = errors.New("unresolved template argument")
	ErrUnknownDirective   = errors.New("unknown directive")
)
