package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Open     func(OpenArgs) (Result, error)
	Save     func(SaveArgs) (Result, error)
	Delete   func() (Result, error)
	Recent   func(RecentArgs) (Result, error)
	Activity func(ActivityArgs) (Result, error)
	Quit     func() (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeOpen:
		if handlers.Open == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Open(*cmd.Open)
	case TypeSave:
		if handlers.Save == nil {
			return Result{}, missing(cmd.Type)
		}
		var args SaveArgs
		if cmd.Save != nil {
			args = *cmd.Save
		}
		return handlers.Save(args)
	case TypeDelete:
		if handlers.Delete == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Delete()
	case TypeRecent:
		if handlers.Recent == nil {
			return Result{}, missing(cmd.Type)
		}
		var args RecentArgs
		if cmd.Recent != nil {
			args = *cmd.Recent
		}
		return handlers.Recent(args)
	case TypeActivity:
		if handlers.Activity == nil {
			return Result{}, missing(cmd.Type)
		}
		var args ActivityArgs
		if cmd.Activity != nil {
			args = *cmd.Activity
		}
		return handlers.Activity(args)
	case TypeQuit:
		if handlers.Quit == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Quit()
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}

func missing(t Type) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", t)}
}
