package commands

import (
	"fmt"
	"strconv"
	"strings"
)

type Type string

const (
	TypeOpen     Type = "open"
	TypeSave     Type = "save"
	TypeDelete   Type = "delete"
	TypeRecent   Type = "recent"
	TypeActivity Type = "activity"
	TypeQuit     Type = "quit"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type OpenArgs struct {
	Name string
}

// SaveArgs optionally retargets the document before writing it.
type SaveArgs struct {
	Name string
}

type RecentArgs struct {
	Limit int
}

// ActivityArgs limits the journal entries shown for the open document.
type ActivityArgs struct {
	Limit int
}

type Command struct {
	Type     Type
	Raw      string
	Open     *OpenArgs
	Save     *SaveArgs
	Recent   *RecentArgs
	Activity *ActivityArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeOpen:
		return parseOpen(input, args)
	case TypeSave:
		return Command{Type: TypeSave, Raw: input, Save: &SaveArgs{Name: strings.Join(args, " ")}}, nil
	case TypeDelete:
		return parseBare(TypeDelete, input, args)
	case TypeRecent:
		n, err := parseLimit(TypeRecent, args)
		if err != nil {
			return Command{}, err
		}
		return Command{Type: TypeRecent, Raw: input, Recent: &RecentArgs{Limit: n}}, nil
	case TypeActivity:
		n, err := parseLimit(TypeActivity, args)
		if err != nil {
			return Command{}, err
		}
		return Command{Type: TypeActivity, Raw: input, Activity: &ActivityArgs{Limit: n}}, nil
	case TypeQuit:
		return parseBare(TypeQuit, input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseOpen(raw string, args []string) (Command, error) {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "open requires a file name"}
	}
	return Command{Type: TypeOpen, Raw: raw, Open: &OpenArgs{Name: name}}, nil
}

// parseLimit reads an optional positive count. Zero means no limit given.
func parseLimit(t Type, args []string) (int, error) {
	if len(args) == 0 {
		return 0, nil
	}
	if len(args) > 1 {
		return 0, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s takes at most one argument", t)}
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		return 0, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s limit must be a positive number: %s", t, args[0])}
	}
	return n, nil
}

func parseBare(t Type, raw string, args []string) (Command, error) {
	if len(args) > 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s takes no arguments", t)}
	}
	return Command{Type: t, Raw: raw}, nil
}
