package common

import (
	"errors"
	"fmt"

	"github.com/tandr/homehub/logger"
)

func NewErrorf(format string, a ...any) error {
	msg := fmt.Sprintf(format, a...)
	return errors.New(msg)
}

func NewError(a ...any) error {
	msg := fmt.Sprintln(a...)
	return errors.New(msg)
}

func Combine(errs ...error) error {
	msg := ""
	for _, err := range errs {
		if err != nil {
			if msg != "" {
				msg += ", "
			}
			msg += err.Error()
		}
	}
	if msg != "" {
		return errors.New(msg)
	}
	return nil
}

func Recover(msg string) any {
	panicErr := recover()
	if panicErr != nil {
		if msg != "" {
			logger.Error(msg, "panic:", panicErr)
		}
	}
	return panicErr
}
