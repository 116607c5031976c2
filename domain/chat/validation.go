package chat

import (
	stderrors "errors"
	"fmt"
	"strings"

	"friend-chat/errors"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the required fields of cmd and the rules no struct tag can express.
// Every returned error wraps errors.ErrValidation.
func Validate(cmd Command) error {
	if err := validate.Struct(cmd); err != nil {
		return toValidationError(err)
	}
	if send, ok := cmd.(SendMessageCommand); ok {
		return validateSend(send)
	}
	return nil
}

func validateSend(cmd SendMessageCommand) error {
	hasContent := strings.TrimSpace(cmd.Content) != ""
	hasMedia := cmd.MediaURL != ""
	switch {
	case !hasContent && !hasMedia:
		return fmt.Errorf("%w: content or mediaUrl is required", errors.ErrValidation)
	case hasContent && hasMedia:
		return fmt.Errorf("%w: content and mediaUrl are mutually exclusive", errors.ErrValidation)
	case cmd.MessageType() == TypeText && !hasContent:
		return fmt.Errorf("%w: a text message requires content", errors.ErrValidation)
	case cmd.MessageType().IsMedia() && !hasMedia:
		return fmt.Errorf("%w: a %s message requires mediaUrl", errors.ErrValidation, cmd.Type)
	}
	return nil
}

func toValidationError(err error) error {
	var fieldErrors validator.ValidationErrors
	if !stderrors.As(err, &fieldErrors) {
		return fmt.Errorf("%w: %v", errors.ErrValidation, err)
	}
	details := lo.Map(fieldErrors, func(fe validator.FieldError, _ int) string {
		if fe.Param() != "" {
			return fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("%s must satisfy %s", fe.Field(), fe.Tag())
	})
	return fmt.Errorf("%w: %s", errors.ErrValidation, strings.Join(details, ", "))
}
