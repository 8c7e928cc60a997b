// Package validate holds the input checks the presentation layer applies
// before an intent reaches the store.
package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrEmptyText indicates the text is empty once trimmed.
	ErrEmptyText = errors.New("text is empty")

	// ErrTextTooLong indicates the text exceeds the configured limit.
	ErrTextTooLong = errors.New("text is too long")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ItemText checks text for a new item: non-blank and at most limit
// characters, ignoring surrounding whitespace.
func ItemText(text string, limit int) error {
	err := validate.Var(strings.TrimSpace(text), fmt.Sprintf("required,max=%d", limit))
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return err
	}
	switch ve[0].Tag() {
	case "required":
		return ErrEmptyText
	case "max":
		return fmt.Errorf("%w (max %d characters)", ErrTextTooLong, limit)
	}
	return err
}
