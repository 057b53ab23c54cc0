package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validatorOnce sync.Once
	validate      *validator.Validate
)

func getValidator() *validator.Validate {
	validatorOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// Validate checks cfg's struct tags with go-playground/validator and
// returns a single error joining every failing field, in
// "field: tag" form.
func Validate(cfg *Config) error {
	if err := getValidator().Struct(cfg); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return fmt.Errorf("config validation: %w", err)
		}

		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s: failed %q constraint (got %q)",
				fe.Namespace(), fe.Tag(), fe.Value()))
		}
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(msgs, "\n  "))
	}
	return nil
}
