package types

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// Menu is a named navigation menu. A menu owns its items; items never exist
// outside a menu.
type Menu struct {
	MenuID    string    `json:"id"`
	Name      string    `json:"name" validate:"required,max=120"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func menuValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate trims the menu name and checks it is present and at most 120
// characters. Returns an error wrapping ErrInvalidName on failure.
func (m *Menu) Validate() error {
	m.Name = strings.TrimSpace(m.Name)
	err := menuValidator().Struct(m)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("%w: %s failed %q", ErrInvalidName, strings.ToLower(fe.Field()), fe.Tag())
	}
	return fmt.Errorf("%w: %v", ErrInvalidName, err)
}
