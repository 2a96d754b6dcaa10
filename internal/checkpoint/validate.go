package checkpoint

import (
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	scerrors "github.com/Aman-CERP/sessionctx/internal/errors"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// updateInput mirrors Update for struct-tag validation.
type updateInput struct {
	Files        []FileEntry   `validate:"dive"`
	Todos        []Todo        `validate:"dive"`
	UserDecision *UserDecision
	Plan         *Plan
}

// Validate checks an update before it is merged.
func (u Update) Validate() error {
	err := getValidator().Struct(updateInput{
		Files:        u.Files,
		Todos:        u.Todos,
		UserDecision: u.UserDecision,
		Plan:         u.Plan,
	})
	if err == nil {
		return nil
	}

	se := scerrors.ValidationError("invalid checkpoint update", err)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Namespace()+" "+fe.Tag())
		}
		se = se.WithDetail("fields", strings.Join(fields, "; "))
	}
	return se
}

// validateID rejects identifiers that could escape the storage root.
func validateID(id string) error {
	if err := getValidator().Var(id, "required,max=64,excludesall=/\\.."); err != nil {
		return scerrors.New(scerrors.ErrCodeInvalidPath, "invalid handoff id", err).WithDetail("id", id)
	}
	return nil
}
