package service

import (
	playground "github.com/go-playground/validator/v10"

	"github.com/BothSann/kdmv-sub002/internal/domain"
	"github.com/BothSann/kdmv-sub002/pkg/validator"
)

// The kh_phone tag backs the validate tags on the input structs in this
// package, so it is registered alongside them.
func init() {
	if err := validator.RegisterValidation("kh_phone", func(fl playground.FieldLevel) bool {
		return domain.IsValidKhPhone(fl.Field().String())
	}); err != nil {
		panic("register kh_phone validation: " + err.Error())
	}
}
