package handlers

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/arnavshah/shiftplan-api/pkg/calendar"
	"github.com/arnavshah/shiftplan-api/pkg/models"
)

// RegisterValidators adds the hhmm, isodate and category tags to gin's validator
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	if err := v.RegisterValidation("hhmm", validateClock); err != nil {
		return err
	}
	if err := v.RegisterValidation("isodate", validateDate); err != nil {
		return err
	}
	return v.RegisterValidation("category", validateCategory)
}

func validateClock(fl validator.FieldLevel) bool {
	_, err := calendar.ParseClock(fl.Field().String())
	return err == nil
}

func validateDate(fl validator.FieldLevel) bool {
	_, err := calendar.ParseDate(fl.Field().String())
	return err == nil
}

func validateCategory(fl validator.FieldLevel) bool {
	_, err := models.ParseCategory(fl.Field().String())
	return err == nil
}
