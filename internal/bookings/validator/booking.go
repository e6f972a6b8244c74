package validator

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	apperrors "lodge/pkg/errors"
	"lodge/pkg/logger"
	"lodge/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	messages := make([]string, 0, len(v))
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// Message is the first failure, phrased for the response body.
func (v ValidationErrors) Message() string {
	if len(v) == 0 {
		return "Validation failed"
	}
	return v[0].Message
}

// Details maps each failing field to its message.
func (v ValidationErrors) Details() map[string]any {
	details := make(map[string]any, len(v))
	for _, err := range v {
		details[err.Field] = err.Message
	}
	return details
}

// AppError converts the failures into a 400 response error.
func (v ValidationErrors) AppError() *apperrors.AppError {
	return apperrors.Validation(v.Message(), v.Details())
}

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(jsonFieldName)

	custom := map[string]validator.Func{
		"calendar_date":  validateCalendarDate,
		"booking_status": validateBookingStatus,
		"payment_method": validatePaymentMethod,
	}
	for tag, fn := range custom {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatal("Failed to register booking validator", "tag", tag, "error", err)
		}
	}

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}

func validateCalendarDate(fl validator.FieldLevel) bool {
	_, err := model.ParseCalendarDate(fl.Field().String())
	return err == nil
}

func validateBookingStatus(fl validator.FieldLevel) bool {
	return slices.Contains(model.BookingStatuses, fl.Field().String())
}

func validatePaymentMethod(fl validator.FieldLevel) bool {
	return slices.Contains(model.PaymentMethods, fl.Field().String())
}

// ValidateCreate checks the shape of a create payload. Business rules need the
// cabin and policy and run separately in CheckBusinessRules.
func (v *BookingValidator) ValidateCreate(req *model.BookingRequest) error {
	if err := v.structure(req); err != nil {
		return err
	}
	return checkDateOrder(req.CheckInDate, req.CheckOutDate)
}

// ValidateUpdate checks the shape of an update payload, including any
// embedded payment record.
func (v *BookingValidator) ValidateUpdate(update *model.BookingUpdate) error {
	if err := v.structure(update); err != nil {
		return err
	}
	if update.CheckInDate != nil && update.CheckOutDate != nil {
		return checkDateOrder(*update.CheckInDate, *update.CheckOutDate)
	}
	return nil
}

func (v *BookingValidator) ValidatePayment(payment *model.PaymentRecord) error {
	return v.structure(payment)
}

func (v *BookingValidator) structure(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func checkDateOrder(checkIn, checkOut string) error {
	in, errIn := model.ParseCalendarDate(checkIn)
	out, errOut := model.ParseCalendarDate(checkOut)
	if errIn != nil || errOut != nil {
		return nil
	}
	if !out.After(in) {
		return ValidationErrors{{Field: "checkOutDate", Message: "checkOutDate must be after checkInDate"}}
	}
	return nil
}

// CheckBusinessRules applies the rules that depend on the cabin and the active
// policy. The status-only profile skips capacity and stay length so that
// bookings made under an older, looser policy can still move through their
// lifecycle.
func (v *BookingValidator) CheckBusinessRules(b *model.Booking, cabin *model.Cabin, policy *model.Settings, profile model.ValidationProfile) error {
	if profile == model.ProfileStatusOnly {
		return nil
	}

	if !b.CheckOutDate.After(b.CheckInDate) {
		return ValidationErrors{{Field: "checkOutDate", Message: "checkOutDate must be after checkInDate"}}.AppError()
	}

	if cabin == nil {
		return apperrors.NotFoundWithID("Cabin", b.CabinID)
	}
	if !cabin.IsActive() {
		return apperrors.InvalidState(fmt.Sprintf("Cabin %s is inactive and cannot be booked", cabin.Name))
	}

	if b.NumGuests < 1 {
		return apperrors.PolicyViolation("numGuests must be at least 1")
	}
	if cabin.MaxCapacity > 0 && b.NumGuests > cabin.MaxCapacity {
		return apperrors.PolicyViolation(fmt.Sprintf("numGuests cannot exceed %d for cabin %s", cabin.MaxCapacity, cabin.Name))
	}

	if policy == nil {
		return nil
	}

	if policy.MaxGuestsPerBooking > 0 && b.NumGuests > policy.MaxGuestsPerBooking {
		return apperrors.PolicyViolation(fmt.Sprintf("numGuests cannot exceed %d", policy.MaxGuestsPerBooking))
	}
	if policy.MinBookingLength > 0 && b.NumNights < policy.MinBookingLength {
		return apperrors.PolicyViolation(fmt.Sprintf("numNights must be at least %d", policy.MinBookingLength))
	}
	if policy.MaxBookingLength > 0 && b.NumNights > policy.MaxBookingLength {
		return apperrors.PolicyViolation(fmt.Sprintf("numNights cannot exceed %d", policy.MaxBookingLength))
	}

	return nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	validationErrors := make(ValidationErrors, 0, len(errs))

	for _, err := range errs {
		field := err.Field()
		var message string

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "min":
			message = fmt.Sprintf("%s must be at least %s", field, err.Param())
		case "max":
			switch err.Kind() {
			case reflect.String:
				message = fmt.Sprintf("%s must be at most %s characters", field, err.Param())
			case reflect.Slice:
				message = fmt.Sprintf("%s cannot have more than %s entries", field, err.Param())
			default:
				message = fmt.Sprintf("%s cannot exceed %s", field, err.Param())
			}
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", field, err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid id", field)
		case "calendar_date":
			message = fmt.Sprintf("%s must be a valid date (YYYY-MM-DD)", field)
		case "booking_status":
			message = fmt.Sprintf("%s must be one of: %s", field, strings.Join(model.BookingStatuses, ", "))
		case "payment_method":
			message = fmt.Sprintf("%s must be one of: %s", field, strings.Join(model.PaymentMethods, ", "))
		default:
			message = fmt.Sprintf("%s is invalid", field)
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   field,
			Message: message,
		})
	}

	v.logger.Debug("booking payload rejected", "errors", validationErrors.Error())

	return validationErrors
}
