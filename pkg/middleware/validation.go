package middleware

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/garment-erp/production-ledger/pkg/errors"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// InitValidator initializes the validator with custom validators
func InitValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()

		registerCustom(validate)

		validate.RegisterTagNameFunc(jsonTagName)

		// Set custom rules on Gin's default validator as well
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			registerCustom(v)
			v.RegisterTagNameFunc(jsonTagName)
		}
	})

	return validate
}

// GetValidator returns the singleton validator instance
func GetValidator() *validator.Validate {
	if validate == nil {
		return InitValidator()
	}
	return validate
}

func registerCustom(v *validator.Validate) {
	_ = v.RegisterValidation("process_stage", validateProcessStage)
	_ = v.RegisterValidation("lot_number", validateLotNumber)
	_ = v.RegisterValidation("style_code", validateStyleCode)
	_ = v.RegisterValidation("return_route", validateReturnRoute)
	_ = v.RegisterValidation("valuation_method", validateValuationMethod)
}

func jsonTagName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return fld.Name
	}
	return name
}

// Custom validators

var (
	lotNumberRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]{1,49}$`)
	styleCodeRegex = regexp.MustCompile(`^[A-Z0-9][A-Z0-9-]{1,29}$`)
)

func validateProcessStage(fl validator.FieldLevel) bool {
	validStages := map[string]bool{
		"cutting":    true,
		"stitching":  true,
		"washing":    true,
		"printing":   true,
		"embroidery": true,
		"finishing":  true,
		"packing":    true,
	}
	return validStages[fl.Field().String()]
}

func validateLotNumber(fl validator.FieldLevel) bool {
	return lotNumberRegex.MatchString(fl.Field().String())
}

func validateStyleCode(fl validator.FieldLevel) bool {
	return styleCodeRegex.MatchString(fl.Field().String())
}

func validateReturnRoute(fl validator.FieldLevel) bool {
	validRoutes := map[string]bool{
		"FG":    true,
		"WIP":   true,
		"Scrap": true,
	}
	return validRoutes[fl.Field().String()]
}

func validateValuationMethod(fl validator.FieldLevel) bool {
	validMethods := map[string]bool{
		"FIFO":             true,
		"WEIGHTED_AVERAGE": true,
		"STANDARD":         true,
	}
	return validMethods[fl.Field().String()]
}

// ValidationErrorFormatter formats validation errors into a map
func ValidationErrorFormatter(err error) map[string]string {
	fields := make(map[string]string)

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			fields[e.Field()] = formatValidationError(e)
		}
	}

	return fields
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + e.Param()
	case "max":
		return "must be at most " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "process_stage":
		return "must be a valid process stage (cutting, stitching, washing, printing, embroidery, finishing, packing)"
	case "lot_number":
		return "must be a valid lot number"
	case "style_code":
		return "must be a valid style code (uppercase alphanumeric with dashes)"
	case "return_route":
		return "must be one of: FG, WIP, Scrap"
	case "valuation_method":
		return "must be one of: FIFO, WEIGHTED_AVERAGE, STANDARD"
	case "oneof":
		return "must be one of: " + e.Param()
	default:
		return "is invalid"
	}
}

// BindAndValidate binds request body and validates it
func BindAndValidate(c *gin.Context, obj interface{}) *errors.AppError {
	if err := c.ShouldBindJSON(obj); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			fields := ValidationErrorFormatter(validationErrors)
			return errors.ErrValidationWithFields("validation failed", fields)
		}
		return errors.ErrBadRequest("invalid request body: " + err.Error())
	}
	return nil
}
