// Package validation wraps a shared go-playground validator with the rules the
// service registers on top of struct tags.
package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/okian/affinity/internal/domain/matchmaking"
	"github.com/okian/affinity/internal/domain/model"
	"github.com/okian/affinity/internal/domain/recommend"
)

// WeightSumTolerance is how far a weight set may drift from 1.
const WeightSumTolerance = 0.001

// ErrInvalid marks every error returned by Struct.
var ErrInvalid = errors.New("validation failed")

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Get returns the process-wide validator.
func Get() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(jsonName)
		validate.RegisterStructValidation(weightSum, matchmaking.Weights{})
		validate.RegisterStructValidation(jobServer, model.Job{})
		_ = validate.RegisterValidation("serverids", serverIDs)
	})
	return validate
}

// Struct validates v and flattens any field errors into one message.
func Struct(v any) error {
	err := Get().Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, message(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

// WeightsSumToOne reports whether the weights total 1 within tolerance.
func WeightsSumToOne(w matchmaking.Weights) bool {
	sum := w.Sum()
	return !math.IsNaN(sum) && math.Abs(sum-1) <= WeightSumTolerance
}

func weightSum(sl validator.StructLevel) {
	w, ok := sl.Current().Interface().(matchmaking.Weights)
	if !ok {
		return
	}
	if !WeightsSumToOne(w) {
		sl.ReportError(w.Sum(), "weights", "Weights", "weightsum", "")
	}
}

// jobServer requires a server id on jobs: it names the board slot.
func jobServer(sl validator.StructLevel) {
	job, ok := sl.Current().Interface().(model.Job)
	if !ok {
		return
	}
	if strings.TrimSpace(job.Server.ID) == "" {
		sl.ReportError(job.Server.ID, "server.id", "ID", "required", "")
	}
}

// serverIDs requires every server in a ranked list to carry an id so the
// ordered results can be told apart.
func serverIDs(fl validator.FieldLevel) bool {
	servers, ok := fl.Field().Interface().([]recommend.Server)
	if !ok {
		return false
	}
	for _, s := range servers {
		if strings.TrimSpace(s.ID) == "" {
			return false
		}
	}
	return true
}

func message(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "weightsum":
		return fmt.Sprintf("%s must sum to 1 (got %v)", field, fe.Value())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s long", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "serverids":
		return field + " must all carry an id"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		if k := strings.SplitN(f.Tag.Get("koanf"), ",", 2)[0]; k != "" {
			return k
		}
		return f.Name
	default:
		return name
	}
}
