package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/office-suite/general-ledger/internal/config"
	"github.com/office-suite/general-ledger/internal/domain/shared"
)

var registerOnce sync.Once

// RegisterValidators adds the ledger rules to gin's validator. Safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(fieldName)
		_ = v.RegisterValidation("ledger_date", func(fl validator.FieldLevel) bool {
			_, err := shared.ParseDate(fl.Field().String())
			return err == nil
		})
	})
}

// fieldName reports the wire name of a field in validation messages
func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"form", "json"} {
		name := strings.Split(f.Tag.Get(tag), ",")[0]
		if name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}

// bindingMessage renders the first binding failure for the error envelope
func bindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request: " + err.Error()
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "ledger_date":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// pageBounds applies the configured default and cap to a requested limit
func pageBounds(p PaginationParams, cfg config.PaginationConfig) (page, limit, offset int) {
	page, limit = p.Page, p.Limit
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = cfg.DefaultLimit
	}
	if limit > cfg.MaxLimit {
		limit = cfg.MaxLimit
	}
	return page, limit, (page - 1) * limit
}

// asOfDate resolves the "date" parameter, defaulting to today
func asOfDate(q AsOfQuery, now time.Time) (time.Time, error) {
	if q.Date == "" {
		return shared.Today(now), nil
	}
	return shared.ParseDate(q.Date)
}

var errInvertedPeriod = shared.Invalid("date_start must not be after date_end")

// optionalPeriod parses both bounds, leaving absent ones nil
func optionalPeriod(q PeriodQuery) (start, end *time.Time, err error) {
	if q.DateStart != "" {
		d, err := shared.ParseDate(q.DateStart)
		if err != nil {
			return nil, nil, err
		}
		start = &d
	}
	if q.DateEnd != "" {
		d, err := shared.ParseDate(q.DateEnd)
		if err != nil {
			return nil, nil, err
		}
		end = &d
	}
	if start != nil && end != nil && start.After(*end) {
		return nil, nil, errInvertedPeriod
	}
	return start, end, nil
}

// reportPeriod fills absent bounds with Jan 1 of the current year and today
func reportPeriod(q PeriodQuery, now time.Time) (time.Time, time.Time, error) {
	start, end, err := optionalPeriod(q)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	today := shared.Today(now)
	if end == nil {
		end = &today
	}
	if start == nil {
		s := shared.StartOfYear(*end)
		start = &s
	}
	if start.After(*end) {
		return time.Time{}, time.Time{}, errInvertedPeriod
	}
	return *start, *end, nil
}
