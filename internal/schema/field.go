package schema

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"
)

// Gender codes accepted by GenderField.
const (
	GenderUnknown = 0
	GenderMale    = 1
	GenderFemale  = 2
)

// DateLayout is the wire format for date fields ("%d.%m.%Y").
const DateLayout = "02.01.2006"

var (
	errRequired    = errors.New("This field is required.")
	errNotNullable = errors.New("Empty value is not allowed.")

	phonePattern = regexp.MustCompile(`^7[0-9]{10}$`)
)

// Field describes a single typed field of a request payload.
// Clean receives the raw decoded JSON value (nil when the key is absent or
// explicitly null) and returns the typed value, or nil when the field is
// nullable and the value is empty, so that downstream combination rules can
// treat empty and absent uniformly.
type Field interface {
	Required() bool
	Nullable() bool
	Clean(value any) (any, error)
}

// base carries the required/nullable flags shared by all field kinds.
type base struct {
	required bool
	nullable bool
}

func (b base) Required() bool { return b.required }
func (b base) Nullable() bool { return b.nullable }

// check enforces the required/nullable contract. It reports done=true when
// the value carries no content and type-specific validation must be skipped.
func (b base) check(value any) (done bool, err error) {
	if value == nil {
		if b.required {
			return true, errRequired
		}
		return true, nil
	}
	if isEmpty(value) {
		if !b.nullable {
			return true, errNotNullable
		}
		return true, nil
	}
	return false, nil
}

// isEmpty reports whether a decoded JSON value counts as "no value provided".
func isEmpty(value any) bool {
	switch v := value.(type) {
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	}
	return false
}

// CharField accepts string values.
type CharField struct{ base }

func NewChar(required, nullable bool) *CharField {
	return &CharField{base{required, nullable}}
}

func (f *CharField) Clean(value any) (any, error) {
	if done, err := f.check(value); done {
		return nil, err
	}
	s, ok := value.(string)
	if !ok {
		return nil, errors.New("This field must be a string.")
	}
	return s, nil
}

// ArgumentsField accepts a JSON object and passes it through untyped.
type ArgumentsField struct{ base }

func NewArguments(required, nullable bool) *ArgumentsField {
	return &ArgumentsField{base{required, nullable}}
}

func (f *ArgumentsField) Clean(value any) (any, error) {
	if done, err := f.check(value); done {
		return nil, err
	}
	m, ok := value.(map[string]any)
	if !ok {
		return nil, errors.New("This field must be an object.")
	}
	return m, nil
}

// EmailField accepts strings containing "@".
type EmailField struct{ CharField }

func NewEmail(required, nullable bool) *EmailField {
	return &EmailField{CharField{base{required, nullable}}}
}

func (f *EmailField) Clean(value any) (any, error) {
	cleaned, err := f.CharField.Clean(value)
	if err != nil || cleaned == nil {
		return nil, err
	}
	s := cleaned.(string)
	for _, r := range s {
		if r == '@' {
			return s, nil
		}
	}
	return nil, errors.New("Email must include @.")
}

// PhoneField accepts an 11-digit phone number starting with 7, given either
// as a string or as a JSON number.
type PhoneField struct{ base }

func NewPhone(required, nullable bool) *PhoneField {
	return &PhoneField{base{required, nullable}}
}

func (f *PhoneField) Clean(value any) (any, error) {
	if done, err := f.check(value); done {
		return nil, err
	}
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case float64:
		if v != math.Trunc(v) {
			return nil, fmt.Errorf("Phone number is invalid: %v.", value)
		}
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		s = strconv.Itoa(v)
	default:
		return nil, fmt.Errorf("Phone number is invalid: %v.", value)
	}
	if !phonePattern.MatchString(s) {
		return nil, fmt.Errorf("Phone number is invalid: %v.", value)
	}
	return s, nil
}

// DateField accepts a date string in DateLayout and cleans it to time.Time.
type DateField struct{ base }

func NewDate(required, nullable bool) *DateField {
	return &DateField{base{required, nullable}}
}

func (f *DateField) Clean(value any) (any, error) {
	if done, err := f.check(value); done {
		return nil, err
	}
	return f.parse(value)
}

func (f *DateField) parse(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return nil, errors.New("Date must have format: %d.%m.%Y.")
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, errors.New("Date must have format: %d.%m.%Y.")
	}
	return t, nil
}

// BirthdayField is a DateField no more than 70 years in the past.
type BirthdayField struct {
	DateField
	now func() time.Time
}

func NewBirthday(required, nullable bool) *BirthdayField {
	return &BirthdayField{DateField: DateField{base{required, nullable}}, now: time.Now}
}

func (f *BirthdayField) Clean(value any) (any, error) {
	cleaned, err := f.DateField.Clean(value)
	if err != nil || cleaned == nil {
		return nil, err
	}
	t := cleaned.(time.Time)
	if f.now().Sub(t).Hours()/24/365 > 70 {
		return nil, errors.New("Birthday must be no more than 70 years in the past.")
	}
	return t, nil
}

// GenderField accepts the integers 0, 1 or 2. String digits are rejected.
type GenderField struct{ base }

func NewGender(required, nullable bool) *GenderField {
	return &GenderField{base{required, nullable}}
}

func (f *GenderField) Clean(value any) (any, error) {
	if done, err := f.check(value); done {
		return nil, err
	}
	var n int
	switch v := value.(type) {
	case float64:
		if v != math.Trunc(v) {
			return nil, errors.New("Gender must be a digit.")
		}
		n = int(v)
	case int:
		n = v
	default:
		return nil, errors.New("Gender must be a digit.")
	}
	if n != GenderUnknown && n != GenderMale && n != GenderFemale {
		return nil, fmt.Errorf("Gender must be equal to %d, %d or %d.", GenderUnknown, GenderMale, GenderFemale)
	}
	return n, nil
}

// ClientIDsField accepts a non-empty list of non-negative integers.
type ClientIDsField struct{ base }

func NewClientIDs(required, nullable bool) *ClientIDsField {
	return &ClientIDsField{base{required, nullable}}
}

func (f *ClientIDsField) Clean(value any) (any, error) {
	if done, err := f.check(value); done {
		return nil, err
	}
	list, ok := value.([]any)
	if !ok {
		return nil, errors.New("This field must be a list.")
	}
	ids := make([]int, 0, len(list))
	for _, item := range list {
		var n int
		switch v := item.(type) {
		case float64:
			if v != math.Trunc(v) {
				return nil, errors.New("Items must be non-negative integers.")
			}
			n = int(v)
		case int:
			n = v
		default:
			return nil, errors.New("Items must be non-negative integers.")
		}
		if n < 0 {
			return nil, errors.New("Items must be non-negative integers.")
		}
		ids = append(ids, n)
	}
	return ids, nil
}
