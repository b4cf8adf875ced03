package vo

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// FieldErrorKind 字段校验失败类型
type FieldErrorKind string

const (
	FieldRequired    FieldErrorKind = "required"
	FieldTooShort    FieldErrorKind = "too_short"
	FieldTooLong     FieldErrorKind = "too_long"
	FieldBadCharset  FieldErrorKind = "bad_charset"
	FieldNotNumeric  FieldErrorKind = "not_numeric"
	FieldOutOfRange  FieldErrorKind = "out_of_range"
	FieldUnknownRule FieldErrorKind = "unknown_field"
)

// FieldError 单个字段的校验错误
type FieldError struct {
	Field string         `json:"field"`
	Kind  FieldErrorKind `json:"kind"`
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: %s", e.Field, e.Kind)
}

// FieldRule 纯函数校验规则，通过时返回空串
type FieldRule func(value string) FieldErrorKind

var (
	lettersOnly = regexp.MustCompile(`^[\p{L}\s]+$`)
	digitsOnly  = regexp.MustCompile(`^\d+$`)
)

// Required 非空白
func Required() FieldRule {
	return func(v string) FieldErrorKind {
		if strings.TrimSpace(v) == "" {
			return FieldRequired
		}
		return ""
	}
}

// MinLen 最少字符数（按 rune 计）
func MinLen(n int) FieldRule {
	return func(v string) FieldErrorKind {
		if utf8.RuneCountInString(strings.TrimSpace(v)) < n {
			return FieldTooShort
		}
		return ""
	}
}

// MaxLen 最多字符数
func MaxLen(n int) FieldRule {
	return func(v string) FieldErrorKind {
		if utf8.RuneCountInString(v) > n {
			return FieldTooLong
		}
		return ""
	}
}

// LettersOnly 仅字母与空白
func LettersOnly() FieldRule {
	return func(v string) FieldErrorKind {
		if !lettersOnly.MatchString(v) {
			return FieldBadCharset
		}
		return ""
	}
}

// DigitsOnly 仅数字
func DigitsOnly() FieldRule {
	return func(v string) FieldErrorKind {
		if !digitsOnly.MatchString(v) {
			return FieldNotNumeric
		}
		return ""
	}
}

// PositiveNumber 可解析且大于 0 的数值
func PositiveNumber() FieldRule {
	return func(v string) FieldErrorKind {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return FieldNotNumeric
		}
		if f <= 0 {
			return FieldOutOfRange
		}
		return ""
	}
}

// FieldRules 规则表，key 为字段名，规则按顺序执行，遇到第一个失败即停止
var FieldRules = map[string][]FieldRule{
	"product.name":        {Required(), MinLen(2), MaxLen(120)},
	"product.price":       {Required(), PositiveNumber()},
	"product.description": {Required(), MaxLen(2000)},
	"product.category_id": {Required(), DigitsOnly()},
	"category.name":       {Required(), MinLen(2), MaxLen(80)},
	"customer.name":       {Required(), LettersOnly(), MinLen(2)},
	"customer.phone":      {Required(), DigitsOnly(), MinLen(8)},
	"customer.address":    {Required(), MinLen(10)},
}

// ValidateField 按规则表校验单个字段
func ValidateField(field, value string) *FieldError {
	rules, ok := FieldRules[field]
	if !ok {
		return &FieldError{Field: field, Kind: FieldUnknownRule}
	}
	for _, rule := range rules {
		if kind := rule(value); kind != "" {
			return &FieldError{Field: field, Kind: kind}
		}
	}
	return nil
}

// ValidateFields 校验多个字段，结果按字段名排序
func ValidateFields(values map[string]string) []*FieldError {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []*FieldError
	for _, k := range keys {
		if fe := ValidateField(k, values[k]); fe != nil {
			errs = append(errs, fe)
		}
	}
	return errs
}
