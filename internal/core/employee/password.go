package employee

import "regexp"

const (
	minPasswordLength = 8
	maxPasswordLength = 16
)

var passwordPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// ValidatePassword はパスワードポリシーを検証します。
// 半角英数字以外を含む場合は ErrPasswordFormat、長さが 8〜16 文字の範囲外なら ErrPasswordLength です。
func ValidatePassword(raw string) error {
	if !passwordPattern.MatchString(raw) {
		return ErrPasswordFormat
	}
	if n := len(raw); n < minPasswordLength || n > maxPasswordLength {
		return ErrPasswordLength
	}
	return nil
}
