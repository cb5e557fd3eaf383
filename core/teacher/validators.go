package teacher

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/masomo-portal/core"
)

var (
	ifscTag   = "ifsc"
	ifscText  = "enter a valid IFSC code (e.g. SBIN0001234)"
	ifscRegex = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)

	// password policy
	pwdMinLen     = 8
	pwdMinLenTag  = "pwdminlen"
	pwdMinLenText = fmt.Sprintf("password must contain at least %d characters", pwdMinLen)

	pwdNoSpaceTag  = "pwdnospace"
	pwdNoSpaceText = "password must not contain whitespace"

	pwdNotAllNumTag  = "pwdnotallnum"
	pwdNotAllNumText = "password cannot be entirely numeric"

	pwdComplexityTag  = "pwdcplx"
	pwdComplexityText = "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character"
	specialRegex      = regexp.MustCompile("[^A-Za-z0-9]")

	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "password cannot be similar to the teacher's name or email"

	generatedPwdLen = 12
	pwdLower        = "abcdefghijkmnopqrstuvwxyz"
	pwdUpper        = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	pwdDigits       = "23456789"
	pwdSpecials     = "!@#$%&*?"
)

// passwordOwner is implemented by the forms carrying a password.
type passwordOwner interface {
	passwordAttrs() []string
}

// InitValidators registers the teacher form validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(ifscTag, ifscValidation)
	core.RegisterCustomTranslation(validate, translator, ifscTag, ifscText)

	_ = validate.RegisterValidation(pwdMinLenTag, pwdMinLenValidation)
	core.RegisterCustomTranslation(validate, translator, pwdMinLenTag, pwdMinLenText)

	_ = validate.RegisterValidation(pwdNoSpaceTag, pwdNoSpaceValidation)
	core.RegisterCustomTranslation(validate, translator, pwdNoSpaceTag, pwdNoSpaceText)

	_ = validate.RegisterValidation(pwdNotAllNumTag, pwdNotAllNumValidation)
	core.RegisterCustomTranslation(validate, translator, pwdNotAllNumTag, pwdNotAllNumText)

	_ = validate.RegisterValidation(pwdComplexityTag, pwdComplexityValidation)
	core.RegisterCustomTranslation(validate, translator, pwdComplexityTag, pwdComplexityText)

	_ = validate.RegisterValidation(pwdAttrSimTag, pwdAttrSimValidation)
	core.RegisterCustomTranslation(validate, translator, pwdAttrSimTag, pwdAttrSimText)
}

// Custom Validators

func ifscValidation(fl validator.FieldLevel) bool {
	return ifscRegex.MatchString(strings.ToUpper(fl.Field().String()))
}

func pwdMinLenValidation(fl validator.FieldLevel) bool {
	return len([]rune(fl.Field().String())) >= pwdMinLen
}

func pwdNoSpaceValidation(fl validator.FieldLevel) bool {
	return strings.IndexFunc(fl.Field().String(), unicode.IsSpace) < 0
}

func pwdNotAllNumValidation(fl validator.FieldLevel) bool {
	return strings.IndexFunc(fl.Field().String(), func(r rune) bool { return !unicode.IsDigit(r) }) >= 0
}

// pwdComplexityValidation requires 1 upper, 1 lower, 1 digit & 1 special character.
func pwdComplexityValidation(fl validator.FieldLevel) bool {
	pwd := fl.Field().String()
	var hasUpper, hasLower, hasDig bool
	for _, char := range pwd {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasDig = true
		}
	}
	return hasUpper && hasLower && hasDig && specialRegex.MatchString(pwd)
}

// pwdAttrSimValidation rejects passwords too similar to the other attributes of the form.
func pwdAttrSimValidation(fl validator.FieldLevel) bool {
	parent := fl.Parent()
	if parent.Kind() == reflect.Ptr {
		parent = parent.Elem()
	}
	owner, ok := parent.Interface().(passwordOwner)
	if !ok {
		return true
	}
	pwd := strings.ToLower(fl.Field().String())
	for _, attr := range owner.passwordAttrs() {
		if attr == "" {
			continue
		}
		ratio := difflib.NewMatcher(strings.Split(pwd, ""), strings.Split(strings.ToLower(attr), "")).QuickRatio()
		if ratio >= pwdMaxSim {
			return false
		}
	}
	return true
}

// GeneratePassword returns a random password satisfying the password policy.
func GeneratePassword() (string, error) {
	sets := []string{pwdLower, pwdUpper, pwdDigits, pwdSpecials}
	all := strings.Join(sets, "")

	pwd := make([]byte, 0, generatedPwdLen)
	for _, set := range sets { // one of each class
		c, err := randomChar(set)
		if err != nil {
			return "", err
		}
		pwd = append(pwd, c)
	}
	for len(pwd) < generatedPwdLen {
		c, err := randomChar(all)
		if err != nil {
			return "", err
		}
		pwd = append(pwd, c)
	}

	// shuffle
	for i := len(pwd) - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		pwd[i], pwd[j.Int64()] = pwd[j.Int64()], pwd[i]
	}
	return string(pwd), nil
}

func randomChar(set string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
	if err != nil {
		return 0, err
	}
	return set[n.Int64()], nil
}
