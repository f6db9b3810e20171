package domain

import (
	"fmt"
	"strings"

	"github.com/wyfcoding/optionsdesk/pkg/apperr"
)

// OptionType 期权类型
type OptionType string

const (
	OptionTypeCall OptionType = "call" // 看涨期权
	OptionTypePut  OptionType = "put"  // 看跌期权
)

// 领域错误
var (
	ErrInvalidPricingInput = apperr.New(apperr.KindInvalidArgument, "invalid pricing input")
	ErrInvalidPayoffInput  = apperr.New(apperr.KindInvalidArgument, "invalid payoff input")
	ErrInvalidOptionType   = apperr.New(apperr.KindInvalidArgument, "option type must be call or put")
	ErrInvalidHistoryLimit = apperr.New(apperr.KindInvalidArgument, "limit must be between 1 and 100")
	ErrNonFiniteResult     = apperr.New(apperr.KindInternal, "pricing produced a non-finite result")
)

// ParseOptionType 解析期权类型，大小写不敏感
func ParseOptionType(s string) (OptionType, error) {
	switch OptionType(strings.ToLower(strings.TrimSpace(s))) {
	case OptionTypeCall:
		return OptionTypeCall, nil
	case OptionTypePut:
		return OptionTypePut, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidOptionType, s)
	}
}

// IsCall 是否看涨
func (t OptionType) IsCall() bool { return t == OptionTypeCall }
