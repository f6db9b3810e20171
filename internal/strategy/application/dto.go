package application

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateStrategyCommand 创建策略
type CreateStrategyCommand struct {
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	StrategyType    string           `json:"strategyType"`
	UnderlyingAsset string           `json:"underlyingAsset"`
	StrikePrice     *decimal.Decimal `json:"strikePrice"`
	Premium         *decimal.Decimal `json:"premium"`
	ExpirationDate  *time.Time       `json:"expirationDate"`
	Quantity        *int             `json:"quantity"`
	Status          string           `json:"status"`
}

// UpdateStrategyCommand 部分更新，nil 字段保持不变
type UpdateStrategyCommand struct {
	Name            *string          `json:"name"`
	Description     *string          `json:"description"`
	StrategyType    *string          `json:"strategyType"`
	UnderlyingAsset *string          `json:"underlyingAsset"`
	StrikePrice     *decimal.Decimal `json:"strikePrice"`
	Premium         *decimal.Decimal `json:"premium"`
	ExpirationDate  *time.Time       `json:"expirationDate"`
	Quantity        *int             `json:"quantity"`
	Status          *string          `json:"status"`
}

func nullable(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}
