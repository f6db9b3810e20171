// Package domain 风险告警与组合亏损阈值检查
package domain

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	portfolio "github.com/wyfcoding/optionsdesk/internal/portfolio/domain"
	"github.com/wyfcoding/optionsdesk/pkg/apperr"
	"gorm.io/gorm"
)

// Severity 告警级别
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// AlertTypeRiskThreshold 组合亏损超过阈值
const AlertTypeRiskThreshold = "risk_threshold"

var (
	ErrAlertNotFound    = apperr.NotFound("alert")
	ErrAlertForbidden   = apperr.Forbidden("alert")
	ErrInvalidThreshold = apperr.New(apperr.KindInvalidArgument, "riskThreshold must be a positive finite number")
	ErrInvalidBaseline  = apperr.New(apperr.KindInvalidArgument, "portfolio totalValue must be positive to evaluate losses")
	ErrInvalidValuation = apperr.New(apperr.KindInvalidArgument, "currentValue must be a finite number")
)

// ParseSeverity 解析告警级别
func ParseSeverity(raw string) (Severity, error) {
	switch s := Severity(strings.ToLower(strings.TrimSpace(raw))); s {
	case SeverityInfo, SeverityWarning, SeverityCritical:
		return s, nil
	default:
		return "", apperr.Invalid("invalid severity %q", raw)
	}
}

// RiskAlert 风险告警
type RiskAlert struct {
	gorm.Model
	UserID        uint     `gorm:"column:user_id;index;not null" json:"userId"`
	PortfolioID   *uint    `gorm:"column:portfolio_id;index" json:"portfolioId"`
	StrategyID    *uint    `gorm:"column:strategy_id;index" json:"strategyId"`
	AlertType     string   `gorm:"column:alert_type;type:varchar(100);not null" json:"alertType"`
	Severity      Severity `gorm:"column:severity;type:varchar(10);not null" json:"severity"`
	Message       string   `gorm:"column:message;type:text;not null" json:"message"`
	IsRead        bool     `gorm:"column:is_read;not null;default:false" json:"isRead"`
	NotifiedOwner bool     `gorm:"column:notified_owner;not null;default:false" json:"notifiedOwner"`
}

func (RiskAlert) TableName() string { return "risk_alerts" }

// Validate 校验字段约束
func (a *RiskAlert) Validate() error {
	if n := utf8.RuneCountInString(a.AlertType); n < 1 || n > 100 {
		return apperr.Invalid("alertType must be 1..100 characters")
	}
	if strings.TrimSpace(a.Message) == "" {
		return apperr.Invalid("message must not be empty")
	}
	if _, err := ParseSeverity(string(a.Severity)); err != nil {
		return err
	}
	return nil
}

// ThresholdCheck 阈值检查结果
type ThresholdCheck struct {
	ThresholdExceeded bool      `json:"thresholdExceeded"`
	LossPercentage    float64   `json:"lossPercentage"`
	Severity          *Severity `json:"severity,omitempty"`
}

// EvaluateThreshold 计算相对初始价值的亏损百分比；亏损达到阈值两倍为 critical
func EvaluateThreshold(initial, current, threshold float64) (ThresholdCheck, error) {
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) || threshold <= 0 {
		return ThresholdCheck{}, ErrInvalidThreshold
	}
	if math.IsNaN(current) || math.IsInf(current, 0) {
		return ThresholdCheck{}, ErrInvalidValuation
	}
	if math.IsNaN(initial) || math.IsInf(initial, 0) || initial <= 0 {
		return ThresholdCheck{}, ErrInvalidBaseline
	}

	loss := (initial - current) / initial * 100
	check := ThresholdCheck{LossPercentage: loss}
	if loss < threshold {
		return check, nil
	}

	severity := SeverityWarning
	if loss >= threshold*2 {
		severity = SeverityCritical
	}
	check.ThresholdExceeded = true
	check.Severity = &severity
	return check, nil
}

// ThresholdMessage 阈值告警文案
func ThresholdMessage(name string, loss, current, initial float64) string {
	return fmt.Sprintf("Portfolio %q has lost %.2f%% of its value. Current: %s, Initial: %s",
		name, loss, strconv.FormatFloat(current, 'f', -1, 64), strconv.FormatFloat(initial, 'f', -1, 64))
}

// Repository 告警仓储；Get 未找到时返回 nil, nil
type Repository interface {
	Save(ctx context.Context, a *RiskAlert) error
	Get(ctx context.Context, id uint) (*RiskAlert, error)
	ListByUser(ctx context.Context, userID uint) ([]*RiskAlert, error)
	MarkRead(ctx context.Context, id uint) error
	Delete(ctx context.Context, id uint) error
}

// PortfolioReader 阈值检查读取组合
type PortfolioReader interface {
	Get(ctx context.Context, id uint) (*portfolio.Portfolio, error)
}
