package pricing

import (
	"strconv"

	"sbp/src/config"
)

// FeeConfig is the typed snapshot of the admin-configured fee settings in
// force for one pricing computation. It is loaded fresh per computation and
// passed around explicitly; nothing caches it across requests.
type FeeConfig struct {
	TaxPercentage               *float64
	StripeFeePercentage         *float64
	ExtraFeeCents               *int64
	PartnerCommissionPercentage *float64
}

func (c FeeConfig) Adjustments() FeeAdjustments {
	return FeeAdjustments{
		TaxPercentage:       c.TaxPercentage,
		StripeFeePercentage: c.StripeFeePercentage,
		ExtraFeeCents:       c.ExtraFeeCents,
	}
}

// FeeConfigFromSettings builds the snapshot from raw setting values keyed by
// the canonical setting keys. Values arrive as decoded JSONB, so numbers may
// be float64, integers or numeric strings.
func FeeConfigFromSettings(values map[string]any) FeeConfig {
	cfg := FeeConfig{}
	if v, ok := settingFloat(values[config.SETTING_TAX_PERCENTAGE]); ok {
		cfg.TaxPercentage = &v
	}
	if v, ok := settingFloat(values[config.SETTING_STRIPE_FEE_PERCENTAGE]); ok {
		cfg.StripeFeePercentage = &v
	}
	if v, ok := settingFloat(values[config.SETTING_EXTRA_FEE_CENTS]); ok {
		cents := int64(v)
		cfg.ExtraFeeCents = &cents
	}
	if v, ok := settingFloat(values[config.SETTING_PARTNER_COMMISSION_PERCENTAGE]); ok {
		cfg.PartnerCommissionPercentage = &v
	}
	return cfg
}

func settingFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
