package services

import (
	"strings"

	"tripwise/pkg/itinerary"
)

const (
	PaymentCash   = "cash"
	PaymentWechat = "wechat"
	PaymentAlipay = "alipay"
	PaymentCard   = "card"
)

// Spoken and typed input often uses the Chinese labels.
var categoryAliases = map[string]itinerary.Category{
	"交通": itinerary.CategoryTransportation,
	"住宿": itinerary.CategoryAccommodation,
	"餐饮": itinerary.CategoryFood,
	"景点": itinerary.CategoryAttractions,
	"门票": itinerary.CategoryAttractions,
	"购物": itinerary.CategoryShopping,
	"其他": itinerary.CategoryOther,
}

var paymentAliases = map[string]string{
	PaymentCash:   PaymentCash,
	PaymentWechat: PaymentWechat,
	PaymentAlipay: PaymentAlipay,
	PaymentCard:   PaymentCard,
	"现金":          PaymentCash,
	"微信":          PaymentWechat,
	"支付宝":         PaymentAlipay,
	"银行卡":         PaymentCard,
	"信用卡":         PaymentCard,
}

func parseCategory(s string) (itinerary.Category, bool) {
	s = strings.TrimSpace(s)
	if c := itinerary.Category(strings.ToLower(s)); c.Valid() {
		return c, true
	}
	c, ok := categoryAliases[s]
	return c, ok
}

// parsePaymentMethod defaults an empty method to cash.
func parsePaymentMethod(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return PaymentCash, true
	}
	m, ok := paymentAliases[strings.ToLower(s)]
	return m, ok
}

func comparisonStatus(actual, budget float64) string {
	switch {
	case actual > budget:
		return "over"
	case actual < budget:
		return "under"
	default:
		return "exact"
	}
}

func percentOf(actual, budget float64) float64 {
	if budget <= 0 {
		return 0
	}
	return actual / budget * 100
}
