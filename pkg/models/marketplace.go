package models

import "strings"

// Marketplace площадка, под шаблон которой генерируется выгрузка
type Marketplace string

const (
	MarketplaceShopify Marketplace = "shopify"
	MarketplaceAmazon  Marketplace = "amazon"
)

// Marketplaces все поддерживаемые площадки
var Marketplaces = []Marketplace{MarketplaceShopify, MarketplaceAmazon}

// ParseMarketplace разбирает метку площадки без учета регистра
func ParseMarketplace(s string) (Marketplace, bool) {
	m := Marketplace(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Marketplaces {
		if m == known {
			return m, true
		}
	}
	return "", false
}

func (m Marketplace) String() string {
	return string(m)
}
