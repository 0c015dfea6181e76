package service

import (
	"fmt"

	"go-store-catalog/internal/model"
)

// SKUIssue is a product whose SKU the allocator cannot continue from.
type SKUIssue struct {
	ProductID string `json:"product_id"`
	SKU       string `json:"sku"`
	Category  string `json:"category"`
	Problem   string `json:"problem"`
}

// AuditSKUs reports products with unparsable SKUs or a prefix that differs from their category code.
// Products must have Category loaded.
func AuditSKUs(products []model.Product) []SKUIssue {
	var issues []SKUIssue
	for _, p := range products {
		code := ""
		if p.Category != nil {
			code = p.Category.SKUCode
		}
		prefix, _, err := SplitSKU(p.SKU)
		switch {
		case err != nil:
			issues = append(issues, SKUIssue{ProductID: p.ID.String(), SKU: p.SKU, Category: code, Problem: err.Error()})
		case prefix != code:
			issues = append(issues, SKUIssue{
				ProductID: p.ID.String(),
				SKU:       p.SKU,
				Category:  code,
				Problem:   fmt.Sprintf("prefix %q differs from category code %q", prefix, code),
			})
		}
	}
	return issues
}
