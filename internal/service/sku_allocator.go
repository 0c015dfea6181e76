package service

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go-store-catalog/internal/model"
	"go-store-catalog/internal/repository"

	"gorm.io/gorm"
)

// maxSKUProbe bounds how far Allocate walks past numbers already taken elsewhere.
const maxSKUProbe = 100

// SKUAllocator issues product SKUs and answers uniqueness questions for SKUs and category codes.
type SKUAllocator interface {
	// NextSKU derives the successor of the category's highest SKU.
	NextSKU(category *model.Category) (string, error)
	// Allocate is NextSKU, skipping values another category already holds.
	Allocate(category *model.Category) (string, error)
	IsUniqueCategoryCode(code string) (bool, error)
	IsUniqueProductSKU(sku string) (bool, error)
	WithTx(tx *gorm.DB) SKUAllocator
}

type skuAllocator struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
}

func NewSKUAllocator(cRepo repository.CategoryRepository, pRepo repository.ProductRepository) SKUAllocator {
	return &skuAllocator{categoryRepo: cRepo, productRepo: pRepo}
}

func (a *skuAllocator) WithTx(tx *gorm.DB) SKUAllocator {
	return &skuAllocator{
		categoryRepo: a.categoryRepo.WithTx(tx),
		productRepo:  a.productRepo.WithTx(tx),
	}
}

func (a *skuAllocator) NextSKU(category *model.Category) (string, error) {
	highest, err := a.productRepo.FindHighestSKU(category.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return FormatSKU(category.SKUCode, 1), nil
	}
	if err != nil {
		return "", storageError("failed to read category SKUs", err)
	}

	_, n, err := SplitSKU(highest.SKU)
	if err != nil {
		return "", validationError("Cannot derive the next SKU from %q: %v", highest.SKU, err)
	}
	if n == math.MaxInt64 {
		return "", validationError("SKU sequence of category %s is exhausted", category.SKUCode)
	}
	return FormatSKU(category.SKUCode, n+1), nil
}

func (a *skuAllocator) Allocate(category *model.Category) (string, error) {
	sku, err := a.NextSKU(category)
	if err != nil {
		return "", err
	}
	for i := 0; i < maxSKUProbe; i++ {
		unique, err := a.IsUniqueProductSKU(sku)
		if err != nil {
			return "", err
		}
		if unique {
			return sku, nil
		}
		_, n, _ := SplitSKU(sku)
		sku = FormatSKU(category.SKUCode, n+1)
	}
	return "", validationError("No free SKU found for category %s", category.SKUCode)
}

func (a *skuAllocator) IsUniqueCategoryCode(code string) (bool, error) {
	_, err := a.categoryRepo.FindBySKUCode(code)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true, nil
	}
	if err != nil {
		return false, storageError("failed to check SKU code", err)
	}
	return false, nil
}

func (a *skuAllocator) IsUniqueProductSKU(sku string) (bool, error) {
	_, err := a.productRepo.FindBySKU(sku)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true, nil
	}
	if err != nil {
		return false, storageError("failed to check SKU", err)
	}
	return false, nil
}

// FormatSKU joins a category code and a sequence number.
func FormatSKU(code string, n int64) string {
	return code + "-" + strconv.FormatInt(n, 10)
}

// SplitSKU splits sku on its last "-". Without a separator the whole value is the number.
// The number must be a non-negative decimal integer.
func SplitSKU(sku string) (prefix string, n int64, err error) {
	number := sku
	if i := strings.LastIndex(sku, "-"); i >= 0 {
		prefix, number = sku[:i], sku[i+1:]
	}
	if number == "" || strings.TrimLeft(number, "0123456789") != "" {
		return prefix, 0, fmt.Errorf("%q is not a sequence number", number)
	}
	n, err = strconv.ParseInt(number, 10, 64)
	if err != nil {
		return prefix, 0, fmt.Errorf("%q is out of range", number)
	}
	return prefix, n, nil
}
