package service

import (
	"go-store-catalog/internal/repository"
)

type StatsService interface {
	GetCatalogStats() (*repository.CatalogStats, error)
}

type statsService struct {
	productRepo repository.ProductRepository
}

func NewStatsService(pRepo repository.ProductRepository) StatsService {
	return &statsService{productRepo: pRepo}
}

func (s *statsService) GetCatalogStats() (*repository.CatalogStats, error) {
	stats, err := s.productRepo.GetStats()
	if err != nil {
		return nil, storageError("failed to compute catalog stats", err)
	}
	return stats, nil
}
