package service

import (
	"context"

	"croppo/internal/model"
	"croppo/internal/repository"
)

// AuditService exposes the audit trail for review. Entries are written by
// the services that perform the audited actions; this service only reads.
type AuditService interface {
	ListEntries(ctx context.Context, page, limit int) ([]model.AuditLog, int64, error)
}

type auditService struct {
	repo repository.AuditRepository
}

func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

func (s *auditService) ListEntries(ctx context.Context, page, limit int) ([]model.AuditLog, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.repo.List(ctx, page, limit)
}
