package database

import (
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wekeepgrowing/ott-entitlement/internal/adapter/repository"
	domainRepo "github.com/wekeepgrowing/ott-entitlement/internal/domain/repository"
)

// Repositories holds all repository instances
type Repositories struct {
	Entitlement domainRepo.EntitlementRepository
	User        domainRepo.UserRepository
	Content     domainRepo.ContentRepository
	Plan        domainRepo.PlanRepository
	Country     domainRepo.CountryRepository
	AuditLog    domainRepo.AuditLogRepository
}

// NewRepositories wires the Mongo repositories. audit may be nil, in which case audit
// entries are dropped.
func NewRepositories(db *mongo.Database, audit *gorm.DB, logger *zap.Logger) *Repositories {
	auditRepo := repository.NewNopAuditLogRepository()
	if audit != nil {
		auditRepo = repository.NewAuditLogRepository(audit, logger)
	}

	return &Repositories{
		Entitlement: repository.NewEntitlementRepository(db, logger),
		User:        repository.NewUserRepository(db, logger),
		Content:     repository.NewContentRepository(db, logger),
		Plan:        repository.NewPlanRepository(db, logger),
		Country:     repository.NewCountryRepository(db, logger),
		AuditLog:    auditRepo,
	}
}
