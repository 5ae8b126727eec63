package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/storefront/catalog-api/internal/api/handler"
	"github.com/storefront/catalog-api/internal/core/ports"
	"github.com/storefront/catalog-api/internal/core/service"
	"github.com/storefront/catalog-api/internal/infrastructure/db/memory"
	"github.com/storefront/catalog-api/internal/infrastructure/db/mongo"
	"github.com/storefront/catalog-api/internal/infrastructure/db/redis"
	"github.com/storefront/catalog-api/internal/pkg/config"
	"github.com/storefront/catalog-api/pkg/logger"
)

// stores bundles the repositories of the selected driver.
type stores struct {
	users      ports.UserRepository
	roles      ports.RoleRepository
	categories ports.CategoryRepository
	products   ports.ProductRepository
	audit      ports.AuditRepository

	revocations ports.RevocationList
	readiness   map[string]handler.DependencyCheck
	closers     []func(context.Context) error
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	st := &stores{readiness: make(map[string]handler.DependencyCheck)}

	switch cfg.StoreDriver {
	case config.StoreMemory:
		mem := memory.NewStore()
		st.users, st.roles = mem.Users(), mem.Roles()
		st.categories, st.products = mem.Categories(), mem.Products()
		st.audit = mem.Audit()
		log.Warn().Msg("using in-memory store, data is lost on exit")
	default:
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		st.closers = append(st.closers, client.Disconnect)
		if err := mongo.EnsureIndexes(ctx, db); err != nil {
			_ = st.close(ctx)
			return nil, err
		}
		st.users, st.roles = mongo.NewUserRepository(db), mongo.NewRoleRepository(db)
		st.categories, st.products = mongo.NewCategoryRepository(db), mongo.NewProductRepository(db)
		st.audit = mongo.NewAuditRepository(db)
		st.readiness["mongodb"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")
	}

	if cfg.Auth.RevocationEnabled {
		rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			_ = st.close(ctx)
			return nil, err
		}
		st.closers = append(st.closers, func(context.Context) error { return rdb.Close() })
		st.revocations = redis.NewRevocationList(rdb, cfg.Auth.TokenTTL)
		st.readiness["redis"] = redis.Healthy(rdb)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("session revocation enabled")
	}

	return st, nil
}

func (st *stores) close(ctx context.Context) error {
	var first error
	for i := len(st.closers) - 1; i >= 0; i-- {
		if err := st.closers[i](ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// services holds the core services wired over one set of stores.
type services struct {
	identity *service.IdentityService
	auth     *service.AuthService
	roles    *service.RoleService
	catalog  *service.CatalogService
}

func newServices(cfg *config.Config, st *stores, audit ports.AuditRecorder) (*services, error) {
	tokens, err := service.NewTokenService(service.TokenConfig{
		Secret: cfg.Auth.JWTSecret,
		Issuer: cfg.Auth.JWTIssuer,
		TTL:    cfg.Auth.TokenTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("token service: %w", err)
	}

	hasher := service.NewBcryptHasher(cfg.Auth.BcryptCost)
	refs := service.NewReferenceEnforcer(st.roles, st.users, st.categories)

	return &services{
		identity: service.NewIdentityService(service.IdentityDeps{
			Users:       st.users,
			Refs:        refs,
			Hasher:      hasher,
			Revocations: st.revocations,
			Audit:       audit,
			DefaultRole: cfg.Auth.DefaultRole,
		}, logger.Component("identity")),
		auth: service.NewAuthService(service.AuthDeps{
			Users:       st.users,
			Refs:        refs,
			Hasher:      hasher,
			Tokens:      tokens,
			Revocations: st.revocations,
			Audit:       audit,
		}, logger.Component("auth")),
		roles: service.NewRoleService(service.RoleDeps{
			Roles:       st.roles,
			Users:       st.users,
			Refs:        refs,
			Revocations: st.revocations,
			Audit:       audit,
			DefaultRole: cfg.Auth.DefaultRole,
			AdminRole:   cfg.Auth.AdminRole,
		}, logger.Component("roles")),
		catalog: service.NewCatalogService(st.categories, st.products, refs, logger.Component("catalog")),
	}, nil
}
