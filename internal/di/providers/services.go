package providers

import (
	"github.com/samber/do/v2"

	"github.com/promptvault/promptvault-server/internal/auth"
	"github.com/promptvault/promptvault-server/internal/config"
	"github.com/promptvault/promptvault-server/internal/logger"
	"github.com/promptvault/promptvault-server/internal/service"
	"github.com/promptvault/promptvault-server/internal/storage"
	"github.com/promptvault/promptvault-server/internal/throttle"
)

// ProvideViewCache provides the per-owner view cache.
func ProvideViewCache(i do.Injector) (*service.ViewCache, error) {
	return service.NewViewCache(), nil
}

// ProvideThrottle provides the per-action mutation limiter.
func ProvideThrottle(i do.Injector) (*throttle.Limiter, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return throttle.New(cfg.Images.Cooldown), nil
}

// ProvideSessionService provides the session service.
func ProvideSessionService(i do.Injector) (*service.SessionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSessionService(storeHandle.Store, tokenService, log.Logger), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	sessionService := do.MustInvoke[*service.SessionService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, sessionService, log.Logger), nil
}

// ProvidePromptService provides the prompt service.
func ProvidePromptService(i do.Injector) (*service.PromptService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	objects := do.MustInvoke[*ObjectStoreHandle](i)
	resolver := do.MustInvoke[*storage.Resolver](i)
	limiter := do.MustInvoke[*throttle.Limiter](i)
	cache := do.MustInvoke[*service.ViewCache](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewPromptService(storeHandle.Store, indexHandle.Index, objects.DiskStore, resolver, limiter, cache, log.Logger), nil
}

// ProvideTagService provides the tag service.
func ProvideTagService(i do.Injector) (*service.TagService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	limiter := do.MustInvoke[*throttle.Limiter](i)
	cache := do.MustInvoke[*service.ViewCache](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewTagService(storeHandle.Store, limiter, cache, log.Logger), nil
}

// ProvideFeedService provides the feed service.
func ProvideFeedService(i do.Injector) (*service.FeedService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	prefsHandle := do.MustInvoke[*PrefsHandle](i)
	resolver := do.MustInvoke[*storage.Resolver](i)
	cache := do.MustInvoke[*service.ViewCache](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewFeedService(storeHandle.Store, prefsHandle.Store, resolver, cache, log.Logger), nil
}

// ProvideSearchService provides the search service.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSearchService(storeHandle.Store, indexHandle.Index, log.Logger), nil
}

// ProvidePreferencesService provides the preferences service.
func ProvidePreferencesService(i do.Injector) (*service.PreferencesService, error) {
	prefsHandle := do.MustInvoke[*PrefsHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewPreferencesService(prefsHandle.Store, log.Logger), nil
}
